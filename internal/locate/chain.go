// Package locate resolves one logical element across several markup versions.
//
// A Chain holds candidate strategies in order of preference. Strategies are
// invoked at resolve time, never at construction, and the first candidate with
// at least one match at that instant wins. Nothing is cached between calls, so a
// re-rendered document is always queried afresh.
package locate

import (
	"context"
	"fmt"
	"strings"
)

// Matcher is anything that can report how many elements it currently matches.
// playwright.Locator satisfies it.
type Matcher interface {
	Count() (int, error)
}

// Strategy produces one candidate for a logical element.
type Strategy[L Matcher] struct {
	Name  string
	Build func() L
}

// Named wraps a builder that is invoked on every resolution.
func Named[L Matcher](name string, build func() L) Strategy[L] {
	return Strategy[L]{Name: name, Build: build}
}

// Fixed wraps an already-lazy handle such as a playwright.Locator.
func Fixed[L Matcher](name string, l L) Strategy[L] {
	return Strategy[L]{Name: name, Build: func() L { return l }}
}

// Chain is an ordered fallback list of strategies.
type Chain[L Matcher] struct {
	strategies []Strategy[L]
}

// NewChain builds a chain from strategies, most preferred first.
func NewChain[L Matcher](strategies ...Strategy[L]) *Chain[L] {
	return &Chain[L]{strategies: strategies}
}

// Of builds a chain from lazy handles, most preferred first.
func Of[L Matcher](locators ...L) *Chain[L] {
	strategies := make([]Strategy[L], len(locators))
	for i, l := range locators {
		strategies[i] = Fixed(fmt.Sprintf("candidate %d", i), l)
	}
	return NewChain(strategies...)
}

// Then returns a new chain with s appended as the least preferred candidate.
func (c *Chain[L]) Then(s Strategy[L]) *Chain[L] {
	strategies := append(append([]Strategy[L](nil), c.strategies...), s)
	return &Chain[L]{strategies: strategies}
}

// Len is the number of candidates.
func (c *Chain[L]) Len() int { return len(c.strategies) }

// Names lists candidate names in order.
func (c *Chain[L]) Names() []string {
	names := make([]string, len(c.strategies))
	for i, s := range c.strategies {
		names[i] = s.Name
	}
	return names
}

func (c *Chain[L]) String() string {
	return strings.Join(c.Names(), " | ")
}

// Resolution is the result of resolving a chain at one instant.
type Resolution[L Matcher] struct {
	// Locator is the winning candidate, or the most preferred one when nothing
	// matched so callers have a handle to wait on.
	Locator L
	// Index of the winning candidate, -1 when nothing matched.
	Index int
	Name  string
	Count int
}

// Matched reports whether any candidate had at least one match.
func (r Resolution[L]) Matched() bool { return r.Index >= 0 }

// Resolve queries candidates in order and commits to the first with at least one
// match. A candidate whose count query fails counts as zero matches. Resolve never
// fails: an empty resolution is a state to wait on, not an error.
func (c *Chain[L]) Resolve(ctx context.Context) Resolution[L] {
	empty := Resolution[L]{Index: -1}
	for i, s := range c.strategies {
		l := s.Build()
		if i == 0 {
			empty.Locator, empty.Name = l, s.Name
		}
		if ctx.Err() != nil {
			break
		}
		n, err := l.Count()
		if err != nil || n == 0 {
			continue
		}
		return Resolution[L]{Locator: l, Index: i, Name: s.Name, Count: n}
	}
	return empty
}

// Count resolves the chain and reports the winner's match count, so a Chain
// is itself a Matcher and can be nested or fed to state signals.
func (c *Chain[L]) Count() (int, error) {
	return c.Resolve(context.Background()).Count, nil
}

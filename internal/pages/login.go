package pages

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/adyen/storefront-e2e/internal/detect"
	"github.com/adyen/storefront-e2e/internal/locate"
	"github.com/playwright-community/playwright-go"
)

var (
	loginName     = regexp.MustCompile(`(?i)^login$`)
	myAccountName = regexp.MustCompile(`(?i)my account`)
	logoutName    = regexp.MustCompile(`(?i)logout`)
	bannerCreds   = regexp.MustCompile(`(?i)Username:\s*(\S+)[\s\S]*Password:\s*(\S+)`)
	invalidCreds  = regexp.MustCompile(`(?i)invalid credentials\.`)
)

// Credentials for the login form. A nil Remember leaves the checkbox alone.
type Credentials struct {
	Username string
	Password string
	Remember *bool
}

// LoginPage is the /login page and the account links of the header.
type LoginPage struct {
	s *Session
}

func NewLoginPage(s *Session) *LoginPage {
	return &LoginPage{s: s}
}

func (l *LoginPage) headerLink(name *regexp.Regexp) playwright.Locator {
	return l.s.Page.GetByRole(*playwright.AriaRoleLink, playwright.PageGetByRoleOptions{Name: name})
}

// OpenViaHeader goes home and follows the header Login link.
func (l *LoginPage) OpenViaHeader(ctx context.Context) error {
	if err := l.s.GotoPath(RouteHome); err != nil {
		return err
	}
	if err := l.headerLink(loginName).First().Click(); err != nil {
		return fmt.Errorf("failed to open login: %w", err)
	}
	if err := l.s.WaitURL(ctx, "login", loginURL.MatchString); err != nil {
		return err
	}
	heading := l.s.Page.GetByRole(*playwright.AriaRoleHeading, playwright.PageGetByRoleOptions{Name: loginName}).First()
	return l.s.WaitVisible(ctx, "login heading", heading)
}

func (l *LoginPage) username() *locate.Chain[playwright.Locator] {
	return locate.Of(
		l.s.Page.Locator("#_username"),
		l.s.Page.GetByLabel(regexp.MustCompile(`(?i)username|email`)),
	)
}

func (l *LoginPage) password() *locate.Chain[playwright.Locator] {
	return locate.Of(
		l.s.Page.Locator("#_password"),
		l.s.Page.GetByLabel(regexp.MustCompile(`(?i)password`)),
	)
}

// Fill types the credentials once both inputs are visible.
func (l *LoginPage) Fill(ctx context.Context, c Credentials) error {
	user, err := l.s.WaitFirstVisible(ctx, "username", l.username())
	if err != nil {
		return err
	}
	pass, err := l.s.WaitFirstVisible(ctx, "password", l.password())
	if err != nil {
		return err
	}
	if err := user.Fill(c.Username); err != nil {
		return fmt.Errorf("failed to fill username: %w", err)
	}
	if err := pass.Fill(c.Password); err != nil {
		return fmt.Errorf("failed to fill password: %w", err)
	}
	if c.Remember == nil {
		return nil
	}
	remember := l.s.Page.GetByLabel(regexp.MustCompile(`(?i)remember me`)).First()
	if *c.Remember {
		_ = remember.Check()
	} else {
		_ = remember.Uncheck()
	}
	return nil
}

// Submit presses the Login button.
func (l *LoginPage) Submit(ctx context.Context) error {
	res := locate.Of(
		l.s.Page.GetByRole(*playwright.AriaRoleButton, playwright.PageGetByRoleOptions{Name: loginName}),
		l.s.Page.Locator(`form[name=login] [type=submit]`),
	).Resolve(ctx)
	if !res.Matched() {
		return errors.New("login button not found")
	}
	if err := res.Locator.First().Click(); err != nil {
		return fmt.Errorf("failed to submit login: %w", err)
	}
	return nil
}

// DemoCredentials returns the configured demo account, replaced by the one
// printed in the test credentials banner when the page shows it.
func (l *LoginPage) DemoCredentials(ctx context.Context) Credentials {
	c := Credentials{Username: l.s.demoUser, Password: l.s.demoPass}
	banner := l.s.Page.Locator(".alert.alert-info").First()
	if count(banner) == 0 {
		return c
	}
	t, err := text(ctx, banner)
	if err != nil {
		return c
	}
	if user, pass, ok := ParseBannerCredentials(t); ok {
		c.Username, c.Password = user, pass
	}
	return c
}

// ParseBannerCredentials reads "Username: x ... Password: y" from banner text.
func ParseBannerCredentials(banner string) (user, pass string, ok bool) {
	m := bannerCreds.FindStringSubmatch(banner)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// LoggedIn holds while the header shows the account links instead of Login.
func (l *LoginPage) LoggedIn() *detect.Detector {
	return detect.All("logged in",
		detect.Visible("my account", l.headerLink(myAccountName).First()),
		detect.Visible("logout", l.headerLink(logoutName).First()),
		detect.Absent("no login link", l.headerLink(loginName)),
	)
}

// ErrorShown holds while the invalid credentials alert is visible.
func (l *LoginPage) ErrorShown() *detect.Detector {
	return detect.Any("login error",
		detect.Visible("danger alert", l.s.Page.Locator(".alert.alert-danger").First()),
		detect.Visible("invalid credentials", l.s.Page.GetByRole(*playwright.AriaRoleAlert).
			Filter(playwright.LocatorFilterOptions{HasText: invalidCreds}).First()),
	)
}

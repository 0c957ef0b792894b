//go:build e2e

package e2e

import (
	"testing"

	"github.com/playwright-community/playwright-go"
)

type productCollection struct {
	Type       string `json:"@type"`
	TotalItems int    `json:"hydra:totalItems"`
	Members    []struct {
		Code string `json:"code"`
		Name string `json:"name"`
	} `json:"hydra:member"`
}

// TestShopAPIProducts lists products through the shop API
func TestShopAPIProducts(t *testing.T) {
	api, err := pw.Request.NewContext(playwright.APIRequestNewContextOptions{
		BaseURL: playwright.String(suite.BaseURL),
	})
	if err != nil {
		t.Fatalf("Failed to create request context: %v", err)
	}
	t.Cleanup(func() { _ = api.Dispose() })

	resp, err := api.Get("api/v2/shop/products", playwright.APIRequestContextGetOptions{
		Headers: map[string]string{"Accept": "application/ld+json"},
	})
	if err != nil {
		t.Fatalf("Failed to fetch products: %v", err)
	}
	defer resp.Dispose()

	if resp.Status() != 200 {
		t.Fatalf("Expected status 200, got %d", resp.Status())
	}
	var got productCollection
	if err := resp.JSON(&got); err != nil {
		t.Fatalf("Failed to decode products: %v", err)
	}
	if got.TotalItems == 0 || len(got.Members) == 0 {
		t.Fatalf("Expected products, got %+v", got)
	}
	if got.TotalItems < len(got.Members) {
		t.Errorf("Expected hydra:totalItems %d to cover %d members", got.TotalItems, len(got.Members))
	}
	for _, m := range got.Members {
		if m.Code == "" || m.Name == "" {
			t.Errorf("Expected code and name on every product, got %+v", m)
		}
	}
}

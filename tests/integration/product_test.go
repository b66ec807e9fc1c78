//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestListProducts(t *testing.T) {
	resp := doGet(t, "/api/products", "")

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) < 6 {
		t.Fatalf("expected at least 6 seeded products, got %d", len(products))
	}
	for _, p := range products {
		if p.ID == "" || p.Name == "" {
			t.Fatalf("product missing fields: %+v", p)
		}
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	resp := doGet(t, "/api/products/00000000-0000-0000-0000-000000000000", "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestCreateProduct_RequiresAdmin(t *testing.T) {
	user := registerUser(t, "Product Tester", "product-tester@example.com")

	body := map[string]any{
		"name":  "Unauthorized Gadget",
		"price": "999.00",
		"stock": 5,
	}

	// Anonymous.
	resp := doPost(t, "/api/products", "", body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous create: expected 401, got %d", resp.StatusCode)
	}

	// Regular user.
	resp = doPost(t, "/api/products", user.Token, body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("user create: expected 403, got %d", resp.StatusCode)
	}

	// Admin.
	admin := loginAdmin(t)
	resp = doPost(t, "/api/products", admin, body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("admin create: expected 201, got %d", resp.StatusCode)
	}
	created := decodeJSON[productResponse](t, resp)
	if created.ID == "" {
		t.Fatal("created product has no ID")
	}
}

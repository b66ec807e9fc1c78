//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
)

// seededProductID returns the ID of a seeded product with enough stock.
func seededProductID(t *testing.T, minStock int) string {
	t.Helper()

	resp := doGet(t, "/api/products", "")
	products := decodeJSON[[]productResponse](t, resp)
	for _, p := range products {
		if p.Stock >= minStock {
			return p.ID
		}
	}
	t.Fatalf("no seeded product with stock >= %d", minStock)
	return ""
}

func checkoutBody() map[string]any {
	return map[string]any{
		"shippingAddress": "House 7, Road 3, Dhanmondi, Dhaka",
		"phone":           "01712345678",
		"paymentMethod":   "cash-on-delivery",
	}
}

func TestCheckoutFlow(t *testing.T) {
	user := registerUser(t, "Checkout Flow", "checkout-flow@example.com")
	productID := seededProductID(t, 2)

	// Add to cart.
	resp := doPost(t, "/api/cart/items", user.Token, map[string]any{
		"productId": productID,
		"quantity":  2,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add to cart: expected 200, got %d", resp.StatusCode)
	}
	c := decodeJSON[cartResponse](t, resp)
	if len(c.Items) != 1 || c.Items[0].Quantity != 2 {
		t.Fatalf("unexpected cart: %+v", c)
	}

	// Place the order.
	resp = doPost(t, "/api/orders", user.Token, checkoutBody())
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("place order: expected 201, got %d", resp.StatusCode)
	}
	placed := decodeJSON[orderResponse](t, resp)
	if placed.Status != "pending" || placed.PaymentStatus != "pending" {
		t.Fatalf("new order not pending/pending: %+v", placed)
	}
	if len(placed.Items) != 1 {
		t.Fatalf("expected 1 order line, got %d", len(placed.Items))
	}

	// Checkout empties the cart.
	resp = doGet(t, "/api/cart", user.Token)
	c = decodeJSON[cartResponse](t, resp)
	if len(c.Items) != 0 {
		t.Fatalf("cart not cleared after checkout: %+v", c)
	}

	// The order appears in the user's history.
	resp = doGet(t, "/api/orders/my", user.Token)
	orders := decodeJSON[[]orderResponse](t, resp)
	if len(orders) != 1 || orders[0].ID != placed.ID {
		t.Fatalf("order missing from history: %+v", orders)
	}
}

func TestCheckout_WithSeededCoupon(t *testing.T) {
	user := registerUser(t, "Coupon User", "coupon-user@example.com")
	productID := seededProductID(t, 1)

	resp := doPost(t, "/api/cart/items", user.Token, map[string]any{
		"productId": productID,
		"quantity":  1,
	})
	resp.Body.Close()

	body := checkoutBody()
	body["couponCode"] = "EIDMUBARAK"

	resp = doPost(t, "/api/orders", user.Token, body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("place order with coupon: expected 201, got %d", resp.StatusCode)
	}
	placed := decodeJSON[orderResponse](t, resp)
	if placed.CouponCode != "EIDMUBARAK" {
		t.Fatalf("coupon code not persisted on order: %+v", placed)
	}
	if placed.Discount == "0" {
		t.Fatal("expected a non-zero discount")
	}
}

func TestCheckout_InvalidCoupon(t *testing.T) {
	user := registerUser(t, "Bad Coupon", "bad-coupon@example.com")
	productID := seededProductID(t, 1)

	resp := doPost(t, "/api/cart/items", user.Token, map[string]any{
		"productId": productID,
		"quantity":  1,
	})
	resp.Body.Close()

	body := checkoutBody()
	body["couponCode"] = "DOESNOTEXIST"

	resp = doPost(t, "/api/orders", user.Token, body)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid coupon, got %d", resp.StatusCode)
	}
}

func TestCheckout_EmptyCart(t *testing.T) {
	user := registerUser(t, "Empty Cart", "empty-cart@example.com")

	resp := doPost(t, "/api/orders", user.Token, checkoutBody())
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty cart, got %d", resp.StatusCode)
	}
}

func TestCheckout_IdempotencyKeyReplay(t *testing.T) {
	user := registerUser(t, "Idempotent", "idempotent@example.com")
	productID := seededProductID(t, 1)

	resp := doPost(t, "/api/cart/items", user.Token, map[string]any{
		"productId": productID,
		"quantity":  1,
	})
	resp.Body.Close()

	key := uuid.NewString()
	place := func() orderResponse {
		resp := doReq(t, http.MethodPost, "/api/orders", user.Token, checkoutBody(),
			"Idempotency-Key", key)
		return decodeJSON[orderResponse](t, resp)
	}

	first := place()
	second := place()

	if first.ID != second.ID {
		t.Fatalf("replay created a new order: %s vs %s", first.ID, second.ID)
	}
}

func TestOrder_NotVisibleToOtherUsers(t *testing.T) {
	owner := registerUser(t, "Order Owner", "order-owner@example.com")
	other := registerUser(t, "Order Snoop", "order-snoop@example.com")
	productID := seededProductID(t, 1)

	resp := doPost(t, "/api/cart/items", owner.Token, map[string]any{
		"productId": productID,
		"quantity":  1,
	})
	resp.Body.Close()

	resp = doPost(t, "/api/orders", owner.Token, checkoutBody())
	placed := decodeJSON[orderResponse](t, resp)

	resp = doGet(t, "/api/orders/"+placed.ID, other.Token)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for other user's order, got %d", resp.StatusCode)
	}
}

func TestOrderStatusTransitions(t *testing.T) {
	user := registerUser(t, "Lifecycle", "lifecycle@example.com")
	admin := loginAdmin(t)
	productID := seededProductID(t, 1)

	resp := doPost(t, "/api/cart/items", user.Token, map[string]any{
		"productId": productID,
		"quantity":  1,
	})
	resp.Body.Close()

	resp = doPost(t, "/api/orders", user.Token, checkoutBody())
	placed := decodeJSON[orderResponse](t, resp)

	setStatus := func(status string) *http.Response {
		return doReq(t, http.MethodPut, "/api/orders/"+placed.ID+"/status", admin,
			map[string]string{"status": status})
	}

	// pending -> shipped is not an edge.
	resp = setStatus("shipped")
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid transition, got %d", resp.StatusCode)
	}

	// pending -> processing -> shipped -> delivered.
	for _, status := range []string{"processing", "shipped", "delivered"} {
		resp = setStatus(status)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("transition to %s: expected 200, got %d", status, resp.StatusCode)
		}
		updated := decodeJSON[orderResponse](t, resp)
		if updated.Status != status {
			t.Fatalf("expected status %s, got %s", status, updated.Status)
		}
	}

	// delivered is terminal.
	resp = setStatus("cancelled")
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 cancelling a delivered order, got %d", resp.StatusCode)
	}
}

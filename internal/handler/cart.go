package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/Maharab2134/deshishop/internal/domain/cart"
	"github.com/Maharab2134/deshishop/internal/domain/product"
)

type cartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type cartLineResponse struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

type cartResponse struct {
	Items    []cartLineResponse `json:"items"`
	Subtotal decimal.Decimal    `json:"subtotal"`
}

// toCartResponse enriches cart lines with current catalog prices. Lines whose
// product disappeared from the catalog are skipped rather than failing the
// whole view.
func (h *Handler) toCartResponse(r *http.Request, c *cart.Cart) (cartResponse, error) {
	resp := cartResponse{Items: []cartLineResponse{}, Subtotal: decimal.Zero}
	if c.IsEmpty() {
		return resp, nil
	}

	ids := make([]string, len(c.Lines))
	for i, line := range c.Lines {
		ids[i] = line.ProductID
	}
	products, err := h.products.GetByIDs(r.Context(), ids)
	if err != nil {
		return resp, err
	}
	byID := make(map[string]product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	for _, line := range c.Lines {
		p, ok := byID[line.ProductID]
		if !ok {
			continue
		}
		lineTotal := p.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		resp.Items = append(resp.Items, cartLineResponse{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: p.Price,
			Quantity:  line.Quantity,
			LineTotal: lineTotal,
		})
		resp.Subtotal = resp.Subtotal.Add(lineTotal)
	}
	return resp, nil
}

func (h *Handler) writeCart(w http.ResponseWriter, r *http.Request, c *cart.Cart) {
	resp, err := h.toCartResponse(r, c)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetCart returns the authenticated user's cart.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())
	c, err := h.carts.Get(r.Context(), id.UserID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	h.writeCart(w, r, c)
}

// AddCartItem adds a product to the cart, merging with any existing line.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "productId is required")
		return
	}

	id, _ := identityFrom(r.Context())
	c, err := h.carts.AddItem(r.Context(), id.UserID, req.ProductID, req.Quantity)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	h.writeCart(w, r, c)
}

// UpdateCartItem replaces the quantity of an existing cart line.
func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, _ := identityFrom(r.Context())
	c, err := h.carts.SetQuantity(r.Context(), id.UserID, chi.URLParam(r, "productId"), req.Quantity)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	h.writeCart(w, r, c)
}

// RemoveCartItem deletes a cart line. Removing an absent line succeeds.
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())
	c, err := h.carts.RemoveItem(r.Context(), id.UserID, chi.URLParam(r, "productId"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	h.writeCart(w, r, c)
}

// ClearCart removes every line from the cart.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())
	if err := h.carts.Clear(r.Context(), id.UserID); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

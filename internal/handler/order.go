package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/Maharab2134/deshishop/internal/domain/order"
)

type placeOrderRequest struct {
	ShippingAddress string `json:"shippingAddress"`
	Phone           string `json:"phone"`
	PaymentMethod   string `json:"paymentMethod"`
	CouponCode      string `json:"couponCode,omitempty"`

	BkashAccountNumber string `json:"bkashAccountNumber,omitempty"`
	BkashTransactionID string `json:"bkashTransactionId,omitempty"`
}

type statusUpdateRequest struct {
	Status string `json:"status"`
}

type orderLineResponse struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

type orderResponse struct {
	ID     string              `json:"id"`
	UserID string              `json:"userId"`
	Items  []orderLineResponse `json:"items"`

	Subtotal   decimal.Decimal `json:"subtotal"`
	Discount   decimal.Decimal `json:"discount"`
	Shipping   decimal.Decimal `json:"shipping"`
	Tax        decimal.Decimal `json:"tax"`
	Total      decimal.Decimal `json:"total"`
	CouponCode string          `json:"couponCode,omitempty"`

	ShippingAddress string `json:"shippingAddress"`
	Phone           string `json:"phone"`

	PaymentMethod  string `json:"paymentMethod"`
	Status         string `json:"status"`
	PaymentStatus  string `json:"paymentStatus"`
	BkashReference string `json:"bkashReference,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// toOrderResponse maps an order to its API shape. The bKash wallet number
// and transaction ID stay server-side; only the generated reference is
// exposed.
func toOrderResponse(o *order.Order) orderResponse {
	items := make([]orderLineResponse, len(o.Lines))
	for i, line := range o.Lines {
		items[i] = orderLineResponse{
			ProductID: line.ProductID,
			Name:      line.Name,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			LineTotal: line.LineTotal,
		}
	}
	return orderResponse{
		ID:              o.ID,
		UserID:          o.UserID,
		Items:           items,
		Subtotal:        o.Subtotal,
		Discount:        o.Discount,
		Shipping:        o.Shipping,
		Tax:             o.Tax,
		Total:           o.Total,
		CouponCode:      o.CouponCode,
		ShippingAddress: o.ShippingAddress,
		Phone:           o.Phone,
		PaymentMethod:   string(o.Method),
		Status:          string(o.Status),
		PaymentStatus:   string(o.PaymentStatus),
		BkashReference:  o.Bkash.ReferenceID,
		CreatedAt:       o.CreatedAt,
	}
}

func writeOrderList(w http.ResponseWriter, orders []order.Order) {
	resp := make([]orderResponse, len(orders))
	for i := range orders {
		resp[i] = toOrderResponse(&orders[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

// PlaceOrder creates an order from the authenticated user's cart. The
// optional Idempotency-Key header makes retries safe: a replay returns the
// order created by the first attempt.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, _ := identityFrom(r.Context())
	o, err := h.orders.Place(r.Context(), id, order.PlaceOrderRequest{
		ShippingAddress:    req.ShippingAddress,
		Phone:              req.Phone,
		PaymentMethod:      req.PaymentMethod,
		CouponCode:         req.CouponCode,
		BkashAccountNumber: req.BkashAccountNumber,
		BkashTransactionID: req.BkashTransactionID,
		IdempotencyKey:     r.Header.Get("Idempotency-Key"),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(o))
}

// GetOrder returns one order. Owners see their own orders; admins see all.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())
	o, err := h.orders.Get(r.Context(), id, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

// ListMyOrders returns the authenticated user's order history.
func (h *Handler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())
	orders, err := h.orders.ListMine(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeOrderList(w, orders)
}

// ListOrders returns every order in the system. Admin only.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())
	orders, err := h.orders.ListAll(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeOrderList(w, orders)
}

// UpdateOrderStatus advances an order through its fulfilment lifecycle.
// Admin only.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req statusUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, _ := identityFrom(r.Context())
	o, err := h.orders.TransitionStatus(r.Context(), id, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

// UpdatePaymentStatus advances an order's payment lifecycle. Admin only.
func (h *Handler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	var req statusUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, _ := identityFrom(r.Context())
	o, err := h.orders.TransitionPaymentStatus(r.Context(), id, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

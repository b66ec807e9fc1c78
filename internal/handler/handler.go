package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/Maharab2134/deshishop/internal/auth"
	"github.com/Maharab2134/deshishop/internal/domain/cart"
	"github.com/Maharab2134/deshishop/internal/domain/coupon"
	"github.com/Maharab2134/deshishop/internal/domain/order"
	"github.com/Maharab2134/deshishop/internal/domain/product"
	"github.com/Maharab2134/deshishop/internal/domain/user"
)

// Handler serves the REST API, delegating business logic to the domain
// services and repositories.
type Handler struct {
	users    user.Repository
	products product.Repository
	carts    *cart.Service
	orders   *order.Service
	tokens   *auth.TokenService
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	users user.Repository,
	products product.Repository,
	carts *cart.Service,
	orders *order.Service,
	tokens *auth.TokenService,
) *Handler {
	return &Handler{
		users:    users,
		products: products,
		carts:    carts,
		orders:   orders,
		tokens:   tokens,
	}
}

// errorResponse is the uniform JSON error body.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Code: status, Message: message})
}

// writeDomainError maps domain errors to HTTP statuses. Unrecognized errors
// are logged and reported as an opaque 500 so internals never leak to
// clients.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *order.ValidationError
		quantityErr   *cart.InvalidQuantityError
		transitionErr *order.InvalidTransitionError
		notFoundErr   *order.ProductNotFoundError
		stockErr      *product.InsufficientStockError
	)

	switch {
	case errors.As(err, &validationErr),
		errors.As(err, &quantityErr),
		errors.As(err, &transitionErr),
		errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, coupon.ErrInvalidCoupon),
		errors.Is(err, coupon.ErrCouponExpired),
		errors.Is(err, coupon.ErrCouponUsageLimitReached):
		writeError(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, order.ErrAccessDenied):
		writeError(w, http.StatusForbidden, "access denied")

	case errors.Is(err, order.ErrNotFound),
		errors.Is(err, product.ErrNotFound),
		errors.Is(err, user.ErrNotFound),
		errors.As(err, &notFoundErr):
		writeError(w, http.StatusNotFound, err.Error())

	case errors.As(err, &stockErr):
		writeError(w, http.StatusConflict, err.Error())

	case errors.Is(err, user.ErrEmailTaken):
		writeError(w, http.StatusConflict, err.Error())

	default:
		zctx.From(r.Context()).Error("Unhandled error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a requested order does not exist.
	ErrNotFound = errors.New("order not found")
	// ErrAccessDenied is returned when the actor is neither the order's
	// owner nor an admin. Distinct from ErrNotFound: an existing order that
	// the actor may not see reports access denied, not absence.
	ErrAccessDenied = errors.New("access denied")
	// ErrEmptyCart is returned when placing an order from a cart with no lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrDuplicateRequest is returned by Repository.Create when another
	// order with the same idempotency key already exists for the user.
	ErrDuplicateRequest = errors.New("duplicate order request")
)

// PaymentMethod enumerates accepted payment methods.
type PaymentMethod string

const (
	MethodCashOnDelivery PaymentMethod = "cash-on-delivery"
	MethodBkash          PaymentMethod = "bkash"
	MethodCard           PaymentMethod = "card"
)

// ParsePaymentMethod maps a request string to a PaymentMethod.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(s) {
	case MethodCashOnDelivery, MethodBkash, MethodCard:
		return PaymentMethod(s), nil
	default:
		return "", &ValidationError{Field: "payment_method", Reason: "unknown payment method"}
	}
}

// ValidationError indicates a missing or malformed field in an order request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

// Line is an order line with the unit price captured at order time,
// decoupled from later catalog changes.
type Line struct {
	ProductID string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
	LineTotal decimal.Decimal
}

// BkashDetails carries the manually-verified bKash payment capture: the
// user-supplied wallet number and transaction ID plus a locally generated
// reference. No gateway verification happens here.
type BkashDetails struct {
	AccountNumber string
	TransactionID string
	ReferenceID   string
}

// Order is an immutable snapshot created at checkout. Only the two status
// fields ever change after creation, through explicit transitions.
type Order struct {
	ID     string
	UserID string
	Lines  []Line

	Subtotal   decimal.Decimal
	Discount   decimal.Decimal
	Shipping   decimal.Decimal
	Tax        decimal.Decimal
	Total      decimal.Decimal
	CouponCode string

	ShippingAddress string
	Phone           string

	Method        PaymentMethod
	Status        Status
	PaymentStatus PaymentStatus
	Bkash         BkashDetails

	IdempotencyKey string
	CreatedAt      time.Time
}

// Repository defines order persistence. Create must be all-or-nothing: the
// order insert, the conditional stock decrements, and the cart clear commit
// together or not at all.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	FindByIdempotencyKey(ctx context.Context, userID, key string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	UpdatePaymentStatus(ctx context.Context, id string, status PaymentStatus) error
}

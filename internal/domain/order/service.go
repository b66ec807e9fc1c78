package order

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Maharab2134/deshishop/internal/auth"
	"github.com/Maharab2134/deshishop/internal/domain/cart"
	"github.com/Maharab2134/deshishop/internal/domain/coupon"
	"github.com/Maharab2134/deshishop/internal/domain/pricing"
	"github.com/Maharab2134/deshishop/internal/domain/product"
)

// ProductNotFoundError indicates a cart line references a product that no
// longer exists in the catalog.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// PlaceOrderRequest holds the checkout input. Totals are deliberately absent:
// they are always recomputed here from authoritative prices.
type PlaceOrderRequest struct {
	ShippingAddress string
	Phone           string
	PaymentMethod   string
	CouponCode      string

	// Bkash fields, required when PaymentMethod is bkash.
	BkashAccountNumber string
	BkashTransactionID string

	// IdempotencyKey is an optional client-generated request ID. Replaying
	// a create with the same key returns the already-created order.
	IdempotencyKey string
}

// Service encapsulates order placement and lifecycle transitions.
type Service struct {
	orders   Repository
	carts    cart.Repository
	products product.Repository
	coupons  coupon.Resolver
	calc     pricing.Calculator
}

// NewService creates an order Service with the required collaborators.
func NewService(
	orders Repository,
	carts cart.Repository,
	products product.Repository,
	coupons coupon.Resolver,
	calc pricing.Calculator,
) *Service {
	return &Service{
		orders:   orders,
		carts:    carts,
		products: products,
		coupons:  coupons,
		calc:     calc,
	}
}

// Place creates an order from the actor's current cart. It snapshots unit
// prices, computes totals server-side, persists the order in pending/pending
// state, decrements stock, and clears the cart, all within the repository's
// single transaction. The cart survives any failure.
func (s *Service) Place(ctx context.Context, actor auth.Identity, req PlaceOrderRequest) (*Order, error) {
	if req.IdempotencyKey != "" {
		existing, err := s.orders.FindByIdempotencyKey(ctx, actor.UserID, req.IdempotencyKey)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, errors.Wrap(err, "idempotency lookup")
		}
		if existing != nil {
			return existing, nil
		}
	}

	method, bkash, err := validatePayment(req)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.ShippingAddress) == "" {
		return nil, &ValidationError{Field: "shipping_address", Reason: "required"}
	}
	if strings.TrimSpace(req.Phone) == "" {
		return nil, &ValidationError{Field: "phone", Reason: "required"}
	}

	c, err := s.carts.Get(ctx, actor.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "get cart")
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	ids := make([]string, len(c.Lines))
	for i, line := range c.Lines {
		ids[i] = line.ProductID
	}
	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get products")
	}
	byID := make(map[string]product.Product, len(fetched))
	for _, p := range fetched {
		byID[p.ID] = p
	}

	priceLines := make([]pricing.Line, len(c.Lines))
	orderLines := make([]Line, len(c.Lines))
	for i, cl := range c.Lines {
		p, ok := byID[cl.ProductID]
		if !ok {
			return nil, &ProductNotFoundError{ProductID: cl.ProductID}
		}
		priceLines[i] = pricing.Line{
			ProductID: p.ID,
			UnitPrice: p.Price,
			Quantity:  cl.Quantity,
		}
		orderLines[i] = Line{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: p.Price,
			Quantity:  cl.Quantity,
			LineTotal: p.Price.Mul(decimal.NewFromInt(int64(cl.Quantity))).Round(2),
		}
	}

	var rule *coupon.Rule
	if req.CouponCode != "" {
		rule, err = s.coupons.Resolve(ctx, req.CouponCode)
		if err != nil {
			return nil, err
		}
	}

	quote, err := s.calc.Quote(priceLines, rule)
	if err != nil {
		return nil, errors.Wrap(err, "quote")
	}

	o := &Order{
		ID:              uuid.NewString(),
		UserID:          actor.UserID,
		Lines:           orderLines,
		Subtotal:        quote.Subtotal,
		Discount:        quote.Discount,
		Shipping:        quote.Shipping,
		Tax:             quote.Tax,
		Total:           quote.Total,
		CouponCode:      req.CouponCode,
		ShippingAddress: req.ShippingAddress,
		Phone:           req.Phone,
		Method:          method,
		Status:          StatusPending,
		PaymentStatus:   PaymentPending,
		Bkash:           bkash,
		IdempotencyKey:  req.IdempotencyKey,
	}

	if err := s.orders.Create(ctx, o); err != nil {
		// Two in-flight requests with the same key can race past the lookup
		// above; the unique index catches the loser, which then returns the
		// winner's order.
		if errors.Is(err, ErrDuplicateRequest) && req.IdempotencyKey != "" {
			return s.orders.FindByIdempotencyKey(ctx, actor.UserID, req.IdempotencyKey)
		}
		return nil, err
	}

	if rule != nil {
		// Best effort: the order is already committed, a failed counter
		// bump must not fail the checkout.
		_ = s.coupons.Redeem(ctx, rule.Code)
	}

	return o, nil
}

// validatePayment parses the payment method and checks bkash details.
func validatePayment(req PlaceOrderRequest) (PaymentMethod, BkashDetails, error) {
	method, err := ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return "", BkashDetails{}, err
	}

	var bkash BkashDetails
	if method == MethodBkash {
		if strings.TrimSpace(req.BkashAccountNumber) == "" {
			return "", BkashDetails{}, &ValidationError{Field: "bkash_account_number", Reason: "required"}
		}
		if strings.TrimSpace(req.BkashTransactionID) == "" {
			return "", BkashDetails{}, &ValidationError{Field: "bkash_transaction_id", Reason: "required"}
		}
		bkash = BkashDetails{
			AccountNumber: req.BkashAccountNumber,
			TransactionID: req.BkashTransactionID,
			ReferenceID:   uuid.NewString(),
		}
	}
	return method, bkash, nil
}

// Get returns the order only when the actor owns it or is an admin.
// Existing orders owned by others report access denied, not absence.
func (s *Service) Get(ctx context.Context, actor auth.Identity, id string) (*Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, ErrAccessDenied
	}
	return o, nil
}

// ListMine returns the actor's own orders, newest first.
func (s *Service) ListMine(ctx context.Context, actor auth.Identity) ([]Order, error) {
	return s.orders.ListByUser(ctx, actor.UserID)
}

// ListAll returns every order. Admin only.
func (s *Service) ListAll(ctx context.Context, actor auth.Identity) ([]Order, error) {
	if !actor.IsAdmin() {
		return nil, ErrAccessDenied
	}
	return s.orders.ListAll(ctx)
}

// TransitionStatus moves an order along the fulfilment state machine.
// Invalid edges are rejected and leave the order unchanged. Admin only.
func (s *Service) TransitionStatus(ctx context.Context, actor auth.Identity, id, next string) (*Order, error) {
	if !actor.IsAdmin() {
		return nil, ErrAccessDenied
	}

	target, err := ParseStatus(next)
	if err != nil {
		return nil, err
	}

	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.Status.CanTransitionTo(target) {
		return nil, &InvalidTransitionError{From: string(o.Status), To: string(target)}
	}

	if err := s.orders.UpdateStatus(ctx, id, target); err != nil {
		return nil, errors.Wrap(err, "update status")
	}
	o.Status = target
	return o, nil
}

// TransitionPaymentStatus moves an order along the payment state machine.
// Admin only.
func (s *Service) TransitionPaymentStatus(ctx context.Context, actor auth.Identity, id, next string) (*Order, error) {
	if !actor.IsAdmin() {
		return nil, ErrAccessDenied
	}

	target, err := ParsePaymentStatus(next)
	if err != nil {
		return nil, err
	}

	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.PaymentStatus.CanTransitionTo(target) {
		return nil, &InvalidTransitionError{From: string(o.PaymentStatus), To: string(target)}
	}

	if err := s.orders.UpdatePaymentStatus(ctx, id, target); err != nil {
		return nil, errors.Wrap(err, "update payment status")
	}
	o.PaymentStatus = target
	return o, nil
}

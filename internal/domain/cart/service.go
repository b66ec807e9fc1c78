package cart

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/Maharab2134/deshishop/internal/domain/product"
)

// Service applies cart mutations with stock validation. Quantities exceeding
// the available stock are rejected outright, never clamped, and a failed
// mutation leaves the stored cart untouched.
type Service struct {
	carts    Repository
	products product.Repository
}

// NewService creates a cart Service.
func NewService(carts Repository, products product.Repository) *Service {
	return &Service{carts: carts, products: products}
}

// Get returns the user's cart.
func (s *Service) Get(ctx context.Context, userID string) (*Cart, error) {
	return s.carts.Get(ctx, userID)
}

// AddItem adds qty units of a product to the cart, merging into an existing
// line when present.
func (s *Service) AddItem(ctx context.Context, userID, productID string, qty int) (*Cart, error) {
	if qty < 1 {
		return nil, &InvalidQuantityError{ProductID: productID}
	}

	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	c, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "get cart")
	}

	want := qty
	if line := c.Line(productID); line != nil {
		want += line.Quantity
	}
	if want > p.Stock {
		return nil, &product.InsufficientStockError{
			ProductID: productID,
			Requested: want,
			Available: p.Stock,
		}
	}

	if err := s.carts.SetLine(ctx, userID, productID, want); err != nil {
		return nil, errors.Wrap(err, "set cart line")
	}
	return s.carts.Get(ctx, userID)
}

// SetQuantity replaces the quantity of an existing line. A quantity below 1
// is rejected; use RemoveItem to drop a line.
func (s *Service) SetQuantity(ctx context.Context, userID, productID string, qty int) (*Cart, error) {
	if qty < 1 {
		return nil, &InvalidQuantityError{ProductID: productID}
	}

	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if qty > p.Stock {
		return nil, &product.InsufficientStockError{
			ProductID: productID,
			Requested: qty,
			Available: p.Stock,
		}
	}

	if err := s.carts.SetLine(ctx, userID, productID, qty); err != nil {
		return nil, errors.Wrap(err, "set cart line")
	}
	return s.carts.Get(ctx, userID)
}

// RemoveItem drops the line for productID. Removing an absent product is a
// no-op.
func (s *Service) RemoveItem(ctx context.Context, userID, productID string) (*Cart, error) {
	if err := s.carts.RemoveLine(ctx, userID, productID); err != nil {
		return nil, errors.Wrap(err, "remove cart line")
	}
	return s.carts.Get(ctx, userID)
}

// Clear empties the cart. Idempotent.
func (s *Service) Clear(ctx context.Context, userID string) error {
	return s.carts.Clear(ctx, userID)
}

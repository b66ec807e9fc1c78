package cart

import (
	"context"
	"fmt"
	"time"
)

// InvalidQuantityError indicates a cart mutation with a non-positive quantity.
type InvalidQuantityError struct {
	ProductID string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be at least 1 for product %s", e.ProductID)
}

// Line is a single (product, quantity) pair in a cart. A product appears at
// most once per cart; adding it again increments the quantity instead.
type Line struct {
	ProductID string
	Quantity  int
	AddedAt   time.Time
}

// Cart holds the lines of exactly one user. A user with no stored lines has
// an empty cart; the distinction between "no cart" and "empty cart" is not
// observable.
type Cart struct {
	UserID string
	Lines  []Line
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Line returns the line for productID, or nil when absent.
func (c *Cart) Line(productID string) *Line {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return &c.Lines[i]
		}
	}
	return nil
}

// Repository defines cart persistence keyed by user.
type Repository interface {
	// Get returns the user's cart; a user without stored lines gets an
	// empty cart, not an error.
	Get(ctx context.Context, userID string) (*Cart, error)
	// SetLine inserts or replaces the line for productID with the given
	// quantity.
	SetLine(ctx context.Context, userID, productID string, quantity int) error
	// RemoveLine deletes the line for productID. Removing an absent line is
	// a no-op.
	RemoveLine(ctx context.Context, userID, productID string) error
	// Clear deletes all lines. Clearing an already-empty cart is a no-op.
	Clear(ctx context.Context, userID string) error
}

package cart

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Maharab2134/deshishop/internal/domain/product"
)

// --- Mock implementations ---

type mockCartRepo struct {
	lines map[string]int
}

func newMockCartRepo() *mockCartRepo {
	return &mockCartRepo{lines: make(map[string]int)}
}

func (m *mockCartRepo) Get(_ context.Context, userID string) (*Cart, error) {
	c := &Cart{UserID: userID}
	for id, qty := range m.lines {
		c.Lines = append(c.Lines, Line{ProductID: id, Quantity: qty})
	}
	return c, nil
}

func (m *mockCartRepo) SetLine(_ context.Context, _, productID string, quantity int) error {
	m.lines[productID] = quantity
	return nil
}

func (m *mockCartRepo) RemoveLine(_ context.Context, _, productID string) error {
	delete(m.lines, productID)
	return nil
}

func (m *mockCartRepo) Clear(_ context.Context, _ string) error {
	m.lines = make(map[string]int)
	return nil
}

type mockProductRepo struct {
	byID map[string]*product.Product
}

func (m *mockProductRepo) List(_ context.Context) ([]product.Product, error) { return nil, nil }

func (m *mockProductRepo) GetByID(_ context.Context, id string) (*product.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return p, nil
}

func (m *mockProductRepo) GetByIDs(_ context.Context, ids []string) ([]product.Product, error) {
	var out []product.Product
	for _, id := range ids {
		if p, ok := m.byID[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockProductRepo) Create(_ context.Context, _ *product.Product) error { return nil }
func (m *mockProductRepo) Update(_ context.Context, _ *product.Product) error { return nil }
func (m *mockProductRepo) Delete(_ context.Context, _ string) error           { return nil }

func (m *mockProductRepo) ListCategories(_ context.Context) ([]product.Category, error) {
	return nil, nil
}
func (m *mockProductRepo) CreateCategory(_ context.Context, _ *product.Category) error { return nil }
func (m *mockProductRepo) DeleteCategory(_ context.Context, _ string) error            { return nil }

func newService(products ...product.Product) (*Service, *mockCartRepo) {
	byID := make(map[string]*product.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	carts := newMockCartRepo()
	return NewService(carts, &mockProductRepo{byID: byID}), carts
}

func testProduct(id string, stock int) product.Product {
	return product.Product{ID: id, Name: "Item " + id, Price: decimal.NewFromInt(100), Stock: stock}
}

// --- Tests ---

func TestAddItem(t *testing.T) {
	svc, _ := newService(testProduct("p1", 10))

	c, err := svc.AddItem(context.Background(), "u1", "p1", 3)
	require.NoError(t, err)

	line := c.Line("p1")
	require.NotNil(t, line)
	assert.Equal(t, 3, line.Quantity)
}

func TestAddItem_MergesExistingLine(t *testing.T) {
	svc, _ := newService(testProduct("p1", 10))

	_, err := svc.AddItem(context.Background(), "u1", "p1", 3)
	require.NoError(t, err)

	c, err := svc.AddItem(context.Background(), "u1", "p1", 4)
	require.NoError(t, err)

	require.Len(t, c.Lines, 1)
	assert.Equal(t, 7, c.Lines[0].Quantity)
}

func TestAddItem_RejectsZeroQuantity(t *testing.T) {
	svc, _ := newService(testProduct("p1", 10))

	_, err := svc.AddItem(context.Background(), "u1", "p1", 0)

	var iqErr *InvalidQuantityError
	require.ErrorAs(t, err, &iqErr)
	assert.Equal(t, "p1", iqErr.ProductID)
}

func TestAddItem_UnknownProduct(t *testing.T) {
	svc, _ := newService()

	_, err := svc.AddItem(context.Background(), "u1", "missing", 1)
	require.ErrorIs(t, err, product.ErrNotFound)
}

func TestAddItem_RejectsOverStock(t *testing.T) {
	svc, carts := newService(testProduct("p1", 5))

	_, err := svc.AddItem(context.Background(), "u1", "p1", 3)
	require.NoError(t, err)

	// 3 already in the cart; adding 3 more would exceed stock of 5.
	_, err = svc.AddItem(context.Background(), "u1", "p1", 3)

	var stockErr *product.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 6, stockErr.Requested)
	assert.Equal(t, 5, stockErr.Available)

	// Rejected mutation leaves the cart untouched.
	assert.Equal(t, 3, carts.lines["p1"])
}

func TestSetQuantity(t *testing.T) {
	svc, _ := newService(testProduct("p1", 10))

	_, err := svc.AddItem(context.Background(), "u1", "p1", 2)
	require.NoError(t, err)

	c, err := svc.SetQuantity(context.Background(), "u1", "p1", 8)
	require.NoError(t, err)
	assert.Equal(t, 8, c.Line("p1").Quantity)
}

func TestSetQuantity_RejectsZero(t *testing.T) {
	svc, _ := newService(testProduct("p1", 10))

	_, err := svc.SetQuantity(context.Background(), "u1", "p1", 0)

	var iqErr *InvalidQuantityError
	require.ErrorAs(t, err, &iqErr)
}

func TestSetQuantity_RejectsOverStock(t *testing.T) {
	svc, _ := newService(testProduct("p1", 5))

	_, err := svc.SetQuantity(context.Background(), "u1", "p1", 6)

	var stockErr *product.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
}

func TestRemoveItem_InverseOfAdd(t *testing.T) {
	svc, _ := newService(testProduct("p1", 10))

	_, err := svc.AddItem(context.Background(), "u1", "p1", 2)
	require.NoError(t, err)

	c, err := svc.RemoveItem(context.Background(), "u1", "p1")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestRemoveItem_AbsentLineIsNoop(t *testing.T) {
	svc, _ := newService(testProduct("p1", 10))

	c, err := svc.RemoveItem(context.Background(), "u1", "p1")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestClear_Idempotent(t *testing.T) {
	svc, _ := newService(testProduct("p1", 10))

	_, err := svc.AddItem(context.Background(), "u1", "p1", 2)
	require.NoError(t, err)

	require.NoError(t, svc.Clear(context.Background(), "u1"))
	require.NoError(t, svc.Clear(context.Background(), "u1"))

	c, err := svc.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

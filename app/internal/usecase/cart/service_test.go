package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	domcart "example.com/storefront/app/internal/domain/cart"
	domcatalog "example.com/storefront/app/internal/domain/catalog"
)

type mockCartRepository struct {
	carts map[string]*domcart.Cart
}

func newMockCartRepository() *mockCartRepository {
	return &mockCartRepository{carts: make(map[string]*domcart.Cart)}
}

func (m *mockCartRepository) Create(ctx context.Context, sessionID string) error {
	if _, ok := m.carts[sessionID]; ok {
		return domcart.ErrSessionExists
	}
	m.carts[sessionID] = domcart.New()
	return nil
}

func (m *mockCartRepository) Update(ctx context.Context, sessionID string, fn func(c *domcart.Cart) error) error {
	c, ok := m.carts[sessionID]
	if !ok {
		return domcart.ErrSessionNotFound
	}
	return fn(c)
}

func (m *mockCartRepository) Delete(ctx context.Context, sessionID string) error {
	delete(m.carts, sessionID)
	return nil
}

type mockCatalog struct {
	entries  map[int64]*domcatalog.Entry
	indexErr error
}

func newMockCatalog(entries ...domcatalog.Entry) *mockCatalog {
	m := &mockCatalog{entries: make(map[int64]*domcatalog.Entry)}
	for i := range entries {
		e := entries[i]
		m.entries[e.ID] = &e
	}
	return m
}

func (m *mockCatalog) GetActive(ctx context.Context, id int64) (*domcatalog.Entry, error) {
	e, ok := m.entries[id]
	if !ok || !e.IsActive {
		return nil, domcatalog.ErrEntryNotFound
	}
	cloned := *e
	return &cloned, nil
}

func (m *mockCatalog) Index(ctx context.Context, ids []int64) (domcatalog.Index, error) {
	if m.indexErr != nil {
		return nil, m.indexErr
	}
	var entries []*domcatalog.Entry
	for _, id := range ids {
		if e, ok := m.entries[id]; ok {
			entries = append(entries, e)
		}
	}
	return domcatalog.NewIndex(entries), nil
}

func item(id int64, price string, stock int64) domcatalog.Entry {
	return domcatalog.Entry{
		ID:        id,
		Kind:      domcatalog.KindService,
		Name:      "Consulting slot",
		UnitPrice: decimal.RequireFromString(price),
		Stock:     stock,
		IsActive:  true,
	}
}

func setupService(entries ...domcatalog.Entry) (*Service, *mockCartRepository, *mockCatalog, string) {
	carts := newMockCartRepository()
	catalog := newMockCatalog(entries...)
	svc := NewService(carts, catalog, nil)
	svc.newID = func() string { return "session-1" }
	sid, _ := svc.StartSession(context.Background())
	return svc, carts, catalog, sid
}

func TestStartSession(t *testing.T) {
	svc, carts, _, sid := setupService()

	require.Equal(t, "session-1", sid)
	require.Contains(t, carts.carts, sid)

	_, err := svc.StartSession(context.Background())
	require.ErrorIs(t, err, domcart.ErrSessionExists)
}

func TestAddItem_MergesAndClampsToStock(t *testing.T) {
	svc, _, _, sid := setupService(item(1, "10.00", 3))

	view, err := svc.AddItem(context.Background(), sid, 1, 2)
	require.NoError(t, err)
	require.Equal(t, int64(2), view.ItemCount)
	require.True(t, view.Total.Equal(decimal.RequireFromString("20.00")))

	view, err = svc.AddItem(context.Background(), sid, 1, 2)

	var stockErr *domcart.StockExceededError
	require.ErrorAs(t, err, &stockErr)
	require.Equal(t, int64(3), stockErr.Limit)
	require.NotNil(t, view, "clamped cart is still returned")
	require.Equal(t, int64(3), view.Lines[0].Quantity)
	require.True(t, view.Total.Equal(decimal.RequireFromString("30.00")))
}

func TestAddItem_UnknownEntry(t *testing.T) {
	svc, carts, _, sid := setupService()

	view, err := svc.AddItem(context.Background(), sid, 99, 1)

	require.ErrorIs(t, err, domcatalog.ErrEntryNotFound)
	require.Nil(t, view)
	require.Equal(t, 0, carts.carts[sid].LineCount())
}

func TestAddItem_InactiveEntry(t *testing.T) {
	inactive := item(1, "10.00", 3)
	inactive.IsActive = false
	svc, _, _, sid := setupService(inactive)

	_, err := svc.AddItem(context.Background(), sid, 1, 1)

	require.ErrorIs(t, err, domcatalog.ErrEntryNotFound)
}

func TestAddItem_InvalidQuantity(t *testing.T) {
	tests := []struct {
		name     string
		quantity int64
	}{
		{name: "Zero quantity", quantity: 0},
		{name: "Negative quantity", quantity: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _, sid := setupService(item(1, "10.00", 3))

			_, err := svc.AddItem(context.Background(), sid, 1, tt.quantity)

			require.ErrorIs(t, err, domcart.ErrInvalidQuantity)
		})
	}
}

func TestAddItem_UnknownSession(t *testing.T) {
	svc, _, _, _ := setupService(item(1, "10.00", 3))

	_, err := svc.AddItem(context.Background(), "nope", 1, 1)

	require.ErrorIs(t, err, domcart.ErrSessionNotFound)
}

func TestSetQuantity(t *testing.T) {
	svc, _, _, sid := setupService(item(1, "10.00", 3))
	_, err := svc.AddItem(context.Background(), sid, 1, 1)
	require.NoError(t, err)

	view, err := svc.SetQuantity(context.Background(), sid, 1, 2)
	require.NoError(t, err)
	require.Equal(t, int64(2), view.Lines[0].Quantity)

	view, err = svc.SetQuantity(context.Background(), sid, 1, 10)
	require.ErrorIs(t, err, domcart.ErrStockExceeded)
	require.Equal(t, int64(3), view.Lines[0].Quantity)

	view, err = svc.SetQuantity(context.Background(), sid, 1, 0)
	require.ErrorIs(t, err, domcart.ErrInvalidQuantity)
	require.Nil(t, view)
}

func TestSetQuantity_UsesLiveStock(t *testing.T) {
	svc, _, catalog, sid := setupService(item(1, "10.00", 5))
	_, err := svc.AddItem(context.Background(), sid, 1, 4)
	require.NoError(t, err)

	catalog.entries[1].Stock = 2

	view, err := svc.SetQuantity(context.Background(), sid, 1, 3)

	require.ErrorIs(t, err, domcart.ErrStockExceeded)
	require.Equal(t, int64(2), view.Lines[0].Quantity)
	require.Len(t, view.Adjustments, 1)
	require.Equal(t, int64(4), view.Adjustments[0].From)
	require.Equal(t, int64(2), view.Adjustments[0].To)
}

func TestSetQuantity_EntryGoneRemovesLine(t *testing.T) {
	svc, _, catalog, sid := setupService(item(1, "10.00", 5))
	_, err := svc.AddItem(context.Background(), sid, 1, 1)
	require.NoError(t, err)

	delete(catalog.entries, 1)

	view, err := svc.SetQuantity(context.Background(), sid, 1, 2)

	require.NoError(t, err)
	require.Empty(t, view.Lines)
	require.Len(t, view.Adjustments, 1)
	require.True(t, view.Adjustments[0].Removed)
}

func TestSetQuantity_UnknownLineIsNoop(t *testing.T) {
	svc, _, _, sid := setupService(item(1, "10.00", 5))

	view, err := svc.SetQuantity(context.Background(), sid, 1, 2)

	require.NoError(t, err)
	require.Empty(t, view.Lines)
}

func TestRemoveItem_IsIdempotent(t *testing.T) {
	svc, _, _, sid := setupService(item(1, "10.00", 5), item(2, "1.00", 5))
	_, _ = svc.AddItem(context.Background(), sid, 1, 1)
	_, _ = svc.AddItem(context.Background(), sid, 2, 1)

	first, err := svc.RemoveItem(context.Background(), sid, 1)
	require.NoError(t, err)
	second, err := svc.RemoveItem(context.Background(), sid, 1)
	require.NoError(t, err)

	require.Equal(t, first.Lines, second.Lines)
	require.Equal(t, 1, second.LineCount)
}

func TestGet_ReconcilesAgainstCatalog(t *testing.T) {
	svc, _, catalog, sid := setupService(item(1, "10.00", 5), item(2, "4.00", 5))
	_, _ = svc.AddItem(context.Background(), sid, 1, 4)
	_, _ = svc.AddItem(context.Background(), sid, 2, 1)

	catalog.entries[1].Stock = 1
	catalog.entries[2].IsActive = false

	view, err := svc.Get(context.Background(), sid)

	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	require.Equal(t, int64(1), view.Lines[0].Quantity)
	require.Len(t, view.Adjustments, 2)
	require.True(t, view.Adjustments[1].Removed)
	require.True(t, view.Total.Equal(decimal.RequireFromString("10.00")))
}

func TestGet_CatalogErrorLeavesCartUntouched(t *testing.T) {
	svc, carts, catalog, sid := setupService(item(1, "10.00", 5))
	_, _ = svc.AddItem(context.Background(), sid, 1, 2)
	catalog.indexErr = errors.New("db timeout")

	_, err := svc.Get(context.Background(), sid)

	require.ErrorContains(t, err, "db timeout")
	require.Equal(t, int64(2), carts.carts[sid].ItemCount())
}

func TestEndSession(t *testing.T) {
	svc, carts, _, sid := setupService()

	require.NoError(t, svc.EndSession(context.Background(), sid))
	require.NotContains(t, carts.carts, sid)
}

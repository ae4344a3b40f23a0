package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	domcart "example.com/storefront/app/internal/domain/cart"
	domcatalog "example.com/storefront/app/internal/domain/catalog"
	domorder "example.com/storefront/app/internal/domain/order"
)

type mockCartRepository struct {
	carts   map[string]*domcart.Cart
	updates int
}

func newMockCartRepository() *mockCartRepository {
	return &mockCartRepository{carts: map[string]*domcart.Cart{"s1": domcart.New()}}
}

func (m *mockCartRepository) Update(ctx context.Context, sessionID string, fn func(c *domcart.Cart) error) error {
	m.updates++
	c, ok := m.carts[sessionID]
	if !ok {
		return domcart.ErrSessionNotFound
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(c)
}

type mockCatalog struct {
	entries map[int64]*domcatalog.Entry
	err     error
}

func (m *mockCatalog) Index(ctx context.Context, ids []int64) (domcatalog.Index, error) {
	if m.err != nil {
		return nil, m.err
	}
	var entries []*domcatalog.Entry
	for _, id := range ids {
		if e, ok := m.entries[id]; ok {
			entries = append(entries, e)
		}
	}
	return domcatalog.NewIndex(entries), nil
}

type mockOrderRepository struct {
	created   []*domorder.Order
	createErr error
	deadline  bool
	onCreate  func()
}

func (m *mockOrderRepository) Create(ctx context.Context, o *domorder.Order) (*domorder.Order, error) {
	_, m.deadline = ctx.Deadline()
	if m.onCreate != nil {
		m.onCreate()
	}
	if m.createErr != nil {
		return nil, m.createErr
	}
	cloned := *o
	cloned.ID = int64(len(m.created) + 1)
	cloned.CreatedAt = time.Now()
	m.created = append(m.created, &cloned)
	return &cloned, nil
}

type mockNotifier struct {
	published []*domorder.Order
	err       error
	ctxErr    error
}

func (m *mockNotifier) OrderPlaced(ctx context.Context, o *domorder.Order) error {
	m.ctxErr = ctx.Err()
	m.published = append(m.published, o)
	return m.err
}

func catalogEntry(id int64, price string, stock int64) *domcatalog.Entry {
	return &domcatalog.Entry{
		ID:        id,
		Kind:      domcatalog.KindProduct,
		Name:      "Item",
		UnitPrice: decimal.RequireFromString(price),
		Stock:     stock,
		IsActive:  true,
	}
}

type fixture struct {
	svc      *Service
	carts    *mockCartRepository
	catalog  *mockCatalog
	orders   *mockOrderRepository
	notifier *mockNotifier
}

func newFixture(entries ...*domcatalog.Entry) *fixture {
	f := &fixture{
		carts:    newMockCartRepository(),
		catalog:  &mockCatalog{entries: make(map[int64]*domcatalog.Entry)},
		orders:   &mockOrderRepository{},
		notifier: &mockNotifier{},
	}
	for _, e := range entries {
		f.catalog.entries[e.ID] = e
	}
	f.svc = NewService(f.carts, f.catalog, f.orders, f.notifier, time.Second, nil)
	f.svc.newReference = func() string { return "ref-1" }
	return f
}

func (f *fixture) add(t *testing.T, id, quantity int64) {
	t.Helper()
	require.NoError(t, f.carts.carts["s1"].Add(*f.catalog.entries[id], quantity))
}

func TestCheckout_WithEmptyCart_ReturnsError(t *testing.T) {
	f := newFixture()

	order, err := f.svc.Checkout(context.Background(), "s1")

	require.ErrorIs(t, err, domorder.ErrEmptyOrderItems)
	require.Nil(t, order)
	require.Empty(t, f.orders.created, "order should not be created for empty cart")
}

func TestCheckout_UnknownSession(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Checkout(context.Background(), "missing")

	require.ErrorIs(t, err, domcart.ErrSessionNotFound)
}

func TestCheckout_Succeeds(t *testing.T) {
	f := newFixture(catalogEntry(1, "10.00", 3), catalogEntry(2, "2.50", 10))
	f.add(t, 1, 2)
	f.add(t, 2, 4)

	order, err := f.svc.Checkout(context.Background(), "s1")

	require.NoError(t, err)
	require.Equal(t, int64(1), order.ID)
	require.Equal(t, "ref-1", order.Reference)
	require.Equal(t, domorder.StatusPending, order.Status)
	require.True(t, order.TotalAmount.Equal(decimal.RequireFromString("30.00")))
	require.Len(t, order.Items, 2)
	require.Equal(t, int64(1), order.Items[0].CatalogID)
	require.Equal(t, int64(4), order.Items[1].Quantity)

	require.Equal(t, 0, f.carts.carts["s1"].LineCount(), "cart should be cleared after success")
	require.Len(t, f.notifier.published, 1)
	require.True(t, f.orders.deadline, "submission should run with a deadline")
}

func TestCheckout_SubmissionFailureKeepsCart(t *testing.T) {
	f := newFixture(catalogEntry(1, "10.00", 3))
	f.add(t, 1, 2)
	f.orders.createErr = errors.New("connection reset")

	order, err := f.svc.Checkout(context.Background(), "s1")

	require.ErrorContains(t, err, "connection reset")
	require.Nil(t, order)
	require.Equal(t, int64(2), f.carts.carts["s1"].ItemCount(), "cart should survive for retry")
	require.Empty(t, f.notifier.published)
}

func TestCheckout_RetryAfterFailureUsesFreshPayload(t *testing.T) {
	f := newFixture(catalogEntry(1, "10.00", 5))
	f.add(t, 1, 2)
	f.orders.createErr = errors.New("timeout")
	_, err := f.svc.Checkout(context.Background(), "s1")
	require.Error(t, err)

	f.add(t, 1, 1)
	f.orders.createErr = nil
	order, err := f.svc.Checkout(context.Background(), "s1")

	require.NoError(t, err)
	require.Equal(t, int64(3), order.Items[0].Quantity)
}

func TestCheckout_InterimMutationDoesNotChangeSubmittedPayload(t *testing.T) {
	f := newFixture(catalogEntry(1, "10.00", 5), catalogEntry(2, "1.00", 5))
	f.add(t, 1, 2)

	var submitted *domorder.Order
	f.orders.onCreate = func() {
		// the shopper keeps clicking while the order is in flight
		f.add(t, 1, 1)
		f.add(t, 2, 3)
	}

	order, err := f.svc.Checkout(context.Background(), "s1")
	require.NoError(t, err)
	submitted = f.orders.created[0]

	require.Len(t, submitted.Items, 1)
	require.Equal(t, int64(2), submitted.Items[0].Quantity)
	require.True(t, order.TotalAmount.Equal(decimal.RequireFromString("20.00")))
	require.Equal(t, 0, f.carts.carts["s1"].LineCount(), "cart is empty after success regardless of interim adds")
}

func TestCheckout_AdjustedCartIsNotSubmitted(t *testing.T) {
	f := newFixture(catalogEntry(1, "10.00", 5))
	f.add(t, 1, 4)
	f.catalog.entries[1].Stock = 2

	order, err := f.svc.Checkout(context.Background(), "s1")

	require.ErrorIs(t, err, ErrCartAdjusted)
	var adjusted *AdjustedError
	require.ErrorAs(t, err, &adjusted)
	require.Len(t, adjusted.Adjustments, 1)
	require.Equal(t, int64(1), adjusted.Adjustments[0].ID)
	require.Equal(t, int64(4), adjusted.Adjustments[0].From)
	require.Equal(t, int64(2), adjusted.Adjustments[0].To)
	require.Nil(t, order)
	require.Empty(t, f.orders.created)
	line, ok := f.carts.carts["s1"].Line(1)
	require.True(t, ok)
	require.Equal(t, int64(2), line.Quantity, "cart keeps the adjusted quantity for review")

	order, err = f.svc.Checkout(context.Background(), "s1")
	require.NoError(t, err)
	require.Equal(t, int64(2), order.Items[0].Quantity)
}

func TestCheckout_CatalogErrorKeepsCart(t *testing.T) {
	f := newFixture(catalogEntry(1, "10.00", 5))
	f.add(t, 1, 1)
	f.catalog.err = errors.New("catalog unavailable")

	_, err := f.svc.Checkout(context.Background(), "s1")

	require.ErrorContains(t, err, "catalog unavailable")
	require.Equal(t, 1, f.carts.carts["s1"].LineCount())
	require.Empty(t, f.orders.created)
}

func TestCheckout_NotifierFailureDoesNotFailCheckout(t *testing.T) {
	f := newFixture(catalogEntry(1, "10.00", 5))
	f.add(t, 1, 1)
	f.notifier.err = errors.New("broker unreachable")

	order, err := f.svc.Checkout(context.Background(), "s1")

	require.NoError(t, err)
	require.NotNil(t, order)
	require.Equal(t, 0, f.carts.carts["s1"].LineCount())
}

func TestCheckout_WithoutNotifier(t *testing.T) {
	f := newFixture(catalogEntry(1, "10.00", 5))
	f.add(t, 1, 1)
	f.svc = NewService(f.carts, f.catalog, f.orders, nil, 0, nil)

	order, err := f.svc.Checkout(context.Background(), "s1")

	require.NoError(t, err)
	require.NotEmpty(t, order.Reference)
	require.Equal(t, defaultSubmitTimeout, f.svc.submitTimeout)
}

func TestCheckout_SessionGoneBeforeClearStillSucceeds(t *testing.T) {
	f := newFixture(catalogEntry(1, "10.00", 5))
	f.add(t, 1, 1)
	f.orders.onCreate = func() {
		delete(f.carts.carts, "s1")
	}

	order, err := f.svc.Checkout(context.Background(), "s1")

	require.NoError(t, err)
	require.NotNil(t, order)
}

func TestCheckout_RequestCanceledAfterSubmitStillClearsCart(t *testing.T) {
	f := newFixture(catalogEntry(1, "10.00", 5))
	f.add(t, 1, 2)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.orders.onCreate = cancel

	order, err := f.svc.Checkout(ctx, "s1")

	require.NoError(t, err)
	require.NotNil(t, order)
	require.Len(t, f.orders.created, 1)
	require.Zero(t, f.carts.carts["s1"].ItemCount(), "stored order must not leave lines behind")
	require.Len(t, f.notifier.published, 1)
	require.NoError(t, f.notifier.ctxErr)

	_, err = f.svc.Checkout(context.Background(), "s1")
	require.ErrorIs(t, err, domorder.ErrEmptyOrderItems)
	require.Len(t, f.orders.created, 1, "retry must not place a second order")
}

package order

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelara/comanda/internal/domain/catalog"
	"github.com/avelara/comanda/internal/domain/promotion"
	"github.com/avelara/comanda/internal/money"
	"github.com/avelara/comanda/internal/notify"
)

// --- Mock implementations ---

type mockOrderRepo struct {
	byID    map[string]*Order
	listErr error
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{byID: make(map[string]*Order)}
}

func (m *mockOrderRepo) Create(_ context.Context, o *Order) error {
	cp := *o
	m.byID[o.ID] = &cp
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id string) (*Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	cp.Items = append([]Item(nil), o.Items...)
	return &cp, nil
}

func (m *mockOrderRepo) List(_ context.Context, f ListFilter) ([]Order, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []Order
	for _, o := range m.byID {
		if f.KitchenStatus != "" && o.KitchenStatus != f.KitchenStatus {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		out = append(out, *o)
	}
	return out, nil
}

func (m *mockOrderRepo) Update(_ context.Context, o *Order) error {
	if _, ok := m.byID[o.ID]; !ok {
		return ErrNotFound
	}
	cp := *o
	m.byID[o.ID] = &cp
	return nil
}

func (m *mockOrderRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.byID[id]; !ok {
		return ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

type mockCatalog struct {
	products map[string]catalog.Product
	err      error
}

func (m *mockCatalog) ListProducts(_ context.Context) ([]catalog.Product, error) {
	return nil, nil
}

func (m *mockCatalog) GetProduct(_ context.Context, id string) (*catalog.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return &p, nil
}

func (m *mockCatalog) GetProducts(_ context.Context, ids []string) ([]catalog.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []catalog.Product
	seen := make(map[string]bool)
	for _, id := range ids {
		if p, ok := m.products[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockCatalog) ListCategories(_ context.Context) ([]catalog.Category, error) {
	return nil, nil
}

func (m *mockCatalog) ListIngredients(_ context.Context) ([]catalog.Ingredient, error) {
	return nil, nil
}

type mockPromoRepo struct {
	byCode map[string]*promotion.Promotion
}

func (m *mockPromoRepo) ListActive(_ context.Context) ([]promotion.Promotion, error) {
	return nil, nil
}

func (m *mockPromoRepo) FindByCode(_ context.Context, code string) (*promotion.Promotion, error) {
	p, ok := m.byCode[code]
	if !ok {
		return nil, promotion.ErrInvalidCode
	}
	return p, nil
}

type mockTables struct {
	occupied map[string]string
	freed    []string
}

func newMockTables() *mockTables {
	return &mockTables{occupied: make(map[string]string)}
}

func (m *mockTables) Occupy(_ context.Context, tableID, orderID string) error {
	m.occupied[tableID] = orderID
	return nil
}

func (m *mockTables) Free(_ context.Context, tableID string) error {
	delete(m.occupied, tableID)
	m.freed = append(m.freed, tableID)
	return nil
}

// --- Helpers ---

type fixture struct {
	svc    *Service
	orders *mockOrderRepo
	tables *mockTables
	hub    *notify.Hub
	events *[]notify.Event
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cat := &mockCatalog{products: map[string]catalog.Product{
		"p1": {ID: "p1", Name: "Margherita", Price: 1200, Cost: 400, CategoryID: "pizza"},
		"p2": {ID: "p2", Name: "Lemonade", Price: 300, Cost: 100, CategoryID: "drinks"},
	}}
	promos := &mockPromoRepo{byCode: map[string]*promotion.Promotion{
		"TEN": {
			ID: "promo-10", Name: "10% off", Type: promotion.TypePercentage,
			Value: decimal.NewFromInt(10), Code: "TEN", Active: true,
		},
	}}

	orders := newMockOrderRepo()
	tables := newMockTables()
	hub := notify.NewHub()

	var events []notify.Event
	hub.Subscribe(notify.TopicOrdersChanged, func(e notify.Event) {
		events = append(events, e)
	})

	svc := NewService(orders, cat, promos, tables, hub)
	svc.now = func() time.Time { return t0 }

	return &fixture{svc: svc, orders: orders, tables: tables, hub: hub, events: &events}
}

func (f *fixture) createDineIn(t *testing.T) *Order {
	t.Helper()
	o, err := f.svc.Create(context.Background(), CreateRequest{
		Kind:      KindDineIn,
		TableID:   "t1",
		PartySize: 2,
		Items: []ItemRequest{
			{ProductID: "p1", Quantity: 2},
			{ProductID: "p2", Quantity: 1},
		},
	})
	require.NoError(t, err)
	return o
}

// --- Tests ---

func TestServiceCreate_DineIn(t *testing.T) {
	f := newFixture(t)

	o := f.createDineIn(t)

	assert.Equal(t, StatusInProgress, o.Status)
	assert.Equal(t, money.Amount(2700), o.Subtotal)
	assert.Equal(t, "Margherita", o.Items[0].Name)
	assert.Equal(t, o.ID, f.tables.occupied["t1"])
	require.Len(t, *f.events, 1)
	assert.Equal(t, o.ID, (*f.events)[0].OrderID)
}

func TestServiceCreate_UnknownProduct(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), CreateRequest{
		Kind:    KindDineIn,
		TableID: "t1",
		Items:   []ItemRequest{{ProductID: "missing", Quantity: 1}},
	})

	require.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestServiceCreate_TakeawayWithoutClientInfo(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), CreateRequest{
		Kind:  KindTakeaway,
		Items: []ItemRequest{{ProductID: "p1", Quantity: 1}},
	})

	var iiErr *InvalidInputError
	require.ErrorAs(t, err, &iiErr)
	assert.Empty(t, f.orders.byID)
}

func TestServicePartialDispatchScenario(t *testing.T) {
	f := newFixture(t)
	o := f.createDineIn(t)

	item1, item2 := o.Items[0].ID, o.Items[1].ID

	got, err := f.svc.Dispatch(context.Background(), o.ID, []string{item1})
	require.NoError(t, err)
	assert.Len(t, got.SentItems(), 1)
	assert.Len(t, got.PendingItems(), 1)

	// Sent item is locked.
	qty := 5
	_, err = f.svc.UpdateItem(context.Background(), o.ID, item1, ItemUpdate{Quantity: &qty})
	var lockErr *ItemLockedError
	require.ErrorAs(t, err, &lockErr)

	// Pending item still editable.
	got, err = f.svc.UpdateItem(context.Background(), o.ID, item2, ItemUpdate{Quantity: &qty})
	require.NoError(t, err)
	assert.Equal(t, 5, got.item(item2).Quantity)
}

func TestServiceApplyPromoCodes(t *testing.T) {
	f := newFixture(t)
	o := f.createDineIn(t) // subtotal 2700

	got, err := f.svc.ApplyPromoCodes(context.Background(), o.ID, []string{"TEN"})
	require.NoError(t, err)

	assert.Equal(t, money.Amount(270), got.TotalDiscount)
	assert.Equal(t, money.Amount(2430), got.Total)

	_, err = f.svc.ApplyPromoCodes(context.Background(), o.ID, []string{"BOGUS"})
	require.ErrorIs(t, err, promotion.ErrInvalidCode)
}

func TestServiceFinalize_ComputesProfitAndFreesTable(t *testing.T) {
	f := newFixture(t)
	o := f.createDineIn(t)

	_, err := f.svc.Dispatch(context.Background(), o.ID, nil)
	require.NoError(t, err)
	_, err = f.svc.MarkReady(context.Background(), o.ID)
	require.NoError(t, err)
	_, err = f.svc.Handoff(context.Background(), o.ID)
	require.NoError(t, err)

	got, err := f.svc.Finalize(context.Background(), o.ID, "cash", "")
	require.NoError(t, err)

	assert.Equal(t, StatusFinalized, got.Status)
	// (1200-400)*2 + (300-100)*1 = 1800, no discount.
	require.NotNil(t, got.Profit)
	assert.Equal(t, money.Amount(1800), *got.Profit)
	assert.Contains(t, f.tables.freed, "t1")

	_, err = f.svc.Finalize(context.Background(), o.ID, "cash", "")
	var itErr *IllegalTransitionError
	require.ErrorAs(t, err, &itErr)
}

func TestServiceCancel(t *testing.T) {
	f := newFixture(t)
	o := f.createDineIn(t)

	require.NoError(t, f.svc.Cancel(context.Background(), o.ID))
	assert.Empty(t, f.orders.byID)
	assert.Contains(t, f.tables.freed, "t1")
}

func TestServiceCancel_RejectedAfterDispatch(t *testing.T) {
	f := newFixture(t)
	o := f.createDineIn(t)

	_, err := f.svc.Dispatch(context.Background(), o.ID, nil)
	require.NoError(t, err)

	var itErr *IllegalTransitionError
	require.ErrorAs(t, f.svc.Cancel(context.Background(), o.ID), &itErr)
}

func TestServiceKitchenTickets(t *testing.T) {
	f := newFixture(t)
	o := f.createDineIn(t)

	_, err := f.svc.Dispatch(context.Background(), o.ID, nil)
	require.NoError(t, err)

	// Push the clock 25 minutes past dispatch.
	f.svc.now = func() time.Time { return t0.Add(25 * time.Minute) }

	tickets, err := f.svc.KitchenTickets(context.Background())
	require.NoError(t, err)

	require.Len(t, tickets, 1)
	assert.Equal(t, o.ID, tickets[0].OrderID)
	assert.Equal(t, UrgencyCritical, tickets[0].Urgency)
	assert.Len(t, tickets[0].Ticket.Lines, 2)
}

func TestServiceTrack(t *testing.T) {
	f := newFixture(t)
	o := f.createDineIn(t)

	view, err := f.svc.Track(context.Background(), o.ID)
	require.NoError(t, err)
	assert.True(t, view.HasStep)
	assert.Equal(t, StepValidated, view.Step)

	_, err = f.svc.Dispatch(context.Background(), o.ID, nil)
	require.NoError(t, err)

	view, err = f.svc.Track(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, StepPreparing, view.Step)
}

func TestServiceGet_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Get(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestServiceKitchenTickets_ListError(t *testing.T) {
	f := newFixture(t)
	f.orders.listErr = errors.New("db down")

	_, err := f.svc.KitchenTickets(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list kitchen orders")
}

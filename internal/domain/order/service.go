package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/avelara/comanda/internal/domain/catalog"
	"github.com/avelara/comanda/internal/domain/promotion"
	"github.com/avelara/comanda/internal/domain/table"
	"github.com/avelara/comanda/internal/money"
	"github.com/avelara/comanda/internal/notify"
)

// Service orchestrates lifecycle operations against persistence, the
// catalog, the table collaborator and the change-notification feed. Every
// operation loads a fresh snapshot, applies the lifecycle transition and
// writes the result back; there is no shared in-memory order cache.
type Service struct {
	orders     Repository
	catalog    catalog.Repository
	promotions promotion.Repository
	tables     table.Manager
	notifier   notify.Broadcaster
	now        func() time.Time
}

// NewService creates an order Service with the required collaborators.
func NewService(
	orders Repository,
	cat catalog.Repository,
	promos promotion.Repository,
	tables table.Manager,
	notifier notify.Broadcaster,
) *Service {
	return &Service{
		orders:     orders,
		catalog:    cat,
		promotions: promos,
		tables:     tables,
		notifier:   notifier,
		now:        time.Now,
	}
}

// ItemRequest identifies a product and the requested quantity for a new line
// item.
type ItemRequest struct {
	ProductID           string
	Quantity            int
	Comment             string
	ExcludedIngredients []string
}

// CreateRequest holds the input for creating an order.
type CreateRequest struct {
	Kind        Kind
	TableID     string
	PartySize   int
	Client      *ClientInfo
	ShippingFee money.Amount
	Items       []ItemRequest
}

// Create builds a new order from catalog products, occupies the table for
// dine-in orders, persists it and broadcasts the change.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Order, error) {
	items, err := s.resolveItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	o, err := Create(CreateParams{
		ID:          uuid.New().String(),
		Kind:        req.Kind,
		TableID:     req.TableID,
		PartySize:   req.PartySize,
		Client:      req.Client,
		ShippingFee: req.ShippingFee,
		Items:       items,
	}, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	if o.Kind == KindDineIn {
		if err := s.tables.Occupy(ctx, o.TableID, o.ID); err != nil {
			return nil, errors.Wrap(err, "occupy table")
		}
	}

	s.broadcast(ctx, o.ID)
	return o, nil
}

// Get returns a fresh snapshot of the order.
func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return o, nil
}

// List returns fresh snapshots matching the filter.
func (s *Service) List(ctx context.Context, f ListFilter) ([]Order, error) {
	return s.orders.List(ctx, f)
}

// AddItems resolves the requested products and appends them as pending
// items.
func (s *Service) AddItems(ctx context.Context, orderID string, reqs []ItemRequest) (*Order, error) {
	items, err := s.resolveItems(ctx, reqs)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, orderID, func(o *Order) error {
		return o.AddItems(items)
	})
}

// UpdateItem edits a pending item's quantity or comment.
func (s *Service) UpdateItem(ctx context.Context, orderID, itemID string, upd ItemUpdate) (*Order, error) {
	return s.mutate(ctx, orderID, func(o *Order) error {
		return o.UpdateItem(itemID, upd)
	})
}

// RemoveItem deletes a pending item.
func (s *Service) RemoveItem(ctx context.Context, orderID, itemID string) (*Order, error) {
	return s.mutate(ctx, orderID, func(o *Order) error {
		return o.RemoveItem(itemID)
	})
}

// Dispatch commits the selected (or all) pending items to the kitchen.
func (s *Service) Dispatch(ctx context.Context, orderID string, itemIDs []string) (*Order, error) {
	return s.mutate(ctx, orderID, func(o *Order) error {
		return o.Dispatch(itemIDs, s.now())
	})
}

// MarkReady marks the order's food as ready.
func (s *Service) MarkReady(ctx context.Context, orderID string) (*Order, error) {
	return s.mutate(ctx, orderID, func(o *Order) error {
		return o.MarkReady(s.now())
	})
}

// Handoff records service/delivery of the ready order.
func (s *Service) Handoff(ctx context.Context, orderID string) (*Order, error) {
	return s.mutate(ctx, orderID, func(o *Order) error {
		return o.Handoff(s.now())
	})
}

// ValidatePayment accepts a takeaway order's payment proof.
func (s *Service) ValidatePayment(ctx context.Context, orderID string) (*Order, error) {
	return s.mutate(ctx, orderID, func(o *Order) error {
		return o.ValidatePayment()
	})
}

// ApplyPromoCodes looks up the given promo codes, checks their validity and
// recomputes the order's discount chain.
func (s *Service) ApplyPromoCodes(ctx context.Context, orderID string, codes []string) (*Order, error) {
	now := s.now()
	promos := make([]promotion.Promotion, 0, len(codes))
	for _, code := range codes {
		p, err := s.promotions.FindByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		if !p.ValidAt(now) {
			return nil, promotion.ErrExpired
		}
		promos = append(promos, *p)
	}

	return s.mutate(ctx, orderID, func(o *Order) error {
		return o.ApplyPromotions(promos)
	})
}

// Finalize locks the order's monetary fields, computes profit from the
// catalog cost basis and frees the table for dine-in orders.
func (s *Service) Finalize(ctx context.Context, orderID, paymentMethod, receiptURL string) (*Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := o.Finalize(paymentMethod, receiptURL, s.now()); err != nil {
		return nil, err
	}

	profit, err := s.profit(ctx, o)
	if err != nil {
		return nil, err
	}
	o.Profit = &profit

	if err := s.orders.Update(ctx, o); err != nil {
		return nil, errors.Wrap(err, "update order")
	}

	if o.Kind == KindDineIn && o.TableID != "" {
		if err := s.tables.Free(ctx, o.TableID); err != nil {
			return nil, errors.Wrap(err, "free table")
		}
	}

	s.broadcast(ctx, o.ID)
	return o, nil
}

// Cancel discards a pre-dispatch order, freeing its table. Once any item is
// sent the order is a durable commitment and cannot be cancelled.
func (s *Service) Cancel(ctx context.Context, orderID string) error {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if !o.Cancellable() {
		return &IllegalTransitionError{Op: "cancel", Status: o.Status, KitchenStatus: o.KitchenStatus}
	}

	if err := s.orders.Delete(ctx, orderID); err != nil {
		return errors.Wrap(err, "delete order")
	}

	if o.Kind == KindDineIn && o.TableID != "" {
		if err := s.tables.Free(ctx, o.TableID); err != nil {
			return errors.Wrap(err, "free table")
		}
	}

	s.broadcast(ctx, orderID)
	return nil
}

// OpenTicket is a kitchen ticket annotated with its order context and
// urgency tier.
type OpenTicket struct {
	OrderID     string
	Kind        Kind
	TableID     string
	Ticket      Ticket
	Urgency     Urgency
	PendingLeft int
}

// KitchenTickets returns every ticket of every order currently in the
// kitchen (received, not yet ready), oldest dispatch first.
func (s *Service) KitchenTickets(ctx context.Context) ([]OpenTicket, error) {
	orders, err := s.orders.List(ctx, ListFilter{KitchenStatus: KitchenReceived})
	if err != nil {
		return nil, errors.Wrap(err, "list kitchen orders")
	}

	now := s.now()
	var out []OpenTicket
	for i := range orders {
		o := &orders[i]
		for _, t := range o.Tickets() {
			out = append(out, OpenTicket{
				OrderID:     o.ID,
				Kind:        o.Kind,
				TableID:     o.TableID,
				Ticket:      t,
				Urgency:     ClassifyUrgency(t.SentAt, now),
				PendingLeft: len(o.PendingItems()),
			})
		}
	}
	return out, nil
}

// TrackerView is the customer-facing projection of one order.
type TrackerView struct {
	OrderID string
	Step    int
	HasStep bool
	Urgency Urgency
}

// Track projects the order onto the customer tracker.
func (s *Service) Track(ctx context.Context, orderID string) (*TrackerView, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	step, ok := o.ProgressStep()
	return &TrackerView{
		OrderID: o.ID,
		Step:    step,
		HasStep: ok,
		Urgency: o.Urgency(s.now()),
	}, nil
}

// mutate loads a fresh snapshot, applies fn, persists and broadcasts.
func (s *Service) mutate(ctx context.Context, orderID string, fn func(*Order) error) (*Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := fn(o); err != nil {
		return nil, err
	}

	if err := s.orders.Update(ctx, o); err != nil {
		return nil, errors.Wrap(err, "update order")
	}

	s.broadcast(ctx, o.ID)
	return o, nil
}

// resolveItems fetches the referenced products in one batch and builds line
// items priced from the catalog.
func (s *Service) resolveItems(ctx context.Context, reqs []ItemRequest) ([]Item, error) {
	if len(reqs) == 0 {
		return nil, nil
	}

	ids := make([]string, len(reqs))
	for i, r := range reqs {
		if r.Quantity < 1 {
			return nil, &InvalidInputError{Reason: "item quantity must be at least 1"}
		}
		ids[i] = r.ProductID
	}

	fetched, err := s.catalog.GetProducts(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get products")
	}
	byID := make(map[string]catalog.Product, len(fetched))
	for _, p := range fetched {
		byID[p.ID] = p
	}

	items := make([]Item, len(reqs))
	for i, r := range reqs {
		p, ok := byID[r.ProductID]
		if !ok {
			return nil, errors.Wrapf(catalog.ErrNotFound, "product %s", r.ProductID)
		}
		items[i] = Item{
			ID:                  uuid.New().String(),
			ProductID:           p.ID,
			Name:                p.Name,
			UnitPrice:           p.Price,
			Quantity:            r.Quantity,
			Comment:             r.Comment,
			ExcludedIngredients: r.ExcludedIngredients,
			SendState:           SendPending,
		}
	}
	return items, nil
}

// profit computes the cost-basis profit at finalization:
// sum((unitPrice - cost) * qty) - totalDiscount.
func (s *Service) profit(ctx context.Context, o *Order) (money.Amount, error) {
	ids := make([]string, 0, len(o.Items))
	for i := range o.Items {
		ids = append(ids, o.Items[i].ProductID)
	}

	products, err := s.catalog.GetProducts(ctx, ids)
	if err != nil {
		return 0, errors.Wrap(err, "get products for profit")
	}
	costs := make(map[string]money.Amount, len(products))
	for _, p := range products {
		costs[p.ID] = p.Cost
	}

	var profit money.Amount
	for i := range o.Items {
		it := &o.Items[i]
		profit += (it.UnitPrice - costs[it.ProductID]).Mul(it.Quantity)
	}
	return profit - o.TotalDiscount, nil
}

// broadcast is best-effort: a failed notification never rolls back a
// committed write, consumers will catch up on their next poll.
func (s *Service) broadcast(ctx context.Context, orderID string) {
	_ = s.notifier.Publish(ctx, notify.Event{
		Topic:   notify.TopicOrdersChanged,
		OrderID: orderID,
	})
}

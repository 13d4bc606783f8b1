package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"upahar/internal/cart"
	"upahar/internal/events"
	"upahar/internal/menu"
	"upahar/internal/metrics"
	"upahar/internal/pricing"
)

const publishTimeout = 5 * time.Second

// Carts is the part of the cart service checkout and reorder need.
type Carts interface {
	Checkout(ctx context.Context, sess cart.Session, place func([]cart.Line, pricing.Totals) error) error
	Add(ctx context.Context, sess cart.Session, menuItemID string, quantity int) (cart.View, error)
	Get(ctx context.Context, sess cart.Session) (cart.View, error)
}

// Addresses supplies a user's saved delivery address.
type Addresses interface {
	DeliveryAddress(ctx context.Context, userID string) (string, error)
}

type Service struct {
	repo      Repository
	carts     Carts
	addresses Addresses
	publisher events.Publisher
	metrics   *metrics.Metrics
}

func NewService(
	repo Repository,
	carts Carts,
	addresses Addresses,
	publisher events.Publisher,
	m *metrics.Metrics,
) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		repo:      repo,
		carts:     carts,
		addresses: addresses,
		publisher: publisher,
		metrics:   m,
	}
}

type PlaceRequest struct {
	DeliveryAddress string        `json:"delivery_address"`
	PaymentMethod   PaymentMethod `json:"payment_method"`
}

// --------------------------------------------------
// PLACE
// --------------------------------------------------

// Place turns userID's cart into an order. The cart is cleared only when the
// order is stored.
func (s *Service) Place(ctx context.Context, userID string, req PlaceRequest) (*Order, error) {
	if !req.PaymentMethod.Valid() {
		return nil, ErrInvalidPaymentMethod
	}

	address := strings.TrimSpace(req.DeliveryAddress)
	if address == "" && s.addresses != nil {
		saved, err := s.addresses.DeliveryAddress(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("load delivery address: %w", err)
		}
		address = saved
	}
	if address == "" {
		return nil, ErrDeliveryAddressNeeded
	}

	var order *Order
	err := s.carts.Checkout(ctx, cart.UserSession(userID), func(lines []cart.Line, totals pricing.Totals) error {
		o := &Order{
			ID:              uuid.New().String(),
			UserID:          userID,
			Status:          StatusPending,
			Items:           make([]Item, 0, len(lines)),
			Subtotal:        totals.Subtotal,
			DeliveryFee:     totals.DeliveryFee,
			Tax:             totals.Tax,
			Total:           totals.GrandTotal,
			DeliveryAddress: address,
			PaymentMethod:   req.PaymentMethod,
		}
		for _, l := range lines {
			o.Items = append(o.Items, Item{
				ID:           uuid.New().String(),
				MenuItemID:   l.Item.ID,
				Name:         l.Item.Name,
				Quantity:     l.Quantity,
				PriceAtOrder: l.Item.Price,
			})
		}

		if err := s.repo.Create(ctx, o); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.OrderPlaced()
	slog.Info("order placed",
		"order_id", order.ID, "user_id", userID, "items", order.ItemCount(), "total", order.Total.StringFixed(2))

	s.publish(ctx, order)
	return order, nil
}

func (s *Service) publish(ctx context.Context, o *Order) {
	ev := events.OrderPlaced{
		OrderID:       o.ID,
		UserID:        o.UserID,
		Items:         make([]events.OrderPlacedItem, 0, len(o.Items)),
		Subtotal:      o.Subtotal,
		DeliveryFee:   o.DeliveryFee,
		Tax:           o.Tax,
		Total:         o.Total,
		PaymentMethod: string(o.PaymentMethod),
		PlacedAt:      o.CreatedAt,
	}
	for _, it := range o.Items {
		ev.Items = append(ev.Items, events.OrderPlacedItem{
			MenuItemID:   it.MenuItemID,
			Name:         it.Name,
			Quantity:     it.Quantity,
			PriceAtOrder: it.PriceAtOrder,
		})
	}

	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := s.publisher.PublishOrderPlaced(pctx, ev); err != nil {
		s.metrics.EventPublishFailure()
		slog.Warn("order event not published", "order_id", o.ID, "error", err)
	}
}

// --------------------------------------------------
// READ
// --------------------------------------------------
func (s *Service) List(ctx context.Context, userID string, status Status) ([]Order, error) {
	if status != "" && !status.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.repo.ListByUser(ctx, userID, status)
}

func (s *Service) Get(ctx context.Context, userID, id string) (*Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	return s.repo.GetForUser(ctx, userID, id)
}

// --------------------------------------------------
// REORDER
// --------------------------------------------------

// ReorderResult is the refreshed cart plus the dishes that could not be added.
type ReorderResult struct {
	Cart    cart.View `json:"cart"`
	Added   int       `json:"added"`
	Skipped []string  `json:"skipped"`
}

// Reorder adds an earlier order's lines back into the cart. Dishes that were
// deleted or are no longer available are skipped.
func (s *Service) Reorder(ctx context.Context, userID, id string) (*ReorderResult, error) {
	o, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	sess := cart.UserSession(userID)
	res := &ReorderResult{Skipped: []string{}}
	for _, it := range o.Items {
		if it.MenuItemID == "" {
			res.Skipped = append(res.Skipped, it.Name)
			continue
		}

		view, err := s.carts.Add(ctx, sess, it.MenuItemID, it.Quantity)
		switch {
		case errors.Is(err, menu.ErrNotFound), errors.Is(err, cart.ErrItemUnavailable):
			res.Skipped = append(res.Skipped, it.Name)
			continue
		case err != nil:
			return nil, err
		}
		res.Cart = view
		res.Added++
	}

	if res.Added == 0 {
		if res.Cart, err = s.carts.Get(ctx, sess); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// --------------------------------------------------
// ADMIN
// --------------------------------------------------
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status) (*Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

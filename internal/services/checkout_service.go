package services

import (
	"context"
	"time"

	"storefront/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// OrderPublisher announces placed orders to downstream consumers.
type OrderPublisher interface {
	PublishOrderPlaced(ctx context.Context, order *models.OrderPlaced) error
}

// CheckoutService turns a non-empty cart into a placed order. No payment is
// taken and no order is stored: the cart is cleared and an event is published.
type CheckoutService struct {
	carts     *CartService
	sessions  *SessionService
	publisher OrderPublisher
	now       func() time.Time
	log       logrus.FieldLogger
}

// NewCheckoutService creates a CheckoutService. publisher may be nil.
func NewCheckoutService(carts *CartService, sessions *SessionService, publisher OrderPublisher, now func() time.Time, log logrus.FieldLogger) *CheckoutService {
	if now == nil {
		now = time.Now
	}
	return &CheckoutService{
		carts:     carts,
		sessions:  sessions,
		publisher: publisher,
		now:       now,
		log:       log,
	}
}

// Review prices the cart for confirmation before checkout.
func (s *CheckoutService) Review(ctx context.Context, session *models.Session) (*CartSnapshot, error) {
	if session == nil || session.Cart.IsEmpty() {
		return nil, ErrEmptyCart
	}
	return s.carts.Snapshot(ctx, session.Cart)
}

// Checkout clears the session cart and signals the order. A cart that is
// already empty fails with ErrEmptyCart, so repeating a checkout never
// places a second order.
func (s *CheckoutService) Checkout(ctx context.Context, identity *models.Identity, session *models.Session) (*models.OrderPlaced, error) {
	if identity == nil {
		return nil, ErrUnauthenticated
	}
	if session == nil || session.Cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	snapshot, err := s.carts.Snapshot(ctx, session.Cart)
	if err != nil {
		return nil, err
	}

	previous := session.Cart
	session.Cart = models.Cart{}
	if err := s.sessions.Save(ctx, session); err != nil {
		session.Cart = previous
		return nil, err
	}

	order := &models.OrderPlaced{
		OrderID:  uuid.NewString(),
		UserID:   identity.UserID,
		Lines:    make([]models.OrderLine, 0, len(snapshot.Lines)),
		Total:    snapshot.Total,
		PlacedAt: s.now(),
	}
	for _, line := range snapshot.Lines {
		order.Lines = append(order.Lines, models.OrderLine{
			ProductID: line.Product.ID,
			Name:      line.Product.Name,
			Quantity:  line.Quantity,
			UnitPrice: line.Product.Price,
			Subtotal:  line.Subtotal,
		})
	}

	log := s.log.WithFields(logrus.Fields{"order_id": order.OrderID, "user_id": order.UserID, "total": order.Total})
	if s.publisher != nil {
		// The cart is already cleared; a lost event is logged, not surfaced.
		if err := s.publisher.PublishOrderPlaced(ctx, order); err != nil {
			log.WithError(err).Warn("failed to publish order placed event")
		}
	}
	log.Info("order placed")
	return order, nil
}

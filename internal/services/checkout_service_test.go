package services_test

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderPublisher is a mock implementation of services.OrderPublisher
type MockOrderPublisher struct {
	mock.Mock
}

func (m *MockOrderPublisher) PublishOrderPlaced(ctx context.Context, order *models.OrderPlaced) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func TestCheckoutService_Checkout(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	p := seedProduct(t, f, "Widget", 12.5)
	publisher := new(MockOrderPublisher)
	checkout := services.NewCheckoutService(f.carts, f.sessions, publisher, f.clock.Now, quietLogger())
	identity := &models.Identity{UserID: "user-1", Role: models.RoleUser}

	session := f.sessions.New()
	_, err := checkout.Checkout(ctx, identity, session)
	assert.ErrorIs(t, err, services.ErrEmptyCart)

	_, err = f.carts.Add(ctx, session, p.ID, 2)
	require.NoError(t, err)

	publisher.On("PublishOrderPlaced", ctx, mock.MatchedBy(func(o *models.OrderPlaced) bool {
		return o.UserID == "user-1" && o.Total == 25 && len(o.Lines) == 1 && o.Lines[0].Quantity == 2
	})).Return(nil).Once()

	order, err := checkout.Checkout(ctx, identity, session)
	require.NoError(t, err)
	assert.NotEmpty(t, order.OrderID)
	assert.Equal(t, f.clock.Now(), order.PlacedAt)
	assert.True(t, session.Cart.IsEmpty())

	stored, err := f.sessions.Load(ctx, session.ID)
	require.NoError(t, err)
	assert.True(t, stored.Cart.IsEmpty(), "the cleared cart is persisted")

	_, err = checkout.Checkout(ctx, identity, session)
	assert.ErrorIs(t, err, services.ErrEmptyCart, "a repeated checkout places nothing")
	publisher.AssertExpectations(t)
}

func TestCheckoutService_RequiresIdentity(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	p := seedProduct(t, f, "Widget", 1)
	checkout := services.NewCheckoutService(f.carts, f.sessions, nil, f.clock.Now, quietLogger())

	session := f.sessions.New()
	_, err := f.carts.Add(ctx, session, p.ID, 1)
	require.NoError(t, err)

	_, err = checkout.Checkout(ctx, nil, session)
	assert.ErrorIs(t, err, services.ErrUnauthenticated)
	assert.False(t, session.Cart.IsEmpty())
}

func TestCheckoutService_PublishFailureIsLogged(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	p := seedProduct(t, f, "Widget", 1)
	logger, hook := test.NewNullLogger()
	publisher := new(MockOrderPublisher)
	checkout := services.NewCheckoutService(f.carts, f.sessions, publisher, f.clock.Now, logger)

	session := f.sessions.New()
	_, err := f.carts.Add(ctx, session, p.ID, 1)
	require.NoError(t, err)

	publisher.On("PublishOrderPlaced", ctx, mock.Anything).Return(errors.New("broker down")).Once()

	_, err = checkout.Checkout(ctx, &models.Identity{UserID: "user-1"}, session)
	require.NoError(t, err)
	assert.True(t, session.Cart.IsEmpty())

	var warned bool
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel && entry.Message == "failed to publish order placed event" {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestCheckoutService_Review(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	p := seedProduct(t, f, "Widget", 3)
	checkout := services.NewCheckoutService(f.carts, f.sessions, nil, f.clock.Now, quietLogger())

	session := f.sessions.New()
	_, err := checkout.Review(ctx, session)
	assert.ErrorIs(t, err, services.ErrEmptyCart)

	_, err = f.carts.Add(ctx, session, p.ID, 2)
	require.NoError(t, err)
	snapshot, err := checkout.Review(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, 6.0, snapshot.Total)
	assert.False(t, session.Cart.IsEmpty(), "review does not clear the cart")
}

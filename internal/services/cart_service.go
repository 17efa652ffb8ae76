package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/sirupsen/logrus"
)

// CartLine is a cart entry priced at the product's current price.
type CartLine struct {
	Product  models.Product `json:"product"`
	Quantity int            `json:"quantity"`
	Subtotal float64        `json:"subtotal"`
}

// CartSnapshot is a cart priced against the live catalog.
type CartSnapshot struct {
	Lines []CartLine `json:"lines"`
	Total float64    `json:"total"`
}

// CartService mutates session carts and prices them. Totals are never
// stored; every snapshot reads current product prices.
type CartService struct {
	products repositories.ProductRepository
	sessions *SessionService
	log      logrus.FieldLogger
}

// NewCartService creates a new CartService.
func NewCartService(products repositories.ProductRepository, sessions *SessionService, log logrus.FieldLogger) *CartService {
	return &CartService{
		products: products,
		sessions: sessions,
		log:      log,
	}
}

// Add puts quantity units of productID into the session cart and saves the session.
func (s *CartService) Add(ctx context.Context, session *models.Session, productID string, quantity int) (*models.Product, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to look up product: %w", err)
	}

	session.Cart.Add(product.ID, quantity)
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return product, nil
}

// Update overwrites quantities in bulk. Only products already in the cart
// are considered; values that are not integers are ignored and values
// below one remove the entry.
func (s *CartService) Update(ctx context.Context, session *models.Session, quantities map[string]string) error {
	for productID := range session.Cart {
		raw, ok := quantities[productID]
		if !ok {
			continue
		}
		qty, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			continue
		}
		session.Cart.SetQuantity(productID, qty)
	}
	return s.sessions.Save(ctx, session)
}

// Remove deletes productID from the cart.
func (s *CartService) Remove(ctx context.Context, session *models.Session, productID string) error {
	session.Cart.Remove(productID)
	return s.sessions.Save(ctx, session)
}

// Snapshot prices cart against the current catalog. Entries whose product
// has been deleted are skipped.
func (s *CartService) Snapshot(ctx context.Context, cart models.Cart) (*CartSnapshot, error) {
	ids := make([]string, 0, len(cart))
	for id := range cart {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	snapshot := &CartSnapshot{Lines: make([]CartLine, 0, len(ids))}
	for _, id := range ids {
		product, err := s.products.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				s.log.WithField("product_id", id).Debug("skipping cart entry for missing product")
				continue
			}
			return nil, fmt.Errorf("failed to price cart: %w", err)
		}
		qty := cart[id]
		subtotal := roundCents(product.Price * float64(qty))
		snapshot.Lines = append(snapshot.Lines, CartLine{
			Product:  *product,
			Quantity: qty,
			Subtotal: subtotal,
		})
		snapshot.Total += subtotal
	}
	snapshot.Total = roundCents(snapshot.Total)
	return snapshot, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

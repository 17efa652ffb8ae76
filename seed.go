package main

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/sirupsen/logrus"
)

// sampleCatalog is loaded by the seed command into an empty catalog.
var sampleCatalog = []models.Product{
	{Name: "Anti Radical Serum", Description: "A cutting-edge serum that neutralizes free radicals and reduces visible signs of aging.", Price: 49.99, ImageURL: "/static/img/product1.jpg"},
	{Name: "Youth Rejuvenation Cream", Description: "An advanced cream that lifts, hydrates, and restores youthful glow.", Price: 59.99, ImageURL: "/static/img/product2.jpg"},
	{Name: "Ultra Renewal Eye Gel", Description: "Targets dark circles, puffiness, and fine lines around the eyes.", Price: 39.99, ImageURL: "/static/img/product3.jpg"},
	{Name: "Collagen Boost Night Mask", Description: "Overnight mask that boosts collagen production and firms the skin.", Price: 69.99, ImageURL: "/static/img/product4.jpg"},
	{Name: "Vitamin C Radiance Toner", Description: "Brightens and evens out skin tone, preparing skin for next steps.", Price: 29.99, ImageURL: "/static/img/product5.jpg"},
	{Name: "Hyaluronic Acid Moisturizer", Description: "Deep hydration formula that plumps and smooths fine lines.", Price: 54.99, ImageURL: "/static/img/product6.jpg"},
	{Name: "Resveratrol Defense Lotion", Description: "High antioxidant lotion that shields against environmental stress.", Price: 64.99, ImageURL: "/static/img/product7.jpg"},
	{Name: "CoQ10 Repair Essence", Description: "Essence that revitalizes dull skin and enhances elasticity.", Price: 44.99, ImageURL: "/static/img/product8.jpg"},
	{Name: "Peptide Firming Serum", Description: "Concentrated serum with peptides to improve firmness and texture.", Price: 74.99, ImageURL: "/static/img/product9.jpg"},
	{Name: "Microalgae Detox Cleanser", Description: "Cleanser that gently removes impurities and protects the skin barrier.", Price: 24.99, ImageURL: "/static/img/product10.jpg"},
}

// seedAdmin makes sure an admin account exists for email. An existing
// account is promoted and keeps its password.
func seedAdmin(ctx context.Context, users *services.UserService, email, password string, log logrus.FieldLogger) error {
	user, err := users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		user, err = users.Register(ctx, services.RegisterInput{Email: email, Password: password, DisplayName: "Administrator"})
		if err != nil {
			return fmt.Errorf("failed to create admin: %w", err)
		}
	case err != nil:
		return err
	default:
		log.WithField("email", email).Info("admin account already exists")
	}
	return users.Promote(ctx, user.ID)
}

// seedCatalog adds the sample products when the catalog is empty.
// It returns how many products were created.
func seedCatalog(ctx context.Context, products *services.ProductService, log logrus.FieldLogger) (int, error) {
	existing, err := products.GetAllProducts(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		log.WithField("products", len(existing)).Info("catalog not empty, skipping sample products")
		return 0, nil
	}

	for _, p := range sampleCatalog {
		name, description, price, imageURL := p.Name, p.Description, p.Price, p.ImageURL
		if _, err := products.CreateProduct(ctx, services.ProductInput{
			Name:        &name,
			Description: &description,
			Price:       &price,
			ImageURL:    &imageURL,
		}); err != nil {
			return 0, fmt.Errorf("failed to seed product %s: %w", name, err)
		}
	}
	return len(sampleCatalog), nil
}

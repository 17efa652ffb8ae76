package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/sirupsen/logrus"
)

// ProductInput carries product fields; nil fields are left unchanged on update.
type ProductInput struct {
	Name        *string
	Description *string
	Price       *float64
	ImageURL    *string
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo repositories.ProductRepository
	log  logrus.FieldLogger
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, log logrus.FieldLogger) *ProductService {
	return &ProductService{
		repo: repo,
		log:  log,
	}
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.GetAll(ctx)
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

// CreateProduct creates a new product.
func (s *ProductService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	product := &models.Product{}
	apply(product, in)
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.log.WithField("product_id", product.ID).Info("product created")
	return product, nil
}

// UpdateProduct applies a partial update to an existing product.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, in ProductInput) (*models.Product, error) {
	product, err := s.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(product, in)
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, product); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product %s: %w", id, err)
	}

	s.log.WithField("product_id", id).Info("product updated")
	return product, nil
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	s.log.WithField("product_id", id).Info("product deleted")
	return nil
}

func apply(p *models.Product, in ProductInput) {
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.ImageURL != nil {
		p.ImageURL = *in.ImageURL
	}
}

func validateProduct(p *models.Product) error {
	if p.Name == "" {
		return ErrNameRequired
	}
	if p.Price < 0 || math.IsNaN(p.Price) || math.IsInf(p.Price, 0) {
		return ErrInvalidPrice
	}
	return nil
}

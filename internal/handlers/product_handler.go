package handlers

import (
	"strconv"
	"strings"

	"storefront/internal/apperr"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var errPriceNotNumber = apperr.Validation("invalid_price", "price must be a number")

// ProductHandler handles HTTP requests for the product catalog.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: newValidator(),
	}
}

// RegisterRoutes registers the product routes. Reads are public; writes run
// behind the given guards.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, guards ...fiber.Handler) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Post("/", guarded(guards, h.HandleCreateProduct)...)
	productRoutes.Put("/:id", guarded(guards, h.HandleUpdateProduct)...)
	productRoutes.Delete("/:id", guarded(guards, h.HandleDeleteProduct)...)
}

// HandleGetProducts retrieves all products.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(products)
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(product)
}

// ProductRequest is the body of product writes. Price may be a JSON number
// or a numeric string.
type ProductRequest struct {
	Name        *string     `json:"name" validate:"required,min=1"`
	Description *string     `json:"description" validate:"required,min=1"`
	Price       interface{} `json:"price"`
	ImageURL    *string     `json:"image_url" validate:"required,min=1"`
}

func (r ProductRequest) input() (services.ProductInput, error) {
	price, err := parsePrice(r.Price)
	if err != nil {
		return services.ProductInput{}, err
	}
	return services.ProductInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       price,
		ImageURL:    r.ImageURL,
	}, nil
}

func parsePrice(v interface{}) (*float64, error) {
	switch p := v.(type) {
	case nil:
		return nil, nil
	case float64:
		return &p, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, errPriceNotNumber
		}
		return &f, nil
	default:
		return nil, errPriceNotNumber
	}
}

// HandleCreateProduct creates a new product. Every field is required.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidBody.WithCause(err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(err)
	}
	if req.Price == nil {
		return apperr.InvalidFields("price is required", map[string]string{"price": "price is required"})
	}

	in, err := req.input()
	if err != nil {
		return err
	}
	product, err := h.service.CreateProduct(c.UserContext(), in)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Product created",
		"id":      product.ID,
	})
}

// HandleUpdateProduct applies the supplied fields to an existing product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var req ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidBody.WithCause(err)
	}

	in, err := req.input()
	if err != nil {
		return err
	}
	if _, err := h.service.UpdateProduct(c.UserContext(), c.Params("id"), in); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "Product updated successfully",
	})
}

// HandleDeleteProduct deletes a product by its ID.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Product deleted successfully",
	})
}

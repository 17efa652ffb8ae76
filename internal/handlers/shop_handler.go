package handlers

import (
	"fmt"
	"strings"

	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// ShopHandler serves the browsing, cart and checkout pages. Anonymous
// visitors may fill a cart; checkout needs a logged-in session. Its router
// must run middleware.LoadSession.
type ShopHandler struct {
	products *services.ProductService
	carts    *services.CartService
	checkout *services.CheckoutService
	sessions *services.SessionService
	cookie   SessionCookie
}

// NewShopHandler creates a new ShopHandler.
func NewShopHandler(products *services.ProductService, carts *services.CartService, checkout *services.CheckoutService, sessions *services.SessionService, cookie SessionCookie) *ShopHandler {
	return &ShopHandler{
		products: products,
		carts:    carts,
		checkout: checkout,
		sessions: sessions,
		cookie:   cookie,
	}
}

// RegisterRoutes registers the shop routes.
func (h *ShopHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/products", h.HandleProducts)
	router.Get("/products/:id", h.HandleProduct)

	router.Get("/cart", h.HandleCart)
	router.Post("/cart/add/:id", h.HandleAddToCart)
	router.Post("/cart/update", h.HandleUpdateCart)
	router.Post("/cart/remove/:id", h.HandleRemoveFromCart)
	router.Get("/cart/remove/:id", h.HandleRemoveFromCart)

	required := middleware.SessionRequired(h.sessions)
	router.Get("/checkout", required, h.HandleReviewCheckout)
	router.Post("/checkout", required, h.HandleCheckout)
}

// HandleProducts lists the catalog.
func (h *ShopHandler) HandleProducts(c *fiber.Ctx) error {
	products, err := h.products.GetAllProducts(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(products)
}

// HandleProduct shows a single product.
func (h *ShopHandler) HandleProduct(c *fiber.Ctx) error {
	product, err := h.products.GetProductByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(product)
}

func cartBody(snapshot *services.CartSnapshot) fiber.Map {
	return fiber.Map{
		"items": snapshot.Lines,
		"total": snapshot.Total,
	}
}

// HandleCart shows the cart priced at current product prices.
func (h *ShopHandler) HandleCart(c *fiber.Ctx) error {
	cart := models.Cart{}
	if session := middleware.Session(c); session != nil {
		cart = session.Cart
	}
	snapshot, err := h.carts.Snapshot(c.UserContext(), cart)
	if err != nil {
		return err
	}
	return c.JSON(cartBody(snapshot))
}

// currentSession returns the request's session, starting an anonymous one
// when the visitor has none yet.
func (h *ShopHandler) currentSession(c *fiber.Ctx) *models.Session {
	if session := middleware.Session(c); session != nil {
		return session
	}
	session := h.sessions.New()
	middleware.SetSession(c, session)
	return session
}

type addToCartRequest struct {
	Quantity *int `json:"quantity" form:"quantity"`
}

// HandleAddToCart adds a product to the cart; the quantity defaults to one.
func (h *ShopHandler) HandleAddToCart(c *fiber.Ctx) error {
	var req addToCartRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return errInvalidBody.WithCause(err)
		}
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	session := h.currentSession(c)
	product, err := h.carts.Add(c.UserContext(), session, utils.CopyString(c.Params("id")), quantity)
	if err != nil {
		return err
	}
	h.cookie.set(c, session)

	return c.JSON(fiber.Map{
		"message":  fmt.Sprintf("%s added to cart.", product.Name),
		"quantity": session.Cart.Quantity(product.ID),
	})
}

// cartQuantities collects the qty_<productID> fields of a form or JSON body.
func cartQuantities(c *fiber.Ctx) (map[string]string, error) {
	quantities := make(map[string]string)
	if c.Is("json") {
		var body map[string]interface{}
		if err := c.BodyParser(&body); err != nil {
			return nil, errInvalidBody.WithCause(err)
		}
		for key, value := range body {
			if id, ok := strings.CutPrefix(key, "qty_"); ok {
				quantities[id] = fmt.Sprint(value)
			}
		}
		return quantities, nil
	}

	c.Request().PostArgs().VisitAll(func(key, value []byte) {
		if id, ok := strings.CutPrefix(string(key), "qty_"); ok {
			quantities[id] = string(value)
		}
	})
	return quantities, nil
}

// HandleUpdateCart overwrites quantities of products already in the cart.
func (h *ShopHandler) HandleUpdateCart(c *fiber.Ctx) error {
	quantities, err := cartQuantities(c)
	if err != nil {
		return err
	}
	if session := middleware.Session(c); session != nil {
		if err := h.carts.Update(c.UserContext(), session, quantities); err != nil {
			return err
		}
		h.cookie.set(c, session)
	}

	return c.JSON(fiber.Map{
		"message": "Cart updated.",
	})
}

// HandleRemoveFromCart drops a product from the cart.
func (h *ShopHandler) HandleRemoveFromCart(c *fiber.Ctx) error {
	if session := middleware.Session(c); session != nil {
		if err := h.carts.Remove(c.UserContext(), session, c.Params("id")); err != nil {
			return err
		}
		h.cookie.set(c, session)
	}

	return c.JSON(fiber.Map{
		"message": "Item removed from cart.",
	})
}

// HandleReviewCheckout lists what a checkout would place.
func (h *ShopHandler) HandleReviewCheckout(c *fiber.Ctx) error {
	snapshot, err := h.checkout.Review(c.UserContext(), middleware.Session(c))
	if err != nil {
		return err
	}
	return c.JSON(cartBody(snapshot))
}

// HandleCheckout places the order and empties the cart.
func (h *ShopHandler) HandleCheckout(c *fiber.Ctx) error {
	order, err := h.checkout.Checkout(c.UserContext(), middleware.Identity(c), middleware.Session(c))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message":  "Order placed successfully!",
		"order_id": order.OrderID,
		"total":    order.Total,
	})
}

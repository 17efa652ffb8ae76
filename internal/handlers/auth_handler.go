package handlers

import (
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// AuthHandler handles HTTP requests for API registration and token login.
type AuthHandler struct {
	users       *services.UserService
	authService *services.AuthService
	validate    *validator.Validate
	log         logrus.FieldLogger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users *services.UserService, authService *services.AuthService, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{
		users:       users,
		authService: authService,
		validate:    newValidator(),
		log:         log,
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/register", h.HandleRegister)
	router.Post("/login", h.HandleLogin)
}

// RegisterRequest is the API registration body. Display name, date of
// birth and the second address line are optional.
type RegisterRequest struct {
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required"`
	FirstName    string `json:"first_name" validate:"required"`
	LastName     string `json:"last_name" validate:"required"`
	DisplayName  string `json:"display_name"`
	DateOfBirth  string `json:"date_of_birth"`
	AddressLine1 string `json:"address_line1" validate:"required"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city" validate:"required"`
	State        string `json:"state" validate:"required"`
	ZipCode      string `json:"zip_code" validate:"required"`
	Country      string `json:"country" validate:"required"`
	PhoneNumber  string `json:"phone_number" validate:"required"`
}

func (r RegisterRequest) input() services.RegisterInput {
	return services.RegisterInput{
		Email:        r.Email,
		Password:     r.Password,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		DisplayName:  r.DisplayName,
		DateOfBirth:  r.DateOfBirth,
		AddressLine1: r.AddressLine1,
		AddressLine2: r.AddressLine2,
		City:         r.City,
		State:        r.State,
		ZipCode:      r.ZipCode,
		Country:      r.Country,
		PhoneNumber:  r.PhoneNumber,
	}
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidBody.WithCause(err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(err)
	}

	if _, err := h.users.Register(c.UserContext(), req.input()); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// HandleLogin handles user login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidBody.WithCause(err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(err)
	}

	token, err := h.authService.LoginUser(c.UserContext(), req.Email, req.Password)
	if err != nil {
		h.log.WithError(err).WithField("email", req.Email).Info("api login rejected")
		return err
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
	})
}

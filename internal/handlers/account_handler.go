package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// AccountHandler serves the cookie-session account pages: sign-up, login,
// logout and the profile. Its router must run middleware.LoadSession.
type AccountHandler struct {
	users    *services.UserService
	sessions *services.SessionService
	profile  *ProfileHandler
	cookie   SessionCookie
	validate *validator.Validate
	log      logrus.FieldLogger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(users *services.UserService, sessions *services.SessionService, cookie SessionCookie, log logrus.FieldLogger) *AccountHandler {
	return &AccountHandler{
		users:    users,
		sessions: sessions,
		profile:  &ProfileHandler{users: users, requireConfirm: true},
		cookie:   cookie,
		validate: newValidator(),
		log:      log,
	}
}

// RegisterRoutes registers the account routes.
func (h *AccountHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/register", h.HandleRegister)
	router.Post("/login", h.HandleLogin)
	router.Get("/logout", h.HandleLogout)
	router.Post("/logout", h.HandleLogout)

	required := middleware.SessionRequired(h.sessions)
	router.Get("/profile", required, h.profile.HandleGetProfile)
	router.Post("/profile", required, h.profile.HandleUpdateProfile)
}

// SignupForm is the web registration form. Credentials and name are
// required; the password must be typed twice.
type SignupForm struct {
	Email           string `json:"email" form:"email" validate:"required,email"`
	Password        string `json:"password" form:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password" validate:"required,eqfield=Password"`
	FirstName       string `json:"first_name" form:"first_name" validate:"required"`
	LastName        string `json:"last_name" form:"last_name" validate:"required"`
	DisplayName     string `json:"display_name" form:"display_name"`
	DateOfBirth     string `json:"date_of_birth" form:"date_of_birth"`
	AddressLine1    string `json:"address_line1" form:"address_line1"`
	AddressLine2    string `json:"address_line2" form:"address_line2"`
	City            string `json:"city" form:"city"`
	State           string `json:"state" form:"state"`
	ZipCode         string `json:"zip_code" form:"zip_code"`
	Country         string `json:"country" form:"country"`
	PhoneNumber     string `json:"phone_number" form:"phone_number"`
}

// HandleRegister creates an account. It does not log the new user in.
func (h *AccountHandler) HandleRegister(c *fiber.Ctx) error {
	var form SignupForm
	if err := c.BodyParser(&form); err != nil {
		return errInvalidBody.WithCause(err)
	}
	if err := h.validate.Struct(form); err != nil {
		return validationError(err)
	}

	_, err := h.users.Register(c.UserContext(), services.RegisterInput{
		Email:        form.Email,
		Password:     form.Password,
		FirstName:    form.FirstName,
		LastName:     form.LastName,
		DisplayName:  form.DisplayName,
		DateOfBirth:  form.DateOfBirth,
		AddressLine1: form.AddressLine1,
		AddressLine2: form.AddressLine2,
		City:         form.City,
		State:        form.State,
		ZipCode:      form.ZipCode,
		Country:      form.Country,
		PhoneNumber:  form.PhoneNumber,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Registration successful! You can now login.",
	})
}

// HandleLogin binds the user to a fresh session and sets the cookie.
// Anything already in the visitor's cart is kept.
func (h *AccountHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidBody.WithCause(err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(err)
	}

	session, err := h.sessions.Login(c.UserContext(), middleware.Session(c), req.Email, req.Password)
	if err != nil {
		return err
	}
	h.cookie.set(c, session)

	return c.JSON(fiber.Map{
		"message": "Logged in successfully!",
	})
}

// HandleLogout destroys the session, if any, and clears the cookie.
func (h *AccountHandler) HandleLogout(c *fiber.Ctx) error {
	if session := middleware.Session(c); session != nil {
		if err := h.sessions.Logout(c.UserContext(), session.ID); err != nil {
			return err
		}
	}
	h.cookie.clear(c)

	return c.JSON(fiber.Map{
		"message": "You have logged out.",
	})
}

package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProfileHandler serves the authenticated caller's own profile. The web form
// variant insists on confirm_new_password for a password change.
type ProfileHandler struct {
	users          *services.UserService
	requireConfirm bool
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(users *services.UserService) *ProfileHandler {
	return &ProfileHandler{users: users}
}

// RegisterRoutes registers the profile routes behind the given guards.
func (h *ProfileHandler) RegisterRoutes(router fiber.Router, guards ...fiber.Handler) {
	router.Get("/profile", guarded(guards, h.HandleGetProfile)...)
	router.Put("/profile", guarded(guards, h.HandleUpdateProfile)...)
}

// HandleGetProfile returns the caller's profile.
func (h *ProfileHandler) HandleGetProfile(c *fiber.Ctx) error {
	identity := middleware.Identity(c)
	if identity == nil {
		return services.ErrUnauthenticated
	}
	user, err := h.users.GetByID(c.UserContext(), identity.UserID)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// ProfileRequest is a partial profile update. Absent fields are unchanged.
// A password change needs old_password and new_password; the web form must
// also send a matching confirm_new_password.
type ProfileRequest struct {
	Email              *string `json:"email" form:"email"`
	FirstName          *string `json:"first_name" form:"first_name"`
	LastName           *string `json:"last_name" form:"last_name"`
	DisplayName        *string `json:"display_name" form:"display_name"`
	DateOfBirth        *string `json:"date_of_birth" form:"date_of_birth"`
	AddressLine1       *string `json:"address_line1" form:"address_line1"`
	AddressLine2       *string `json:"address_line2" form:"address_line2"`
	City               *string `json:"city" form:"city"`
	State              *string `json:"state" form:"state"`
	ZipCode            *string `json:"zip_code" form:"zip_code"`
	Country            *string `json:"country" form:"country"`
	PhoneNumber        *string `json:"phone_number" form:"phone_number"`
	OldPassword        *string `json:"old_password" form:"old_password"`
	NewPassword        *string `json:"new_password" form:"new_password"`
	ConfirmNewPassword *string `json:"confirm_new_password" form:"confirm_new_password"`
}

// update converts the request. Blank email and password fields count as
// absent, the way an untouched form field arrives.
func (r ProfileRequest) update(requireConfirm bool) services.ProfileUpdate {
	return services.ProfileUpdate{
		Email:           nonBlank(r.Email),
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		DisplayName:     r.DisplayName,
		DateOfBirth:     r.DateOfBirth,
		AddressLine1:    r.AddressLine1,
		AddressLine2:    r.AddressLine2,
		City:            r.City,
		State:           r.State,
		ZipCode:         r.ZipCode,
		Country:         r.Country,
		PhoneNumber:     r.PhoneNumber,
		OldPassword:     r.OldPassword,
		NewPassword:     nonBlank(r.NewPassword),
		ConfirmPassword: nonBlank(r.ConfirmNewPassword),

		RequireConfirmation: requireConfirm,
	}
}

func nonBlank(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

// HandleUpdateProfile applies a partial update to the caller's profile.
func (h *ProfileHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	identity := middleware.Identity(c)
	if identity == nil {
		return services.ErrUnauthenticated
	}

	var req ProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidBody.WithCause(err)
	}

	if _, err := h.users.UpdateProfile(c.UserContext(), identity.UserID, req.update(h.requireConfirm)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Profile updated successfully",
	})
}

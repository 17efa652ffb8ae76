package services

import "storefront/internal/apperr"

// Sentinel errors returned by the services. Handlers map them to responses
// through apperr; compare with errors.Is.
var (
	ErrDuplicateEmail     = apperr.Conflict("duplicate_email", "email already in use")
	ErrInvalidCredentials = apperr.Unauthorized("invalid_credentials", "invalid credentials")
	ErrUserNotFound       = apperr.NotFound("user_not_found", "user not found")
	ErrIncorrectPassword  = apperr.Validation("incorrect_password", "old password is incorrect")
	ErrPasswordMismatch   = apperr.Validation("password_mismatch", "new passwords do not match")
	ErrPasswordRequired   = apperr.Validation("password_required", "new password is required")
	ErrEmailRequired      = apperr.Validation("email_required", "email is required")

	ErrTokenMissing = apperr.Unauthorized("token_missing", "token is missing")
	ErrTokenExpired = apperr.Unauthorized("token_expired", "token has expired")
	ErrTokenInvalid = apperr.Unauthorized("token_invalid", "invalid token")

	ErrUnauthenticated = apperr.Unauthorized("login_required", "login required")
	ErrAdminRequired   = apperr.Forbidden("admin_required", "admin access required")

	ErrProductNotFound = apperr.NotFound("product_not_found", "product not found")
	ErrInvalidPrice    = apperr.Validation("invalid_price", "price must be a non-negative number")
	ErrNameRequired    = apperr.Validation("name_required", "name is required")

	ErrInvalidQuantity = apperr.Validation("invalid_quantity", "quantity must be a positive integer")
	ErrEmptyCart       = apperr.Validation("empty_cart", "cart is empty")
)

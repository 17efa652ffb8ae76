package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"storefront/internal/apperr"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// ErrorHandler renders every error returned by a handler or middleware as
// {"error", "code"} with an "errors" map for field validation failures.
// Internal failures are logged and reported without their cause.
func ErrorHandler(log logrus.FieldLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{
				"error": fe.Message,
				"code":  strings.ReplaceAll(strings.ToLower(http.StatusText(fe.Code)), " ", "_"),
			})
		}

		ae := apperr.As(err)
		if ae == nil || ae.Kind == apperr.KindInternal {
			log.WithError(err).WithFields(logrus.Fields{
				"method": c.Method(),
				"path":   c.Path(),
			}).Error("request failed")
			if ae == nil {
				ae = apperr.Internal(err)
			}
		}

		body := fiber.Map{
			"error": ae.Message,
			"code":  ae.Code,
		}
		if len(ae.Fields) > 0 {
			body["errors"] = ae.Fields
		}
		return c.Status(ae.Status()).JSON(body)
	}
}

var errInvalidBody = apperr.Validation("invalid_body", "invalid request body")

// newValidator reports fields by their json (or form) name.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	return v
}

// validationError converts a validator failure into a field-level apperr.
// The message names the first failing field.
func validationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return errInvalidBody.WithCause(err)
	}

	fields := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		fields[e.Field()] = fieldMessage(e)
	}
	return apperr.InvalidFields(fieldMessage(validationErrors[0]), fields)
}

func fieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", e.Field())
	case "eqfield":
		return "passwords do not match"
	case "min":
		if e.Param() == "1" {
			return fmt.Sprintf("%s must not be empty", e.Field())
		}
		return fmt.Sprintf("%s must be at least %s long", e.Field(), e.Param())
	default:
		return fmt.Sprintf("%s failed on the '%s' tag", e.Field(), e.Tag())
	}
}

// guarded returns guards followed by handler without aliasing guards.
func guarded(guards []fiber.Handler, handler fiber.Handler) []fiber.Handler {
	return append(append(make([]fiber.Handler, 0, len(guards)+1), guards...), handler)
}

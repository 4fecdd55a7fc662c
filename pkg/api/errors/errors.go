package errors

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/empowrhq/leadflow/pkg/domain"
	"github.com/empowrhq/leadflow/pkg/models"
)

// ValidationError returns a generic validation error without exposing internal details
func ValidationError(c echo.Context, err error) error {
	// Log the actual error for debugging
	log.Printf("[VALIDATION ERROR] Path: %s, Error: %v", c.Request().URL.Path, err)

	return c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "validation_error",
		Message: "Invalid request data. Please check your input and try again.",
	})
}

// InternalError returns a generic internal server error
func InternalError(c echo.Context, err error) error {
	// Log the actual error for debugging
	log.Printf("[INTERNAL ERROR] Path: %s, Error: %v", c.Request().URL.Path, err)

	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred. Please try again later.",
	})
}

// StorageError returns a generic datastore error without exposing internal details
func StorageError(c echo.Context, err error) error {
	// Log the actual error for debugging
	log.Printf("[STORAGE ERROR] Path: %s, Error: %v", c.Request().URL.Path, err)

	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "storage_error",
		Message: "A storage error occurred. Please try again later.",
	})
}

// UnauthorizedError returns a generic unauthorized error
func UnauthorizedError(c echo.Context, reason string) error {
	return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
		Error:   "unauthorized",
		Message: "You are not authorized to access this resource.",
	})
}

// NotFoundError returns a generic not found error
func NotFoundError(c echo.Context, resource string) error {
	return c.JSON(http.StatusNotFound, models.ErrorResponse{
		Error:   "not_found",
		Message: "The requested resource was not found.",
	})
}

// ProviderError returns an upstream provider failure as a bad gateway
func ProviderError(c echo.Context, err error) error {
	// Log the actual error for debugging
	log.Printf("[PROVIDER ERROR] Path: %s, Error: %v", c.Request().URL.Path, err)

	return c.JSON(http.StatusBadGateway, models.ErrorResponse{
		Error:   "provider_error",
		Message: "An upstream provider request failed. Please try again later.",
	})
}

// FromDomain maps a domain error onto the matching HTTP response
func FromDomain(c echo.Context, err error) error {
	switch {
	case domain.IsNotFound(err):
		return NotFoundError(c, "")
	case domain.IsValidation(err):
		return ValidationError(c, err)
	case domain.IsUnauthorized(err):
		return UnauthorizedError(c, "")
	case domain.IsProvider(err):
		return ProviderError(c, err)
	case domain.IsStorage(err):
		return StorageError(c, err)
	default:
		return InternalError(c, err)
	}
}

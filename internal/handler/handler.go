package handler

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"portal/internal/auth"
	apperrors "portal/internal/errors"
	"portal/internal/service"
)

// writeError converts a domain error into the standard error response.
func writeError(c echo.Context, err error) error {
	httpErr := apperrors.MapErrorToHTTP(err)
	return c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
}

// writeValidation reports a request binding or validation failure.
func writeValidation(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, apperrors.ErrorResponse{
		Error: err.Error(),
		Code:  "VALIDATION_ERROR",
	})
}

// identityFromContext extracts the caller identity from the validated token
// placed in the context by the JWT middleware.
func identityFromContext(c echo.Context) (service.Identity, error) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return service.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}
	claims, ok := token.Claims.(*auth.Claims)
	if !ok {
		return service.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}
	return service.Identity{Email: claims.Email, Role: claims.Role}, nil
}

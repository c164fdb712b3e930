package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"portal/internal/model"
	"portal/internal/service"
)

// AuthHandler exposes the two login flows and token introspection.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type GenerateOTPRequest struct {
	Email string `json:"email" validate:"required"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required"`
	OTP   string `json:"otp" validate:"required"`
}

type AdminLoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserPayload is the identity echoed back on successful login.
type UserPayload struct {
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
}

// GenerateOTP issues a one-time passcode to an active client email.
// @Summary Request a login OTP
// @Description Send a one-time passcode to a registered client email
// @Tags auth
// @Accept json
// @Produce json
// @Param request body GenerateOTPRequest true "Client email"
// @Success 200 {object} map[string]string "OTP sent"
// @Failure 400 {object} errors.ErrorResponse "Missing email"
// @Failure 403 {object} errors.ErrorResponse "Admin email or not registered"
// @Failure 429 {object} errors.ErrorResponse "Rate limited"
// @Failure 500 {object} errors.ErrorResponse "Delivery failed"
// @Router /generate-otp [post]
func (h *AuthHandler) GenerateOTP(c echo.Context) error {
	var req GenerateOTPRequest
	if err := c.Bind(&req); err != nil {
		return writeValidation(c, err)
	}
	if err := c.Validate(req); err != nil {
		return writeValidation(c, err)
	}

	if err := h.authService.RequestOTP(c.Request().Context(), req.Email); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": fmt.Sprintf("OTP sent to %s", req.Email),
	})
}

// VerifyOTP exchanges a valid passcode for a client bearer token.
// @Summary Verify a login OTP
// @Description Exchange a one-time passcode for a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body VerifyOTPRequest true "Email and code"
// @Success 200 {object} map[string]interface{} "Token and identity"
// @Failure 400 {object} errors.ErrorResponse "Missing fields, invalid or expired code"
// @Router /verify-otp [post]
func (h *AuthHandler) VerifyOTP(c echo.Context) error {
	var req VerifyOTPRequest
	if err := c.Bind(&req); err != nil {
		return writeValidation(c, err)
	}
	if err := c.Validate(req); err != nil {
		return writeValidation(c, err)
	}

	token, err := h.authService.VerifyOTP(c.Request().Context(), req.Email, req.OTP)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Login successful",
		"user":    UserPayload{Email: req.Email, Role: model.RoleClient},
		"token":   token,
	})
}

// AdminLogin authenticates an allowlisted admin by password.
// @Summary Admin password login
// @Description Authenticate an admin email with the portal password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body AdminLoginRequest true "Admin credentials"
// @Success 200 {object} map[string]interface{} "Token and identity"
// @Failure 401 {object} errors.ErrorResponse "Bad password"
// @Failure 403 {object} errors.ErrorResponse "Not an admin"
// @Router /admin-login [post]
func (h *AuthHandler) AdminLogin(c echo.Context) error {
	var req AdminLoginRequest
	if err := c.Bind(&req); err != nil {
		return writeValidation(c, err)
	}
	if err := c.Validate(req); err != nil {
		return writeValidation(c, err)
	}

	token, err := h.authService.AdminLogin(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Admin login successful",
		"user":    UserPayload{Email: req.Email, Role: model.RoleAdmin},
		"token":   token,
	})
}

// Me returns the identity asserted by the presented bearer token.
// @Summary Current identity
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserPayload
// @Failure 401 {object} errors.ErrorResponse "Missing or invalid token"
// @Router /me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	ident, err := identityFromContext(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, UserPayload{Email: ident.Email, Role: ident.Role})
}

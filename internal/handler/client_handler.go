package handler

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apperrors "portal/internal/errors"
	"portal/internal/service"
)

// ClientHandler exposes the admin-only client registry.
type ClientHandler struct {
	clientService service.ClientService
}

// NewClientHandler creates a new client handler.
func NewClientHandler(clientService service.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

type ClientEmailRequest struct {
	Email string `json:"email" validate:"required"`
}

// AddClient registers a new allowed client email.
// @Summary Add an allowed client
// @Tags clients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ClientEmailRequest true "Client email"
// @Success 200 {object} map[string]interface{} "Created client"
// @Failure 400 {object} errors.ErrorResponse "Missing email or duplicate"
// @Router /admin/add-client [post]
func (h *ClientHandler) AddClient(c echo.Context) error {
	var req ClientEmailRequest
	if err := c.Bind(&req); err != nil {
		return writeValidation(c, err)
	}
	if err := c.Validate(req); err != nil {
		return writeValidation(c, err)
	}

	client, err := h.clientService.AddClient(c.Request().Context(), req.Email)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": fmt.Sprintf("Client %s added successfully", client.Email),
		"client":  client,
	})
}

// ListClients returns all clients, most recently added first.
// @Summary List clients
// @Tags clients
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.AllowedClient
// @Router /admin/clients [get]
func (h *ClientHandler) ListClients(c echo.Context) error {
	clients, err := h.clientService.ListClients(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, clients)
}

// UpdateClient changes a client's email.
// @Summary Update a client's email
// @Tags clients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Param request body ClientEmailRequest true "New email"
// @Success 200 {object} map[string]interface{} "Updated client"
// @Failure 404 {object} errors.ErrorResponse "Client not found"
// @Router /admin/update-client/{id} [put]
func (h *ClientHandler) UpdateClient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return writeError(c, apperrors.ErrClientNotFound)
	}

	var req ClientEmailRequest
	if err := c.Bind(&req); err != nil {
		return writeValidation(c, err)
	}
	if err := c.Validate(req); err != nil {
		return writeValidation(c, err)
	}

	client, err := h.clientService.UpdateClientEmail(c.Request().Context(), id, req.Email)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Client updated",
		"client":  client,
	})
}

// DeleteClient removes a client and everything it owns.
// @Summary Delete a client
// @Tags clients
// @Produce json
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Success 200 {object} map[string]string "Confirmation"
// @Failure 404 {object} errors.ErrorResponse "Client not found"
// @Router /admin/delete-client/{id} [delete]
func (h *ClientHandler) DeleteClient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return writeError(c, apperrors.ErrClientNotFound)
	}

	if err := h.clientService.DeleteClient(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Client deleted"})
}

// ToggleClient flips a client between active and inactive.
// @Summary Toggle a client's status
// @Tags clients
// @Produce json
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Success 200 {object} map[string]interface{} "Updated client"
// @Failure 404 {object} errors.ErrorResponse "Client not found"
// @Router /admin/toggle-client/{id} [patch]
func (h *ClientHandler) ToggleClient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return writeError(c, apperrors.ErrClientNotFound)
	}

	client, err := h.clientService.ToggleStatus(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": fmt.Sprintf("Client %s set to %s", client.Email, client.Status),
		"client":  client,
	})
}

package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apperrors "portal/internal/errors"
	"portal/internal/service"
)

// CommentHandler exposes report comments.
type CommentHandler struct {
	commentService service.CommentService
}

// NewCommentHandler creates a new comment handler.
func NewCommentHandler(commentService service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

type AddCommentRequest struct {
	Text  string `json:"text" validate:"required"`
	Email string `json:"email" validate:"required"`
}

// ListComments returns a report's comments, newest first.
// @Summary List report comments
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param reportId path string true "Report ID"
// @Success 200 {array} model.Comment
// @Router /comments/{reportId} [get]
func (h *CommentHandler) ListComments(c echo.Context) error {
	reportID, err := uuid.Parse(c.Param("reportId"))
	if err != nil {
		return writeError(c, apperrors.ErrReportNotFound)
	}

	comments, err := h.commentService.ListComments(c.Request().Context(), reportID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, comments)
}

// AddComment appends a comment to a report.
// @Summary Comment on a report
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param reportId path string true "Report ID"
// @Param request body AddCommentRequest true "Comment"
// @Success 200 {object} map[string]interface{} "Created comment"
// @Failure 400 {object} errors.ErrorResponse "Missing text or email"
// @Failure 404 {object} errors.ErrorResponse "Report not found"
// @Router /comments/{reportId} [post]
func (h *CommentHandler) AddComment(c echo.Context) error {
	reportID, err := uuid.Parse(c.Param("reportId"))
	if err != nil {
		return writeError(c, apperrors.ErrReportNotFound)
	}

	var req AddCommentRequest
	if err := c.Bind(&req); err != nil {
		return writeValidation(c, err)
	}
	if err := c.Validate(req); err != nil {
		return writeValidation(c, err)
	}

	comment, err := h.commentService.AddComment(c.Request().Context(), reportID, req.Email, req.Text)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Comment added",
		"comment": comment,
	})
}

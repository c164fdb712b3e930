package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apperrors "portal/internal/errors"
	"portal/internal/service"
)

// ProjectHandler exposes project creation, report uploads, listings, and
// downloads.
type ProjectHandler struct {
	projectService service.ProjectService
}

// NewProjectHandler creates a new project handler.
func NewProjectHandler(projectService service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// CreateProject creates a project with its first report version.
// @Summary Create a project
// @Description Create a project for a client with the first report file
// @Tags projects
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Project title"
// @Param client_id formData string true "Owning client ID"
// @Param email formData string false "Uploader email"
// @Param file formData file true "First report file"
// @Success 200 {object} map[string]interface{} "Created project"
// @Failure 400 {object} errors.ErrorResponse "Missing fields or bad extension"
// @Failure 404 {object} errors.ErrorResponse "Client not found"
// @Router /admin/create-project [post]
func (h *ProjectHandler) CreateProject(c echo.Context) error {
	title := strings.TrimSpace(c.FormValue("title"))
	clientIDRaw := c.FormValue("client_id")
	fileHeader, fileErr := c.FormFile("file")

	if title == "" || clientIDRaw == "" || fileErr != nil {
		return writeError(c, apperrors.ErrMissingFields)
	}

	clientID, err := uuid.Parse(clientIDRaw)
	if err != nil {
		return writeError(c, apperrors.ErrClientNotFound)
	}

	uploader := strings.ToLower(strings.TrimSpace(c.FormValue("email")))
	if uploader == "" {
		ident, err := identityFromContext(c)
		if err != nil {
			return err
		}
		uploader = ident.Email
	}

	src, err := fileHeader.Open()
	if err != nil {
		return writeValidation(c, err)
	}
	defer src.Close()

	project, err := h.projectService.CreateProject(c.Request().Context(), title, clientID, uploader, service.Upload{
		Filename: fileHeader.Filename,
		Content:  src,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Project created",
		"project": project,
	})
}

// AddReport appends a follow-up report version to a project.
// @Summary Upload a follow-up report
// @Tags projects
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Param email formData string false "Uploader email"
// @Param file formData file true "Report file"
// @Success 200 {object} map[string]interface{} "Created report"
// @Failure 400 {object} errors.ErrorResponse "Missing file or bad extension"
// @Failure 404 {object} errors.ErrorResponse "Project not found"
// @Router /project/{id}/add-report [post]
func (h *ProjectHandler) AddReport(c echo.Context) error {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return writeError(c, apperrors.ErrProjectNotFound)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return writeError(c, apperrors.ErrInvalidFileType)
	}

	uploader := strings.ToLower(strings.TrimSpace(c.FormValue("email")))
	if uploader == "" {
		ident, err := identityFromContext(c)
		if err != nil {
			return err
		}
		uploader = ident.Email
	}

	src, err := fileHeader.Open()
	if err != nil {
		return writeValidation(c, err)
	}
	defer src.Close()

	report, err := h.projectService.AddFollowUpReport(c.Request().Context(), projectID, uploader, service.Upload{
		Filename: fileHeader.Filename,
		Content:  src,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Follow-up report added",
		"report":  report,
	})
}

// ListProjects returns the projects visible to the caller.
// @Summary List visible projects
// @Description Admins see all projects, clients their own, sorted by latest activity
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Success 200 {array} service.ProjectResponse
// @Router /projects [get]
func (h *ProjectHandler) ListProjects(c echo.Context) error {
	ident, err := identityFromContext(c)
	if err != nil {
		return err
	}

	projects, err := h.projectService.ListProjects(c.Request().Context(), ident)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, projects)
}

// ListReports returns the flat report list visible to the caller.
// @Summary List visible reports
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Success 200 {array} service.ReportResponse
// @Router /reports [get]
func (h *ProjectHandler) ListReports(c echo.Context) error {
	ident, err := identityFromContext(c)
	if err != nil {
		return err
	}

	reports, err := h.projectService.ListReports(c.Request().Context(), ident)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, reports)
}

// Download streams a report file under its original filename.
// @Summary Download a report
// @Tags projects
// @Produce octet-stream
// @Security BearerAuth
// @Param reportId path string true "Report ID"
// @Success 200 {file} binary
// @Failure 403 {object} errors.ErrorResponse "Not the owning client"
// @Failure 404 {object} errors.ErrorResponse "Report not found"
// @Router /download/{reportId} [get]
func (h *ProjectHandler) Download(c echo.Context) error {
	reportID, err := uuid.Parse(c.Param("reportId"))
	if err != nil {
		return writeError(c, apperrors.ErrReportNotFound)
	}

	ident, err := identityFromContext(c)
	if err != nil {
		return err
	}

	rc, name, err := h.projectService.Download(c.Request().Context(), ident, reportID)
	if err != nil {
		return writeError(c, err)
	}
	defer rc.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Stream(http.StatusOK, "application/octet-stream", rc)
}

package router

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"portal/internal/auth"
	"portal/internal/config"
	"portal/internal/handler"
	"portal/internal/model"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	clientHandler *handler.ClientHandler,
	projectHandler *handler.ProjectHandler,
	commentHandler *handler.CommentHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{
			"https://qsl-services-report.vercel.app",
			"http://localhost:3000",
			"http://127.0.0.1:3000",
		},
		AllowCredentials: true,
	}))

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Login endpoints carry an extra per-IP limiter on top of the per-email
	// OTP cooldown.
	authLimiter := NewAuthRateLimiter(1, 5)
	e.POST("/generate-otp", authHandler.GenerateOTP, authLimiter.Middleware())
	e.POST("/verify-otp", authHandler.VerifyOTP, authLimiter.Middleware())
	e.POST("/admin-login", authHandler.AdminLogin, authLimiter.Middleware())

	// Everything else requires a bearer token.
	secured := e.Group("", echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(cfg.JWTSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(auth.Claims)
		},
	}))

	secured.GET("/me", authHandler.Me)

	// Client registry and project creation (admin only)
	admin := secured.Group("/admin", adminOnly)
	admin.POST("/add-client", clientHandler.AddClient)
	admin.GET("/clients", clientHandler.ListClients)
	admin.PUT("/update-client/:id", clientHandler.UpdateClient)
	admin.DELETE("/delete-client/:id", clientHandler.DeleteClient)
	admin.PATCH("/toggle-client/:id", clientHandler.ToggleClient)
	admin.POST("/create-project", projectHandler.CreateProject)

	// Projects & reports
	secured.POST("/project/:id/add-report", projectHandler.AddReport)
	secured.GET("/projects", projectHandler.ListProjects)
	secured.GET("/reports", projectHandler.ListReports)
	secured.GET("/download/:reportId", projectHandler.Download)

	// Comments
	secured.GET("/comments/:reportId", commentHandler.ListComments)
	secured.POST("/comments/:reportId", commentHandler.AddComment)
}

// adminOnly rejects callers whose token does not carry the admin role.
func adminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := c.Get("user").(*jwt.Token)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}
		claims, ok := token.Claims.(*auth.Claims)
		if !ok || claims.Role != model.RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return next(c)
	}
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

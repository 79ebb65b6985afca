package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"userdir/internal/guard"
	"userdir/internal/handler"
)

// Register wires routes, middleware, and the per-route guard chains. Guard
// order is fixed everywhere: authenticate, then authorize the subject, then
// resolve the target resource.
func Register(
	e *echo.Echo,
	guards *guard.Chain,
	userHandler *handler.UserHandler,
	sessionHandler *handler.SessionHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Public routes
	e.POST("/users", userHandler.CreateUser)
	e.POST("/login", sessionHandler.Login)

	// Guarded routes
	e.GET("/users", userHandler.ListUsers,
		guards.Authenticate(), guards.RequireAdmin())
	e.GET("/users/profile", userHandler.GetProfile,
		guards.Authenticate(), guards.RequireTarget())
	e.PATCH("/users/:id", userHandler.UpdateUser,
		guards.Authenticate(), guards.RequireAdmin(), guards.RequireTarget())
	e.DELETE("/users/:id", userHandler.DeleteUser,
		guards.Authenticate(), guards.RequireAdmin(), guards.RequireTarget())
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

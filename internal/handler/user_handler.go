package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "userdir/internal/errors"
	"userdir/internal/guard"
	"userdir/internal/service"
)

// UserHandler bundles HTTP handlers for directory operations.
type UserHandler struct {
	svc service.DirectoryService
}

// NewUserHandler creates the directory handler layer.
func NewUserHandler(svc service.DirectoryService) *UserHandler {
	return &UserHandler{svc: svc}
}

// CreateUserRequest represents a registration request.
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Module   string `json:"module"`
}

// UpdateUserRequest represents a partial update; absent fields are untouched.
type UpdateUserRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=6"`
	Module   *string `json:"module"`
	IsAdmin  *bool   `json:"is_adm"`
}

// CreateUser godoc
// @Summary Register a new user
// @Tags users
// @Accept json
// @Produce json
// @Param request body CreateUserRequest true "Registration data"
// @Success 201 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /users [post]
func (h *UserHandler) CreateUser(c echo.Context) error {
	var req CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(err.Error())
	}

	user, err := h.svc.Create(c.Request().Context(), req.Name, req.Email, req.Password, req.Module)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, user)
}

// ListUsers godoc
// @Summary List users, optionally filtered by module tag
// @Tags users
// @Produce json
// @Param module query string false "Module tag filter"
// @Success 200 {array} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.svc.List(c.Request().Context(), c.QueryParam("module"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, users)
}

// GetProfile godoc
// @Summary Retrieve the authenticated user's own record
// @Tags users
// @Produce json
// @Success 200 {object} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /users/profile [get]
func (h *UserHandler) GetProfile(c echo.Context) error {
	target, ok := guard.Target(c)
	if !ok {
		return httpError(apperrors.ErrUserNotFound)
	}
	return c.JSON(http.StatusOK, target)
}

// UpdateUser godoc
// @Summary Update a user by UUID
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User UUID"
// @Param request body UpdateUserRequest true "Fields to change"
// @Success 200 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /users/{id} [patch]
func (h *UserHandler) UpdateUser(c echo.Context) error {
	target, ok := guard.Target(c)
	if !ok {
		return httpError(apperrors.ErrUserNotFound)
	}

	var req UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(err.Error())
	}

	user, err := h.svc.Update(c.Request().Context(), target.UUID, service.UserChanges{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Module:   req.Module,
		IsAdmin:  req.IsAdmin,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// DeleteUser godoc
// @Summary Delete a user by UUID
// @Tags users
// @Param id path string true "User UUID"
// @Success 204
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c echo.Context) error {
	target, ok := guard.Target(c)
	if !ok {
		return httpError(apperrors.ErrUserNotFound)
	}
	if err := h.svc.Delete(c.Request().Context(), target.UUID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func httpError(err error) *echo.HTTPError {
	he := apperrors.MapErrorToHTTP(err)
	return echo.NewHTTPError(he.StatusCode, he.ToErrorResponse())
}

func badRequest(message string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{
		Message: message,
		Code:    "INVALID_REQUEST",
	})
}

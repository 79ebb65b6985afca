package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"userdir/internal/service"
)

// SessionHandler handles the login endpoint.
type SessionHandler struct {
	sessions service.SessionService
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(sessions service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued session token.
type LoginResponse struct {
	Token string `json:"token"`
}

// Login godoc
// @Summary Authenticate and receive a session token
// @Tags sessions
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /login [post]
func (h *SessionHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(err.Error())
	}

	token, err := h.sessions.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, LoginResponse{Token: token})
}

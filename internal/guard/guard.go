package guard

import (
	"errors"

	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"userdir/internal/auth"
	apperrors "userdir/internal/errors"
	"userdir/internal/model"
	"userdir/internal/service"
)

// Context keys populated by the guards. Each guard attaches only what its own
// check verified; handlers must not read a key whose guard is not declared on
// the route.
const (
	// SubjectKey holds the verified subject UUID string set by Authenticate.
	SubjectKey = "auth.subject"
	// TargetKey holds the *model.User located by RequireTarget.
	TargetKey = "auth.target"
)

// Chain builds the per-route access-control middleware. Routes declare guards
// in the fixed order Authenticate -> RequireAdmin -> RequireTarget; RequireAdmin
// always authorizes the token's subject, never the route-target record.
type Chain struct {
	tokens *auth.TokenService
	users  service.DirectoryService
}

// New creates a guard chain over the given token verifier and directory.
func New(tokens *auth.TokenService, users service.DirectoryService) *Chain {
	return &Chain{tokens: tokens, users: users}
}

// Authenticate requires a valid "Authorization: Bearer <token>" header and
// attaches the verified subject to the request context.
func (g *Chain) Authenticate() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey: SubjectKey,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return g.tokens.Verify(token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if c.Request().Header.Get(echo.HeaderAuthorization) == "" {
				return reject(apperrors.ErrMissingAuth)
			}
			if errors.Is(err, apperrors.ErrTokenExpired) {
				return reject(apperrors.ErrTokenExpired)
			}
			return reject(apperrors.ErrTokenInvalid)
		},
	})
}

// RequireAdmin loads the authenticated subject's own record and rejects with
// 403 unless its admin flag is set. A subject whose record no longer exists is
// treated as carrying an invalid token.
func (g *Chain) RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			subject, ok := Subject(c)
			if !ok {
				return reject(apperrors.ErrTokenInvalid)
			}
			caller, err := g.users.Retrieve(c.Request().Context(), subject)
			if err != nil {
				if errors.Is(err, apperrors.ErrUserNotFound) {
					return reject(apperrors.ErrTokenInvalid)
				}
				return reject(err)
			}
			if !caller.IsAdmin {
				return reject(apperrors.ErrAdminRequired)
			}
			return next(c)
		}
	}
}

// RequireTarget resolves the route's target user and attaches it to context.
// The ":id" path param names the target; routes without one (GET /users/profile)
// target the authenticated subject itself.
func (g *Chain) RequireTarget() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := c.Param("id")
			if raw == "" {
				subject, ok := Subject(c)
				if !ok {
					return reject(apperrors.ErrTokenInvalid)
				}
				raw = subject.String()
			}

			id, err := uuid.Parse(raw)
			if err != nil {
				return reject(apperrors.ErrUserNotFound)
			}
			target, err := g.users.Retrieve(c.Request().Context(), id)
			if err != nil {
				return reject(err)
			}
			c.Set(TargetKey, target)
			return next(c)
		}
	}
}

// Subject returns the authenticated subject UUID attached by Authenticate.
func Subject(c echo.Context) (uuid.UUID, bool) {
	raw, ok := c.Get(SubjectKey).(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// Target returns the route-target record attached by RequireTarget.
func Target(c echo.Context) (*model.User, bool) {
	target, ok := c.Get(TargetKey).(*model.User)
	return target, ok
}

func reject(err error) error {
	he := apperrors.MapErrorToHTTP(err)
	return echo.NewHTTPError(he.StatusCode, he.ToErrorResponse())
}

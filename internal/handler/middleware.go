package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sumire/tracker/internal/domain"
	"github.com/sumire/tracker/internal/service"
)

const (
	contextKeyUser    = "current_user"
	contextKeySession = "current_session"
)

// RequestLogger logs each HTTP request with structured fields.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			slog.Info("http request",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", c.Response().Status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			)

			return err
		}
	}
}

// SessionAuth resolves the session cookie to a user and injects both into
// the echo context. Requests without a valid, unexpired session fail with
// 401 before reaching the handler.
func SessionAuth(auth *service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				return domain.ErrUnauthenticated
			}

			user, session, err := auth.Authenticate(c.Request().Context(), cookie.Value)
			if err != nil {
				return err
			}

			c.Set(contextKeyUser, user)
			c.Set(contextKeySession, session)
			return next(c)
		}
	}
}

// RequireAdmin rejects callers whose role is not admin. Must run after
// SessionAuth.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok {
				return domain.ErrUnauthenticated
			}
			if user.Role != domain.RoleAdmin {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}

// CSRF enforces the double-submit anti-forgery check on state-changing
// methods: the X-XSRF-TOKEN header must match the token stored on the
// caller's session. Must run after SessionAuth.
func CSRF() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			switch c.Request().Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			session, ok := CurrentSession(c)
			if !ok {
				return domain.ErrUnauthenticated
			}

			header := c.Request().Header.Get(CSRFHeaderName)
			if header == "" || header != session.CSRFToken {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}

// CurrentUser extracts the authenticated user from echo context.
func CurrentUser(c echo.Context) (*domain.User, bool) {
	user, ok := c.Get(contextKeyUser).(*domain.User)
	return user, ok
}

// CurrentSession extracts the caller's session from echo context.
func CurrentSession(c echo.Context) (*domain.Session, bool) {
	session, ok := c.Get(contextKeySession).(*domain.Session)
	return session, ok
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sumire/tracker/internal/domain"
	"github.com/sumire/tracker/internal/service"
)

const (
	// SessionCookieName carries the opaque session id, HttpOnly.
	SessionCookieName = "tracker_session"
	// CSRFCookieName exposes the anti-forgery token to the client script.
	CSRFCookieName = "XSRF-TOKEN"
	// CSRFHeaderName is where mutating requests must echo the token back.
	CSRFHeaderName = "X-XSRF-TOKEN"
)

// AuthHandler handles login, logout and identity endpoints.
type AuthHandler struct {
	auth          *service.AuthService
	secureCookies bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService, secureCookies bool) *AuthHandler {
	return &AuthHandler{auth: auth, secureCookies: secureCookies}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login verifies credentials and issues a new session. The session id and
// the anti-forgery token are both rotated on every successful login.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Malformed request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	priorSessionID := ""
	if cookie, err := c.Cookie(SessionCookieName); err == nil {
		priorSessionID = cookie.Value
	}

	session, err := h.auth.Login(c.Request().Context(), req.Email, req.Password, priorSessionID)
	if err != nil {
		return err
	}

	h.setSessionCookies(c, session)
	return c.JSON(http.StatusOK, map[string]string{"message": "ok"})
}

// Logout invalidates the session and expires both cookies.
func (h *AuthHandler) Logout(c echo.Context) error {
	session, ok := CurrentSession(c)
	if !ok {
		return domain.ErrUnauthenticated
	}

	if err := h.auth.Logout(c.Request().Context(), session.ID); err != nil {
		return err
	}

	h.clearSessionCookies(c)
	return c.JSON(http.StatusOK, map[string]string{"message": "ok"})
}

// Whoami reports whether the caller is authenticated. It never fails with
// 401; the client uses it to decide between the protected shell and the
// login screen.
func (h *AuthHandler) Whoami(c echo.Context) error {
	resp := map[string]any{"auth_check": false, "user": nil}

	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		if user, _, err := h.auth.Authenticate(c.Request().Context(), cookie.Value); err == nil {
			resp["auth_check"] = true
			resp["user"] = user
		}
	}

	return c.JSON(http.StatusOK, resp)
}

// Me returns the authenticated user's public fields.
func (h *AuthHandler) Me(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return domain.ErrUnauthenticated
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) setSessionCookies(c echo.Context, session *domain.Session) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    session.ID,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	c.SetCookie(&http.Cookie{
		Name:     CSRFCookieName,
		Value:    session.CSRFToken,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: false,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookies(c echo.Context) {
	for _, name := range []string{SessionCookieName, CSRFCookieName} {
		c.SetCookie(&http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: name == SessionCookieName,
			Secure:   h.secureCookies,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

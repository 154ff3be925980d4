package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/community_gallery/pkg/logging"
	"github.com/Skotchmaster/community_gallery/pkg/tokens"
)

const (
	ContextAdminID    = "admin_id"
	ContextAdminEmail = "admin_email"
)

type AdminSessionMiddleware struct {
	JWTSecret    []byte
	LoginPath    string
	CookieSecure bool
}

func NewAdminSessionMiddleware(secret []byte, loginPath string, secure bool) *AdminSessionMiddleware {
	return &AdminSessionMiddleware{
		JWTSecret:    secret,
		LoginPath:    loginPath,
		CookieSecure: secure,
	}
}

// RequireAdmin lets the request through only with a valid admin session
// cookie. Page requests are redirected to the login form, anything else gets 401.
func (m *AdminSessionMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		l := logging.FromContext(c.Request().Context()).With("middleware", "require_admin")

		cookie, err := c.Cookie(tokens.AdminCookieName)
		if err != nil || cookie.Value == "" {
			l.Debug("admin_session_missing")
			return m.deny(c, "missing admin session")
		}

		claims, err := tokens.AccessClaimsFromToken(cookie.Value, m.JWTSecret)
		if err != nil || claims == nil {
			l.Warn("admin_session_invalid", "error", err)
			c.SetCookie(tokens.DeleteCookie(tokens.AdminCookieName, tokens.AdminCookiePath, m.CookieSecure))
			return m.deny(c, "invalid admin session")
		}
		if claims.Role != tokens.RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}

		c.Set(ContextAdminID, claims.Subject)
		c.Set(ContextAdminEmail, claims.Email)
		return next(c)
	}
}

func (m *AdminSessionMiddleware) deny(c echo.Context, msg string) error {
	if c.Request().Method == http.MethodGet && m.LoginPath != "" {
		return c.Redirect(http.StatusSeeOther, m.LoginPath)
	}
	return echo.NewHTTPError(http.StatusUnauthorized, msg)
}

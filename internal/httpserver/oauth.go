package httpserver

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/community_gallery/internal/platform"
	"github.com/Skotchmaster/community_gallery/pkg/logging"
	"github.com/Skotchmaster/community_gallery/pkg/tokens"
)

const oauthStateCookie = "shopify_oauth_state"

type OAuthHTTP struct {
	OAuth        *platform.OAuth
	DefaultShop  string
	CookieSecure bool
	// AfterInstall is where the callback sends the browser once the token is stored.
	AfterInstall string
}

func (h *OAuthHTTP) Begin(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "oauth.begin")

	shop := strings.ToLower(strings.TrimSpace(c.QueryParam("shop")))
	if shop == "" {
		shop = h.DefaultShop
	}

	state, err := platform.NewState()
	if err != nil {
		l.Error("oauth_begin_error", "status", 500, "reason", "state generation failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	u, err := h.OAuth.AuthCodeURL(shop, state)
	if err != nil {
		l.Warn("oauth_begin_error", "status", 400, "reason", "invalid shop", "shop", shop, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid shop")
	}

	c.SetCookie(tokens.CreateCookie(oauthStateCookie, state, "/shopify", time.Now().Add(10*time.Minute), h.CookieSecure))
	return c.Redirect(http.StatusFound, u)
}

func (h *OAuthHTTP) Callback(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "oauth.callback")

	expected := ""
	if ck, err := c.Cookie(oauthStateCookie); err == nil {
		expected = ck.Value
	}
	c.SetCookie(tokens.DeleteCookie(oauthStateCookie, "/shopify", h.CookieSecure))

	shop, err := h.OAuth.Callback(ctx, c.QueryParams(), expected)
	switch {
	case err == nil:
	case errors.Is(err, platform.ErrInvalidShop):
		l.Warn("oauth_callback_error", "status", 400, "reason", "invalid shop", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid shop")
	case errors.Is(err, platform.ErrStateMismatch), errors.Is(err, platform.ErrInvalidCallbackHMAC):
		l.Warn("oauth_callback_error", "status", 401, "reason", "callback rejected", "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "callback rejected")
	default:
		l.Error("oauth_callback_error", "status", 500, "reason", "token exchange failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "token exchange failed")
	}

	l.Info("oauth_installed", "shop", shop)
	if h.AfterInstall != "" {
		return c.Redirect(http.StatusFound, h.AfterInstall)
	}
	return c.JSON(http.StatusOK, map[string]any{"shop": shop, "connected": true})
}

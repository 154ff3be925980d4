package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/community_gallery/internal/service"
	"github.com/Skotchmaster/community_gallery/internal/transport"
	"github.com/Skotchmaster/community_gallery/internal/util"
	"github.com/Skotchmaster/community_gallery/pkg/logging"
	authmw "github.com/Skotchmaster/community_gallery/pkg/middleware/auth"
	"github.com/Skotchmaster/community_gallery/pkg/tokens"
)

const (
	adminSessionName = "admin-session"
	adminLoginPath   = "/admin/login"
	adminMediaPath   = "/admin/media"
)

type AdminHTTP struct {
	Admin        *service.AdminService
	Moderation   *service.ModerationService
	SessionStore sessions.Store
	CookieSecure bool
}

func (h *AdminHTTP) session(c echo.Context) *sessions.Session {
	// A cookie that fails to decode still yields a fresh session.
	s, _ := h.SessionStore.Get(c.Request(), adminSessionName)
	return s
}

func (h *AdminHTTP) flashRedirect(c echo.Context, to string, fm FlashMessage) error {
	s := h.session(c)
	s.AddFlash(fm)
	if err := s.Save(c.Request(), c.Response()); err != nil {
		logging.FromContext(c.Request().Context()).Warn("session_save_failed", "error", err)
	}
	return c.Redirect(http.StatusSeeOther, to)
}

func (h *AdminHTTP) LoginPage(c echo.Context) error {
	s := h.session(c)
	data := map[string]any{
		"Flashes":   GetFlash(s),
		"CsrfField": csrf.TemplateField(c.Request()),
		"Email":     c.QueryParam("email"),
	}
	_ = s.Save(c.Request(), c.Response())
	return c.Render(http.StatusOK, "login.html", data)
}

func (h *AdminHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.login")

	email := c.FormValue("email")
	res, err := h.Admin.Login(ctx, email, c.FormValue("password"))
	if err != nil {
		if errors.Is(err, service.ErrUnauthenticated) || errors.Is(err, service.ErrValidation) {
			l.Warn("login_error", "status", 401, "reason", "invalid credentials")
			return h.flashRedirect(c, adminLoginPath, FlashMessage{Type: "error", Message: "Invalid email or password"})
		}
		return fail(l, "login_error", err)
	}

	c.SetCookie(tokens.CreateCookie(tokens.AdminCookieName, res.Token, tokens.AdminCookiePath, res.ExpiresAt, h.CookieSecure))
	l.Info("login_success", "admin_id", res.Admin.ID)
	return c.Redirect(http.StatusSeeOther, adminMediaPath)
}

func (h *AdminHTTP) Logout(c echo.Context) error {
	c.SetCookie(tokens.DeleteCookie(tokens.AdminCookieName, tokens.AdminCookiePath, h.CookieSecure))
	return h.flashRedirect(c, adminLoginPath, FlashMessage{Type: "success", Message: "Signed out"})
}

func (h *AdminHTTP) ListMedia(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.list_media")

	status, from, to := c.QueryParam("status"), c.QueryParam("from"), c.QueryParam("to")
	f, err := service.ParseFilter(status, from, to)
	if err != nil {
		return fail(l, "list_media_error", err)
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	if page < 1 {
		l.Warn("list_media_error", "status", 400, "reason", "page is not a positive integer", "page", page)
		return echo.NewHTTPError(http.StatusBadRequest, "page is not a positive integer")
	}

	result, err := h.Moderation.List(ctx, f, page, 0)
	if err != nil {
		return fail(l, "list_media_error", err)
	}

	s := h.session(c)
	data := map[string]any{
		"Page":       result,
		"Status":     f.Status,
		"From":       strings.TrimSpace(from),
		"To":         strings.TrimSpace(to),
		"AdminEmail": c.Get(authmw.ContextAdminEmail),
		"Flashes":    GetFlash(s),
		"CsrfField":  csrf.TemplateField(c.Request()),
	}
	_ = s.Save(c.Request(), c.Response())
	return c.Render(http.StatusOK, "media.html", data)
}

func (h *AdminHTTP) ToggleMedia(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.toggle_media")

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		l.Warn("toggle_media_error", "status", 400, "reason", "id is not integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not integer")
	}

	adminEmail, _ := c.Get(authmw.ContextAdminEmail).(string)
	m, err := h.Moderation.Toggle(ctx, uint(id), adminEmail)
	if err != nil {
		return fail(l, "toggle_media_error", err)
	}

	msg := fmt.Sprintf("Media #%d approved", m.ID)
	if !m.Approved {
		msg = fmt.Sprintf("Media #%d hidden", m.ID)
	}
	return h.flashRedirect(c, returnTo(c.FormValue("returnTo")), FlashMessage{Type: "success", Message: msg})
}

// returnTo only follows redirects back into the moderation listing.
func returnTo(v string) string {
	if v == adminMediaPath || strings.HasPrefix(v, adminMediaPath+"?") {
		return v
	}
	return adminMediaPath
}

func (h *AdminHTTP) Bootstrap(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.bootstrap")

	var req transport.BootstrapRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("bootstrap_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	admin, err := h.Admin.Bootstrap(ctx, req.Email, req.Password)
	if err != nil {
		return fail(l, "bootstrap_error", err)
	}
	return c.JSON(http.StatusCreated, map[string]any{"id": admin.ID, "email": admin.Email})
}

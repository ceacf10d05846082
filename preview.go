package homepage

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	sessionName = "preview_session"
	previewKey  = "preview"
)

func (a *App) handlePreview(c echo.Context) error {
	return Render(c, a.Views.PreviewLogin(a.siteFor(c), false, CsrfToken(c)))
}

func (a *App) handlePreviewLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Allow(ip) {
		a.Logger.Warn("preview login rate limited", "ip", ip)
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.PreviewPassword)) != 1 {
		return RenderStatus(c, http.StatusUnauthorized, a.Views.PreviewLogin(a.siteFor(c), true, CsrfToken(c)))
	}
	a.loginLimiter.Reset(ip)
	if err := setPreviewSession(c, true); err != nil {
		return err
	}
	a.Logger.Info("preview session started", "ip", ip)
	return c.Redirect(http.StatusSeeOther, "/")
}

func (a *App) handlePreviewLogout(c echo.Context) error {
	if err := setPreviewSession(c, false); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

// IsPreview reports whether the request belongs to a preview session.
// It is false whenever preview is not configured.
func IsPreview(c echo.Context) bool {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return false
	}
	on, ok := sess.Values[previewKey].(bool)
	return ok && on
}

func setPreviewSession(c echo.Context, on bool) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	if on {
		sess.Values[previewKey] = true
	} else {
		delete(sess.Values, previewKey)
		sess.Options.MaxAge = -1
	}
	return sess.Save(c.Request(), c.Response())
}

// CsrfToken extracts the CSRF token from the Echo context.
func CsrfToken(c echo.Context) string {
	token, _ := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string)
	return token
}

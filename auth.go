package pubcms

import (
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	sessionName    = "pubcms_session"
	sessionUserKey = "username"
	identityKey    = "pubcms.identity"
)

// Identity is the authenticated user of a request. Anonymous requests carry
// no Identity.
type Identity struct {
	Username string
}

func (a *App) newSessionStore() *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(a.Config.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		MaxAge:   60 * 60 * 12,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.Config.CookieSecure,
	}
	return store
}

// identityMiddleware lifts the session user into the request context so
// handlers read it through CurrentUser instead of touching the session.
func identityMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if sess, err := session.Get(sessionName, c); err == nil {
			if name, ok := sess.Values[sessionUserKey].(string); ok && name != "" {
				c.Set(identityKey, Identity{Username: name})
			}
		}
		return next(c)
	}
}

// CurrentUser returns the authenticated identity of the request, if any.
func CurrentUser(c echo.Context) (Identity, bool) {
	id, ok := c.Get(identityKey).(Identity)
	return id, ok
}

func currentUsername(c echo.Context) string {
	id, _ := CurrentUser(c)
	return id.Username
}

// requireUser redirects anonymous requests to the login page.
func requireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := CurrentUser(c); !ok {
			return c.Redirect(http.StatusSeeOther, "/login")
		}
		return next(c)
	}
}

// requireUserJSON answers anonymous requests with 401 and a JSON body.
func requireUserJSON(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := CurrentUser(c); !ok {
			return c.JSON(http.StatusUnauthorized, likeResponse{Success: false, Message: ErrUnauthenticated.Error()})
		}
		return next(c)
	}
}

// requireRotated checks that the session user still exists and has replaced
// the bootstrap password. Stale sessions are cleared; accounts pending
// rotation are sent to the profile page.
func (a *App) requireRotated(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		name := currentUsername(c)
		exists, err := a.Store.UserExists(ctx, name)
		if err != nil {
			return err
		}
		if !exists {
			if err := clearSession(c); err != nil {
				return err
			}
			return c.Redirect(http.StatusSeeOther, "/login")
		}
		rotate, err := a.Store.MustRotate(ctx, name)
		if err != nil {
			return err
		}
		if rotate {
			return c.Redirect(http.StatusSeeOther, "/admin/profil")
		}
		return next(c)
	}
}

func setUserSession(c echo.Context, username string) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Values[sessionUserKey] = username
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return err
	}
	c.Set(identityKey, Identity{Username: username})
	return nil
}

func clearSession(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	delete(sess.Values, sessionUserKey)
	sess.Options.MaxAge = -1
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return err
	}
	c.Set(identityKey, nil)
	return nil
}

// CsrfToken extracts the CSRF token from the Echo context.
func CsrfToken(c echo.Context) string {
	token, _ := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string)
	return token
}

package pubcms

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
)

const invalidLoginMessage = "Invalid username or password."

// likeResponse is the JSON body of /api/like/:id.
type likeResponse struct {
	Success bool       `json:"success"`
	Action  LikeAction `json:"action,omitempty"`
	Total   int        `json:"total"`
	Message string     `json:"message,omitempty"`
}

func (a *App) handleHome(c echo.Context) error {
	ctx := c.Request().Context()
	articles, err := a.Store.ListVisibleArticles(ctx)
	if err != nil {
		return err
	}
	cats, err := a.Store.ListCategories(ctx)
	if err != nil {
		return err
	}
	return Render(c, a.Views.Home(HomePage{
		Articles:   articles,
		Categories: cats,
		User:       currentUsername(c),
	}))
}

// handleCategory lists visible articles of one category. An unknown
// category renders an empty page rather than a 404.
func (a *App) handleCategory(c echo.Context) error {
	ctx := c.Request().Context()
	name := c.Param("category")
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	articles, err := a.Store.ListArticlesByCategory(ctx, name)
	if err != nil {
		return err
	}
	cats, err := a.Store.ListCategories(ctx)
	if err != nil {
		return err
	}
	return Render(c, a.Views.Home(HomePage{
		Title:      "Articles in category: " + Capitalize(name),
		Articles:   articles,
		Categories: cats,
		User:       currentUsername(c),
	}))
}

func (a *App) handleArticle(c echo.Context) error {
	ctx := c.Request().Context()
	id, ok := ParseID(c.Param("id"))
	if !ok {
		return a.renderNotFound(c)
	}
	art, err := a.Store.GetVisibleArticle(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return a.renderNotFound(c)
	}
	if err != nil {
		return err
	}
	likes, err := a.Store.CountLikes(ctx, id)
	if err != nil {
		return err
	}
	user := currentUsername(c)
	liked := false
	if user != "" {
		if liked, err = a.Store.HasLiked(ctx, id, user); err != nil {
			return err
		}
	}
	return Render(c, a.Views.Article(ArticlePage{
		Article:   art,
		Likes:     likes,
		Liked:     liked,
		User:      user,
		CSRFToken: CsrfToken(c),
	}))
}

func (a *App) handleLoginForm(c echo.Context) error {
	return Render(c, a.Views.Login("", CsrfToken(c)))
}

func (a *App) handleLogin(c echo.Context) error {
	var f loginForm
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ok, err := a.Store.VerifyUser(c.Request().Context(), f.Username, f.Password)
	if err != nil {
		return err
	}
	if !ok {
		a.Logger.Info("failed login", "username", f.Username, "ip", c.RealIP())
		return Render(c, a.Views.Login(invalidLoginMessage, CsrfToken(c)))
	}
	if err := setUserSession(c, f.Username); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin")
}

func handleLogout(c echo.Context) error {
	if err := clearSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

// toggleVisibleLike toggles the current user's like on a visible article and
// returns the action together with the new total.
func (a *App) toggleVisibleLike(c echo.Context) (int64, LikeAction, int, error) {
	ctx := c.Request().Context()
	id, ok := ParseID(c.Param("id"))
	if !ok {
		return 0, "", 0, ErrNotFound
	}
	if _, err := a.Store.GetVisibleArticle(ctx, id); err != nil {
		return id, "", 0, err
	}
	action, err := a.Store.ToggleLike(ctx, id, currentUsername(c))
	if err != nil {
		return id, "", 0, err
	}
	total, err := a.Store.CountLikes(ctx, id)
	if err != nil {
		return id, "", 0, err
	}
	return id, action, total, nil
}

func (a *App) handleToggleLike(c echo.Context) error {
	id, _, _, err := a.toggleVisibleLike(c)
	if errors.Is(err, ErrNotFound) {
		return a.renderNotFound(c)
	}
	if err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, Article{ID: id}.Link())
}

func (a *App) handleAPILike(c echo.Context) error {
	_, action, total, err := a.toggleVisibleLike(c)
	if errors.Is(err, ErrNotFound) {
		return c.JSON(http.StatusNotFound, likeResponse{Success: false, Message: ErrNotFound.Error()})
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, likeResponse{Success: true, Action: action, Total: total})
}

func (a *App) handleSitemap(c echo.Context) error {
	ctx := c.Request().Context()
	articles, err := a.Store.ListVisibleArticles(ctx)
	if err != nil {
		return err
	}
	cats, err := a.Store.ListCategories(ctx)
	if err != nil {
		return err
	}
	return a.renderSitemap(c, articles, cats)
}

func (a *App) handleFeed(c echo.Context) error {
	articles, err := a.Store.ListVisibleArticles(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderRSS(c, articles)
}

func (a *App) handleRobots(c echo.Context) error {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Allow: /\n")
	b.WriteString("Disallow: /admin\n")
	b.WriteString("Disallow: /login\n")
	b.WriteString("Sitemap: " + BuildURL(a.Config.URL, "sitemap.xml") + "\n")
	return c.String(http.StatusOK, b.String())
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if (ok && he.Code == http.StatusNotFound) || errors.Is(err, ErrNotFound) {
		_ = a.renderNotFound(c)
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Logger.Error("server error", "err", err, "method", c.Request().Method, "uri", c.Request().RequestURI)
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}

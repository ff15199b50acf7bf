package pubcms

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	imagesField = "images"

	msgArticleAdded   = "Article added."
	msgTitleRequired  = "Title is required."
	msgUserAdded      = "User added."
	msgUserTaken      = "That username already exists."
	msgUserRequired   = "Username and password are required."
	msgProfileUpdated = "Profile updated."
)

func (a *App) adminPage(c echo.Context, msg string) AdminPage {
	return AdminPage{
		User:      currentUsername(c),
		Message:   msg,
		CSRFToken: CsrfToken(c),
	}
}

func (a *App) handleAdminPanel(c echo.Context) error {
	return a.renderAdminPanel(c, "")
}

func (a *App) renderAdminPanel(c echo.Context, msg string) error {
	cats, err := a.Store.ListCategories(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminPanel(a.adminPage(c, msg), cats))
}

// handleCreateArticle stores the uploaded images first so their markup can
// be part of the body inserted together with the category links.
func (a *App) handleCreateArticle(c echo.Context) error {
	var f articleForm
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	title := strings.TrimSpace(f.Title)
	if title == "" {
		return a.renderAdminPanel(c, msgTitleRequired)
	}
	markup, err := a.saveUploads(c)
	if err != nil {
		return err
	}
	_, err = a.Store.CreateArticle(c.Request().Context(), NewArticle{
		Title:      title,
		Body:       f.Body + markup,
		Visible:    f.visible(),
		Author:     currentUsername(c),
		Categories: f.Categories,
	})
	if err != nil {
		return err
	}
	return a.renderAdminPanel(c, msgArticleAdded)
}

// saveUploads stores the files of the multipart images field and returns the
// markup to append to an article body. Rejected files are logged and skipped.
func (a *App) saveUploads(c echo.Context) (string, error) {
	form, err := c.MultipartForm()
	if errors.Is(err, http.ErrNotMultipart) {
		return "", nil
	}
	if err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	var files []*multipart.FileHeader
	if form != nil {
		files = form.File[imagesField]
	}
	names, err := a.Images.SaveAll(files, func(err error) {
		a.Logger.Warn("upload skipped", "err", err)
	})
	if err != nil {
		return "", err
	}
	return a.Images.Markup(names), nil
}

func (a *App) handleAddUserForm(c echo.Context) error {
	return a.renderAddUser(c, "")
}

func (a *App) renderAddUser(c echo.Context, msg string) error {
	users, err := a.Store.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminAddUser(a.adminPage(c, msg), users))
}

func (a *App) handleAddUser(c echo.Context) error {
	var f userForm
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	err := a.Store.CreateUser(c.Request().Context(), f.Username, f.Password)
	switch {
	case errors.Is(err, ErrConflict):
		return a.renderAddUser(c, msgUserTaken)
	case errors.Is(err, ErrInvalidInput):
		return a.renderAddUser(c, msgUserRequired)
	case err != nil:
		return err
	}
	a.Logger.Info("user created", "username", strings.TrimSpace(f.Username), "by", currentUsername(c))
	return a.renderAddUser(c, msgUserAdded)
}

func (a *App) handleProfileForm(c echo.Context) error {
	return Render(c, a.Views.AdminProfile(a.adminPage(c, "")))
}

// handleProfile renames the current user and replaces its password. The
// session follows the new name only once the store accepted it.
func (a *App) handleProfile(c echo.Context) error {
	var f profileForm
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	newName := strings.TrimSpace(f.Username)
	err := a.Store.RenameUser(c.Request().Context(), currentUsername(c), newName, f.Password)
	switch {
	case errors.Is(err, ErrConflict):
		return Render(c, a.Views.AdminProfile(a.adminPage(c, msgUserTaken)))
	case errors.Is(err, ErrInvalidInput):
		return Render(c, a.Views.AdminProfile(a.adminPage(c, msgUserRequired)))
	case errors.Is(err, ErrNotFound):
		if err := clearSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/login")
	case err != nil:
		return err
	}
	if err := setUserSession(c, newName); err != nil {
		return err
	}
	return Render(c, a.Views.AdminProfile(a.adminPage(c, msgProfileUpdated)))
}

func (a *App) handleArticleList(c echo.Context) error {
	articles, err := a.Store.ListAllArticles(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminArticles(a.adminPage(c, ""), articles))
}

func (a *App) handleEditForm(c echo.Context) error {
	id, ok := ParseID(c.Param("id"))
	if !ok {
		return a.renderNotFound(c)
	}
	art, err := a.Store.GetArticle(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return a.renderNotFound(c)
	}
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminEdit(a.adminPage(c, ""), art))
}

func (a *App) handleEditArticle(c echo.Context) error {
	ctx := c.Request().Context()
	id, ok := ParseID(c.Param("id"))
	if !ok {
		return a.renderNotFound(c)
	}
	var f articleForm
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := a.Store.UpdateArticle(ctx, id, strings.TrimSpace(f.Title), f.Body, f.visible()); err != nil {
		if errors.Is(err, ErrNotFound) {
			return a.renderNotFound(c)
		}
		return err
	}
	markup, err := a.saveUploads(c)
	if err != nil {
		return err
	}
	if err := a.Store.AppendArticleBody(ctx, id, markup); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/articole")
}

func (a *App) handleDeleteArticle(c echo.Context) error {
	id, ok := ParseID(c.Param("id"))
	if !ok {
		return a.renderNotFound(c)
	}
	if err := a.Store.DeleteArticle(c.Request().Context(), id); err != nil {
		return err
	}
	a.Logger.Info("article deleted", "id", id, "by", currentUsername(c))
	return c.Redirect(http.StatusSeeOther, "/admin/articole")
}

// Package views provides the default pubcms pages, rendered from embedded
// html/template files and exposed to the app as templ components.
package views

import (
	"embed"
	"html/template"

	"github.com/a-h/templ"

	"github.com/eringen/pubcms"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.New("pages").Funcs(template.FuncMap{
	// Article bodies are authored by logged-in users and stored as HTML.
	"raw":        func(s string) template.HTML { return template.HTML(s) },
	"pathEscape": pubcms.PathEscape,
	"jsonLD": func(a pubcms.Article, cfg pubcms.SiteConfig) template.JS {
		return template.JS(pubcms.ArticleJsonLD(a, cfg))
	},
}).ParseFS(templateFS, "templates/*.html"))

// pageData is the root value every page template receives.
type pageData struct {
	Site       pubcms.SiteConfig
	Title      string
	User       string
	Categories []pubcms.Category
	Page       any
}

type loginData struct {
	Message   string
	CSRFToken string
}

type adminPanelData struct {
	pubcms.AdminPage
	Categories []pubcms.Category
}

type adminUsersData struct {
	pubcms.AdminPage
	Users []string
}

type adminArticlesData struct {
	pubcms.AdminPage
	Articles []pubcms.Article
}

type adminEditData struct {
	pubcms.AdminPage
	Article pubcms.Article
}

type renderer struct {
	site pubcms.SiteConfig
}

func (r renderer) page(name string, data pageData) templ.Component {
	data.Site = r.site
	return templ.FromGoHTML(pages.Lookup(name), data)
}

// Default returns the built-in pages for site.
func Default(site pubcms.SiteConfig) pubcms.ViewFuncs {
	r := renderer{site: site}
	return pubcms.ViewFuncs{
		Home: func(p pubcms.HomePage) templ.Component {
			return r.page("home", pageData{Title: p.Title, User: p.User, Categories: p.Categories, Page: p})
		},
		Article: func(p pubcms.ArticlePage) templ.Component {
			return r.page("article", pageData{Title: p.Article.Title, User: p.User, Page: p})
		},
		Login: func(message, csrfToken string) templ.Component {
			return r.page("login", pageData{Title: "Log in", Page: loginData{Message: message, CSRFToken: csrfToken}})
		},
		AdminPanel: func(p pubcms.AdminPage, cats []pubcms.Category) templ.Component {
			return r.page("admin_panel", pageData{Title: "New article", User: p.User, Page: adminPanelData{p, cats}})
		},
		AdminAddUser: func(p pubcms.AdminPage, users []string) templ.Component {
			return r.page("admin_add_user", pageData{Title: "Add user", User: p.User, Page: adminUsersData{p, users}})
		},
		AdminProfile: func(p pubcms.AdminPage) templ.Component {
			return r.page("admin_profile", pageData{Title: "Profile", User: p.User, Page: p})
		},
		AdminArticles: func(p pubcms.AdminPage, articles []pubcms.Article) templ.Component {
			return r.page("admin_articles", pageData{Title: "Articles", User: p.User, Page: adminArticlesData{p, articles}})
		},
		AdminEdit: func(p pubcms.AdminPage, a pubcms.Article) templ.Component {
			return r.page("admin_edit", pageData{Title: "Edit " + a.Title, User: p.User, Page: adminEditData{p, a}})
		},
		NotFound: func() templ.Component {
			return r.page("not_found", pageData{Title: "Not found"})
		},
		ServerError: func() templ.Component {
			return r.page("server_error", pageData{Title: "Error"})
		},
	}
}

package pubcms

import "time"

// Article is the core content type stored in SQLite and rendered by templates.
type Article struct {
	ID         int64
	Title      string
	Body       string // rich text, may contain appended <img> markup
	CreatedAt  time.Time
	Visible    bool
	Author     string // username snapshot at creation time
	Categories []string
}

// Link returns the public URL of the article.
func (a Article) Link() string {
	return "/articol/" + formatID(a.ID)
}

// Date returns the creation timestamp in the stored display format.
func (a Article) Date() string {
	return a.CreatedAt.Format(timestampLayout)
}

// NewArticle carries the fields submitted when creating an article.
type NewArticle struct {
	Title      string
	Body       string
	Visible    bool
	Author     string
	Categories []string
}

// Category is a named tag that articles can be filed under.
type Category struct {
	ID   int64
	Name string
}

// Link returns the public category page URL.
func (c Category) Link() string {
	return "/" + PathEscape(c.Name)
}

// LikeAction reports what ToggleLike did.
type LikeAction string

const (
	LikeActionLiked   LikeAction = "liked"
	LikeActionUnliked LikeAction = "unliked"
)

// HomePage is the view model for the public feed and category pages.
type HomePage struct {
	Title      string // empty on the home page
	Articles   []Article
	Categories []Category
	User       string
}

// ArticlePage is the view model for a single public article.
type ArticlePage struct {
	Article   Article
	Likes     int
	Liked     bool
	User      string
	CSRFToken string
}

// AdminPage is shared by admin views that only need a message and a token.
type AdminPage struct {
	User      string
	Message   string
	CSRFToken string
}

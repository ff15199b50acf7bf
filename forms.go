package pubcms

import "strings"

type loginForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

// articleForm is shared by the create and edit pages. Categories are only
// read on create.
type articleForm struct {
	Title      string   `form:"title"`
	Body       string   `form:"body"`
	Visible    string   `form:"visible"`
	Categories []string `form:"categories"`
}

func (f articleForm) visible() bool {
	v := strings.ToLower(strings.TrimSpace(f.Visible))
	return v == "on" || v == "true" || v == "1"
}

type userForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

type profileForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

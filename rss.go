package pubcms

import (
	"encoding/xml"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
)

const feedSummaryRunes = 280

var tagPattern = regexp.MustCompile(`<[^>]*>`)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	Author      string   `xml:"author,omitempty"`
	Categories  []string `xml:"category"`
	PubDate     string   `xml:"pubDate"`
	GUID        string   `xml:"guid"`
}

// summarize strips markup from an article body and shortens it for the feed.
func summarize(body string) string {
	text := strings.Join(strings.Fields(tagPattern.ReplaceAllString(body, " ")), " ")
	if utf8.RuneCountInString(text) <= feedSummaryRunes {
		return text
	}
	r := []rune(text)
	return strings.TrimSpace(string(r[:feedSummaryRunes])) + "…"
}

func (a *App) renderRSS(c echo.Context, articles []Article) error {
	base := a.Config.URL
	items := make([]rssItem, 0, len(articles))
	for _, art := range articles {
		link := BuildURL(base, art.Link())
		items = append(items, rssItem{
			Title:       art.Title,
			Link:        link,
			Description: summarize(art.Body),
			Author:      art.Author,
			Categories:  art.Categories,
			PubDate:     art.CreatedAt.Format(time.RFC1123Z),
			GUID:        link,
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Config.Name,
			Link:        base,
			Description: a.Config.Description,
			Items:       items,
		},
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(feed)
}

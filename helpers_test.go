package pubcms

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base     string
		segments []string
		want     string
	}{
		{"https://example.com", nil, "https://example.com/"},
		{"https://example.com", []string{"articol", "7"}, "https://example.com/articol/7"},
		{"https://example.com/blog/", []string{"/articol/7"}, "https://example.com/blog/articol/7"},
		{"https://example.com", []string{"istorie veche"}, "https://example.com/istorie%20veche"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BuildURL(tt.base, tt.segments...))
	}
}

func TestFilterEmpty(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, FilterEmpty([]string{" a ", "", "  ", "b"}))
	assert.Nil(t, FilterEmpty(nil))
}

func TestParseID(t *testing.T) {
	id, ok := ParseID("42")
	assert.True(t, ok)
	assert.EqualValues(t, 42, id)

	for _, bad := range []string{"", "0", "-3", "abc", "4x"} {
		_, ok := ParseID(bad)
		assert.False(t, ok, "ParseID(%q)", bad)
	}
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "History", Capitalize("history"))
	assert.Equal(t, "Ștefan", Capitalize("ștefan"))
	assert.Equal(t, "", Capitalize(""))
}

func TestArticleLinks(t *testing.T) {
	assert.Equal(t, "/articol/12", Article{ID: 12}.Link())
	assert.Equal(t, "/istorie%20veche", Category{Name: "istorie veche"}.Link())
}

func TestArticleJsonLD(t *testing.T) {
	a := Article{
		ID:         3,
		Title:      "Hello",
		CreatedAt:  time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
		Author:     "ana",
		Categories: []string{"history", "politics"},
	}
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(ArticleJsonLD(a, SiteConfig{Name: "Blog", URL: "https://example.com"})), &got))
	assert.Equal(t, "Article", got["@type"])
	assert.Equal(t, "Hello", got["headline"])
	assert.Equal(t, "https://example.com/articol/3", got["url"])
	assert.Equal(t, "history, politics", got["keywords"])
	assert.Equal(t, "ana", got["author"].(map[string]any)["name"])
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, "Hello world", summarize("<p>Hello</p>\n<p>world</p><br><img src=\"/x.png\">"))
}

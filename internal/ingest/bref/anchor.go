package bref

import (
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PlayerIDFromCell mines the stable player id from a table cell's markup.
// The id is the last path segment of the first link, minus its extension:
// `<a href="/players/j/jamesle01.html">` yields "jamesle01".
func PlayerIDFromCell(cellMarkup string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(cellMarkup))
	if err != nil {
		return "", false
	}

	href, ok := doc.Find("a[href]").First().Attr("href")
	if !ok {
		return "", false
	}
	return idFromHref(href)
}

func idFromHref(href string) (string, bool) {
	if i := strings.IndexAny(href, "?#"); i >= 0 {
		href = href[:i]
	}
	href = strings.TrimRight(strings.TrimSpace(href), "/")
	if href == "" {
		return "", false
	}

	last := href[strings.LastIndex(href, "/")+1:]
	id := strings.TrimSuffix(last, path.Ext(last))
	if id == "" {
		return "", false
	}
	return id, true
}

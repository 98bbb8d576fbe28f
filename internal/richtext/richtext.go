// Package richtext cleans the limited HTML brands may use in campaign
// descriptions and derives the plain text used for search.
package richtext

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()

	p.AllowElements("p", "br", "div", "span", "hr")
	p.AllowElements("strong", "b", "em", "i", "u", "s")
	p.AllowElements("h1", "h2", "h3", "h4", "h5")
	p.AllowLists()
	p.AllowTables()
	p.AllowAttrs("colspan", "rowspan").OnElements("td", "th")
	p.AllowElements("blockquote", "code", "pre")

	p.AllowAttrs("href").OnElements("a")
	p.AllowAttrs("target").Matching(bluemonday.SpaceSeparatedTokens).OnElements("a")
	p.RequireParseableURLs(true)
	p.AllowURLSchemes("http", "https", "mailto")
	p.RequireNoReferrerOnFullyQualifiedLinks(true)

	return p
}

// Sanitize strips every element and attribute outside the allowed formatting set.
func Sanitize(html string) string {
	return strings.TrimSpace(policy.Sanitize(html))
}

// PlainText returns the visible text of an HTML fragment with whitespace collapsed.
func PlainText(html string) string {
	if !strings.ContainsAny(html, "<&") {
		return strings.Join(strings.Fields(html), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.Join(strings.Fields(html), " ")
	}
	doc.Find("br, p, div, li, h1, h2, h3, h4, h5, td, th").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml(" ")
	})
	return strings.Join(strings.Fields(doc.Text()), " ")
}

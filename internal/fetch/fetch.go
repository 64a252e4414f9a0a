// Package fetch provides browser sessions and HTML text extraction helpers.
// This package centralizes page access used by the profile scrapers.
package fetch

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// DefaultTimeout is the default timeout for a single browser action.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (compatible; ResumeScraper/1.0)"

// Error represents an error while loading a page.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ParseHTML parses rendered markup into a goquery document.
func ParseHTML(markup string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

// Text returns the trimmed text of the first node in sel with internal whitespace collapsed.
func Text(sel *goquery.Selection) string {
	return strings.Join(strings.Fields(sel.First().Text()), " ")
}

// FirstText tries selectors in order and returns the text of the first non-empty match.
// The boolean is false when no selector matched.
func FirstText(doc *goquery.Document, selectors []string) (string, bool) {
	for _, selector := range selectors {
		if text := Text(doc.Find(selector)); text != "" {
			return text, true
		}
	}
	return "", false
}

// skippedElements hold text that is never rendered.
var skippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
}

// FlattenText joins the stripped, non-empty text nodes under each node of sel with sep.
func FlattenText(sel *goquery.Selection, sep string) string {
	var fragments []string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if text := strings.TrimSpace(n.Data); text != "" {
				fragments = append(fragments, text)
			}
			return
		case html.ElementNode:
			if skippedElements[n.Data] {
				return
			}
		case html.CommentNode:
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	for _, node := range sel.Nodes {
		walk(node)
	}

	return strings.Join(fragments, sep)
}

package linkedin

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/resume-scraper/internal/fetch"
	"github.com/jonathan/resume-scraper/internal/types"
)

// TextStrategy extracts a single text value from a rendered page.
// ok is false when the strategy's markup is absent.
type TextStrategy struct {
	Name    string
	Extract func(doc *goquery.Document) (text string, ok bool)
}

// ListStrategy extracts a list of text values from a rendered page.
type ListStrategy struct {
	Name    string
	Extract func(doc *goquery.Document) []string
}

// selectorText builds a TextStrategy reading the first element matching selector
func selectorText(selector string) TextStrategy {
	return TextStrategy{
		Name: selector,
		Extract: func(doc *goquery.Document) (string, bool) {
			return fetch.FirstText(doc, []string{selector})
		},
	}
}

// selectorList builds a ListStrategy reading every element matching selector.
// When inner is set, each element's text is taken from its first inner match if present.
func selectorList(selector, inner string) ListStrategy {
	return ListStrategy{
		Name: selector,
		Extract: func(doc *goquery.Document) []string {
			var values []string
			doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
				target := s
				if inner != "" {
					if found := s.Find(inner); found.Length() > 0 {
						target = found
					}
				}
				if text := fetch.Text(target); text != "" {
					values = append(values, text)
				}
			})
			return values
		},
	}
}

// firstText runs strategies in order and returns the first hit, or fallback
func firstText(doc *goquery.Document, strategies []TextStrategy, fallback string) string {
	for _, strategy := range strategies {
		if text, ok := strategy.Extract(doc); ok && text != "" {
			return text
		}
	}
	return fallback
}

// UnknownName is used when no name strategy matches
const UnknownName = types.UnknownName

// Identity strategies, newest layout first.
var (
	nameStrategies = []TextStrategy{
		selectorText("h1.text-heading-xlarge"),
		selectorText("h1.vcard-detail-primary__headline"),
	}

	headlineStrategies = []TextStrategy{
		selectorText("div.text-body-medium"),
		selectorText("div.vcard-detail-primary__sub-text"),
	}
)

// skillStrategies are tried in order until one yields accepted candidates.
var skillStrategies = []ListStrategy{
	selectorList("div.display-flex.align-items-center.mr1.hoverable-link-text", `span[aria-hidden="true"]`),
	selectorList("div.artdeco-entity-lockup__title", ""),
}

package linkedin

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/resume-scraper/internal/fetch"
	"github.com/jonathan/resume-scraper/internal/skills"
	"github.com/jonathan/resume-scraper/internal/types"
)

// Section anchors on the profile page
const (
	ExperienceAnchor = "experience"
	EducationAnchor  = "education"
)

// listItemSelector matches one history entry inside a section
const listItemSelector = "li.artdeco-list__item"

// ExtractName returns the profile owner's name, or UnknownName
func ExtractName(doc *goquery.Document) string {
	return firstText(doc, nameStrategies, UnknownName)
}

// ExtractHeadline returns the subtitle under the name, or ""
func ExtractHeadline(doc *goquery.Document) string {
	return firstText(doc, headlineStrategies, "")
}

// ExtractEntries collects the list items of the section containing div#anchor.
// A missing anchor or section yields an empty list.
func ExtractEntries(doc *goquery.Document, anchor string) []types.RawEntry {
	entries := []types.RawEntry{}

	anchorSel := doc.Find("div#" + anchor).First()
	if anchorSel.Length() == 0 {
		return entries
	}

	section := anchorSel.Closest("section")
	if section.Length() == 0 {
		return entries
	}

	section.Find(listItemSelector).Each(func(_ int, item *goquery.Selection) {
		if text := fetch.FlattenText(item, types.EntrySeparator); text != "" {
			entries = append(entries, types.RawEntry(text))
		}
	})

	return entries
}

// ExtractProfile reads identity and both history lists from the main profile page
func ExtractProfile(doc *goquery.Document) types.LinkedInProfile {
	return types.LinkedInProfile{
		Name:       ExtractName(doc),
		Headline:   ExtractHeadline(doc),
		Experience: ExtractEntries(doc, ExperienceAnchor),
		Education:  ExtractEntries(doc, EducationAnchor),
		Skills:     []string{},
	}
}

// ExtractSkills reads skill names from the skills sub-page.
// The first strategy that yields accepted candidates wins; name is the profile owner's name.
func ExtractSkills(doc *goquery.Document, name string) []string {
	for _, strategy := range skillStrategies {
		accepted := skills.FilterCandidates(strategy.Extract(doc), name)
		if len(accepted) > 0 {
			return skills.Dedupe(accepted)
		}
	}
	return []string{}
}

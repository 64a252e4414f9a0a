// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/resume-scraper/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most width runes
func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-3]) + "..."
}

// writeList writes up to maxItemsToShow items with a trailing "and N more" line
func writeList(sb *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(heading + ":\n")
	count := min(len(items), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
	}
}

// PrintGitHub outputs a summary of the structured source result
func (p *Printer) PrintGitHub(result types.SourceResult[types.GitHubProfile]) {
	if !result.IsOK() {
		p.printBox("GITHUB", "Error: "+result.Err)
		return
	}
	profile := result.Profile

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:      %s\n", profile.Name))
	if profile.Location != "" {
		sb.WriteString(fmt.Sprintf("Location:  %s\n", profile.Location))
	}
	sb.WriteString(fmt.Sprintf("Repos:     %d public, %d kept\n", profile.PublicRepos, len(profile.Projects)))

	projects := make([]string, 0, len(profile.Projects))
	for _, proj := range profile.Projects {
		projects = append(projects, fmt.Sprintf("%s (★ %d)", proj.Name, proj.Stars))
	}
	writeList(&sb, "Top Projects", projects)
	writeList(&sb, "Languages", profile.Skills)

	p.printBox("GITHUB", sb.String())
}

// PrintLinkedIn outputs a summary of the session-driven source result
func (p *Printer) PrintLinkedIn(result types.SourceResult[types.LinkedInProfile]) {
	if !result.IsOK() {
		p.printBox("LINKEDIN", "Error: "+result.Err)
		return
	}
	profile := result.Profile

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:      %s\n", profile.Name))
	if profile.Headline != "" {
		sb.WriteString(fmt.Sprintf("Headline:  %s\n", profile.Headline))
	}
	sb.WriteString(fmt.Sprintf("Entries:   %d experience, %d education\n", len(profile.Experience), len(profile.Education)))

	positions := make([]string, 0, len(profile.Positions))
	for _, pos := range profile.Positions {
		if pos.Company != "" {
			positions = append(positions, fmt.Sprintf("%s @ %s", pos.Title, pos.Company))
		} else {
			positions = append(positions, pos.Title)
		}
	}
	writeList(&sb, "Positions", positions)
	writeList(&sb, "Skills", profile.Skills)

	p.printBox("LINKEDIN", sb.String())
}

// PrintProfileRecord outputs both sources and the merged skill set
func (p *Printer) PrintProfileRecord(record *types.ProfileRecord) {
	if record == nil {
		return
	}

	p.PrintGitHub(record.GitHub)
	p.PrintLinkedIn(record.LinkedIn)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Timestamp: %s\n", record.Timestamp))
	sb.WriteString(fmt.Sprintf("Skills:    %d merged\n", len(record.FinalSkills)))
	if len(record.FinalSkills) > 0 {
		sb.WriteString(strings.Join(record.FinalSkills, ", "))
		sb.WriteString("\n")
	}
	p.printBox("FINAL SKILLS", sb.String())
}

// PrintEnrichedRecord outputs a summary of an enriched record
func (p *Printer) PrintEnrichedRecord(record *types.EnrichedRecord) {
	if record == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:      %s\n", record.Name))
	bullets := 0
	for _, pos := range record.Positions {
		bullets += len(pos.Bullets)
	}
	for _, proj := range record.Projects {
		bullets += len(proj.Bullets)
	}
	sb.WriteString(fmt.Sprintf("Content:   %d positions, %d projects, %d bullets\n",
		len(record.Positions), len(record.Projects), bullets))

	categories := make([]string, 0, len(record.SkillCategories))
	for category := range record.SkillCategories {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	for _, category := range categories {
		sb.WriteString(fmt.Sprintf("%s: %s\n", category, strings.Join(record.SkillCategories[category], ", ")))
	}

	p.printBox("ENRICHED PROFILE", sb.String())
}

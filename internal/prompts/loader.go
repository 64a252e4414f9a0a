// Package prompts holds the enrichment prompt set embedded from enrichment.json.
package prompts

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// Key names one prompt in the enrichment set
type Key string

const (
	PositionBullets Key = "position-bullets"
	ProjectBullets  Key = "project-bullets"
	SkillCategories Key = "skill-categories"
)

//go:embed enrichment.json
var enrichmentJSON []byte

var placeholderPattern = regexp.MustCompile(`\{\{\.(\w+)\}\}`)

var load = sync.OnceValues(func() (map[Key]string, error) {
	var set map[Key]string
	if err := json.Unmarshal(enrichmentJSON, &set); err != nil {
		return nil, fmt.Errorf("failed to parse enrichment prompts: %w", err)
	}
	return set, nil
})

// Get returns the raw template for key
func Get(key Key) (string, error) {
	set, err := load()
	if err != nil {
		return "", err
	}
	template, ok := set[key]
	if !ok {
		return "", fmt.Errorf("prompt %q not found", key)
	}
	return template, nil
}

// Placeholders lists the {{.Name}} fields a template expects, in order of first use
func Placeholders(template string) []string {
	var names []string
	seen := map[string]bool{}
	for _, m := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// Format fills {{.Name}} fields from data. Fields without a value are left as-is.
func Format(template string, data map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(template, func(field string) string {
		name := placeholderPattern.FindStringSubmatch(field)[1]
		if value, ok := data[name]; ok {
			return value
		}
		return field
	})
}

// Render fills the template for key. Every field the template names must be present in data.
func Render(key Key, data map[string]string) (string, error) {
	template, err := Get(key)
	if err != nil {
		return "", err
	}

	var missing []string
	for _, name := range Placeholders(template) {
		if _, ok := data[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("prompt %q is missing %s", key, strings.Join(missing, ", "))
	}
	return Format(template, data), nil
}

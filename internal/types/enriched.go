package types

// EnrichedRecord is produced from a ProfileRecord by the enrichment stage.
// The source record is embedded unchanged.
type EnrichedRecord struct {
	Source          ProfileRecord       `json:"source"`
	Name            string              `json:"name"`
	Headline        string              `json:"headline,omitempty"`
	Positions       []EnrichedPosition  `json:"positions"`
	Schools         []School            `json:"schools"`
	Projects        []EnrichedProject   `json:"projects"`
	SkillCategories map[string][]string `json:"skill_categories"`
	GeneratedAt     string              `json:"generated_at"`
}

// EnrichedPosition pairs a position with generated bullets
type EnrichedPosition struct {
	Position
	Bullets []string `json:"bullets"`
}

// EnrichedProject pairs a project with generated bullets
type EnrichedProject struct {
	Project
	Bullets []string `json:"bullets"`
}

// SkillCategory names used by the enrichment stage
const (
	CategoryLanguage       = "Language"
	CategoryFramework      = "Framework"
	CategoryDeveloperTools = "Developer Tools"
	CategoryLibraries      = "Libraries"
	// CategoryUncategorized holds the flat skill list when categorization fails
	CategoryUncategorized = "Skills"
)

// SkillCategories lists the categories in display order
func SkillCategories() []string {
	return []string{CategoryLanguage, CategoryFramework, CategoryDeveloperTools, CategoryLibraries}
}

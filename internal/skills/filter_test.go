package skills

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccept(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		owner     string
		want      bool
	}{
		{"plain skill", "Python", "Jane Doe", true},
		{"owner name exact", "Jane Doe", "Jane Doe", false},
		{"owner name other case", "JANE DOE", "Jane Doe", false},
		{"substring of owner name", "Jane", "Jane Doe", false},
		{"superstring of owner name", "Jane Doe (she/her) Engineer", "Jane Doe", false},
		{"length 60", strings.Repeat("a", 60), "Jane Doe", false},
		{"length 50", strings.Repeat("a", 50), "Jane Doe", false},
		{"length 49", strings.Repeat("a", 49), "Jane Doe", true},
		{"pronoun annotation", "(he/him)", "Jane Doe", false},
		{"noise word", "View profile", "Jane Doe", false},
		{"noise word case-insensitive", "LinkedIn Learning", "Jane Doe", false},
		{"skill word", "Show all skills", "Jane Doe", false},
		{"unknown", "Unknown", "Jane Doe", false},
		{"empty", "", "Jane Doe", false},
		{"empty owner name keeps candidate", "Go", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Accept(tt.candidate, tt.owner))
		})
	}
}

func TestFilterCandidates(t *testing.T) {
	got := FilterCandidates([]string{
		"  Python ",
		"Jane Doe",
		"(she/her)",
		strings.Repeat("x", 60),
		"Kubernetes",
		"",
	}, "Jane Doe")

	assert.Equal(t, []string{"Python", "Kubernetes"}, got)
}

func TestIsNoise(t *testing.T) {
	assert.True(t, IsNoise("Endorsed by 3 colleagues on LinkedIn"))
	assert.False(t, IsNoise("PostgreSQL"))
}

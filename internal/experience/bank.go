package experience

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/resume-scraper/internal/types"
)

// LoadProfileRecord loads a scraped profile artifact from a JSON file
func LoadProfileRecord(path string) (*types.ProfileRecord, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{
			Message: fmt.Sprintf("failed to read file %s", path),
			Cause:   err,
		}
	}

	var record types.ProfileRecord
	if err := json.Unmarshal(content, &record); err != nil {
		return nil, &LoadError{
			Message: "failed to unmarshal JSON",
			Cause:   err,
		}
	}

	return &record, nil
}

// WriteJSON writes v as indented JSON, matching the layout of the scraped artifact
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Package schemas embeds the JSON Schemas for the persisted artifacts.
package schemas

import _ "embed"

// File names of the bundled schemas, relative to this directory
const (
	ProfileRecordFile   = "profile_record.schema.json"
	EnrichedProfileFile = "enriched_profile.schema.json"
)

// ProfileRecord is the schema of the scraped_data.json artifact
//
//go:embed profile_record.schema.json
var ProfileRecord string

// EnrichedProfile is the schema of the enriched artifact
//
//go:embed enriched_profile.schema.json
var EnrichedProfile string

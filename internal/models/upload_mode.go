// Package models contains domain types for the TalentLens console.
package models

// UploadMode is the file-selection strategy active in a workspace.
type UploadMode string

const (
	UploadModeSingle   UploadMode = "single"
	UploadModeMultiple UploadMode = "multiple"
	UploadModeArchive  UploadMode = "archive"
)

// Valid reports whether m is one of the known modes.
func (m UploadMode) Valid() bool {
	switch m {
	case UploadModeSingle, UploadModeMultiple, UploadModeArchive:
		return true
	}
	return false
}

// Provider identifies the backend AI service that performs the analysis.
// The console forwards it verbatim.
type Provider string

// DefaultProvider is used when a request names no provider.
const DefaultProvider Provider = "openai"

// ProviderInfo describes one entry of the provider catalog.
type ProviderInfo struct {
	ID    Provider `json:"id" yaml:"id"`
	Label string   `json:"label" yaml:"label"`
}

package models

// JobRequirement is the posting resumes are scored against.
// At most one requirement is active on the backend at a time.
type JobRequirement struct {
	ID              int64  `json:"id,omitempty"`
	JobTitle        string `json:"jobTitle"`
	Description     string `json:"description"`
	RequiredSkills  string `json:"requiredSkills"`
	PreferredSkills string `json:"preferredSkills,omitempty"`
	ExperienceLevel string `json:"experienceLevel,omitempty"`
	Active          bool   `json:"active"`
}

package upload

import (
	"path/filepath"
	"strings"

	"github.com/talentlens/console/internal/models"
)

// Rejection reasons reported by Policy.Validate.
const (
	ReasonSelectArchive  = "select an archive file"
	ReasonSelectDocument = "select a supported document"
	ReasonNoDocuments    = "no supported documents found"
	ReasonUnknownMode    = "unknown upload mode"
)

// Policy decides which files are accepted in each upload mode. A file is
// recognized by its declared media type or, failing that, its name suffix.
type Policy struct {
	documentTypes map[string]bool
	documentExts  map[string]bool
	archiveTypes  map[string]bool
	archiveExts   map[string]bool
}

// NewPolicy builds a policy from lower-case media types and dotted extensions.
func NewPolicy(documentTypes, documentExts, archiveTypes, archiveExts []string) *Policy {
	return &Policy{
		documentTypes: toSet(documentTypes),
		documentExts:  toSet(documentExts),
		archiveTypes:  toSet(archiveTypes),
		archiveExts:   toSet(archiveExts),
	}
}

// DefaultPolicy accepts PDF and Word documents, and zip archives.
func DefaultPolicy() *Policy {
	return NewPolicy(
		[]string{
			"application/pdf",
			"application/msword",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		},
		[]string{".pdf", ".doc", ".docx"},
		[]string{"application/zip", "application/x-zip-compressed"},
		[]string{".zip"},
	)
}

// IsDocument reports whether f is an accepted resume document.
func (p *Policy) IsDocument(f models.FileInfo) bool {
	return matches(f, p.documentTypes, p.documentExts)
}

// IsArchive reports whether f is an accepted compressed archive.
func (p *Policy) IsArchive(f models.FileInfo) bool {
	return matches(f, p.archiveTypes, p.archiveExts)
}

// Selection is the outcome of validating a file pick.
type Selection struct {
	Accepted []models.FileInfo `json:"accepted"`
	Dropped  []string          `json:"dropped,omitempty"` // names excluded by the type policy
	Reason   string            `json:"reason,omitempty"`
}

// Rejected reports whether nothing usable was picked.
func (s Selection) Rejected() bool {
	return s.Reason != ""
}

// Validate filters files for mode. Single and archive modes look at the first
// file only; multiple mode keeps every document in input order and drops the
// rest without failing, unless nothing is left.
func (p *Policy) Validate(mode models.UploadMode, files []models.FileInfo) Selection {
	switch mode {
	case models.UploadModeArchive:
		return p.validateOne(files, p.IsArchive, ReasonSelectArchive)
	case models.UploadModeSingle:
		return p.validateOne(files, p.IsDocument, ReasonSelectDocument)
	case models.UploadModeMultiple:
		sel := Selection{Accepted: make([]models.FileInfo, 0, len(files))}
		for _, f := range files {
			if p.IsDocument(f) {
				sel.Accepted = append(sel.Accepted, f)
			} else {
				sel.Dropped = append(sel.Dropped, f.Name)
			}
		}
		if len(sel.Accepted) == 0 {
			sel.Reason = ReasonNoDocuments
		}
		return sel
	default:
		return Selection{Reason: ReasonUnknownMode}
	}
}

func (p *Policy) validateOne(files []models.FileInfo, accept func(models.FileInfo) bool, reason string) Selection {
	if len(files) == 0 {
		return Selection{Reason: reason}
	}
	// only the first pick counts; the rest are reported as dropped
	var extra []string
	for _, f := range files[1:] {
		extra = append(extra, f.Name)
	}
	if !accept(files[0]) {
		return Selection{Dropped: append([]string{files[0].Name}, extra...), Reason: reason}
	}
	return Selection{Accepted: []models.FileInfo{files[0]}, Dropped: extra}
}

func matches(f models.FileInfo, types, exts map[string]bool) bool {
	if f.ContentType != "" && types[strings.ToLower(f.ContentType)] {
		return true
	}
	return exts[strings.ToLower(filepath.Ext(f.Name))]
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[strings.ToLower(strings.TrimSpace(v))] = true
	}
	return set
}

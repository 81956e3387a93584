package upload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/talentlens/console/internal/models"
)

func file(name, contentType string) models.FileInfo {
	return models.FileInfo{ID: name, Name: name, ContentType: contentType}
}

func TestPolicy_IsDocumentAndArchive(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		name     string
		file     models.FileInfo
		document bool
		archive  bool
	}{
		{"pdf by type", file("cv", "application/pdf"), true, false},
		{"doc by type", file("cv", "application/msword"), true, false},
		{"docx by type", file("cv", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"), true, false},
		{"pdf by suffix", file("resume.pdf", ""), true, false},
		{"upper-case suffix", file("RESUME.DOCX", ""), true, false},
		{"suffix wins over misdetected type", file("resume.doc", "text/plain"), true, false},
		{"zip by type", file("bundle", "application/zip"), false, true},
		{"windows zip type", file("bundle", "application/x-zip-compressed"), false, true},
		{"zip by suffix", file("bundle.ZIP", ""), false, true},
		{"executable", file("b.exe", "application/x-msdownload"), false, false},
		{"plain text", file("notes.txt", "text/plain"), false, false},
		{"no suffix no type", file("README", ""), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.document, p.IsDocument(tt.file))
			assert.Equal(t, tt.archive, p.IsArchive(tt.file))
		})
	}
}

func TestPolicy_ValidateSingle(t *testing.T) {
	p := DefaultPolicy()

	sel := p.Validate(models.UploadModeSingle, []models.FileInfo{file("resume.pdf", "application/pdf")})
	assert.False(t, sel.Rejected())
	assert.Equal(t, []models.FileInfo{file("resume.pdf", "application/pdf")}, sel.Accepted)

	sel = p.Validate(models.UploadModeSingle, []models.FileInfo{file("bundle.zip", "application/zip")})
	assert.True(t, sel.Rejected())
	assert.Equal(t, ReasonSelectDocument, sel.Reason)
	assert.Empty(t, sel.Accepted)
	assert.Equal(t, []string{"bundle.zip"}, sel.Dropped)

	sel = p.Validate(models.UploadModeSingle, nil)
	assert.Equal(t, ReasonSelectDocument, sel.Reason)

	// only the first pick counts
	sel = p.Validate(models.UploadModeSingle, []models.FileInfo{file("a.pdf", ""), file("b.pdf", "")})
	assert.Equal(t, []models.FileInfo{file("a.pdf", "")}, sel.Accepted)
	assert.Equal(t, []string{"b.pdf"}, sel.Dropped)
	assert.False(t, sel.Rejected())

	sel = p.Validate(models.UploadModeSingle, []models.FileInfo{file("a.exe", ""), file("b.pdf", ""), file("c.doc", "")})
	assert.True(t, sel.Rejected())
	assert.Equal(t, []string{"a.exe", "b.pdf", "c.doc"}, sel.Dropped)
}

func TestPolicy_ValidateArchive(t *testing.T) {
	p := DefaultPolicy()

	sel := p.Validate(models.UploadModeArchive, []models.FileInfo{file("bundle.zip", "")})
	assert.False(t, sel.Rejected())
	assert.Len(t, sel.Accepted, 1)

	sel = p.Validate(models.UploadModeArchive, []models.FileInfo{file("resume.pdf", "application/pdf")})
	assert.Equal(t, ReasonSelectArchive, sel.Reason)
	assert.Empty(t, sel.Accepted)

	sel = p.Validate(models.UploadModeArchive, []models.FileInfo{})
	assert.Equal(t, ReasonSelectArchive, sel.Reason)

	sel = p.Validate(models.UploadModeArchive, []models.FileInfo{file("a.zip", ""), file("b.zip", "")})
	assert.Equal(t, []models.FileInfo{file("a.zip", "")}, sel.Accepted)
	assert.Equal(t, []string{"b.zip"}, sel.Dropped)
}

func TestPolicy_ValidateMultiple(t *testing.T) {
	p := DefaultPolicy()

	input := []models.FileInfo{
		file("a.pdf", ""),
		file("b.exe", ""),
		file("c.docx", ""),
		file("d.zip", "application/zip"),
		file("e", "application/msword"),
	}

	sel := p.Validate(models.UploadModeMultiple, input)
	assert.False(t, sel.Rejected())
	assert.Equal(t, []models.FileInfo{input[0], input[2], input[4]}, sel.Accepted)
	assert.Equal(t, []string{"b.exe", "d.zip"}, sel.Dropped)

	again := p.Validate(models.UploadModeMultiple, sel.Accepted)
	assert.Equal(t, sel.Accepted, again.Accepted)
	assert.Empty(t, again.Dropped)

	sel = p.Validate(models.UploadModeMultiple, []models.FileInfo{file("b.exe", ""), file("notes.txt", "")})
	assert.True(t, sel.Rejected())
	assert.Equal(t, ReasonNoDocuments, sel.Reason)
	assert.Empty(t, sel.Accepted)

	sel = p.Validate(models.UploadModeMultiple, nil)
	assert.Equal(t, ReasonNoDocuments, sel.Reason)
}

func TestPolicy_ValidateUnknownMode(t *testing.T) {
	sel := DefaultPolicy().Validate("folder", []models.FileInfo{file("a.pdf", "")})
	assert.Equal(t, ReasonUnknownMode, sel.Reason)
}

func TestPolicy_Custom(t *testing.T) {
	p := NewPolicy([]string{"text/markdown"}, []string{".md"}, []string{"application/x-tar"}, []string{" .TAR "})

	assert.True(t, p.IsDocument(file("cv.md", "")))
	assert.False(t, p.IsDocument(file("cv.pdf", "application/pdf")))
	assert.True(t, p.IsArchive(file("bundle.tar", "")))
	assert.False(t, p.IsArchive(file("bundle.zip", "application/zip")))
}

package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/talentlens/console/internal/models"
)

func providerQuery(provider models.Provider) url.Values {
	q := url.Values{}
	if provider != "" {
		q.Set("aiProvider", string(provider))
	}
	return q
}

// AnalyzeOne submits one document and returns its analysis.
func (c *Client) AnalyzeOne(ctx context.Context, doc Upload, provider models.Provider) (*models.Resume, error) {
	var out models.Resume
	if err := c.doMultipart(ctx, "/resumes/upload", providerQuery(provider), "file", []Upload{doc}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AnalyzeBatch submits several documents in one request.
func (c *Client) AnalyzeBatch(ctx context.Context, docs []Upload, provider models.Provider) ([]models.Resume, error) {
	var out []models.Resume
	if err := c.doMultipart(ctx, "/resumes/upload-multiple", providerQuery(provider), "files", docs, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AnalyzeArchive submits a zip archive; the backend analyzes every document inside it.
func (c *Client) AnalyzeArchive(ctx context.Context, archive Upload, provider models.Provider) ([]models.Resume, error) {
	var out []models.Resume
	if err := c.doMultipart(ctx, "/resumes/upload-zip", providerQuery(provider), "file", []Upload{archive}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ImportFolder asks the backend to pull documents from an external folder.
// An empty folderID selects the backend's default location.
func (c *Client) ImportFolder(ctx context.Context, folderID string, provider models.Provider) ([]models.Resume, error) {
	q := providerQuery(provider)
	q.Set("folderId", folderID)

	var out []models.Resume
	if err := c.doJSON(ctx, http.MethodPost, "/resumes/import-from-drive", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListResumes returns every analyzed resume, ranked by match score.
func (c *Client) ListResumes(ctx context.Context) ([]models.Resume, error) {
	var out []models.Resume
	if err := c.doJSON(ctx, http.MethodGet, "/resumes", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetResume returns one resume.
func (c *Client) GetResume(ctx context.Context, id int64) (*models.Resume, error) {
	var out models.Resume
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/resumes/%d", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteResume removes a resume from the backend.
func (c *Client) DeleteResume(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/resumes/%d", id), nil, nil, nil)
}

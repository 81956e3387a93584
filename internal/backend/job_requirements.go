package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/talentlens/console/internal/models"
)

// CreateJobRequirement stores a new job requirement.
func (c *Client) CreateJobRequirement(ctx context.Context, req models.JobRequirement) (*models.JobRequirement, error) {
	var out models.JobRequirement
	if err := c.doJSON(ctx, http.MethodPost, "/job-requirements", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ActiveJobRequirement returns the requirement resumes are currently scored
// against. A backend without one answers 404; see IsNotFound.
func (c *Client) ActiveJobRequirement(ctx context.Context) (*models.JobRequirement, error) {
	var out models.JobRequirement
	if err := c.doJSON(ctx, http.MethodGet, "/job-requirements/active", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListJobRequirements returns all job requirements.
func (c *Client) ListJobRequirements(ctx context.Context) ([]models.JobRequirement, error) {
	var out []models.JobRequirement
	if err := c.doJSON(ctx, http.MethodGet, "/job-requirements", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetJobRequirement returns one job requirement.
func (c *Client) GetJobRequirement(ctx context.Context, id int64) (*models.JobRequirement, error) {
	var out models.JobRequirement
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/job-requirements/%d", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateJobRequirement replaces a job requirement.
func (c *Client) UpdateJobRequirement(ctx context.Context, id int64, req models.JobRequirement) (*models.JobRequirement, error) {
	var out models.JobRequirement
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/job-requirements/%d", id), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ActivateJobRequirement makes id the active requirement.
func (c *Client) ActivateJobRequirement(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/job-requirements/%d/activate", id), nil, nil, nil)
}

// DeleteJobRequirement removes a job requirement.
func (c *Client) DeleteJobRequirement(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/job-requirements/%d", id), nil, nil, nil)
}

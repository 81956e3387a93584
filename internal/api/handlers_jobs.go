// handlers_jobs.go - Job requirement proxy handlers
package api

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/labstack/echo/v4"
	"github.com/talentlens/console/internal/models"
)

// Experience levels offered by the console
var experienceLevels = []interface{}{"Entry Level", "Mid Level", "Senior", "Lead"}

// JobRequirementHandlerImpl implements the JobRequirementHandler interface
type JobRequirementHandlerImpl struct {
	backend JobRequirementBackend
}

// NewJobRequirementHandler creates a new job requirement handler instance
func NewJobRequirementHandler(backend JobRequirementBackend) JobRequirementHandler {
	return &JobRequirementHandlerImpl{backend: backend}
}

// HandleCreateJobRequirement creates a requirement on the backend
func (h *JobRequirementHandlerImpl) HandleCreateJobRequirement(c echo.Context) error {
	var req jobRequirementRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if err := req.validate(); err != nil {
		return err
	}

	created, err := h.backend.CreateJobRequirement(c.Request().Context(), req.model())
	if err != nil {
		return backendError(err, "job requirement", "")
	}
	return c.JSON(http.StatusCreated, created)
}

// HandleGetActiveJobRequirement returns the requirement resumes are scored against
func (h *JobRequirementHandlerImpl) HandleGetActiveJobRequirement(c echo.Context) error {
	active, err := h.backend.ActiveJobRequirement(c.Request().Context())
	if err != nil {
		return backendError(err, "job requirement", "active")
	}
	return c.JSON(http.StatusOK, active)
}

// HandleListJobRequirements returns every requirement
func (h *JobRequirementHandlerImpl) HandleListJobRequirements(c echo.Context) error {
	reqs, err := h.backend.ListJobRequirements(c.Request().Context())
	if err != nil {
		return backendError(err, "job requirements", "")
	}
	return c.JSON(http.StatusOK, reqs)
}

// HandleGetJobRequirement returns a single requirement
func (h *JobRequirementHandlerImpl) HandleGetJobRequirement(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	req, err := h.backend.GetJobRequirement(c.Request().Context(), id)
	if err != nil {
		return backendError(err, "job requirement", c.Param("id"))
	}
	return c.JSON(http.StatusOK, req)
}

// HandleUpdateJobRequirement replaces a requirement
func (h *JobRequirementHandlerImpl) HandleUpdateJobRequirement(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req jobRequirementRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if err := req.validate(); err != nil {
		return err
	}

	updated, err := h.backend.UpdateJobRequirement(c.Request().Context(), id, req.model())
	if err != nil {
		return backendError(err, "job requirement", c.Param("id"))
	}
	return c.JSON(http.StatusOK, updated)
}

// HandleActivateJobRequirement makes a requirement the active one
func (h *JobRequirementHandlerImpl) HandleActivateJobRequirement(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := h.backend.ActivateJobRequirement(c.Request().Context(), id); err != nil {
		return backendError(err, "job requirement", c.Param("id"))
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleDeleteJobRequirement removes a requirement
func (h *JobRequirementHandlerImpl) HandleDeleteJobRequirement(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := h.backend.DeleteJobRequirement(c.Request().Context(), id); err != nil {
		return backendError(err, "job requirement", c.Param("id"))
	}
	return c.NoContent(http.StatusNoContent)
}

// Request types

// Column sizes of the backend's job requirement table
const (
	maxDescriptionLength     = 10000
	maxRequiredSkillsLength  = 5000
	maxPreferredSkillsLength = 2000
)

type jobRequirementRequest struct {
	JobTitle        string `json:"jobTitle"`
	Description     string `json:"description"`
	RequiredSkills  string `json:"requiredSkills"`
	PreferredSkills string `json:"preferredSkills"`
	ExperienceLevel string `json:"experienceLevel"`
}

func (r *jobRequirementRequest) validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.JobTitle, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.Description, validation.Required, validation.Length(1, maxDescriptionLength)),
		validation.Field(&r.RequiredSkills, validation.Required, validation.Length(1, maxRequiredSkillsLength)),
		validation.Field(&r.PreferredSkills, validation.Length(0, maxPreferredSkillsLength)),
		validation.Field(&r.ExperienceLevel, validation.Required, validation.In(experienceLevels...)),
	)
	if err != nil {
		return NewRequestValidationError(err)
	}
	return nil
}

func (r *jobRequirementRequest) model() models.JobRequirement {
	return models.JobRequirement{
		JobTitle:        r.JobTitle,
		Description:     r.Description,
		RequiredSkills:  r.RequiredSkills,
		PreferredSkills: r.PreferredSkills,
		ExperienceLevel: r.ExperienceLevel,
	}
}

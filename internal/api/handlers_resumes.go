// handlers_resumes.go - Ranked resume list proxy handlers
package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"
)

// MIMEMsgpack is the media type of msgpack-encoded responses
const MIMEMsgpack = "application/msgpack"

// ResumeHandlerImpl implements the ResumeHandler interface
type ResumeHandlerImpl struct {
	backend ResumeBackend
}

// NewResumeHandler creates a new resume handler instance
func NewResumeHandler(backend ResumeBackend) ResumeHandler {
	return &ResumeHandlerImpl{backend: backend}
}

// HandleListResumes returns the ranked resume list. Clients that accept
// msgpack get the compact encoding.
func (h *ResumeHandlerImpl) HandleListResumes(c echo.Context) error {
	resumes, err := h.backend.ListResumes(c.Request().Context())
	if err != nil {
		return backendError(err, "resumes", "")
	}

	if wantsMsgpack(c.Request()) {
		data, err := msgpack.Marshal(resumes)
		if err != nil {
			return NewInternalError("failed to encode msgpack", err)
		}
		return c.Blob(http.StatusOK, MIMEMsgpack, data)
	}
	return c.JSON(http.StatusOK, resumes)
}

// HandleGetResume returns a single resume
func (h *ResumeHandlerImpl) HandleGetResume(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	resume, err := h.backend.GetResume(c.Request().Context(), id)
	if err != nil {
		return backendError(err, "resume", c.Param("id"))
	}
	return c.JSON(http.StatusOK, resume)
}

// HandleDeleteResume removes a resume on the backend
func (h *ResumeHandlerImpl) HandleDeleteResume(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := h.backend.DeleteResume(c.Request().Context(), id); err != nil {
		return backendError(err, "resume", c.Param("id"))
	}
	return c.NoContent(http.StatusNoContent)
}

// Helper functions

func pathID(c echo.Context) (int64, error) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, NewBadRequestError("invalid id: "+raw, err)
	}
	return id, nil
}

func wantsMsgpack(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get(echo.HeaderAccept), ",") {
		mediaType := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if strings.EqualFold(mediaType, MIMEMsgpack) || strings.EqualFold(mediaType, "application/x-msgpack") {
			return true
		}
	}
	return false
}

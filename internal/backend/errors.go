package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// maxReasonLength bounds how much of a plain-text error body is surfaced.
const maxReasonLength = 512

// RemoteError is a non-success response from the TalentLens API.
type RemoteError struct {
	StatusCode int
	Reason     string
}

// Error implements the error interface
func (e *RemoteError) Error() string {
	return e.Reason
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var remoteErr *RemoteError
	return errors.As(err, &remoteErr) && remoteErr.StatusCode == http.StatusNotFound
}

// Reason extracts the user-facing failure text: the backend's structured
// error when there is one, otherwise the transport error message.
func Reason(err error) string {
	if err == nil {
		return ""
	}
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		return remoteErr.Reason
	}
	return err.Error()
}

// newRemoteError builds a RemoteError from a response status and body.
func newRemoteError(status int, body []byte) *RemoteError {
	return &RemoteError{
		StatusCode: status,
		Reason:     reasonFromBody(status, body),
	}
}

// reasonFromBody understands the shapes the backend answers with: a JSON
// object carrying "error" or "message", a JSON string, or plain text.
func reasonFromBody(status int, body []byte) string {
	text := strings.TrimSpace(string(body))
	if text == "" {
		if statusText := http.StatusText(status); statusText != "" {
			return fmt.Sprintf("%d %s", status, statusText)
		}
		return fmt.Sprintf("request failed with status %d", status)
	}

	switch text[0] {
	case '{':
		var payload struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(body, &payload); err == nil {
			if payload.Error != "" {
				return payload.Error
			}
			if payload.Message != "" {
				return payload.Message
			}
		}
	case '"':
		var s string
		if err := json.Unmarshal(body, &s); err == nil && s != "" {
			return s
		}
	}

	if len(text) > maxReasonLength {
		text = text[:maxReasonLength] + "..."
	}
	return text
}

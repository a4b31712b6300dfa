package painradar

import (
	"errors"
	"fmt"
	"net/http"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
)

const (
	CodeRedditAPI       = "REDDIT_API_ERROR"
	CodeSource          = "SOURCE_ERROR"
	CodeAIAnalysis      = "AI_ANALYSIS_ERROR"
	CodeWorkspaceAccess = "WORKSPACE_ACCESS_ERROR"
	CodeValidation      = "VALIDATION_ERROR"
)

// Error is a Pain Radar failure with a machine code and the HTTP status it maps to.
type Error struct {
	Code      string
	Status    int
	Message   string
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// SourceError wraps a failed call to an external platform. Reddit and web
// search failures keep the historical REDDIT_API_ERROR code.
func SourceError(p dom.Platform, retryable bool, err error) *Error {
	code := CodeSource
	if p == dom.PlatformReddit || p == dom.PlatformWeb {
		code = CodeRedditAPI
	}
	return &Error{
		Code:      code,
		Status:    http.StatusServiceUnavailable,
		Message:   fmt.Sprintf("%s search failed", p),
		Retryable: retryable,
		Err:       err,
	}
}

func AIError(err error) *Error {
	return &Error{Code: CodeAIAnalysis, Status: http.StatusInternalServerError, Message: "AI analysis failed", Err: err}
}

func AccessError() *Error {
	return &Error{Code: CodeWorkspaceAccess, Status: http.StatusForbidden, Message: "Access to workspace denied"}
}

func ValidationError(msg string) *Error {
	return &Error{Code: CodeValidation, Status: http.StatusBadRequest, Message: msg}
}

// IsRetryable reports whether err may succeed on another attempt. Errors
// that are not *Error are treated as transient.
func IsRetryable(err error) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return true
}

// intake-service/internal/utils/errors.go
package utils

import (
	"errors"
	"net/http"
)

// Domain-level errors used by the service layer to provide
// fine-grained failure reasons.
var (
	ErrNoToken         = errors.New("no_token")
	ErrInvalidSession  = errors.New("invalid_session")
	ErrSessionNotFound = errors.New("session_not_found")
	ErrStageBusy       = errors.New("stage_busy")
	ErrWrongStage      = errors.New("wrong_stage")
	ErrNoInvitees      = errors.New("no_invitees")
	ErrNoSlots         = errors.New("no_slots")
	ErrDraftIndex      = errors.New("draft_index_out_of_range")

	ErrFirstDraftRequired = errors.New("first_draft_required")
	ErrTooManyInvitees    = errors.New("too_many_invitees")

	ErrRateLimitExceeded      = errors.New("rate_limit_exceeded")
	ErrExternalServiceFailure = errors.New("external_service_failure")
)

// AppError for structured error handling from services to controllers.
type AppError struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// HandleAppError centralizes responding to AppErrors and the sentinel
// errors of the form flow.
func HandleAppError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		RespondErrorWithCode(w, appErr.StatusCode, appErr.Code, appErr.Message, nil, appErr.Err)
		return
	}

	switch {
	case errors.Is(err, ErrNoToken):
		RespondErrorWithCode(w, http.StatusBadRequest, ErrCodeNoToken, "No form token provided. Please check the URL.", nil, err)
	case errors.Is(err, ErrInvalidSession):
		RespondErrorWithCode(w, http.StatusNotFound, ErrCodeInvalidToken, "Invalid form token or no data received.", nil, err)
	case errors.Is(err, ErrSessionNotFound):
		RespondErrorWithCode(w, http.StatusNotFound, ErrCodeNotFound, "Form session not found. Please reload the page.", nil, err)
	case errors.Is(err, ErrStageBusy):
		RespondErrorWithCode(w, http.StatusConflict, ErrCodeConflict, "A submission for this step is already in progress", nil, err)
	case errors.Is(err, ErrWrongStage):
		RespondErrorWithCode(w, http.StatusConflict, ErrCodeWrongStage, "This step is not available right now", nil, err)
	case errors.Is(err, ErrNoInvitees), errors.Is(err, ErrNoSlots), errors.Is(err, ErrDraftIndex):
		RespondErrorWithCode(w, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil, err)
	case errors.Is(err, ErrFirstDraftRequired):
		RespondErrorWithCode(w, http.StatusBadRequest, ErrCodeValidation, "The first user needs both a name and an email", nil, err)
	case errors.Is(err, ErrTooManyInvitees):
		RespondErrorWithCode(w, http.StatusBadRequest, ErrCodeValidation, "More users were sent than there are available slots", nil, err)
	case errors.Is(err, ErrRateLimitExceeded):
		RespondErrorWithCode(w, http.StatusTooManyRequests, ErrCodeRateLimitExceeded, "Too many requests", nil, err)
	default:
		// Fallback for unexpected error types
		RespondErrorWithCode(w, http.StatusInternalServerError, ErrCodeInternal, "An unexpected error occurred", nil, err)
	}
}

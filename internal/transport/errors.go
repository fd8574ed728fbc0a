package transport

import (
	"errors"
	"net/http"

	"github.com/rpggio/costadvisor/internal/domain/account"
	"github.com/rpggio/costadvisor/internal/domain/prediction"
	"github.com/rpggio/costadvisor/internal/domain/project"
	"github.com/rpggio/costadvisor/internal/inference"
)

// Kind is a failure category shared by every surface.
type Kind string

const (
	KindAuth        Kind = "AUTH_FAILURE"
	KindDuplicate   Kind = "DUPLICATE_ACCOUNT"
	KindPermission  Kind = "PERMISSION_DENIED"
	KindNotFound    Kind = "NOT_FOUND"
	KindUnavailable Kind = "BACKEND_UNAVAILABLE"
	KindValidation  Kind = "VALIDATION_FAILURE"
	KindInternal    Kind = "INTERNAL"
)

// APIError is the JSON error body.
type APIError struct {
	Code    Kind   `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return string(e.Code) + ": " + e.Message
}

// Classify maps domain errors onto failure kinds.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, account.ErrDuplicateAccount):
		return KindDuplicate
	case errors.Is(err, account.ErrAuthFailure), errors.Is(err, account.ErrNoSession), errors.Is(err, ErrUnauthorized):
		return KindAuth
	case errors.Is(err, project.ErrPermissionDenied):
		return KindPermission
	case errors.Is(err, project.ErrProjectNotFound), errors.Is(err, account.ErrProfileNotFound):
		return KindNotFound
	case errors.Is(err, inference.ErrBackendUnavailable):
		return KindUnavailable
	case errors.Is(err, account.ErrInvalidInput),
		errors.Is(err, account.ErrPasswordMismatch),
		errors.Is(err, project.ErrInvalidInput),
		errors.Is(err, prediction.ErrInvalidInput),
		errors.Is(err, prediction.ErrUnknownTerrain),
		errors.Is(err, ErrBadRequest):
		return KindValidation
	default:
		return KindInternal
	}
}

// MapError converts an error into its JSON body and HTTP status.
func MapError(err error) (*APIError, int) {
	kind := Classify(err)
	switch kind {
	case KindDuplicate:
		return &APIError{Code: kind, Message: "an account with this email already exists"}, http.StatusConflict
	case KindAuth:
		return &APIError{Code: kind, Message: "invalid credentials or session"}, http.StatusUnauthorized
	case KindPermission:
		return &APIError{Code: kind, Message: project.ErrPermissionDenied.Error()}, http.StatusForbidden
	case KindNotFound:
		return &APIError{Code: kind, Message: "not found"}, http.StatusNotFound
	case KindUnavailable:
		return &APIError{Code: kind, Message: "AI service temporarily unavailable. Please try again later."}, http.StatusServiceUnavailable
	case KindValidation:
		return &APIError{Code: kind, Message: err.Error()}, http.StatusBadRequest
	default:
		return &APIError{Code: KindInternal, Message: "internal error"}, http.StatusInternalServerError
	}
}

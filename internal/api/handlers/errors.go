package handlers

import (
	"net/http"

	"example.com/backstage/services/picking/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ErrorResponse defines the structure of an error response
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Error represents an API error
type Error struct {
	Message    string
	StatusCode int
	Code       string
}

// Error implements the error interface
func (e *Error) Error() string {
	return e.Message
}

// Common API errors
var (
	ErrInvalidRequest = &Error{Message: "Invalid request", StatusCode: http.StatusBadRequest, Code: "INVALID_REQUEST"}
	ErrUnauthorized   = &Error{Message: "Missing user identity", StatusCode: http.StatusUnauthorized, Code: "UNAUTHORIZED"}
	ErrForbidden      = &Error{Message: "Admin role required", StatusCode: http.StatusForbidden, Code: "FORBIDDEN"}
	ErrInternalServer = &Error{Message: "Internal server error", StatusCode: http.StatusInternalServerError, Code: "INTERNAL_ERROR"}
)

var kindStatus = map[domain.Kind]int{
	domain.KindConflict:     http.StatusConflict,
	domain.KindInvalidState: http.StatusUnprocessableEntity,
	domain.KindNotFound:     http.StatusNotFound,
	domain.KindValidation:   http.StatusBadRequest,
}

// FromError converts a service error into an API error
func FromError(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var domainErr *domain.Error
	if errors.As(err, &domainErr) {
		if status, ok := kindStatus[domainErr.Kind]; ok {
			return &Error{Message: domainErr.Message, StatusCode: status, Code: string(domainErr.Kind)}
		}
	}
	for kind, status := range kindStatus {
		if errors.Is(err, &domain.Error{Kind: kind}) {
			return &Error{Message: err.Error(), StatusCode: status, Code: string(kind)}
		}
	}
	return nil
}

// RespondError writes err as a JSON error response and aborts the request
func RespondError(c *gin.Context, err error) {
	apiErr := FromError(err)
	if apiErr == nil {
		log.Error().
			Err(err).
			Str("path", c.FullPath()).
			Str("request_id", c.GetString(RequestIDKey)).
			Msg("Unhandled error")
		apiErr = ErrInternalServer
	}
	c.AbortWithStatusJSON(apiErr.StatusCode, ErrorResponse{Message: apiErr.Message, Code: apiErr.Code})
}

// NewValidationError creates a new validation error with a custom message
func NewValidationError(message string) *Error {
	return &Error{
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Code:       string(domain.KindValidation),
	}
}

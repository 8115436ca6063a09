package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	emissiondomain "github.com/sandistd/carbon-footprint-app/internal/emission/domain"
	factordomain "github.com/sandistd/carbon-footprint-app/internal/factor/domain"
	reportdomain "github.com/sandistd/carbon-footprint-app/internal/report/domain"
	stakeholderdomain "github.com/sandistd/carbon-footprint-app/internal/stakeholder/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := err.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: conflictMessage(err),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// classifyErrorForLog feeds the request logger the same type and code the
// client receives.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	if len(payload.Errors) > 0 {
		return payload.Type, payload.Errors[0].Code
	}
	if status == http.StatusInternalServerError {
		return payload.Type, "internal_error"
	}
	return payload.Type, payload.Type
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case isFactorValidationError(err),
		isStakeholderValidationError(err),
		isEmissionValidationError(err),
		isReportValidationError(err):
		return true
	default:
		return false
	}
}

func isFactorValidationError(err error) bool {
	switch err {
	case factordomain.ErrInvalidID,
		factordomain.ErrInvalidName,
		factordomain.ErrInvalidScope,
		factordomain.ErrInvalidFactor,
		factordomain.ErrInvalidUnit:
		return true
	default:
		return false
	}
}

func isStakeholderValidationError(err error) bool {
	switch err {
	case stakeholderdomain.ErrInvalidID,
		stakeholderdomain.ErrInvalidName,
		stakeholderdomain.ErrInvalidEmail:
		return true
	default:
		return false
	}
}

func isEmissionValidationError(err error) bool {
	switch err {
	case emissiondomain.ErrInvalidID,
		emissiondomain.ErrInvalidScope,
		emissiondomain.ErrInvalidEmissionFactor,
		emissiondomain.ErrFactorScopeMismatch,
		emissiondomain.ErrInvalidStakeholder,
		emissiondomain.ErrInvalidMeasurementDate,
		emissiondomain.ErrInvalidActivityValue,
		emissiondomain.ErrInvalidActivityUnit,
		emissiondomain.ErrInvalidRecValue,
		emissiondomain.ErrInvalidEmissionResult,
		emissiondomain.ErrInvalidLocation,
		emissiondomain.ErrInvalidCategory,
		emissiondomain.ErrInvalidPageToken:
		return true
	default:
		return false
	}
}

func isReportValidationError(err error) bool {
	switch err {
	case reportdomain.ErrInvalidScope,
		reportdomain.ErrInvalidYear,
		reportdomain.ErrInvalidDateRange:
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, factordomain.ErrFactorInUse),
		errors.Is(err, stakeholderdomain.ErrStakeholderInUse),
		errors.Is(err, stakeholderdomain.ErrEmailTaken):
		return true
	default:
		return false
	}
}

func conflictMessage(err error) string {
	switch {
	case errors.Is(err, factordomain.ErrFactorInUse):
		return "emission factor is referenced by emission records"
	case errors.Is(err, stakeholderdomain.ErrStakeholderInUse):
		return "stakeholder is referenced by emission records"
	case errors.Is(err, stakeholderdomain.ErrEmailTaken):
		return "email is already registered"
	default:
		return "conflict"
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, factordomain.ErrNotFound),
		errors.Is(err, stakeholderdomain.ErrNotFound),
		errors.Is(err, emissiondomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}

package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/schakibb/Manehej-back/src/logging"
	"github.com/schakibb/Manehej-back/src/middleware"
	"github.com/schakibb/Manehej-back/src/services"
)

// Response is the JSON envelope for every API reply
type Response struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Data    any          `json:"data,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
	Detail  string       `json:"detail,omitempty"`
}

// FieldError describes one failed binding rule
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// RespondSuccess writes a success envelope
func RespondSuccess(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Response{Success: true, Message: message, Data: data})
}

// RespondError converts a workflow error into its HTTP status and client message.
// Unexpected errors become 500; their detail is only exposed when showDetail is set.
func RespondError(c *gin.Context, err error, showDetail bool) {
	status, fallback := classify(err)
	resp := Response{Success: false, Message: services.PublicMessage(err, fallback)}

	if status == http.StatusInternalServerError {
		resp.Message = fallback
		log := logging.ComponentLogger("http", middleware.GetRequestID(c))
		log.Error().
			Err(err).
			Str("path", c.Request.URL.Path).
			Msg("unexpected error")
		if showDetail {
			resp.Detail = err.Error()
		}
	}

	c.AbortWithStatusJSON(status, resp)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrAuthenticationFailed):
		return http.StatusUnauthorized, "Authentication failed"
	case errors.Is(err, services.ErrAuthorizationFailed):
		return http.StatusForbidden, "Insufficient permissions"
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, "Resource not found"
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict, "Resource already exists"
	case errors.Is(err, services.ErrValidationFailed):
		return http.StatusBadRequest, "Validation failed"
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}

// RespondBindingError reports a malformed request body with per-field messages
func RespondBindingError(c *gin.Context, err error) {
	resp := Response{Success: false, Message: "Validation failed"}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			resp.Errors = append(resp.Errors, FieldError{
				Field:   fieldName(fe),
				Message: ruleMessage(fe),
			})
		}
	} else {
		resp.Message = "Invalid request body"
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, resp)
}

func fieldName(fe validator.FieldError) string {
	if name := fe.Field(); name != "" {
		return toSnake(name)
	}
	return fe.StructField()
}

func ruleMessage(fe validator.FieldError) string {
	field := toSnake(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return "Please provide a valid email address"
	case "min":
		return field + " must be at least " + fe.Param() + " characters"
	case "max":
		return field + " must be at most " + fe.Param() + " characters"
	default:
		return field + " is invalid"
	}
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// NotFound answers unmatched routes
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, Response{
		Success: false,
		Message: "Route " + c.Request.URL.Path + " not found",
	})
}

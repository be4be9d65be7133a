package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Error string `json:"error"` // human readable message
	Code  string `json:"code"`  // stable code, see codes.go
}

// ValidationErrorResponse lists every failed field rule.
type ValidationErrorResponse struct {
	Errors []string `json:"errors"`
	Code   string   `json:"code"`
}

// RespondWithError writes an error body with the given status.
func RespondWithError(c *gin.Context, statusCode int, errorCode string, message string) {
	c.JSON(statusCode, ErrorResponse{
		Error: message,
		Code:  errorCode,
	})
}

// AbortWithError writes an error body and stops the handler chain.
func AbortWithError(c *gin.Context, statusCode int, errorCode string, message string) {
	c.AbortWithStatusJSON(statusCode, ErrorResponse{
		Error: message,
		Code:  errorCode,
	})
}

func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Access token required"
	}
	AbortWithError(c, http.StatusUnauthorized, AuthTokenMissing, message)
}

func Forbidden(c *gin.Context, errorCode string, message string) {
	if errorCode == "" {
		errorCode = AuthzForbidden
	}
	if message == "" {
		message = "Access denied"
	}
	AbortWithError(c, http.StatusForbidden, errorCode, message)
}

func BadRequest(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusBadRequest, errorCode, message)
}

func NotFound(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusNotFound, errorCode, message)
}

func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "Internal server error"
	}
	RespondWithError(c, http.StatusInternalServerError, InternalServerError, message)
}

// RespondWithValidationErrors answers 400 with one message per failed rule.
func RespondWithValidationErrors(c *gin.Context, messages []string) {
	c.JSON(http.StatusBadRequest, ValidationErrorResponse{
		Errors: messages,
		Code:   ValidationInvalidInput,
	})
}

// ParseAndRespond maps err through ParseError and answers with status.
func ParseAndRespond(c *gin.Context, statusCode int, err error, context string) {
	info := ParseError(err, context)
	RespondWithError(c, statusCode, info.Code, info.Message)
}

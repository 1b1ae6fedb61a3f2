package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/slotbook/service-booking/pkg/domain"
)

// Envelope is the JSON body written for every API response.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody describes a failed request.
type ErrorBody struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Details []domain.FieldError `json:"details,omitempty"`
}

// Success writes a 200 response with data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// SuccessWithMessage writes a 200 response with data and a human-readable message.
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Message: message})
}

// Created writes a 201 response with data and a human-readable message.
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data, Message: message})
}

// BadRequest writes a 400 validation failure.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Envelope{
		Error: &ErrorBody{Code: string(domain.CodeValidation), Message: message},
	})
}

// Error maps err to a status code and writes it. Errors that are not
// DomainErrors, and internal DomainErrors, are reported without their cause.
func Error(c *gin.Context, err error) {
	_ = c.Error(err)

	de, ok := domain.AsDomainError(err)
	if !ok || de.Code == domain.CodeInternal {
		c.JSON(http.StatusInternalServerError, Envelope{
			Error: &ErrorBody{
				Code:    string(domain.CodeInternal),
				Message: "an unexpected error occurred",
			},
		})
		return
	}

	c.JSON(StatusFor(de.Code), Envelope{
		Error: &ErrorBody{
			Code:    string(de.Code),
			Message: de.Message,
			Details: de.Details,
		},
	})
}

// StatusFor returns the HTTP status for an error code. Conflicts are reported
// as 400 because they are corrected by the caller choosing another slot.
func StatusFor(code domain.ErrorCode) int {
	switch code {
	case domain.CodeValidation, domain.CodeConflict:
		return http.StatusBadRequest
	case domain.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

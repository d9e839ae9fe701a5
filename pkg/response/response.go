// Package response defines the JSON bodies returned by the API. Errors are
// reported as a single {"error": "..."} object.
package response

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var EmptyRequestBodyResponse = ErrorResponse{
	Error: "request body is empty",
}

var BadRequestResponse = ErrorResponse{
	Error: "invalid request body",
}

var ResourceNotFoundResponse = ErrorResponse{
	Error: "the requested resource was not found",
}

var ServerErrorResponse = ErrorResponse{
	Error: "an internal server error occurred, please try again later",
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// NewErrorResponse wraps a caller-facing message in the error body shape.
func NewErrorResponse(msg string) ErrorResponse {
	return ErrorResponse{Error: msg}
}

// ValidationErrorResponse flattens validator field errors into a single message.
func ValidationErrorResponse(err error) ErrorResponse {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return BadRequestResponse
	}

	msgs := make([]string, 0, len(validationErrs))
	for _, fieldErr := range validationErrs {
		switch fieldErr.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fieldErr.Field()))
		case "url":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid url", fieldErr.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fieldErr.Field()))
		}
	}

	return ErrorResponse{Error: strings.Join(msgs, "; ")}
}

package response

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestValidationErrorResponse(t *testing.T) {
	validate := validator.New()

	type request struct {
		OriginalURL string `validate:"required,url"`
	}

	t.Run("non-validation error", func(t *testing.T) {
		resp := ValidationErrorResponse(errors.New("unknown error"))

		assert.Equal(t, BadRequestResponse, resp)
	})

	t.Run("required field", func(t *testing.T) {
		err := validate.Struct(request{})

		resp := ValidationErrorResponse(err)

		assert.Equal(t, "OriginalURL is required", resp.Error)
	})

	t.Run("invalid url", func(t *testing.T) {
		err := validate.Struct(request{OriginalURL: "invalid url"})

		resp := ValidationErrorResponse(err)

		assert.Equal(t, "OriginalURL must be a valid url", resp.Error)
	})
}

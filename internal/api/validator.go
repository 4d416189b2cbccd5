package api

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"quizolute/internal/apperrors"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// friendlyMessages overrides the generic message for specific field failures,
// keyed by "<StructNamespace>.<tag>".
var friendlyMessages = map[string]string{
	"ChatRequest.Message.required": "No message provided",
}

func getInstance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// validateRequest checks payload against its `validate` tags and returns an
// apperrors.ErrValidation describing every failed field.
func validateRequest(payload interface{}) error {
	err := getInstance().Struct(payload)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		if msg, ok := friendlyMessages[fieldErr.StructNamespace()+"."+fieldErr.Tag()]; ok {
			messages = append(messages, msg)
			continue
		}
		messages = append(messages, fmt.Sprintf("Field '%s' failed on the '%s' tag", fieldErr.Namespace(), fieldErr.Tag()))
	}
	return apperrors.Validation(strings.Join(messages, "; "))
}

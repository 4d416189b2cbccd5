package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationKeepsMessage(t *testing.T) {
	err := Validation("No text content provided")

	assert.Equal(t, "No text content provided", err.Error())
	assert.True(t, errors.Is(err, ErrValidation))
	assert.False(t, errors.Is(err, ErrGeneration))
}

func TestWrappedSentinels(t *testing.T) {
	err := fmt.Errorf("%w: %s", ErrGeneration, "model c: status 503")

	assert.ErrorIs(t, err, ErrGeneration)
	assert.Equal(t, "AI generation failed: model c: status 503", err.Error())
	assert.ErrorIs(t, PayloadTooLarge("too big"), ErrPayloadTooLarge)
}

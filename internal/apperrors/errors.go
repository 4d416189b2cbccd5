// Package apperrors holds the sentinel errors shared by services and the API
// layer. Services wrap them with context; the API maps them to status codes
// with errors.Is.
package apperrors

import "errors"

var (
	// ErrValidation marks missing or malformed client input (400).
	ErrValidation = errors.New("validation failed")

	// ErrGeneration is returned once every model in the fallback chain has failed (500).
	ErrGeneration = errors.New("AI generation failed")

	// ErrVision marks a failed image transcription; it is never retried (500).
	ErrVision = errors.New("Vision processing failed")

	// ErrSearch marks a failure of the instant-answer upstream (502).
	ErrSearch = errors.New("search failed")

	// ErrPayloadTooLarge marks a request body over the upload ceiling (413).
	ErrPayloadTooLarge = errors.New("payload too large")
)

// kindError carries a client-facing message while still matching its sentinel with errors.Is.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

// Validation returns an ErrValidation whose message is exactly msg.
func Validation(msg string) error {
	return &kindError{kind: ErrValidation, msg: msg}
}

// PayloadTooLarge returns an ErrPayloadTooLarge whose message is exactly msg.
func PayloadTooLarge(msg string) error {
	return &kindError{kind: ErrPayloadTooLarge, msg: msg}
}

package generation

import "errors"

// Common errors returned by the generation package.
var (
	// ErrGenerationFailed is returned when card generation fails for a general
	// transport or provider reason. It is a per-chunk soft failure.
	ErrGenerationFailed = errors.New("failed to generate cards from chunk")

	// ErrMalformedResponse is returned when no structured card payload can be
	// recovered from the model output, even via the lenient recovery path.
	ErrMalformedResponse = errors.New("no card payload recoverable from model response")

	// ErrContentBlocked is returned when the provider blocks the content due
	// to safety filters.
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure is returned for temporary provider errors that might
	// resolve on retry.
	ErrTransientFailure = errors.New("transient error during card generation")

	// ErrInvalidConfig is returned when the generator configuration is invalid.
	// Unlike the errors above it is fatal for the whole source.
	ErrInvalidConfig = errors.New("invalid generator configuration")
)

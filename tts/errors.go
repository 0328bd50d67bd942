package tts

import (
	"errors"
	"fmt"
)

// Common errors for the playback orchestration layer.
var (
	// ErrNoVoices means a playback attempt found an empty voice catalog.
	ErrNoVoices = errors.New("no voices available")
	// ErrMissingAPIKey means a provider was asked to speak without the
	// credential it requires.
	ErrMissingAPIKey = errors.New("API key is not configured")
	// ErrUnknownProvider means the registry has no factory for a type.
	ErrUnknownProvider = errors.New("unknown TTS provider type")
	// ErrNoProvider means no provider has been activated yet.
	ErrNoProvider = errors.New("no TTS provider is active")
	// ErrEngineNotFound means no platform speech engine binary exists.
	ErrEngineNotFound = errors.New("no speech engine binary found")
)

// ProviderError wraps a failure reported by a concrete backend. HTTP
// providers fill Status with the remote response code; engine-backed
// providers leave it zero.
type ProviderError struct {
	Provider ProviderType
	Status   int
	Message  string
	Err      error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	switch {
	case e.Status != 0 && e.Message != "":
		return fmt.Sprintf("%s: request failed (status %d): %s", e.Provider, e.Status, e.Message)
	case e.Status != 0:
		return fmt.Sprintf("%s: request failed (status %d)", e.Provider, e.Status)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Provider, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s: unknown provider error", e.Provider)
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Package tts orchestrates text-to-speech playback across multiple
// backends. It provides a uniform provider contract, a registry that owns
// provider instances, sequence players for single texts and multi-speaker
// dialogues, and a bounded LRU cache for generated audio.
package tts

import (
	"context"
)

// ProviderType identifies a concrete TTS backend.
type ProviderType string

const (
	// ProviderESpeak drives the platform speech engine (espeak-ng or say).
	ProviderESpeak ProviderType = "espeak"
	// ProviderElevenLabs synthesizes audio through the ElevenLabs API.
	ProviderElevenLabs ProviderType = "elevenlabs"
	// ProviderOpenAI synthesizes audio through the OpenAI speech API.
	ProviderOpenAI ProviderType = "openai"
	// ProviderGoogle synthesizes audio through Google Cloud Text-to-Speech.
	ProviderGoogle ProviderType = "google"
	// ProviderMock is an in-memory provider for tests and dry runs.
	ProviderMock ProviderType = "mock"
)

// Voice is an addressable speaking identity within one provider's
// namespace. Voices are immutable snapshots fetched on demand.
type Voice struct {
	ID       string
	Name     string
	Provider ProviderType
	// Language is a BCP 47-ish tag ("en-US", "ko"). Empty for providers
	// whose voices are inherently multilingual.
	Language string
	// Native carries an opaque per-provider handle. It is passed back to
	// the provider unmodified and never inspected generically.
	Native any
}

// VoiceSettings tunes how an utterance is rendered.
type VoiceSettings struct {
	// Rate is a speed multiplier, 1.0 = normal.
	Rate float64
	// Pitch is a pitch multiplier, 1.0 = normal.
	Pitch float64
	// Volume is a gain multiplier, 1.0 = normal.
	Volume float64
}

// DefaultVoiceSettings returns neutral settings.
func DefaultVoiceSettings() VoiceSettings {
	return VoiceSettings{Rate: 1.0, Pitch: 1.0, Volume: 1.0}
}

// ProviderConfig is passed at provider activation. All fields are
// optional; a provider missing a required credential stays constructed but
// fails lazily when asked to speak.
type ProviderConfig struct {
	APIKey        string
	VoiceSettings *VoiceSettings
	// Model selects the synthesis model for providers that have one
	// ("eleven_multilingual_v2", "gpt-4o-mini-tts", ...).
	Model string
	// Language narrows PreferredVoices filtering ("ko", "en").
	Language string
}

// PlaybackState is a synchronous snapshot of one provider's transport.
type PlaybackState struct {
	IsPlaying bool
	IsPaused  bool
}

// SpeakOptions configures a single utterance.
type SpeakOptions struct {
	Voice    Voice
	Settings *VoiceSettings
	OnStart  func()
	OnEnd    func()
	OnError  func(error)
}

// DialogueLine is one utterance of a multi-speaker script. Speaker is a
// free-text label used only as a grouping key for voice assignment.
type DialogueLine struct {
	ID      string `yaml:"id" json:"id"`
	Speaker string `yaml:"speaker" json:"speaker"`
	Text    string `yaml:"text" json:"text"`
}

// Provider is the uniform capability contract every backend implements.
//
// Lifecycle: Initialize may be called repeatedly as settings change and
// must not leak resources from previous calls. A missing API key is not an
// Initialize error; it surfaces when Speak is attempted. Stop must resolve
// (not fail) any in-flight Speak, and must abort pending network requests
// rather than merely ignoring their results.
type Provider interface {
	// Name returns the human-readable provider name.
	Name() string

	// Type returns the provider's registry identity.
	Type() ProviderType

	// Initialize (re)configures credentials and settings. Idempotent.
	Initialize(config ProviderConfig) error

	// Voices returns the provider's voice catalog. Engine-backed providers
	// bound the enumeration with a timeout and return whatever is
	// available; HTTP providers fall back to a built-in default list when
	// the remote fetch fails.
	Voices(ctx context.Context) ([]Voice, error)

	// PreferredVoices returns the subset of Voices matching the configured
	// language. Providers whose voices are multilingual return the full
	// catalog.
	PreferredVoices(ctx context.Context) ([]Voice, error)

	// Speak renders text audibly with the given voice. It returns nil on
	// natural completion and on deliberate Stop; it returns an error only
	// on genuine failure.
	Speak(ctx context.Context, text string, opts SpeakOptions) error

	// Pause suspends playback. No-op when nothing is playing.
	Pause()

	// Resume continues paused playback. No-op when not paused.
	Resume()

	// Stop halts any in-flight playback or network request and resets the
	// transport state.
	Stop()

	// PlaybackState reports the current transport snapshot.
	PlaybackState() PlaybackState

	// Dispose releases all held resources.
	Dispose()
}

// ProviderFactory constructs a provider instance for a type. The registry
// calls it at most once per type; the composition root supplies it so
// tests can inject fakes.
type ProviderFactory func(ProviderType) (Provider, error)

package tts

import (
	"time"
)

// Config contains all TTS configuration options.
type Config struct {
	// Provider selects the active backend.
	Provider string `yaml:"provider" env:"MURMUR_TTS_PROVIDER"`

	// Language narrows preferred-voice filtering.
	Language string `yaml:"language" env:"MURMUR_TTS_LANGUAGE"`

	// Voice settings applied to every utterance.
	Rate   float64 `yaml:"rate" env:"MURMUR_TTS_RATE"`
	Pitch  float64 `yaml:"pitch" env:"MURMUR_TTS_PITCH"`
	Volume float64 `yaml:"volume" env:"MURMUR_TTS_VOLUME"`

	// CacheSize bounds the number of generated clips kept in memory.
	CacheSize int `yaml:"cache_size" env:"MURMUR_TTS_CACHE_SIZE"`

	// KeepAlive keeps the audio session warm between utterances on
	// platforms that tear it down during gaps.
	KeepAlive bool `yaml:"keep_alive" env:"MURMUR_TTS_KEEP_ALIVE"`

	// LoopDelay is the pause between repetitions of looped playback.
	LoopDelay time.Duration `yaml:"loop_delay" env:"MURMUR_TTS_LOOP_DELAY"`

	// Provider-specific configurations.
	ESpeak     ESpeakConfig     `yaml:"espeak"`
	ElevenLabs ElevenLabsConfig `yaml:"elevenlabs"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Google     GoogleConfig     `yaml:"google"`
}

// ESpeakConfig contains platform speech engine settings.
type ESpeakConfig struct {
	// Binary overrides engine discovery (espeak-ng, espeak, say).
	Binary string `yaml:"binary" env:"MURMUR_TTS_ESPEAK_BINARY"`
	// VoiceTimeout bounds voice enumeration; some platforms are slow to
	// answer and the UI must not hang on them.
	VoiceTimeout time.Duration `yaml:"voice_timeout" env:"MURMUR_TTS_ESPEAK_VOICE_TIMEOUT"`
}

// ElevenLabsConfig contains ElevenLabs API settings.
type ElevenLabsConfig struct {
	APIKey string `yaml:"api_key" env:"MURMUR_TTS_ELEVENLABS_API_KEY"`
	Model  string `yaml:"model" env:"MURMUR_TTS_ELEVENLABS_MODEL"`
}

// OpenAIConfig contains OpenAI speech API settings.
type OpenAIConfig struct {
	APIKey string `yaml:"api_key" env:"MURMUR_TTS_OPENAI_API_KEY"`
	Model  string `yaml:"model" env:"MURMUR_TTS_OPENAI_MODEL"`
}

// GoogleConfig contains Google Cloud Text-to-Speech settings. An empty
// APIKey falls back to application default credentials.
type GoogleConfig struct {
	APIKey string `yaml:"api_key" env:"MURMUR_TTS_GOOGLE_API_KEY"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider:  "espeak",
		Language:  "en",
		Rate:      1.0,
		Pitch:     1.0,
		Volume:    1.0,
		CacheSize: DefaultCacheCapacity,
		KeepAlive: false,
		LoopDelay: DefaultLoopDelay,
		ESpeak: ESpeakConfig{
			VoiceTimeout: 3 * time.Second,
		},
		ElevenLabs: ElevenLabsConfig{
			Model: "eleven_multilingual_v2",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini-tts",
		},
	}
}

// VoiceSettings collects the per-utterance tuning from the config.
func (c Config) VoiceSettings() VoiceSettings {
	return VoiceSettings{Rate: c.Rate, Pitch: c.Pitch, Volume: c.Volume}
}

// ProviderConfigFor builds the activation config for a provider type.
func (c Config) ProviderConfigFor(pt ProviderType) ProviderConfig {
	settings := c.VoiceSettings()
	pc := ProviderConfig{
		VoiceSettings: &settings,
		Language:      c.Language,
	}

	switch pt {
	case ProviderElevenLabs:
		pc.APIKey = c.ElevenLabs.APIKey
		pc.Model = c.ElevenLabs.Model
	case ProviderOpenAI:
		pc.APIKey = c.OpenAI.APIKey
		pc.Model = c.OpenAI.Model
	case ProviderGoogle:
		pc.APIKey = c.Google.APIKey
	}

	return pc
}

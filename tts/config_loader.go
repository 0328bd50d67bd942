package tts

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"
)

// LoadConfigFromViper loads TTS configuration from Viper, starting from
// defaults so partial config files work.
func LoadConfigFromViper() (Config, error) {
	cfg := DefaultConfig()

	if viper.IsSet("tts.provider") {
		cfg.Provider = viper.GetString("tts.provider")
	}
	if viper.IsSet("tts.language") {
		cfg.Language = viper.GetString("tts.language")
	}
	if viper.IsSet("tts.rate") {
		cfg.Rate = viper.GetFloat64("tts.rate")
	}
	if viper.IsSet("tts.pitch") {
		cfg.Pitch = viper.GetFloat64("tts.pitch")
	}
	if viper.IsSet("tts.volume") {
		cfg.Volume = viper.GetFloat64("tts.volume")
	}
	if viper.IsSet("tts.cache_size") {
		cfg.CacheSize = viper.GetInt("tts.cache_size")
	}
	if viper.IsSet("tts.keep_alive") {
		cfg.KeepAlive = viper.GetBool("tts.keep_alive")
	}
	if viper.IsSet("tts.loop_delay") {
		cfg.LoopDelay = viper.GetDuration("tts.loop_delay")
	}

	if viper.IsSet("tts.espeak.binary") {
		cfg.ESpeak.Binary = viper.GetString("tts.espeak.binary")
	}
	if viper.IsSet("tts.espeak.voice_timeout") {
		cfg.ESpeak.VoiceTimeout = viper.GetDuration("tts.espeak.voice_timeout")
	}

	if viper.IsSet("tts.elevenlabs.api_key") {
		cfg.ElevenLabs.APIKey = viper.GetString("tts.elevenlabs.api_key")
	}
	if viper.IsSet("tts.elevenlabs.model") {
		cfg.ElevenLabs.Model = viper.GetString("tts.elevenlabs.model")
	}

	if viper.IsSet("tts.openai.api_key") {
		cfg.OpenAI.APIKey = viper.GetString("tts.openai.api_key")
	}
	if viper.IsSet("tts.openai.model") {
		cfg.OpenAI.Model = viper.GetString("tts.openai.model")
	}

	if viper.IsSet("tts.google.api_key") {
		cfg.Google.APIKey = viper.GetString("tts.google.api_key")
	}

	// Environment variables override file values.
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("unable to parse TTS environment config: %w", err)
	}

	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	if cfg.Rate <= 0 || cfg.Rate > 4.0 {
		return fmt.Errorf("tts rate must be in (0, 4.0], got %v", cfg.Rate)
	}
	if cfg.Volume < 0 || cfg.Volume > 2.0 {
		return fmt.Errorf("tts volume must be in [0, 2.0], got %v", cfg.Volume)
	}
	if cfg.CacheSize < 0 {
		return fmt.Errorf("tts cache size must not be negative, got %d", cfg.CacheSize)
	}
	return nil
}

package providers

import (
	"fmt"

	"github.com/murmurfm/murmur/tts"
	"github.com/murmurfm/murmur/tts/audio"
)

// Factory builds the registry's provider factory. The cache is shared by
// all HTTP providers so a provider switch keeps warm audio; each provider
// gets its own player so transport state stays isolated.
func Factory(espeak tts.ESpeakConfig, cache *tts.Cache, newPlayer func() audio.Player) tts.ProviderFactory {
	return func(pt tts.ProviderType) (tts.Provider, error) {
		switch pt {
		case tts.ProviderESpeak:
			return NewESpeak(espeak), nil
		case tts.ProviderElevenLabs:
			return NewElevenLabs(cache, newPlayer()), nil
		case tts.ProviderOpenAI:
			return NewOpenAI(cache, newPlayer()), nil
		case tts.ProviderGoogle:
			return NewGoogle(cache, newPlayer()), nil
		case tts.ProviderMock:
			return NewMock(), nil
		}
		return nil, fmt.Errorf("%w: %s", tts.ErrUnknownProvider, pt)
	}
}

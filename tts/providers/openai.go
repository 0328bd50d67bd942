package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	openai "github.com/sashabaranov/go-openai"

	"github.com/murmurfm/murmur/tts"
	"github.com/murmurfm/murmur/tts/audio"
)

const openAIDefaultSpeechModel = "gpt-4o-mini-tts"

// openAIVoiceNames is the fixed voice catalog of the OpenAI speech API.
// There is no listing endpoint; the set is documented.
var openAIVoiceNames = []string{
	"alloy", "ash", "ballad", "coral", "echo", "fable",
	"nova", "onyx", "sage", "shimmer", "verse", "marin", "cedar",
}

// OpenAI synthesizes speech through the OpenAI speech API.
type OpenAI struct {
	httpProvider
	clientMu sync.Mutex
	client   *openai.Client
	apiKey   string
}

// NewOpenAI creates the OpenAI provider. The cache is shared across
// providers; the player is owned.
func NewOpenAI(cache *tts.Cache, player audio.Player) *OpenAI {
	p := &OpenAI{}
	p.httpProvider = httpProvider{
		name:   "OpenAI",
		ptype:  tts.ProviderOpenAI,
		cache:  cache,
		player: player,
	}
	p.generate = p.synthesize
	return p
}

// api returns the client for the configured key, rebuilding it when the
// key changes between Initialize calls.
func (p *OpenAI) api(key string) *openai.Client {
	p.clientMu.Lock()
	defer p.clientMu.Unlock()
	if p.client == nil || p.apiKey != key {
		p.client = openai.NewClient(key)
		p.apiKey = key
	}
	return p.client
}

// Voices returns the fixed catalog. No credential or network is needed.
func (p *OpenAI) Voices(ctx context.Context) ([]tts.Voice, error) {
	voices := make([]tts.Voice, 0, len(openAIVoiceNames))
	for _, name := range openAIVoiceNames {
		voices = append(voices, tts.Voice{
			ID:       name,
			Name:     name,
			Provider: tts.ProviderOpenAI,
		})
	}
	return voices, nil
}

// PreferredVoices returns the full catalog; OpenAI voices are
// multilingual.
func (p *OpenAI) PreferredVoices(ctx context.Context) ([]tts.Voice, error) {
	return p.Voices(ctx)
}

func (p *OpenAI) synthesize(ctx context.Context, text string, voice tts.Voice, settings tts.VoiceSettings) (*audio.Clip, error) {
	cfg := p.configSnapshot()
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: %w", tts.ErrMissingAPIKey)
	}

	model := cfg.Model
	if model == "" {
		model = openAIDefaultSpeechModel
	}

	// The API accepts speeds in [0.25, 4.0].
	speed := settings.Rate
	if speed < 0.25 {
		speed = 0.25
	} else if speed > 4.0 {
		speed = 4.0
	}

	resp, err := p.api(cfg.APIKey).CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(model),
		Input:          text,
		Voice:          openai.SpeechVoice(voice.ID),
		ResponseFormat: openai.SpeechResponseFormatMp3,
		Speed:          speed,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return nil, &tts.ProviderError{
				Provider: tts.ProviderOpenAI,
				Status:   apiErr.HTTPStatusCode,
				Message:  apiErr.Message,
				Err:      err,
			}
		}
		return nil, fmt.Errorf("openai: synthesis request: %w", err)
	}
	defer resp.Close()

	data, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("openai: read audio: %w", err)
	}

	return &audio.Clip{Data: data, Encoding: audio.EncodingMP3}, nil
}

package providers

import (
	"context"
	"fmt"
	"strings"
	"sync"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"github.com/charmbracelet/log"
	"google.golang.org/api/option"

	"github.com/murmurfm/murmur/tts"
	"github.com/murmurfm/murmur/tts/audio"
)

// googleDefaultVoices is the fallback catalog used when voice listing is
// unreachable. A small cross-section of the standard catalog.
var googleDefaultVoices = []tts.Voice{
	{ID: "en-US-Neural2-A", Name: "en-US-Neural2-A", Provider: tts.ProviderGoogle, Language: "en-US"},
	{ID: "en-US-Neural2-C", Name: "en-US-Neural2-C", Provider: tts.ProviderGoogle, Language: "en-US"},
	{ID: "en-US-Neural2-D", Name: "en-US-Neural2-D", Provider: tts.ProviderGoogle, Language: "en-US"},
	{ID: "en-GB-Neural2-A", Name: "en-GB-Neural2-A", Provider: tts.ProviderGoogle, Language: "en-GB"},
	{ID: "en-GB-Neural2-B", Name: "en-GB-Neural2-B", Provider: tts.ProviderGoogle, Language: "en-GB"},
	{ID: "ko-KR-Neural2-A", Name: "ko-KR-Neural2-A", Provider: tts.ProviderGoogle, Language: "ko-KR"},
	{ID: "ko-KR-Neural2-B", Name: "ko-KR-Neural2-B", Provider: tts.ProviderGoogle, Language: "ko-KR"},
}

// Google synthesizes speech through Google Cloud Text-to-Speech. An
// empty API key falls back to application default credentials.
type Google struct {
	httpProvider
	clientMu sync.Mutex
	client   *texttospeech.Client
	apiKey   string
}

// NewGoogle creates the Google Cloud provider. The cache is shared
// across providers; the player is owned.
func NewGoogle(cache *tts.Cache, player audio.Player) *Google {
	p := &Google{}
	p.httpProvider = httpProvider{
		name:   "Google Cloud TTS",
		ptype:  tts.ProviderGoogle,
		cache:  cache,
		player: player,
	}
	p.generate = p.synthesize
	return p
}

// api returns the gRPC client, creating it on first use and recreating
// it when the configured key changes.
func (p *Google) api(ctx context.Context, key string) (*texttospeech.Client, error) {
	p.clientMu.Lock()
	defer p.clientMu.Unlock()

	if p.client != nil && p.apiKey == key {
		return p.client, nil
	}
	if p.client != nil {
		p.client.Close()
		p.client = nil
	}

	var opts []option.ClientOption
	if key != "" {
		opts = append(opts, option.WithAPIKey(key))
	}
	client, err := texttospeech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("google tts: create client: %w", err)
	}
	p.client = client
	p.apiKey = key
	return client, nil
}

// Voices lists the remote catalog, narrowed to the configured language
// when one is set. A failed listing degrades to a built-in default set.
func (p *Google) Voices(ctx context.Context) ([]tts.Voice, error) {
	cfg := p.configSnapshot()

	client, err := p.api(ctx, cfg.APIKey)
	if err != nil {
		log.Warn("google voice listing unavailable, using defaults", "err", err)
		return googleDefaultVoices, nil
	}

	resp, err := client.ListVoices(ctx, &texttospeechpb.ListVoicesRequest{
		LanguageCode: cfg.Language,
	})
	if err != nil {
		log.Warn("google voice listing failed, using defaults", "err", err)
		return googleDefaultVoices, nil
	}
	if len(resp.Voices) == 0 {
		return googleDefaultVoices, nil
	}

	voices := make([]tts.Voice, 0, len(resp.Voices))
	for _, v := range resp.Voices {
		lang := ""
		if len(v.LanguageCodes) > 0 {
			lang = v.LanguageCodes[0]
		}
		voices = append(voices, tts.Voice{
			ID:       v.Name,
			Name:     v.Name,
			Provider: tts.ProviderGoogle,
			Language: lang,
		})
	}
	return voices, nil
}

// PreferredVoices narrows the catalog to the configured language prefix.
func (p *Google) PreferredVoices(ctx context.Context) ([]tts.Voice, error) {
	voices, err := p.Voices(ctx)
	if err != nil {
		return nil, err
	}
	lang := p.configSnapshot().Language
	if lang == "" {
		return voices, nil
	}

	preferred := make([]tts.Voice, 0, len(voices))
	for _, v := range voices {
		if strings.HasPrefix(strings.ToLower(v.Language), strings.ToLower(lang)) {
			preferred = append(preferred, v)
		}
	}
	if len(preferred) == 0 {
		return voices, nil
	}
	return preferred, nil
}

func (p *Google) synthesize(ctx context.Context, text string, voice tts.Voice, settings tts.VoiceSettings) (*audio.Clip, error) {
	cfg := p.configSnapshot()

	client, err := p.api(ctx, cfg.APIKey)
	if err != nil {
		return nil, err
	}

	// Voice names embed their language code ("en-US-Neural2-A").
	lang := voice.Language
	if lang == "" {
		parts := strings.SplitN(voice.ID, "-", 3)
		if len(parts) >= 2 {
			lang = parts[0] + "-" + parts[1]
		}
	}

	resp, err := client.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: lang,
			Name:         voice.ID,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
			SpeakingRate:  settings.Rate,
		},
	})
	if err != nil {
		return nil, &tts.ProviderError{
			Provider: tts.ProviderGoogle,
			Message:  "synthesis failed",
			Err:      err,
		}
	}

	return &audio.Clip{Data: resp.AudioContent, Encoding: audio.EncodingMP3}, nil
}

// Dispose closes the gRPC client in addition to the shared teardown.
func (p *Google) Dispose() {
	p.httpProvider.Dispose()
	p.clientMu.Lock()
	defer p.clientMu.Unlock()
	if p.client != nil {
		p.client.Close()
		p.client = nil
	}
}

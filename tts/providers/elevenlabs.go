package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/murmurfm/murmur/tts"
	"github.com/murmurfm/murmur/tts/audio"
)

const (
	elevenLabsBaseURL      = "https://api.elevenlabs.io/v1"
	elevenLabsDefaultModel = "eleven_multilingual_v2"
)

// elevenLabsDefaultVoices is the fallback catalog used when the remote
// voice listing is unreachable. These are the stock voices every account
// has access to.
var elevenLabsDefaultVoices = []tts.Voice{
	{ID: "21m00Tcm4TlvDq8ikWAM", Name: "Rachel", Provider: tts.ProviderElevenLabs},
	{ID: "AZnzlk1XvdvUeBnXmlld", Name: "Domi", Provider: tts.ProviderElevenLabs},
	{ID: "EXAVITQu4vr4xnSDxMaL", Name: "Bella", Provider: tts.ProviderElevenLabs},
	{ID: "ErXwobaYiN019PkySvjV", Name: "Antoni", Provider: tts.ProviderElevenLabs},
	{ID: "MF3mGyEYCl7XYWbV9V6O", Name: "Elli", Provider: tts.ProviderElevenLabs},
	{ID: "TxGEqnHWrfWFTfGW9XjX", Name: "Josh", Provider: tts.ProviderElevenLabs},
	{ID: "VR6AewLTigWG4xSOukaG", Name: "Arnold", Provider: tts.ProviderElevenLabs},
	{ID: "pNInz6obpgDQGcFmaJgB", Name: "Adam", Provider: tts.ProviderElevenLabs},
	{ID: "yoZ06aMxZJJ28mfd3POQ", Name: "Sam", Provider: tts.ProviderElevenLabs},
}

// ElevenLabs synthesizes speech through the ElevenLabs HTTP API.
type ElevenLabs struct {
	httpProvider
	client  *http.Client
	baseURL string
}

// NewElevenLabs creates the ElevenLabs provider. The cache is shared
// across providers; the player is owned.
func NewElevenLabs(cache *tts.Cache, player audio.Player) *ElevenLabs {
	p := &ElevenLabs{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: elevenLabsBaseURL,
	}
	p.httpProvider = httpProvider{
		name:   "ElevenLabs",
		ptype:  tts.ProviderElevenLabs,
		cache:  cache,
		player: player,
	}
	p.generate = p.synthesize
	return p
}

type elevenLabsVoicesResponse struct {
	Voices []struct {
		VoiceID string            `json:"voice_id"`
		Name    string            `json:"name"`
		Labels  map[string]string `json:"labels"`
	} `json:"voices"`
}

// Voices fetches the account's voice catalog. A failed fetch degrades to
// the stock voice list so playback stays possible offline.
func (p *ElevenLabs) Voices(ctx context.Context) ([]tts.Voice, error) {
	cfg := p.configSnapshot()
	if cfg.APIKey == "" {
		return elevenLabsDefaultVoices, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/voices", nil)
	if err != nil {
		return elevenLabsDefaultVoices, nil
	}
	req.Header.Set("xi-api-key", cfg.APIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		log.Warn("elevenlabs voice listing failed, using defaults", "err", err)
		return elevenLabsDefaultVoices, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn("elevenlabs voice listing failed, using defaults", "status", resp.StatusCode)
		return elevenLabsDefaultVoices, nil
	}

	var parsed elevenLabsVoicesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		log.Warn("elevenlabs voice listing unparseable, using defaults", "err", err)
		return elevenLabsDefaultVoices, nil
	}
	if len(parsed.Voices) == 0 {
		return elevenLabsDefaultVoices, nil
	}

	voices := make([]tts.Voice, 0, len(parsed.Voices))
	for _, v := range parsed.Voices {
		voices = append(voices, tts.Voice{
			ID:       v.VoiceID,
			Name:     v.Name,
			Provider: tts.ProviderElevenLabs,
			Language: v.Labels["language"],
		})
	}
	return voices, nil
}

// PreferredVoices returns the full catalog; ElevenLabs voices are
// multilingual.
func (p *ElevenLabs) PreferredVoices(ctx context.Context) ([]tts.Voice, error) {
	return p.Voices(ctx)
}

type elevenLabsSpeechRequest struct {
	Text          string                  `json:"text"`
	ModelID       string                  `json:"model_id"`
	VoiceSettings elevenLabsVoiceSettings `json:"voice_settings"`
}

type elevenLabsVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

func (p *ElevenLabs) synthesize(ctx context.Context, text string, voice tts.Voice, settings tts.VoiceSettings) (*audio.Clip, error) {
	cfg := p.configSnapshot()
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("elevenlabs: %w", tts.ErrMissingAPIKey)
	}

	model := cfg.Model
	if model == "" {
		model = elevenLabsDefaultModel
	}

	body, err := json.Marshal(elevenLabsSpeechRequest{
		Text:    text,
		ModelID: model,
		VoiceSettings: elevenLabsVoiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.75,
			Style:           0.0,
			UseSpeakerBoost: true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: encode request: %w", err)
	}

	url := fmt.Sprintf("%s/text-to-speech/%s", p.baseURL, voice.ID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: build request: %w", err)
	}
	req.Header.Set("xi-api-key", cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: synthesis request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &tts.ProviderError{
			Provider: tts.ProviderElevenLabs,
			Status:   resp.StatusCode,
			Message:  string(msg),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: read audio: %w", err)
	}

	return &audio.Clip{Data: data, Encoding: audio.EncodingMP3}, nil
}

// Package providers contains the concrete TTS backends: the platform
// speech engine, the HTTP synthesis services, and an in-memory mock. The
// composition root wires them into the registry through Factory.
package providers

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/murmurfm/murmur/tts"
	"github.com/murmurfm/murmur/tts/audio"
)

// generateFunc synthesizes one utterance into a playable clip. It must
// honor ctx cancellation so Stop can abort an in-flight request.
type generateFunc func(ctx context.Context, text string, voice tts.Voice, settings tts.VoiceSettings) (*audio.Clip, error)

// httpProvider is the shared skeleton of every HTTP-generated backend.
// The pipeline is identical for all of them (cache lookup, abortable
// fetch, cache fill, playback); only the synthesis call differs, supplied
// by the concrete provider as generate.
type httpProvider struct {
	mu       sync.Mutex
	name     string
	ptype    tts.ProviderType
	config   tts.ProviderConfig
	cache    *tts.Cache
	player   audio.Player
	generate generateFunc

	// cancel aborts the in-flight synthesis request, if any.
	cancel context.CancelFunc
}

func (p *httpProvider) Name() string           { return p.name }
func (p *httpProvider) Type() tts.ProviderType { return p.ptype }

func (p *httpProvider) Initialize(config tts.ProviderConfig) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.config = config
	log.Debug("provider configured", "provider", p.ptype, "model", config.Model)
	return nil
}

// settingsFor resolves the effective settings for one utterance:
// per-call overrides win, then the activation config, then neutral.
func (p *httpProvider) settingsFor(opts tts.SpeakOptions) tts.VoiceSettings {
	if opts.Settings != nil {
		return *opts.Settings
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.config.VoiceSettings != nil {
		return *p.config.VoiceSettings
	}
	return tts.DefaultVoiceSettings()
}

func (p *httpProvider) configSnapshot() tts.ProviderConfig {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.config
}

// Speak renders text with the given voice: cached audio plays
// immediately, otherwise the clip is fetched (abortably), cached, and
// played. A Stop during the fetch or the playback resolves with nil.
func (p *httpProvider) Speak(ctx context.Context, text string, opts tts.SpeakOptions) error {
	p.Stop()

	settings := p.settingsFor(opts)
	key := tts.CacheKey(p.ptype, opts.Voice.ID, text)

	clip, ok := p.cache.Get(key)
	if !ok {
		fetchCtx, cancel := context.WithCancel(ctx)
		p.mu.Lock()
		p.cancel = cancel
		p.mu.Unlock()

		var err error
		clip, err = p.generate(fetchCtx, text, opts.Voice, settings)
		// Transports differ in how they surface an aborted request, so
		// record the context state before our own cancel muddies it.
		stopped := errors.Is(fetchCtx.Err(), context.Canceled)

		p.mu.Lock()
		p.cancel = nil
		p.mu.Unlock()
		cancel()

		if err != nil {
			if stopped || errors.Is(err, context.Canceled) {
				return nil
			}
			if opts.OnError != nil {
				opts.OnError(err)
			}
			return err
		}
		p.cache.Set(key, clip)
	}

	return p.player.Play(ctx, clip, audio.Callbacks{
		OnPlay:  opts.OnStart,
		OnEnded: opts.OnEnd,
		OnError: opts.OnError,
	})
}

func (p *httpProvider) Pause()  { p.player.Pause() }
func (p *httpProvider) Resume() { p.player.Resume() }

// Stop aborts any in-flight synthesis request and halts playback.
func (p *httpProvider) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	p.player.Stop()
}

func (p *httpProvider) PlaybackState() tts.PlaybackState {
	return tts.PlaybackState{
		IsPlaying: p.player.IsPlaying(),
		IsPaused:  p.player.IsPaused(),
	}
}

func (p *httpProvider) Dispose() {
	p.Stop()
}

package providers

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/murmurfm/murmur/tts"
)

// Mock is an in-memory provider for tests and dry runs. It records every
// call, speaks instantly (or after a configurable delay), and can be told
// to fail. Speak is interruptible the same way the real providers are: a
// Stop during the delay resolves the call with nil.
type Mock struct {
	mu sync.Mutex

	voices     []tts.Voice
	voicesErr  error
	speakErr   error
	speakDelay time.Duration
	config     tts.ProviderConfig

	playing      bool
	paused       bool
	stop         chan struct{}
	spoken       []string
	spokenVoices []string

	initN    int
	voicesN  int
	speakN   int
	stopN    int
	disposed bool
}

// NewMock creates a mock with two voices, enough for round-robin
// assignment to be observable.
func NewMock() *Mock {
	return &Mock{
		voices: []tts.Voice{
			{ID: "mock-0", Name: "Mock Zero", Provider: tts.ProviderMock, Language: "en-US"},
			{ID: "mock-1", Name: "Mock One", Provider: tts.ProviderMock, Language: "ko-KR"},
		},
	}
}

// SetVoices replaces the catalog. An empty slice simulates a provider
// with nothing to offer.
func (m *Mock) SetVoices(voices []tts.Voice) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.voices = voices
}

// FailVoicesWith makes Voices return err.
func (m *Mock) FailVoicesWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.voicesErr = err
}

// FailSpeakWith makes Speak return err.
func (m *Mock) FailSpeakWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.speakErr = err
}

// SetSpeakDelay makes each utterance take d before completing.
func (m *Mock) SetSpeakDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.speakDelay = d
}

func (m *Mock) Name() string           { return "Mock" }
func (m *Mock) Type() tts.ProviderType { return tts.ProviderMock }

func (m *Mock) Initialize(config tts.ProviderConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config = config
	m.initN++
	return nil
}

func (m *Mock) Voices(ctx context.Context) ([]tts.Voice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.voicesN++
	if m.voicesErr != nil {
		return nil, m.voicesErr
	}
	out := make([]tts.Voice, len(m.voices))
	copy(out, m.voices)
	return out, nil
}

func (m *Mock) PreferredVoices(ctx context.Context) ([]tts.Voice, error) {
	voices, err := m.Voices(ctx)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	lang := m.config.Language
	m.mu.Unlock()
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

func (m *Mock) Speak(ctx context.Context, text string, opts tts.SpeakOptions) error {
	m.mu.Lock()
	m.speakN++
	m.spoken = append(m.spoken, text)
	m.spokenVoices = append(m.spokenVoices, opts.Voice.ID)
	if m.speakErr != nil {
		err := m.speakErr
		m.mu.Unlock()
		if opts.OnError != nil {
			opts.OnError(err)
		}
		return err
	}
	stop := make(chan struct{})
	m.stop = stop
	m.playing = true
	m.paused = false
	delay := m.speakDelay
	m.mu.Unlock()

	if opts.OnStart != nil {
		opts.OnStart()
	}

	stopped := false
	if delay > 0 {
		select {
		case <-ctx.Done():
			stopped = true
		case <-stop:
			stopped = true
		case <-time.After(delay):
		}
	} else {
		select {
		case <-stop:
			stopped = true
		default:
		}
	}

	m.mu.Lock()
	m.playing = false
	m.paused = false
	m.stop = nil
	m.mu.Unlock()

	if stopped {
		return nil
	}
	if opts.OnEnd != nil {
		opts.OnEnd()
	}
	return nil
}

func (m *Mock) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.playing {
		m.paused = true
	}
}

func (m *Mock) Resume() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.playing {
		m.paused = false
	}
}

func (m *Mock) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopN++
	if m.stop != nil {
		close(m.stop)
		m.stop = nil
	}
	m.playing = false
	m.paused = false
}

func (m *Mock) PlaybackState() tts.PlaybackState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return tts.PlaybackState{IsPlaying: m.playing && !m.paused, IsPaused: m.playing && m.paused}
}

func (m *Mock) Dispose() {
	m.Stop()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disposed = true
}

// Spoken returns every text passed to Speak, in order.
func (m *Mock) Spoken() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.spoken))
	copy(out, m.spoken)
	return out
}

// SpokenVoices returns the voice id of every Speak call, in order.
func (m *Mock) SpokenVoices() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.spokenVoices))
	copy(out, m.spokenVoices)
	return out
}

// Counters for call accounting in tests.
func (m *Mock) InitializeCount() int { m.mu.Lock(); defer m.mu.Unlock(); return m.initN }
func (m *Mock) SpeakCount() int      { m.mu.Lock(); defer m.mu.Unlock(); return m.speakN }
func (m *Mock) StopCount() int       { m.mu.Lock(); defer m.mu.Unlock(); return m.stopN }
func (m *Mock) Disposed() bool       { m.mu.Lock(); defer m.mu.Unlock(); return m.disposed }

// Config returns the last configuration passed to Initialize.
func (m *Mock) Config() tts.ProviderConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.config
}

package tts

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
)

// Manager owns the set of instantiated providers and the notion of which
// one is current. Instances are created lazily through the injected
// factory, cached per type, and never destroyed by switching, so voices
// and settings survive toggling between providers.
//
// The Manager is constructed explicitly by the composition root rather
// than living as package state, which keeps tests isolated while
// preserving the one-active-provider-at-a-time invariant.
type Manager struct {
	mu        sync.Mutex
	factory   ProviderFactory
	providers map[ProviderType]Provider
	current   Provider
}

// NewManager creates a registry that builds providers with factory.
func NewManager(factory ProviderFactory) *Manager {
	return &Manager{
		factory:   factory,
		providers: make(map[ProviderType]Provider),
	}
}

// SetProvider activates a provider type. Whatever the current provider is
// doing is stopped first, so switching mid-playback never leaves an
// orphaned utterance or pending request behind. The target instance is
// looked up or lazily constructed, then (re)initialized with config.
func (m *Manager) SetProvider(ctx context.Context, pt ProviderType, config ProviderConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		m.current.Stop()
	}

	provider, err := m.instanceLocked(pt)
	if err != nil {
		return err
	}

	if err := provider.Initialize(config); err != nil {
		return fmt.Errorf("unable to initialize %s provider: %w", pt, err)
	}

	m.current = provider
	log.Debug("tts provider activated", "provider", pt)
	return nil
}

// Provider returns the current provider, or nil when none is active.
func (m *Manager) Provider() Provider {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// CurrentType returns the active provider's type.
func (m *Manager) CurrentType() (ProviderType, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return "", false
	}
	return m.current.Type(), true
}

// IsReady reports whether a provider has been activated.
func (m *Manager) IsReady() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current != nil
}

// VoicesFor fetches a provider's voice catalog without changing which
// provider is current, so a settings screen can preview voices while the
// active provider keeps playing.
func (m *Manager) VoicesFor(ctx context.Context, pt ProviderType, config ProviderConfig) ([]Voice, error) {
	m.mu.Lock()
	provider, err := m.instanceLocked(pt)
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	if provider != m.current {
		// The active provider keeps the config it was activated with.
		if err := provider.Initialize(config); err != nil {
			m.mu.Unlock()
			return nil, fmt.Errorf("unable to initialize %s provider: %w", pt, err)
		}
	}
	m.mu.Unlock()

	return provider.Voices(ctx)
}

// Pause forwards to the current provider. No-op when none is active.
func (m *Manager) Pause() {
	if p := m.Provider(); p != nil {
		p.Pause()
	}
}

// Resume forwards to the current provider. No-op when none is active.
func (m *Manager) Resume() {
	if p := m.Provider(); p != nil {
		p.Resume()
	}
}

// Stop forwards to the current provider. No-op when none is active.
func (m *Manager) Stop() {
	if p := m.Provider(); p != nil {
		p.Stop()
	}
}

// PlaybackState returns the current provider's transport snapshot, or the
// zero state when none is active.
func (m *Manager) PlaybackState() PlaybackState {
	if p := m.Provider(); p != nil {
		return p.PlaybackState()
	}
	return PlaybackState{}
}

// Dispose releases every cached provider instance and clears the current
// selection.
func (m *Manager) Dispose() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for pt, provider := range m.providers {
		provider.Dispose()
		delete(m.providers, pt)
	}
	m.current = nil
}

// instanceLocked must be called with m.mu held.
func (m *Manager) instanceLocked(pt ProviderType) (Provider, error) {
	if provider, ok := m.providers[pt]; ok {
		return provider, nil
	}
	provider, err := m.factory(pt)
	if err != nil {
		return nil, err
	}
	m.providers[pt] = provider
	return provider, nil
}

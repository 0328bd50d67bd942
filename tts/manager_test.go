package tts_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/murmurfm/murmur/tts"
	"github.com/murmurfm/murmur/tts/providers"
)

// recordingProvider wraps the mock to log lifecycle calls in order.
type recordingProvider struct {
	*providers.Mock
	label  string
	mu     *sync.Mutex
	events *[]string
}

func (r *recordingProvider) record(what string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	*r.events = append(*r.events, r.label+":"+what)
}

func (r *recordingProvider) Initialize(config tts.ProviderConfig) error {
	r.record("initialize")
	return r.Mock.Initialize(config)
}

func (r *recordingProvider) Stop() {
	r.record("stop")
	r.Mock.Stop()
}

func TestManagerSetProvider(t *testing.T) {
	factoryCalls := 0
	mock := providers.NewMock()
	manager := tts.NewManager(func(pt tts.ProviderType) (tts.Provider, error) {
		factoryCalls++
		return mock, nil
	})

	if manager.IsReady() {
		t.Fatal("manager should not be ready before activation")
	}

	cfg := tts.ProviderConfig{Language: "en"}
	if err := manager.SetProvider(context.Background(), tts.ProviderMock, cfg); err != nil {
		t.Fatalf("SetProvider failed: %v", err)
	}

	if !manager.IsReady() {
		t.Error("manager should be ready after activation")
	}
	if pt, ok := manager.CurrentType(); !ok || pt != tts.ProviderMock {
		t.Errorf("CurrentType = %v, %v; want mock, true", pt, ok)
	}
	if got := mock.Config().Language; got != "en" {
		t.Errorf("provider initialized with language %q, want en", got)
	}

	// Re-activating the same type reuses the instance.
	if err := manager.SetProvider(context.Background(), tts.ProviderMock, cfg); err != nil {
		t.Fatalf("second SetProvider failed: %v", err)
	}
	if factoryCalls != 1 {
		t.Errorf("factory called %d times, want 1", factoryCalls)
	}
	if mock.InitializeCount() != 2 {
		t.Errorf("Initialize called %d times, want 2", mock.InitializeCount())
	}
}

func TestManagerSwitchStopsOldProviderFirst(t *testing.T) {
	var mu sync.Mutex
	var events []string
	instances := map[tts.ProviderType]*recordingProvider{
		tts.ProviderMock:   {Mock: providers.NewMock(), label: "old", mu: &mu, events: &events},
		tts.ProviderESpeak: {Mock: providers.NewMock(), label: "new", mu: &mu, events: &events},
	}
	manager := tts.NewManager(func(pt tts.ProviderType) (tts.Provider, error) {
		return instances[pt], nil
	})

	ctx := context.Background()
	if err := manager.SetProvider(ctx, tts.ProviderMock, tts.ProviderConfig{}); err != nil {
		t.Fatalf("SetProvider failed: %v", err)
	}

	mu.Lock()
	events = nil
	mu.Unlock()

	if err := manager.SetProvider(ctx, tts.ProviderESpeak, tts.ProviderConfig{}); err != nil {
		t.Fatalf("switch failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 2 || events[0] != "old:stop" || events[1] != "new:initialize" {
		t.Errorf("events = %v, want [old:stop new:initialize]", events)
	}
}

func TestManagerUnknownProvider(t *testing.T) {
	manager := tts.NewManager(providers.Factory(tts.ESpeakConfig{}, tts.NewCache(1, nil), nil))

	err := manager.SetProvider(context.Background(), tts.ProviderType("bogus"), tts.ProviderConfig{})
	if !errors.Is(err, tts.ErrUnknownProvider) {
		t.Errorf("error = %v, want ErrUnknownProvider", err)
	}
	if manager.IsReady() {
		t.Error("failed activation should leave the manager not ready")
	}
}

func TestManagerVoicesForKeepsCurrentConfig(t *testing.T) {
	mocks := map[tts.ProviderType]*providers.Mock{
		tts.ProviderMock:   providers.NewMock(),
		tts.ProviderESpeak: providers.NewMock(),
	}
	manager := tts.NewManager(func(pt tts.ProviderType) (tts.Provider, error) {
		return mocks[pt], nil
	})

	ctx := context.Background()
	if err := manager.SetProvider(ctx, tts.ProviderMock, tts.ProviderConfig{Language: "en"}); err != nil {
		t.Fatalf("SetProvider failed: %v", err)
	}

	// Previewing the active provider's voices must not reconfigure it.
	if _, err := manager.VoicesFor(ctx, tts.ProviderMock, tts.ProviderConfig{Language: "ko"}); err != nil {
		t.Fatalf("VoicesFor failed: %v", err)
	}
	if mocks[tts.ProviderMock].InitializeCount() != 1 {
		t.Errorf("active provider reinitialized %d times, want 1", mocks[tts.ProviderMock].InitializeCount())
	}
	if got := mocks[tts.ProviderMock].Config().Language; got != "en" {
		t.Errorf("active provider config changed to %q", got)
	}

	// An inactive provider gets the preview config.
	if _, err := manager.VoicesFor(ctx, tts.ProviderESpeak, tts.ProviderConfig{Language: "ko"}); err != nil {
		t.Fatalf("VoicesFor failed: %v", err)
	}
	if got := mocks[tts.ProviderESpeak].Config().Language; got != "ko" {
		t.Errorf("inactive provider config = %q, want ko", got)
	}
}

func TestManagerDispose(t *testing.T) {
	mock := providers.NewMock()
	manager := tts.NewManager(func(tts.ProviderType) (tts.Provider, error) {
		return mock, nil
	})

	if err := manager.SetProvider(context.Background(), tts.ProviderMock, tts.ProviderConfig{}); err != nil {
		t.Fatalf("SetProvider failed: %v", err)
	}

	manager.Dispose()
	if !mock.Disposed() {
		t.Error("Dispose should dispose cached providers")
	}
	if manager.IsReady() {
		t.Error("Dispose should clear the current provider")
	}
}

func TestManagerForwardingWithoutProvider(t *testing.T) {
	manager := tts.NewManager(func(tts.ProviderType) (tts.Provider, error) {
		return providers.NewMock(), nil
	})

	// All transport forwarding must be safe before activation.
	manager.Pause()
	manager.Resume()
	manager.Stop()
	if state := manager.PlaybackState(); state.IsPlaying || state.IsPaused {
		t.Errorf("zero state expected, got %+v", state)
	}
}

package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/murmurfm/murmur/tts"
	"github.com/murmurfm/murmur/tts/audio"
)

func newTestElevenLabs(t *testing.T, handler http.Handler) (*ElevenLabs, *audio.MockPlayer, *tts.Cache) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cache := tts.NewCache(10, nil)
	player := audio.NewMockPlayer()
	p := NewElevenLabs(cache, player)
	p.baseURL = srv.URL
	if err := p.Initialize(tts.ProviderConfig{APIKey: "test-key"}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	return p, player, cache
}

func TestElevenLabsCacheHitSkipsNetwork(t *testing.T) {
	var synthCalls int32
	p, player, _ := newTestElevenLabs(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&synthCalls, 1)
		w.Write([]byte("mp3-bytes"))
	}))

	voice := tts.Voice{ID: "21m00Tcm4TlvDq8ikWAM", Provider: tts.ProviderElevenLabs}
	for i := 0; i < 2; i++ {
		if err := p.Speak(context.Background(), "hello", tts.SpeakOptions{Voice: voice}); err != nil {
			t.Fatalf("Speak %d failed: %v", i, err)
		}
	}

	if n := atomic.LoadInt32(&synthCalls); n != 1 {
		t.Errorf("synthesis requests = %d, want exactly 1", n)
	}
	if player.PlayCount() != 2 {
		t.Errorf("play count = %d, want 2", player.PlayCount())
	}
}

func TestElevenLabsDistinctTextsMiss(t *testing.T) {
	var synthCalls int32
	p, _, _ := newTestElevenLabs(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&synthCalls, 1)
		w.Write([]byte("mp3-bytes"))
	}))

	voice := tts.Voice{ID: "21m00Tcm4TlvDq8ikWAM", Provider: tts.ProviderElevenLabs}
	for _, text := range []string{"one", "two"} {
		if err := p.Speak(context.Background(), text, tts.SpeakOptions{Voice: voice}); err != nil {
			t.Fatalf("Speak failed: %v", err)
		}
	}

	if n := atomic.LoadInt32(&synthCalls); n != 2 {
		t.Errorf("synthesis requests = %d, want 2", n)
	}
}

func TestElevenLabsStatusError(t *testing.T) {
	p, _, _ := newTestElevenLabs(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
	}))

	var cbErrs int
	err := p.Speak(context.Background(), "hello", tts.SpeakOptions{
		Voice:   tts.Voice{ID: "some-voice"},
		OnError: func(error) { cbErrs++ },
	})

	var provErr *tts.ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("error = %v, want ProviderError", err)
	}
	if provErr.Status != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", provErr.Status)
	}
	if cbErrs != 1 {
		t.Errorf("OnError fired %d times, want 1", cbErrs)
	}
}

func TestElevenLabsMissingAPIKey(t *testing.T) {
	cache := tts.NewCache(10, nil)
	p := NewElevenLabs(cache, audio.NewMockPlayer())
	if err := p.Initialize(tts.ProviderConfig{}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	err := p.Speak(context.Background(), "hello", tts.SpeakOptions{Voice: tts.Voice{ID: "v"}})
	if !errors.Is(err, tts.ErrMissingAPIKey) {
		t.Errorf("error = %v, want ErrMissingAPIKey", err)
	}
}

func TestElevenLabsStopAbortsFetch(t *testing.T) {
	release := make(chan struct{})
	p, _, _ := newTestElevenLabs(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer close(release)

	done := make(chan error, 1)
	go func() {
		done <- p.Speak(context.Background(), "hello", tts.SpeakOptions{Voice: tts.Voice{ID: "v"}})
	}()

	// Let the request get in flight before aborting it.
	time.Sleep(50 * time.Millisecond)
	p.Stop()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("aborted Speak returned %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Speak did not resolve after Stop")
	}
}

func TestElevenLabsVoices(t *testing.T) {
	t.Run("remote catalog", func(t *testing.T) {
		p, _, _ := newTestElevenLabs(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("xi-api-key"); got != "test-key" {
				t.Errorf("xi-api-key = %q, want test-key", got)
			}
			w.Write([]byte(`{"voices":[{"voice_id":"abc","name":"Custom","labels":{"language":"en"}}]}`))
		}))

		voices, err := p.Voices(context.Background())
		if err != nil {
			t.Fatalf("Voices failed: %v", err)
		}
		if len(voices) != 1 || voices[0].ID != "abc" || voices[0].Language != "en" {
			t.Errorf("voices = %+v, want the remote catalog", voices)
		}
	})

	t.Run("fallback on server error", func(t *testing.T) {
		p, _, _ := newTestElevenLabs(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusInternalServerError)
		}))

		voices, err := p.Voices(context.Background())
		if err != nil {
			t.Fatalf("Voices failed: %v", err)
		}
		if len(voices) != len(elevenLabsDefaultVoices) {
			t.Errorf("got %d voices, want the %d defaults", len(voices), len(elevenLabsDefaultVoices))
		}
	})

	t.Run("defaults without api key", func(t *testing.T) {
		p := NewElevenLabs(tts.NewCache(10, nil), audio.NewMockPlayer())
		voices, err := p.Voices(context.Background())
		if err != nil {
			t.Fatalf("Voices failed: %v", err)
		}
		if len(voices) != len(elevenLabsDefaultVoices) {
			t.Errorf("got %d voices, want the %d defaults", len(voices), len(elevenLabsDefaultVoices))
		}
	})
}

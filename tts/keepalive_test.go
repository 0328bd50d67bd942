package tts

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/murmurfm/murmur/tts/audio"
)

// ctxOnlyPlayer blocks each clip for a full minute unless the play
// context is cancelled. Its Stop does nothing, so only a propagated
// context can interrupt an in-flight clip.
type ctxOnlyPlayer struct {
	mu    sync.Mutex
	plays int
}

func (p *ctxOnlyPlayer) Play(ctx context.Context, clip *audio.Clip, cb audio.Callbacks) error {
	p.mu.Lock()
	p.plays++
	p.mu.Unlock()
	select {
	case <-ctx.Done():
	case <-time.After(time.Minute):
	}
	return nil
}

func (p *ctxOnlyPlayer) Pause()          {}
func (p *ctxOnlyPlayer) Resume()         {}
func (p *ctxOnlyPlayer) Stop()           {}
func (p *ctxOnlyPlayer) IsPlaying() bool { return false }
func (p *ctxOnlyPlayer) IsPaused() bool  { return false }

func (p *ctxOnlyPlayer) PlayCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.plays
}

func TestKeepAliveLoops(t *testing.T) {
	player := audio.NewMockPlayer()
	ka := NewKeepAlive(player)

	ka.Start()
	if !ka.Active() {
		t.Fatal("keepalive should be active after Start")
	}

	// Idempotent.
	ka.Start()

	deadline := time.Now().Add(2 * time.Second)
	for player.PlayCount() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if player.PlayCount() < 3 {
		t.Fatalf("played %d clips, want a continuous loop", player.PlayCount())
	}

	ka.Stop()
	if ka.Active() {
		t.Error("keepalive should be inactive after Stop")
	}

	// The loop must actually be gone.
	settled := player.PlayCount()
	time.Sleep(20 * time.Millisecond)
	if player.PlayCount() > settled+1 {
		t.Errorf("playback continued after Stop: %d -> %d", settled, player.PlayCount())
	}

	// Idempotent.
	ka.Stop()
}

func TestKeepAliveClipIsNearSilent(t *testing.T) {
	clip := audio.NearSilence(time.Second)
	if clip.Encoding != audio.EncodingPCM16 {
		t.Fatalf("encoding = %v, want PCM16", clip.Encoding)
	}
	if d := clip.Duration(); d < 900*time.Millisecond || d > 1100*time.Millisecond {
		t.Errorf("duration = %v, want about 1s", d)
	}

	// Every sample stays far below audibility.
	for i := 0; i+1 < len(clip.Data); i += 2 {
		sample := int16(uint16(clip.Data[i]) | uint16(clip.Data[i+1])<<8)
		if sample > 64 || sample < -64 {
			t.Fatalf("sample %d = %d, louder than near-silence", i/2, sample)
		}
	}
}

func TestKeepAliveStopCancelsInFlightClip(t *testing.T) {
	player := &ctxOnlyPlayer{}
	ka := NewKeepAlive(player)

	ka.Start()
	deadline := time.Now().Add(2 * time.Second)
	for player.PlayCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if player.PlayCount() == 0 {
		t.Fatal("keepalive never started a clip")
	}

	begun := time.Now()
	ka.Stop()
	if elapsed := time.Since(begun); elapsed > time.Second {
		t.Errorf("Stop blocked %v waiting out the clip", elapsed)
	}
}

func TestKeepAliveSwallowsPlaybackFailure(t *testing.T) {
	player := audio.NewMockPlayer()
	player.FailWith(errors.New("device gone"))
	ka := NewKeepAlive(player)

	ka.Start()

	deadline := time.Now().Add(2 * time.Second)
	for ka.Active() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if ka.Active() {
		t.Error("keepalive should shut itself down when the device fails")
	}

	// Stop after self-shutdown must be safe.
	ka.Stop()
}

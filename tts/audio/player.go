package audio

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// statePollInterval is how often OtoPlayer checks for natural completion.
const statePollInterval = 10 * time.Millisecond

// OtoPlayer plays clips through the shared oto context. At most one clip
// is active per OtoPlayer; starting a new clip stops the previous one.
type OtoPlayer struct {
	mu      sync.Mutex
	current *oto.Player
	playing bool
	paused  bool
	stop    chan struct{}
}

// NewPlayer returns a player bound to the process-wide audio device. The
// device itself is created lazily on the first Play.
func NewPlayer() *OtoPlayer {
	return &OtoPlayer{}
}

// Play decodes and plays a clip, blocking until natural completion, Stop,
// or context cancellation. Deliberate interruption returns nil; OnEnded
// only fires on natural completion.
func (p *OtoPlayer) Play(ctx context.Context, clip *Clip, cb Callbacks) error {
	pcm, err := decode(clip)
	if err != nil {
		if cb.OnError != nil {
			cb.OnError(err)
		}
		return err
	}

	otoCtx, err := Context()
	if err != nil {
		if cb.OnError != nil {
			cb.OnError(err)
		}
		return err
	}

	p.mu.Lock()
	p.stopLocked()
	player := otoCtx.NewPlayer(bytes.NewReader(pcm))
	stop := make(chan struct{})
	p.current = player
	p.stop = stop
	p.playing = true
	p.paused = false
	p.mu.Unlock()

	player.Play()
	if cb.OnPlay != nil {
		cb.OnPlay()
	}

	defer func() {
		p.mu.Lock()
		if p.current == player {
			p.current = nil
			p.stop = nil
			p.playing = false
			p.paused = false
		}
		p.mu.Unlock()
		_ = player.Close()
	}()

	ticker := time.NewTicker(statePollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Cancellation is a deliberate interruption, not a failure.
			return nil
		case <-stop:
			return nil
		case <-ticker.C:
			if err := player.Err(); err != nil {
				err = fmt.Errorf("audio playback failed: %w", err)
				if cb.OnError != nil {
					cb.OnError(err)
				}
				return err
			}

			p.mu.Lock()
			paused := p.paused
			p.mu.Unlock()
			if paused {
				continue
			}

			if !player.IsPlaying() && player.BufferedSize() == 0 {
				if cb.OnEnded != nil {
					cb.OnEnded()
				}
				return nil
			}
		}
	}
}

// Pause suspends the current clip. No-op when nothing is playing or
// already paused.
func (p *OtoPlayer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil || !p.playing || p.paused {
		return
	}
	p.current.Pause()
	p.paused = true
}

// Resume continues a paused clip. No-op when not paused.
func (p *OtoPlayer) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil || !p.paused {
		return
	}
	p.current.Play()
	p.paused = false
}

// Stop halts the current clip and unblocks the in-flight Play call.
func (p *OtoPlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

// stopLocked must be called with p.mu held.
func (p *OtoPlayer) stopLocked() {
	if p.stop != nil {
		close(p.stop)
		p.stop = nil
	}
	if p.current != nil {
		p.current.Pause()
		p.current = nil
	}
	p.playing = false
	p.paused = false
}

// IsPlaying reports whether a clip is actively sounding.
func (p *OtoPlayer) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing && !p.paused
}

// IsPaused reports whether a clip is paused mid-playback.
func (p *OtoPlayer) IsPaused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

package audio

import (
	"context"
	"sync"
	"time"
)

// MockPlayer implements Player for tests. It simulates playback with a
// configurable delay, records every clip it receives, and honors Stop and
// context cancellation the way the production player does.
type MockPlayer struct {
	mu      sync.Mutex
	playing bool
	paused  bool
	stop    chan struct{}

	delay   time.Duration
	playErr error

	played      []*Clip
	playCount   int
	pauseCount  int
	resumeCount int
	stopCount   int
}

// NewMockPlayer returns a mock player with a near-instant playback delay.
func NewMockPlayer() *MockPlayer {
	return &MockPlayer{delay: time.Millisecond}
}

// SetDelay sets the simulated playback duration per clip.
func (p *MockPlayer) SetDelay(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.delay = d
}

// FailWith makes subsequent Play calls fail with err.
func (p *MockPlayer) FailWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playErr = err
}

// Play simulates playing a clip.
func (p *MockPlayer) Play(ctx context.Context, clip *Clip, cb Callbacks) error {
	p.mu.Lock()
	if p.playErr != nil {
		err := p.playErr
		p.mu.Unlock()
		if cb.OnError != nil {
			cb.OnError(err)
		}
		return err
	}

	stop := make(chan struct{})
	p.stop = stop
	p.playing = true
	p.paused = false
	p.played = append(p.played, clip)
	p.playCount++
	delay := p.delay
	p.mu.Unlock()

	if cb.OnPlay != nil {
		cb.OnPlay()
	}

	defer func() {
		p.mu.Lock()
		p.playing = false
		p.paused = false
		if p.stop == stop {
			p.stop = nil
		}
		p.mu.Unlock()
	}()

	select {
	case <-ctx.Done():
		return nil
	case <-stop:
		return nil
	case <-time.After(delay):
	}

	if cb.OnEnded != nil {
		cb.OnEnded()
	}
	return nil
}

// Pause marks playback paused when playing.
func (p *MockPlayer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing || p.paused {
		return
	}
	p.paused = true
	p.pauseCount++
}

// Resume clears the paused flag when paused.
func (p *MockPlayer) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.paused {
		return
	}
	p.paused = false
	p.resumeCount++
}

// Stop interrupts the in-flight Play call, if any.
func (p *MockPlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stop != nil {
		close(p.stop)
		p.stop = nil
	}
	p.playing = false
	p.paused = false
	p.stopCount++
}

// IsPlaying reports whether a simulated clip is actively playing.
func (p *MockPlayer) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing && !p.paused
}

// IsPaused reports whether simulated playback is paused.
func (p *MockPlayer) IsPaused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// Played returns the clips passed to Play, in order.
func (p *MockPlayer) Played() []*Clip {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*Clip, len(p.played))
	copy(out, p.played)
	return out
}

// PlayCount returns the number of Play calls.
func (p *MockPlayer) PlayCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playCount
}

// StopCount returns the number of Stop calls.
func (p *MockPlayer) StopCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopCount
}

// PauseCount returns the number of effective Pause calls.
func (p *MockPlayer) PauseCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pauseCount
}

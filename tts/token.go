package tts

import "sync"

// Token is a cooperative cancellation handle owned by one playback
// invocation. Sequence players consult it at line boundaries; Stop also
// closes Done so cancellable waits unblock immediately instead of polling.
//
// A Token only interrupts the sequencing loop. Truncating the utterance
// currently sounding is the provider's job; callers pair token.Stop with
// Manager.Stop (or Provider.Stop) for immediate silence.
type Token struct {
	mu      sync.Mutex
	stopped bool
	done    chan struct{}
}

// NewToken returns a fresh, un-stopped token.
func NewToken() *Token {
	return &Token{done: make(chan struct{})}
}

// Stop requests cancellation. Safe to call multiple times.
func (t *Token) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.stopped = true
	close(t.done)
}

// Stopped reports whether cancellation has been requested.
func (t *Token) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

// Reset rearms the token for a new playback run.
func (t *Token) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped || t.done == nil {
		t.stopped = false
		t.done = make(chan struct{})
	}
}

// Done returns a channel closed when Stop is called. The channel is
// replaced by Reset; callers should re-read it after each reset.
func (t *Token) Done() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

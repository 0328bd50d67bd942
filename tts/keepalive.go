package tts

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/murmurfm/murmur/tts/audio"
)

// keepAliveClipLength is the length of each near-silent clip fed to the
// device while keepalive is running.
const keepAliveClipLength = time.Second

// KeepAlive feeds a continuous near-silent signal through the audio
// device so platforms that suspend audio sessions between discrete
// utterances do not tear the session down mid-sequence.
//
// It is a best-effort platform workaround, not a correctness dependency:
// failures are logged and swallowed, never surfaced to playback callers.
type KeepAlive struct {
	mu      sync.Mutex
	player  audio.Player
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewKeepAlive creates a keepalive helper using its own player so it can
// sound concurrently with speech playback.
func NewKeepAlive(player audio.Player) *KeepAlive {
	return &KeepAlive{player: player}
}

// Start begins the near-silent loop. Idempotent.
func (k *KeepAlive) Start() {
	k.mu.Lock()
	if k.running {
		k.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	k.running = true
	k.cancel = cancel
	k.mu.Unlock()

	k.wg.Add(1)
	go func() {
		defer k.wg.Done()
		clip := audio.NearSilence(keepAliveClipLength)
		// The loop's context reaches into Play, so a Stop issued
		// between iterations still interrupts the next clip instead of
		// letting it sound to completion.
		for ctx.Err() == nil {
			if err := k.player.Play(ctx, clip, audio.Callbacks{}); err != nil {
				log.Warn("audio keepalive unavailable", "err", err)
				k.mu.Lock()
				k.running = false
				k.cancel = nil
				k.mu.Unlock()
				cancel()
				return
			}
		}
	}()
}

// Stop halts the loop and releases the player. Idempotent.
func (k *KeepAlive) Stop() {
	k.mu.Lock()
	if !k.running {
		k.mu.Unlock()
		return
	}
	k.running = false
	cancel := k.cancel
	k.cancel = nil
	k.mu.Unlock()

	cancel()
	k.player.Stop()
	k.wg.Wait()
}

// Active reports whether the keepalive loop is running.
func (k *KeepAlive) Active() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.running
}

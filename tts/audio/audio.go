// Package audio provides a small playable-audio abstraction used by the
// TTS providers: clips of encoded or raw audio, a player contract with
// transport controls and lifecycle callbacks, and a production
// implementation backed by a process-wide oto context.
package audio

import (
	"context"
	"time"
)

// Output format of the shared audio device.
const (
	// SampleRate is the sample rate of the output device in Hz.
	SampleRate = 44100
	// ChannelCount is the number of output channels.
	ChannelCount = 2
	// BytesPerSample is the byte width of one 16-bit sample frame slot.
	BytesPerSample = 2
)

// Encoding identifies how a clip's bytes are encoded.
type Encoding int

const (
	// EncodingMP3 is MPEG layer 3 compressed audio.
	EncodingMP3 Encoding = iota
	// EncodingPCM16 is signed 16-bit little-endian PCM.
	EncodingPCM16
)

// Clip is a playable audio handle. For EncodingPCM16, SampleRate and
// Channels describe the raw data; for EncodingMP3 they are ignored and
// read from the stream.
type Clip struct {
	Data       []byte
	Encoding   Encoding
	SampleRate int
	Channels   int
}

// Duration estimates the clip's playing time. Only meaningful for PCM
// clips; MP3 clips report zero.
func (c *Clip) Duration() time.Duration {
	if c.Encoding != EncodingPCM16 || c.SampleRate == 0 || c.Channels == 0 {
		return 0
	}
	frames := len(c.Data) / (BytesPerSample * c.Channels)
	return time.Duration(float64(frames) / float64(c.SampleRate) * float64(time.Second))
}

// Callbacks observe one playback run. All fields are optional.
type Callbacks struct {
	// OnPlay fires when audible playback begins.
	OnPlay func()
	// OnEnded fires on natural completion. It does not fire when playback
	// is stopped deliberately.
	OnEnded func()
	// OnError fires on playback failure.
	OnError func(error)
}

// Player plays one clip at a time. Play blocks until the clip finishes,
// the player is stopped, or the context is cancelled; a deliberate stop is
// a normal return, not an error.
type Player interface {
	Play(ctx context.Context, clip *Clip, cb Callbacks) error
	Pause()
	Resume()
	Stop()
	IsPlaying() bool
	IsPaused() bool
}

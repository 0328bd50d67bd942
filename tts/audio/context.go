package audio

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

var (
	otoContext *oto.Context
	otoOnce    sync.Once
	otoErr     error
)

// Context returns the process-wide oto audio context, creating it on
// first use. oto permits only one context per process, so every Player
// shares it.
func Context() (*oto.Context, error) {
	otoOnce.Do(func() {
		opts := &oto.NewContextOptions{
			SampleRate:   SampleRate,
			ChannelCount: ChannelCount,
			Format:       oto.FormatSignedInt16LE,
		}

		switch runtime.GOOS {
		case "darwin":
			// CoreAudio stutters with small buffers.
			opts.BufferSize = 100 * time.Millisecond
		case "linux":
			opts.BufferSize = 50 * time.Millisecond
		}

		ctx, ready, err := oto.NewContext(opts)
		if err != nil {
			otoErr = fmt.Errorf("unable to create audio context: %w", err)
			return
		}
		<-ready
		otoContext = ctx
	})

	return otoContext, otoErr
}

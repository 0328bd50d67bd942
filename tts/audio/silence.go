package audio

import (
	"math"
	"time"
)

// NearSilence generates a PCM clip carrying a 1 Hz sine at roughly -60 dB.
// It is inaudible but keeps the platform audio session from being torn
// down between utterances; true digital silence is optimized away by some
// mixers.
func NearSilence(d time.Duration) *Clip {
	frames := int(d.Seconds() * float64(SampleRate))
	data := make([]byte, frames*BytesPerSample*ChannelCount)

	const amplitude = 32 // ~0.001 of full scale
	for i := 0; i < frames; i++ {
		v := int16(amplitude * math.Sin(2*math.Pi*float64(i)/float64(SampleRate)))
		for ch := 0; ch < ChannelCount; ch++ {
			off := (i*ChannelCount + ch) * BytesPerSample
			data[off] = byte(v)
			data[off+1] = byte(uint16(v) >> 8)
		}
	}

	return &Clip{
		Data:       data,
		Encoding:   EncodingPCM16,
		SampleRate: SampleRate,
		Channels:   ChannelCount,
	}
}

package audio

import (
	"bytes"
	"fmt"
	"io"

	mp3 "github.com/hajimehoshi/go-mp3"
)

// decode converts a clip into raw PCM matching the output device format
// (signed 16-bit little-endian, SampleRate Hz, ChannelCount channels).
func decode(clip *Clip) ([]byte, error) {
	if clip == nil || len(clip.Data) == 0 {
		return nil, fmt.Errorf("empty audio clip")
	}

	switch clip.Encoding {
	case EncodingMP3:
		dec, err := mp3.NewDecoder(bytes.NewReader(clip.Data))
		if err != nil {
			return nil, fmt.Errorf("unable to decode mp3: %w", err)
		}
		pcm, err := io.ReadAll(dec)
		if err != nil {
			return nil, fmt.Errorf("unable to read mp3 stream: %w", err)
		}
		// go-mp3 always emits 16-bit stereo at the source sample rate.
		if dec.SampleRate() != SampleRate {
			return resample(pcm, dec.SampleRate(), SampleRate), nil
		}
		return pcm, nil

	case EncodingPCM16:
		pcm := clip.Data
		if clip.Channels == 1 {
			pcm = monoToStereo(pcm)
		}
		if clip.SampleRate != 0 && clip.SampleRate != SampleRate {
			pcm = resample(pcm, clip.SampleRate, SampleRate)
		}
		return pcm, nil
	}

	return nil, fmt.Errorf("unsupported audio encoding: %d", clip.Encoding)
}

// resample performs linear resampling of 16-bit stereo PCM.
func resample(input []byte, fromRate, toRate int) []byte {
	if fromRate == toRate || fromRate <= 0 || toRate <= 0 {
		return input
	}

	const frameSize = BytesPerSample * ChannelCount
	inFrames := len(input) / frameSize
	if inFrames == 0 {
		return nil
	}

	ratio := float64(fromRate) / float64(toRate)
	outFrames := int(float64(inFrames) / ratio)
	output := make([]byte, outFrames*frameSize)

	for i := 0; i < outFrames; i++ {
		srcPos := float64(i) * ratio
		idx := int(srcPos)
		frac := srcPos - float64(idx)

		next := idx + 1
		if next >= inFrames {
			next = inFrames - 1
		}

		for ch := 0; ch < ChannelCount; ch++ {
			a := readSample(input, idx*frameSize+ch*BytesPerSample)
			b := readSample(input, next*frameSize+ch*BytesPerSample)
			v := int16(float64(a) + (float64(b)-float64(a))*frac)
			writeSample(output, i*frameSize+ch*BytesPerSample, v)
		}
	}

	return output
}

// monoToStereo duplicates each 16-bit sample into both channels.
func monoToStereo(input []byte) []byte {
	samples := len(input) / BytesPerSample
	output := make([]byte, samples*BytesPerSample*2)
	for i := 0; i < samples; i++ {
		output[i*4] = input[i*2]
		output[i*4+1] = input[i*2+1]
		output[i*4+2] = input[i*2]
		output[i*4+3] = input[i*2+1]
	}
	return output
}

func readSample(data []byte, off int) int16 {
	if off+1 >= len(data) {
		return 0
	}
	return int16(uint16(data[off]) | uint16(data[off+1])<<8)
}

func writeSample(data []byte, off int, v int16) {
	if off+1 >= len(data) {
		return
	}
	data[off] = byte(v)
	data[off+1] = byte(uint16(v) >> 8)
}

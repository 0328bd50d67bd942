package tts

import (
	"context"
	"fmt"
	"time"
)

// DefaultLoopDelay is the pause between repetitions of a looped dialogue.
const DefaultLoopDelay = 1500 * time.Millisecond

// SpeakDialogueOptions configures a dialogue playback run.
type SpeakDialogueOptions struct {
	Settings *VoiceSettings
	// SpeakerVoices maps speaker labels to explicit voice ids. Speakers
	// absent from the map (or mapped to an id the provider no longer has)
	// fall back to round-robin assignment.
	SpeakerVoices map[string]string
	// Loop repeats the dialogue until stopped. Defaults to true for
	// continuous "radio" playback; set to a false pointer for a
	// one-shot run of a discrete script.
	Loop *bool
	// LoopDelay is the pause between repetitions. Zero means
	// DefaultLoopDelay. The wait is cancellable: a stop during the delay
	// takes effect immediately rather than at the next poll.
	LoopDelay   time.Duration
	OnLineStart func(index int)
	OnLineEnd   func(index int)
	OnComplete  func()
	OnError     func(error)
}

// SpeakDialogue plays a multi-speaker script in order through the
// provider, assigning each distinct speaker a voice.
//
// Assignment is deterministic: speakers discovered in first-appearance
// order receive voices[i % len(voices)], with explicit SpeakerVoices
// overrides taking precedence. Line i+1 never starts before line i's
// utterance has settled. A failure on any line aborts the whole dialogue;
// a skipped line with an unpredictable gap is worse than surfacing the
// error.
//
// A stop requested through the token returns nil without firing
// OnComplete or OnError. Context cancellation is treated as a stop.
func SpeakDialogue(ctx context.Context, provider Provider, lines []DialogueLine, token *Token, opts SpeakDialogueOptions) error {
	voices, err := provider.Voices(ctx)
	if err != nil {
		if opts.OnError != nil {
			opts.OnError(err)
		}
		return err
	}
	if len(voices) == 0 {
		err := fmt.Errorf("%w for provider %s", ErrNoVoices, provider.Type())
		if opts.OnError != nil {
			opts.OnError(err)
		}
		return err
	}

	assignment := AssignVoices(lines, voices, opts.SpeakerVoices)

	token.Reset()
	looping := true
	if opts.Loop != nil {
		looping = *opts.Loop
	}
	delay := opts.LoopDelay
	if delay <= 0 {
		delay = DefaultLoopDelay
	}

	for {
		for i := range lines {
			if token.Stopped() || ctx.Err() != nil {
				return nil
			}

			voice, ok := assignment[lines[i].Speaker]
			if !ok {
				continue
			}

			if opts.OnLineStart != nil {
				opts.OnLineStart(i)
			}

			err := provider.Speak(ctx, lines[i].Text, SpeakOptions{
				Voice:    voice,
				Settings: opts.Settings,
			})
			if err != nil {
				if token.Stopped() {
					return nil
				}
				if opts.OnError != nil {
					opts.OnError(err)
				}
				return err
			}

			// An interrupted line did not finish; don't report it as ended.
			if token.Stopped() || ctx.Err() != nil {
				return nil
			}
			if opts.OnLineEnd != nil {
				opts.OnLineEnd(i)
			}
		}

		if !looping || token.Stopped() || ctx.Err() != nil {
			break
		}

		// Breathe between repetitions without blocking cancellation.
		select {
		case <-ctx.Done():
			return nil
		case <-token.Done():
			return nil
		case <-time.After(delay):
		}
	}

	if token.Stopped() || ctx.Err() != nil {
		return nil
	}
	if opts.OnComplete != nil {
		opts.OnComplete()
	}
	return nil
}

// AssignVoices builds the speaker-to-voice map for a script. Distinct
// speakers are discovered in first-appearance order; speaker i receives
// voices[i % len(voices)] unless overrides names a voice id that exists
// in the pool. Every discovered speaker ends up with some voice.
func AssignVoices(lines []DialogueLine, voices []Voice, overrides map[string]string) map[string]Voice {
	byID := make(map[string]Voice, len(voices))
	for _, v := range voices {
		byID[v.ID] = v
	}

	assignment := make(map[string]Voice)
	next := 0
	for _, line := range lines {
		if _, ok := assignment[line.Speaker]; ok {
			continue
		}

		if id, ok := overrides[line.Speaker]; ok {
			if v, ok := byID[id]; ok {
				assignment[line.Speaker] = v
				next++
				continue
			}
		}

		assignment[line.Speaker] = voices[next%len(voices)]
		next++
	}
	return assignment
}

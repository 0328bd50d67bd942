package tts

import (
	"context"
	"fmt"
	"math/rand"
)

// SpeakTextOptions configures a single-text playback run.
type SpeakTextOptions struct {
	Settings *VoiceSettings
	// VoiceIDs restricts random voice selection to these ids. Ids that do
	// not resolve are ignored; when none resolve, the first available
	// voice is used.
	VoiceIDs   []string
	OnStart    func()
	OnComplete func()
	OnError    func(error)
}

// SpeakText plays one text through the provider with a randomly selected
// voice. Random selection keeps repeated plays of the same affirmation
// from sounding monotonous.
//
// OnComplete fires only on natural completion. A stop requested through
// the token resolves the call without firing OnComplete or OnError; a
// genuine failure fires OnError and is returned.
func SpeakText(ctx context.Context, provider Provider, text string, token *Token, opts SpeakTextOptions) error {
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

	voice := pickVoice(voices, opts.VoiceIDs)

	token.Reset()
	if opts.OnStart != nil {
		opts.OnStart()
	}

	err = provider.Speak(ctx, text, SpeakOptions{
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

	if !token.Stopped() && opts.OnComplete != nil {
		opts.OnComplete()
	}
	return nil
}

// pickVoice selects a voice uniformly at random, restricted to the
// candidate id list when one is given.
func pickVoice(voices []Voice, candidateIDs []string) Voice {
	if len(candidateIDs) > 0 {
		id := candidateIDs[rand.Intn(len(candidateIDs))]
		for _, v := range voices {
			if v.ID == id {
				return v
			}
		}
		return voices[0]
	}
	return voices[rand.Intn(len(voices))]
}

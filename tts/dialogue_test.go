package tts_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/murmurfm/murmur/tts"
	"github.com/murmurfm/murmur/tts/providers"
)

func boolPtr(b bool) *bool { return &b }

func script(speakers ...string) []tts.DialogueLine {
	lines := make([]tts.DialogueLine, len(speakers))
	for i, s := range speakers {
		lines[i] = tts.DialogueLine{
			ID:      fmt.Sprintf("line-%d", i+1),
			Speaker: s,
			Text:    fmt.Sprintf("line %d from %s", i+1, s),
		}
	}
	return lines
}

func TestDialogueCallbackOrder(t *testing.T) {
	mock := providers.NewMock()
	token := tts.NewToken()

	var events []string
	err := tts.SpeakDialogue(context.Background(), mock, script("A", "B"), token, tts.SpeakDialogueOptions{
		Loop:        boolPtr(false),
		OnLineStart: func(i int) { events = append(events, fmt.Sprintf("start-%d", i)) },
		OnLineEnd:   func(i int) { events = append(events, fmt.Sprintf("end-%d", i)) },
		OnComplete:  func() { events = append(events, "complete") },
		OnError:     func(error) { events = append(events, "error") },
	})
	if err != nil {
		t.Fatalf("SpeakDialogue failed: %v", err)
	}

	want := []string{"start-0", "end-0", "start-1", "end-1", "complete"}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("events = %v, want %v", events, want)
	}
}

func TestDialogueRoundRobinAssignment(t *testing.T) {
	mock := providers.NewMock()
	token := tts.NewToken()

	// Three speakers over a two-voice catalog wrap around.
	err := tts.SpeakDialogue(context.Background(), mock, script("A", "B", "C"), token, tts.SpeakDialogueOptions{
		Loop: boolPtr(false),
	})
	if err != nil {
		t.Fatalf("SpeakDialogue failed: %v", err)
	}

	want := []string{"mock-0", "mock-1", "mock-0"}
	if got := mock.SpokenVoices(); !reflect.DeepEqual(got, want) {
		t.Errorf("spoken voices = %v, want %v", got, want)
	}
}

func TestDialogueSpeakerConsistency(t *testing.T) {
	mock := providers.NewMock()
	token := tts.NewToken()

	// The same speaker keeps its voice across lines.
	err := tts.SpeakDialogue(context.Background(), mock, script("Mentor", "Friend", "Mentor", "Friend"), token, tts.SpeakDialogueOptions{
		Loop: boolPtr(false),
	})
	if err != nil {
		t.Fatalf("SpeakDialogue failed: %v", err)
	}

	want := []string{"mock-0", "mock-1", "mock-0", "mock-1"}
	if got := mock.SpokenVoices(); !reflect.DeepEqual(got, want) {
		t.Errorf("spoken voices = %v, want %v", got, want)
	}
}

func TestAssignVoices(t *testing.T) {
	voices := []tts.Voice{
		{ID: "v0", Provider: tts.ProviderMock},
		{ID: "v1", Provider: tts.ProviderMock},
	}

	tests := []struct {
		name      string
		speakers  []string
		overrides map[string]string
		want      map[string]string
	}{
		{
			name:     "first appearance order",
			speakers: []string{"A", "B", "A", "C"},
			want:     map[string]string{"A": "v0", "B": "v1", "C": "v0"},
		},
		{
			name:      "override takes precedence",
			speakers:  []string{"A", "B"},
			overrides: map[string]string{"A": "v1"},
			want:      map[string]string{"A": "v1", "B": "v1"},
		},
		{
			name:      "stale override falls back to round robin",
			speakers:  []string{"A", "B"},
			overrides: map[string]string{"A": "gone"},
			want:      map[string]string{"A": "v0", "B": "v1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tts.AssignVoices(script(tt.speakers...), voices, tt.overrides)
			if len(got) != len(tt.want) {
				t.Fatalf("assigned %d speakers, want %d", len(got), len(tt.want))
			}
			for speaker, wantID := range tt.want {
				if got[speaker].ID != wantID {
					t.Errorf("%s assigned %s, want %s", speaker, got[speaker].ID, wantID)
				}
			}
		})
	}
}

func TestDialogueStopDuringLine(t *testing.T) {
	mock := providers.NewMock()
	mock.SetSpeakDelay(time.Second)
	token := tts.NewToken()

	var starts []int
	var completes, errs int
	secondLine := make(chan struct{})

	done := make(chan error, 1)
	go func() {
		done <- tts.SpeakDialogue(context.Background(), mock, script("A", "B", "C"), token, tts.SpeakDialogueOptions{
			Loop: boolPtr(false),
			OnLineStart: func(i int) {
				starts = append(starts, i)
				if i == 1 {
					close(secondLine)
				}
			},
			OnComplete: func() { completes++ },
			OnError:    func(error) { errs++ },
		})
	}()

	select {
	case <-secondLine:
	case <-time.After(5 * time.Second):
		t.Fatal("second line never started")
	}

	token.Stop()
	mock.Stop()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("stopped dialogue returned %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("SpeakDialogue did not resolve after stop")
	}

	if want := []int{0, 1}; !reflect.DeepEqual(starts, want) {
		t.Errorf("line starts = %v, want %v", starts, want)
	}
	if completes != 0 || errs != 0 {
		t.Errorf("completes=%d errs=%d after stop, want 0 0", completes, errs)
	}
}

func TestDialogueLoopsUntilStopped(t *testing.T) {
	mock := providers.NewMock()
	token := tts.NewToken()

	var completes int
	starts := 0
	enough := make(chan struct{})

	done := make(chan error, 1)
	go func() {
		// Loop defaults to true when unset.
		done <- tts.SpeakDialogue(context.Background(), mock, script("A", "B"), token, tts.SpeakDialogueOptions{
			LoopDelay: 5 * time.Millisecond,
			OnLineStart: func(int) {
				starts++
				if starts == 5 {
					close(enough)
				}
			},
			OnComplete: func() { completes++ },
		})
	}()

	select {
	case <-enough:
	case <-time.After(5 * time.Second):
		t.Fatal("dialogue never reached a third repetition")
	}

	token.Stop()
	mock.Stop()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("stopped loop returned %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("SpeakDialogue did not resolve after stop")
	}

	if starts < 5 {
		t.Errorf("saw %d line starts, want at least 5", starts)
	}
	if completes != 0 {
		t.Errorf("OnComplete fired %d times for an endless loop", completes)
	}
}

func TestDialogueStopDuringLoopDelay(t *testing.T) {
	mock := providers.NewMock()
	token := tts.NewToken()

	firstPass := make(chan struct{})
	var passEnds int

	done := make(chan error, 1)
	go func() {
		done <- tts.SpeakDialogue(context.Background(), mock, script("A"), token, tts.SpeakDialogueOptions{
			LoopDelay: time.Hour,
			OnLineEnd: func(int) {
				passEnds++
				if passEnds == 1 {
					close(firstPass)
				}
			},
		})
	}()

	select {
	case <-firstPass:
	case <-time.After(5 * time.Second):
		t.Fatal("first pass never finished")
	}

	// The stop must cut the hour-long delay short.
	token.Stop()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("stopped dialogue returned %v, want nil", err)
		}
	case <-time.After(time.Second):
		t.Fatal("stop during the between-repetition delay did not take effect")
	}
}

func TestDialogueEmptyCatalog(t *testing.T) {
	mock := providers.NewMock()
	mock.SetVoices(nil)
	token := tts.NewToken()

	var starts, errs int
	err := tts.SpeakDialogue(context.Background(), mock, script("A", "B"), token, tts.SpeakDialogueOptions{
		OnLineStart: func(int) { starts++ },
		OnError:     func(error) { errs++ },
	})

	if !errors.Is(err, tts.ErrNoVoices) {
		t.Errorf("error = %v, want ErrNoVoices", err)
	}
	if errs != 1 {
		t.Errorf("OnError fired %d times, want 1", errs)
	}
	if starts != 0 {
		t.Errorf("OnLineStart fired %d times, want 0", starts)
	}
}

func TestDialogueSpeakErrorAborts(t *testing.T) {
	mock := providers.NewMock()
	wantErr := errors.New("synthesis exploded")
	mock.FailSpeakWith(wantErr)
	token := tts.NewToken()

	var starts, completes, errs int
	err := tts.SpeakDialogue(context.Background(), mock, script("A", "B"), token, tts.SpeakDialogueOptions{
		Loop:        boolPtr(false),
		OnLineStart: func(int) { starts++ },
		OnComplete:  func() { completes++ },
		OnError:     func(error) { errs++ },
	})

	if !errors.Is(err, wantErr) {
		t.Errorf("error = %v, want %v", err, wantErr)
	}
	if starts != 1 {
		t.Errorf("OnLineStart fired %d times, want 1: a failed line aborts the script", starts)
	}
	if completes != 0 || errs != 1 {
		t.Errorf("completes=%d errs=%d, want 0 1", completes, errs)
	}
}

func TestDialogueVoiceOverrides(t *testing.T) {
	mock := providers.NewMock()
	token := tts.NewToken()

	err := tts.SpeakDialogue(context.Background(), mock, script("A", "B"), token, tts.SpeakDialogueOptions{
		Loop:          boolPtr(false),
		SpeakerVoices: map[string]string{"A": "mock-1"},
	})
	if err != nil {
		t.Fatalf("SpeakDialogue failed: %v", err)
	}

	want := []string{"mock-1", "mock-1"}
	if got := mock.SpokenVoices(); !reflect.DeepEqual(got, want) {
		t.Errorf("spoken voices = %v, want %v", got, want)
	}
}

func TestDialogueEmptyScript(t *testing.T) {
	mock := providers.NewMock()
	token := tts.NewToken()

	var completes int
	err := tts.SpeakDialogue(context.Background(), mock, nil, token, tts.SpeakDialogueOptions{
		Loop:       boolPtr(false),
		OnComplete: func() { completes++ },
	})
	if err != nil {
		t.Fatalf("SpeakDialogue failed: %v", err)
	}
	if completes != 1 {
		t.Errorf("OnComplete fired %d times for an empty one-shot script, want 1", completes)
	}
	if mock.SpeakCount() != 0 {
		t.Errorf("Speak called %d times for an empty script", mock.SpeakCount())
	}
}

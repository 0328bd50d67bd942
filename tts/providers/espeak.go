package providers

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/murmurfm/murmur/tts"
)

// defaultVoiceTimeout bounds voice enumeration so a wedged engine binary
// cannot hang the caller.
const defaultVoiceTimeout = 3 * time.Second

// espeakCandidates are the engine binaries probed in order. say is the
// macOS system synthesizer and takes different flags.
var espeakCandidates = []string{"espeak-ng", "espeak", "say"}

// ESpeak drives a local speech engine subprocess. Unlike the HTTP
// providers it produces no reusable audio, so it bypasses the cache and
// the player entirely; the engine owns the audio device for the duration
// of each utterance.
type ESpeak struct {
	mu           sync.Mutex
	config       tts.ProviderConfig
	binary       string
	voiceTimeout time.Duration

	cmd      *exec.Cmd
	stopping bool
	paused   bool
}

// NewESpeak creates the engine provider. An empty Binary probes the
// known engine names on PATH.
func NewESpeak(cfg tts.ESpeakConfig) *ESpeak {
	timeout := cfg.VoiceTimeout
	if timeout <= 0 {
		timeout = defaultVoiceTimeout
	}
	return &ESpeak{
		binary:       discoverEngine(cfg.Binary),
		voiceTimeout: timeout,
	}
}

func discoverEngine(override string) string {
	if override != "" {
		if path, err := exec.LookPath(override); err == nil {
			return path
		}
		log.Warn("configured speech engine not found, probing defaults", "binary", override)
	}
	for _, name := range espeakCandidates {
		if path, err := exec.LookPath(name); err == nil {
			log.Debug("speech engine found", "binary", path)
			return path
		}
	}
	return ""
}

// isSay reports whether the discovered engine is the macOS synthesizer.
func (p *ESpeak) isSay() bool {
	return strings.HasSuffix(p.binary, "/say") || p.binary == "say"
}

func (p *ESpeak) Name() string           { return "System Speech Engine" }
func (p *ESpeak) Type() tts.ProviderType { return tts.ProviderESpeak }

func (p *ESpeak) Initialize(config tts.ProviderConfig) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.config = config
	return nil
}

// Voices enumerates the engine's voice catalog, bounded by the voice
// timeout. Engines with large catalogs can be slow to answer.
func (p *ESpeak) Voices(ctx context.Context) ([]tts.Voice, error) {
	p.mu.Lock()
	binary := p.binary
	timeout := p.voiceTimeout
	p.mu.Unlock()

	if binary == "" {
		return nil, tts.ErrEngineNotFound
	}

	enumCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var cmd *exec.Cmd
	if p.isSay() {
		cmd = exec.CommandContext(enumCtx, binary, "-v", "?")
	} else {
		cmd = exec.CommandContext(enumCtx, binary, "--voices")
	}

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("voice enumeration failed: %w", err)
	}

	if p.isSay() {
		return parseSayVoices(out), nil
	}
	return parseESpeakVoices(out), nil
}

// parseESpeakVoices parses `espeak --voices` output. Each line after the
// header reads: Pty Language Age/Gender VoiceName File Other.
func parseESpeakVoices(out []byte) []tts.Voice {
	var voices []tts.Voice
	lines := strings.Split(string(out), "\n")
	for i, line := range lines {
		if i == 0 || strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}
		voices = append(voices, tts.Voice{
			ID:       fields[3],
			Name:     fields[3],
			Provider: tts.ProviderESpeak,
			Language: fields[1],
		})
	}
	return voices
}

// parseSayVoices parses `say -v ?` output. Each line reads:
// Name language_tag # sample sentence.
func parseSayVoices(out []byte) []tts.Voice {
	var voices []tts.Voice
	for _, line := range strings.Split(string(out), "\n") {
		before, _, ok := strings.Cut(line, "#")
		if !ok {
			continue
		}
		fields := strings.Fields(before)
		if len(fields) < 2 {
			continue
		}
		lang := strings.ReplaceAll(fields[len(fields)-1], "_", "-")
		name := strings.Join(fields[:len(fields)-1], " ")
		voices = append(voices, tts.Voice{
			ID:       name,
			Name:     name,
			Provider: tts.ProviderESpeak,
			Language: lang,
		})
	}
	return voices
}

// PreferredVoices narrows the catalog to the configured language prefix,
// falling back to the full catalog when nothing matches.
func (p *ESpeak) PreferredVoices(ctx context.Context) ([]tts.Voice, error) {
	voices, err := p.Voices(ctx)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	lang := p.config.Language
	p.mu.Unlock()
	if lang == "" {
		return voices, nil
	}

	preferred := make([]tts.Voice, 0, len(voices))
	for _, v := range voices {
		if strings.HasPrefix(strings.ToLower(v.Language), strings.ToLower(lang)) {
			preferred = append(preferred, v)
		}
	}
	if len(preferred) == 0 {
		return voices, nil
	}
	return preferred, nil
}

// Speak runs one engine subprocess to completion. A Stop kills the
// subprocess and resolves the call with nil.
func (p *ESpeak) Speak(ctx context.Context, text string, opts tts.SpeakOptions) error {
	p.Stop()

	p.mu.Lock()
	binary := p.binary
	settings := tts.DefaultVoiceSettings()
	if p.config.VoiceSettings != nil {
		settings = *p.config.VoiceSettings
	}
	p.mu.Unlock()
	if opts.Settings != nil {
		settings = *opts.Settings
	}

	if binary == "" {
		err := tts.ErrEngineNotFound
		if opts.OnError != nil {
			opts.OnError(err)
		}
		return err
	}

	cmd := exec.Command(binary, p.speakArgs(text, opts.Voice, settings)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		err = fmt.Errorf("speech engine start: %w", err)
		if opts.OnError != nil {
			opts.OnError(err)
		}
		return err
	}

	p.mu.Lock()
	p.cmd = cmd
	p.stopping = false
	p.paused = false
	p.mu.Unlock()

	if opts.OnStart != nil {
		opts.OnStart()
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	var waitErr error
	select {
	case <-ctx.Done():
		p.Stop()
		<-done
		return nil
	case waitErr = <-done:
	}

	p.mu.Lock()
	stopped := p.stopping
	if p.cmd == cmd {
		p.cmd = nil
		p.paused = false
	}
	p.mu.Unlock()

	if stopped {
		return nil
	}
	if waitErr != nil {
		err := &tts.ProviderError{
			Provider: tts.ProviderESpeak,
			Message:  strings.TrimSpace(stderr.String()),
			Err:      waitErr,
		}
		if opts.OnError != nil {
			opts.OnError(err)
		}
		return err
	}

	if opts.OnEnd != nil {
		opts.OnEnd()
	}
	return nil
}

// speakArgs maps the neutral settings onto engine flags. espeak speaks
// at 175 words per minute by default; say takes a rate in the same unit.
func (p *ESpeak) speakArgs(text string, voice tts.Voice, settings tts.VoiceSettings) []string {
	wpm := int(settings.Rate * 175)
	if wpm <= 0 {
		wpm = 175
	}

	if p.isSay() {
		args := []string{"-r", strconv.Itoa(wpm)}
		if voice.ID != "" {
			args = append(args, "-v", voice.ID)
		}
		return append(args, text)
	}

	amplitude := int(settings.Volume * 100)
	if amplitude < 0 {
		amplitude = 0
	} else if amplitude > 200 {
		amplitude = 200
	}
	pitch := int(settings.Pitch * 50)
	if pitch < 0 {
		pitch = 0
	} else if pitch > 99 {
		pitch = 99
	}

	args := []string{
		"-s", strconv.Itoa(wpm),
		"-a", strconv.Itoa(amplitude),
		"-p", strconv.Itoa(pitch),
	}
	if voice.ID != "" {
		args = append(args, "-v", voice.ID)
	}
	return append(args, text)
}

// Pause suspends the engine subprocess. No-op when nothing is playing or
// the platform cannot signal processes.
func (p *ESpeak) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd == nil || p.cmd.Process == nil || p.paused {
		return
	}
	if err := suspendProcess(p.cmd.Process); err != nil {
		log.Warn("unable to pause speech engine", "err", err)
		return
	}
	p.paused = true
}

// Resume continues a paused subprocess.
func (p *ESpeak) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd == nil || p.cmd.Process == nil || !p.paused {
		return
	}
	if err := resumeProcess(p.cmd.Process); err != nil {
		log.Warn("unable to resume speech engine", "err", err)
		return
	}
	p.paused = false
}

// Stop kills the engine subprocess. The interrupted Speak resolves with
// nil rather than reporting the kill as a failure. Playback state resets
// here rather than when the waiting goroutine observes the exit.
func (p *ESpeak) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd == nil || p.cmd.Process == nil {
		return
	}
	p.stopping = true
	if p.paused {
		// A suspended process cannot honor a kill until it runs again.
		resumeProcess(p.cmd.Process)
	}
	p.cmd.Process.Kill()
	p.cmd = nil
	p.paused = false
}

func (p *ESpeak) PlaybackState() tts.PlaybackState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return tts.PlaybackState{
		IsPlaying: p.cmd != nil && !p.paused,
		IsPaused:  p.cmd != nil && p.paused,
	}
}

func (p *ESpeak) Dispose() {
	p.Stop()
}

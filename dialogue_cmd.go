package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/murmurfm/murmur/gen"
	"github.com/murmurfm/murmur/tts"
	"github.com/murmurfm/murmur/tts/audio"
	"github.com/murmurfm/murmur/ui"
)

var (
	dialogueTopic    string
	dialogueSpeakers []string
	dialogueLines    int
	dialogueLoop     bool
	dialoguePlain    bool
	dialogueVoiceMap map[string]string

	dialogueSpeakerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))

	dialogueCmd = &cobra.Command{
		Use:   "dialogue [FILE]",
		Short: "Play a multi-speaker dialogue",
		Long: paragraph(fmt.Sprintf(
			"\nPlay a %s from a YAML script, or generate one on the fly with --topic.",
			keyword("multi-speaker dialogue"),
		)),
		Example: paragraph("murmur dialogue script.yml\nmurmur dialogue --topic \"learning Korean\" --loop=false"),
		Args:    cobra.MaximumNArgs(1),
		RunE:    playDialogue,
	}
)

// dialogueScript is the YAML shape of a script file: either a bare list
// of lines or a document with a lines key.
type dialogueScript struct {
	Lines []tts.DialogueLine `yaml:"lines"`
}

func loadDialogueFile(path string) ([]tts.DialogueLine, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read script: %w", err)
	}

	var script dialogueScript
	if err := yaml.Unmarshal(b, &script); err == nil && len(script.Lines) > 0 {
		return script.Lines, nil
	}

	var lines []tts.DialogueLine
	if err := yaml.Unmarshal(b, &lines); err != nil {
		return nil, fmt.Errorf("unable to parse script: %w", err)
	}
	return lines, nil
}

func playDialogue(cmd *cobra.Command, args []string) error {
	cfg, err := loadTTSConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	var lines []tts.DialogueLine
	switch {
	case dialogueTopic != "":
		generator, err := gen.NewGenerator(cfg.OpenAI.APIKey)
		if err != nil {
			return err
		}
		lines, err = generator.Generate(ctx, gen.Options{
			Topic:    dialogueTopic,
			Speakers: dialogueSpeakers,
			Lines:    dialogueLines,
			Language: cfg.Language,
		})
		if err != nil {
			return err
		}
	case len(args) == 1:
		lines, err = loadDialogueFile(args[0])
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("nothing to play: pass a script file or --topic")
	}

	manager, err := newManager(ctx, cfg)
	if err != nil {
		return err
	}
	defer manager.Dispose()

	if cfg.KeepAlive {
		ka := tts.NewKeepAlive(audio.NewPlayer())
		ka.Start()
		defer ka.Stop()
	}

	settings := cfg.VoiceSettings()
	loop := dialogueLoop
	opts := tts.SpeakDialogueOptions{
		Settings:      &settings,
		SpeakerVoices: dialogueVoiceMap,
		Loop:          &loop,
		LoopDelay:     cfg.LoopDelay,
	}

	if dialoguePlain || !term.IsTerminal(int(os.Stdout.Fd())) {
		return playDialoguePlain(ctx, manager, lines, opts)
	}
	return ui.RunDialogue(ctx, manager, lines, opts)
}

// playDialoguePlain plays without the interactive screen, echoing each
// line as it starts. Interrupt stops playback through the context.
func playDialoguePlain(ctx context.Context, manager *tts.Manager, lines []tts.DialogueLine, opts tts.SpeakDialogueOptions) error {
	opts.OnLineStart = func(i int) {
		fmt.Printf("%s %s\n", dialogueSpeakerStyle.Render(lines[i].Speaker+":"), lines[i].Text)
	}

	token := tts.NewToken()
	return tts.SpeakDialogue(ctx, manager.Provider(), lines, token, opts)
}

func init() {
	dialogueCmd.Flags().StringVarP(&dialogueTopic, "topic", "t", "", "generate a dialogue about this topic")
	dialogueCmd.Flags().StringSliceVar(&dialogueSpeakers, "speakers", nil, "speaker labels for generated dialogues")
	dialogueCmd.Flags().IntVarP(&dialogueLines, "lines", "n", 0, "number of lines to generate")
	dialogueCmd.Flags().BoolVar(&dialogueLoop, "loop", true, "repeat the dialogue until stopped")
	dialogueCmd.Flags().BoolVar(&dialoguePlain, "plain", false, "play without the interactive screen")
	dialogueCmd.Flags().StringToStringVar(&dialogueVoiceMap, "voice-map", nil, "speaker=voice-id overrides")
}

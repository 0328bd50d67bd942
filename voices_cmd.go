package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/murmurfm/murmur/tts"
)

var (
	voicesAll bool

	voiceIDStyle   = lipgloss.NewStyle().Bold(true)
	voiceLangStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	voicesCmd = &cobra.Command{
		Use:     "voices",
		Short:   "List the voices of the configured provider",
		Example: paragraph("murmur voices\nmurmur voices -P elevenlabs --all"),
		Args:    cobra.NoArgs,
		RunE:    listVoices,
	}
)

func listVoices(cmd *cobra.Command, _ []string) error {
	cfg, err := loadTTSConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	manager, err := newManager(ctx, cfg)
	if err != nil {
		return err
	}
	defer manager.Dispose()

	provider := manager.Provider()
	var voices []tts.Voice
	if voicesAll {
		voices, err = provider.Voices(ctx)
	} else {
		voices, err = provider.PreferredVoices(ctx)
	}
	if err != nil {
		return err
	}
	if len(voices) == 0 {
		return fmt.Errorf("%w for provider %s", tts.ErrNoVoices, provider.Type())
	}

	plain := !term.IsTerminal(int(os.Stdout.Fd()))
	for _, v := range voices {
		if plain {
			fmt.Printf("%s\t%s\t%s\n", v.ID, v.Name, v.Language)
			continue
		}
		line := voiceIDStyle.Render(v.ID)
		if v.Name != "" && v.Name != v.ID {
			line += " " + v.Name
		}
		if v.Language != "" {
			line += " " + voiceLangStyle.Render(v.Language)
		}
		fmt.Println(line)
	}
	return nil
}

func init() {
	voicesCmd.Flags().BoolVarP(&voicesAll, "all", "a", false, "show the full catalog, not just the preferred language")
}

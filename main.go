// Package main provides the entry point for the murmur CLI.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/murmurfm/murmur/tts"
	"github.com/murmurfm/murmur/tts/audio"
	"github.com/murmurfm/murmur/tts/providers"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile   string
	providerName string
	voiceIDs     []string
	language     string
	rate         float64
	keepAlive    bool

	rootCmd = &cobra.Command{
		Use:   "murmur [text]",
		Short: "Speak text aloud, with pizzazz!",
		Long: paragraph(
			fmt.Sprintf("\nSpeak text aloud through %s text-to-speech backends.", keyword("pluggable")),
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.ArbitraryArgs,
		RunE:             execute,
	}
)

// textFromInput reads the text to speak from the arguments, or from
// stdin when it is a pipe.
func textFromInput(args []string) (string, error) {
	if yes, err := stdinIsPipe(); err != nil {
		return "", err
	} else if yes {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("unable to read from stdin: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}

	return strings.TrimSpace(strings.Join(args, " ")), nil
}

func stdinIsPipe() (bool, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false, fmt.Errorf("unable to stat stdin: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0 {
		return true, nil
	}
	return false, nil
}

// loadTTSConfig resolves the effective configuration: defaults, then the
// config file, then environment, then explicit flags.
func loadTTSConfig(cmd *cobra.Command) (tts.Config, error) {
	cfg, err := tts.LoadConfigFromViper()
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("provider") {
		cfg.Provider = providerName
	}
	if flags.Changed("language") {
		cfg.Language = language
	}
	if flags.Changed("rate") {
		cfg.Rate = rate
	}
	if flags.Changed("keepalive") {
		cfg.KeepAlive = keepAlive
	}
	return cfg, nil
}

// newManager builds the provider registry and activates the configured
// provider.
func newManager(ctx context.Context, cfg tts.Config) (*tts.Manager, error) {
	cache := tts.NewCache(cfg.CacheSize, nil)
	factory := providers.Factory(cfg.ESpeak, cache, func() audio.Player {
		return audio.NewPlayer()
	})
	manager := tts.NewManager(factory)

	pt := tts.ProviderType(cfg.Provider)
	if err := manager.SetProvider(ctx, pt, cfg.ProviderConfigFor(pt)); err != nil {
		return nil, err
	}
	return manager, nil
}

func execute(cmd *cobra.Command, args []string) error {
	text, err := textFromInput(args)
	if err != nil {
		return err
	}
	if text == "" {
		return cmd.Help()
	}

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

	if cfg.KeepAlive {
		ka := tts.NewKeepAlive(audio.NewPlayer())
		ka.Start()
		defer ka.Stop()
	}

	settings := cfg.VoiceSettings()
	token := tts.NewToken()
	return tts.SpeakText(ctx, manager.Provider(), text, token, tts.SpeakTextOptions{
		Settings: &settings,
		VoiceIDs: voiceIDs,
		OnStart: func() {
			log.Debug("speaking", "chars", len(text))
		},
		OnError: func(err error) {
			log.Error("playback failed", "err", err)
		},
	})
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.PersistentFlags().StringVarP(&providerName, "provider", "P", "", "TTS provider (espeak/elevenlabs/openai/google/mock)")
	rootCmd.PersistentFlags().StringVarP(&language, "language", "L", "", "preferred voice language tag")
	rootCmd.PersistentFlags().Float64VarP(&rate, "rate", "r", 1.0, "speech rate multiplier")
	rootCmd.Flags().StringSliceVarP(&voiceIDs, "voice", "v", nil, "restrict voice selection to these ids")
	rootCmd.Flags().BoolVar(&keepAlive, "keepalive", false, "keep the audio session warm between utterances")

	rootCmd.AddCommand(configCmd, voicesCmd, dialogueCmd, manCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "murmur")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "murmur")}, dirs...)
	}

	if c := os.Getenv("MURMUR_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("murmur")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("murmur")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "murmur.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# TTS (Text-to-Speech) configuration
tts:
  # provider: espeak, elevenlabs, openai, or google
  provider: "espeak"
  # preferred voice language tag
  language: "en"
  # speech rate multiplier (0 < rate <= 4.0)
  rate: 1.0
  # pitch multiplier
  pitch: 1.0
  # volume multiplier (0.0 to 2.0)
  volume: 1.0
  # number of generated clips kept in memory
  cache_size: 50
  # keep the audio session warm between utterances
  keep_alive: false
  # pause between repetitions of looped dialogues
  loop_delay: "1500ms"

  # Platform speech engine configuration
  espeak:
    # binary: "espeak-ng"
    voice_timeout: "3s"

  # ElevenLabs configuration
  elevenlabs:
    # api_key: "your-api-key-here"
    model: "eleven_multilingual_v2"

  # OpenAI speech configuration
  openai:
    # api_key: "your-api-key-here"
    model: "gpt-4o-mini-tts"

  # Google Cloud Text-to-Speech configuration. An empty api_key uses
  # application default credentials.
  google:
    # api_key: "your-api-key-here"
`

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the murmur config file",
	Long:    paragraph(fmt.Sprintf("\n%s the murmur config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("murmur config\nmurmur config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("Murmur", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
		if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil {
			return fmt.Errorf("could not write configuration file: %w", err)
		}
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil { // some other error occurred
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}

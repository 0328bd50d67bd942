package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var (
	paragraphStyle = lipgloss.NewStyle().Width(78).Padding(0, 0, 0, 2)
	keywordStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#ECFD65"})
)

// paragraph formats command help text.
func paragraph(s string) string {
	return paragraphStyle.Render(s)
}

// keyword highlights a word in help text.
func keyword(s string) string {
	return keywordStyle.Render(s)
}

// setupLog routes logging away from stdout so it never garbles program
// output. MURMUR_LOGFILE selects a file sink; MURMUR_DEBUG raises the
// level. The returned closer flushes the sink.
func setupLog() (func() error, error) {
	log.SetOutput(io.Discard)

	if os.Getenv("MURMUR_DEBUG") != "" {
		log.SetOutput(os.Stderr)
		log.SetLevel(log.DebugLevel)
	}

	if path := os.Getenv("MURMUR_LOGFILE"); path != "" {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("unable to open log file: %w", err)
		}
		log.SetOutput(f)
		log.SetLevel(log.DebugLevel)
		return f.Close, nil
	}

	return func() error { return nil }, nil
}

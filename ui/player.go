// Package ui renders the interactive playback screen.
package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/murmurfm/murmur/tts"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	speakerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	lineStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	pausedStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
)

type lineStartMsg struct{ index int }
type lineEndMsg struct{ index int }
type completeMsg struct{}
type playbackErrMsg struct{ err error }

// playerModel is the dialogue playback screen. Playback itself runs in a
// goroutine; the model only reflects its callbacks.
type playerModel struct {
	manager *tts.Manager
	token   *tts.Token
	lines   []tts.DialogueLine
	spinner spinner.Model

	current int
	paused  bool
	done    bool
	err     error
}

func newPlayerModel(manager *tts.Manager, token *tts.Token, lines []tts.DialogueLine) playerModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	return playerModel{
		manager: manager,
		token:   token,
		lines:   lines,
		spinner: sp,
		current: -1,
	}
}

func (m playerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m playerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case " ":
			if m.paused {
				m.manager.Resume()
			} else {
				m.manager.Pause()
			}
			m.paused = !m.paused
			return m, nil
		case "s", "q", "ctrl+c", "esc":
			m.token.Stop()
			m.manager.Stop()
			return m, tea.Quit
		}

	case lineStartMsg:
		m.current = msg.index
		return m, nil

	case lineEndMsg:
		return m, nil

	case completeMsg:
		m.done = true
		return m, tea.Quit

	case playbackErrMsg:
		m.err = msg.err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m playerModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("murmur"))
	b.WriteString("\n\n")

	for i, line := range m.lines {
		marker := "  "
		if i == m.current && !m.done {
			marker = m.spinner.View()
		}
		rendered := fmt.Sprintf("%s%s %s",
			marker,
			speakerStyle.Render(line.Speaker+":"),
			lineStyle.Render(line.Text))
		if i != m.current {
			rendered = dimStyle.Render(fmt.Sprintf("  %s: %s", line.Speaker, line.Text))
		}
		b.WriteString(rendered)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case m.err != nil:
		b.WriteString(errStyle.Render("playback failed: " + m.err.Error()))
	case m.paused:
		b.WriteString(pausedStyle.Render("paused") + dimStyle.Render("  space resume • s stop"))
	default:
		b.WriteString(dimStyle.Render("space pause • s stop"))
	}
	b.WriteString("\n")
	return b.String()
}

// RunDialogue plays a dialogue behind the interactive screen. It blocks
// until playback finishes or the user stops it.
func RunDialogue(ctx context.Context, manager *tts.Manager, lines []tts.DialogueLine, opts tts.SpeakDialogueOptions) error {
	provider := manager.Provider()
	if provider == nil {
		return tts.ErrNoProvider
	}

	token := tts.NewToken()
	m := newPlayerModel(manager, token, lines)
	p := tea.NewProgram(m)

	userStart := opts.OnLineStart
	userErr := opts.OnError
	userComplete := opts.OnComplete
	opts.OnLineStart = func(i int) {
		p.Send(lineStartMsg{index: i})
		if userStart != nil {
			userStart(i)
		}
	}
	opts.OnLineEnd = func(i int) { p.Send(lineEndMsg{index: i}) }
	opts.OnComplete = func() {
		p.Send(completeMsg{})
		if userComplete != nil {
			userComplete()
		}
	}
	opts.OnError = func(err error) {
		p.Send(playbackErrMsg{err: err})
		if userErr != nil {
			userErr(err)
		}
	}

	errc := make(chan error, 1)
	go func() {
		errc <- tts.SpeakDialogue(ctx, provider, lines, token, opts)
		// Stopped playback sends no completion message, so make sure the
		// screen comes down either way.
		p.Send(completeMsg{})
	}()

	if _, err := p.Run(); err != nil {
		token.Stop()
		manager.Stop()
		<-errc
		return err
	}

	token.Stop()
	manager.Stop()
	return <-errc
}

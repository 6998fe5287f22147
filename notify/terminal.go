// Package notify provides generate.Notifier implementations for terminals
// and logs.
package notify

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	messageStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
)

// Terminal reports progress with a spinner and prints messages. When the
// writer is not a terminal it falls back to plain lines.
type Terminal struct {
	w      io.Writer
	tty    bool
	copyFn func(string) error

	mu   sync.Mutex
	prog *tea.Program
	done chan struct{}
}

// Option configures a Terminal.
type Option func(*Terminal)

// WithClipboard copies every shown message to the system clipboard.
func WithClipboard() Option {
	return func(t *Terminal) { t.copyFn = clipboard.WriteAll }
}

// NewTerminal creates a Terminal writing to w (usually os.Stderr).
func NewTerminal(w io.Writer, opts ...Option) *Terminal {
	t := &Terminal{w: w}
	if f, ok := w.(*os.File); ok {
		t.tty = term.IsTerminal(int(f.Fd()))
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// StartProgress implements generate.Notifier.
func (t *Terminal) StartProgress(title, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.prog != nil {
		return
	}
	if !t.tty {
		fmt.Fprintf(t.w, "%s: %s\n", title, message)
		return
	}

	p := tea.NewProgram(newProgressModel(title, message),
		tea.WithOutput(t.w),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := p.Run(); err != nil {
			slog.Debug("progress display failed", "error", err)
		}
	}()
	t.prog, t.done = p, done
}

// EndProgress implements generate.Notifier. It blocks until the spinner
// has cleared its line.
func (t *Terminal) EndProgress() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.prog == nil {
		return
	}
	t.prog.Send(endProgressMsg{})
	<-t.done
	t.prog, t.done = nil, nil
}

// ShowMessage implements generate.Notifier.
func (t *Terminal) ShowMessage(text string) {
	if t.tty {
		fmt.Fprintln(t.w, messageStyle.Render(text))
	} else {
		fmt.Fprintln(t.w, text)
	}
	if t.copyFn != nil {
		if err := t.copyFn(text); err != nil {
			slog.Warn("failed to copy message to clipboard", "error", err)
		}
	}
}

type endProgressMsg struct{}

type progressModel struct {
	spinner  spinner.Model
	title    string
	message  string
	quitting bool
}

func newProgressModel(title, message string) progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle
	return progressModel{spinner: s, title: title, message: message}
}

func (m progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg.(type) {
	case endProgressMsg:
		m.quitting = true
		return m, tea.Quit
	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
}

func (m progressModel) View() string {
	if m.quitting {
		return ""
	}
	return fmt.Sprintf("%s %s %s", m.spinner.View(), titleStyle.Render(m.title), faintStyle.Render(m.message))
}

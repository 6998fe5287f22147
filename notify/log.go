package notify

import (
	"log/slog"

	"github.com/Paranoid-AF/scribe/generate"
)

// Log reports notifications to a structured logger.
type Log struct {
	log *slog.Logger
}

// NewLog creates a Log notifier. A nil logger means slog.Default().
func NewLog(l *slog.Logger) *Log {
	if l == nil {
		l = slog.Default()
	}
	return &Log{log: l}
}

func (l *Log) StartProgress(title, message string) {
	l.log.Debug("progress started", "title", title, "message", message)
}

func (l *Log) EndProgress() {
	l.log.Debug("progress ended")
}

func (l *Log) ShowMessage(text string) {
	l.log.Info("message", "text", text)
}

// Tee forwards every notification to each notifier in order.
type Tee []generate.Notifier

func (t Tee) StartProgress(title, message string) {
	for _, n := range t {
		n.StartProgress(title, message)
	}
}

func (t Tee) EndProgress() {
	for _, n := range t {
		n.EndProgress()
	}
}

func (t Tee) ShowMessage(text string) {
	for _, n := range t {
		n.ShowMessage(text)
	}
}

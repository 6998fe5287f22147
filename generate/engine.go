// Package generate runs editor commands: it extracts context around the
// selection, frames it for the model, and writes the cleaned answer back.
package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	scribe "github.com/Paranoid-AF/scribe"
	"github.com/Paranoid-AF/scribe/backend"
	"github.com/Paranoid-AF/scribe/editor"
)

// ErrMissingConfiguration is returned when no API key is configured.
var ErrMissingConfiguration = errors.New("API key is missing")

const (
	progressTitle   = "scribe"
	progressMessage = "Working on it..."
)

// Notifier is the user-facing progress and message surface.
type Notifier interface {
	StartProgress(title, message string)
	EndProgress()
	ShowMessage(text string)
}

// Engine executes command presets. It holds no per-invocation state and may
// be shared; commands against the same document must still be serialized by
// the caller.
type Engine struct {
	newClient func(cfg *scribe.Config) backend.Client
	tracer    trace.Tracer
}

// NewEngine creates an engine that builds its backend client from the
// configuration passed to each Execute call.
func NewEngine() *Engine {
	return NewEngineWithClient(backend.New)
}

// NewEngineWithClient creates an engine with a custom client factory.
func NewEngineWithClient(newClient func(cfg *scribe.Config) backend.Client) *Engine {
	return &Engine{
		newClient: newClient,
		tracer:    otel.Tracer("github.com/Paranoid-AF/scribe/generate"),
	}
}

// Execute runs one command against host. cfg must already carry environment
// overrides (see scribe.Resolved). Every failure is reported through n before
// it is returned; the progress indicator is always released.
func (e *Engine) Execute(ctx context.Context, host editor.Host, n Notifier, spec PromptSpec, cfg *scribe.Config) (*EditOutcome, error) {
	spec = spec.clone()
	log := slog.With("invocation", uuid.NewString(), "mode", spec.Mode, "behavior", spec.Behavior)

	ctx, span := e.tracer.Start(ctx, "generate.execute", trace.WithAttributes(
		attribute.String("mode", spec.Mode.String()),
		attribute.String("behavior", spec.Behavior.String()),
	))
	defer span.End()

	out, err := e.execute(ctx, log, host, n, spec, cfg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Debug("command failed", "error", err)
	}
	return out, err
}

func (e *Engine) execute(ctx context.Context, log *slog.Logger, host editor.Host, n Notifier, spec PromptSpec, cfg *scribe.Config) (*EditOutcome, error) {
	if cfg == nil || cfg.API.Key == "" {
		n.ShowMessage(fmt.Sprintf("API key is missing. Set SCRIBE_API_KEY or add api.key to %s.", scribe.ConfigPath()))
		return nil, ErrMissingConfiguration
	}

	n.StartProgress(progressTitle, progressMessage)
	endProgress := sync.OnceFunc(n.EndProgress)
	defer endProgress()

	fail := func(err error) (*EditOutcome, error) {
		endProgress()
		n.ShowMessage(err.Error())
		return nil, err
	}

	snap, err := host.Snapshot(ctx)
	if err != nil {
		return fail(fmt.Errorf("read editor state: %w", err))
	}

	_, rspan := e.tracer.Start(ctx, "generate.resolve")
	in, err := Resolve(snap, spec.Mode,
		Limits{Above: cfg.Editor.ContextAbove, Below: cfg.Editor.ContextBelow},
		Markers{Begin: cfg.Infill.Begin, Hole: cfg.Infill.Hole, End: cfg.Infill.End},
	)
	rspan.End()
	if err != nil {
		if errors.Is(err, ErrEmptySelection) {
			endProgress()
			n.ShowMessage("Nothing Selected!")
			return nil, err
		}
		return fail(err)
	}
	startLine := snap.LineOf(in.Span.Start)
	log.Debug("input resolved", "start", in.Span.Start, "end", in.Span.End, "bytes", len(in.Text))

	if in.Expanded {
		if err := host.SetSelection(ctx, in.Span); err != nil {
			return fail(fmt.Errorf("select line: %w", err))
		}
	}

	prompt := BuildPrompt(in, spec, snap.ContentType)

	ictx, ispan := e.tracer.Start(ctx, "generate.invoke")
	resp, err := Invoke(ictx, e.newClient(cfg), prompt, in.Text, cfg)
	ispan.End()
	if err != nil {
		log.Error("generation error", "error", err)
		return fail(err)
	}

	text := Clean(resp, spec.StripMarkdown)
	endProgress()

	actx, aspan := e.tracer.Start(ctx, "generate.apply")
	defer aspan.End()
	out, err := Apply(actx, host, n, text, in.Span, spec.Behavior, spec.Mode)
	if err != nil {
		return fail(err)
	}

	if cfg.Editor.FormatChangedText && out.Op != OpNone {
		e.reformat(actx, log, host, out, spec.Mode, startLine)
	}
	return out, nil
}

// reformat selects the edited region and asks the host to format it.
// Formatting failures leave the edit in place and are only logged.
func (e *Engine) reformat(ctx context.Context, log *slog.Logger, host editor.Host, out *EditOutcome, mode Mode, startLine int) {
	post, err := host.Snapshot(ctx)
	if err != nil {
		log.Warn("reformat skipped", "error", err)
		return
	}
	sel := ReformatSpan(post, out, mode, startLine)
	if sel.Empty() {
		log.Debug("reformat skipped", "reason", "nothing inserted")
		return
	}
	if err := host.SetSelection(ctx, sel); err != nil {
		log.Warn("reformat skipped", "error", err)
		return
	}
	if err := host.FormatSelection(ctx); err != nil {
		log.Warn("reformat failed", "error", err)
	}
}

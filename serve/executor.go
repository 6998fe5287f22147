package main

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	scribe "github.com/Paranoid-AF/scribe"
	"github.com/Paranoid-AF/scribe/editor"
	"github.com/Paranoid-AF/scribe/editor/nvim"
	"github.com/Paranoid-AF/scribe/generate"
	"github.com/Paranoid-AF/scribe/notify"
)

// session is an editor connection for the duration of one command.
type session interface {
	editor.Host
	Notifier() generate.Notifier
	Close() error
}

type dialFunc func(addr string, visual bool) (session, error)

type nvimSession struct {
	*nvim.Host
}

func (s nvimSession) Notifier() generate.Notifier {
	return notify.Tee{s.Host.Notifier(), notify.NewLog(nil)}
}

func dialNvim(addr string, visual bool) (session, error) {
	h, err := nvim.Dial(addr, visual)
	if err != nil {
		return nil, err
	}
	return nvimSession{h}, nil
}

// engineExecutor runs presets through the generate engine against the
// editor named in each request.
type engineExecutor struct {
	engine       *generate.Engine
	live         *scribe.LiveConfig
	commandsPath string
	dial         dialFunc

	mu      sync.RWMutex
	presets map[string]generate.Preset
}

func newEngineExecutor(live *scribe.LiveConfig, commandsPath string) (*engineExecutor, error) {
	x := &engineExecutor{
		engine:       generate.NewEngine(),
		live:         live,
		commandsPath: commandsPath,
		dial:         dialNvim,
	}
	if err := x.Reload(); err != nil {
		return nil, err
	}
	return x, nil
}

func (x *engineExecutor) preset(name string) (generate.Preset, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	p, ok := x.presets[name]
	return p, ok
}

func (x *engineExecutor) Execute(ctx context.Context, req *scribe.Request) *scribe.Response {
	preset, ok := x.preset(req.Command)
	if !ok {
		return errorResponse(req.RequestID, "unknown_command", "unknown command: "+req.Command)
	}
	if req.NvimAddr == "" {
		return errorResponse(req.RequestID, "invalid_request", "nvim_addr is required")
	}

	cfg, err := x.live.Get()
	if err != nil {
		return errorResponse(req.RequestID, "not_configured", err.Error())
	}

	sess, err := x.dial(req.NvimAddr, req.Visual)
	if err != nil {
		return errorResponse(req.RequestID, "editor_error", err.Error())
	}
	defer sess.Close()

	slog.Debug("running command", "command", preset.Name, "session", req.SessionID)
	out, err := x.engine.Execute(ctx, sess, sess.Notifier(), preset.Spec, cfg)
	if err != nil {
		return errorResponse(req.RequestID, errorCode(err), err.Error())
	}

	resp := &scribe.Response{OK: true}
	if out.Op != generate.OpNone {
		resp.Selection = &scribe.Selection{Start: out.Selection.Start, End: out.Selection.End}
	}
	return resp
}

func errorCode(err error) string {
	var be *generate.BackendError
	switch {
	case errors.Is(err, generate.ErrMissingConfiguration):
		return "not_configured"
	case errors.Is(err, generate.ErrEmptySelection):
		return "empty_selection"
	case errors.As(err, &be):
		return "api_error"
	default:
		return "editor_error"
	}
}

func (x *engineExecutor) Commands() []scribe.CommandInfo {
	x.mu.RLock()
	sorted := generate.SortedPresets(x.presets)
	x.mu.RUnlock()

	out := make([]scribe.CommandInfo, len(sorted))
	for i, p := range sorted {
		out[i] = scribe.CommandInfo{
			Name:        p.Name,
			Description: p.Description,
			Mode:        p.Spec.Mode.String(),
			Behavior:    p.Spec.Behavior.String(),
		}
	}
	return out
}

// Reload re-reads the command presets. On error the previous presets stay
// in effect.
func (x *engineExecutor) Reload() error {
	presets, err := generate.LoadPresets(x.commandsPath)
	if err != nil {
		return err
	}
	x.mu.Lock()
	x.presets = presets
	x.mu.Unlock()
	slog.Info("presets loaded", "count", len(presets))
	return nil
}

func (x *engineExecutor) Close() {
	x.live.Close()
}

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"os"
	"sync"

	scribe "github.com/Paranoid-AF/scribe"
)

// Executor runs commands and answers preset queries.
type Executor interface {
	Execute(ctx context.Context, req *scribe.Request) *scribe.Response
	Commands() []scribe.CommandInfo
	Reload() error
	Close()
}

// Server listens on a Unix domain socket for command and config requests.
type Server struct {
	listener net.Listener
	sockPath string
	exec     Executor
	live     *scribe.LiveConfig

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	mu sync.Mutex
	// sessions maps a session id to the request id it is running.
	sessions map[string]int
}

// NewServer creates a server that runs commands against Neovim, reading
// configuration from configPath and presets from commandsPath. Empty paths
// mean the defaults under ConfigDir.
func NewServer(sockPath, configPath, commandsPath string) (*Server, error) {
	if commandsPath == "" {
		commandsPath = scribe.CommandsPath()
	}
	live := scribe.NewLiveConfig(configPath)
	exec, err := newEngineExecutor(live, commandsPath)
	if err != nil {
		live.Close()
		return nil, err
	}
	return NewServerWithExecutor(sockPath, exec, live)
}

// NewServerWithExecutor creates a server with a custom Executor. live serves
// the "get" and "validate" config actions.
func NewServerWithExecutor(sockPath string, exec Executor, live *scribe.LiveConfig) (*Server, error) {
	// Remove stale socket file if it exists
	if err := os.Remove(sockPath); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	listener, err := net.Listen("unix", sockPath)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		listener: listener,
		sockPath: sockPath,
		exec:     exec,
		live:     live,
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[string]int),
	}, nil
}

// Serve accepts connections and handles requests.
func (s *Server) Serve() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return err
		}
		go s.handleConn(conn)
	}
}

// Close aborts in-flight commands, shuts down the executor and removes the
// socket file. It is safe to call more than once.
func (s *Server) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		s.exec.Close()
		s.listener.Close()
		os.Remove(s.sockPath)
	})
}

// Reload re-reads the config file and the command presets. It returns the
// on-disk configuration.
func (s *Server) Reload() (*scribe.Config, error) {
	s.live.Invalidate()
	if err := s.exec.Reload(); err != nil {
		return nil, err
	}
	return s.live.File()
}

// Warnings validates the current configuration.
func (s *Server) Warnings() ([]string, error) {
	cfg, err := s.live.Get()
	if err != nil {
		return nil, err
	}
	return scribe.ValidateConfig(cfg), nil
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	if !scanner.Scan() {
		return
	}

	raw := scanner.Bytes()
	slog.Debug("request", "data", string(raw))

	// Config requests carry an "action" field
	var cfgReq scribe.ConfigRequest
	if err := json.Unmarshal(raw, &cfgReq); err == nil && cfgReq.Action != "" {
		writeJSON(conn, s.handleConfigRequest(&cfgReq))
		return
	}

	var req scribe.Request
	if err := json.Unmarshal(raw, &req); err != nil {
		slog.Warn("invalid request", "error", err)
		writeJSON(conn, errorResponse(0, "invalid_request", "malformed request: "+err.Error()))
		return
	}
	writeJSON(conn, s.handleCommand(&req))
}

func (s *Server) handleCommand(req *scribe.Request) *scribe.Response {
	if req.Command == "" {
		return errorResponse(req.RequestID, "invalid_request", "command is required")
	}

	// One command per session: the editor buffer is not locked while the
	// model request is in flight.
	sid := req.SessionID
	if sid != "" {
		s.mu.Lock()
		if running, busy := s.sessions[sid]; busy {
			s.mu.Unlock()
			slog.Debug("session busy", "session", sid, "running", running, "rejected", req.RequestID)
			return errorResponse(req.RequestID, "busy", "a command is already running for this session")
		}
		s.sessions[sid] = req.RequestID
		s.mu.Unlock()
		defer func() {
			s.mu.Lock()
			delete(s.sessions, sid)
			s.mu.Unlock()
		}()
	}

	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	resp := s.exec.Execute(ctx, req)
	resp.RequestID = req.RequestID
	return resp
}

func (s *Server) handleConfigRequest(req *scribe.ConfigRequest) *scribe.ConfigResponse {
	var resp scribe.ConfigResponse

	switch req.Action {
	case "get":
		cfg, err := s.live.File()
		if err != nil {
			resp.Error = &scribe.Error{Code: "config_error", Message: err.Error()}
		} else {
			resp.Config = cfg
		}

	case "reload":
		cfg, err := s.Reload()
		if err != nil {
			resp.Error = &scribe.Error{Code: "config_error", Message: err.Error()}
		} else {
			resp.Config = cfg
		}

	case "defaults":
		resp.Config = scribe.DefaultConfig()

	case "validate":
		warnings, err := s.Warnings()
		if err != nil {
			resp.Error = &scribe.Error{Code: "config_error", Message: err.Error()}
		} else {
			resp.Warnings = warnings
		}

	case "commands":
		resp.Commands = s.exec.Commands()

	default:
		resp.Error = &scribe.Error{
			Code:    "unknown_action",
			Message: "unknown config action: " + req.Action,
		}
	}
	return &resp
}

func errorResponse(requestID int, code, message string) *scribe.Response {
	return &scribe.Response{
		RequestID: requestID,
		Error:     &scribe.Error{Code: code, Message: message},
	}
}

func writeJSON(conn net.Conn, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal response", "error", err)
		return
	}

	slog.Debug("response", "data", string(data))

	conn.Write(append(data, '\n'))
}

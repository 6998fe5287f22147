// Package scribe defines the request/response types for scribe IPC.
// Messages are JSON-encoded and sent over a Unix domain socket, one per line.
package scribe

// Request is sent from the editor plugin to the daemon.
type Request struct {
	// RequestID is a per-session incrementing identifier assigned by the plugin.
	// The daemon echoes it back in the response for ordering.
	RequestID int `json:"request_id"`
	// SessionID identifies the editor session (one per editor instance).
	SessionID string `json:"session_id"`
	// Command is the preset name to run (e.g. "code_it", "explain").
	Command string `json:"command"`
	// NvimAddr is the listen address of the Neovim instance that owns the buffer.
	NvimAddr string `json:"nvim_addr"`
	// Visual is true when the command was invoked on the last visual selection.
	Visual bool `json:"visual,omitempty"`
}

// Selection is a half-open byte range [start, end) in the edited buffer.
type Selection struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Response is sent from the daemon back to the editor plugin.
type Response struct {
	// RequestID is echoed from the request for ordering on the client side.
	RequestID int `json:"request_id"`
	// OK is true when the command ran to completion.
	OK bool `json:"ok"`
	// Selection is the buffer selection after the edit, when one was applied.
	Selection *Selection `json:"selection,omitempty"`
	// Error is set when the daemon cannot fulfill the request.
	Error *Error `json:"error,omitempty"`
}

// Error describes a daemon-side error returned to the editor plugin.
type Error struct {
	// Code is a machine-readable error identifier (e.g. "not_configured", "api_error").
	Code string `json:"code"`
	// Message is a human-readable error description.
	Message string `json:"message"`
}

// ConfigRequest is sent from the plugin for configuration operations.
type ConfigRequest struct {
	// Action is the config operation: "get", "reload", "defaults", "validate" or "commands".
	Action string `json:"action"`
}

// CommandInfo describes one available command preset.
type CommandInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Mode        string `json:"mode"`
	Behavior    string `json:"behavior"`
}

// ConfigResponse is sent from the daemon in response to a ConfigRequest.
type ConfigResponse struct {
	// Config is the current configuration (for "get", "reload", and "defaults" actions).
	Config *Config `json:"config,omitempty"`
	// Commands lists the available presets (for "commands" action).
	Commands []CommandInfo `json:"commands,omitempty"`
	// Warnings contains configuration warnings (for "validate" action).
	Warnings []string `json:"warnings,omitempty"`
	// Error is set when the operation fails.
	Error *Error `json:"error,omitempty"`
}

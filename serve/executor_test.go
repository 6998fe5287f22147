package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	scribe "github.com/Paranoid-AF/scribe"
	"github.com/Paranoid-AF/scribe/backend"
	"github.com/Paranoid-AF/scribe/editor"
	"github.com/Paranoid-AF/scribe/generate"
	"github.com/Paranoid-AF/scribe/notify"
)

type stubClient struct {
	reply string
	err   error
	calls int
}

func (s *stubClient) Complete(context.Context, string, backend.Model) (string, error) {
	s.calls++
	return s.reply, s.err
}

func (s *stubClient) Chat(context.Context, []backend.Turn, backend.Model) (string, error) {
	s.calls++
	return s.reply, s.err
}

// bufferSession serves a Buffer as an editor connection.
type bufferSession struct {
	*editor.Buffer
	closed bool
}

func (b *bufferSession) Notifier() generate.Notifier { return notify.NewLog(nil) }

func (b *bufferSession) Close() error {
	b.closed = true
	return nil
}

func newTestExecutor(t *testing.T, cfgData string, client *stubClient, sess *bufferSession) *engineExecutor {
	t.Helper()
	live := testLiveConfig(t, cfgData)
	x := &engineExecutor{
		engine:       generate.NewEngineWithClient(func(*scribe.Config) backend.Client { return client }),
		live:         live,
		commandsPath: filepath.Join(t.TempDir(), "commands.toml"),
		dial: func(addr string, visual bool) (session, error) {
			if addr == "bad" {
				return nil, errors.New("connection refused")
			}
			return sess, nil
		},
	}
	if err := x.Reload(); err != nil {
		t.Fatal(err)
	}
	return x
}

const keyedConfig = "[api]\nkey = \"sk-test\"\n[editor]\nformat_changed_text = false\n"

func TestExecutorReplace(t *testing.T) {
	buf := editor.NewBuffer("a\nx=1\nb", "python", nil)
	if err := buf.SetSelection(context.Background(), editor.Span{Start: 2, End: 5}); err != nil {
		t.Fatal(err)
	}
	sess := &bufferSession{Buffer: buf}
	client := &stubClient{reply: "x = 1"}
	x := newTestExecutor(t, keyedConfig, client, sess)

	resp := x.Execute(context.Background(), &scribe.Request{Command: "refactor", NvimAddr: "/tmp/nvim.sock"})
	if !resp.OK || resp.Error != nil {
		t.Fatalf("unexpected response %+v", resp)
	}
	if resp.Selection == nil || *resp.Selection != (scribe.Selection{Start: 2, End: 7}) {
		t.Errorf("unexpected selection %+v", resp.Selection)
	}
	if buf.Text() != "a\nx = 1\nb" {
		t.Errorf("unexpected text %q", buf.Text())
	}
	if !sess.closed {
		t.Error("expected session to be closed")
	}
}

func TestExecutorMessageHasNoSelection(t *testing.T) {
	buf := editor.NewBuffer("code", "go", nil)
	x := newTestExecutor(t, keyedConfig, &stubClient{reply: "it is code"}, &bufferSession{Buffer: buf})

	resp := x.Execute(context.Background(), &scribe.Request{Command: "explain", NvimAddr: "addr"})
	if !resp.OK || resp.Selection != nil {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestExecutorErrorCodes(t *testing.T) {
	tests := []struct {
		name   string
		cfg    string
		doc    string
		client *stubClient
		req    scribe.Request
		code   string
	}{
		{"unknown command", keyedConfig, "x", &stubClient{}, scribe.Request{Command: "nope", NvimAddr: "a"}, "unknown_command"},
		{"missing address", keyedConfig, "x", &stubClient{}, scribe.Request{Command: "explain"}, "invalid_request"},
		{"dial failure", keyedConfig, "x", &stubClient{}, scribe.Request{Command: "explain", NvimAddr: "bad"}, "editor_error"},
		{"no key", "", "x", &stubClient{}, scribe.Request{Command: "explain", NvimAddr: "a"}, "not_configured"},
		{"empty line", keyedConfig, "", &stubClient{}, scribe.Request{Command: "explain", NvimAddr: "a"}, "empty_selection"},
		{"backend failure", keyedConfig, "x", &stubClient{err: errors.New("API error (status 500): boom")}, scribe.Request{Command: "explain", NvimAddr: "a"}, "api_error"},
		{"bad config", "[api\n", "x", &stubClient{}, scribe.Request{Command: "explain", NvimAddr: "a"}, "not_configured"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := &bufferSession{Buffer: editor.NewBuffer(tt.doc, "text", nil)}
			x := newTestExecutor(t, tt.cfg, tt.client, sess)
			resp := x.Execute(context.Background(), &tt.req)
			if resp.OK {
				t.Fatal("expected failure")
			}
			if resp.Error == nil || resp.Error.Code != tt.code {
				t.Errorf("expected %s, got %+v", tt.code, resp.Error)
			}
		})
	}
}

func TestErrorCode(t *testing.T) {
	if c := errorCode(fmt.Errorf("wrapped: %w", generate.ErrEmptySelection)); c != "empty_selection" {
		t.Errorf("got %s", c)
	}
	if c := errorCode(&generate.BackendError{Message: "x"}); c != "api_error" {
		t.Errorf("got %s", c)
	}
	if c := errorCode(errors.New("read buffer: closed")); c != "editor_error" {
		t.Errorf("got %s", c)
	}
}

func TestExecutorCommandsAndReload(t *testing.T) {
	x := newTestExecutor(t, keyedConfig, &stubClient{}, &bufferSession{Buffer: editor.NewBuffer("", "", nil)})

	cmds := x.Commands()
	if len(cmds) == 0 {
		t.Fatal("expected built-in commands")
	}
	for i := 1; i < len(cmds); i++ {
		if cmds[i-1].Name >= cmds[i].Name {
			t.Errorf("commands not sorted: %s, %s", cmds[i-1].Name, cmds[i].Name)
		}
	}

	data := "[commands.shout]\ndescription = \"Uppercase it\"\nsystem = \"Uppercase.\"\nmode = \"chat\"\nbehavior = \"replace\"\n"
	if err := os.WriteFile(x.commandsPath, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := x.Reload(); err != nil {
		t.Fatal(err)
	}
	p, ok := x.preset("shout")
	if !ok || p.Spec.Behavior != generate.Replace {
		t.Errorf("expected shout preset after reload, got %+v", p)
	}

	if err := os.WriteFile(x.commandsPath, []byte("[commands.bad]\nmode = \"x\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := x.Reload(); err == nil {
		t.Fatal("expected reload error")
	}
	if _, ok := x.preset("shout"); !ok {
		t.Error("failed reload dropped the previous presets")
	}
}

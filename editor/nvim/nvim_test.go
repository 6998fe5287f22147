package nvim

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"testing"

	"github.com/neovim/go-client/nvim"

	"github.com/Paranoid-AF/scribe/editor"
)

func TestVisualSpan(t *testing.T) {
	snap := &editor.Snapshot{Lines: []string{"hello", "wörld", "!"}}
	tests := []struct {
		name       string
		start, end [2]int
		want       editor.Span
	}{
		{"charwise", [2]int{1, 1}, [2]int{1, 3}, editor.Span{Start: 1, End: 4}},
		{"multibyte end", [2]int{2, 0}, [2]int{2, 1}, editor.Span{Start: 6, End: 9}},
		{"linewise", [2]int{1, 0}, [2]int{2, 2147483647}, editor.Span{Start: 0, End: 12}},
		{"reversed", [2]int{1, 3}, [2]int{1, 1}, editor.Span{Start: 1, End: 4}},
		{"past last line", [2]int{3, 0}, [2]int{9, 0}, editor.Span{Start: 13, End: 14}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := visualSpan(snap, tt.start, tt.end); got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

// embedded starts a child nvim and returns a Host on a buffer holding lines.
func embedded(t *testing.T, lines ...string) (*Host, *nvim.Nvim) {
	t.Helper()
	if _, err := exec.LookPath("nvim"); err != nil {
		t.Skip("nvim not installed")
	}
	v, err := nvim.NewChildProcess(nvim.ChildProcessArgs("-u", "NONE", "-n", "--embed", "--headless"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { v.Close() })

	raw := make([][]byte, len(lines))
	for i, l := range lines {
		raw[i] = []byte(l)
	}
	if err := v.SetBufferLines(0, 0, -1, true, raw); err != nil {
		t.Fatal(err)
	}
	h, err := newHost(v, false)
	if err != nil {
		t.Fatal(err)
	}
	return h, v
}

func TestHostSnapshotCursor(t *testing.T) {
	h, v := embedded(t, "first", "second")
	if err := v.SetWindowCursor(h.win, [2]int{2, 3}); err != nil {
		t.Fatal(err)
	}
	snap, err := h.Snapshot(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if snap.Text() != "first\nsecond" {
		t.Errorf("unexpected text %q", snap.Text())
	}
	if snap.Selection != (editor.Span{Start: 9, End: 9}) {
		t.Errorf("unexpected selection %+v", snap.Selection)
	}
}

func TestHostReplaceAndInsert(t *testing.T) {
	h, _ := embedded(t, "0123456789", "tail")
	ctx := context.Background()

	if err := h.Replace(ctx, editor.Span{Start: 2, End: 5}, "ab\ncd"); err != nil {
		t.Fatal(err)
	}
	if err := h.Insert(ctx, 0, ">"); err != nil {
		t.Fatal(err)
	}
	snap, err := h.Snapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if want := ">01ab\ncd56789\ntail"; snap.Text() != want {
		t.Errorf("got %q, want %q", snap.Text(), want)
	}
	if err := h.Replace(ctx, editor.Span{Start: 0, End: 999}, "x"); err == nil {
		t.Error("expected out of range error")
	}
}

func TestHostSetSelectionVisual(t *testing.T) {
	h, _ := embedded(t, "alpha", "beta")
	ctx := context.Background()

	if err := h.SetSelection(ctx, editor.Span{Start: 1, End: 8}); err != nil {
		t.Fatal(err)
	}
	h.visual = true
	snap, err := h.Snapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Selection != (editor.Span{Start: 1, End: 8}) {
		t.Errorf("unexpected selection %+v", snap.Selection)
	}
}

func TestHostFormatSelectionSkipsCursor(t *testing.T) {
	h, _ := embedded(t, "int f() {", "x;", "}")
	ctx := context.Background()

	// leave stale '< '> marks over the whole buffer
	if err := h.SetSelection(ctx, editor.Span{Start: 0, End: 14}); err != nil {
		t.Fatal(err)
	}
	if err := h.SetSelection(ctx, editor.Span{Start: 3, End: 3}); err != nil {
		t.Fatal(err)
	}
	if err := h.FormatSelection(ctx); err != nil {
		t.Fatal(err)
	}
	snap, err := h.Snapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if want := "int f() {\nx;\n}"; snap.Text() != want {
		t.Errorf("cursor-only format changed the buffer: %q", snap.Text())
	}
}

func TestNotifierLogsWriteFailures(t *testing.T) {
	h, v := embedded(t, "x")
	n := h.Notifier()

	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	v.Close()
	n.StartProgress("Scribe", "working")
	n.EndProgress()
	n.ShowMessage("done")

	for _, want := range []string{"nvim progress write failed", "nvim progress clear failed", "nvim message write failed"} {
		if !strings.Contains(logs.String(), want) {
			t.Errorf("expected %q in log:\n%s", want, logs.String())
		}
	}
}

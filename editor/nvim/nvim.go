// Package nvim adapts a running Neovim instance to editor.Host.
package nvim

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/neovim/go-client/nvim"

	"github.com/Paranoid-AF/scribe/editor"
)

// Host edits the buffer that was current when it connected. Offsets are
// byte offsets into the buffer lines joined with "\n".
type Host struct {
	v      *nvim.Nvim
	owned  bool
	buf    nvim.Buffer
	win    nvim.Window
	visual bool

	// cursorOnly is set while no visual range is selected, so gv would
	// reselect stale marks.
	cursorOnly bool
}

// Dial connects to the Neovim instance listening at addr. When visual is
// true the last visual selection ('< and '> marks) is the selection;
// otherwise the cursor is.
func Dial(addr string, visual bool) (*Host, error) {
	v, err := nvim.Dial(addr)
	if err != nil {
		return nil, fmt.Errorf("connect to nvim at %s: %w", addr, err)
	}
	h, err := newHost(v, visual)
	if err != nil {
		v.Close()
		return nil, err
	}
	h.owned = true
	return h, nil
}

func newHost(v *nvim.Nvim, visual bool) (*Host, error) {
	buf, err := v.CurrentBuffer()
	if err != nil {
		return nil, fmt.Errorf("current buffer: %w", err)
	}
	win, err := v.CurrentWindow()
	if err != nil {
		return nil, fmt.Errorf("current window: %w", err)
	}
	return &Host{v: v, buf: buf, win: win, visual: visual, cursorOnly: !visual}, nil
}

// Close disconnects from Neovim when the connection was opened by Dial.
func (h *Host) Close() error {
	if !h.owned {
		return nil
	}
	return h.v.Close()
}

// Notifier returns a notifier that writes to the Neovim message area.
func (h *Host) Notifier() *Notifier {
	return &Notifier{v: h.v}
}

func (h *Host) lines() ([]string, error) {
	raw, err := h.v.BufferLines(h.buf, 0, -1, true)
	if err != nil {
		return nil, fmt.Errorf("read buffer: %w", err)
	}
	lines := make([]string, len(raw))
	for i, l := range raw {
		lines[i] = string(l)
	}
	return lines, nil
}

// Snapshot implements editor.Host.
func (h *Host) Snapshot(ctx context.Context) (*editor.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	lines, err := h.lines()
	if err != nil {
		return nil, err
	}
	snap := &editor.Snapshot{Lines: lines}

	var ft string
	if err := h.v.Eval("&filetype", &ft); err != nil {
		return nil, fmt.Errorf("read filetype: %w", err)
	}
	snap.ContentType = ft

	if h.visual {
		start, err := h.v.BufferMark(h.buf, "<")
		if err != nil {
			return nil, fmt.Errorf("read visual start: %w", err)
		}
		end, err := h.v.BufferMark(h.buf, ">")
		if err != nil {
			return nil, fmt.Errorf("read visual end: %w", err)
		}
		snap.Selection = visualSpan(snap, start, end)
		return snap, nil
	}

	cur, err := h.v.WindowCursor(h.win)
	if err != nil {
		return nil, fmt.Errorf("read cursor: %w", err)
	}
	off := snap.Offset(cur[0]-1, cur[1])
	snap.Selection = editor.Span{Start: off, End: off}
	return snap, nil
}

// visualSpan converts inclusive (1-based row, 0-based byte column) marks to
// a half-open span. The end mark points at the first byte of the last
// selected character, or past the line end in linewise mode.
func visualSpan(snap *editor.Snapshot, start, end [2]int) editor.Span {
	if start[0] > end[0] || (start[0] == end[0] && start[1] > end[1]) {
		start, end = end, start
	}
	s := snap.Offset(start[0]-1, start[1])

	line := end[0] - 1
	if line < 0 || line >= len(snap.Lines) {
		return editor.Span{Start: s, End: snap.Offset(line, end[1])}
	}
	text := snap.Lines[line]
	col := end[1]
	if col >= len(text) {
		col = len(text)
	} else {
		_, size := utf8.DecodeRuneInString(text[col:])
		col += size
	}
	return editor.Span{Start: s, End: snap.Offset(line, col)}
}

// Insert implements editor.Host.
func (h *Host) Insert(ctx context.Context, offset int, text string) error {
	return h.Replace(ctx, editor.Span{Start: offset, End: offset}, text)
}

// Replace implements editor.Host.
func (h *Host) Replace(ctx context.Context, span editor.Span, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	lines, err := h.lines()
	if err != nil {
		return err
	}
	snap := &editor.Snapshot{Lines: lines}
	if span.Start < 0 || span.End > snap.Len() || span.End < span.Start {
		return fmt.Errorf("span [%d,%d) out of range for buffer of length %d", span.Start, span.End, snap.Len())
	}
	sl, sc := snap.Position(span.Start)
	el, ec := snap.Position(span.End)

	parts := strings.Split(text, "\n")
	replacement := make([][]byte, len(parts))
	for i, p := range parts {
		replacement[i] = []byte(p)
	}
	if err := h.v.SetBufferText(h.buf, sl, sc, el, ec, replacement); err != nil {
		return fmt.Errorf("write buffer: %w", err)
	}
	return nil
}

// SetSelection implements editor.Host. An empty span moves the cursor; a
// non-empty span becomes the visual selection.
func (h *Host) SetSelection(ctx context.Context, span editor.Span) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	lines, err := h.lines()
	if err != nil {
		return err
	}
	snap := &editor.Snapshot{Lines: lines}
	if span.Start < 0 || span.End > snap.Len() || span.End < span.Start {
		return fmt.Errorf("selection [%d,%d) out of range for buffer of length %d", span.Start, span.End, snap.Len())
	}

	sl, sc := snap.Position(span.Start)
	if span.Empty() {
		h.cursorOnly = true
		return h.v.SetWindowCursor(h.win, [2]int{sl + 1, sc})
	}
	// '> is inclusive
	el, ec := snap.Position(span.End - 1)

	b := h.v.NewBatch()
	b.Call("setpos", nil, "'<", []int{0, sl + 1, sc + 1, 0})
	b.Call("setpos", nil, "'>", []int{0, el + 1, ec + 1, 0})
	b.Command("normal! gv")
	if err := b.Execute(); err != nil {
		return fmt.Errorf("set selection: %w", err)
	}
	h.cursorOnly = false
	return nil
}

// FormatSelection implements editor.Host by running the = operator over
// the selection, which uses the buffer's indentexpr or equalprg.
func (h *Host) FormatSelection(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if h.cursorOnly {
		return nil
	}
	return h.v.Command("normal! gv=")
}

// Notifier writes progress and messages to the Neovim message area.
type Notifier struct {
	v *nvim.Nvim
}

// StartProgress echoes "title: message" in the message area.
func (n *Notifier) StartProgress(title, message string) {
	if err := n.v.WriteOut(fmt.Sprintf("%s: %s\n", title, message)); err != nil {
		slog.Debug("nvim progress write failed", "error", err)
	}
}

// EndProgress clears the message area.
func (n *Notifier) EndProgress() {
	if err := n.v.Command(`echo ""`); err != nil {
		slog.Debug("nvim progress clear failed", "error", err)
	}
}

func (n *Notifier) ShowMessage(text string) {
	if err := n.v.WriteOut(strings.TrimRight(text, "\n") + "\n"); err != nil {
		slog.Debug("nvim message write failed", "error", err)
	}
}

package editor

import (
	"context"
	"fmt"
	"strings"
)

// Formatter reformats source text of a given content type.
type Formatter interface {
	Format(contentType, text string) (string, error)
}

// Buffer is an in-memory Host backed by a string slice. It is used by the
// one-shot CLI and in tests.
type Buffer struct {
	lines       []string
	selection   Span
	contentType string
	formatter   Formatter
}

// NewBuffer creates a Buffer holding text. A nil formatter makes
// FormatSelection a no-op.
func NewBuffer(text, contentType string, formatter Formatter) *Buffer {
	return &Buffer{
		lines:       strings.Split(text, "\n"),
		contentType: contentType,
		formatter:   formatter,
	}
}

// Text returns the current buffer contents.
func (b *Buffer) Text() string {
	return strings.Join(b.lines, "\n")
}

// Selection returns the current selection.
func (b *Buffer) Selection() Span {
	return b.selection
}

func (b *Buffer) snapshot() *Snapshot {
	lines := make([]string, len(b.lines))
	copy(lines, b.lines)
	return &Snapshot{Lines: lines, Selection: b.selection, ContentType: b.contentType}
}

// Snapshot implements Host.
func (b *Buffer) Snapshot(_ context.Context) (*Snapshot, error) {
	return b.snapshot(), nil
}

// Insert implements Host.
func (b *Buffer) Insert(ctx context.Context, offset int, text string) error {
	return b.Replace(ctx, Span{Start: offset, End: offset}, text)
}

// Replace implements Host.
func (b *Buffer) Replace(_ context.Context, span Span, text string) error {
	cur := b.Text()
	if span.Start < 0 || span.End > len(cur) || span.End < span.Start {
		return fmt.Errorf("span [%d,%d) out of range for buffer of length %d", span.Start, span.End, len(cur))
	}
	b.lines = strings.Split(cur[:span.Start]+text+cur[span.End:], "\n")
	return nil
}

// SetSelection implements Host.
func (b *Buffer) SetSelection(_ context.Context, span Span) error {
	n := len(b.Text())
	if span.Start < 0 || span.End > n || span.End < span.Start {
		return fmt.Errorf("selection [%d,%d) out of range for buffer of length %d", span.Start, span.End, n)
	}
	b.selection = span
	return nil
}

// FormatSelection implements Host by running the formatter over the
// selected text and selecting the result.
func (b *Buffer) FormatSelection(ctx context.Context) error {
	if b.formatter == nil || b.selection.Empty() {
		return nil
	}
	sel := b.selection
	formatted, err := b.formatter.Format(b.contentType, b.snapshot().Slice(sel))
	if err != nil {
		return err
	}
	if err := b.Replace(ctx, sel, formatted); err != nil {
		return err
	}
	b.selection = Span{Start: sel.Start, End: sel.Start + len(formatted)}
	return nil
}

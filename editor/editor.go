// Package editor models the document host the pipeline edits: an immutable
// snapshot of buffer state plus the mutation primitives a host exposes.
//
// Offsets are byte offsets into the text formed by joining the snapshot's
// lines with "\n". A span computed against one snapshot is only valid for
// that snapshot; after any mutation callers must recompute.
package editor

import (
	"context"
	"strings"
)

// Span is a half-open [Start, End) byte range.
type Span struct {
	Start int
	End   int
}

// Len returns the span length.
func (s Span) Len() int { return s.End - s.Start }

// Empty reports whether the span is zero-width.
func (s Span) Empty() bool { return s.End <= s.Start }

// Snapshot is the document state captured at the start of one invocation.
type Snapshot struct {
	Lines       []string
	Selection   Span
	ContentType string
}

// Text returns the full document text.
func (s *Snapshot) Text() string {
	return strings.Join(s.Lines, "\n")
}

// Len returns the document length in bytes.
func (s *Snapshot) Len() int {
	if len(s.Lines) == 0 {
		return 0
	}
	n := len(s.Lines) - 1
	for _, l := range s.Lines {
		n += len(l)
	}
	return n
}

// LineStart returns the offset of the first byte of line i.
func (s *Snapshot) LineStart(i int) int {
	off := 0
	for j := 0; j < i && j < len(s.Lines); j++ {
		off += len(s.Lines[j]) + 1
	}
	return off
}

// LineEnd returns the offset just past the last byte of line i, excluding
// the line break.
func (s *Snapshot) LineEnd(i int) int {
	if i < 0 || i >= len(s.Lines) {
		return s.Len()
	}
	return s.LineStart(i) + len(s.Lines[i])
}

// LineOf returns the index of the line containing offset. Offsets past the
// end map to the last line.
func (s *Snapshot) LineOf(offset int) int {
	if len(s.Lines) == 0 {
		return 0
	}
	start := 0
	for i, l := range s.Lines {
		end := start + len(l)
		if offset <= end {
			return i
		}
		start = end + 1
	}
	return len(s.Lines) - 1
}

// Position converts an offset to a (line, column) pair, column in bytes.
func (s *Snapshot) Position(offset int) (line, col int) {
	line = s.LineOf(offset)
	col = offset - s.LineStart(line)
	if col < 0 {
		col = 0
	}
	return line, col
}

// Offset converts a (line, column) pair to an offset. Out-of-range values
// are clamped to the document.
func (s *Snapshot) Offset(line, col int) int {
	if len(s.Lines) == 0 || line < 0 {
		return 0
	}
	if line >= len(s.Lines) {
		return s.Len()
	}
	if col < 0 {
		col = 0
	}
	if col > len(s.Lines[line]) {
		col = len(s.Lines[line])
	}
	return s.LineStart(line) + col
}

// Slice returns the text covered by span, clamped to the document.
func (s *Snapshot) Slice(span Span) string {
	text := s.Text()
	start, end := clamp(span.Start, 0, len(text)), clamp(span.End, 0, len(text))
	if end < start {
		return ""
	}
	return text[start:end]
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Host is the editor a command runs against. Implementations are not
// required to be safe for concurrent use; callers serialize commands per
// document.
type Host interface {
	// Snapshot captures the current lines, selection and content type.
	Snapshot(ctx context.Context) (*Snapshot, error)
	// Insert inserts text at offset.
	Insert(ctx context.Context, offset int, text string) error
	// Replace replaces span with text.
	Replace(ctx context.Context, span Span, text string) error
	// SetSelection selects span.
	SetSelection(ctx context.Context, span Span) error
	// FormatSelection runs the host's formatter over the current selection.
	FormatSelection(ctx context.Context) error
}

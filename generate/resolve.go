package generate

import (
	"errors"
	"strings"

	"github.com/Paranoid-AF/scribe/editor"
)

// ErrEmptySelection is returned when there is no text to submit.
var ErrEmptySelection = errors.New("nothing selected")

// Limits bounds the fill-in-the-middle context window in lines.
type Limits struct {
	Above int
	Below int
}

// Markers are the fill-in-the-middle sentinels.
type Markers struct {
	Begin string
	Hole  string
	End   string
}

// ResolvedInput is the text extracted from the document for one invocation.
type ResolvedInput struct {
	// Text is what gets submitted to the model.
	Text string
	// Span is the originating range in the snapshot's coordinates.
	Span editor.Span
	// Expanded is true when an empty chat selection was widened to its line.
	Expanded bool

	// Prefix and Suffix are the raw fill-in-the-middle segments (without
	// markers). Empty outside FillInMiddle with an empty selection.
	Prefix string
	Suffix string
}

// Resolve determines the text and span to submit.
//
// A non-empty selection is used as is. An empty selection is widened to its
// line in Chat mode; in FillInMiddle mode the lines around the cursor become
// a sentinel-delimited prompt and the span stays zero-width at the cursor.
func Resolve(snap *editor.Snapshot, mode Mode, limits Limits, markers Markers) (*ResolvedInput, error) {
	sel := snap.Selection
	var in *ResolvedInput

	switch {
	case !sel.Empty():
		in = &ResolvedInput{Text: snap.Slice(sel), Span: sel}
	case mode == FillInMiddle:
		in = resolveInfill(snap, sel.Start, limits, markers)
	default:
		line := snap.LineOf(sel.Start)
		in = &ResolvedInput{
			Span:     editor.Span{Start: snap.LineStart(line), End: snap.LineEnd(line)},
			Expanded: true,
		}
		if line < len(snap.Lines) {
			in.Text = snap.Lines[line]
		}
	}

	if in.Text == "" {
		return nil, ErrEmptySelection
	}
	return in, nil
}

func resolveInfill(snap *editor.Snapshot, cursor int, limits Limits, markers Markers) *ResolvedInput {
	above, below := max(limits.Above, 0), max(limits.Below, 0)
	lineCount := len(snap.Lines)
	line, col := snap.Position(cursor)

	var prefix strings.Builder
	for i := max(0, line-above); i < line; i++ {
		prefix.WriteString(snap.Lines[i])
		prefix.WriteString("\n")
	}
	if line < lineCount {
		prefix.WriteString(snap.Lines[line][:min(col, len(snap.Lines[line]))])
	}

	var suffix strings.Builder
	for i := line; i < min(lineCount, line+below); i++ {
		suffix.WriteString(snap.Lines[i])
		suffix.WriteString("\n")
	}

	p, s := prefix.String(), suffix.String()
	return &ResolvedInput{
		Text:   markers.Begin + p + markers.Hole + s + markers.End,
		Span:   editor.Span{Start: cursor, End: cursor},
		Prefix: p,
		Suffix: s,
	}
}

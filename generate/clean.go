package generate

import (
	"regexp"
	"strings"
)

// fenceLineRegex matches a code-fence marker, any info string after it, and
// the line break that ends it.
var fenceLineRegex = regexp.MustCompile("```.*\\r?\\n?")

// StripFences deletes every fence marker line. Markers are removed
// independently; unmatched opening or closing fences go too.
func StripFences(s string) string {
	return fenceLineRegex.ReplaceAllString(s, "")
}

// StripEcho removes submitted from the front of response when the backend
// repeated the prompt before continuing it.
func StripEcho(response, submitted string) string {
	if submitted == "" {
		return response
	}
	return strings.TrimPrefix(response, submitted)
}

// Clean produces the text to place in the document.
func Clean(r *ModelResponse, stripMarkdown bool) string {
	text := r.Text
	if stripMarkdown {
		text = StripFences(text)
	}
	if r.Mode == FillInMiddle {
		text = StripEcho(text, r.Submitted)
	}
	return text
}

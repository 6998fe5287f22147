// Package format reformats edited text by content type. It backs
// FormatSelection for hosts that have no formatter of their own.
package format

import (
	"bytes"
	"go/format"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// Formatter dispatches on the content type (editor language id). Unknown
// content types are returned unchanged.
type Formatter struct{}

// New creates a Formatter.
func New() *Formatter {
	return &Formatter{}
}

// Format implements editor.Formatter.
func (f *Formatter) Format(contentType, text string) (string, error) {
	var (
		out string
		err error
	)
	switch ct := strings.ToLower(contentType); ct {
	case "go", "golang":
		out, err = Go(text)
	case "sh", "bash", "mksh", "bats":
		out, err = Shell(ct, text)
	default:
		return text, nil
	}
	if err != nil {
		return "", err
	}
	return matchTrailingNewline(text, out), nil
}

// Go formats Go source, a declaration list or a statement list.
func Go(text string) (string, error) {
	out, err := format.Source([]byte(text))
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Shell formats shell source in the given dialect.
func Shell(dialect, text string) (string, error) {
	parser := syntax.NewParser(syntax.Variant(shellVariant(dialect)), syntax.KeepComments(true))
	prog, err := parser.Parse(strings.NewReader(text), "")
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	printer := syntax.NewPrinter(syntax.Indent(0))
	if err := printer.Print(&buf, prog); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func shellVariant(dialect string) syntax.LangVariant {
	switch dialect {
	case "sh":
		return syntax.LangPOSIX
	case "mksh":
		return syntax.LangMirBSDKorn
	case "bats":
		return syntax.LangBats
	default:
		return syntax.LangBash
	}
}

// matchTrailingNewline keeps a selection that did not end in a newline from
// growing one.
func matchTrailingNewline(in, out string) string {
	if !strings.HasSuffix(in, "\n") {
		return strings.TrimRight(out, "\n")
	}
	return out
}

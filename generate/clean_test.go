package generate

import (
	"strings"
	"testing"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"paired", "```go\nfmt.Println()\n```\n", "fmt.Println()\n"},
		{"closing without newline", "```\nx := 1\n```", "x := 1\n"},
		{"unmatched opening", "intro\n```python\nprint(1)\n", "intro\nprint(1)\n"},
		{"crlf", "```js\r\nlet a\r\n```\r\n", "let a\r\n"},
		{"none", "plain text\n", "plain text\n"},
		{"two blocks", "```a\n1\n```\nmid\n```b\n2\n```\n", "1\nmid\n2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripFences(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStripFencesRemovesAllMarkerLines(t *testing.T) {
	fences := []string{"```go\n", "```\n", "```sh\n", "```\n"}
	in := fences[0] + "a\n" + fences[1] + "b\n" + fences[2] + "c\n" + fences[3]
	total := 0
	for _, f := range fences {
		total += len(f)
	}
	out := StripFences(in)
	if strings.Contains(out, "```") {
		t.Errorf("fence left in %q", out)
	}
	if len(in)-len(out) != total {
		t.Errorf("expected length to drop by %d, dropped by %d", total, len(in)-len(out))
	}
}

func TestStripEcho(t *testing.T) {
	if got := StripEcho("prompt + more", "prompt"); got != " + more" {
		t.Errorf("unexpected %q", got)
	}
	if got := StripEcho("other", "prompt"); got != "other" {
		t.Errorf("unexpected %q", got)
	}
	if got := StripEcho("abc", ""); got != "abc" {
		t.Errorf("unexpected %q", got)
	}
}

func TestStripEchoIdempotent(t *testing.T) {
	cases := []struct{ r, t string }{
		{"abcdef", "abc"},
		{"abc", "abc"},
		{"xyz", "abc"},
		{"<B>pre<H>suf<E>middle", "<B>pre<H>suf<E>"},
		{"", "abc"},
	}
	for _, c := range cases {
		once := StripEcho(c.r, c.t)
		if strings.HasPrefix(once, c.t) && c.t != "" {
			continue
		}
		if twice := StripEcho(once, c.t); twice != once {
			t.Errorf("StripEcho not idempotent for %+v: %q vs %q", c, once, twice)
		}
	}
}

func TestCleanCompletionMode(t *testing.T) {
	r := &ModelResponse{Text: "PROMPT```go\nx++\n```\n", Mode: FillInMiddle, Submitted: "PROMPT"}
	if got := Clean(r, true); got != "x++\n" {
		t.Errorf("unexpected %q", got)
	}
	if got := Clean(r, false); got != "```go\nx++\n```\n" {
		t.Errorf("unexpected %q", got)
	}
}

func TestCleanChatModeNeverStripsEcho(t *testing.T) {
	r := &ModelResponse{Text: "hello world", Mode: Chat, Submitted: "hello"}
	if got := Clean(r, true); got != "hello world" {
		t.Errorf("unexpected %q", got)
	}
}

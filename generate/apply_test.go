package generate

import (
	"context"
	"testing"

	"github.com/Paranoid-AF/scribe/editor"
)

type recordingNotifier struct {
	started  int
	ended    int
	messages []string
	// active is true between StartProgress and EndProgress
	active         bool
	activeAtNotice bool
}

func (r *recordingNotifier) StartProgress(title, message string) {
	r.started++
	r.active = true
}

func (r *recordingNotifier) EndProgress() {
	r.ended++
	r.active = false
}

func (r *recordingNotifier) ShowMessage(text string) {
	if r.active {
		r.activeAtNotice = true
	}
	r.messages = append(r.messages, text)
}

func TestApplyReplace(t *testing.T) {
	buf := editor.NewBuffer("0123456789abcdef", "text", nil)
	n := &recordingNotifier{}
	out, err := Apply(context.Background(), buf, n, "foo", editor.Span{Start: 5, End: 10}, Replace, Chat)
	if err != nil {
		t.Fatal(err)
	}
	if buf.Text() != "01234fooabcdef" {
		t.Errorf("unexpected text %q", buf.Text())
	}
	if out.Op != OpReplace || out.Selection != (editor.Span{Start: 5, End: 8}) {
		t.Errorf("unexpected outcome %+v", out)
	}
	if buf.Selection() != out.Selection {
		t.Errorf("expected buffer selection %+v, got %+v", out.Selection, buf.Selection())
	}
}

func TestApplyInsertChatSeparator(t *testing.T) {
	buf := editor.NewBuffer("hello world", "text", nil)
	out, err := Apply(context.Background(), buf, &recordingNotifier{}, "bar", editor.Span{Start: 5, End: 5}, Insert, Chat)
	if err != nil {
		t.Fatal(err)
	}
	if buf.Text() != "hello\nbar world" {
		t.Errorf("unexpected text %q", buf.Text())
	}
	if out.Selection != (editor.Span{Start: 6, End: 9}) {
		t.Errorf("unexpected selection %+v", out.Selection)
	}
}

func TestApplyInsertAfterSelection(t *testing.T) {
	buf := editor.NewBuffer("line one", "text", nil)
	out, err := Apply(context.Background(), buf, &recordingNotifier{}, "// c", editor.Span{Start: 0, End: 8}, Insert, Chat)
	if err != nil {
		t.Fatal(err)
	}
	if buf.Text() != "line one\n// c" {
		t.Errorf("unexpected text %q", buf.Text())
	}
	if out.Selection != (editor.Span{Start: 9, End: 13}) {
		t.Errorf("unexpected selection %+v", out.Selection)
	}
}

func TestApplyInsertFillInMiddleNoSeparator(t *testing.T) {
	buf := editor.NewBuffer("func f() {}", "go", nil)
	out, err := Apply(context.Background(), buf, &recordingNotifier{}, "x", editor.Span{Start: 10, End: 10}, Insert, FillInMiddle)
	if err != nil {
		t.Fatal(err)
	}
	if buf.Text() != "func f() {x}" {
		t.Errorf("unexpected text %q", buf.Text())
	}
	if out.Selection != (editor.Span{Start: 10, End: 11}) {
		t.Errorf("unexpected selection %+v", out.Selection)
	}
}

func TestApplyMessageLeavesDocument(t *testing.T) {
	buf := editor.NewBuffer("keep me", "text", nil)
	n := &recordingNotifier{}
	out, err := Apply(context.Background(), buf, n, "explanation", editor.Span{Start: 0, End: 4}, Message, Chat)
	if err != nil {
		t.Fatal(err)
	}
	if buf.Text() != "keep me" {
		t.Errorf("document changed: %q", buf.Text())
	}
	if out.Op != OpNone || !out.Selection.Empty() {
		t.Errorf("unexpected outcome %+v", out)
	}
	if len(n.messages) != 1 || n.messages[0] != "explanation" {
		t.Errorf("unexpected messages %v", n.messages)
	}
}

func TestApplyReplaceOutOfRange(t *testing.T) {
	buf := editor.NewBuffer("abc", "text", nil)
	if _, err := Apply(context.Background(), buf, &recordingNotifier{}, "x", editor.Span{Start: 2, End: 9}, Replace, Chat); err == nil {
		t.Fatal("expected error")
	}
}

func TestReformatSpan(t *testing.T) {
	post := &editor.Snapshot{Lines: []string{"a", "bb", "new", "text", "cc"}}
	out := &EditOutcome{Op: OpInsert, Selection: editor.Span{Start: 5, End: 13}}

	if got := ReformatSpan(post, out, FillInMiddle, 1); got != out.Selection {
		t.Errorf("fill in middle: got %+v", got)
	}
	// chat: line 1 start (2) through the end of line 3 (13)
	if got := ReformatSpan(post, out, Chat, 1); got != (editor.Span{Start: 2, End: 13}) {
		t.Errorf("chat: got %+v", got)
	}
}

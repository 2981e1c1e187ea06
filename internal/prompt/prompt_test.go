package prompt

import (
	"bytes"
	"strings"
	"testing"
)

func TestTerminalSequentialAnswers(t *testing.T) {
	var out bytes.Buffer
	term := New(strings.NewReader("3\nYes\n  n \nlast"), &out)

	if got, _ := term.Line("Select: "); got != "3" {
		t.Fatalf("line=%q", got)
	}
	if ok, _ := term.Confirm("Repost?"); !ok {
		t.Fatalf("expected yes")
	}
	if ok, _ := term.Confirm("Delete?"); ok {
		t.Fatalf("expected no")
	}
	if got, _ := term.Line(""); got != "last" {
		t.Fatalf("partial line=%q", got)
	}
	if got, err := term.Line(""); err != nil || got != "" {
		t.Fatalf("after EOF got %q err=%v", got, err)
	}
	if !strings.Contains(out.String(), "Repost? [y/N]: ") {
		t.Fatalf("prompt text missing: %q", out.String())
	}
}

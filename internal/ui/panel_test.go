package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/idilsaglam/tada/internal/model"
)

func TestTodoLine(t *testing.T) {
	got := TodoLine(model.Todo{ID: "1", Title: "A", Description: "B"})
	if got != "A --- B" {
		t.Errorf("TodoLine: got %q, want %q", got, "A --- B")
	}
}

func TestTodoLinesCarryIDs(t *testing.T) {
	SetTheme("mono")
	t.Cleanup(func() { SetTheme("classic") })

	lines := TodoLines([]model.Todo{
		{ID: "1", Title: "A", Description: "B"},
		{ID: "22", Title: "C", Description: "D"},
	})
	if len(lines) != 2 {
		t.Fatalf("lines: %v", lines)
	}
	if !strings.HasPrefix(lines[0], "1   ") || !strings.HasSuffix(lines[0], "A --- B") {
		t.Errorf("line 0: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "22  ") || !strings.HasSuffix(lines[1], "C --- D") {
		t.Errorf("line 1: %q", lines[1])
	}
}

func TestTodoLinesEmpty(t *testing.T) {
	lines := TodoLines(nil)
	if len(lines) != 1 || !strings.Contains(lines[0], "no todos") {
		t.Errorf("empty: %v", lines)
	}
}

func TestSetThemeFallsBack(t *testing.T) {
	SetTheme("rainbow")
	if Current().Name != "classic" {
		t.Errorf("got %q, want classic", Current().Name)
	}
	SetTheme("NEON")
	if Current().Name != "neon" {
		t.Errorf("got %q, want neon", Current().Name)
	}
	SetTheme("classic")
}

func TestOKAndFail(t *testing.T) {
	SetTheme("mono")
	t.Cleanup(func() { SetTheme("classic") })

	var buf bytes.Buffer
	OK(&buf, "added")
	Fail(&buf, "nope")
	out := buf.String()
	if !strings.Contains(out, "ok: added") || !strings.Contains(out, "error: nope") {
		t.Errorf("output: %q", out)
	}
}

func TestHeader(t *testing.T) {
	if h := Header(1); !strings.Contains(h, "1 todo") || strings.Contains(h, "1 todos") {
		t.Errorf("Header(1): %q", h)
	}
	if h := Header(3); !strings.Contains(h, "3 todos") {
		t.Errorf("Header(3): %q", h)
	}
}

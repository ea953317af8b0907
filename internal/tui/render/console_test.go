package render

import (
	"slices"
	"testing"

	"js-runner/internal/console"
)

func plainConsole(entries []console.Entry, width int, frame string) []string {
	var out []string
	for _, e := range entries {
		for _, l := range entryLines(e, ConsoleStyles{}, width, frame) {
			out = append(out, l.Plain())
		}
	}
	return out
}

func TestConsoleLinesGlyphsAndPhysicalLines(t *testing.T) {
	entries := []console.Entry{
		{Text: "hi", Kind: console.KindLog},
		{Text: "{\n  \"a\": 1\n}", Kind: console.KindLog},
		{Text: "Error at line 3: boom", Kind: console.KindError},
		{Text: "Execution in progress...", Kind: console.KindStatus},
	}
	got := plainConsole(entries, 80, "⣾")
	want := []string{
		"hi",
		"{",
		"  \"a\": 1",
		"}",
		"❌ Error at line 3: boom",
		"🕒 Execution in progress... ⣾",
	}
	if !slices.Equal(got, want) {
		t.Fatalf("lines=%q want %q", got, want)
	}
}

func TestConsoleLinesAlignsWrappedErrors(t *testing.T) {
	got := plainConsole([]console.Entry{{Text: "aaaa bbbb", Kind: console.KindError}}, 8, "")
	want := []string{"❌ aaaa", "   bbbb"}
	if !slices.Equal(got, want) {
		t.Fatalf("lines=%q want %q", got, want)
	}
}

func TestConsoleLinesRendersEveryEntry(t *testing.T) {
	entries := []console.Entry{{Text: "a"}, {Text: "b"}}
	if got := ConsoleLines(entries, ConsoleStyles{}, 20, ""); len(got) != 2 {
		t.Fatalf("got %d lines", len(got))
	}
}

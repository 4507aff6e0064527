package cli

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
)

func TestPromptYesNo(t *testing.T) {
	tests := []struct {
		name  string
		input string
		def   bool
		want  bool
	}{
		{"yes", "y\n", false, true},
		{"YES uppercase", "YES\n", false, true},
		{"no", "n\n", true, false},
		{"empty takes default true", "\n", true, true},
		{"empty takes default false", "\n", false, false},
		{"retry after garbage", "maybe\ny\n", false, true},
		{"eof takes default", "", true, true},
		{"answer without newline", "y", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := promptYesNo(bufio.NewReader(strings.NewReader(tt.input)), &out, "Continue?", tt.def)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("promptYesNo(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestPromptInt(t *testing.T) {
	var out bytes.Buffer
	reader := bufio.NewReader(strings.NewReader("abc\n0\n20\n7\n\n"))

	got, err := promptInt(reader, &out, "Files", 4, 1, 16)
	if err != nil {
		t.Fatal(err)
	}
	if got != 7 {
		t.Errorf("got %d, want 7", got)
	}
	if n := strings.Count(out.String(), "enter a number between 1 and 16"); n != 3 {
		t.Errorf("expected 3 re-prompts, got %d", n)
	}

	got, err = promptInt(reader, &out, "Files", 4, 1, 16)
	if err != nil || got != 4 {
		t.Errorf("empty answer: got %d, %v; want default 4", got, err)
	}
}

func TestPromptChoice(t *testing.T) {
	var out bytes.Buffer
	reader := bufio.NewReader(strings.NewReader("fancy\nBARS\n"))

	got, err := promptChoice(reader, &out, "Progress", "auto", []string{"auto", "bars"})
	if err != nil {
		t.Fatal(err)
	}
	if got != "bars" {
		t.Errorf("got %q, want bars", got)
	}
	if !strings.Contains(out.String(), "Invalid choice") {
		t.Error("expected an invalid choice message")
	}
}

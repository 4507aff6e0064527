package main

import (
	"runtime"
	"testing"
)

func TestIsCLIMode(t *testing.T) {
	t.Setenv("DISPLAY", ":0")

	tests := []struct {
		name string
		args []string
		want bool
	}{
		{"force cli", []string{"rescale-copy", "--cli"}, true},
		{"force gui", []string{"rescale-copy", "--gui"}, false},
		{"subcommand", []string{"rescale-copy", "copy", "--dest", "/tmp"}, true},
		{"help", []string{"rescale-copy", "--help"}, true},
		{"unknown", []string{"rescale-copy", "cpy"}, true},
		{"no args with display", []string{"rescale-copy"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isCLIMode(tt.args); got != tt.want {
				t.Errorf("isCLIMode(%v) = %v, want %v", tt.args, got, tt.want)
			}
		})
	}
}

func TestIsCLIModeHeadless(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("display detection only applies on Linux")
	}
	t.Setenv("DISPLAY", "")
	t.Setenv("WAYLAND_DISPLAY", "")

	if !isCLIMode([]string{"rescale-copy"}) {
		t.Error("expected CLI mode without a display")
	}
}

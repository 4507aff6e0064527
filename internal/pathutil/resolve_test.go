package pathutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolveAbsolutePath_Empty(t *testing.T) {
	got, err := ResolveAbsolutePath("")
	if err != nil {
		t.Fatalf("ResolveAbsolutePath failed: %v", err)
	}
	wd, _ := os.Getwd()
	if got != wd {
		t.Errorf("got %q, want working directory %q", got, wd)
	}
}

func TestResolveAbsolutePath_ExistingFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(file, []byte("a"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := ResolveAbsolutePath(file)
	if err != nil {
		t.Fatalf("ResolveAbsolutePath failed: %v", err)
	}
	want, _ := filepath.EvalSymlinks(file)
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResolveAbsolutePath_NonExistentTail(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "new", "sub")

	got, err := ResolveAbsolutePath(missing)
	if err != nil {
		t.Fatalf("ResolveAbsolutePath failed: %v", err)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("expected absolute path, got %q", got)
	}
	if !strings.HasSuffix(got, filepath.Join("new", "sub")) {
		t.Errorf("expected non-existent tail to be kept, got %q", got)
	}
}

func TestResolveAbsolutePath_Home(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	got, err := ResolveAbsolutePath("~")
	if err != nil {
		t.Fatalf("ResolveAbsolutePath failed: %v", err)
	}
	want, _ := filepath.EvalSymlinks(home)
	if got != want && got != home {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResolveAll(t *testing.T) {
	dir := t.TempDir()
	paths := []string{filepath.Join(dir, "b"), filepath.Join(dir, "a")}

	got, err := ResolveAll(paths)
	if err != nil {
		t.Fatalf("ResolveAll failed: %v", err)
	}
	if len(got) != 2 || filepath.Base(got[0]) != "b" || filepath.Base(got[1]) != "a" {
		t.Errorf("ResolveAll should keep order, got %v", got)
	}
}

func TestResolveAbsolutePath_SymlinkedParentWithMissingTail(t *testing.T) {
	dir := t.TempDir()
	realDir := filepath.Join(dir, "real")
	if err := os.Mkdir(realDir, 0755); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "link")
	if err := os.Symlink(realDir, link); err != nil {
		t.Skipf("symlinks not available: %v", err)
	}

	got, err := ResolveAbsolutePath(filepath.Join(link, "new", "file.bin"))
	if err != nil {
		t.Fatalf("ResolveAbsolutePath failed: %v", err)
	}
	resolvedReal, _ := filepath.EvalSymlinks(realDir)
	want := filepath.Join(resolvedReal, "new", "file.bin")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResolveAbsolutePath_TildeUserIsNotExpanded(t *testing.T) {
	got, err := ResolveAbsolutePath("~someone")
	if err != nil {
		t.Fatalf("ResolveAbsolutePath failed: %v", err)
	}
	if filepath.Base(got) != "~someone" {
		t.Errorf("got %q, want a path ending in ~someone", got)
	}
}

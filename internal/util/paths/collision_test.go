package paths

import (
	"path/filepath"
	"testing"
)

func TestResolveCollisions_NoCollisions(t *testing.T) {
	targets := []CopyTarget{
		{Index: 0, Source: "/a/file1.bin", Target: "/dest/file1.bin"},
		{Index: 1, Source: "/a/file2.bin", Target: "/dest/file2.bin"},
		{Index: 2, Source: "/a/file3.bin", Target: "/dest/file3.bin"},
	}

	result, count := ResolveCollisions(targets)

	if count != 0 {
		t.Errorf("expected 0 collisions, got %d", count)
	}
	for i, want := range []string{"/dest/file1.bin", "/dest/file2.bin", "/dest/file3.bin"} {
		if result[i].Target != want {
			t.Errorf("expected %s, got %s", want, result[i].Target)
		}
	}
}

func TestResolveCollisions_TwoDuplicates(t *testing.T) {
	targets := []CopyTarget{
		{Index: 0, Source: "/x/report.txt", Target: "/dest/report.txt"},
		{Index: 1, Source: "/y/report.txt", Target: "/dest/report.txt"},
		{Index: 2, Source: "/y/other.txt", Target: "/dest/other.txt"},
	}

	result, count := ResolveCollisions(targets)

	if count != 2 {
		t.Errorf("expected 2 collisions, got %d", count)
	}
	if result[0].Target != "/dest/report_1.txt" {
		t.Errorf("expected /dest/report_1.txt, got %s", result[0].Target)
	}
	if result[1].Target != "/dest/report_2.txt" {
		t.Errorf("expected /dest/report_2.txt, got %s", result[1].Target)
	}
	if result[2].Target != "/dest/other.txt" {
		t.Errorf("non-colliding target changed: %s", result[2].Target)
	}
}

func TestResolveCollisions_NoExtension(t *testing.T) {
	targets := []CopyTarget{
		{Index: 2, Target: "/out/Makefile"},
		{Index: 3, Target: "/out/Makefile"},
	}

	result, _ := ResolveCollisions(targets)

	if result[0].Target != "/out/Makefile_3" || result[1].Target != "/out/Makefile_4" {
		t.Errorf("got %s and %s", result[0].Target, result[1].Target)
	}
}

func TestResolveCollisions_Empty(t *testing.T) {
	result, count := ResolveCollisions(nil)
	if len(result) != 0 || count != 0 {
		t.Errorf("expected empty result, got %v, %d", result, count)
	}
}

func TestPlanTargets(t *testing.T) {
	dest := filepath.Join("tmp", "dest")
	sources := []string{
		filepath.Join("a", "one.dat"),
		filepath.Join("b", "two.dat"),
		filepath.Join("c", "one.dat"),
		filepath.Join("d", "four.dat"),
	}

	targets, count := PlanTargets(sources, dest)

	if count != 2 {
		t.Errorf("expected 2 collisions, got %d", count)
	}
	want := []string{
		filepath.Join(dest, "one_1.dat"),
		filepath.Join(dest, "two.dat"),
		filepath.Join(dest, "one_3.dat"),
		filepath.Join(dest, "four.dat"),
	}
	for i, w := range want {
		if targets[i].Target != w {
			t.Errorf("targets[%d] = %s, want %s", i, targets[i].Target, w)
		}
		if targets[i].Index != i || targets[i].Source != sources[i] {
			t.Errorf("targets[%d] = %+v lost its slot", i, targets[i])
		}
	}
}

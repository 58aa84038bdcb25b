package config

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte("digraph {}"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestResolveInputsWithGlobs(t *testing.T) {
	root := t.TempDir()
	top := filepath.Join(root, "top.dot")
	nested := filepath.Join(root, "graphs", "alu", "add.gv")
	deep := filepath.Join(root, "graphs", "mem", "store.yaml")
	skipped := filepath.Join(root, "graphs", "mem", "old.dot")
	notes := filepath.Join(root, "graphs", "README.md")
	cfgFile := filepath.Join(root, "graphs", "dfg2blif.json")
	for _, p := range []string{top, nested, deep, skipped, notes, cfgFile} {
		touch(t, p)
	}

	cfg := Config{
		Inputs:  []string{"*.dot", "graphs/**"},
		Exclude: []string{"graphs/**/old.dot"},
	}

	files, err := cfg.ResolveInputs(root)
	if err != nil {
		t.Fatalf("ResolveInputs: %v", err)
	}
	want := []string{nested, deep, top}
	if len(files) != len(want) {
		t.Fatalf("expected %v, got %v", want, files)
	}
	for i := range want {
		if filepath.Clean(files[i]) != filepath.Clean(want[i]) {
			t.Fatalf("expected %v, got %v", want, files)
		}
	}
}

func TestResolveInputsSuffixPattern(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "x", "y", "a.dot")
	b := filepath.Join(root, "x", "b.json")
	touch(t, a)
	touch(t, b)

	cfg := Config{Inputs: []string{"**/*.dot"}}
	files, err := cfg.ResolveInputs(root)
	if err != nil {
		t.Fatalf("ResolveInputs: %v", err)
	}
	if len(files) != 1 || !containsPath(files, a) {
		t.Fatalf("expected only %s, got %v", a, files)
	}
}

func TestResolveInputsMissingDirectory(t *testing.T) {
	cfg := Config{Inputs: []string{"nope/**/*.dot"}}
	files, err := cfg.ResolveInputs(t.TempDir())
	if err != nil {
		t.Fatalf("ResolveInputs: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("expected no files, got %v", files)
	}
}

func TestResolveInputsBadPattern(t *testing.T) {
	cfg := Config{Inputs: []string{"[.dot"}}
	if _, err := cfg.ResolveInputs(t.TempDir()); err == nil {
		t.Fatalf("expected pattern error")
	}
}

func containsPath(files []string, target string) bool {
	for _, f := range files {
		if filepath.Clean(f) == filepath.Clean(target) {
			return true
		}
	}
	return false
}

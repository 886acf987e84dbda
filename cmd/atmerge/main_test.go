package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"atmerge/config"
	"atmerge/state"
)

func TestDumpConfiguration_Default(t *testing.T) {
	out := filepath.Join(t.TempDir(), "default.yaml")

	ctx := state.ContextWithEnv(t.Context())
	if err := newApp().Run(ctx, []string{"atmerge", "dumpconfig", "--default", out}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	want, err := config.Prepare()
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(want) {
		t.Errorf("unexpected default configuration:\n%s", got)
	}
}

func TestDumpConfiguration_Actual(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "cfg.yaml")
	if err := os.WriteFile(cfgFile, []byte("version: 1\nprocessing:\n  range_policy: disjoint\n"), 0644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "actual.yaml")

	ctx := state.ContextWithEnv(t.Context())
	if err := newApp().Run(ctx, []string{"atmerge", "--config", cfgFile, "dumpconfig", out}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(got), "range_policy: disjoint") {
		t.Errorf("expected policy override in output:\n%s", got)
	}
}

func TestProcessCommand(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "site.css")
	if err := os.WriteFile(src, []byte("@media print { a { color: red } }\n@media print { b { color: blue } }\n"), 0644); err != nil {
		t.Fatal(err)
	}
	dst := filepath.Join(dir, "out")

	ctx := state.ContextWithEnv(t.Context())
	if err := newApp().Run(ctx, []string{"atmerge", "process", src, dst}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dst, "site.css"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(string(got), "@media print") != 1 {
		t.Errorf("expected blocks to be merged:\n%s", got)
	}
}

package dispatch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/qcodec/qcodec/internal/config"
)

func writeFile(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile(%s): %v", name, err)
	}
}

func TestDiscoverInputsMatchesAnyVideoExtension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.mkv")
	writeFile(t, dir, "b.mp4")
	writeFile(t, dir, "notes.txt")

	cfg := config.Default()
	cfg.InputDir = dir
	cfg.InputExt = "*"

	got, err := discoverInputs(cfg)
	if err != nil {
		t.Fatalf("discoverInputs: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(got) = %d, want 2: %v", len(got), got)
	}
}

func TestDiscoverInputsFiltersByConfiguredExtension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.mkv")
	writeFile(t, dir, "b.mp4")

	cfg := config.Default()
	cfg.InputDir = dir
	cfg.InputExt = "mkv"

	got, err := discoverInputs(cfg)
	if err != nil {
		t.Fatalf("discoverInputs: %v", err)
	}
	if len(got) != 1 || filepath.Base(got[0]) != "a.mkv" {
		t.Fatalf("got = %v, want [a.mkv]", got)
	}
}

func TestDiscoverInputsSkipsSubdirectories(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.mkv")
	if err := os.Mkdir(filepath.Join(dir, "sub.mkv"), 0755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}

	cfg := config.Default()
	cfg.InputDir = dir
	cfg.InputExt = "*"

	got, err := discoverInputs(cfg)
	if err != nil {
		t.Fatalf("discoverInputs: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(got) = %d, want 1", len(got))
	}
}

func TestDiscoverInputsErrorsOnMissingDir(t *testing.T) {
	cfg := config.Default()
	cfg.InputDir = filepath.Join(t.TempDir(), "does-not-exist")

	if _, err := discoverInputs(cfg); err == nil {
		t.Fatal("expected error for missing input_dir, got nil")
	}
}

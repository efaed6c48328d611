package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type reload struct {
	cfg *Config
	err error
}

func TestWatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "abbrmark.toml")
	if err := os.WriteFile(path, []byte("[editor]\ntab_width = 2\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloads := make(chan reload, 8)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(cfg *Config, err error) {
			reloads <- reload{cfg, err}
		})
	}()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	// Unrelated files in the same directory are ignored.
	if err := os.WriteFile(filepath.Join(dir, "other.toml"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("[editor]\ntab_width = 8\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case r := <-reloads:
		if r.err != nil {
			t.Fatalf("reload failed: %v", r.err)
		}
		if r.cfg.Editor.TabWidth != 8 {
			t.Errorf("expected tab width 8, got %d", r.cfg.Editor.TabWidth)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}

	if err := os.WriteFile(path, []byte("[editor]\ntab_width = 99\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	select {
	case r := <-reloads:
		if r.err == nil {
			t.Error("expected an invalid file to report an error")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected nil on cancel, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestWatchMissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone", "abbrmark.toml")
	err := Watch(context.Background(), path, func(*Config, error) {})
	if err == nil {
		t.Error("expected an error for a missing directory")
	}
}

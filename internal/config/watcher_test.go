package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func watcherTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func loadLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n"), nil
}

func TestFileWatcherReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.txt")
	if err := os.WriteFile(path, []byte("echo one\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	received := make(chan []string, 1)
	w := NewFileWatcher(
		path,
		loadLines,
		watcherTestLogger(),
		WithDebounce[[]string](50*time.Millisecond),
	)
	w.OnReload(func(lines []string) {
		select {
		case received <- lines:
		default:
		}
	})

	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(path, []byte("echo one\necho two\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case lines := <-received:
		if len(lines) != 2 {
			t.Errorf("expected 2 lines after reload, got %v", lines)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for reload notification")
	}
}

func TestFileWatcherUnsubscribe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.txt")
	if err := os.WriteFile(path, []byte("echo one\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	calls := make(chan struct{}, 4)
	w := NewFileWatcher(
		path,
		loadLines,
		watcherTestLogger(),
		WithDebounce[[]string](50*time.Millisecond),
	)
	unsub := w.OnReload(func([]string) { calls <- struct{}{} })
	unsub()

	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(path, []byte("echo two\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-calls:
		t.Error("unsubscribed handler should not be called")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestFileWatcherLoadError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.txt")
	if err := os.WriteFile(path, []byte("echo one\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	errs := make(chan error, 1)
	w := NewFileWatcher(
		path,
		func(string) ([]string, error) { return nil, os.ErrPermission },
		watcherTestLogger(),
		WithDebounce[[]string](50*time.Millisecond),
		WithErrorHandler[[]string](func(err error) {
			select {
			case errs <- err:
			default:
			}
		}),
	)

	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(path, []byte("echo two\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-errs:
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for error handler")
	}
}

func TestFileWatcherMissingFile(t *testing.T) {
	w := NewFileWatcher(
		filepath.Join(t.TempDir(), "absent.txt"),
		loadLines,
		watcherTestLogger(),
	)
	if err := w.Start(); err == nil {
		w.Stop()
		t.Error("expected error watching a missing file")
	}
}

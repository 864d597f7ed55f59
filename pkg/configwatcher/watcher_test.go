package configwatcher

import (
	"context"
	"curriculum_backend/internal/config"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"
)

func TestWatch_ReloadsOnceAfterBurstOfWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("reorder:\n  debounce_ms: 100\n"), 0644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *config.Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, dir, 50*time.Millisecond, func(cfg *config.Config) { reloaded <- cfg })
	}()

	// 等待 watcher 注册
	time.Sleep(100 * time.Millisecond)
	for _, ms := range []int{200, 300, 700} {
		body := []byte("reorder:\n  debounce_ms: " + strconv.Itoa(ms) + "\n")
		if err := os.WriteFile(path, body, 0644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case cfg := <-reloaded:
		if cfg.Reorder.DebounceMS != 700 {
			t.Errorf("DebounceMS = %d, want 700", cfg.Reorder.DebounceMS)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("config was not reloaded")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Watch() did not stop after cancel")
	}
}

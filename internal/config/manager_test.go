package config

import (
	"context"
	"testing"
	"time"

	"github.com/clinscribe/clinscribe/internal/provider"
)

func setupManagerEnv(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(provider.EnvAssemblyAIKey, "assemblyai-test-key-0123")
	t.Setenv(provider.EnvOpenAIKey, "sk-test")
	t.Setenv(provider.EnvGroqKey, "gsk_test")
}

func TestManager_GetConfigReturnsCopy(t *testing.T) {
	setupManagerEnv(t)

	m, err := NewManager()
	if err != nil {
		t.Fatalf("NewManager() error: %v", err)
	}

	cfg := m.GetConfig()
	cfg.Report.Width = 1

	if m.GetConfig().Report.Width == 1 {
		t.Error("mutating the returned config leaked into the manager")
	}
}

func TestManager_HotReload(t *testing.T) {
	setupManagerEnv(t)

	m, err := NewManager()
	if err != nil {
		t.Fatalf("NewManager() error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := m.StartWatching(ctx); err != nil {
		t.Fatalf("StartWatching() error: %v", err)
	}
	defer m.Stop()

	updated := m.GetConfig()
	updated.Report.Width = 60
	if err := Save(updated); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if m.GetConfig().Report.Width == 60 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("config not reloaded, width = %d", m.GetConfig().Report.Width)
}

func TestManager_KeepsPreviousConfigOnInvalidReload(t *testing.T) {
	setupManagerEnv(t)

	m, err := NewManager()
	if err != nil {
		t.Fatalf("NewManager() error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := m.StartWatching(ctx); err != nil {
		t.Fatalf("StartWatching() error: %v", err)
	}
	defer m.Stop()

	before := m.GetConfig().Polling.Interval

	broken := m.GetConfig()
	broken.Polling.Interval = -time.Second
	if err := Save(broken); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	// give the watcher a chance to see the write and reject it
	time.Sleep(500 * time.Millisecond)

	if got := m.GetConfig().Polling.Interval; got != before {
		t.Errorf("invalid reload replaced config: interval = %v, want %v", got, before)
	}
}

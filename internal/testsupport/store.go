package testsupport

import (
	"testing"

	"factwatch/internal/config"
	"factwatch/internal/settings"
)

// MustOpenSettings opens the settings store for cfg and registers cleanup.
func MustOpenSettings(t testing.TB, cfg *config.Config) *settings.Store {
	t.Helper()

	store, err := settings.Open(cfg.SettingsDBPath())
	if err != nil {
		t.Fatalf("settings.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

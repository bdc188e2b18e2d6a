package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/stacklok/toolhive-sync/internal/engine"
	pkgsync "github.com/stacklok/toolhive-sync/internal/sync"
	"github.com/stacklok/toolhive-sync/internal/sync/state"
)

// Seed is the account information loaded into the state store on startup
type Seed struct {
	AuthInfo       *engine.AuthInfo       `json:"authInfo"`
	DeviceSettings *engine.DeviceSettings `json:"deviceSettings"`

	// Engines optionally presets the enabled state of engines
	Engines map[string]bool `json:"engines,omitempty"`
}

// LoadSeed reads and validates a seed file
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed Seed
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	if seed.AuthInfo == nil {
		return nil, fmt.Errorf("seed file %s has no authInfo", path)
	}
	if seed.DeviceSettings == nil {
		return nil, fmt.Errorf("seed file %s has no deviceSettings", path)
	}
	for name := range seed.Engines {
		// forms is stored alongside history even though it cannot be configured
		if pkgsync.Engine(name) == pkgsync.EngineForms {
			continue
		}
		if _, err := pkgsync.ParseEngine(name); err != nil {
			return nil, fmt.Errorf("seed file %s: %w", path, err)
		}
	}
	return &seed, nil
}

// Apply writes the seed into the state store. It is idempotent and safe to call on every startup.
func (s *Seed) Apply(ctx context.Context, stateSvc state.SyncStateService) error {
	if err := stateSvc.SetAuthInfo(ctx, *s.AuthInfo); err != nil {
		return fmt.Errorf("failed to seed auth info: %w", err)
	}
	if err := stateSvc.SetDeviceSettings(ctx, *s.DeviceSettings); err != nil {
		return fmt.Errorf("failed to seed device settings: %w", err)
	}
	for name, enabled := range s.Engines {
		if err := stateSvc.SetEngineStatus(ctx, name, enabled); err != nil {
			return fmt.Errorf("failed to seed engine status of %s: %w", name, err)
		}
	}

	slog.Info("Seeded sync account state",
		"device", s.DeviceSettings.Name,
		"engines", len(s.Engines))
	return nil
}

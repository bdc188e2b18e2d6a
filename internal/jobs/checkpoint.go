package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/goccy/go-json"
)

const (
	// checkpointNamespace is the kv namespace holding pending work definitions
	checkpointNamespace = "jobs"

	// checkpointVersion is the format version written with every checkpoint.
	// Checkpoints from another major version or a newer release are not restored.
	checkpointVersion = "1.0.0"
)

// checkpoint is the durable form of a pending work definition
type checkpoint struct {
	Version string        `json:"version"`
	Name    string        `json:"name"`
	Request WorkRequest   `json:"request"`
	Period  time.Duration `json:"period,omitempty"`
	NextRun time.Time     `json:"nextRun"`
	Attempt int           `json:"attempt,omitempty"`
}

// persist writes the current definition of name, or deletes its checkpoint when
// there is none. The state is read when the write happens, so concurrent calls
// always leave the latest definition behind.
func (q *Queue) persist(ctx context.Context, name string) error {
	q.persistMu.Lock()
	defer q.persistMu.Unlock()

	q.mu.Lock()
	item, ok := q.items[name]
	var cp checkpoint
	if ok {
		cp = checkpoint{
			Version: checkpointVersion,
			Name:    item.name,
			Request: item.req,
			Period:  item.period,
			NextRun: item.nextRun,
			Attempt: item.attempt,
		}
	}
	q.mu.Unlock()

	if !ok {
		if err := q.store.Delete(ctx, checkpointNamespace, name); err != nil {
			return fmt.Errorf("failed to delete checkpoint for %q: %w", name, err)
		}
		return nil
	}

	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint for %q: %w", name, err)
	}
	if err := q.store.Set(ctx, checkpointNamespace, name, string(data)); err != nil {
		return fmt.Errorf("failed to write checkpoint for %q: %w", name, err)
	}
	return nil
}

// restore loads checkpoints once. Work enqueued before restore wins over its checkpoint.
func (q *Queue) restore(ctx context.Context) error {
	q.mu.Lock()
	if q.restored {
		q.mu.Unlock()
		return nil
	}
	q.restored = true
	q.mu.Unlock()

	names, err := q.store.Keys(ctx, checkpointNamespace)
	if err != nil {
		return fmt.Errorf("failed to list checkpoints: %w", err)
	}

	restored := 0
	for _, name := range names {
		raw, ok, err := q.store.Get(ctx, checkpointNamespace, name)
		if err != nil {
			return fmt.Errorf("failed to read checkpoint %q: %w", name, err)
		}
		if !ok {
			continue
		}

		var cp checkpoint
		if err := json.Unmarshal([]byte(raw), &cp); err != nil {
			slog.Warn("Discarding unreadable checkpoint", "name", name, "error", err)
			continue
		}
		if !checkpointCompatible(cp.Version) {
			slog.Warn("Skipping checkpoint written by an incompatible version",
				"name", name,
				"version", cp.Version,
				"supported", checkpointVersion)
			continue
		}

		q.mu.Lock()
		if _, exists := q.items[name]; !exists {
			item := q.newItem(name, cp.Request, cp.Period, cp.NextRun)
			item.attempt = cp.Attempt
			q.items[name] = item
			restored++
		}
		q.mu.Unlock()
	}

	if restored > 0 {
		q.metrics.RecordScheduled(ctx, int64(restored))
		slog.Info("Restored scheduled work from checkpoints", "count", restored)
		q.signal()
	}
	return nil
}

// checkpointCompatible reports whether a checkpoint of the given format version can be read
func checkpointCompatible(version string) bool {
	v, err := semver.NewVersion(version)
	if err != nil {
		return false
	}
	supported := semver.MustParse(checkpointVersion)
	return v.Major() == supported.Major() && !v.GreaterThan(supported)
}

package state

import (
	"context"

	"github.com/thoreinstein/flins/internal/locator"
	"github.com/thoreinstein/flins/internal/logging"
)

// Finder locates installations of a tracked item.
type Finder interface {
	Find(ctx context.Context, name string, kind Kind, scope locator.Scope) []locator.Installation
}

// CleanReport lists the keys Clean acted on, in sorted order.
type CleanReport struct {
	// Removed are keys dropped because nothing is installed for them.
	Removed []string
	// Skipped are stored keys that do not parse and were left alone.
	Skipped []string
}

// Clean removes entries from store that have no installation in any
// agent directory of the store's scope. The file is written at most once,
// and not at all when nothing is removed.
func Clean(ctx context.Context, store *Store, finder Finder) (CleanReport, error) {
	logger := logging.FromContext(ctx)

	var report CleanReport
	f, ok, err := store.Load()
	if err != nil || !ok {
		return report, err
	}

	scope := store.Scope()
	for _, raw := range f.Keys() {
		key, err := ParseKey(raw)
		if err != nil {
			logger.Warn("skipping malformed lock entry", "key", raw)
			report.Skipped = append(report.Skipped, raw)
			continue
		}
		if len(finder.Find(ctx, key.Name, key.Kind, scope)) == 0 {
			report.Removed = append(report.Removed, raw)
		}
	}

	if len(report.Removed) == 0 {
		return report, nil
	}

	for _, raw := range report.Removed {
		delete(f.Skills, raw)
	}
	logger.Debug("removing orphaned entries", "count", len(report.Removed), "scope", scope.String())
	if err := store.persist(f); err != nil {
		return CleanReport{Skipped: report.Skipped}, err
	}
	return report, nil
}

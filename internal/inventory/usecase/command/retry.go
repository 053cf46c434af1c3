package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/tair/inventory-engine/internal/inventory/eventstore"
)

// DefaultMaxAttempts bounds the reload-and-retry loop on version conflicts
const DefaultMaxAttempts = 5

// retryOnConflict runs op until it returns something other than a version
// conflict. Conflicts are a benign race between writers of the same stream:
// the loser reloads, reevaluates and tries again, up to attempts times.
func retryOnConflict(ctx context.Context, attempts int, op func(ctx context.Context) error) error {
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}

	var err error
	for i := 0; i < attempts; i++ {
		err = op(ctx)
		if !errors.Is(err, eventstore.ErrVersionConflict) {
			return err
		}
		versionConflicts.Inc()
	}
	return fmt.Errorf("gave up after %d attempts: %w", attempts, err)
}

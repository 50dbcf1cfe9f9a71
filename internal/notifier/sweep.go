package notifier

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Pruner deletes notification history older than a cutoff.
type Pruner interface {
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

// Sweep prunes history older than retention once on entry and then every
// interval. It blocks until the context is cancelled.
func Sweep(ctx context.Context, p Pruner, retention, interval time.Duration, log zerolog.Logger) {
	prune := func() {
		n, err := p.Prune(ctx, time.Now().Add(-retention))
		if err != nil {
			log.Debug().Err(err).Msg("notification sweep failed")
			return
		}
		if n > 0 {
			log.Debug().Int64("pruned", n).Msg("notification history swept")
		}
	}

	prune()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			prune()
		}
	}
}

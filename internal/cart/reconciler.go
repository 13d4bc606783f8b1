package cart

import (
	"context"
	"log/slog"
	"time"
)

const DefaultReconcileInterval = 30 * time.Second

// RunReconciler retries diverged carts every interval until ctx is done.
func RunReconciler(ctx context.Context, svc *Service, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultReconcileInterval
	}

	slog.Info("cart reconciler started", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("cart reconciler stopped")
			return
		case <-ticker.C:
			if n := svc.ReconcileDiverged(ctx); n > 0 {
				slog.Info("diverged carts resynced", "count", n)
			}
		}
	}
}

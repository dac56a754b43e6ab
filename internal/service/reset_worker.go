package service

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"

	"docscan/internal/logger"
)

const resetLockKey = "lock:credit-reset"

// Locker is satisfied by cache.Client.
type Locker interface {
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) bool
}

// ResetWorker periodically restores the daily balance of users not yet reset today.
type ResetWorker struct {
	ledger   LedgerService
	locker   Locker
	interval time.Duration
}

// NewResetWorker creates a worker sweeping every interval. A nil locker sweeps unconditionally.
func NewResetWorker(ledger LedgerService, locker Locker, interval time.Duration) *ResetWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &ResetWorker{ledger: ledger, locker: locker, interval: interval}
}

// Run sweeps once immediately and then on every tick until ctx is cancelled.
func (w *ResetWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.Sweep(ctx)
	for {
		select {
		case <-ticker.C:
			w.Sweep(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Sweep runs one reset pass. Replicas share a short redis lock so only one
// of them sweeps per tick.
func (w *ResetWorker) Sweep(ctx context.Context) {
	if w.locker != nil {
		host, _ := os.Hostname()
		if !w.locker.SetNX(ctx, resetLockKey, []byte(host), w.interval/2) {
			logger.Debug("credit reset skipped, lock held elsewhere")
			return
		}
	}

	n, err := w.ledger.ResetAll(ctx, w.ledger.Today())
	if err != nil {
		logger.Error("credit reset sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		logger.Info("daily credits reset", zap.Int64("users", n))
	}
}

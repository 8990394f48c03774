package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type revocationPurgeTarget interface {
	PurgeExpiredRevocations(ctx context.Context) (int64, error)
}

// RevocationPurger periodically trims the revocation ledger so it does not
// grow with every logout forever.
type RevocationPurger struct {
	svc      revocationPurgeTarget
	interval time.Duration
	logger   *zap.Logger
}

func NewRevocationPurger(svc revocationPurgeTarget, interval time.Duration, logger *zap.Logger) *RevocationPurger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RevocationPurger{svc: svc, interval: interval, logger: logger}
}

// Run blocks until ctx is cancelled.
func (p *RevocationPurger) Run(ctx context.Context) {
	if p.interval <= 0 {
		p.logger.Info("revocation purger disabled")
		return
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := p.svc.PurgeExpiredRevocations(ctx)
			if err != nil {
				p.logger.Warn("failed to purge revoked tokens", zap.Error(err))
				continue
			}
			if n > 0 {
				p.logger.Info("purged expired revoked tokens", zap.Int64("count", n))
			}
		}
	}
}

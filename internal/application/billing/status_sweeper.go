package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/byteledger/backend/internal/domain/billing"
	"github.com/byteledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// SweepResult summarizes one status sweep
type SweepResult struct {
	Examined  int
	Updated   int
	Conflicts int
}

// StatusSweeper rewrites stored statuses that time has made stale (PENDING sales past
// due, open estimates past their valid-until date) so status list filters stay accurate
type StatusSweeper struct {
	repo      billing.StatusSweepRepository
	batchSize int
	now       func() time.Time
	logger    *zap.Logger
}

// NewStatusSweeper creates a sweeper examining at most batchSize documents per run
func NewStatusSweeper(repo billing.StatusSweepRepository, batchSize int, logger *zap.Logger) *StatusSweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	if batchSize <= 0 {
		batchSize = 500
	}
	return &StatusSweeper{repo: repo, batchSize: batchSize, now: time.Now, logger: logger}
}

// SetClock replaces time.Now, mainly for tests
func (s *StatusSweeper) SetClock(now func() time.Time) {
	s.now = now
}

// Name identifies the sweep in scheduler logs
func (s *StatusSweeper) Name() string {
	return "billing-status-sweep"
}

// Run performs one sweep and reports failure only when the candidates cannot be loaded
func (s *StatusSweeper) Run(ctx context.Context) error {
	_, err := s.Sweep(ctx)
	return err
}

// Sweep refreshes every candidate whose derived status differs from the stored one.
// A document written concurrently is skipped; its writer already stored a fresh status.
func (s *StatusSweeper) Sweep(ctx context.Context) (SweepResult, error) {
	now := s.now()
	docs, err := s.repo.FindStatusCandidates(ctx, now, s.batchSize)
	if err != nil {
		return SweepResult{}, fmt.Errorf("failed to load status candidates: %w", err)
	}

	result := SweepResult{Examined: len(docs)}
	for i := range docs {
		doc := &docs[i]
		stored := doc.Status
		if doc.Refresh(now) == stored {
			continue
		}
		if err := s.repo.UpdateStatus(ctx, doc); err != nil {
			if errors.Is(err, shared.ErrConcurrencyConflict) {
				result.Conflicts++
				continue
			}
			return result, fmt.Errorf("failed to update status of %s: %w", doc.Number, err)
		}
		result.Updated++
	}

	if result.Updated > 0 || result.Conflicts > 0 {
		s.logger.Info("billing statuses refreshed",
			zap.Int("examined", result.Examined),
			zap.Int("updated", result.Updated),
			zap.Int("conflicts", result.Conflicts))
	}
	return result, nil
}

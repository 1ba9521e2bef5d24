package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/msgbox/pkg/domain/interfaces"
	"github.com/m-mizutani/msgbox/pkg/domain/model"
	"github.com/m-mizutani/msgbox/pkg/infra/staging"
	"github.com/m-mizutani/msgbox/pkg/utils/logging"
)

type retentionUseCase struct {
	store  *staging.Store
	maxAge time.Duration
	now    func() time.Time
}

// RetentionOption configures the retention use case
type RetentionOption func(*retentionUseCase)

// WithClock replaces the time source
func WithClock(now func() time.Time) RetentionOption {
	return func(uc *retentionUseCase) {
		uc.now = now
	}
}

// NewRetention creates a new instance of RetentionUseCase. A maxAge of zero
// keeps everything.
func NewRetention(store *staging.Store, maxAge time.Duration, opts ...RetentionOption) interfaces.RetentionUseCase {
	uc := &retentionUseCase{
		store:  store,
		maxAge: maxAge,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Sweep removes staging entries last modified before now minus maxAge
func (uc *retentionUseCase) Sweep(ctx context.Context) (*model.SweepResult, error) {
	logger := logging.From(ctx)

	if uc.maxAge <= 0 {
		logger.Debug("Retention disabled, nothing to sweep")
		return &model.SweepResult{}, nil
	}

	cutoff := uc.now().Add(-uc.maxAge)
	removed, err := uc.store.Sweep(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	logger.Info("Retention sweep completed",
		"cutoff", cutoff,
		"removed", len(removed),
	)
	return &model.SweepResult{Removed: removed}, nil
}

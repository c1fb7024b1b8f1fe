package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
)

type SweepOutput struct {
	Expired int
}

// Sweep retires every ACTIVE code whose lifetime has lapsed. The update is
// conditional on the ACTIVE status, so a code activated between the read and
// the write is left alone; running the sweep twice in a row is harmless.
func (s *Usecase) Sweep(ctx context.Context) (*SweepOutput, error) {
	ctx, span := s.startSpan(ctx, "Sweep")
	defer span.End()

	now := s.clock.Now()

	expired, err := s.repoDB.ExpireDueCodes(ctx, now)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo expire due codes", "error", err)
		return nil, goerror.NewServer(err)
	}

	for _, c := range expired {
		s.publishExpired(ctx, c, now)
	}

	if len(expired) > 0 {
		slog.InfoContext(ctx, "expiry sweep retired codes", "count", len(expired))
	}

	return &SweepOutput{Expired: len(expired)}, nil
}

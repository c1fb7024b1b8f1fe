package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shandysiswandi/gotp/internal/otp/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
)

type PolicyOutput struct {
	TTL        time.Duration
	CodeLength int
	UpdatedAt  time.Time
}

// PolicyGet returns the current code-generation policy.
func (s *Usecase) PolicyGet(ctx context.Context) (*PolicyOutput, error) {
	ctx, span := s.startSpan(ctx, "PolicyGet")
	defer span.End()

	policy, err := s.repoDB.GetPolicy(ctx)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("One-time code policy is not configured", goerror.CodeInternal)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get policy", "error", err)
		return nil, goerror.NewServer(err)
	}

	return &PolicyOutput{
		TTL:        policy.TTL,
		CodeLength: policy.CodeLength,
		UpdatedAt:  policy.UpdatedAt,
	}, nil
}

type PolicySetInput struct {
	TTLMillis  int64 `validate:"required,gt=0"`
	CodeLength int   `validate:"required,gt=0"`
}

// PolicySet replaces the code-generation policy. The new policy only affects
// codes issued after the change; codes already out keep the expiry they were
// created with.
func (s *Usecase) PolicySet(ctx context.Context, in PolicySetInput) (*PolicyOutput, error) {
	ctx, span := s.startSpan(ctx, "PolicySet")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	policy := entity.Policy{
		TTL:        time.Duration(in.TTLMillis) * time.Millisecond,
		CodeLength: in.CodeLength,
		UpdatedAt:  s.clock.Now(),
	}

	if !policy.Valid() {
		return nil, goerror.NewInvalidInput(nil,
			"ttl_millis", "must be between 10 seconds and 24 hours",
			"code_length", "must be between 5 and 20",
		)
	}

	if err := s.repoDB.UpsertPolicy(ctx, policy); err != nil {
		slog.ErrorContext(ctx, "failed to repo upsert policy", "error", err)
		return nil, goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "code policy updated",
		"ttl", policy.TTL.String(), "code_length", policy.CodeLength)

	return &PolicyOutput{
		TTL:        policy.TTL,
		CodeLength: policy.CodeLength,
		UpdatedAt:  policy.UpdatedAt,
	}, nil
}

package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shandysiswandi/gotp/internal/otp/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
)

type ActivateInput struct {
	UserID      int64  `validate:"required"`
	OperationID string `validate:"required,operation_id"`
	Code        string `validate:"required"`
}

type ActivateOutput struct {
	CodeID int64
	UsedAt time.Time
}

// Activate consumes the ACTIVE code for (user, operation) when the supplied
// code matches.
//
// The status flip is a compare-and-swap on ACTIVE, so a concurrent activation
// or sweep can win the race; the loser sees no active code. A mismatching
// code leaves the stored code untouched. A code whose lifetime has lapsed but
// which the sweep has not yet retired is treated as absent and retired here.
func (s *Usecase) Activate(ctx context.Context, in ActivateInput) (*ActivateOutput, error) {
	ctx, span := s.startSpan(ctx, "Activate")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	operationID := strings.TrimSpace(in.OperationID)

	code, err := s.repoDB.GetActiveCode(ctx, in.UserID, operationID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "no active code for operation",
			"user_id", in.UserID, "operation_id", operationID)
		return nil, errNoActiveCode()
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get active code",
			"user_id", in.UserID, "operation_id", operationID, "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	if code.ExpiredBy(now) {
		s.expireLazily(ctx, *code, now)
		return nil, errNoActiveCode()
	}

	if !s.hmac.Verify(code.CodeHash, in.Code) {
		slog.WarnContext(ctx, "code mismatch on activation",
			"user_id", in.UserID, "operation_id", operationID)
		return nil, goerror.NewBusiness("The provided code does not match", goerror.CodeInvalidInput)
	}

	swapped, err := s.repoDB.MarkCodeUsed(ctx, code.ID, now)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo mark code used", "code_id", code.ID, "error", err)
		return nil, goerror.NewServer(err)
	}
	if !swapped {
		// Lost the race against another activation or the expiry sweep.
		slog.WarnContext(ctx, "code left active state concurrently", "code_id", code.ID)
		return nil, errNoActiveCode()
	}

	s.publishUsed(ctx, *code, now)

	return &ActivateOutput{CodeID: code.ID, UsedAt: now}, nil
}

func errNoActiveCode() error {
	return goerror.NewBusiness("No active code for this operation", goerror.CodeNotFound)
}

// expireLazily retires a time-lapsed code found during activation, without
// waiting for the sweep. Best effort: the sweep will retire it anyway.
func (s *Usecase) expireLazily(ctx context.Context, c entity.Code, now time.Time) {
	swapped, err := s.repoDB.MarkCodeExpired(ctx, c.ID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo mark code expired", "code_id", c.ID, "error", err)
		return
	}
	if !swapped {
		return
	}

	s.publishExpired(ctx, c, now)
}

func (s *Usecase) publishUsed(ctx context.Context, c entity.Code, usedAt time.Time) {
	s.goroutine.Go(ctx, func(gctx context.Context) error {
		if err := s.repoMessaging.PublishCodeUsed(gctx, CodeUsedEvent{
			CodeID:      c.ID,
			UserID:      c.UserID,
			OperationID: c.OperationID,
			UsedAt:      usedAt,
		}); err != nil {
			slog.ErrorContext(gctx, "failed to publish code used event", "code_id", c.ID, "error", err)
		}

		if err := s.audit.Record(gctx, AuditEntry{
			Event:       "used",
			CodeID:      c.ID,
			UserID:      c.UserID,
			OperationID: c.OperationID,
			At:          usedAt,
		}); err != nil {
			slog.ErrorContext(gctx, "failed to record audit entry", "code_id", c.ID, "error", err)
		}

		return nil
	})
}

func (s *Usecase) publishExpired(ctx context.Context, c entity.Code, expiredAt time.Time) {
	s.goroutine.Go(ctx, func(gctx context.Context) error {
		if err := s.repoMessaging.PublishCodeExpired(gctx, CodeExpiredEvent{
			CodeID:      c.ID,
			UserID:      c.UserID,
			OperationID: c.OperationID,
			ExpiredAt:   expiredAt,
		}); err != nil {
			slog.ErrorContext(gctx, "failed to publish code expired event", "code_id", c.ID, "error", err)
		}

		if err := s.audit.Record(gctx, AuditEntry{
			Event:       "expired",
			CodeID:      c.ID,
			UserID:      c.UserID,
			OperationID: c.OperationID,
			At:          expiredAt,
		}); err != nil {
			slog.ErrorContext(gctx, "failed to record audit entry", "code_id", c.ID, "error", err)
		}

		return nil
	})
}

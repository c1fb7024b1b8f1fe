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

type StatusInput struct {
	// UserID scopes the lookup. Admins may leave it zero to resolve the
	// operation across users.
	UserID      int64 `validate:"required_if=IsAdmin false"`
	IsAdmin     bool
	OperationID string `validate:"required,operation_id"`
}

type StatusOutput struct {
	CodeID    int64
	Status    entity.CodeStatus
	ExpiresAt time.Time
	UsedAt    *time.Time
}

// Status reports the state of the most recent code for (user, operation);
// admins may resolve by operation alone.
// An ACTIVE code whose lifetime has already lapsed is reported as EXPIRED,
// regardless of whether the sweep has retired the row yet.
func (s *Usecase) Status(ctx context.Context, in StatusInput) (*StatusOutput, error) {
	ctx, span := s.startSpan(ctx, "Status")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	operationID := strings.TrimSpace(in.OperationID)

	code, err := s.repoDB.GetLatestCode(ctx, in.UserID, operationID)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("No code found for this operation", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get latest code",
			"user_id", in.UserID, "operation_id", operationID, "error", err)
		return nil, goerror.NewServer(err)
	}

	status := code.Status
	if status == entity.CodeStatusActive && code.ExpiredBy(s.clock.Now()) {
		status = entity.CodeStatusExpired
	}

	return &StatusOutput{
		CodeID:    code.ID,
		Status:    status,
		ExpiresAt: code.ExpiresAt,
		UsedAt:    code.UsedAt,
	}, nil
}

package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
)

type DeleteInput struct {
	CodeID int64 `validate:"required,gt=0"`
	// ActorID is the authenticated user; non-admins may only delete their own
	// codes.
	ActorID int64 `validate:"required"`
	IsAdmin bool
}

// Delete removes a stored code outright, whatever its status. Mainly an
// administrative cleanup; regular users can only remove their own codes.
func (s *Usecase) Delete(ctx context.Context, in DeleteInput) error {
	ctx, span := s.startSpan(ctx, "Delete")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	code, err := s.repoDB.GetCodeByID(ctx, in.CodeID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "code not found", "code_id", in.CodeID)
		return goerror.NewBusiness("Code not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get code by id", "code_id", in.CodeID, "error", err)
		return goerror.NewServer(err)
	}

	if !in.IsAdmin && code.UserID != in.ActorID {
		slog.WarnContext(ctx, "actor not allowed to delete code",
			"code_id", in.CodeID, "actor_id", in.ActorID)
		return goerror.NewBusiness("You do not have access to this code", goerror.CodeForbidden)
	}

	if err := s.repoDB.DeleteCode(ctx, code.ID); err != nil {
		slog.ErrorContext(ctx, "failed to repo delete code", "code_id", code.ID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}

package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/gotp/internal/otp/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
)

type ListInput struct {
	// UserID scopes the listing. Admins may leave it zero to list every user.
	UserID      int64 `validate:"required_if=IsAdmin false"`
	IsAdmin     bool
	OperationID string
	Statuses    []string
	Page        int64
	Limit       int64
}

type ListOutput struct {
	Page  int64
	Limit int64
	Total int64
	Codes []entity.Code
}

// List returns the code history for a user, newest first. Codes are returned
// without their hashes being useful to a caller, but handlers must still not
// expose CodeHash.
func (s *Usecase) List(ctx context.Context, in ListInput) (*ListOutput, error) {
	ctx, span := s.startSpan(ctx, "List")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if in.Limit <= 0 || in.Limit > 100 {
		in.Limit = 10 // default limit
	}
	page := max(in.Page, 1)

	codes, count, err := s.repoDB.GetCodeList(ctx, entity.CodeListFilterData{
		UserID:      in.UserID,
		OperationID: strings.TrimSpace(in.OperationID),
		Statuses:    entity.ParseSafeCodeStatuses(in.Statuses),
		Page:        (page - 1) * in.Limit,
		Limit:       in.Limit,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list codes", "user_id", in.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &ListOutput{
		Page:  page,
		Limit: in.Limit,
		Total: count,
		Codes: codes,
	}, nil
}

package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/gotp/internal/identity/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
	"github.com/shandysiswandi/gotp/internal/shared/constant"
)

type UserListInput struct {
	Search string
	Page   int64
	Limit  int64
}

type UserListOutput struct {
	Page  int64
	Limit int64
	Total int64
	Users []entity.User
}

// UserList returns accounts in the directory, newest first.
func (s *Usecase) UserList(ctx context.Context, in UserListInput) (*UserListOutput, error) {
	ctx, span := s.startSpan(ctx, "UserList")
	defer span.End()

	if in.Limit <= 0 || in.Limit > 100 {
		in.Limit = 10 // default limit
	}
	page := max(in.Page, 1)

	search := strings.TrimSpace(in.Search)
	users, count, err := s.repoDB.GetUserList(ctx, entity.UserListFilterData{
		Search:         search,
		IsFilterSearch: search != "",
		Page:           (page - 1) * in.Limit,
		Limit:          in.Limit,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list users", "error", err)
		return nil, goerror.NewServer(err)
	}

	return &UserListOutput{
		Page:  page,
		Limit: in.Limit,
		Total: count,
		Users: users,
	}, nil
}

type UserDeleteInput struct {
	ID      int64 `validate:"required,gt=0"`
	ActorID int64 `validate:"required"`
}

// UserDelete soft-deletes an account. Deleted users can no longer sign in or
// receive codes.
func (s *Usecase) UserDelete(ctx context.Context, in UserDeleteInput) error {
	ctx, span := s.startSpan(ctx, "UserDelete")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	if in.ID == in.ActorID {
		return goerror.NewBusiness("You cannot delete your own account", goerror.CodeForbidden)
	}

	user, err := s.repoDB.GetUserByID(ctx, in.ID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user not found", "user_id", in.ID)
		return goerror.NewBusiness("User not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by id", "user_id", in.ID, "error", err)
		return goerror.NewServer(err)
	}

	if user.DeletedAt != nil {
		return nil
	}

	if err := s.repoDB.MarkUserDeleted(ctx, user.ID, in.ActorID); err != nil {
		slog.ErrorContext(ctx, "failed to repo mark user deleted",
			"user_id", user.ID, "by_user_id", in.ActorID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}

type UserGrantAdminInput struct {
	ID int64 `validate:"required,gt=0"`
}

// UserGrantAdmin promotes an account to the admin role. The new role takes
// effect when the user next signs in.
func (s *Usecase) UserGrantAdmin(ctx context.Context, in UserGrantAdminInput) error {
	ctx, span := s.startSpan(ctx, "UserGrantAdmin")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	user, err := s.repoDB.GetUserByID(ctx, in.ID)
	if errors.Is(err, goerror.ErrNotFound) {
		return goerror.NewBusiness("User not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by id", "user_id", in.ID, "error", err)
		return goerror.NewServer(err)
	}

	if user.Role == constant.RoleAdmin {
		return nil
	}

	if err := s.repoDB.UpdateUserRole(ctx, user.ID, constant.RoleAdmin); err != nil {
		slog.ErrorContext(ctx, "failed to repo update user role", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}

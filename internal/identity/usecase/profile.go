package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
)

type ProfileInput struct {
	UserID int64 `validate:"required"`
}

type ProfileOutput struct {
	UserID         int64
	Email          string
	FullName       string
	Phone          string
	TelegramChatID string
	Role           string
	CreatedAt      time.Time
}

// Profile returns the caller's account data.
func (s *Usecase) Profile(ctx context.Context, in ProfileInput) (*ProfileOutput, error) {
	ctx, span := s.startSpan(ctx, "Profile")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	user, err := s.repoDB.GetUserByID(ctx, in.UserID)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("User not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by id", "user_id", in.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &ProfileOutput{
		UserID:         user.ID,
		Email:          user.Email,
		FullName:       user.FullName,
		Phone:          user.Phone,
		TelegramChatID: user.TelegramChatID,
		Role:           user.Role,
		CreatedAt:      user.CreatedAt,
	}, nil
}

type ProfileUpdateInput struct {
	UserID         int64  `validate:"required"`
	FullName       string `validate:"required,alphaspace"`
	Phone          string `validate:"omitempty,e164"`
	TelegramChatID string
}

// ProfileUpdate changes the caller's display name and delivery contact
// points. Changing contact points affects where future codes are sent.
func (s *Usecase) ProfileUpdate(ctx context.Context, in ProfileUpdateInput) error {
	ctx, span := s.startSpan(ctx, "ProfileUpdate")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	user, err := s.repoDB.GetUserByID(ctx, in.UserID)
	if errors.Is(err, goerror.ErrNotFound) {
		return goerror.NewBusiness("User not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by id", "user_id", in.UserID, "error", err)
		return goerror.NewServer(err)
	}

	user.FullName = strings.TrimSpace(in.FullName)
	user.Phone = strings.TrimSpace(in.Phone)
	user.TelegramChatID = strings.TrimSpace(in.TelegramChatID)

	if err := s.repoDB.UpdateUserProfile(ctx, *user); err != nil {
		slog.ErrorContext(ctx, "failed to repo update user profile", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}

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

type SignUpInput struct {
	Email          string `validate:"required,email"`
	Password       string `validate:"required,password"`
	FullName       string `validate:"required,alphaspace"`
	Phone          string `validate:"omitempty,e164"`
	TelegramChatID string
}

type SignUpOutput struct {
	UserID      int64
	AccessToken string
}

// SignUp registers a new account with the regular user role and signs it in.
func (s *Usecase) SignUp(ctx context.Context, in SignUpInput) (*SignUpOutput, error) {
	ctx, span := s.startSpan(ctx, "SignUp")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))

	passwordHash, err := s.bcrypt.Hash(in.Password)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash password", "error", err)
		return nil, goerror.NewServer(err)
	}

	user := entity.User{
		ID:             s.uid.Generate(),
		Email:          email,
		FullName:       strings.TrimSpace(in.FullName),
		Phone:          strings.TrimSpace(in.Phone),
		TelegramChatID: strings.TrimSpace(in.TelegramChatID),
		Role:           constant.RoleUser,
		Password:       string(passwordHash),
		Status:         entity.UserStatusActive,
		CreatedAt:      s.clock.Now(),
	}

	if err := s.repoDB.CreateUser(ctx, user); err != nil {
		if errors.Is(err, goerror.ErrConflict) {
			slog.WarnContext(ctx, "email already registered", "email", email)
			return nil, goerror.NewBusiness("An account with that email already exists", goerror.CodeConflict)
		}
		slog.ErrorContext(ctx, "failed to repo create user", "email", email, "error", err)
		return nil, goerror.NewServer(err)
	}

	token, err := s.jwt.Generate(user.ID, user.Email, user.Role)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate access jwt token", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &SignUpOutput{UserID: user.ID, AccessToken: token}, nil
}

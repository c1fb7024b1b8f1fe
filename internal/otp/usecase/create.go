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

// maxCodeDraws bounds the collision-avoidance loop. With a numeric alphabet
// and lengths of 5-20 the active set would need to be absurdly dense to get
// anywhere near this.
const maxCodeDraws = 100

// drawWarnThreshold is where redraws start being logged; past this the code
// space is getting congested and the policy length should be raised.
const drawWarnThreshold = 20

type CreateInput struct {
	UserID      int64    `validate:"required"`
	OperationID string   `validate:"required,operation_id"`
	Channels    []string `validate:"required,min=1"`
}

type CreateOutput struct {
	CodeID    int64
	ExpiresAt time.Time
	Delivered []entity.Channel
}

// Create issues a new one-time code for (user, operation), delivers it on the
// requested channels and records the issuance.
//
// At most one ACTIVE code may exist per (user, operation); a duplicate
// request is rejected. When every channel fails to deliver, the stored code
// is removed again so no undeliverable ACTIVE code lingers.
func (s *Usecase) Create(ctx context.Context, in CreateInput) (*CreateOutput, error) {
	ctx, span := s.startSpan(ctx, "Create")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	channels := entity.ParseChannels(in.Channels)
	if len(channels) == 0 {
		return nil, goerror.NewInvalidInput(nil, "channels", "must contain at least one known channel")
	}

	policy, err := s.repoDB.GetPolicy(ctx)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "one-time code policy is not configured")
		return nil, goerror.NewBusiness("One-time code policy is not configured", goerror.CodeInternal)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get policy", "error", err)
		return nil, goerror.NewServer(err)
	}

	recipient, err := s.repoDB.GetRecipient(ctx, in.UserID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "recipient user not found", "user_id", in.UserID)
		return nil, goerror.NewBusiness("User not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get recipient", "user_id", in.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	code, codeHash, err := s.drawUniqueCode(ctx, in.UserID, policy.CodeLength)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	stored := entity.Code{
		ID:          s.uid.Generate(),
		UserID:      in.UserID,
		OperationID: strings.TrimSpace(in.OperationID),
		CodeHash:    codeHash,
		Status:      entity.CodeStatusActive,
		Channels:    channels,
		CreatedAt:   now,
		ExpiresAt:   now.Add(policy.TTL),
	}

	if err := s.repoDB.CreateCode(ctx, stored); err != nil {
		if errors.Is(err, goerror.ErrConflict) {
			slog.WarnContext(ctx, "active code already exists for operation",
				"user_id", in.UserID, "operation_id", stored.OperationID)
			return nil, goerror.NewBusiness("An active code already exists for this operation", goerror.CodeConflict)
		}
		slog.ErrorContext(ctx, "failed to repo create code", "user_id", in.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	out, err := s.dispatcher.Dispatch(ctx, channels, DeliveryInput{
		Recipient:   *recipient,
		OperationID: stored.OperationID,
		Code:        code,
		ExpiresAt:   stored.ExpiresAt,
	})
	if err != nil {
		// None of the channels delivered. Undo the insert so a retry is not
		// blocked by a code the user never received.
		if derr := s.repoDB.DeleteCode(ctx, stored.ID); derr != nil {
			slog.ErrorContext(ctx, "failed to remove undeliverable code",
				"code_id", stored.ID, "error", derr)
		}
		slog.ErrorContext(ctx, "failed to deliver code on any channel",
			"user_id", in.UserID, "operation_id", stored.OperationID, "error", err)
		return nil, goerror.NewBusiness("Failed to deliver the code on any channel", goerror.CodeInternal)
	}

	s.publishIssued(ctx, stored, out.Delivered)

	return &CreateOutput{
		CodeID:    stored.ID,
		ExpiresAt: stored.ExpiresAt,
		Delivered: out.Delivered,
	}, nil
}

// drawUniqueCode generates codes until one is found whose hash does not
// collide with any of the user's ACTIVE codes. Matching is done on the keyed hash, so the
// plaintext never reaches the database.
func (s *Usecase) drawUniqueCode(ctx context.Context, userID int64, length int) (string, string, error) {
	for attempt := 1; attempt <= maxCodeDraws; attempt++ {
		code, err := s.generator.Generate(length)
		if err != nil {
			slog.ErrorContext(ctx, "failed to generate code", "error", err)
			return "", "", goerror.NewServer(err)
		}

		codeHash, err := s.hmac.Hash(code)
		if err != nil {
			slog.ErrorContext(ctx, "failed to hash code", "error", err)
			return "", "", goerror.NewServer(err)
		}

		exists, err := s.repoDB.ExistsActiveCodeHash(ctx, userID, string(codeHash))
		if err != nil {
			slog.ErrorContext(ctx, "failed to repo check code collision", "error", err)
			return "", "", goerror.NewServer(err)
		}

		if !exists {
			return code, string(codeHash), nil
		}

		if attempt > drawWarnThreshold {
			slog.WarnContext(ctx, "code space congested, redrawing",
				"attempt", attempt, "code_length", length)
		}
	}

	slog.ErrorContext(ctx, "exhausted code draws without finding a free code", "code_length", length)
	return "", "", goerror.NewServer(errors.New("usecase: code space exhausted"))
}

func (s *Usecase) publishIssued(ctx context.Context, c entity.Code, delivered []entity.Channel) {
	s.goroutine.Go(ctx, func(gctx context.Context) error {
		if err := s.repoMessaging.PublishCodeIssued(gctx, CodeIssuedEvent{
			CodeID:      c.ID,
			UserID:      c.UserID,
			OperationID: c.OperationID,
			Channels:    delivered,
			ExpiresAt:   c.ExpiresAt,
		}); err != nil {
			slog.ErrorContext(gctx, "failed to publish code issued event", "code_id", c.ID, "error", err)
		}

		if err := s.audit.Record(gctx, AuditEntry{
			Event:       "issued",
			CodeID:      c.ID,
			UserID:      c.UserID,
			OperationID: c.OperationID,
			At:          c.CreatedAt,
		}); err != nil {
			slog.ErrorContext(gctx, "failed to record audit entry", "code_id", c.ID, "error", err)
		}

		return nil
	})
}

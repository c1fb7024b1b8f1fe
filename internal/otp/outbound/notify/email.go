package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/shandysiswandi/gotp/internal/otp/entity"
	"github.com/shandysiswandi/gotp/internal/otp/usecase"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/pkg/mail"
	"go.opentelemetry.io/otel/codes"
)

// ErrNoEmailAddress is returned when the recipient has no email on file.
var ErrNoEmailAddress = errors.New("notify: recipient has no email address")

// Email delivers codes over SMTP.
type Email struct {
	client mail.Mail
	ins    instrument.Instrumentation
}

func NewEmail(client mail.Mail, ins instrument.Instrumentation) *Email {
	return &Email{client: client, ins: ins}
}

func (e *Email) Channel() entity.Channel {
	return entity.ChannelEmail
}

func (e *Email) Send(ctx context.Context, in usecase.DeliveryInput) error {
	ctx, span := e.ins.Tracer("otp.outbound.notify").Start(ctx, "Email.Send")
	defer span.End()

	if in.Recipient.Email == "" {
		return ErrNoEmailAddress
	}

	msg := mail.Message{
		To:      []string{in.Recipient.Email},
		Subject: fmt.Sprintf("Your one-time code for %s", in.OperationID),
		TextBody: fmt.Sprintf(
			"Hello %s,\n\nYour one-time code for %s is: %s\n\nIt expires at %s.\nIf you did not request this, you can ignore this message.",
			in.Recipient.FullName, in.OperationID, in.Code, in.ExpiresAt.UTC().Format("15:04:05 MST, 2 Jan 2006"),
		),
	}

	if err := e.client.Send(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

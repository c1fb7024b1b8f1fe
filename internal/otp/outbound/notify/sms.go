package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/shandysiswandi/gotp/internal/otp/entity"
	"github.com/shandysiswandi/gotp/internal/otp/usecase"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.opentelemetry.io/otel/codes"
)

// ErrNoPhoneNumber is returned when the recipient has no phone on file.
var ErrNoPhoneNumber = errors.New("notify: recipient has no phone number")

// SMS delivers codes through Twilio.
type SMS struct {
	client *twilio.RestClient
	from   string
	ins    instrument.Instrumentation
}

// SMSConfig configures the Twilio sender.
type SMSConfig struct {
	// AccountSID is the Twilio account SID.
	AccountSID string
	// AuthToken is the Twilio auth token.
	AuthToken string
	// From is the sending phone number in E.164 format.
	From string
}

func NewSMS(cfg SMSConfig, ins instrument.Instrumentation) *SMS {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})

	return &SMS{client: client, from: cfg.From, ins: ins}
}

func (s *SMS) Channel() entity.Channel {
	return entity.ChannelSMS
}

func (s *SMS) Send(ctx context.Context, in usecase.DeliveryInput) error {
	_, span := s.ins.Tracer("otp.outbound.notify").Start(ctx, "SMS.Send")
	defer span.End()

	if in.Recipient.Phone == "" {
		return ErrNoPhoneNumber
	}

	params := &twilioapi.CreateMessageParams{}
	params.SetTo(in.Recipient.Phone)
	params.SetFrom(s.from)
	params.SetBody(fmt.Sprintf("Your one-time code for %s is %s", in.OperationID, in.Code))

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

package mq

import (
	"context"
	"encoding/json"

	"github.com/samber/lo"
	"github.com/shandysiswandi/gotp/internal/otp/entity"
	"github.com/shandysiswandi/gotp/internal/otp/usecase"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/pkg/messaging"
	"github.com/shandysiswandi/gotp/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Publisher
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Publisher, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

func (m *Messaging) PublishCodeIssued(ctx context.Context, msg usecase.CodeIssuedEvent) error {
	return m.publish(ctx, "PublishCodeIssued", event.OTPIssuedDestination, event.OTPIssuedMessage{
		CodeID:      msg.CodeID,
		UserID:      msg.UserID,
		OperationID: msg.OperationID,
		Channels:    lo.Map(msg.Channels, func(c entity.Channel, _ int) string { return string(c) }),
		ExpiresAt:   msg.ExpiresAt.UnixMilli(),
	})
}

func (m *Messaging) PublishCodeUsed(ctx context.Context, msg usecase.CodeUsedEvent) error {
	return m.publish(ctx, "PublishCodeUsed", event.OTPUsedDestination, event.OTPUsedMessage{
		CodeID:      msg.CodeID,
		UserID:      msg.UserID,
		OperationID: msg.OperationID,
		UsedAt:      msg.UsedAt.UnixMilli(),
	})
}

func (m *Messaging) PublishCodeExpired(ctx context.Context, msg usecase.CodeExpiredEvent) error {
	return m.publish(ctx, "PublishCodeExpired", event.OTPExpiredDestination, event.OTPExpiredMessage{
		CodeID:      msg.CodeID,
		UserID:      msg.UserID,
		OperationID: msg.OperationID,
		ExpiredAt:   msg.ExpiredAt.UnixMilli(),
	})
}

func (m *Messaging) publish(ctx context.Context, spanName, destination string, payload any) error {
	ctx, span := m.ins.Tracer("otp.outbound.mq").Start(ctx, spanName)
	defer span.End()

	body, err := json.Marshal(payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if _, err := m.client.Publish(ctx, destination, messaging.OutgoingMessage{
		Body:    body,
		Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

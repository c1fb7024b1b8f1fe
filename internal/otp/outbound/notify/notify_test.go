package notify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shandysiswandi/gotp/internal/otp/entity"
	"github.com/shandysiswandi/gotp/internal/otp/usecase"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
)

type stubSender struct {
	channel entity.Channel
	err     error
	calls   atomic.Int64
}

func (s *stubSender) Channel() entity.Channel { return s.channel }

func (s *stubSender) Send(context.Context, usecase.DeliveryInput) error {
	s.calls.Add(1)
	return s.err
}

func testInput() usecase.DeliveryInput {
	return usecase.DeliveryInput{
		Recipient:   entity.Recipient{UserID: 7, Email: "user@example.com", TelegramChatID: "100200"},
		OperationID: "login",
		Code:        "123456",
		ExpiresAt:   time.Now().Add(5 * time.Minute),
	}
}

func TestDispatcherDispatch(t *testing.T) {
	t.Run("AllChannelsDeliver", func(t *testing.T) {
		email := &stubSender{channel: entity.ChannelEmail}
		sms := &stubSender{channel: entity.ChannelSMS}
		d := NewDispatcher(Config{Senders: []Sender{email, sms}, Instrument: instrument.NewNoop()})

		out, err := d.Dispatch(context.Background(), []entity.Channel{entity.ChannelEmail, entity.ChannelSMS}, testInput())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(out.Delivered) != 2 || len(out.Failed) != 0 {
			t.Fatalf("expected both channels delivered, got %+v", out)
		}
	})

	t.Run("PartialFailureStillSucceeds", func(t *testing.T) {
		email := &stubSender{channel: entity.ChannelEmail, err: errors.New("smtp down")}
		sms := &stubSender{channel: entity.ChannelSMS}
		d := NewDispatcher(Config{
			Senders:    []Sender{email, sms},
			Backoff:    time.Millisecond,
			Instrument: instrument.NewNoop(),
		})

		out, err := d.Dispatch(context.Background(), []entity.Channel{entity.ChannelEmail, entity.ChannelSMS}, testInput())
		if err != nil {
			t.Fatalf("expected any-success semantics, got %v", err)
		}
		if len(out.Delivered) != 1 || out.Delivered[0] != entity.ChannelSMS {
			t.Fatalf("expected only sms delivered, got %+v", out)
		}
		if len(out.Failed) != 1 || out.Failed[0] != entity.ChannelEmail {
			t.Fatalf("expected email failed, got %+v", out)
		}
	})

	t.Run("AllChannelsFail", func(t *testing.T) {
		email := &stubSender{channel: entity.ChannelEmail, err: errors.New("smtp down")}
		sms := &stubSender{channel: entity.ChannelSMS, err: errors.New("twilio down")}
		d := NewDispatcher(Config{
			Senders:    []Sender{email, sms},
			Backoff:    time.Millisecond,
			Instrument: instrument.NewNoop(),
		})

		_, err := d.Dispatch(context.Background(), []entity.Channel{entity.ChannelEmail, entity.ChannelSMS}, testInput())
		if !errors.Is(err, ErrAllChannelsFailed) {
			t.Fatalf("expected ErrAllChannelsFailed, got %v", err)
		}
	})

	t.Run("UnknownChannelCountsAsFailure", func(t *testing.T) {
		d := NewDispatcher(Config{Senders: []Sender{}, Instrument: instrument.NewNoop()})

		_, err := d.Dispatch(context.Background(), []entity.Channel{entity.ChannelTelegram}, testInput())
		if !errors.Is(err, ErrAllChannelsFailed) || !errors.Is(err, ErrUnknownChannel) {
			t.Fatalf("expected unknown channel to fail the dispatch, got %v", err)
		}
	})

	t.Run("RetriesUpToBudget", func(t *testing.T) {
		email := &stubSender{channel: entity.ChannelEmail, err: errors.New("smtp down")}
		d := NewDispatcher(Config{
			Senders:    []Sender{email},
			MaxRetries: 2,
			Backoff:    time.Millisecond,
			Instrument: instrument.NewNoop(),
		})

		_, err := d.Dispatch(context.Background(), []entity.Channel{entity.ChannelEmail}, testInput())
		if !errors.Is(err, ErrAllChannelsFailed) {
			t.Fatalf("expected failure, got %v", err)
		}
		if got := email.calls.Load(); got != 3 {
			t.Fatalf("expected 1 attempt + 2 retries, got %d calls", got)
		}
	})
}

func TestTelegramSend(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		var gotPath string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		tg := NewTelegram(TelegramConfig{
			BotToken:   "token123",
			BaseURL:    srv.URL,
			HTTPClient: srv.Client(),
		}, instrument.NewNoop())

		if err := tg.Send(context.Background(), testInput()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if gotPath != "/bottoken123/sendMessage" {
			t.Fatalf("expected sendMessage call, got %q", gotPath)
		}
	})

	t.Run("APIError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "bad request", http.StatusBadRequest)
		}))
		defer srv.Close()

		tg := NewTelegram(TelegramConfig{
			BotToken:   "token123",
			BaseURL:    srv.URL,
			HTTPClient: srv.Client(),
		}, instrument.NewNoop())

		if err := tg.Send(context.Background(), testInput()); err == nil {
			t.Fatalf("expected error on non-2xx response")
		}
	})

	t.Run("NoChatOnFile", func(t *testing.T) {
		tg := NewTelegram(TelegramConfig{BotToken: "token123"}, instrument.NewNoop())

		in := testInput()
		in.Recipient.TelegramChatID = ""

		if err := tg.Send(context.Background(), in); !errors.Is(err, ErrNoTelegramChat) {
			t.Fatalf("expected ErrNoTelegramChat, got %v", err)
		}
	})
}

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shandysiswandi/gotp/internal/otp/entity"
	"github.com/shandysiswandi/gotp/internal/otp/usecase"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
)

// ErrNoTelegramChat is returned when the recipient has no Telegram chat on file.
var ErrNoTelegramChat = errors.New("notify: recipient has no telegram chat")

const telegramAPIBase = "https://api.telegram.org"

// Telegram delivers codes through the Telegram Bot API sendMessage call.
type Telegram struct {
	httpc   *http.Client
	baseURL string
	token   string
	ins     instrument.Instrumentation
}

// TelegramConfig configures the Telegram sender.
type TelegramConfig struct {
	// BotToken is the Telegram bot token.
	BotToken string
	// BaseURL overrides the Telegram API host, mainly for tests.
	BaseURL string
	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
}

func NewTelegram(cfg TelegramConfig, ins instrument.Instrumentation) *Telegram {
	httpc := cfg.HTTPClient
	if httpc == nil {
		httpc = &http.Client{Timeout: 10 * time.Second}
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = telegramAPIBase
	}

	return &Telegram{
		httpc:   httpc,
		baseURL: baseURL,
		token:   cfg.BotToken,
		ins:     ins,
	}
}

func (t *Telegram) Channel() entity.Channel {
	return entity.ChannelTelegram
}

func (t *Telegram) Send(ctx context.Context, in usecase.DeliveryInput) error {
	ctx, span := t.ins.Tracer("otp.outbound.notify").Start(ctx, "Telegram.Send")
	defer span.End()

	if in.Recipient.TelegramChatID == "" {
		return ErrNoTelegramChat
	}

	payload, err := json.Marshal(map[string]string{
		"chat_id": in.Recipient.TelegramChatID,
		"text":    fmt.Sprintf("Your one-time code for %s is %s", in.OperationID, in.Code),
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpc.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		rerr := fmt.Errorf("notify: telegram api status %d: %s", resp.StatusCode, string(body))
		span.RecordError(rerr)
		span.SetStatus(codes.Error, rerr.Error())
		return rerr
	}

	return nil
}

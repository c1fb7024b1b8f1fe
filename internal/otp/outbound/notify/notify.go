package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/gotp/internal/otp/entity"
	"github.com/shandysiswandi/gotp/internal/otp/usecase"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/atomic"
)

// ErrAllChannelsFailed is returned when not a single channel delivered.
var ErrAllChannelsFailed = errors.New("notify: all delivery channels failed")

// ErrUnknownChannel is returned when a requested channel has no sender.
var ErrUnknownChannel = errors.New("notify: unknown channel")

// Sender delivers a code on one concrete channel.
type Sender interface {
	Channel() entity.Channel
	Send(ctx context.Context, in usecase.DeliveryInput) error
}

// Dispatcher fans a code out to the requested channels concurrently. Each
// channel gets its own timeout and a small retry budget, so one slow
// provider cannot starve the others.
type Dispatcher struct {
	senders    map[entity.Channel]Sender
	timeout    time.Duration
	maxRetries uint64
	backoff    time.Duration
	ins        instrument.Instrumentation
}

// Config configures the Dispatcher.
type Config struct {
	// Senders lists the available channel senders.
	Senders []Sender
	// Timeout bounds a single channel delivery, retries included.
	Timeout time.Duration
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries uint64
	// Backoff is the constant delay between attempts.
	Backoff time.Duration
	// Instrument provides tracing.
	Instrument instrument.Instrumentation
}

func NewDispatcher(cfg Config) *Dispatcher {
	senders := make(map[entity.Channel]Sender, len(cfg.Senders))
	for _, s := range cfg.Senders {
		senders[s.Channel()] = s
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	backoff := cfg.Backoff
	if backoff <= 0 {
		backoff = 300 * time.Millisecond
	}

	return &Dispatcher{
		senders:    senders,
		timeout:    timeout,
		maxRetries: cfg.MaxRetries,
		backoff:    backoff,
		ins:        cfg.Instrument,
	}
}

// Dispatch sends the code on every requested channel concurrently and waits
// for all of them. It succeeds when at least one channel delivered; the
// returned error is non-nil only when every channel failed.
func (d *Dispatcher) Dispatch(ctx context.Context, channels []entity.Channel, in usecase.DeliveryInput) (*usecase.DeliveryOutput, error) {
	ctx, span := d.ins.Tracer("otp.outbound.notify").Start(ctx, "Dispatch")
	defer span.End()

	var (
		anyOK atomic.Bool
		mu    sync.Mutex
		wg    sync.WaitGroup
		out   usecase.DeliveryOutput
		errs  []error
	)

	for _, ch := range channels {
		sender, ok := d.senders[ch]
		if !ok {
			mu.Lock()
			out.Failed = append(out.Failed, ch)
			errs = append(errs, fmt.Errorf("%w: %s", ErrUnknownChannel, ch))
			mu.Unlock()
			continue
		}

		wg.Add(1)
		go func(ch entity.Channel, sender Sender) {
			defer wg.Done()

			if err := d.sendWithRetry(ctx, sender, in); err != nil {
				slog.WarnContext(ctx, "channel delivery failed",
					"channel", string(ch), "user_id", in.Recipient.UserID, "error", err)
				mu.Lock()
				out.Failed = append(out.Failed, ch)
				errs = append(errs, fmt.Errorf("%s: %w", ch, err))
				mu.Unlock()
				return
			}

			anyOK.Store(true)
			mu.Lock()
			out.Delivered = append(out.Delivered, ch)
			mu.Unlock()
		}(ch, sender)
	}

	wg.Wait()

	if !anyOK.Load() {
		err := errors.Join(append([]error{ErrAllChannelsFailed}, errs...)...)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	return &out, nil
}

func (d *Dispatcher) sendWithRetry(ctx context.Context, sender Sender, in usecase.DeliveryInput) error {
	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	backoff := retry.WithMaxRetries(d.maxRetries, retry.NewConstant(d.backoff))
	return retry.Do(sendCtx, backoff, func(ctx context.Context) error {
		if err := sender.Send(ctx, in); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

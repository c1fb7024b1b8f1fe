package otp

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/gotp/internal/otp/entity"
	"github.com/shandysiswandi/gotp/internal/otp/inbound"
	"github.com/shandysiswandi/gotp/internal/otp/outbound/audit"
	"github.com/shandysiswandi/gotp/internal/otp/outbound/db"
	"github.com/shandysiswandi/gotp/internal/otp/outbound/mq"
	"github.com/shandysiswandi/gotp/internal/otp/outbound/notify"
	"github.com/shandysiswandi/gotp/internal/otp/usecase"
	"github.com/shandysiswandi/gotp/internal/pkg/clock"
	"github.com/shandysiswandi/gotp/internal/pkg/config"
	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
	"github.com/shandysiswandi/gotp/internal/pkg/goroutine"
	"github.com/shandysiswandi/gotp/internal/pkg/hash"
	"github.com/shandysiswandi/gotp/internal/pkg/idempotency"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/pkg/mail"
	"github.com/shandysiswandi/gotp/internal/pkg/messaging"
	"github.com/shandysiswandi/gotp/internal/pkg/otpgen"
	"github.com/shandysiswandi/gotp/internal/pkg/router"
	"github.com/shandysiswandi/gotp/internal/pkg/scheduler"
	"github.com/shandysiswandi/gotp/internal/pkg/storage"
	"github.com/shandysiswandi/gotp/internal/pkg/uid"
	"github.com/shandysiswandi/gotp/internal/pkg/validator"
)

type Dependency struct {
	Ctx         context.Context            `validate:"required"`
	DBConn      *pgxpool.Pool              `validate:"required"`
	Goroutine   *goroutine.Manager         `validate:"required"`
	Router      *router.Router             `validate:"required"`
	Idempotency idempotency.Idempotency    `validate:"required"`
	Messaging   messaging.Publisher        `validate:"required"`
	Storage     storage.Storage            `validate:"required"`
	Mail        mail.Mail                  `validate:"required"`
	Config      config.Config              `validate:"required"`
	Instrument  instrument.Instrumentation `validate:"required"`
	UID         uid.NumberID               `validate:"required"`
	HMAC        hash.Hash                  `validate:"required"`
	Generator   otpgen.Generator           `validate:"required"`
	Clock       clock.Clocker              `validate:"required"`
	Validator   validator.Validator        `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	dbOTP := db.NewDB(dep.DBConn, dep.Instrument)
	repoMsg := mq.NewMessaging(dep.Messaging, dep.Instrument)

	dispatcher := notify.NewDispatcher(notify.Config{
		Senders: []notify.Sender{
			notify.NewEmail(dep.Mail, dep.Instrument),
			notify.NewSMS(notify.SMSConfig{
				AccountSID: dep.Config.GetString("modules.otp.sms.account_sid"),
				AuthToken:  dep.Config.GetString("modules.otp.sms.auth_token"),
				From:       dep.Config.GetString("modules.otp.sms.from"),
			}, dep.Instrument),
			notify.NewTelegram(notify.TelegramConfig{
				BotToken: dep.Config.GetString("modules.otp.telegram.bot_token"),
			}, dep.Instrument),
		},
		Timeout:    dep.Config.GetSecond("modules.otp.dispatch_timeout_seconds"),
		MaxRetries: dep.Config.GetUint64("modules.otp.dispatch_max_retries"),
		Instrument: dep.Instrument,
	})

	recorder := audit.NewRecorder(audit.Config{
		Path:       dep.Config.GetString("modules.otp.audit.file_path"),
		Archive:    dep.Storage,
		Bucket:     dep.Config.GetString("modules.otp.audit.bucket"),
		Instrument: dep.Instrument,
	})

	uc := usecase.New(usecase.Dependency{
		RepoDB:        dbOTP,
		RepoMessaging: repoMsg,
		Dispatcher:    dispatcher,
		Audit:         recorder,
		Validator:     dep.Validator,
		HMAC:          dep.HMAC,
		UID:           dep.UID,
		Generator:     dep.Generator,
		Clock:         dep.Clock,
		Instrument:    dep.Instrument,
		Goroutine:     dep.Goroutine,
	})

	if err := seedPolicy(dep.Ctx, dbOTP, dep.Config, dep.Clock); err != nil {
		return err
	}

	registerSweepScheduler(dep.Ctx, dep.Config, dep.Goroutine, uc)
	inbound.RegisterHTTPEndpoint(dep.Router, uc, dep.Idempotency)

	return nil
}

// seedPolicy installs the default policy on first boot so code issuance
// works out of the box. An operator-set policy is never overwritten.
func seedPolicy(ctx context.Context, dbOTP *db.DB, cfg config.Config, clk clock.Clocker) error {
	_, err := dbOTP.GetPolicy(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, goerror.ErrNotFound) {
		return err
	}

	policy := entity.Policy{
		TTL:        time.Duration(cfg.GetInt64("modules.otp.default_ttl_millis")) * time.Millisecond,
		CodeLength: cfg.GetInt("modules.otp.default_code_length"),
		UpdatedAt:  clk.Now(),
	}
	if !policy.Valid() {
		policy.TTL = 5 * time.Minute
		policy.CodeLength = 6
	}

	if err := dbOTP.UpsertPolicy(ctx, policy); err != nil {
		return err
	}

	slog.InfoContext(ctx, "seeded default code policy",
		"ttl", policy.TTL.String(), "code_length", policy.CodeLength)
	return nil
}

func registerSweepScheduler(ctx context.Context, cfg config.Config, routine *goroutine.Manager, uc *usecase.Usecase) {
	interval := cfg.GetSecond("modules.otp.sweep_interval_seconds")
	if interval <= 0 {
		interval = time.Minute
	}

	sweep := scheduler.NewInterval("otp-expiry-sweep", interval, interval, func(ctx context.Context) error {
		_, err := uc.Sweep(ctx)
		return err
	})

	routine.Go(ctx, func(pCtx context.Context) error {
		err := sweep.Run(pCtx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
}

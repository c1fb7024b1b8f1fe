package usecase

import (
	"context"
	"time"

	"github.com/shandysiswandi/gotp/internal/otp/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/clock"
	"github.com/shandysiswandi/gotp/internal/pkg/goroutine"
	"github.com/shandysiswandi/gotp/internal/pkg/hash"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/pkg/otpgen"
	"github.com/shandysiswandi/gotp/internal/pkg/uid"
	"github.com/shandysiswandi/gotp/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

// CodeIssuedEvent is emitted after a code has been persisted and delivered
// on at least one channel.
type CodeIssuedEvent struct {
	CodeID      int64
	UserID      int64
	OperationID string
	Channels    []entity.Channel
	ExpiresAt   time.Time
}

// CodeUsedEvent is emitted when a code is consumed by a successful activation.
type CodeUsedEvent struct {
	CodeID      int64
	UserID      int64
	OperationID string
	UsedAt      time.Time
}

// CodeExpiredEvent is emitted for each code retired by the expiry sweep or a
// lazy expiry during activation.
type CodeExpiredEvent struct {
	CodeID      int64
	UserID      int64
	OperationID string
	ExpiredAt   time.Time
}

type repoMessaging interface {
	PublishCodeIssued(ctx context.Context, msg CodeIssuedEvent) error
	PublishCodeUsed(ctx context.Context, msg CodeUsedEvent) error
	PublishCodeExpired(ctx context.Context, msg CodeExpiredEvent) error
}

type repoDB interface {
	GetPolicy(ctx context.Context) (*entity.Policy, error)
	UpsertPolicy(ctx context.Context, p entity.Policy) error

	CreateCode(ctx context.Context, c entity.Code) error
	GetActiveCode(ctx context.Context, userID int64, operationID string) (*entity.Code, error)
	GetLatestCode(ctx context.Context, userID int64, operationID string) (*entity.Code, error)
	GetCodeByID(ctx context.Context, id int64) (*entity.Code, error)
	GetCodeList(ctx context.Context, filter entity.CodeListFilterData) ([]entity.Code, int64, error)
	ExistsActiveCodeHash(ctx context.Context, userID int64, codeHash string) (bool, error)

	MarkCodeUsed(ctx context.Context, id int64, usedAt time.Time) (bool, error)
	MarkCodeExpired(ctx context.Context, id int64) (bool, error)
	ExpireDueCodes(ctx context.Context, now time.Time) ([]entity.Code, error)

	DeleteCode(ctx context.Context, id int64) error

	GetRecipient(ctx context.Context, userID int64) (*entity.Recipient, error)
}

// DeliveryInput carries everything a channel needs to deliver a code.
type DeliveryInput struct {
	Recipient   entity.Recipient
	OperationID string
	Code        string
	ExpiresAt   time.Time
}

// DeliveryOutput reports which channels delivered and which failed.
type DeliveryOutput struct {
	Delivered []entity.Channel
	Failed    []entity.Channel
}

type dispatcher interface {
	// Dispatch fans the code out to the requested channels. It succeeds when
	// at least one channel delivers; the returned error is non-nil only when
	// every channel failed.
	Dispatch(ctx context.Context, channels []entity.Channel, in DeliveryInput) (*DeliveryOutput, error)
}

// AuditEntry is one line in the lifecycle audit trail.
type AuditEntry struct {
	Event       string    `json:"event"`
	CodeID      int64     `json:"code_id"`
	UserID      int64     `json:"user_id"`
	OperationID string    `json:"operation_id"`
	At          time.Time `json:"at"`
}

type auditor interface {
	Record(ctx context.Context, e AuditEntry) error
}

// Usecase implements the one-time code lifecycle: issue, activate, expire.
type Usecase struct {
	repoDB        repoDB
	repoMessaging repoMessaging
	dispatcher    dispatcher
	audit         auditor
	validator     validator.Validator
	hmac          hash.Hash
	uid           uid.NumberID
	generator     otpgen.Generator
	clock         clock.Clocker
	ins           instrument.Instrumentation
	goroutine     *goroutine.Manager
}

type Dependency struct {
	RepoDB        repoDB
	RepoMessaging repoMessaging
	Dispatcher    dispatcher
	Audit         auditor
	Validator     validator.Validator
	HMAC          hash.Hash
	UID           uid.NumberID
	Generator     otpgen.Generator
	Clock         clock.Clocker
	Instrument    instrument.Instrumentation
	Goroutine     *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:        dep.RepoDB,
		repoMessaging: dep.RepoMessaging,
		dispatcher:    dep.Dispatcher,
		audit:         dep.Audit,
		validator:     dep.Validator,
		hmac:          dep.HMAC,
		uid:           dep.UID,
		generator:     dep.Generator,
		clock:         dep.Clock,
		ins:           dep.Instrument,
		goroutine:     dep.Goroutine,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("otp.usecase").Start(ctx, name)
}

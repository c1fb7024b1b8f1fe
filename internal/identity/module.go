package identity

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/gotp/internal/identity/entity"
	"github.com/shandysiswandi/gotp/internal/identity/inbound"
	"github.com/shandysiswandi/gotp/internal/identity/outbound/db"
	"github.com/shandysiswandi/gotp/internal/identity/usecase"
	"github.com/shandysiswandi/gotp/internal/pkg/clock"
	"github.com/shandysiswandi/gotp/internal/pkg/config"
	"github.com/shandysiswandi/gotp/internal/pkg/hash"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/pkg/jwt"
	"github.com/shandysiswandi/gotp/internal/pkg/router"
	"github.com/shandysiswandi/gotp/internal/pkg/uid"
	"github.com/shandysiswandi/gotp/internal/pkg/validator"
	"github.com/shandysiswandi/gotp/internal/shared/constant"
)

type Dependency struct {
	Ctx        context.Context            `validate:"required"`
	DBConn     *pgxpool.Pool              `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	Bcrypt     hash.Hash                  `validate:"required"`
	JWT        jwt.JWT                    `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	dbUser := db.NewDB(dep.DBConn, dep.Instrument)

	uc := usecase.New(usecase.Dependency{
		RepoDB:     dbUser,
		Validator:  dep.Validator,
		Bcrypt:     dep.Bcrypt,
		UID:        dep.UID,
		Clock:      dep.Clock,
		JWT:        dep.JWT,
		Instrument: dep.Instrument,
	})

	if err := seedAdmin(dep.Ctx, dbUser, dep); err != nil {
		return err
	}

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}

// seedAdmin creates the bootstrap admin account on first boot so the
// admin-only endpoints are reachable. It never touches an existing directory
// that already has an admin.
func seedAdmin(ctx context.Context, dbUser *db.DB, dep Dependency) error {
	exists, err := dbUser.ExistsAdmin(ctx)
	if err != nil || exists {
		return err
	}

	email := dep.Config.GetString("modules.identity.bootstrap_admin.email")
	password := dep.Config.GetString("modules.identity.bootstrap_admin.password")
	if email == "" || password == "" {
		slog.WarnContext(ctx, "no admin account exists and no bootstrap admin is configured")
		return nil
	}

	passwordHash, err := dep.Bcrypt.Hash(password)
	if err != nil {
		return err
	}

	admin := entity.User{
		ID:        dep.UID.Generate(),
		Email:     email,
		FullName:  "Administrator",
		Role:      constant.RoleAdmin,
		Password:  string(passwordHash),
		Status:    entity.UserStatusActive,
		CreatedAt: dep.Clock.Now(),
	}

	if err := dbUser.CreateUser(ctx, admin); err != nil {
		return err
	}

	slog.InfoContext(ctx, "seeded bootstrap admin account", "email", email)
	return nil
}

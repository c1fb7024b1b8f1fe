package inbound

import (
	"context"

	"github.com/shandysiswandi/gotp/internal/otp/usecase"
	"github.com/shandysiswandi/gotp/internal/pkg/idempotency"
	"github.com/shandysiswandi/gotp/internal/pkg/router"
)

type uc interface {
	Create(ctx context.Context, in usecase.CreateInput) (*usecase.CreateOutput, error)
	Activate(ctx context.Context, in usecase.ActivateInput) (*usecase.ActivateOutput, error)
	Status(ctx context.Context, in usecase.StatusInput) (*usecase.StatusOutput, error)
	List(ctx context.Context, in usecase.ListInput) (*usecase.ListOutput, error)
	Delete(ctx context.Context, in usecase.DeleteInput) error
	Sweep(ctx context.Context) (*usecase.SweepOutput, error)

	PolicyGet(ctx context.Context) (*usecase.PolicyOutput, error)
	PolicySet(ctx context.Context, in usecase.PolicySetInput) (*usecase.PolicyOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc, idemp idempotency.Idempotency) {
	end := &HTTPEndpoint{uc: uc, idemp: idemp}

	// Code lifecycle
	r.POST("/api/v1/otp", end.Create)
	r.POST("/api/v1/otp/activate", end.Activate)
	r.GET("/api/v1/otp/status", end.Status)
	r.GET("/api/v1/otp", end.List)
	r.DELETE("/api/v1/otp/:id", end.Delete)

	// Policy (admin only, enforced by the authorization middleware)
	r.GET("/api/v1/otp/policy", end.PolicyGet)
	r.PUT("/api/v1/otp/policy", end.PolicySet)

	// Manual sweep trigger (admin only); the scheduler runs this on its own.
	r.POST("/api/v1/otp/sweep", end.Sweep)
}

package inbound

import (
	"context"

	"github.com/shandysiswandi/gotp/internal/identity/usecase"
	"github.com/shandysiswandi/gotp/internal/pkg/router"
)

type uc interface {
	SignUp(ctx context.Context, in usecase.SignUpInput) (*usecase.SignUpOutput, error)
	SignIn(ctx context.Context, in usecase.SignInInput) (*usecase.SignInOutput, error)
	PasswordChange(ctx context.Context, in usecase.PasswordChangeInput) error
	Profile(ctx context.Context, in usecase.ProfileInput) (*usecase.ProfileOutput, error)
	ProfileUpdate(ctx context.Context, in usecase.ProfileUpdateInput) error

	UserList(ctx context.Context, in usecase.UserListInput) (*usecase.UserListOutput, error)
	UserDelete(ctx context.Context, in usecase.UserDeleteInput) error
	UserGrantAdmin(ctx context.Context, in usecase.UserGrantAdminInput) error
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Authentication and self-service account management
	r.POST("/api/v1/auth/signup", end.SignUp)
	r.POST("/api/v1/auth/signin", end.SignIn)
	r.POST("/api/v1/auth/password/change", end.PasswordChange)
	r.GET("/api/v1/auth/profile", end.Profile)
	r.PUT("/api/v1/auth/profile", end.ProfileUpdate)

	// User directory (admin only, enforced by the authorization middleware)
	r.GET("/api/v1/users", end.UserList)
	r.DELETE("/api/v1/users/:id", end.UserDelete)
	r.POST("/api/v1/users/:id/grant-admin", end.UserGrantAdmin)
}

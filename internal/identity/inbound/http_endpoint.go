package inbound

import (
	"strconv"

	"github.com/shandysiswandi/gotp/internal/identity/usecase"
	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
	"github.com/shandysiswandi/gotp/internal/pkg/jwt"
	"github.com/shandysiswandi/gotp/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for authentication and the user
// directory.
type HTTPEndpoint struct {
	uc uc
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// SignUp registers a new account and returns an access token.
func (h *HTTPEndpoint) SignUp(r *router.Request) (any, error) {
	var req SignUpRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.SignUp(r.Context(), usecase.SignUpInput{
		Email:          req.Email,
		Password:       req.Password,
		FullName:       req.FullName,
		Phone:          req.Phone,
		TelegramChatID: req.TelegramChatID,
	})
	if err != nil {
		return nil, err
	}

	return SignUpResponse{
		UserID:      formatID(resp.UserID),
		AccessToken: resp.AccessToken,
	}, nil
}

// SignIn authenticates an account and returns an access token.
func (h *HTTPEndpoint) SignIn(r *router.Request) (any, error) {
	var req SignInRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.SignIn(r.Context(), usecase.SignInInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return nil, err
	}

	return SignInResponse{AccessToken: resp.AccessToken}, nil
}

// PasswordChange replaces the caller's password.
func (h *HTTPEndpoint) PasswordChange(r *router.Request) (any, error) {
	clm := jwt.GetAuth(r.Context())
	if clm == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	var req PasswordChangeRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.PasswordChange(r.Context(), usecase.PasswordChangeInput{
		UserID:          clm.UserID,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	}); err != nil {
		return nil, err
	}

	return PasswordChangeResponse{}, nil
}

// Profile returns the caller's account data.
func (h *HTTPEndpoint) Profile(r *router.Request) (any, error) {
	clm := jwt.GetAuth(r.Context())
	if clm == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	resp, err := h.uc.Profile(r.Context(), usecase.ProfileInput{UserID: clm.UserID})
	if err != nil {
		return nil, err
	}

	return ProfileResponse{
		UserID:         formatID(resp.UserID),
		Email:          resp.Email,
		FullName:       resp.FullName,
		Phone:          resp.Phone,
		TelegramChatID: resp.TelegramChatID,
		Role:           resp.Role,
		CreatedAt:      resp.CreatedAt,
	}, nil
}

// ProfileUpdate changes the caller's display name and delivery contacts.
func (h *HTTPEndpoint) ProfileUpdate(r *router.Request) (any, error) {
	clm := jwt.GetAuth(r.Context())
	if clm == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	var req ProfileUpdateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.ProfileUpdate(r.Context(), usecase.ProfileUpdateInput{
		UserID:         clm.UserID,
		FullName:       req.FullName,
		Phone:          req.Phone,
		TelegramChatID: req.TelegramChatID,
	}); err != nil {
		return nil, err
	}

	return ProfileUpdateResponse{}, nil
}

// UserList returns accounts in the directory.
func (h *HTTPEndpoint) UserList(r *router.Request) (any, error) {
	page, err := r.GetQueryInt64("page")
	if err != nil {
		return nil, err
	}

	limit, err := r.GetQueryInt64("limit")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.UserList(r.Context(), usecase.UserListInput{
		Search: r.GetQuery("search"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return nil, err
	}

	items := make([]UserItem, 0, len(resp.Users))
	for _, u := range resp.Users {
		items = append(items, newUserItem(u))
	}

	return UserListResponse{
		Items: items,
		meta: map[string]any{
			"page":  resp.Page,
			"limit": resp.Limit,
			"total": resp.Total,
		},
	}, nil
}

// UserDelete soft-deletes an account.
func (h *HTTPEndpoint) UserDelete(r *router.Request) (any, error) {
	clm := jwt.GetAuth(r.Context())
	if clm == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	if err := h.uc.UserDelete(r.Context(), usecase.UserDeleteInput{
		ID:      id,
		ActorID: clm.UserID,
	}); err != nil {
		return nil, err
	}

	return UserDeleteResponse{}, nil
}

// UserGrantAdmin promotes an account to the admin role.
func (h *HTTPEndpoint) UserGrantAdmin(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	if err := h.uc.UserGrantAdmin(r.Context(), usecase.UserGrantAdminInput{ID: id}); err != nil {
		return nil, err
	}

	return UserGrantAdminResponse{}, nil
}

package inbound

import (
	"time"

	"github.com/shandysiswandi/gotp/internal/identity/entity"
)

type SignUpRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	FullName       string `json:"full_name"`
	Phone          string `json:"phone"`
	TelegramChatID string `json:"telegram_chat_id"`
}

type SignUpResponse struct {
	UserID      string `json:"user_id"`
	AccessToken string `json:"access_token"`
}

func (SignUpResponse) Message() string {
	return "Your account has been created"
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignInResponse struct {
	AccessToken string `json:"access_token"`
}

func (SignInResponse) Message() string {
	return "You are signed in"
}

type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type PasswordChangeResponse struct{}

func (PasswordChangeResponse) Message() string {
	return "Your password has been changed"
}

type ProfileResponse struct {
	UserID         string    `json:"user_id"`
	Email          string    `json:"email"`
	FullName       string    `json:"full_name"`
	Phone          string    `json:"phone,omitempty"`
	TelegramChatID string    `json:"telegram_chat_id,omitempty"`
	Role           string    `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
}

type ProfileUpdateRequest struct {
	FullName       string `json:"full_name"`
	Phone          string `json:"phone"`
	TelegramChatID string `json:"telegram_chat_id"`
}

type ProfileUpdateResponse struct{}

func (ProfileUpdateResponse) Message() string {
	return "Your profile has been updated"
}

type UserItem struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type UserListResponse struct {
	Items []UserItem     `json:"items"`
	meta  map[string]any `json:"-"`
}

func (l UserListResponse) Meta() map[string]any {
	return l.meta
}

type UserDeleteResponse struct{}

func (UserDeleteResponse) Message() string {
	return "The user has been deleted"
}

type UserGrantAdminResponse struct{}

func (UserGrantAdminResponse) Message() string {
	return "The user has been granted the admin role"
}

func newUserItem(u entity.User) UserItem {
	return UserItem{
		UserID:    formatID(u.ID),
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role,
		Status:    u.Status.String(),
		CreatedAt: u.CreatedAt,
	}
}

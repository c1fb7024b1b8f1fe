package entity

import "time"

// User is an account in the user directory. Phone and TelegramChatID are
// optional contact points used for code delivery.
type User struct {
	ID             int64
	Email          string
	FullName       string
	Phone          string
	TelegramChatID string
	Role           string
	Password       string
	Status         UserStatus
	CreatedAt      time.Time
	DeletedAt      *time.Time
}

// UserListFilterData captures filters for listing users.
type UserListFilterData struct {
	Search         string
	IsFilterSearch bool
	Page           int64
	Limit          int64
}

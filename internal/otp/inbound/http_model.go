package inbound

import (
	"time"

	"github.com/shandysiswandi/gotp/internal/otp/entity"
)

type CreateRequest struct {
	OperationID string   `json:"operation_id"`
	Channels    []string `json:"channels"`
}

type CreateResponse struct {
	CodeID    string    `json:"code_id"`
	ExpiresAt time.Time `json:"expires_at"`
	Delivered []string  `json:"delivered"`
}

func (CreateResponse) Message() string {
	return "A one-time code has been sent"
}

type ActivateRequest struct {
	OperationID string `json:"operation_id"`
	Code        string `json:"code"`
}

type ActivateResponse struct {
	CodeID string    `json:"code_id"`
	UsedAt time.Time `json:"used_at"`
}

func (ActivateResponse) Message() string {
	return "The code has been accepted"
}

type StatusResponse struct {
	CodeID    string     `json:"code_id"`
	Status    string     `json:"status"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
}

type ListItem struct {
	CodeID      string     `json:"code_id"`
	OperationID string     `json:"operation_id"`
	Status      string     `json:"status"`
	Channels    []string   `json:"channels"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   time.Time  `json:"expires_at"`
	UsedAt      *time.Time `json:"used_at,omitempty"`
}

type ListResponse struct {
	Items []ListItem     `json:"items"`
	meta  map[string]any `json:"-"`
}

func (l ListResponse) Meta() map[string]any {
	return l.meta
}

type DeleteResponse struct{}

func (DeleteResponse) Message() string {
	return "The code has been deleted"
}

type SweepResponse struct {
	Expired int `json:"expired"`
}

func (SweepResponse) Message() string {
	return "Expiry sweep completed"
}

type PolicyRequest struct {
	TTLMillis  int64 `json:"ttl_millis"`
	CodeLength int   `json:"code_length"`
}

type PolicyResponse struct {
	TTLMillis  int64     `json:"ttl_millis"`
	CodeLength int       `json:"code_length"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func newListItem(c entity.Code) ListItem {
	channels := make([]string, 0, len(c.Channels))
	for _, ch := range c.Channels {
		channels = append(channels, string(ch))
	}

	return ListItem{
		CodeID:      formatID(c.ID),
		OperationID: c.OperationID,
		Status:      c.Status.String(),
		Channels:    channels,
		CreatedAt:   c.CreatedAt,
		ExpiresAt:   c.ExpiresAt,
		UsedAt:      c.UsedAt,
	}
}

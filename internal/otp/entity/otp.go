package entity

import "time"

// Code is a stored one-time code. The plaintext code is never persisted;
// CodeHash holds a keyed HMAC of it so activation can compare without a
// table scan of plaintexts.
type Code struct {
	ID          int64
	UserID      int64
	OperationID string
	CodeHash    string
	Status      CodeStatus
	Channels    []Channel
	CreatedAt   time.Time
	ExpiresAt   time.Time
	UsedAt      *time.Time
}

// ExpiredBy reports whether the code lifetime has lapsed at the given time.
// A code whose deadline equals now is still usable; only strictly past the
// deadline does it expire.
func (c Code) ExpiredBy(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// Policy controls how codes are generated. A single policy row applies to
// the whole service; codes capture their expiry at creation time, so a
// policy change never touches codes already issued.
type Policy struct {
	TTL        time.Duration
	CodeLength int
	UpdatedAt  time.Time
}

const (
	// PolicyMinTTL is the shortest allowed code lifetime.
	PolicyMinTTL = 10 * time.Second
	// PolicyMaxTTL is the longest allowed code lifetime.
	PolicyMaxTTL = 24 * time.Hour
	// PolicyMinCodeLength is the shortest allowed code.
	PolicyMinCodeLength = 5
	// PolicyMaxCodeLength is the longest allowed code.
	PolicyMaxCodeLength = 20
)

// Valid reports whether the policy values are inside the allowed bounds.
func (p Policy) Valid() bool {
	if p.TTL < PolicyMinTTL || p.TTL > PolicyMaxTTL {
		return false
	}
	return p.CodeLength >= PolicyMinCodeLength && p.CodeLength <= PolicyMaxCodeLength
}

// Recipient is the delivery contact data for a user, read from the user
// directory.
type Recipient struct {
	UserID         int64
	Email          string
	FullName       string
	Phone          string
	TelegramChatID string
}

// CodeListFilterData captures filters for listing codes.
type CodeListFilterData struct {
	UserID      int64
	OperationID string
	Statuses    []CodeStatus
	Page        int64
	Limit       int64
}

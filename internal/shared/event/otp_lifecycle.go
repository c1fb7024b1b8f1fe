package event

const OTPIssuedDestination string = "otp_issued"

// OTPIssuedMessage is published after a one-time code has been persisted and
// delivered on at least one channel. It never carries the code itself.
type OTPIssuedMessage struct {
	CodeID      int64    `json:"code_id"`
	UserID      int64    `json:"user_id"`
	OperationID string   `json:"operation_id"`
	Channels    []string `json:"channels"`
	ExpiresAt   int64    `json:"expires_at"`
}

const OTPUsedDestination string = "otp_used"

// OTPUsedMessage is published when a code is successfully activated.
type OTPUsedMessage struct {
	CodeID      int64  `json:"code_id"`
	UserID      int64  `json:"user_id"`
	OperationID string `json:"operation_id"`
	UsedAt      int64  `json:"used_at"`
}

const OTPExpiredDestination string = "otp_expired"

// OTPExpiredMessage is published for each code the expiry sweep retires.
type OTPExpiredMessage struct {
	CodeID      int64  `json:"code_id"`
	UserID      int64  `json:"user_id"`
	OperationID string `json:"operation_id"`
	ExpiredAt   int64  `json:"expired_at"`
}

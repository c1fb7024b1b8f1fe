package db

import (
	"context"

	"github.com/shandysiswandi/gotp/internal/otp/entity"
)

// GetRecipient reads the delivery contact data for a user from the user
// directory. It only returns users that are not soft-deleted.
func (s *DB) GetRecipient(ctx context.Context, userID int64) (r *entity.Recipient, err error) {
	ctx, span := s.startSpan(ctx, "GetRecipient")
	defer func() { s.endSpan(span, err) }()

	r = &entity.Recipient{UserID: userID}
	if err = s.mapError(s.conn.QueryRow(ctx, `
		SELECT email, full_name, COALESCE(phone, ''), COALESCE(telegram_chat_id, '')
		FROM users
		WHERE id = $1 AND deleted_at IS NULL`,
		userID,
	).Scan(&r.Email, &r.FullName, &r.Phone, &r.TelegramChatID)); err != nil {
		return nil, err
	}

	return r, nil
}

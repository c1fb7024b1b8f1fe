package db

import (
	"context"
	"time"

	"github.com/shandysiswandi/gotp/internal/otp/entity"
)

// MarkCodeUsed flips ACTIVE → USED. The WHERE clause carries the old status,
// so only one of several racing activations (or the sweep) can win.
func (s *DB) MarkCodeUsed(ctx context.Context, id int64, usedAt time.Time) (swapped bool, err error) {
	ctx, span := s.startSpan(ctx, "MarkCodeUsed")
	defer func() { s.endSpan(span, err) }()

	tag, uerr := s.conn.Exec(ctx, `
		UPDATE otp_codes
		SET status = $1, used_at = $2
		WHERE id = $3 AND status = $4`,
		int16(entity.CodeStatusUsed), usedAt, id, int16(entity.CodeStatusActive),
	)
	if uerr != nil {
		err = s.mapError(uerr)
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}

// MarkCodeExpired flips ACTIVE → EXPIRED with the same conditional update.
func (s *DB) MarkCodeExpired(ctx context.Context, id int64) (swapped bool, err error) {
	ctx, span := s.startSpan(ctx, "MarkCodeExpired")
	defer func() { s.endSpan(span, err) }()

	tag, uerr := s.conn.Exec(ctx, `
		UPDATE otp_codes
		SET status = $1
		WHERE id = $2 AND status = $3`,
		int16(entity.CodeStatusExpired), id, int16(entity.CodeStatusActive),
	)
	if uerr != nil {
		err = s.mapError(uerr)
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}

// ExpireDueCodes retires every ACTIVE code whose expiry deadline has passed
// and returns the retired rows so the caller can emit events for them.
func (s *DB) ExpireDueCodes(ctx context.Context, now time.Time) (cs []entity.Code, err error) {
	ctx, span := s.startSpan(ctx, "ExpireDueCodes")
	defer func() { s.endSpan(span, err) }()

	rows, qerr := s.conn.Query(ctx, `
		UPDATE otp_codes
		SET status = $1
		WHERE status = $2 AND expires_at < $3
		RETURNING `+codeColumns,
		int16(entity.CodeStatusExpired), int16(entity.CodeStatusActive), now,
	)
	if qerr != nil {
		err = s.mapError(qerr)
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		c, serr := s.scanCodeRow(rows)
		if serr != nil {
			err = serr
			return nil, err
		}
		cs = append(cs, *c)
	}

	err = s.mapError(rows.Err())
	if err != nil {
		return nil, err
	}

	return cs, nil
}

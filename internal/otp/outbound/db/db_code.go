package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/shandysiswandi/gotp/internal/otp/entity"
)

const codeColumns = `id, user_id, operation_id, code_hash, status, channels, created_at, expires_at, used_at`

// CreateCode inserts a new code row. A partial unique index on
// (user_id, operation_id) WHERE status = 1 guards the one-active-code rule,
// so a racing insert surfaces here as ErrConflict.
func (s *DB) CreateCode(ctx context.Context, in entity.Code) (err error) {
	ctx, span := s.startSpan(ctx, "CreateCode")
	defer func() { s.endSpan(span, err) }()

	channels := lo.Map(in.Channels, func(c entity.Channel, _ int) string { return string(c) })

	_, err = s.conn.Exec(ctx, `
		INSERT INTO otp_codes (id, user_id, operation_id, code_hash, status, channels, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		in.ID, in.UserID, in.OperationID, in.CodeHash, int16(in.Status), channels, in.CreatedAt, in.ExpiresAt,
	)
	err = s.mapError(err)
	return err
}

func (s *DB) GetActiveCode(ctx context.Context, userID int64, operationID string) (c *entity.Code, err error) {
	ctx, span := s.startSpan(ctx, "GetActiveCode")
	defer func() { s.endSpan(span, err) }()

	row := s.conn.QueryRow(ctx, `
		SELECT `+codeColumns+`
		FROM otp_codes
		WHERE user_id = $1 AND operation_id = $2 AND status = $3`,
		userID, operationID, int16(entity.CodeStatusActive),
	)

	return s.scanCode(row)
}

func (s *DB) GetLatestCode(ctx context.Context, userID int64, operationID string) (c *entity.Code, err error) {
	ctx, span := s.startSpan(ctx, "GetLatestCode")
	defer func() { s.endSpan(span, err) }()

	// A zero user id resolves by operation alone (admin lookup).
	args := []any{operationID}
	where := "operation_id = $1"
	if userID != 0 {
		args = append(args, userID)
		where += fmt.Sprintf(" AND user_id = $%d", len(args))
	}

	row := s.conn.QueryRow(ctx, `
		SELECT `+codeColumns+`
		FROM otp_codes
		WHERE `+where+`
		ORDER BY created_at DESC
		LIMIT 1`,
		args...,
	)

	return s.scanCode(row)
}

func (s *DB) GetCodeByID(ctx context.Context, id int64) (c *entity.Code, err error) {
	ctx, span := s.startSpan(ctx, "GetCodeByID")
	defer func() { s.endSpan(span, err) }()

	row := s.conn.QueryRow(ctx, `
		SELECT `+codeColumns+`
		FROM otp_codes
		WHERE id = $1`,
		id,
	)

	return s.scanCode(row)
}

func (s *DB) ExistsActiveCodeHash(ctx context.Context, userID int64, codeHash string) (exists bool, err error) {
	ctx, span := s.startSpan(ctx, "ExistsActiveCodeHash")
	defer func() { s.endSpan(span, err) }()

	err = s.mapError(s.conn.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM otp_codes WHERE user_id = $1 AND code_hash = $2 AND status = $3
		)`,
		userID, codeHash, int16(entity.CodeStatusActive),
	).Scan(&exists))

	return exists, err
}

func (s *DB) GetCodeList(ctx context.Context, filter entity.CodeListFilterData) (cs []entity.Code, total int64, err error) {
	ctx, span := s.startSpan(ctx, "GetCodeList")
	defer func() { s.endSpan(span, err) }()

	var conds []string
	var args []any

	// A zero user id widens the query to every user (admin listing).
	if filter.UserID != 0 {
		args = append(args, filter.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}

	if filter.OperationID != "" {
		args = append(args, filter.OperationID)
		conds = append(conds, fmt.Sprintf("operation_id = $%d", len(args)))
	}

	if len(filter.Statuses) > 0 {
		statuses := lo.Map(filter.Statuses, func(s entity.CodeStatus, _ int) int16 { return int16(s) })
		args = append(args, statuses)
		conds = append(conds, fmt.Sprintf("status = ANY($%d)", len(args)))
	}

	where := "TRUE"
	if len(conds) > 0 {
		where = strings.Join(conds, " AND ")
	}

	if err = s.mapError(s.conn.QueryRow(ctx,
		`SELECT COUNT(*) FROM otp_codes WHERE `+where, args...,
	).Scan(&total)); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit, filter.Page)
	rows, qerr := s.conn.Query(ctx, fmt.Sprintf(`
		SELECT %s
		FROM otp_codes
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		codeColumns, where, len(args)-1, len(args)),
		args...,
	)
	if qerr != nil {
		err = s.mapError(qerr)
		return nil, 0, err
	}
	defer rows.Close()

	for rows.Next() {
		c, serr := s.scanCodeRow(rows)
		if serr != nil {
			err = serr
			return nil, 0, err
		}
		cs = append(cs, *c)
	}

	err = s.mapError(rows.Err())
	if err != nil {
		return nil, 0, err
	}

	return cs, total, nil
}

func (s *DB) DeleteCode(ctx context.Context, id int64) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteCode")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `DELETE FROM otp_codes WHERE id = $1`, id)
	err = s.mapError(err)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *DB) scanCode(row rowScanner) (*entity.Code, error) {
	c, err := s.scanCodeRow(row)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *DB) scanCodeRow(row rowScanner) (*entity.Code, error) {
	var (
		c        entity.Code
		status   int16
		channels []string
	)

	if err := s.mapError(row.Scan(
		&c.ID, &c.UserID, &c.OperationID, &c.CodeHash, &status,
		&channels, &c.CreatedAt, &c.ExpiresAt, &c.UsedAt,
	)); err != nil {
		return nil, err
	}

	c.Status = entity.CodeStatus(status)
	c.Channels = lo.Map(channels, func(v string, _ int) entity.Channel { return entity.Channel(v) })

	return &c, nil
}

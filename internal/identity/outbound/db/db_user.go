package db

import (
	"context"
	"fmt"

	"github.com/shandysiswandi/gotp/internal/identity/entity"
	"github.com/shandysiswandi/gotp/internal/shared/constant"
)

const userColumns = `id, email, full_name, COALESCE(phone, ''), COALESCE(telegram_chat_id, ''),
	role, password, status, created_at, deleted_at`

func (s *DB) CreateUser(ctx context.Context, in entity.User) (err error) {
	ctx, span := s.startSpan(ctx, "CreateUser")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		INSERT INTO users (id, email, full_name, phone, telegram_chat_id, role, password, status, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7, $8, $9)`,
		in.ID, in.Email, in.FullName, in.Phone, in.TelegramChatID,
		in.Role, in.Password, int16(in.Status), in.CreatedAt,
	)
	err = s.mapError(err)
	return err
}

func (s *DB) GetUserByEmail(ctx context.Context, email string) (u *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByEmail")
	defer func() { s.endSpan(span, err) }()

	row := s.conn.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1 AND deleted_at IS NULL`,
		email,
	)

	return s.scanUser(row)
}

func (s *DB) GetUserByID(ctx context.Context, id int64) (u *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByID")
	defer func() { s.endSpan(span, err) }()

	row := s.conn.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1 AND deleted_at IS NULL`,
		id,
	)

	return s.scanUser(row)
}

func (s *DB) GetUserList(ctx context.Context, filter entity.UserListFilterData) (us []entity.User, total int64, err error) {
	ctx, span := s.startSpan(ctx, "GetUserList")
	defer func() { s.endSpan(span, err) }()

	where := `deleted_at IS NULL`
	args := []any{}

	if filter.IsFilterSearch {
		args = append(args, "%"+filter.Search+"%")
		where += ` AND (email ILIKE $1 OR full_name ILIKE $1)`
	}

	if err = s.mapError(s.conn.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE `+where, args...,
	).Scan(&total)); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit, filter.Page)
	rows, qerr := s.conn.Query(ctx, fmt.Sprintf(`
		SELECT `+userColumns+`
		FROM users
		WHERE `+where+`
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
		args...,
	)
	if qerr != nil {
		err = s.mapError(qerr)
		return nil, 0, err
	}
	defer rows.Close()

	for rows.Next() {
		u, serr := s.scanUser(rows)
		if serr != nil {
			err = serr
			return nil, 0, err
		}
		us = append(us, *u)
	}

	err = s.mapError(rows.Err())
	if err != nil {
		return nil, 0, err
	}

	return us, total, nil
}

func (s *DB) ExistsAdmin(ctx context.Context) (exists bool, err error) {
	ctx, span := s.startSpan(ctx, "ExistsAdmin")
	defer func() { s.endSpan(span, err) }()

	err = s.mapError(s.conn.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM users WHERE role = $1 AND deleted_at IS NULL
		)`,
		constant.RoleAdmin,
	).Scan(&exists))

	return exists, err
}

func (s *DB) UpdateUserPassword(ctx context.Context, id int64, passwordHash string) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateUserPassword")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		UPDATE users SET password = $1 WHERE id = $2 AND deleted_at IS NULL`,
		passwordHash, id,
	)
	err = s.mapError(err)
	return err
}

func (s *DB) UpdateUserProfile(ctx context.Context, in entity.User) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateUserProfile")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		UPDATE users
		SET full_name = $1, phone = NULLIF($2, ''), telegram_chat_id = NULLIF($3, '')
		WHERE id = $4 AND deleted_at IS NULL`,
		in.FullName, in.Phone, in.TelegramChatID, in.ID,
	)
	err = s.mapError(err)
	return err
}

func (s *DB) UpdateUserRole(ctx context.Context, id int64, role string) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateUserRole")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		UPDATE users SET role = $1 WHERE id = $2 AND deleted_at IS NULL`,
		role, id,
	)
	err = s.mapError(err)
	return err
}

func (s *DB) MarkUserDeleted(ctx context.Context, id, byID int64) (err error) {
	ctx, span := s.startSpan(ctx, "MarkUserDeleted")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		UPDATE users
		SET deleted_at = NOW(), deleted_by = $1
		WHERE id = $2 AND deleted_at IS NULL`,
		byID, id,
	)
	err = s.mapError(err)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *DB) scanUser(row rowScanner) (*entity.User, error) {
	var (
		u      entity.User
		status int16
	)

	if err := s.mapError(row.Scan(
		&u.ID, &u.Email, &u.FullName, &u.Phone, &u.TelegramChatID,
		&u.Role, &u.Password, &status, &u.CreatedAt, &u.DeletedAt,
	)); err != nil {
		return nil, err
	}

	u.Status = entity.UserStatus(status)

	return &u, nil
}

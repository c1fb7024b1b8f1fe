package db

import (
	"context"
	"time"

	"github.com/shandysiswandi/gotp/internal/otp/entity"
)

// The policy is a single row keyed by id = 1. UpsertPolicy keeps it that way.
const policyRowID = 1

func (s *DB) GetPolicy(ctx context.Context) (p *entity.Policy, err error) {
	ctx, span := s.startSpan(ctx, "GetPolicy")
	defer func() { s.endSpan(span, err) }()

	var (
		ttlMillis  int64
		codeLength int
		updatedAt  time.Time
	)

	if err = s.mapError(s.conn.QueryRow(ctx, `
		SELECT ttl_millis, code_length, updated_at
		FROM otp_policies
		WHERE id = $1`,
		policyRowID,
	).Scan(&ttlMillis, &codeLength, &updatedAt)); err != nil {
		return nil, err
	}

	return &entity.Policy{
		TTL:        time.Duration(ttlMillis) * time.Millisecond,
		CodeLength: codeLength,
		UpdatedAt:  updatedAt,
	}, nil
}

func (s *DB) UpsertPolicy(ctx context.Context, in entity.Policy) (err error) {
	ctx, span := s.startSpan(ctx, "UpsertPolicy")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		INSERT INTO otp_policies (id, ttl_millis, code_length, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET ttl_millis = EXCLUDED.ttl_millis,
			code_length = EXCLUDED.code_length,
			updated_at = EXCLUDED.updated_at`,
		policyRowID, in.TTL.Milliseconds(), in.CodeLength, in.UpdatedAt,
	)
	err = s.mapError(err)
	return err
}

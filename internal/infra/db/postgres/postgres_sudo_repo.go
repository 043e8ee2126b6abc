package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-channel-broadcast/internal/domain"
	"telegram-channel-broadcast/internal/domain/model"
	"telegram-channel-broadcast/internal/domain/ports/repository"
)

var _ repository.SudoUserRepository = (*PostgresSudoRepo)(nil)

type PostgresSudoRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresSudoRepo(pool *pgxpool.Pool) *PostgresSudoRepo {
	return &PostgresSudoRepo{pool: pool}
}

func (r *PostgresSudoRepo) Save(ctx context.Context, tx repository.Tx, u *model.SudoUser) error {
	const q = `
INSERT INTO sudo_users (user_id, username, added_by, added_at)
VALUES ($1, $2, $3, $4);
`
	_, err := execSQL(ctx, r.pool, tx, q, u.UserID, u.Username, u.AddedBy, u.AddedAt)
	if err != nil {
		if uniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("Save sudo user: %w", err)
	}
	return nil
}

func (r *PostgresSudoRepo) FindByUserID(ctx context.Context, tx repository.Tx, userID int64) (*model.SudoUser, error) {
	const q = `
SELECT user_id, username, added_by, added_at
  FROM sudo_users WHERE user_id=$1;
`
	row := pickRow(ctx, r.pool, tx, q, userID)
	var u model.SudoUser
	if err := row.Scan(&u.UserID, &u.Username, &u.AddedBy, &u.AddedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("FindByUserID sudo user: %w", err)
	}
	return &u, nil
}

func (r *PostgresSudoRepo) List(ctx context.Context, tx repository.Tx) ([]model.SudoUser, error) {
	const q = `
SELECT user_id, username, added_by, added_at
  FROM sudo_users
 ORDER BY added_at ASC;
`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, fmt.Errorf("List sudo users: %w", err)
	}
	defer rows.Close()
	var out []model.SudoUser
	for rows.Next() {
		var u model.SudoUser
		if err := rows.Scan(&u.UserID, &u.Username, &u.AddedBy, &u.AddedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *PostgresSudoRepo) Delete(ctx context.Context, tx repository.Tx, userID int64) error {
	ct, err := execSQL(ctx, r.pool, tx, `DELETE FROM sudo_users WHERE user_id=$1;`, userID)
	if err != nil {
		return fmt.Errorf("Delete sudo user: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

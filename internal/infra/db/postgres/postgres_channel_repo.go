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

var _ repository.ChannelRepository = (*PostgresChannelRepo)(nil)

type PostgresChannelRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresChannelRepo(pool *pgxpool.Pool) *PostgresChannelRepo {
	return &PostgresChannelRepo{pool: pool}
}

// Save inserts a new channel row. A plain INSERT, not an upsert: the unique
// constraint on channel_id is what rejects duplicate registrations.
func (r *PostgresChannelRepo) Save(ctx context.Context, tx repository.Tx, ch *model.Channel) error {
	const q = `
INSERT INTO channels (channel_id, title, added_by, added_at, active)
VALUES ($1, $2, $3, $4, $5);
`
	_, err := execSQL(ctx, r.pool, tx, q, ch.ID, ch.Title, ch.AddedBy, ch.AddedAt, ch.Active)
	if err != nil {
		if uniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("Save channel: %w", err)
	}
	return nil
}

func (r *PostgresChannelRepo) FindByID(ctx context.Context, tx repository.Tx, channelID string) (*model.Channel, error) {
	const q = `
SELECT channel_id, title, added_by, added_at, active
  FROM channels WHERE channel_id=$1;
`
	row := pickRow(ctx, r.pool, tx, q, channelID)
	var c model.Channel
	if err := row.Scan(&c.ID, &c.Title, &c.AddedBy, &c.AddedAt, &c.Active); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("FindByID channel: %w", err)
	}
	return &c, nil
}

// ListActive returns most-recently-registered first; sessions snapshot this
// ordering, so it is part of the contract.
func (r *PostgresChannelRepo) ListActive(ctx context.Context, tx repository.Tx) ([]model.Channel, error) {
	const q = `
SELECT channel_id, title, added_by, added_at, active
  FROM channels
 WHERE active = true
 ORDER BY added_at DESC;
`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, fmt.Errorf("ListActive channels: %w", err)
	}
	defer rows.Close()
	var out []model.Channel
	for rows.Next() {
		var c model.Channel
		if err := rows.Scan(&c.ID, &c.Title, &c.AddedBy, &c.AddedAt, &c.Active); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresChannelRepo) CountActive(ctx context.Context, tx repository.Tx) (int, error) {
	row := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM channels WHERE active = true;`)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("CountActive channels: %w", err)
	}
	return n, nil
}

func (r *PostgresChannelRepo) Delete(ctx context.Context, tx repository.Tx, channelID string) error {
	ct, err := execSQL(ctx, r.pool, tx, `DELETE FROM channels WHERE channel_id=$1;`, channelID)
	if err != nil {
		return fmt.Errorf("Delete channel: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

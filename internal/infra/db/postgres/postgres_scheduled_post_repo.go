package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-channel-broadcast/internal/domain"
	"telegram-channel-broadcast/internal/domain/model"
	"telegram-channel-broadcast/internal/domain/ports/repository"
)

var _ repository.ScheduledPostRepository = (*PostgresScheduledPostRepo)(nil)

type PostgresScheduledPostRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresScheduledPostRepo(pool *pgxpool.Pool) *PostgresScheduledPostRepo {
	return &PostgresScheduledPostRepo{pool: pool}
}

func (r *PostgresScheduledPostRepo) Save(ctx context.Context, tx repository.Tx, p *model.ScheduledPost) error {
	const q = `
INSERT INTO scheduled_posts (
  id, channel_id, channel_title, post_kind, post_body, post_file_id,
  origin_message_id, scheduled_for, created_by, created_at, sent, sent_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12);
`
	_, err := execSQL(ctx, r.pool, tx, q,
		p.ID, p.ChannelID, p.ChannelTitle, string(p.Post.Kind), p.Post.Body, p.Post.FileID,
		p.Post.OriginMessageID, p.ScheduledFor, p.CreatedBy, p.CreatedAt, p.Sent, p.SentAt,
	)
	if err != nil {
		return fmt.Errorf("Save scheduled post: %w", err)
	}
	return nil
}

func (r *PostgresScheduledPostRepo) ListPending(ctx context.Context, tx repository.Tx, due time.Time) ([]model.ScheduledPost, error) {
	const q = `
SELECT id, channel_id, channel_title, post_kind, post_body, post_file_id,
       origin_message_id, scheduled_for, created_by, created_at, sent, sent_at
  FROM scheduled_posts
 WHERE sent = false AND scheduled_for <= $1
 ORDER BY scheduled_for ASC;
`
	rows, err := queryRows(ctx, r.pool, tx, q, due)
	if err != nil {
		return nil, fmt.Errorf("ListPending scheduled posts: %w", err)
	}
	defer rows.Close()
	var out []model.ScheduledPost
	for rows.Next() {
		var p model.ScheduledPost
		var kind string
		if err := rows.Scan(
			&p.ID, &p.ChannelID, &p.ChannelTitle, &kind, &p.Post.Body, &p.Post.FileID,
			&p.Post.OriginMessageID, &p.ScheduledFor, &p.CreatedBy, &p.CreatedAt, &p.Sent, &p.SentAt,
		); err != nil {
			return nil, err
		}
		p.Post.Kind = model.PostKind(kind)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresScheduledPostRepo) MarkSent(ctx context.Context, tx repository.Tx, id string, sentAt time.Time) error {
	ct, err := execSQL(ctx, r.pool, tx,
		`UPDATE scheduled_posts SET sent = true, sent_at = $2 WHERE id = $1 AND sent = false;`,
		id, sentAt,
	)
	if err != nil {
		return fmt.Errorf("MarkSent scheduled post: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

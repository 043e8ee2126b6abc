package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"telegram-channel-broadcast/internal/config"
	pg "telegram-channel-broadcast/internal/infra/db/postgres"
)

// Idempotent schema setup. Run once before the first start and after upgrades.
const schema = `
CREATE TABLE IF NOT EXISTS channels (
    channel_id TEXT PRIMARY KEY,
    title      TEXT NOT NULL DEFAULT '',
    added_by   BIGINT NOT NULL,
    added_at   TIMESTAMPTZ NOT NULL,
    active     BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS sudo_users (
    user_id  BIGINT PRIMARY KEY,
    username TEXT NOT NULL DEFAULT '',
    added_by BIGINT NOT NULL,
    added_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS scheduled_posts (
    id                UUID PRIMARY KEY,
    channel_id        TEXT NOT NULL,
    channel_title     TEXT NOT NULL DEFAULT '',
    post_kind         TEXT NOT NULL,
    post_body         TEXT NOT NULL DEFAULT '',
    post_file_id      TEXT NOT NULL DEFAULT '',
    origin_message_id INTEGER NOT NULL DEFAULT 0,
    scheduled_for     TIMESTAMPTZ NOT NULL,
    created_by        BIGINT NOT NULL,
    created_at        TIMESTAMPTZ NOT NULL,
    sent              BOOLEAN NOT NULL DEFAULT FALSE,
    sent_at           TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_channels_active_added_at
    ON channels (added_at DESC) WHERE active;
CREATE INDEX IF NOT EXISTS idx_scheduled_posts_pending
    ON scheduled_posts (scheduled_for) WHERE NOT sent;
`

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, schema); err != nil {
		log.Fatalf("apply schema: %v", err)
	}
	fmt.Println("schema is up to date")
}

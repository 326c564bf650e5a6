package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"newscrawl/internal/article"
)

const (
	pgMaxOpenConns    = 25
	pgMaxIdleConns    = 5
	pgConnMaxLifetime = 5 * time.Minute
	pgPingTimeout     = 5 * time.Second

	// uniqueViolation is the PostgreSQL error code for a unique index hit.
	uniqueViolation = "23505"
)

// PostgresConfig holds the relational sink connection settings.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// Postgres stores records in one table per media code (news_<code>), with a
// unique index on the article id.
type Postgres struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewPostgres(ctx context.Context, cfg PostgresConfig, log *zap.Logger) (*Postgres, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	db.SetMaxOpenConns(pgMaxOpenConns)
	db.SetMaxIdleConns(pgMaxIdleConns)
	db.SetConnMaxLifetime(pgConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, pgPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Postgres{db: db, log: log}, nil
}

func (p *Postgres) EnsurePartition(ctx context.Context, mediaCode string) error {
	table, err := tableName(mediaCode)
	if err != nil {
		return err
	}
	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			inx               BIGSERIAL PRIMARY KEY,
			news_id           TEXT NOT NULL,
			news_media_code   TEXT NOT NULL,
			news_title        TEXT,
			news_content      TEXT,
			news_author       TEXT,
			news_date         TIMESTAMPTZ,
			news_date_raw     TEXT,
			news_category     TEXT,
			news_original_url TEXT,
			news_site         TEXT,
			news_portal_url   TEXT,
			UNIQUE (news_id)
		)`, table)
	if _, err := p.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure table %s: %w", table, err)
	}
	return nil
}

func (p *Postgres) KnownIDs(ctx context.Context, mediaCode string) (map[string]struct{}, error) {
	table, err := tableName(mediaCode)
	if err != nil {
		return nil, err
	}
	var raw []string
	if err := p.db.SelectContext(ctx, &raw, fmt.Sprintf("SELECT news_id FROM %s", table)); err != nil {
		return nil, fmt.Errorf("load known ids from %s: %w", table, err)
	}
	ids := make(map[string]struct{}, len(raw))
	for _, id := range raw {
		ids[id] = struct{}{}
	}
	return ids, nil
}

func (p *Postgres) Put(ctx context.Context, rec *article.Record) (PutResult, error) {
	table, err := tableName(rec.MediaCode)
	if err != nil {
		return Stored, err
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (
			news_id, news_media_code, news_title, news_content, news_author,
			news_date, news_date_raw, news_category, news_original_url,
			news_site, news_portal_url
		) VALUES (
			:news_id, :news_media_code, :news_title, :news_content, :news_author,
			:news_date, :news_date_raw, :news_category, :news_original_url,
			:news_site, :news_portal_url
		)`, table)

	_, err = p.db.NamedExecContext(ctx, query, rec)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return DuplicateIgnored, nil
	}
	if err != nil {
		return Stored, fmt.Errorf("insert article %s/%s: %w", rec.MediaCode, rec.ArticleID, err)
	}
	return Stored, nil
}

func (p *Postgres) Close(context.Context) error {
	return p.db.Close()
}

// tableName derives the partition table for a media code. Codes are
// publisher-assigned digit strings that end up interpolated into DDL, so
// anything else is rejected outright.
func tableName(mediaCode string) (string, error) {
	if mediaCode == "" {
		return "", errors.New("empty media code")
	}
	for _, r := range mediaCode {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("invalid media code %q", mediaCode)
		}
	}
	return "news_" + mediaCode, nil
}

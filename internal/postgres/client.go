package postgres

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/hidecraft/storefront-webhooks/internal/config"
	ierr "github.com/hidecraft/storefront-webhooks/internal/errors"
	"github.com/hidecraft/storefront-webhooks/internal/logger"
)

const (
	maxOpenConns    = 10
	maxIdleConns    = 5
	connMaxLifetime = 30 * time.Minute
	connectTimeout  = 30 * time.Second
)

// IClient is the database surface the repositories depend on
type IClient interface {
	DB() *sqlx.DB
	Close() error
}

// Client wraps the sqlx connection pool
type Client struct {
	db     *sqlx.DB
	logger *logger.Logger
}

// NewClient opens a Postgres connection pool, retrying the initial ping with
// exponential backoff so the service survives the store coming up after it.
func NewClient(cfg *config.Configuration, log *logger.Logger) (IClient, error) {
	db, err := sqlx.Open("postgres", cfg.Postgres.GetDSN())
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to open postgres connection").
			Mark(ierr.ErrDatabase)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = connectTimeout

	err = backoff.Retry(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if pingErr := db.PingContext(ctx); pingErr != nil {
			log.Warnw("postgres not reachable yet, retrying", "error", pingErr)
			return pingErr
		}
		return nil
	}, b)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Postgres did not become reachable in time").
			Mark(ierr.ErrDatabase)
	}

	log.Infow("connected to postgres",
		"host", cfg.Postgres.Host,
		"database", cfg.Postgres.DBName)

	return &Client{db: db, logger: log}, nil
}

func (c *Client) DB() *sqlx.DB {
	return c.db
}

func (c *Client) Close() error {
	return c.db.Close()
}

package repository

import (
	"context"
	"database/sql"
	"time"

	goerrors "errors"

	"github.com/hidecraft/storefront-webhooks/internal/domain/notification"
	ierr "github.com/hidecraft/storefront-webhooks/internal/errors"
	"github.com/hidecraft/storefront-webhooks/internal/logger"
	"github.com/hidecraft/storefront-webhooks/internal/postgres"
)

type notificationRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

// NewNotificationRepository creates a Postgres-backed notification repository
func NewNotificationRepository(db postgres.IClient, log *logger.Logger) notification.Repository {
	return &notificationRepository{
		db:     db,
		logger: log,
	}
}

func (r *notificationRepository) GetCooldown(ctx context.Context, channel notification.Channel) (*time.Time, error) {
	var row notification.Cooldown
	err := r.db.DB().GetContext(ctx, &row,
		`SELECT channel, last_notified_at FROM notification_cooldowns WHERE channel = $1`,
		channel,
	)
	if goerrors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to read notification cooldown").
			WithReportableDetails(map[string]any{"channel": channel}).
			Mark(ierr.ErrDatabase)
	}
	return &row.LastNotifiedAt, nil
}

func (r *notificationRepository) TouchCooldown(ctx context.Context, channel notification.Channel, at time.Time) error {
	_, err := r.db.DB().ExecContext(ctx,
		`INSERT INTO notification_cooldowns (channel, last_notified_at)
		 VALUES ($1, $2)
		 ON CONFLICT (channel) DO UPDATE SET last_notified_at = EXCLUDED.last_notified_at`,
		channel, at,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update notification cooldown").
			WithReportableDetails(map[string]any{"channel": channel}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *notificationRepository) InsertLog(ctx context.Context, log *notification.Log) error {
	_, err := r.db.DB().NamedExecContext(ctx,
		`INSERT INTO notification_logs (id, channel, order_ref, message, success, created_at)
		 VALUES (:id, :channel, :order_ref, :message, :success, :created_at)`,
		log,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to insert notification log").
			WithReportableDetails(map[string]any{"order_ref": log.OrderRef}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

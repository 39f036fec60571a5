package notification

import (
	"context"
	"time"
)

// Repository is the durable store behind the notification throttle. Both the
// webhook consumers and the throttle share it; rows live in Postgres.
type Repository interface {
	// GetCooldown returns the channel's last-notified timestamp, or nil when
	// the channel has never notified.
	GetCooldown(ctx context.Context, channel Channel) (*time.Time, error)
	// TouchCooldown upserts the channel's last-notified timestamp.
	TouchCooldown(ctx context.Context, channel Channel, at time.Time) error
	// InsertLog records a dispatch attempt.
	InsertLog(ctx context.Context, log *Log) error
}

package notification

import (
	"time"

	"github.com/hidecraft/storefront-webhooks/internal/types"
)

// Channel identifies a notification destination for throttling purposes.
type Channel string

const (
	ChannelTelegramOrders Channel = "telegram_orders"
)

// Log is one dispatched (or attempted) notification.
type Log struct {
	ID        string    `db:"id"`
	Channel   Channel   `db:"channel"`
	OrderRef  string    `db:"order_ref"`
	Message   string    `db:"message"`
	Success   bool      `db:"success"`
	CreatedAt time.Time `db:"created_at"`
}

// NewLog builds a log row for a dispatch attempt.
func NewLog(channel Channel, orderRef, message string, success bool) *Log {
	return &Log{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_NOTIFICATION),
		Channel:   channel,
		OrderRef:  orderRef,
		Message:   message,
		Success:   success,
		CreatedAt: time.Now().UTC(),
	}
}

// Cooldown is the per-channel throttle row.
type Cooldown struct {
	Channel        Channel   `db:"channel"`
	LastNotifiedAt time.Time `db:"last_notified_at"`
}

package service

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/samber/lo"
	"github.com/sourcegraph/conc"

	"github.com/hidecraft/storefront-webhooks/internal/config"
	"github.com/hidecraft/storefront-webhooks/internal/domain/notification"
	"github.com/hidecraft/storefront-webhooks/internal/logger"
	"github.com/hidecraft/storefront-webhooks/internal/notify/telegram"
	"github.com/hidecraft/storefront-webhooks/internal/types"
)

// OrderNotificationService formats and dispatches order alerts to the
// notification sink, subject to a per-channel cooldown.
type OrderNotificationService interface {
	// Notify dispatches the order alert and reports whether delivery
	// succeeded. It never fails the caller: throttled, disabled and failed
	// dispatches all just return false.
	Notify(ctx context.Context, n *types.OrderNotification) bool
}

type orderNotificationService struct {
	sink     telegram.Notifier
	repo     notification.Repository
	cache    *gocache.Cache
	cooldown time.Duration
	cacheTTL time.Duration
	logger   *logger.Logger
}

// NewOrderNotificationService creates a new order notification service. The
// repository may be nil when the throttle store is disabled; throttling then
// runs on the in-process cache alone.
func NewOrderNotificationService(
	cfg *config.Configuration,
	sink telegram.Notifier,
	repo notification.Repository,
	log *logger.Logger,
) OrderNotificationService {
	return &orderNotificationService{
		sink:     sink,
		repo:     repo,
		cache:    gocache.New(cfg.Notification.CacheTTL, 5*time.Minute),
		cooldown: cfg.Notification.Cooldown,
		cacheTTL: cfg.Notification.CacheTTL,
		logger:   log,
	}
}

func (s *orderNotificationService) Notify(ctx context.Context, n *types.OrderNotification) bool {
	if !s.sink.IsEnabled() {
		s.logger.Debugw("notification sink disabled, skipping dispatch",
			"order_ref", n.OrderRef)
		return false
	}

	channel := notification.ChannelTelegramOrders
	if s.throttled(ctx, channel) {
		s.logger.Infow("notification suppressed by cooldown",
			"channel", channel,
			"order_ref", n.OrderRef)
		return false
	}

	message := s.formatMessage(n)
	err := s.sink.Send(ctx, message)
	if err != nil {
		s.logger.Errorw("failed to dispatch order notification",
			"channel", channel,
			"order_ref", n.OrderRef,
			"error", err)
	}
	success := err == nil

	// Log row and cooldown refresh are independent best-effort writes
	var wg conc.WaitGroup
	wg.Go(func() {
		s.recordLog(ctx, channel, n.OrderRef, message, success)
	})
	wg.Go(func() {
		if success {
			s.refreshCooldown(ctx, channel)
		}
	})
	wg.Wait()

	return success
}

func (s *orderNotificationService) throttled(ctx context.Context, channel notification.Channel) bool {
	key := fmt.Sprintf("cooldown:%s", channel)

	if cached, found := s.cache.Get(key); found {
		if last, ok := cached.(time.Time); ok && time.Since(last) < s.cooldown {
			return true
		}
	}

	if s.repo == nil {
		return false
	}

	last, err := s.repo.GetCooldown(ctx, channel)
	if err != nil {
		// The throttle never blocks a webhook; on store errors we allow
		s.logger.Errorw("failed to read cooldown, allowing notification",
			"channel", channel,
			"error", err)
		return false
	}
	if last == nil {
		return false
	}

	s.cache.Set(key, *last, s.cacheTTL)
	return time.Since(*last) < s.cooldown
}

func (s *orderNotificationService) refreshCooldown(ctx context.Context, channel notification.Channel) {
	now := time.Now().UTC()
	s.cache.Set(fmt.Sprintf("cooldown:%s", channel), now, s.cacheTTL)

	if s.repo == nil {
		return
	}
	if err := s.repo.TouchCooldown(ctx, channel, now); err != nil {
		s.logger.Errorw("failed to refresh cooldown",
			"channel", channel,
			"error", err)
	}
}

func (s *orderNotificationService) recordLog(ctx context.Context, channel notification.Channel, orderRef, message string, success bool) {
	if s.repo == nil {
		return
	}
	if err := s.repo.InsertLog(ctx, notification.NewLog(channel, orderRef, message, success)); err != nil {
		s.logger.Errorw("failed to record notification log",
			"channel", channel,
			"order_ref", orderRef,
			"error", err)
	}
}

func (s *orderNotificationService) formatMessage(n *types.OrderNotification) string {
	return fmt.Sprintf(
		"New order %s\nCustomer: %s\nPhone: %s\nEmail: %s\nTotal: %s %s\nItems: %d",
		n.OrderRef,
		n.CustomerName,
		lo.Ternary(n.CustomerPhone != "", n.CustomerPhone, "-"),
		lo.Ternary(n.CustomerEmail != "", n.CustomerEmail, "-"),
		n.TotalPrice.StringFixed(2),
		n.Currency,
		n.ItemCount,
	)
}

package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	ierr "github.com/hidecraft/storefront-webhooks/internal/errors"
	"github.com/hidecraft/storefront-webhooks/internal/integration/shopify"
	"github.com/hidecraft/storefront-webhooks/internal/logger"
)

// Tags attached to an order once the gateway confirms payment. Applying them
// again is a no-op after the merge, which is what makes the update safe to
// repeat on webhook redelivery.
var confirmationTags = []string{"paid", "grow-confirmed"}

// PaymentConfirmationService applies the idempotent paid-order update against
// the order-management system.
type PaymentConfirmationService interface {
	ConfirmPayment(ctx context.Context, reference string) error
}

type paymentConfirmationService struct {
	client shopify.ShopifyClient
	logger *logger.Logger
	now    func() time.Time
}

// NewPaymentConfirmationService creates a new payment confirmation service
func NewPaymentConfirmationService(client shopify.ShopifyClient, log *logger.Logger) PaymentConfirmationService {
	return &paymentConfirmationService{
		client: client,
		logger: log,
		now:    time.Now,
	}
}

func (s *paymentConfirmationService) ConfirmPayment(ctx context.Context, reference string) error {
	order, err := s.resolveOrder(ctx, reference)
	if err != nil {
		return err
	}

	tags := mergeTags(order.Tags, confirmationTags)
	note := fmt.Sprintf("Payment confirmed via Grow at %s", s.now().UTC().Format(time.RFC1123))

	if err := s.client.UpdateOrder(ctx, order.ID, tags, note); err != nil {
		return err
	}

	s.logger.Infow("order marked as paid",
		"order_id", order.ID,
		"order_name", order.Name,
		"reference", reference)
	return nil
}

// resolveOrder maps a gateway reference onto a Shopify order. A numeric
// reference is treated as the order ID first; anything else, or a numeric ID
// that does not exist, is looked up by order name.
func (s *paymentConfirmationService) resolveOrder(ctx context.Context, reference string) (*shopify.Order, error) {
	if orderID, err := strconv.ParseInt(reference, 10, 64); err == nil {
		order, err := s.client.GetOrder(ctx, orderID)
		if err == nil {
			return order, nil
		}
		if !ierr.IsNotFound(err) {
			return nil, err
		}
	}

	name := reference
	if !strings.HasPrefix(name, "#") {
		name = "#" + name
	}
	return s.client.FindOrderByName(ctx, name)
}

// mergeTags folds the new tags into Shopify's comma-separated tag string,
// preserving order and dropping duplicates case-insensitively.
func mergeTags(existing string, add []string) string {
	tags := lo.Filter(
		lo.Map(strings.Split(existing, ","), func(tag string, _ int) string {
			return strings.TrimSpace(tag)
		}),
		func(tag string, _ int) bool { return tag != "" },
	)
	tags = append(tags, add...)
	tags = lo.UniqBy(tags, strings.ToLower)
	return strings.Join(tags, ", ")
}

package shopify

import (
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"

	ierr "github.com/hidecraft/storefront-webhooks/internal/errors"
	"github.com/hidecraft/storefront-webhooks/internal/types"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ParseOrderNotification parses a raw order-webhook body into the normalized
// notification record. Parsing must only happen after signature verification;
// the raw bytes are what the signature covers.
func ParseOrderNotification(body []byte) (*types.OrderNotification, error) {
	var payload OrderWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to process webhook").
			Mark(ierr.ErrInternal)
	}

	n := &types.OrderNotification{
		OrderRef:      orderRef(&payload),
		CustomerName:  customerName(&payload),
		CustomerPhone: firstNonEmpty(phoneAccessors(&payload)),
		CustomerEmail: customerEmail(&payload),
		Currency:      payload.Currency,
		ItemCount:     len(payload.LineItems),
	}

	if price, err := decimal.NewFromString(payload.TotalPrice); err == nil {
		n.TotalPrice = price
	}

	return n, nil
}

// firstNonEmpty tries an ordered list of accessors and returns the first
// non-empty value. Tolerant multi-field lookup is first-match, not a merge.
func firstNonEmpty(accessors []func() string) string {
	for _, get := range accessors {
		if v := strings.TrimSpace(get()); v != "" {
			return v
		}
	}
	return ""
}

func orderRef(p *OrderWebhookPayload) string {
	return firstNonEmpty([]func() string{
		func() string { return p.Name },
		func() string { return p.OrderNumber.String() },
	})
}

func customerName(p *OrderWebhookPayload) string {
	name := firstNonEmpty([]func() string{
		func() string {
			if p.Customer == nil {
				return ""
			}
			return strings.TrimSpace(p.Customer.FirstName + " " + p.Customer.LastName)
		},
		func() string {
			if p.ShippingAddress == nil {
				return ""
			}
			if full := strings.TrimSpace(p.ShippingAddress.FirstName + " " + p.ShippingAddress.LastName); full != "" {
				return full
			}
			return p.ShippingAddress.Name
		},
	})
	if name == "" {
		return types.UnknownCustomer
	}
	return name
}

func phoneAccessors(p *OrderWebhookPayload) []func() string {
	return []func() string{
		func() string {
			if p.Customer == nil {
				return ""
			}
			return p.Customer.Phone
		},
		func() string {
			if p.ShippingAddress == nil {
				return ""
			}
			return p.ShippingAddress.Phone
		},
		func() string {
			if p.BillingAddress == nil {
				return ""
			}
			return p.BillingAddress.Phone
		},
	}
}

func customerEmail(p *OrderWebhookPayload) string {
	return firstNonEmpty([]func() string{
		func() string { return p.Email },
		func() string {
			if p.Customer == nil {
				return ""
			}
			return p.Customer.Email
		},
	})
}

package grow

import (
	"encoding/json"
	"strings"

	ierr "github.com/hidecraft/storefront-webhooks/internal/errors"
	"github.com/hidecraft/storefront-webhooks/internal/types"
)

// PaymentWebhookPayload is the loosely-specified body Grow sends. The gateway
// has shifted field names across versions, so every logical value has several
// possible homes and extraction is first-match over an ordered accessor list.
type PaymentWebhookPayload struct {
	Event         string      `json:"event"`
	Type          string      `json:"type"`
	Status        string      `json:"status"`
	PaymentStatus string      `json:"payment_status"`
	Reference     string      `json:"reference"`
	OrderID       json.Number `json:"order_id"`
	OrderNumber   json.Number `json:"order_number"`
}

// Outcome classifies the notification. Paid wins on the first match of:
// status, payment_status, then the event/type completion marker. Anything
// else is Unknown.
func (p *PaymentWebhookPayload) Outcome() types.PaymentOutcome {
	checks := []func() bool{
		func() bool { return isPaidStatus(p.Status) },
		func() bool { return isPaidStatus(p.PaymentStatus) },
		func() bool { return isCompletionEvent(p.Event) || isCompletionEvent(p.Type) },
	}
	for _, check := range checks {
		if check() {
			return types.PaymentOutcomePaid
		}
	}
	return types.PaymentOutcomeUnknown
}

// OrderReference returns the first non-empty of reference, order_id and
// order_number.
func (p *PaymentWebhookPayload) OrderReference() string {
	accessors := []func() string{
		func() string { return p.Reference },
		func() string { return p.OrderID.String() },
		func() string { return p.OrderNumber.String() },
	}
	for _, get := range accessors {
		if v := strings.TrimSpace(get()); v != "" {
			return v
		}
	}
	return ""
}

func isPaidStatus(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case types.PaymentStatusPaid, types.PaymentStatusCompleted:
		return true
	}
	return false
}

func isCompletionEvent(event string) bool {
	return strings.EqualFold(strings.TrimSpace(event), types.PaymentEventCompleted)
}

// VerifyWebhookAuth checks the shared-secret header against the configured
// secret. This channel uses plain equality, a lower assurance level than the
// HMAC scheme on the order webhook. An unset secret fails closed: no header
// value ever equals it.
func VerifyWebhookAuth(provided, secret string) error {
	if provided == "" || secret == "" || provided != secret {
		return ierr.NewError("webhook authentication failed").
			WithHint("Invalid webhook signature").
			Mark(ierr.ErrUnauthorized)
	}
	return nil
}

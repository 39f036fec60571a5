package types

// PaymentOutcome classifies an inbound payment-gateway notification.
type PaymentOutcome string

const (
	PaymentOutcomePaid    PaymentOutcome = "paid"
	PaymentOutcomeUnknown PaymentOutcome = "unknown"
)

const (
	// PaymentStatusPaid and PaymentStatusCompleted are the status values the
	// gateway sends for a settled payment.
	PaymentStatusPaid      = "paid"
	PaymentStatusCompleted = "completed"

	// PaymentEventCompleted is the event/type marker for a completed payment.
	PaymentEventCompleted = "payment.completed"
)

func (o PaymentOutcome) IsPaid() bool {
	return o == PaymentOutcomePaid
}

package types

import (
	"github.com/shopspring/decimal"
)

// UnknownCustomer is the placeholder used when an order carries no usable
// customer name anywhere in the payload.
const UnknownCustomer = "unknown"

// OrderNotification is the normalized projection of an order payload that the
// notification sink receives. Only the order reference is guaranteed; every
// other field is best-effort.
type OrderNotification struct {
	OrderRef      string
	CustomerName  string
	CustomerPhone string
	CustomerEmail string
	TotalPrice    decimal.Decimal
	Currency      string
	ItemCount     int
}

package shopify

import stdjson "encoding/json"

// OrderWebhookPayload is the subset of Shopify's order object the service
// reads. Every field is optional on the wire.
type OrderWebhookPayload struct {
	Name            string          `json:"name"`
	OrderNumber     stdjson.Number     `json:"order_number"`
	Email           string          `json:"email"`
	TotalPrice      string          `json:"total_price"`
	Currency        string          `json:"currency"`
	Customer        *Customer       `json:"customer"`
	ShippingAddress *Address        `json:"shipping_address"`
	BillingAddress  *Address        `json:"billing_address"`
	LineItems       []OrderLineItem `json:"line_items"`
}

type Customer struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type Address struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
}

type OrderLineItem struct {
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
}

// Order is the admin-API order representation used by the payment
// confirmation flow.
type Order struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Tags string `json:"tags"`
	Note string `json:"note"`
}

type orderEnvelope struct {
	Order *Order `json:"order"`
}

type ordersEnvelope struct {
	Orders []Order `json:"orders"`
}

type orderUpdateRequest struct {
	Order orderUpdate `json:"order"`
}

type orderUpdate struct {
	ID   int64  `json:"id"`
	Tags string `json:"tags"`
	Note string `json:"note"`
}

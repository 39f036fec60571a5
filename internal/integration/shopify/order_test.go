package shopify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hidecraft/storefront-webhooks/internal/types"
)

func TestParseOrderNotification(t *testing.T) {
	t.Run("full payload", func(t *testing.T) {
		body := []byte(`{
			"name": "#1042",
			"order_number": 1042,
			"email": "ada@example.com",
			"total_price": "420.50",
			"currency": "ILS",
			"customer": {"first_name": "Ada", "last_name": "Stern", "phone": "+972501234567"},
			"line_items": [{"title": "Belt", "quantity": 1}, {"title": "Wallet", "quantity": 2}]
		}`)

		n, err := ParseOrderNotification(body)
		require.NoError(t, err)

		assert.Equal(t, "#1042", n.OrderRef)
		assert.Equal(t, "Ada Stern", n.CustomerName)
		assert.Equal(t, "+972501234567", n.CustomerPhone)
		assert.Equal(t, "ada@example.com", n.CustomerEmail)
		assert.Equal(t, "420.50", n.TotalPrice.StringFixed(2))
		assert.Equal(t, "ILS", n.Currency)
		assert.Equal(t, 2, n.ItemCount)
	})

	t.Run("order number stands in for name", func(t *testing.T) {
		n, err := ParseOrderNotification([]byte(`{"order_number": 1042}`))
		require.NoError(t, err)
		assert.Equal(t, "1042", n.OrderRef)
	})

	t.Run("name falls back to shipping address", func(t *testing.T) {
		n, err := ParseOrderNotification([]byte(`{
			"name": "#7",
			"shipping_address": {"first_name": "Noa", "last_name": "Levi"}
		}`))
		require.NoError(t, err)
		assert.Equal(t, "Noa Levi", n.CustomerName)
	})

	t.Run("name falls back to shipping full-name field", func(t *testing.T) {
		n, err := ParseOrderNotification([]byte(`{
			"name": "#7",
			"shipping_address": {"name": "Noa Levi"}
		}`))
		require.NoError(t, err)
		assert.Equal(t, "Noa Levi", n.CustomerName)
	})

	t.Run("unknown customer marker when no name anywhere", func(t *testing.T) {
		n, err := ParseOrderNotification([]byte(`{"name": "#7"}`))
		require.NoError(t, err)
		assert.Equal(t, types.UnknownCustomer, n.CustomerName)
	})

	t.Run("phone prefers customer then shipping then billing", func(t *testing.T) {
		n, err := ParseOrderNotification([]byte(`{
			"name": "#7",
			"customer": {"phone": ""},
			"shipping_address": {"phone": "111"},
			"billing_address": {"phone": "222"}
		}`))
		require.NoError(t, err)
		assert.Equal(t, "111", n.CustomerPhone)

		n, err = ParseOrderNotification([]byte(`{
			"name": "#7",
			"billing_address": {"phone": "222"}
		}`))
		require.NoError(t, err)
		assert.Equal(t, "222", n.CustomerPhone)
	})

	t.Run("email falls back to customer record", func(t *testing.T) {
		n, err := ParseOrderNotification([]byte(`{
			"name": "#7",
			"customer": {"email": "from-customer@example.com"}
		}`))
		require.NoError(t, err)
		assert.Equal(t, "from-customer@example.com", n.CustomerEmail)
	})

	t.Run("missing line items means zero count", func(t *testing.T) {
		n, err := ParseOrderNotification([]byte(`{"name": "#7"}`))
		require.NoError(t, err)
		assert.Equal(t, 0, n.ItemCount)
	})

	t.Run("unparseable total price stays zero", func(t *testing.T) {
		n, err := ParseOrderNotification([]byte(`{"name": "#7", "total_price": "free"}`))
		require.NoError(t, err)
		assert.True(t, n.TotalPrice.IsZero())
	})

	t.Run("malformed body errors", func(t *testing.T) {
		_, err := ParseOrderNotification([]byte(`{"name": `))
		assert.Error(t, err)
	})
}

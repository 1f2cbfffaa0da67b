package pdf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-api/internal/config"
	"github.com/your-org/storefront-api/internal/domain/order"
)

func TestRenderInvoiceHTML(t *testing.T) {
	cfg := &config.Config{
		Paymob:  config.PaymobConfig{Currency: "EGP"},
		Invoice: config.InvoiceConfig{CompanyName: "Nile & Co", CompanyAddress: "Cairo", SupportEmail: "help@nile.test"},
	}
	s := NewService(cfg)
	s.now = func() time.Time { return time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC) }

	o := &order.Order{
		ID:        12,
		CreatedAt: time.Date(2024, 3, 8, 10, 0, 0, 0, time.UTC),
		OrderItems: []order.OrderItem{
			{Name: "Lamp <deluxe>", Price: 99.5, Qty: 2},
		},
		ShippingAddress: order.ShippingAddress{Address: "1 Nile St", City: "Cairo", PostalCode: "11511", Country: "Egypt"},
		PaymentMethod:   "card",
		Subtotal:        199,
		ShippingCost:    20,
		TotalPrice:      219,
		IsPaid:          true,
	}

	html, err := s.RenderInvoiceHTML(o)
	require.NoError(t, err)
	out := string(html)

	assert.Contains(t, out, "INV-20240308-000012")
	assert.Contains(t, out, "March 9, 2024")
	assert.Contains(t, out, "Nile &amp; Co")
	assert.Contains(t, out, "Lamp &lt;deluxe&gt;")
	assert.Contains(t, out, "199.00")
	assert.Contains(t, out, "219.00 EGP")
	assert.Contains(t, out, ">paid<")
}

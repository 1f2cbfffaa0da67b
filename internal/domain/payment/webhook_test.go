package payment

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-api/internal/domain/order"
)

func TestHMACVerifier(t *testing.T) {
	v := NewHMACVerifier("whsec")
	body := []byte(`{"order":1,"success":true}`)

	sig := v.Sign(body)
	assert.True(t, v.Verify(body, sig))
	assert.False(t, v.Verify(body, ""))
	assert.False(t, v.Verify(body, "zz-not-hex"))
	assert.False(t, v.Verify([]byte(`{"order":2,"success":true}`), sig))
	assert.False(t, NewHMACVerifier("other").Verify(body, sig))

	empty := NewHMACVerifier("")
	assert.False(t, empty.Verify(body, empty.Sign(body)))
}

func TestParseWebhook(t *testing.T) {
	ev, err := ParseWebhook([]byte(`{"order":42,"success":true}`))
	require.NoError(t, err)
	assert.Equal(t, &WebhookEvent{PaymobOrderID: 42, Success: true}, ev)

	ev, err = ParseWebhook([]byte(`{"type":"TRANSACTION","obj":{"success":false,"order":{"id":43}}}`))
	require.NoError(t, err)
	assert.Equal(t, &WebhookEvent{PaymobOrderID: 43, Success: false}, ev)

	_, err = ParseWebhook([]byte(`{"success":true}`))
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = ParseWebhook([]byte(`not json`))
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestWebhookHandler(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.createOrder(t)
	_, err := f.orders.MarkPaymentInitiated(ctx, o.ID, 5001)
	require.NoError(t, err)

	log := logrus.New()
	log.SetOutput(io.Discard)
	verifier := NewHMACVerifier("whsec")
	h := NewWebhookHandler(verifier, f.orders, log)

	body := []byte(`{"order":5001,"success":true}`)

	err = h.Handle(ctx, body, "deadbeef")
	assert.ErrorIs(t, err, ErrInvalidSignature)
	loaded, err := f.orders.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.False(t, loaded.IsPaid)
	assert.Equal(t, order.PaymentStatusInitiated, loaded.PaymentResult.Status)

	require.NoError(t, h.Handle(ctx, body, verifier.Sign(body)))
	loaded, err = f.orders.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, loaded.IsPaid)
	assert.Equal(t, order.PaymentStatusPaid, loaded.PaymentResult.Status)
	assert.NotNil(t, loaded.PaymentResult.UpdateTime)

	unknown := []byte(`{"order":9999,"success":true}`)
	assert.NoError(t, h.Handle(ctx, unknown, verifier.Sign(unknown)))
}

// internal/domain/payment/webhook.go
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-api/internal/pkg/apperr"
)

// SignatureHeader carries the webhook signature
const SignatureHeader = "X-Paymob-Signature"

var (
	ErrInvalidSignature = apperr.Validation("Invalid signature")
	ErrInvalidPayload   = apperr.Validation("Invalid webhook payload")
)

// SignatureVerifier checks a callback body against its signature
type SignatureVerifier interface {
	Verify(body []byte, signature string) bool
}

// HMACVerifier expects a hex encoded HMAC-SHA512 of the raw body
type HMACVerifier struct {
	secret []byte
}

// NewHMACVerifier creates a verifier. An empty secret rejects every callback.
func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret)}
}

// Verify reports whether signature matches body
func (v *HMACVerifier) Verify(body []byte, signature string) bool {
	if len(v.secret) == 0 || signature == "" {
		return false
	}
	got, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return false
	}
	mac := hmac.New(sha512.New, v.secret)
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}

// Sign returns the hex signature Verify accepts for body
func (v *HMACVerifier) Sign(body []byte) string {
	mac := hmac.New(sha512.New, v.secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// WebhookEvent is the part of a gateway callback the order store needs
type WebhookEvent struct {
	PaymobOrderID int64
	Success       bool
}

// ParseWebhook accepts the flat {order, success} body as well as the
// transaction callback envelope {type, obj:{success, order:{id}}}.
func ParseWebhook(body []byte) (*WebhookEvent, error) {
	var payload struct {
		Order   json.RawMessage `json:"order"`
		Success bool            `json:"success"`
		Obj     *struct {
			Order   json.RawMessage `json:"order"`
			Success bool            `json:"success"`
		} `json:"obj"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, ErrInvalidPayload.Message, err)
	}

	rawOrder, success := payload.Order, payload.Success
	if payload.Obj != nil {
		rawOrder, success = payload.Obj.Order, payload.Obj.Success
	}

	id, ok := orderReference(rawOrder)
	if !ok {
		return nil, ErrInvalidPayload
	}
	return &WebhookEvent{PaymobOrderID: id, Success: success}, nil
}

// orderReference reads either a bare id or an object with an id field
func orderReference(raw json.RawMessage) (int64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var id int64
	if err := json.Unmarshal(raw, &id); err == nil && id != 0 {
		return id, true
	}
	var obj struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.ID != 0 {
		return obj.ID, true
	}
	return 0, false
}

// WebhookHandler applies verified gateway callbacks to orders
type WebhookHandler struct {
	verifier SignatureVerifier
	orders   OrderUpdater
	logger   *logrus.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(verifier SignatureVerifier, orders OrderUpdater, logger *logrus.Logger) *WebhookHandler {
	return &WebhookHandler{
		verifier: verifier,
		orders:   orders,
		logger:   logger,
	}
}

// Handle verifies the signature before looking at the body
func (h *WebhookHandler) Handle(ctx context.Context, body []byte, signature string) error {
	if !h.verifier.Verify(body, signature) {
		h.logger.Warn("Rejected payment webhook with invalid signature")
		return ErrInvalidSignature
	}

	event, err := ParseWebhook(body)
	if err != nil {
		return err
	}

	updated, err := h.orders.ApplyWebhookResult(ctx, event.PaymobOrderID, event.Success)
	if err != nil {
		return err
	}

	fields := logrus.Fields{
		"paymob_order_id": event.PaymobOrderID,
		"success":         event.Success,
	}
	if updated == 0 {
		h.logger.WithFields(fields).Warn("Payment webhook matched no order")
		return nil
	}
	h.logger.WithFields(fields).Info("Payment webhook applied")
	return nil
}

// internal/interfaces/http/handlers/payment.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-api/internal/config"
	"github.com/your-org/storefront-api/internal/domain/payment"
	"github.com/your-org/storefront-api/internal/pkg/apperr"
)

// PaymentHandler handles checkout and gateway callbacks
type PaymentHandler struct {
	paymentService *payment.Service
	webhooks       *payment.WebhookHandler
	config         *config.Config
	logger         *logrus.Logger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *payment.Service, webhooks *payment.WebhookHandler, cfg *config.Config, logger *logrus.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		webhooks:       webhooks,
		config:         cfg,
		logger:         logger,
	}
}

// CreatePayment handles POST /payment/create-payment
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req payment.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request data",
		})
		return
	}

	result, err := h.paymentService.CreatePayment(c.Request.Context(), &req)
	if err != nil {
		h.respondPaymentError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"paymentUrl":    result.PaymentURL,
		"paymobOrderId": result.PaymobOrderID,
		"localOrderId":  result.LocalOrderID,
	})
}

func (h *PaymentHandler) respondPaymentError(c *gin.Context, err error) {
	if missing, ok := payment.IsMissingFields(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Missing required fields",
			"missing": missing,
		})
		return
	}
	if errors.Is(err, payment.ErrInvalidAmount) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   payment.ErrInvalidAmount.Message,
		})
		return
	}

	status := http.StatusInternalServerError
	if apperr.KindOf(err) == apperr.KindValidation {
		status = http.StatusBadRequest
	}

	body := gin.H{
		"success": false,
		"error":   "Payment processing failed",
	}
	if !h.config.IsProduction() {
		body["details"] = err.Error()
	}
	_ = c.Error(err)
	c.JSON(status, body)
}

// Webhook handles POST /payment/webhook. The body is read raw so the
// signature is checked over the exact bytes the gateway signed.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.String(http.StatusBadRequest, "Invalid payload")
		return
	}

	err = h.webhooks.Handle(c.Request.Context(), body, c.GetHeader(payment.SignatureHeader))
	if err != nil {
		if apperr.KindOf(err) == apperr.KindValidation {
			c.String(http.StatusBadRequest, apperr.MessageOf(err, "Invalid payload"))
			return
		}
		h.logger.WithError(err).Error("Failed to apply payment webhook")
		c.String(http.StatusInternalServerError, serverErrorMessage)
		return
	}

	c.String(http.StatusOK, "OK")
}

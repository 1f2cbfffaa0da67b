// internal/interfaces/http/handlers/invoice.go
package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-api/internal/domain/order"
	"github.com/your-org/storefront-api/internal/pkg/pdf"
)

// InvoiceRenderer produces a PDF for an order
type InvoiceRenderer interface {
	GenerateInvoice(o *order.Order) (*bytes.Buffer, error)
}

// InvoiceHandler serves order invoices
type InvoiceHandler struct {
	orderService *order.Service
	renderer     InvoiceRenderer
	logger       *logrus.Logger
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(orderService *order.Service, renderer InvoiceRenderer, logger *logrus.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		orderService: orderService,
		renderer:     renderer,
		logger:       logger,
	}
}

// GetInvoice handles GET /orders/:id/invoice
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	id, ok := paramID(c, "id", "Invalid order ID")
	if !ok {
		return
	}

	o, err := h.orderService.GetUserOrder(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	buf, err := h.renderer.GenerateInvoice(o)
	if err != nil {
		h.logger.WithError(err).WithField("order_id", o.ID).Error("Failed to generate invoice")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to generate invoice"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, pdf.InvoiceNumber(o)))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// internal/domain/order/service.go
package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-api/internal/pkg/apperr"
	"github.com/your-org/storefront-api/internal/pkg/events"
	"github.com/your-org/storefront-api/internal/pkg/validation"
	"gorm.io/gorm"
)

var (
	ErrNoOrderItems   = apperr.Validation("No order items")
	ErrOrderNotFound  = apperr.NotFound("Order not found")
	ErrOrderForbidden = apperr.Forbidden("Not authorized to access this order")
)

// Service handles order business logic
type Service struct {
	db        *gorm.DB
	publisher events.Publisher
	logger    *logrus.Logger
}

// NewService creates a new order service
func NewService(db *gorm.DB, publisher events.Publisher, logger *logrus.Logger) *Service {
	return &Service{
		db:        db,
		publisher: publisher,
		logger:    logger,
	}
}

// OrderItemInput is one line of a new order
type OrderItemInput struct {
	Product uint     `json:"product" validate:"required"`
	Name    string   `json:"name" validate:"required"`
	Image   string   `json:"image" validate:"required"`
	Price   *float64 `json:"price" validate:"required,gte=0"`
	Qty     int      `json:"qty" validate:"required,gte=1"`
}

// ShippingAddressInput is the shipping address of a new order
type ShippingAddressInput struct {
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
	Country    string `json:"country" validate:"required"`
}

// CreateOrderRequest is a fully formed order. Totals are taken as given.
type CreateOrderRequest struct {
	User            uint                 `json:"user"`
	OrderItems      []OrderItemInput     `json:"orderItems" validate:"dive"`
	ShippingAddress ShippingAddressInput `json:"shippingAddress"`
	PaymentMethod   string               `json:"paymentMethod" validate:"required"`
	Subtotal        *float64             `json:"subtotal" validate:"required,gte=0"`
	ShippingCost    *float64             `json:"shippingCost" validate:"required,gte=0"`
	TotalPrice      *float64             `json:"totalPrice" validate:"required,gte=0"`
}

// CreateOrder stores a new pending order owned by userID
func (s *Service) CreateOrder(ctx context.Context, userID uint, req *CreateOrderRequest) (*Order, error) {
	if len(req.OrderItems) == 0 {
		return nil, ErrNoOrderItems
	}
	if req.User != 0 && req.User != userID {
		return nil, apperr.Forbidden("Cannot place an order for another user")
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	items := make([]OrderItem, len(req.OrderItems))
	for i, in := range req.OrderItems {
		items[i] = OrderItem{
			ProductID: in.Product,
			Name:      strings.TrimSpace(in.Name),
			Image:     in.Image,
			Price:     *in.Price,
			Qty:       in.Qty,
		}
	}

	order := Order{
		UserID:     userID,
		OrderItems: items,
		ShippingAddress: ShippingAddress{
			Address:    strings.TrimSpace(req.ShippingAddress.Address),
			City:       strings.TrimSpace(req.ShippingAddress.City),
			PostalCode: strings.TrimSpace(req.ShippingAddress.PostalCode),
			Country:    strings.TrimSpace(req.ShippingAddress.Country),
		},
		PaymentMethod: req.PaymentMethod,
		Subtotal:      *req.Subtotal,
		ShippingCost:  *req.ShippingCost,
		TotalPrice:    *req.TotalPrice,
		Status:        StatusPending,
	}

	if !order.TotalsReconcile() {
		s.logger.WithFields(logrus.Fields{
			"user_id":     userID,
			"items_total": order.ItemsTotal(),
			"subtotal":    order.Subtotal,
			"shipping":    order.ShippingCost,
			"total":       order.TotalPrice,
		}).Warn("order totals do not match line items")
	}

	if err := s.db.WithContext(ctx).Create(&order).Error; err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.publish(ctx, events.Event{
		Type:    events.OrderCreated,
		OrderID: order.ID,
		UserID:  userID,
		Data: map[string]interface{}{
			"totalPrice": order.TotalPrice,
			"items":      len(order.OrderItems),
		},
	})

	return &order, nil
}

// GetOrder retrieves an order with its items
func (s *Service) GetOrder(ctx context.Context, id uint) (*Order, error) {
	var order Order
	err := s.db.WithContext(ctx).
		Preload("OrderItems", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}
	return &order, nil
}

// GetUserOrder retrieves an order and checks it belongs to userID
func (s *Service) GetUserOrder(ctx context.Context, userID, id uint) (*Order, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrOrderForbidden
	}
	return order, nil
}

// GetUserOrders lists a user's orders, newest first
func (s *Service) GetUserOrders(ctx context.Context, userID uint) ([]Order, error) {
	orders := []Order{}
	err := s.db.WithContext(ctx).
		Preload("OrderItems", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}
	return orders, nil
}

// MarkPaymentInitiated records the gateway order reference. It reports
// whether a local order matched.
func (s *Service) MarkPaymentInitiated(ctx context.Context, id uint, paymobOrderID int64) (bool, error) {
	now := time.Now().UTC()
	result := s.db.WithContext(ctx).Model(&Order{}).Where("id = ?", id).Updates(map[string]interface{}{
		"paymob_order_id":      paymobOrderID,
		"payment_status":       PaymentStatusInitiated,
		"payment_initiated_at": now,
		"payment_error":        "",
	})
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark payment initiated: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return false, nil
	}

	s.publish(ctx, events.Event{
		Type:    events.PaymentInitiated,
		OrderID: id,
		Data:    map[string]interface{}{"paymobOrderId": paymobOrderID},
	})
	return true, nil
}

// MarkPaymentFailed records a failed payment attempt with its error message
func (s *Service) MarkPaymentFailed(ctx context.Context, id uint, reason string) error {
	now := time.Now().UTC()
	result := s.db.WithContext(ctx).Model(&Order{}).Where("id = ?", id).Updates(map[string]interface{}{
		"payment_status":      PaymentStatusFailed,
		"payment_error":       reason,
		"payment_update_time": now,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to mark payment failed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil
	}

	s.publish(ctx, events.Event{
		Type:    events.PaymentFailed,
		OrderID: id,
		Data:    map[string]interface{}{"error": reason},
	})
	return nil
}

// ApplyWebhookResult sets the paid flag and payment status of the order
// matching the gateway order id. It returns the number of orders updated.
func (s *Service) ApplyWebhookResult(ctx context.Context, paymobOrderID int64, success bool) (int64, error) {
	status := PaymentStatusFailed
	if success {
		status = PaymentStatusPaid
	}

	var ids []uint
	err := s.db.WithContext(ctx).Model(&Order{}).Where("paymob_order_id = ?", paymobOrderID).Pluck("id", &ids).Error
	if err != nil {
		return 0, fmt.Errorf("failed to find order for gateway order %d: %w", paymobOrderID, err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	result := s.db.WithContext(ctx).Model(&Order{}).Where("id IN ?", ids).Updates(map[string]interface{}{
		"is_paid":             success,
		"payment_status":      status,
		"payment_update_time": now,
	})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to apply payment result: %w", result.Error)
	}

	eventType := events.PaymentDeclined
	if success {
		eventType = events.PaymentPaid
	}
	for _, id := range ids {
		s.publish(ctx, events.Event{
			Type:    eventType,
			OrderID: id,
			Data:    map[string]interface{}{"paymobOrderId": paymobOrderID},
		})
	}

	return result.RowsAffected, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"event":    event.Type,
			"order_id": event.OrderID,
		}).Warn("failed to publish order event")
	}
}

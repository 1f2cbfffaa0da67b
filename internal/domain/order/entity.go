// internal/domain/order/entity.go
package order

import (
	"math"
	"time"
)

// Payment result statuses written by the payment flow
const (
	PaymentStatusInitiated = "initiated"
	PaymentStatusPaid      = "paid"
	PaymentStatusFailed    = "failed"
)

// StatusPending is the status every order starts with
const StatusPending = "pending"

// Order represents the order entity. Line items and totals are a snapshot
// taken at creation and are never rewritten.
type Order struct {
	ID              uint            `gorm:"primaryKey" json:"_id"`
	UserID          uint            `gorm:"not null;index" json:"user"`
	OrderItems      []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"orderItems"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_" json:"shippingAddress"`
	PaymentMethod   string          `gorm:"not null;size:50" json:"paymentMethod"`
	Subtotal        float64         `gorm:"not null" json:"subtotal"`
	ShippingCost    float64         `gorm:"not null" json:"shippingCost"`
	TotalPrice      float64         `gorm:"not null" json:"totalPrice"`
	Status          string          `gorm:"not null;size:50;default:'pending'" json:"status"`
	IsPaid          bool            `gorm:"not null" json:"isPaid"`
	PaymobOrderID   *int64          `gorm:"index" json:"paymobOrderId,omitempty"`
	PaymentResult   PaymentResult   `gorm:"embedded;embeddedPrefix:payment_" json:"paymentResult"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// OrderItem is a denormalized line item
type OrderItem struct {
	ID        uint    `gorm:"primaryKey" json:"-"`
	OrderID   uint    `gorm:"not null;index" json:"-"`
	ProductID uint    `gorm:"not null;index" json:"product"`
	Name      string  `gorm:"not null;size:255" json:"name"`
	Image     string  `gorm:"not null;size:500" json:"image"`
	Price     float64 `gorm:"not null" json:"price"`
	Qty       int     `gorm:"not null" json:"qty"`
}

// ShippingAddress is embedded in Order
type ShippingAddress struct {
	Address    string `gorm:"size:255" json:"address"`
	City       string `gorm:"size:100" json:"city"`
	PostalCode string `gorm:"size:20" json:"postalCode"`
	Country    string `gorm:"size:100" json:"country"`
}

// PaymentResult records the latest outcome of the payment flow
type PaymentResult struct {
	Status      string     `gorm:"size:20" json:"status,omitempty"`
	InitiatedAt *time.Time `json:"initiatedAt,omitempty"`
	UpdateTime  *time.Time `json:"update_time,omitempty"`
	Error       string     `gorm:"type:text" json:"error,omitempty"`
}

// TableName overrides
func (Order) TableName() string     { return "orders" }
func (OrderItem) TableName() string { return "order_items" }

// LineTotal returns price times quantity
func (i OrderItem) LineTotal() float64 {
	return i.Price * float64(i.Qty)
}

// ItemsTotal sums the line items
func (o *Order) ItemsTotal() float64 {
	var total float64
	for _, item := range o.OrderItems {
		total += item.LineTotal()
	}
	return total
}

// TotalsReconcile reports whether the caller-supplied subtotal and total
// agree with the line items and shipping cost to the cent
func (o *Order) TotalsReconcile() bool {
	const epsilon = 0.005
	return math.Abs(o.ItemsTotal()-o.Subtotal) < epsilon &&
		math.Abs(o.Subtotal+o.ShippingCost-o.TotalPrice) < epsilon
}

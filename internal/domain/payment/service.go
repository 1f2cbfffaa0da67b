// internal/domain/payment/service.go
package payment

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-api/internal/config"
	"github.com/your-org/storefront-api/internal/pkg/apperr"
)

// Gateway stages
const (
	StageAuth       = "auth"
	StageOrder      = "order"
	StagePaymentKey = "payment_key"
)

// Gateway failures. Each wraps the underlying cause.
var (
	ErrGatewayAuthFailed  = apperr.New(apperr.KindGateway, "Authentication failed")
	ErrGatewayOrderFailed = apperr.New(apperr.KindGateway, "Order creation failed")
	ErrGatewayKeyFailed   = apperr.New(apperr.KindGateway, "Payment key generation failed")
	ErrInvalidBillingData = apperr.Validation("Street and city are required in billing data")
	ErrInvalidAmount      = apperr.Validation("Invalid amount value")
)

// Fallbacks for optional customer fields
const (
	defaultEmail      = "no-email@example.com"
	defaultPhone      = "+201000000000"
	defaultFirstName  = "Customer"
	defaultLastName   = "Name"
	defaultStreet     = "Unknown"
	defaultPostalCode = "00000"
	defaultLocality   = "Cairo"
	countryCode       = "EGY"
	notApplicable     = "NA"

	paymentKeyExpiry = 3600
)

var gatewayCalls = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "payment_gateway_calls_total",
		Help: "Total number of payment gateway calls by stage and result",
	},
	[]string{"stage", "result"},
)

var gatewayDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "payment_gateway_call_duration_seconds",
		Help:    "Payment gateway call latency by stage",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"stage"},
)

// OrderUpdater is the slice of the order store the payment flow writes to
type OrderUpdater interface {
	MarkPaymentInitiated(ctx context.Context, id uint, paymobOrderID int64) (bool, error)
	MarkPaymentFailed(ctx context.Context, id uint, reason string) error
	ApplyWebhookResult(ctx context.Context, paymobOrderID int64, success bool) (int64, error)
}

// Item is a checkout line item
type Item struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

// Contact holds nested customer details used when the top-level fields are empty
type Contact struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
}

// CustomerAddress is the customer's shipping address
type CustomerAddress struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	State      string `json:"state"`
}

// Customer is the payer
type Customer struct {
	FirstName       string           `json:"first_name"`
	LastName        string           `json:"last_name"`
	PhoneNumber     string           `json:"phone_number"`
	Email           string           `json:"email"`
	Customer        *Contact         `json:"customer"`
	ShippingAddress *CustomerAddress `json:"shipping_address"`
}

// CreatePaymentRequest starts a hosted checkout for a local order
type CreatePaymentRequest struct {
	Amount   *float64  `json:"amount"`
	Items    []Item    `json:"items"`
	Customer *Customer `json:"customer"`
	UserID   uint      `json:"userId"`
	OrderID  uint      `json:"orderId"`
}

// CreatePaymentResult is returned on a successful checkout
type CreatePaymentResult struct {
	PaymentURL    string `json:"paymentUrl"`
	PaymobOrderID int64  `json:"paymobOrderId"`
	LocalOrderID  uint   `json:"localOrderId"`
}

// MissingFieldsError lists absent request fields
type MissingFieldsError struct {
	Missing map[string]bool
}

func (e *MissingFieldsError) Error() string {
	return "Missing required fields"
}

// Service drives the gateway handshake and records its outcome on the order
type Service struct {
	gateway  Gateway
	orders   OrderUpdater
	currency string
	integID  string
	logger   *logrus.Logger
}

// NewService creates a new payment service
func NewService(cfg *config.Config, gateway Gateway, orders OrderUpdater, logger *logrus.Logger) *Service {
	return &Service{
		gateway:  gateway,
		orders:   orders,
		currency: cfg.Paymob.Currency,
		integID:  cfg.Paymob.IntegrationID,
		logger:   logger,
	}
}

// CreatePayment runs auth, remote order and payment key in order and stops at
// the first failure. Outbound calls are not cancelled with the request.
func (s *Service) CreatePayment(ctx context.Context, req *CreatePaymentRequest) (*CreatePaymentResult, error) {
	if err := checkPreconditions(req); err != nil {
		return nil, err
	}

	result, err := s.checkout(context.WithoutCancel(ctx), req)
	if err != nil {
		if markErr := s.orders.MarkPaymentFailed(context.WithoutCancel(ctx), req.OrderID, err.Error()); markErr != nil {
			s.logger.WithError(markErr).WithField("order_id", req.OrderID).Error("Failed to record payment failure")
		}
		s.logger.WithError(err).WithFields(logrus.Fields{
			"order_id": req.OrderID,
			"user_id":  req.UserID,
			"amount":   *req.Amount,
			"customer": "***",
		}).Error("Payment processing failed")
		return nil, err
	}
	return result, nil
}

func (s *Service) checkout(ctx context.Context, req *CreatePaymentRequest) (*CreatePaymentResult, error) {
	billing, err := buildBillingData(req.Customer)
	if err != nil {
		return nil, err
	}
	amountCents := toCents(*req.Amount)

	authToken, err := s.authenticate(ctx)
	if err != nil {
		return nil, err
	}

	paymobOrderID, err := s.registerOrder(ctx, &OrderRegistration{
		AuthToken:      authToken,
		DeliveryNeeded: "false",
		AmountCents:    amountCents,
		Currency:       s.currency,
		FirstName:      req.Customer.firstName(),
		LastName:       req.Customer.lastName(),
		PhoneNumber:    req.Customer.phone(),
		Items:          buildItems(req.Items),
		ShippingData:   buildShippingData(req.Customer),
	})
	if err != nil {
		return nil, err
	}

	paymentToken, err := s.paymentKey(ctx, &PaymentKeyRequest{
		AuthToken:     authToken,
		AmountCents:   amountCents,
		Expiration:    paymentKeyExpiry,
		OrderID:       paymobOrderID,
		BillingData:   billing,
		Currency:      s.currency,
		IntegrationID: s.integID,
	})
	if err != nil {
		return nil, err
	}

	found, err := s.orders.MarkPaymentInitiated(ctx, req.OrderID, paymobOrderID)
	if err != nil {
		return nil, err
	}
	if !found {
		s.logger.WithFields(logrus.Fields{
			"order_id":        req.OrderID,
			"paymob_order_id": paymobOrderID,
		}).Warn("No local order matched the payment")
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":        req.OrderID,
		"paymob_order_id": paymobOrderID,
		"amount_cents":    amountCents,
	}).Info("Payment initiated")

	return &CreatePaymentResult{
		PaymentURL:    s.gateway.IframeURL(paymentToken, req.OrderID),
		PaymobOrderID: paymobOrderID,
		LocalOrderID:  req.OrderID,
	}, nil
}

func (s *Service) authenticate(ctx context.Context) (string, error) {
	var token string
	err := observe(StageAuth, func() error {
		var err error
		token, err = s.gateway.Authenticate(ctx)
		return err
	})
	if err != nil {
		return "", apperr.Wrap(apperr.KindGateway, ErrGatewayAuthFailed.Message, err)
	}
	return token, nil
}

func (s *Service) registerOrder(ctx context.Context, req *OrderRegistration) (int64, error) {
	var id int64
	err := observe(StageOrder, func() error {
		var err error
		id, err = s.gateway.RegisterOrder(ctx, req)
		return err
	})
	if err != nil {
		return 0, apperr.Wrap(apperr.KindGateway, ErrGatewayOrderFailed.Message, err)
	}
	return id, nil
}

func (s *Service) paymentKey(ctx context.Context, req *PaymentKeyRequest) (string, error) {
	var token string
	err := observe(StagePaymentKey, func() error {
		var err error
		token, err = s.gateway.CreatePaymentKey(ctx, req)
		return err
	})
	if err != nil {
		return "", apperr.Wrap(apperr.KindGateway, ErrGatewayKeyFailed.Message, err)
	}
	return token, nil
}

func observe(stage string, call func() error) error {
	start := time.Now()
	err := call()
	gatewayDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())

	result := "success"
	if err != nil {
		result = "error"
	}
	gatewayCalls.WithLabelValues(stage, result).Inc()
	return err
}

func checkPreconditions(req *CreatePaymentRequest) error {
	missing := map[string]bool{
		"amount":   req.Amount == nil || *req.Amount == 0,
		"items":    len(req.Items) == 0,
		"customer": req.Customer == nil,
		"userId":   req.UserID == 0,
		"orderId":  req.OrderID == 0,
	}
	for _, m := range missing {
		if m {
			return &MissingFieldsError{Missing: missing}
		}
	}

	amount := *req.Amount
	if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return ErrInvalidAmount
	}
	return nil
}

func buildItems(items []Item) []GatewayItem {
	out := make([]GatewayItem, len(items))
	for i, item := range items {
		desc := truncate(item.Description, 100)
		if desc == "" {
			desc = truncate(item.Name, 100)
		}
		out[i] = GatewayItem{
			Name:        truncate(item.Name, 50),
			Description: desc,
			AmountCents: toCents(item.Price),
			Quantity:    item.Quantity,
		}
	}
	return out
}

func buildShippingData(c *Customer) AddressDetails {
	addr := c.address()
	return AddressDetails{
		Apartment:   notApplicable,
		Email:       firstNonEmpty(c.email(), defaultEmail),
		Floor:       notApplicable,
		FirstName:   firstNonEmpty(c.firstName(), defaultFirstName),
		Street:      firstNonEmpty(addr.Street, defaultStreet),
		Building:    notApplicable,
		PhoneNumber: firstNonEmpty(c.phone(), defaultPhone),
		PostalCode:  firstNonEmpty(addr.PostalCode, defaultPostalCode),
		City:        firstNonEmpty(addr.City, defaultLocality),
		Country:     countryCode,
		LastName:    firstNonEmpty(c.lastName(), defaultLastName),
		State:       firstNonEmpty(addr.State, defaultLocality),
	}
}

// buildBillingData applies the payment-key length caps. Street and city must
// be supplied by the customer.
func buildBillingData(c *Customer) (AddressDetails, error) {
	addr := c.address()
	street := strings.TrimSpace(addr.Street)
	city := strings.TrimSpace(addr.City)
	if street == "" || city == "" {
		return AddressDetails{}, ErrInvalidBillingData
	}

	return AddressDetails{
		Apartment:   notApplicable,
		Email:       firstNonEmpty(c.email(), defaultEmail),
		Floor:       notApplicable,
		FirstName:   firstNonEmpty(truncate(c.firstName(), 30), defaultFirstName),
		Street:      truncate(street, 100),
		Building:    notApplicable,
		PhoneNumber: firstNonEmpty(c.phone(), defaultPhone),
		PostalCode:  firstNonEmpty(addr.PostalCode, defaultPostalCode),
		City:        truncate(city, 30),
		Country:     countryCode,
		LastName:    firstNonEmpty(truncate(c.lastName(), 30), defaultLastName),
		State:       firstNonEmpty(truncate(addr.State, 30), defaultLocality),
	}, nil
}

func (c *Customer) contact() Contact {
	if c.Customer == nil {
		return Contact{}
	}
	return *c.Customer
}

func (c *Customer) address() CustomerAddress {
	if c.ShippingAddress == nil {
		return CustomerAddress{}
	}
	return *c.ShippingAddress
}

func (c *Customer) firstName() string { return firstNonEmpty(c.FirstName, c.contact().FirstName) }
func (c *Customer) lastName() string  { return firstNonEmpty(c.LastName, c.contact().LastName) }
func (c *Customer) phone() string     { return firstNonEmpty(c.PhoneNumber, c.contact().PhoneNumber) }
func (c *Customer) email() string     { return firstNonEmpty(c.Email, c.contact().Email) }

// toCents converts a major-unit amount to rounded minor units
func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// IsMissingFields reports whether err is a precondition failure and returns
// the field map
func IsMissingFields(err error) (map[string]bool, bool) {
	var mf *MissingFieldsError
	if errors.As(err, &mf) {
		return mf.Missing, true
	}
	return nil, false
}

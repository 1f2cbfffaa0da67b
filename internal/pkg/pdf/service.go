// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/your-org/storefront-api/internal/config"
	"github.com/your-org/storefront-api/internal/domain/order"
)

var invoiceTmpl = template.Must(template.New("invoice").Funcs(template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"line":  func(i order.OrderItem) float64 { return i.LineTotal() },
}).Parse(invoiceTemplate))

// Service handles PDF generation
type Service struct {
	config *config.Config
	now    func() time.Time
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	if cfg.Invoice.WkhtmltopdfBin != "" {
		wkhtmltopdf.SetPath(cfg.Invoice.WkhtmltopdfBin)
	}
	return &Service{
		config: cfg,
		now:    time.Now,
	}
}

// InvoiceData represents the data passed to the invoice template
type InvoiceData struct {
	InvoiceNumber string
	InvoiceDate   string
	Currency      string
	Order         *order.Order
	Company       CompanyInfo
}

// CompanyInfo is printed in the invoice header
type CompanyInfo struct {
	Name    string
	Address string
	Email   string
}

// GenerateInvoice renders an order as a PDF invoice
func (s *Service) GenerateInvoice(o *order.Order) (*bytes.Buffer, error) {
	html, err := s.RenderInvoiceHTML(o)
	if err != nil {
		return nil, err
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}
	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA4)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(html))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}
	return bytes.NewBuffer(pdfg.Bytes()), nil
}

// RenderInvoiceHTML produces the HTML the PDF is printed from
func (s *Service) RenderInvoiceHTML(o *order.Order) ([]byte, error) {
	data := InvoiceData{
		InvoiceNumber: InvoiceNumber(o),
		InvoiceDate:   s.now().Format("January 2, 2006"),
		Currency:      s.config.Paymob.Currency,
		Order:         o,
		Company: CompanyInfo{
			Name:    s.config.Invoice.CompanyName,
			Address: s.config.Invoice.CompanyAddress,
			Email:   s.config.Invoice.SupportEmail,
		},
	}

	var buf bytes.Buffer
	if err := invoiceTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.Bytes(), nil
}

// InvoiceNumber is derived from the order creation date and id
func InvoiceNumber(o *order.Order) string {
	return fmt.Sprintf("INV-%s-%06d", o.CreatedAt.UTC().Format("20060102"), o.ID)
}

const invoiceTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>Invoice {{.InvoiceNumber}}</title>
<style>
body { font-family: Arial, sans-serif; color: #333; padding: 20px; }
h1 { color: #2563eb; margin: 0 0 10px; }
.header { border-bottom: 2px solid #eee; padding-bottom: 16px; margin-bottom: 24px; }
.muted { color: #6b7280; }
table { width: 100%; border-collapse: collapse; margin-bottom: 24px; }
th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
th { background: #f8f9fa; }
.num { text-align: right; }
.totals td { border: none; }
.status { font-weight: bold; text-transform: uppercase; }
</style>
</head>
<body>
<div class="header">
  <h1>INVOICE</h1>
  <div><strong>{{.Company.Name}}</strong></div>
  <div class="muted">{{.Company.Address}}</div>
  <div class="muted">{{.Company.Email}}</div>
</div>

<table>
  <tr><td><strong>Invoice</strong></td><td>{{.InvoiceNumber}}</td></tr>
  <tr><td><strong>Date</strong></td><td>{{.InvoiceDate}}</td></tr>
  <tr><td><strong>Order</strong></td><td>#{{.Order.ID}}</td></tr>
  <tr><td><strong>Payment method</strong></td><td>{{.Order.PaymentMethod}}</td></tr>
  <tr><td><strong>Status</strong></td><td class="status">{{if .Order.IsPaid}}paid{{else}}unpaid{{end}}</td></tr>
</table>

<h3>Ship to</h3>
<p>
  {{.Order.ShippingAddress.Address}}<br>
  {{.Order.ShippingAddress.City}} {{.Order.ShippingAddress.PostalCode}}<br>
  {{.Order.ShippingAddress.Country}}
</p>

<table>
  <thead>
    <tr><th>Item</th><th class="num">Qty</th><th class="num">Price</th><th class="num">Total</th></tr>
  </thead>
  <tbody>
  {{range .Order.OrderItems}}
    <tr><td>{{.Name}}</td><td class="num">{{.Qty}}</td><td class="num">{{money .Price}}</td><td class="num">{{money (line .)}}</td></tr>
  {{end}}
  </tbody>
</table>

<table class="totals">
  <tr><td class="num">Subtotal</td><td class="num">{{money .Order.Subtotal}} {{.Currency}}</td></tr>
  <tr><td class="num">Shipping</td><td class="num">{{money .Order.ShippingCost}} {{.Currency}}</td></tr>
  <tr><td class="num"><strong>Total</strong></td><td class="num"><strong>{{money .Order.TotalPrice}} {{.Currency}}</strong></td></tr>
</table>
</body>
</html>
`

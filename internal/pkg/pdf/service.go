// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/your-org/ecommerce-storefront/internal/config"
	"github.com/your-org/ecommerce-storefront/internal/infrastructure/backend"
)

// Service handles PDF generation
type Service struct {
	company CompanyInfo
	tmpl    *template.Template
	now     func() time.Time
}

// NewService creates a new PDF service
func NewService(cfg config.AppConfig) *Service {
	return &Service{
		company: CompanyInfo{
			Name:    cfg.CompanyName,
			Address: cfg.CompanyAddress,
			Email:   cfg.CompanyEmail,
			Website: cfg.PublicURL,
		},
		tmpl: template.Must(template.New("invoice").Parse(invoiceTemplate)),
		now:  time.Now,
	}
}

// InvoiceData represents the data passed to the invoice template
type InvoiceData struct {
	InvoiceNumber string
	InvoiceDate   string
	OrderDate     string
	Order         *backend.Order
	Company       CompanyInfo
}

// CompanyInfo represents company information
type CompanyInfo struct {
	Name    string
	Address string
	Email   string
	Website string
}

// GenerateInvoice renders an order receipt as PDF
func (s *Service) GenerateInvoice(order *backend.Order) (*bytes.Buffer, error) {
	htmlContent, err := s.RenderHTML(order)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA4)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(htmlContent))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	page.Zoom.Set(0.95)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

// RenderHTML produces the receipt markup fed to wkhtmltopdf
func (s *Service) RenderHTML(order *backend.Order) ([]byte, error) {
	data := InvoiceData{
		InvoiceNumber: fmt.Sprintf("INV-%s", order.ShortID()),
		InvoiceDate:   s.now().Format("January 2, 2006"),
		Order:         order,
		Company:       s.company,
	}
	if !order.CreatedAt.IsZero() {
		data.OrderDate = order.CreatedAt.Format("January 2, 2006")
	}

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.Bytes(), nil
}

const invoiceTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Invoice {{.InvoiceNumber}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 20px; color: #333; }
        .header { display: flex; justify-content: space-between; border-bottom: 2px solid #16a34a; padding-bottom: 12px; }
        .company h1 { margin: 0; color: #16a34a; }
        .meta { text-align: right; font-size: 13px; }
        .section { margin-top: 24px; }
        .section h3 { margin: 0 0 6px; font-size: 15px; }
        table { width: 100%; border-collapse: collapse; margin-top: 16px; }
        th, td { padding: 8px; border-bottom: 1px solid #e5e7eb; text-align: left; }
        th { background: #f9fafb; }
        .qty { text-align: right; width: 80px; }
        .total { margin-top: 16px; text-align: right; font-size: 18px; font-weight: bold; }
        .footer { margin-top: 40px; font-size: 12px; color: #6b7280; text-align: center; }
    </style>
</head>
<body>
    <div class="header">
        <div class="company">
            <h1>{{.Company.Name}}</h1>
            {{if .Company.Address}}<div>{{.Company.Address}}</div>{{end}}
            <div>{{.Company.Email}}</div>
        </div>
        <div class="meta">
            <div><strong>{{.InvoiceNumber}}</strong></div>
            <div>Issued {{.InvoiceDate}}</div>
            {{if .OrderDate}}<div>Ordered {{.OrderDate}}</div>{{end}}
            <div>Status: {{.Order.Status}}</div>
        </div>
    </div>

    <div class="section">
        <h3>Ship to</h3>
        {{with .Order.ShippingAddress}}
        <div>{{.Name}}</div>
        <div>{{.Phone}}</div>
        <div>{{.Address}}</div>
        <div>{{.City}}{{if .State}}, {{.State}}{{end}}</div>
        <div>{{.PostalCode}}{{if .Country}}, {{.Country}}{{end}}</div>
        {{end}}
    </div>

    <div class="section">
        <h3>Payment</h3>
        {{if .Order.IsCOD}}<div>Cash on delivery</div>{{else}}<div>Paid online ({{.Order.PaymentID}})</div>{{end}}
    </div>

    <table>
        <thead>
            <tr><th>Product</th><th class="qty">Qty</th></tr>
        </thead>
        <tbody>
            {{range .Order.Products}}
            <tr><td>{{.DisplayName}}</td><td class="qty">{{.Quantity}}</td></tr>
            {{end}}
        </tbody>
    </table>

    <div class="total">Total: ${{.Order.Total.StringFixed 2}}</div>

    <div class="footer">Thank you for shopping with {{.Company.Name}}. {{.Company.Website}}</div>
</body>
</html>
`

package printing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	promissoryapp "github.com/wimotos/backend/internal/application/promissory"
	"github.com/wimotos/backend/internal/domain/shared"
	"github.com/wimotos/backend/internal/domain/shared/valueobject"
)

var bookletTemplate = template.Must(template.New("booklet").Funcs(template.FuncMap{
	"brl": func(d decimal.Decimal) string { return valueobject.FormatBRL(d) },
	"date": func(s string) string {
		t, err := valueobject.ParseDate(s)
		if err != nil {
			return s
		}
		return t.Format("02/01/2006")
	},
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
}).Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="UTF-8">
<title>Carnê {{.Booklet.Note.PublicID}}</title>
<style>
body { font-family: Arial, Helvetica, sans-serif; font-size: 11px; color: #111; }
header { border-bottom: 2px solid #111; margin-bottom: 8px; padding-bottom: 4px; }
h1 { font-size: 16px; margin: 0; }
.summary td { padding: 1px 8px 1px 0; }
.coupon { border: 1px dashed #555; padding: 6px 8px; margin: 6px 0; page-break-inside: avoid; }
.coupon .row { display: flex; justify-content: space-between; }
.coupon .amount { font-size: 14px; font-weight: bold; }
.paid { color: #2a7a2a; }
.canceled { color: #999; text-decoration: line-through; }
</style>
</head>
<body>
<header>
<h1>{{.Company}} · Nota promissória {{.Booklet.Note.PublicID}}</h1>
<table class="summary">
<tr><td>Cliente:</td><td>{{.Booklet.ClientName}} ({{.Booklet.ClientPhone}}){{with deref .Booklet.ClientCPF}} · CPF {{.}}{{end}}</td></tr>
{{- if .Booklet.ProductLabel}}
<tr><td>Produto:</td><td>{{.Booklet.ProductLabel}}{{with deref .Booklet.ProductPlate}} · Placa {{.}}{{end}} · Chassi {{.Booklet.ProductChassis}}</td></tr>
{{- end}}
<tr><td>Total:</td><td>{{brl .Booklet.Note.Total}} · Entrada {{brl .Booklet.Note.EntryAmount}} · Financiado {{brl .Booklet.Note.Financed}}</td></tr>
</table>
</header>
{{- range .Booklet.Note.Installments}}
<div class="coupon{{if eq .Status "PAID"}} paid{{else if eq .Status "CANCELED"}} canceled{{end}}">
<div class="row"><span>Parcela {{.Number}}/{{len $.Booklet.Note.Installments}}</span><span>Vencimento {{date .DueDate}}</span></div>
<div class="row"><span>{{$.Booklet.ClientName}}</span><span class="amount">{{brl .Amount}}</span></div>
<div class="row"><span>Contrato {{$.Booklet.Note.PublicID}}</span><span>{{.Status}}</span></div>
</div>
{{- end}}
</body>
</html>
`))

type bookletView struct {
	Company string
	Booklet promissoryapp.Booklet
}

// BookletHTML renders the payment booklet page: a header and one coupon per installment
func BookletHTML(company string, booklet promissoryapp.Booklet) (string, error) {
	var buf bytes.Buffer
	if err := bookletTemplate.Execute(&buf, bookletView{Company: company, Booklet: booklet}); err != nil {
		return "", NewRenderError(ErrCodeTemplate, "booklet template failed", err)
	}
	return buf.String(), nil
}

var errPrintingTimeout = shared.NewKindError(shared.KindUnavailable, "PRINTING_TIMEOUT", "booklet rendering timed out, try again")

// BookletRenderer prints booklets with a PDFRenderer
type BookletRenderer struct {
	pdf     PDFRenderer
	company string
	timeout time.Duration
	logger  *zap.Logger
}

// NewBookletRenderer creates a booklet renderer on top of pdf
func NewBookletRenderer(pdf PDFRenderer, company string, timeout time.Duration, logger *zap.Logger) *BookletRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookletRenderer{pdf: pdf, company: company, timeout: timeout, logger: logger}
}

// RenderBooklet implements promissoryapp.BookletRenderer
func (r *BookletRenderer) RenderBooklet(ctx context.Context, booklet promissoryapp.Booklet) ([]byte, error) {
	html, err := BookletHTML(r.company, booklet)
	if err != nil {
		return nil, err
	}
	res, err := r.pdf.Render(ctx, &RenderRequest{
		HTML:    html,
		Title:   "Carnê " + booklet.Note.PublicID,
		Margins: DefaultMargins(),
		Timeout: r.timeout,
	})
	var rerr *RenderError
	if errors.As(err, &rerr) && rerr.Code == ErrCodeRenderTimeout {
		// a busy or slow Chrome is transient, so callers get 503 rather than 500
		return nil, fmt.Errorf("%w: %w", errPrintingTimeout, err)
	}
	if err != nil {
		return nil, err
	}
	r.logger.Debug("booklet rendered",
		zap.String("public_id", booklet.Note.PublicID),
		zap.Int("pages", res.PageCount))
	return res.PDFData, nil
}

var _ promissoryapp.BookletRenderer = (*BookletRenderer)(nil)

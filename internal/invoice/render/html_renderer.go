package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const invoiceHTMLTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>Invoice {{.Invoice.Number}}</title>
  <style>
    * { box-sizing: border-box; }
    body {
      margin: 0;
      padding: 32px;
      font-family: "Helvetica Neue", Arial, sans-serif;
      color: #111827;
      background: #ffffff;
    }
    .invoice {
      max-width: 820px;
      margin: 0 auto;
    }
    .header {
      display: flex;
      justify-content: space-between;
      align-items: flex-start;
      border-bottom: 2px solid #111827;
      padding-bottom: 16px;
      margin-bottom: 24px;
    }
    .meta {
      text-align: right;
      font-size: 14px;
    }
    .label {
      color: #6b7280;
      text-transform: uppercase;
      letter-spacing: 0.04em;
      font-size: 11px;
    }
    .parties {
      display: flex;
      gap: 48px;
      margin-bottom: 24px;
    }
    .section {
      margin-bottom: 24px;
    }
    table {
      width: 100%;
      border-collapse: collapse;
      font-size: 14px;
    }
    th, td {
      padding: 10px;
      border-bottom: 1px solid #e5e7eb;
      text-align: left;
    }
    th {
      text-transform: uppercase;
      font-size: 11px;
      letter-spacing: 0.04em;
      color: #6b7280;
    }
    .totals {
      margin-top: 12px;
      margin-left: auto;
      width: 280px;
      font-size: 14px;
    }
    .totals div {
      display: flex;
      justify-content: space-between;
      padding: 4px 0;
    }
    .totals .grand {
      border-top: 1px solid #e5e7eb;
      font-size: 16px;
      font-weight: 600;
    }
    .footer {
      border-top: 1px solid #e5e7eb;
      padding-top: 16px;
      font-size: 12px;
      color: #6b7280;
    }
  </style>
</head>
<body>
  <div class="invoice">
    <div class="header">
      <div>
        <div class="label">From</div>
        <div><strong>{{.Invoice.FromName}}</strong></div>
        <div>{{.Invoice.FromAddress}}</div>
      </div>
      <div class="meta">
        <div class="label">Invoice</div>
        <div><strong>{{.Invoice.Number}}</strong></div>
        <div>Issued: {{formatDate .Invoice.InvoiceDate}}</div>
        <div>Due: {{formatDate .Invoice.DueDate}}</div>
      </div>
    </div>

    <div class="parties">
      <div>
        <div class="label">Bill To</div>
        <div><strong>{{.Invoice.ToName}}</strong></div>
        <div>{{.Invoice.ToAddress}}</div>
      </div>
    </div>

    <div class="section">
      <table>
        <thead>
          <tr>
            <th>Description</th>
            <th>Quantity</th>
            <th>Unit Price</th>
            <th>Amount</th>
          </tr>
        </thead>
        <tbody>
          {{range .Items}}
          <tr>
            <td>{{.Description}}</td>
            <td>{{formatQuantity .Quantity}}</td>
            <td>{{formatMoney .Price}}</td>
            <td>{{formatMoney .Amount}}</td>
          </tr>
          {{end}}
        </tbody>
      </table>
      <div class="totals">
        <div><span>Subtotal</span><span>{{formatMoney .Totals.Subtotal}}</span></div>
        {{if .Totals.HasTax}}
        <div><span>Tax ({{formatRate .Totals.TaxRate}} {{.Invoice.TaxJurisdiction}})</span><span>{{formatMoney .Totals.TaxAmount}}</span></div>
        {{end}}
        <div class="grand"><span>Total</span><span>{{formatMoney .Totals.Total}}</span></div>
      </div>
    </div>

    {{if .Invoice.Notes}}
    <div class="footer">{{.Invoice.Notes}}</div>
    {{end}}
  </div>
</body>
</html>
`

type HTMLRenderer struct {
	tpl *template.Template
}

func NewRenderer() Renderer {
	funcs := template.FuncMap{
		"formatMoney":    formatMoney,
		"formatDate":     formatDate,
		"formatQuantity": formatQuantity,
		"formatRate":     formatRate,
	}
	return &HTMLRenderer{
		tpl: template.Must(template.New("invoice").Funcs(funcs).Parse(invoiceHTMLTemplate)),
	}
}

func (r *HTMLRenderer) RenderHTML(input RenderInput) (string, error) {
	var buf bytes.Buffer
	if err := r.tpl.Execute(&buf, input); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// formatMoney rounds to two decimals; stored values keep full precision.
func formatMoney(value decimal.Decimal) string {
	return "$" + value.StringFixed(2)
}

func formatDate(value time.Time) string {
	if value.IsZero() {
		return "-"
	}
	return value.UTC().Format("2006-01-02")
}

func formatQuantity(value decimal.Decimal) string {
	out := value.String()
	if strings.Contains(out, ".") {
		out = strings.TrimRight(strings.TrimRight(out, "0"), ".")
	}
	return out
}

func formatRate(value decimal.Decimal) string {
	return fmt.Sprintf("%s%%", value.Mul(decimal.NewFromInt(100)).String())
}

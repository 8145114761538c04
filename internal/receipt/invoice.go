package receipt

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/joe-hadchity/lescale-pos/internal/entity"
)

const invoiceTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Invoice {{.OrderNumber}}</title>
<style>
body { font-family: Arial, sans-serif; margin: 40px; }
h1 { font-size: 20px; }
table { width: 100%; border-collapse: collapse; margin-top: 16px; }
th, td { border: 1px solid #444; padding: 6px 10px; text-align: left; }
td.num, th.num { text-align: right; }
tfoot td { font-weight: bold; }
</style>
</head>
<body>
<h1>{{.BusinessName}}</h1>
<p>{{.Address}}<br>{{.Phone}}</p>
<p>Invoice for order #{{.OrderNumber}} &mdash; {{.Date}}<br>Table: {{.Table}}</p>
<table>
<thead>
<tr><th>Item</th><th class="num">Qty</th><th class="num">Unit price</th><th class="num">Line total</th></tr>
</thead>
<tbody>
{{range .Items}}<tr><td>{{.Name}}{{if .Detail}}<br><small>{{.Detail}}</small>{{end}}</td><td class="num">{{.Quantity}}</td><td class="num">{{.UnitPrice}}</td><td class="num">{{.LineTotal}}</td></tr>
{{end}}</tbody>
<tfoot>
{{if .Discount}}<tr><td colspan="3">Discount</td><td class="num">{{.Discount}}</td></tr>
{{end}}<tr><td colspan="3">Total</td><td class="num">{{.Total}}</td></tr>
</tfoot>
</table>
</body>
</html>
`

var invoiceTmpl = template.Must(template.New("invoice").Parse(invoiceTemplate))

type invoiceItem struct {
	Name      string
	Detail    string
	Quantity  int
	UnitPrice string
	LineTotal string
}

type invoiceData struct {
	BusinessName string
	Address      string
	Phone        string
	OrderNumber  string
	Date         string
	Table        string
	Items        []invoiceItem
	Discount     string
	Total        string
}

// Invoice renders a finalized order into a full-page A4 document.
func Invoice(header entity.ReceiptHeader, order *entity.Order, at time.Time) (string, error) {
	data := invoiceData{
		BusinessName: header.BusinessName,
		Address:      header.Address,
		Phone:        header.Phone,
		OrderNumber:  order.OrderNumber,
		Date:         at.Format("02/01/2006 15:04"),
		Table:        order.TableNumber,
		Total:        money(order.Total()),
	}
	if order.DiscountPercent > 0 {
		data.Discount = fmt.Sprintf("%.0f%%", order.DiscountPercent)
	}
	for i := range order.Lines {
		line := &order.Lines[i]
		data.Items = append(data.Items, invoiceItem{
			Name:      line.ItemName,
			Detail:    lineDetail(line),
			Quantity:  line.Quantity,
			UnitPrice: money(line.UnitPrice()),
			LineTotal: money(line.Subtotal()),
		})
	}

	var sb strings.Builder
	if err := invoiceTmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("rendering invoice: %w", err)
	}
	return sb.String(), nil
}

func money(v float64) string {
	return fmt.Sprintf("%.2f %s", v, currency)
}

// lineDetail summarizes removals and add-ons for the kitchen copy of the
// invoice.
func lineDetail(line *entity.CartLine) string {
	var parts []string
	for _, r := range line.Removals {
		parts = append(parts, "no "+r)
	}
	for _, a := range line.AddOns {
		parts = append(parts, "+ "+a.Name)
	}
	if line.OnTheHouse {
		parts = append(parts, "on the house")
	}
	if line.Note != "" {
		parts = append(parts, line.Note)
	}
	return strings.Join(parts, ", ")
}

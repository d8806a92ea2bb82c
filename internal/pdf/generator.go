// Package pdf renders order invoices using maroto/v2.
package pdf

import (
	"fmt"
	"strings"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
)

// ── Colour palette ──────────────────────────────────────────────────────

var (
	colorPrimary   = &props.Color{Red: 15, Green: 23, Blue: 42}    // slate-900
	colorSecondary = &props.Color{Red: 100, Green: 116, Blue: 139} // slate-500
	colorAccent    = &props.Color{Red: 79, Green: 70, Blue: 229}   // indigo-600
	colorTableHead = &props.Color{Red: 241, Green: 245, Blue: 249} // slate-100
	colorTableAlt  = &props.Color{Red: 248, Green: 250, Blue: 252} // slate-50
	colorGreen     = &props.Color{Red: 5, Green: 150, Blue: 105}   // emerald-600
	colorAmber     = &props.Color{Red: 217, Green: 119, Blue: 6}   // amber-600
	colorBorder    = &props.Color{Red: 226, Green: 232, Blue: 240} // slate-200
)

// ── Data struct ─────────────────────────────────────────────────────────

// InvoiceLine is one rendered order line.
type InvoiceLine struct {
	Name      string
	SKU       string
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// InvoiceData holds everything printed on an order invoice.
type InvoiceData struct {
	CompanyName string
	Logo        []byte
	LogoExt     extension.Type

	OrderID     string
	Status      string
	CreatedAt   time.Time
	SuccessRate string
	Notes       string

	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	DeliveryRegion  string

	Items          []InvoiceLine
	Subtotal       decimal.Decimal
	DeliveryCharge decimal.Decimal
	Discount       decimal.Decimal
	Advance        decimal.Decimal
	GrandTotal     decimal.Decimal

	ConsignmentID     string
	CourierStatus     string
	DispatchSimulated bool
}

// LogoExtension maps an image content type to the maroto extension.
// Unsupported types return false.
func LogoExtension(contentType string) (extension.Type, bool) {
	switch strings.ToLower(contentType) {
	case "image/png":
		return extension.Png, true
	case "image/jpeg", "image/jpg":
		return extension.Jpg, true
	}
	return "", false
}

// GenerateInvoicePDF renders the invoice for an order.
func GenerateInvoicePDF(data InvoiceData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithLeftMargin(15).
		WithTopMargin(12).
		WithRightMargin(15).
		Build()

	m := maroto.New(cfg)

	if err := m.RegisterFooter(buildFooter(data)); err != nil {
		return nil, fmt.Errorf("register footer: %w", err)
	}

	m.AddRows(buildHeader(data)...)
	m.AddRows(row.New(1).WithStyle(&props.Cell{
		BorderType:  border.Bottom,
		BorderColor: colorBorder,
	}))
	m.AddRows(row.New(6))

	m.AddRows(buildBillTo(data)...)
	m.AddRows(row.New(6))

	m.AddRows(buildItemsTable(data)...)
	m.AddRows(row.New(4))

	m.AddRows(buildTotalsBlock(data)...)

	if data.ConsignmentID != "" {
		m.AddRows(row.New(6))
		m.AddRows(buildCourierBlock(data)...)
	}

	if strings.TrimSpace(data.Notes) != "" {
		m.AddRows(row.New(6))
		m.AddRows(buildNotesBlock(data.Notes)...)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate PDF: %w", err)
	}

	return doc.GetBytes(), nil
}

// ── Header ──────────────────────────────────────────────────────────────

func buildHeader(data InvoiceData) []core.Row {
	logoCol := col.New(6)
	if len(data.Logo) > 0 && data.LogoExt != "" {
		logoCol.Add(image.NewFromBytes(data.Logo, data.LogoExt, props.Rect{Percent: 85}))
	} else {
		logoCol.Add(text.New(data.CompanyName, props.Text{
			Size:  14,
			Style: fontstyle.Bold,
			Color: colorPrimary,
			Top:   4,
		}))
	}

	titleCol := col.New(6).Add(
		text.New("INVOICE", props.Text{
			Size:  24,
			Style: fontstyle.Bold,
			Align: align.Right,
			Color: colorAccent,
		}),
		text.New(data.OrderID, props.Text{
			Size:  11,
			Align: align.Right,
			Color: colorSecondary,
			Top:   12,
		}),
	)

	return []core.Row{row.New(20).Add(logoCol, titleCol)}
}

// ── Bill to ─────────────────────────────────────────────────────────────

func buildBillTo(data InvoiceData) []core.Row {
	label := props.Text{Size: 7, Style: fontstyle.Bold, Color: colorAccent}
	labelRight := props.Text{Size: 7, Style: fontstyle.Bold, Color: colorAccent, Align: align.Right}
	body := props.Text{Size: 8, Color: colorSecondary}
	bodyRight := props.Text{Size: 8, Color: colorSecondary, Align: align.Right}

	return []core.Row{
		row.New(5).Add(
			col.New(7).Add(text.New("BILL TO", label)),
			col.New(5).Add(text.New("ORDER DETAILS", labelRight)),
		),
		row.New(5).Add(
			col.New(7).Add(text.New(data.CustomerName, props.Text{Size: 9, Style: fontstyle.Bold, Color: colorPrimary})),
			col.New(5).Add(text.New("Date: "+data.CreatedAt.Format("02 Jan 2006"), bodyRight)),
		),
		row.New(5).Add(
			col.New(7).Add(text.New(data.CustomerPhone, body)),
			col.New(5).Add(text.New("Status: "+data.Status, bodyRight)),
		),
		row.New(10).Add(
			col.New(7).Add(text.New(data.CustomerAddress, body)),
			col.New(5).Add(text.New("Delivery: "+data.DeliveryRegion+"  |  Success rate: "+orDash(data.SuccessRate), bodyRight)),
		),
	}
}

// ── Items ───────────────────────────────────────────────────────────────

func buildItemsTable(data InvoiceData) []core.Row {
	headerStyle := props.Text{Size: 7.5, Style: fontstyle.Bold, Color: colorPrimary, Top: 1.5}
	headerStyleRight := props.Text{Size: 7.5, Style: fontstyle.Bold, Color: colorPrimary, Align: align.Right, Top: 1.5}

	rows := []core.Row{
		row.New(7).Add(
			col.New(6).Add(text.New("Item", headerStyle)),
			col.New(2).Add(text.New("Qty", headerStyleRight)),
			col.New(2).Add(text.New("Unit price", headerStyleRight)),
			col.New(2).Add(text.New("Amount", headerStyleRight)),
		).WithStyle(&props.Cell{
			BackgroundColor: colorTableHead,
			BorderType:      border.Bottom,
			BorderColor:     colorBorder,
		}),
	}

	normal := props.Text{Size: 8, Color: colorPrimary, Top: 1}
	right := props.Text{Size: 8, Color: colorPrimary, Align: align.Right, Top: 1}
	for i, it := range data.Items {
		name := it.Name
		if it.SKU != "" {
			name += " (" + it.SKU + ")"
		}
		r := row.New(7).Add(
			col.New(6).Add(text.New(name, normal)),
			col.New(2).Add(text.New(fmt.Sprintf("%d", it.Quantity), right)),
			col.New(2).Add(text.New(formatCurrency(it.UnitPrice), right)),
			col.New(2).Add(text.New(formatCurrency(it.LineTotal), right)),
		)
		if i%2 == 1 {
			r.WithStyle(&props.Cell{BackgroundColor: colorTableAlt})
		}
		rows = append(rows, r)
	}
	return rows
}

// ── Totals ──────────────────────────────────────────────────────────────

func buildTotalsBlock(data InvoiceData) []core.Row {
	labelStyle := props.Text{Size: 9, Color: colorSecondary, Align: align.Right}
	valueStyle := props.Text{Size: 9, Color: colorPrimary, Align: align.Right}

	line := func(label, value string) core.Row {
		return row.New(6).Add(
			col.New(9).Add(text.New(label, labelStyle)),
			col.New(3).Add(text.New(value, valueStyle)),
		)
	}

	rows := []core.Row{
		row.New(1).WithStyle(&props.Cell{BorderType: border.Bottom, BorderColor: colorBorder}),
		row.New(3),
		line("Subtotal", formatCurrency(data.Subtotal)),
		line("Delivery charge", formatCurrency(data.DeliveryCharge)),
	}
	if data.Discount.IsPositive() {
		rows = append(rows, line("Discount", "-"+formatCurrency(data.Discount)))
	}
	if data.Advance.IsPositive() {
		rows = append(rows, line("Advance paid", "-"+formatCurrency(data.Advance)))
	}

	bold := props.Text{Size: 12, Style: fontstyle.Bold, Color: colorPrimary, Align: align.Right, Top: 2}
	rows = append(rows, row.New(2), row.New(10).Add(
		col.New(9).Add(text.New("CASH ON DELIVERY", bold)),
		col.New(3).Add(text.New(formatCurrency(data.GrandTotal), bold)),
	).WithStyle(&props.Cell{
		BackgroundColor: colorTableHead,
		BorderType:      border.Top + border.Bottom,
		BorderColor:     colorBorder,
	}))
	return rows
}

// ── Courier ─────────────────────────────────────────────────────────────

func buildCourierBlock(data InvoiceData) []core.Row {
	consignment := "Consignment: " + data.ConsignmentID
	statusColor := colorGreen
	if data.DispatchSimulated {
		consignment += "  (placeholder, not confirmed by courier)"
		statusColor = colorAmber
	}
	return []core.Row{
		row.New(5).Add(col.New(12).Add(text.New("COURIER", props.Text{Size: 8, Style: fontstyle.Bold, Color: colorAccent}))),
		row.New(5).Add(col.New(12).Add(text.New(consignment, props.Text{Size: 8, Color: statusColor}))),
		row.New(5).Add(col.New(12).Add(text.New("Courier status: "+orDash(data.CourierStatus), props.Text{Size: 8, Color: colorSecondary}))),
	}
}

// ── Notes ───────────────────────────────────────────────────────────────

func buildNotesBlock(notes string) []core.Row {
	return []core.Row{
		row.New(5).Add(
			col.New(12).Add(text.New("NOTES", props.Text{
				Size:  8,
				Style: fontstyle.Bold,
				Color: colorAccent,
			})),
		),
		row.New(12).Add(
			col.New(12).Add(text.New(notes, props.Text{
				Size:  8,
				Color: colorSecondary,
				Top:   1,
			})),
		),
	}
}

// ── Footer ──────────────────────────────────────────────────────────────

func buildFooter(data InvoiceData) core.Row {
	footerText := data.CompanyName + "  ·  " + data.OrderID
	return row.New(10).Add(
		col.New(12).Add(
			text.New(footerText, props.Text{
				Size:  6.5,
				Color: colorSecondary,
				Align: align.Center,
				Top:   4,
			}),
		),
	).WithStyle(&props.Cell{
		BorderType:  border.Top,
		BorderColor: colorBorder,
	})
}

func formatCurrency(amount decimal.Decimal) string {
	return "Tk " + amount.StringFixed(2)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

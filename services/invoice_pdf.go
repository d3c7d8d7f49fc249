package services

import (
	"fmt"
	"strconv"

	"fieldpro-backend/models"

	"github.com/johnfercher/maroto/pkg/color"
	"github.com/johnfercher/maroto/pkg/consts"
	"github.com/johnfercher/maroto/pkg/pdf"
	"github.com/johnfercher/maroto/pkg/props"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var moneyPrinter = message.NewPrinter(language.AmericanEnglish)

// FormatMoney renders an amount with two decimals and thousands separators.
func FormatMoney(v float64) string {
	return moneyPrinter.Sprintf("$%.2f", v)
}

// RenderInvoicePDF lays out an invoice with its line items as an A4 PDF.
func RenderInvoicePDF(inv *models.Invoice, company *models.Company) ([]byte, error) {
	m := pdf.NewMaroto(consts.Portrait, consts.A4)
	m.SetPageMargins(20, 10, 20)

	m.RegisterHeader(func() {
		m.Row(12, func() {
			m.Col(8, func() {
				m.Text(company.Name, props.Text{Top: 3, Style: consts.Bold, Size: 16})
			})
			m.Col(4, func() {
				m.Text("INVOICE", props.Text{Top: 3, Style: consts.Bold, Align: consts.Right, Size: 16})
			})
		})
		m.Row(6, func() {
			m.Col(8, func() {
				m.Text(company.Address, props.Text{Size: 9})
			})
			m.Col(4, func() {
				m.Text(inv.InvoiceNumber, props.Text{Align: consts.Right, Size: 9})
			})
		})
	})

	m.Row(8, func() {})
	m.Row(6, func() {
		m.Col(6, func() {
			m.Text("Bill to: "+inv.Customer.Name, props.Text{Style: consts.Bold, Size: 10})
		})
		m.Col(6, func() {
			m.Text("Issued: "+inv.IssueDate.Format("2006-01-02"), props.Text{Align: consts.Right, Size: 10})
		})
	})
	m.Row(6, func() {
		m.Col(6, func() {
			m.Text(inv.Customer.Address, props.Text{Size: 9})
		})
		m.Col(6, func() {
			m.Text("Due: "+inv.DueDate.Format("2006-01-02"), props.Text{Align: consts.Right, Size: 10})
		})
	})
	m.Row(8, func() {})

	headers := []string{"Description", "Qty", "Unit price", "Amount"}
	rows := make([][]string, 0, len(inv.Items))
	for _, item := range inv.Items {
		rows = append(rows, []string{
			item.Description,
			strconv.FormatFloat(item.Quantity, 'f', -1, 64),
			FormatMoney(item.UnitPrice),
			FormatMoney(item.TotalPrice),
		})
	}
	m.TableList(headers, rows, props.TableList{
		HeaderProp: props.TableListContent{
			Size:      10,
			GridSizes: []uint{6, 2, 2, 2},
		},
		ContentProp: props.TableListContent{
			Size:      10,
			GridSizes: []uint{6, 2, 2, 2},
		},
		Align:                consts.Left,
		AlternatedBackground: &color.Color{Red: 240, Green: 240, Blue: 240},
		HeaderContentSpace:   1,
		Line:                 false,
	})

	summary := [][2]string{
		{"Subtotal", FormatMoney(inv.Subtotal)},
		{fmt.Sprintf("Tax (%s%%)", strconv.FormatFloat(inv.TaxRate, 'f', -1, 64)), FormatMoney(inv.TaxAmount)},
		{"Total", FormatMoney(inv.TotalAmount)},
	}
	m.Row(6, func() {})
	for _, line := range summary {
		label, amount := line[0], line[1]
		m.Row(7, func() {
			m.Col(9, func() {
				m.Text(label, props.Text{Align: consts.Right, Style: consts.Bold, Size: 10})
			})
			m.Col(3, func() {
				m.Text(amount, props.Text{Align: consts.Right, Size: 10})
			})
		})
	}

	if inv.Notes != "" {
		m.Row(10, func() {})
		m.Row(10, func() {
			m.Col(12, func() {
				m.Text(inv.Notes, props.Text{Size: 9, Style: consts.Italic})
			})
		})
	}

	buf, err := m.Output()
	if err != nil {
		return nil, fmt.Errorf("render invoice pdf: %w", err)
	}
	return buf.Bytes(), nil
}

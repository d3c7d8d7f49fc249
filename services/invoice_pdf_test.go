package services

import (
	"bytes"
	"testing"
	"time"

	"fieldpro-backend/models"
)

func TestFormatMoney(t *testing.T) {
	cases := map[float64]string{
		0:      "$0.00",
		703.5:  "$703.50",
		1234.5: "$1,234.50",
	}
	for v, want := range cases {
		if got := FormatMoney(v); got != want {
			t.Fatalf("FormatMoney(%v) = %q, want %q", v, got, want)
		}
	}
}

func TestRenderInvoicePDF(t *testing.T) {
	issued := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	inv := &models.Invoice{
		InvoiceNumber: "INV-1",
		IssueDate:     issued,
		DueDate:       issued.AddDate(0, 0, 30),
		Subtotal:      650,
		TaxRate:       8.25,
		TaxAmount:     53.625,
		TotalAmount:   703.625,
		Notes:         "Thank you",
		Customer:      models.Customer{Name: "Jordan Lee", Address: "1 Main St"},
		Items: []models.InvoiceLineItem{
			{ItemType: models.LineLabor, Description: "Labor - Replace water heater", Quantity: 8, UnitPrice: 75, TotalPrice: 600},
			{ItemType: models.LineService, Description: "Service charge", Quantity: 1, UnitPrice: 50, TotalPrice: 50},
		},
	}
	data, err := RenderInvoicePDF(inv, &models.Company{Name: "Acme Plumbing", Address: "9 Side Rd"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("expected a PDF document")
	}
}

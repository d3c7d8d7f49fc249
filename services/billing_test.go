package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"fieldpro-backend/models"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newConverter(t *testing.T, db *gorm.DB) *InvoiceConverter {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	return NewInvoiceConverter(db, node, 0)
}

func TestComputeTotals(t *testing.T) {
	totals := ComputeTotals(ConversionInput{
		LaborHours:     8,
		LaborRate:      75,
		ServiceCharge:  50,
		TaxRatePercent: 8.25,
	})
	checks := []struct {
		name      string
		got, want decimal.Decimal
	}{
		{"labor", totals.LaborCost, dec("600")},
		{"subtotal", totals.Subtotal, dec("650")},
		{"tax", totals.TaxAmount, dec("53.625")},
		{"total", totals.Total, dec("703.625")},
	}
	for _, c := range checks {
		if !c.got.Equal(c.want) {
			t.Fatalf("%s: got %s, want %s", c.name, c.got, c.want)
		}
	}
}

func TestComputeTotalsIncludesParts(t *testing.T) {
	totals := ComputeTotals(ConversionInput{
		LaborHours: 1,
		LaborRate:  100,
		Parts: []PartLine{
			{PartStock: PartStock{Name: "Ball valve", UnitPrice: 12.5}, Quantity: 2, Total: dec("25")},
		},
		TaxRatePercent: 10,
	})
	if !totals.Subtotal.Equal(dec("125")) || !totals.Total.Equal(dec("137.5")) {
		t.Fatalf("unexpected totals %+v", totals)
	}
}

func TestBuildLineItemsSkipsZeroAmounts(t *testing.T) {
	job := &models.WorkOrder{Title: "Inspect boiler"}
	in := ConversionInput{LaborHours: 0, LaborRate: 80, ServiceCharge: 0}
	if lines := BuildLineItems(job, in, ComputeTotals(in)); len(lines) != 0 {
		t.Fatalf("expected no lines, got %+v", lines)
	}

	in = ConversionInput{LaborHours: 2, LaborRate: 80, ServiceCharge: 40}
	lines := BuildLineItems(job, in, ComputeTotals(in))
	if len(lines) != 2 {
		t.Fatalf("expected labor and service lines, got %d", len(lines))
	}
	if lines[0].ItemType != models.LineLabor || lines[0].TotalPrice != 160 || !strings.Contains(lines[0].Description, "Inspect boiler") {
		t.Fatalf("unexpected labor line %+v", lines[0])
	}
	if lines[1].ItemType != models.LineService || lines[1].Quantity != 1 || lines[1].TotalPrice != 40 {
		t.Fatalf("unexpected service line %+v", lines[1])
	}
}

func TestConvertPersistsInvoiceAndLines(t *testing.T) {
	db := newTestDB(t)
	f := seedJob(t, db)
	conv := newConverter(t, db)
	issued := time.Date(2026, 3, 2, 17, 0, 0, 0, time.UTC)
	conv.now = fixedClock(issued)

	inv, totals, err := conv.Convert(context.Background(), &f.job, f.tech.ID, ConversionInput{
		LaborHours:     8,
		LaborRate:      75,
		ServiceCharge:  50,
		TaxRatePercent: 8.25,
		Notes:          "Thanks!",
	})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if !totals.Total.Equal(dec("703.625")) {
		t.Fatalf("unexpected total %s", totals.Total)
	}
	if inv.Status != models.InvoiceDraft || !strings.HasPrefix(inv.InvoiceNumber, "INV-") {
		t.Fatalf("unexpected invoice header %+v", inv)
	}
	if !inv.DueDate.Equal(issued.AddDate(0, 0, DefaultInvoiceDueDays)) {
		t.Fatalf("expected due date %d days out, got %v", DefaultInvoiceDueDays, inv.DueDate)
	}

	var stored models.Invoice
	if err := db.Preload("Items").First(&stored, "id = ?", inv.ID).Error; err != nil {
		t.Fatalf("reload invoice: %v", err)
	}
	if stored.TotalAmount != 703.625 || stored.Subtotal != 650 || len(stored.Items) != 2 {
		t.Fatalf("unexpected stored invoice %+v", stored)
	}
	if stored.WorkOrderID == nil || *stored.WorkOrderID != f.job.ID {
		t.Fatalf("expected invoice linked to job")
	}
}

func TestConvertZeroAmountsCreatesNoLines(t *testing.T) {
	db := newTestDB(t)
	f := seedJob(t, db)
	conv := newConverter(t, db)

	inv, totals, err := conv.Convert(context.Background(), &f.job, f.tech.ID, ConversionInput{LaborRate: 75, TaxRatePercent: 8.25})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if !totals.Subtotal.IsZero() || !totals.TaxAmount.IsZero() || !totals.Total.IsZero() {
		t.Fatalf("expected zero totals, got %+v", totals)
	}
	if inv.Items == nil || len(inv.Items) != 0 {
		t.Fatalf("expected empty item list, got %#v", inv.Items)
	}
	var lines int64
	db.Model(&models.InvoiceLineItem{}).Where("invoice_id = ?", inv.ID).Count(&lines)
	if lines != 0 {
		t.Fatalf("expected no stored lines, got %d", lines)
	}
}

func TestConvertRejectsNegativeAmounts(t *testing.T) {
	db := newTestDB(t)
	f := seedJob(t, db)
	conv := newConverter(t, db)

	_, _, err := conv.Convert(context.Background(), &f.job, f.tech.ID, ConversionInput{LaborHours: -1, LaborRate: 75})
	if !errors.Is(err, ErrNegativeAmount) {
		t.Fatalf("expected ErrNegativeAmount, got %v", err)
	}
	var count int64
	db.Model(&models.Invoice{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no invoice, got %d", count)
	}
}

func TestInvoiceNumbersAreUnique(t *testing.T) {
	conv := newConverter(t, nil)
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		n := conv.NextInvoiceNumber()
		if seen[n] {
			t.Fatalf("duplicate invoice number %s", n)
		}
		seen[n] = true
	}
}

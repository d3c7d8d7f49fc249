package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"fieldpro-backend/models"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// InventoryRow is one parsed line of an inventory import sheet.
type InventoryRow struct {
	Line         int
	Name         string
	SKU          string
	Quantity     int
	UnitPrice    float64
	ReorderLevel int
}

var inventoryHeaders = map[string]string{
	"name":          "name",
	"item":          "name",
	"sku":           "sku",
	"quantity":      "quantity",
	"qty":           "quantity",
	"unit price":    "unit_price",
	"unit_price":    "unit_price",
	"price":         "unit_price",
	"reorder level": "reorder_level",
	"reorder_level": "reorder_level",
}

func normalizeHeader(header string) string {
	return strings.ToLower(strings.TrimSpace(header))
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// ParseInventorySheet reads the first worksheet of an xlsx file. The first
// row names the columns; name, sku, quantity and unit price are required.
func ParseInventorySheet(r io.Reader) ([]InventoryRow, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInventorySheet, err)
	}
	defer func() { _ = file.Close() }()

	sheetName := file.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("%w: no worksheet found", ErrInvalidInventorySheet)
	}
	rows, err := file.GetRows(sheetName)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: worksheet is empty", ErrInvalidInventorySheet)
	}

	cols := map[string]int{"name": -1, "sku": -1, "quantity": -1, "unit_price": -1, "reorder_level": -1}
	for i, h := range rows[0] {
		if key, ok := inventoryHeaders[normalizeHeader(h)]; ok && cols[key] < 0 {
			cols[key] = i
		}
	}
	for _, required := range []string{"name", "sku", "quantity", "unit_price"} {
		if cols[required] < 0 {
			return nil, fmt.Errorf("%w: missing %q column", ErrInvalidInventorySheet, required)
		}
	}

	var out []InventoryRow
	for i, row := range rows[1:] {
		line := i + 2
		name := cellValue(row, cols["name"])
		sku := cellValue(row, cols["sku"])
		if name == "" && sku == "" {
			continue
		}
		if sku == "" {
			return nil, fmt.Errorf("%w: row %d has no sku", ErrInvalidInventorySheet, line)
		}
		qty, err := strconv.Atoi(cellValue(row, cols["quantity"]))
		if err != nil || qty < 0 {
			return nil, fmt.Errorf("%w: row %d has invalid quantity", ErrInvalidInventorySheet, line)
		}
		price, err := strconv.ParseFloat(strings.TrimPrefix(cellValue(row, cols["unit_price"]), "$"), 64)
		if err != nil || price < 0 {
			return nil, fmt.Errorf("%w: row %d has invalid unit price", ErrInvalidInventorySheet, line)
		}
		reorder := 0
		if raw := cellValue(row, cols["reorder_level"]); raw != "" {
			if reorder, err = strconv.Atoi(raw); err != nil || reorder < 0 {
				return nil, fmt.Errorf("%w: row %d has invalid reorder level", ErrInvalidInventorySheet, line)
			}
		}
		out = append(out, InventoryRow{
			Line:         line,
			Name:         name,
			SKU:          sku,
			Quantity:     qty,
			UnitPrice:    price,
			ReorderLevel: reorder,
		})
	}
	return out, nil
}

// ImportInventory upserts rows by SKU and reports how many items were
// created and updated.
func ImportInventory(ctx context.Context, db *gorm.DB, companyID uuid.UUID, rows []InventoryRow) (created, updated int, err error) {
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			var item models.InventoryItem
			findErr := tx.Where("company_id = ? AND sku = ?", companyID, row.SKU).First(&item).Error
			switch {
			case findErr == nil:
				item.Name = row.Name
				item.Quantity = row.Quantity
				item.UnitPrice = row.UnitPrice
				item.ReorderLevel = row.ReorderLevel
				if err := tx.Save(&item).Error; err != nil {
					return fmt.Errorf("row %d: %w", row.Line, err)
				}
				updated++
			case errors.Is(findErr, gorm.ErrRecordNotFound):
				item = models.InventoryItem{
					CompanyID:    companyID,
					Name:         row.Name,
					SKU:          row.SKU,
					Quantity:     row.Quantity,
					UnitPrice:    row.UnitPrice,
					ReorderLevel: row.ReorderLevel,
				}
				if err := tx.Create(&item).Error; err != nil {
					return fmt.Errorf("row %d: %w", row.Line, err)
				}
				created++
			default:
				return findErr
			}
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return created, updated, nil
}

// TimesheetRow is one closed or running time entry in an export.
type TimesheetRow struct {
	Technician string
	Job        string
	Customer   string
	Start      time.Time
	End        *time.Time
	Minutes    int
}

const timesheetSheet = "Timesheet"

// BuildTimesheet writes rows to a new workbook and returns its bytes.
func BuildTimesheet(rows []TimesheetRow) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", timesheetSheet); err != nil {
		return nil, err
	}

	header := []interface{}{"Technician", "Job", "Customer", "Start", "End", "Minutes", "Hours"}
	if err := f.SetSheetRow(timesheetSheet, "A1", &header); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(timesheetSheet, "A1", "G1", bold); err != nil {
		return nil, err
	}

	totalMinutes := 0
	for i, r := range rows {
		end := ""
		if r.End != nil {
			end = r.End.Format("2006-01-02 15:04")
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := []interface{}{
			r.Technician,
			r.Job,
			r.Customer,
			r.Start.Format("2006-01-02 15:04"),
			end,
			r.Minutes,
			strconv.FormatFloat(float64(r.Minutes)/60, 'f', 2, 64),
		}
		if err := f.SetSheetRow(timesheetSheet, cell, &values); err != nil {
			return nil, err
		}
		totalMinutes += r.Minutes
	}

	totalCell, err := excelize.CoordinatesToCellName(5, len(rows)+2)
	if err != nil {
		return nil, err
	}
	totals := []interface{}{"Total", totalMinutes, strconv.FormatFloat(float64(totalMinutes)/60, 'f', 2, 64)}
	if err := f.SetSheetRow(timesheetSheet, totalCell, &totals); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

package services

import (
	"fmt"
	"sort"

	"fieldpro-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PartStock is an inventory item as seen when the job was opened.
type PartStock struct {
	ItemID    uuid.UUID `json:"itemId"`
	Name      string    `json:"name"`
	SKU       string    `json:"sku"`
	Available int       `json:"available"`
	UnitPrice float64   `json:"unitPrice"`
}

// PartLine is one consumed item with its extended price.
type PartLine struct {
	PartStock
	Quantity int             `json:"quantity"`
	Total    decimal.Decimal `json:"total"`
}

// PartsUsage maps inventory items to the quantity consumed by the job being
// edited. Quantities stay within [0, available].
type PartsUsage struct {
	stock map[uuid.UUID]PartStock
	used  map[uuid.UUID]int
}

func NewPartsUsage(items []models.InventoryItem) *PartsUsage {
	p := &PartsUsage{used: make(map[uuid.UUID]int)}
	p.setStock(items)
	return p
}

func (p *PartsUsage) setStock(items []models.InventoryItem) {
	p.stock = make(map[uuid.UUID]PartStock, len(items))
	for _, item := range items {
		available := item.Quantity
		if available < 0 {
			available = 0
		}
		p.stock[item.ID] = PartStock{
			ItemID:    item.ID,
			Name:      item.Name,
			SKU:       item.SKU,
			Available: available,
			UnitPrice: item.UnitPrice,
		}
	}
}

// Refresh replaces the availability snapshot and re-clamps existing usage.
func (p *PartsUsage) Refresh(items []models.InventoryItem) {
	p.setStock(items)
	for id, qty := range p.used {
		stock, ok := p.stock[id]
		if !ok {
			delete(p.used, id)
			continue
		}
		if qty > stock.Available {
			p.used[id] = stock.Available
		}
	}
}

// SetQuantityUsed records qty for itemID, clamped to the available stock.
// It returns the stored quantity and false when the item is unknown.
func (p *PartsUsage) SetQuantityUsed(itemID uuid.UUID, qty int) (int, bool) {
	stock, ok := p.stock[itemID]
	if !ok {
		return 0, false
	}
	if qty < 0 {
		qty = 0
	}
	if qty > stock.Available {
		qty = stock.Available
	}
	if qty == 0 {
		delete(p.used, itemID)
	} else {
		p.used[itemID] = qty
	}
	return qty, true
}

func (p *PartsUsage) QuantityUsed(itemID uuid.UUID) int {
	return p.used[itemID]
}

// Used returns a copy of the non-zero usage.
func (p *PartsUsage) Used() map[uuid.UUID]int {
	out := make(map[uuid.UUID]int, len(p.used))
	for id, qty := range p.used {
		if qty > 0 {
			out[id] = qty
		}
	}
	return out
}

func (p *PartsUsage) Reset() {
	p.used = make(map[uuid.UUID]int)
}

// Stock lists the availability snapshot ordered by name.
func (p *PartsUsage) Stock() []PartStock {
	out := make([]PartStock, 0, len(p.stock))
	for _, s := range p.stock {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].SKU < out[j].SKU
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Lines lists the consumed items ordered by name.
func (p *PartsUsage) Lines() []PartLine {
	var lines []PartLine
	for _, s := range p.Stock() {
		qty := p.used[s.ItemID]
		if qty <= 0 {
			continue
		}
		lines = append(lines, PartLine{
			PartStock: s,
			Quantity:  qty,
			Total:     decimal.NewFromFloat(s.UnitPrice).Mul(decimal.NewFromInt(int64(qty))),
		})
	}
	return lines
}

// Subtotal is the sum of quantity x unit price over every used item.
func (p *PartsUsage) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range p.Lines() {
		total = total.Add(line.Total)
	}
	return total
}

// DecrementInventory subtracts usage from stored stock. Each row is updated
// with one conditional statement, so concurrent consumers never drive the
// quantity below zero and no decrement is lost.
func DecrementInventory(tx *gorm.DB, companyID uuid.UUID, usage map[uuid.UUID]int) error {
	ids := make([]uuid.UUID, 0, len(usage))
	for id, qty := range usage {
		if qty > 0 {
			ids = append(ids, id)
		}
	}
	// fixed lock order across concurrent transactions
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	for _, id := range ids {
		n := usage[id]
		res := tx.Model(&models.InventoryItem{}).
			Where("company_id = ? AND id = ?", companyID, id).
			Update("quantity", gorm.Expr("CASE WHEN quantity >= ? THEN quantity - ? ELSE 0 END", n, n))
		if res.Error != nil {
			return fmt.Errorf("decrement %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: %s", ErrInventoryItemNotFound, id)
		}
	}
	return nil
}

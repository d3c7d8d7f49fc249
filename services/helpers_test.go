package services

import (
	"testing"
	"time"

	"fieldpro-backend/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	// one connection so every query sees the same in-memory database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type fixture struct {
	company  models.Company
	tech     models.User
	customer models.Customer
	job      models.WorkOrder
}

func seedJob(t *testing.T, db *gorm.DB) fixture {
	t.Helper()
	var f fixture
	f.company = models.Company{Name: "Acme Plumbing"}
	if err := db.Create(&f.company).Error; err != nil {
		t.Fatalf("create company: %v", err)
	}
	f.tech = models.User{
		CompanyID: f.company.ID,
		Name:      "Dana",
		Email:     uuid.NewString() + "@example.com",
		Phone:     "+15550100",
		Role:      models.RoleTechnician,
		IsActive:  true,
	}
	if err := db.Create(&f.tech).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	f.customer = models.Customer{
		CompanyID:       f.company.ID,
		CreatedByUserID: f.tech.ID,
		Name:            "Jordan Lee",
		IsActive:        true,
	}
	if err := db.Create(&f.customer).Error; err != nil {
		t.Fatalf("create customer: %v", err)
	}
	techID := f.tech.ID
	f.job = models.WorkOrder{
		CompanyID:        f.company.ID,
		CustomerID:       f.customer.ID,
		AssignedToUserID: &techID,
		Title:            "Replace water heater",
		Status:           models.StatusScheduled,
		Priority:         models.PriorityMedium,
	}
	if err := db.Omit("Customer", "Project", "TimeEntries", "Photos").Create(&f.job).Error; err != nil {
		t.Fatalf("create job: %v", err)
	}
	return f
}

func seedItem(t *testing.T, db *gorm.DB, companyID uuid.UUID, name, sku string, qty int, price float64) models.InventoryItem {
	t.Helper()
	item := models.InventoryItem{
		CompanyID: companyID,
		Name:      name,
		SKU:       sku,
		Quantity:  qty,
		UnitPrice: price,
	}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("create item %s: %v", sku, err)
	}
	return item
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

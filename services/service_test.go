package services

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"mediaops-backend/models"
)

var testNow = time.Date(2025, 7, 15, 12, 0, 0, 0, time.UTC)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Staff{},
		&models.Client{},
		&models.Partner{},
		&models.PricingRule{},
		&models.Invoice{},
		&models.InvoiceItem{},
		&models.OutsourceTask{},
		&models.Bill{},
		&models.AuditLogEntry{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedStaff(t *testing.T, db *gorm.DB, role models.Role) *models.Staff {
	t.Helper()
	staff := models.Staff{FirstName: "Aki", LastName: "Tanaka", Email: fmt.Sprintf("%s-%s@example.com", t.Name(), role), Role: role}
	staff.SetPassword("secret")
	if err := db.Create(&staff).Error; err != nil {
		t.Fatalf("seed staff: %v", err)
	}
	return &staff
}

func seedClient(t *testing.T, db *gorm.DB, leadID string, name string) *models.Client {
	t.Helper()
	client := models.Client{CompanyName: name, OperationsLeadID: leadID, Active: true}
	if err := db.Create(&client).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}
	return &client
}

func seedFixedRule(t *testing.T, db *gorm.DB, name string, price, cost int64) *models.PricingRule {
	t.Helper()
	rule := models.PricingRule{Name: name, Type: "FIXED", FixedPrice: price, FixedCost: cost, Active: true}
	if err := db.Create(&rule).Error; err != nil {
		t.Fatalf("seed rule: %v", err)
	}
	return &rule
}

func newInvoiceService(db *gorm.DB) *InvoiceService {
	return &InvoiceService{
		Audit:   &AuditSink{DB: db},
		TaxRate: 0.10,
		Env:     "test",
		Now:     func() time.Time { return testNow },
	}
}

func newBillingService(db *gorm.DB) *BillingService {
	return &BillingService{
		Audit: &AuditSink{DB: db},
		Now:   func() time.Time { return testNow },
	}
}

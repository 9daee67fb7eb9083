package services

import (
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"mediaops-backend/models"
)

func seedDeliveredInvoice(t *testing.T, db *gorm.DB, clientID uint, staffID string, number string, total, cost int64, delivered time.Time) *models.Invoice {
	t.Helper()
	d := delivered
	invoice := models.Invoice{
		InvoiceNumber:      number,
		ClientID:           clientID,
		AssigneeID:         staffID,
		CreatedByID:        staffID,
		Status:             models.StatusDelivered,
		IssueDate:          delivered.AddDate(0, 0, -14),
		ActualDeliveryDate: &d,
		Subtotal:           total,
		TotalAmount:        total,
		TotalCost:          cost,
		Items: []models.InvoiceItem{{
			Name: "work",
			Tasks: []models.OutsourceTask{{
				Status:       models.StatusDelivered,
				DeliveryDate: &d,
				DeliveryUrl:  "https://cdn.example.com/out.mp4",
			}},
		}},
	}
	if err := db.Create(&invoice).Error; err != nil {
		t.Fatalf("seed invoice: %v", err)
	}
	return &invoice
}

func TestConsolidateCreatesBill(t *testing.T) {
	db := testDB(t)
	svc := newBillingService(db)
	staff := seedStaff(t, db, models.RoleAccounting)
	client := seedClient(t, db, staff.Id, "Studio North")
	delivered := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
	invA := seedDeliveredInvoice(t, db, client.Id, staff.Id, "INV-101", 3300, 1000, delivered)
	invB := seedDeliveredInvoice(t, db, client.Id, staff.Id, "INV-102", 2200, 700, delivered)

	bill, err := svc.Consolidate(db, ConsolidateInput{
		ClientID:   client.Id,
		InvoiceIDs: []uint{invA.ID, invB.ID},
		Subject:    "June production",
	}, staff.Id)
	if err != nil {
		t.Fatalf("consolidate: %v", err)
	}
	if bill.TotalAmount != 5500 {
		t.Errorf("bill total = %d, want 5500", bill.TotalAmount)
	}
	if bill.TotalCost != 1700 {
		t.Errorf("bill cost = %d, want 1700", bill.TotalCost)
	}

	var reloaded models.Invoice
	db.Preload("Items.Tasks").First(&reloaded, invA.ID)
	if reloaded.Status != models.StatusBilled {
		t.Errorf("invoice status = %s, want BILLED", reloaded.Status)
	}
	if reloaded.BillID == nil || *reloaded.BillID != bill.ID {
		t.Errorf("invoice bill_id = %v, want %d", reloaded.BillID, bill.ID)
	}
	for _, item := range reloaded.Items {
		for _, task := range item.Tasks {
			if task.Status != models.StatusBilled {
				t.Errorf("task status = %s, want BILLED", task.Status)
			}
		}
	}

	var entry models.AuditLogEntry
	db.Where("action = ?", models.AuditConsolidate).First(&entry)
	if entry.ID == 0 {
		t.Error("consolidation must be audited")
	}
}

func TestConsolidateRejectsCrossClient(t *testing.T) {
	db := testDB(t)
	svc := newBillingService(db)
	staff := seedStaff(t, db, models.RoleAccounting)
	clientA := seedClient(t, db, staff.Id, "Studio North")
	clientB := seedClient(t, db, staff.Id, "Studio South")
	delivered := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
	invA := seedDeliveredInvoice(t, db, clientA.Id, staff.Id, "INV-103", 1000, 0, delivered)
	invB := seedDeliveredInvoice(t, db, clientB.Id, staff.Id, "INV-104", 1000, 0, delivered)

	_, err := svc.Consolidate(db, ConsolidateInput{
		ClientID:   clientA.Id,
		InvoiceIDs: []uint{invA.ID, invB.ID},
		Subject:    "June",
	}, staff.Id)
	var ie *IneligibleError
	if !errors.As(err, &ie) {
		t.Fatalf("got %v, want IneligibleError", err)
	}
	if ie.InvoiceID != invB.ID {
		t.Errorf("flagged invoice %d, want %d", ie.InvoiceID, invB.ID)
	}

	// nothing committed
	var bills int64
	db.Model(&models.Bill{}).Count(&bills)
	if bills != 0 {
		t.Errorf("bills = %d, want 0", bills)
	}
}

func TestConsolidateRejectsUndelivered(t *testing.T) {
	db := testDB(t)
	svc := newBillingService(db)
	staff := seedStaff(t, db, models.RoleAccounting)
	client := seedClient(t, db, staff.Id, "Studio North")

	invoice := models.Invoice{
		InvoiceNumber: "INV-105",
		ClientID:      client.Id,
		Status:        models.StatusInProgress,
		IssueDate:     testNow,
		TotalAmount:   1000,
		Items: []models.InvoiceItem{{
			Name:  "work",
			Tasks: []models.OutsourceTask{{Status: models.StatusInProgress}},
		}},
	}
	if err := db.Create(&invoice).Error; err != nil {
		t.Fatal(err)
	}

	_, err := svc.Consolidate(db, ConsolidateInput{
		ClientID:   client.Id,
		InvoiceIDs: []uint{invoice.ID},
		Subject:    "June",
	}, staff.Id)
	var ie *IneligibleError
	if !errors.As(err, &ie) {
		t.Fatalf("got %v, want IneligibleError", err)
	}
}

func TestConsolidateRejectsAlreadyBilled(t *testing.T) {
	db := testDB(t)
	svc := newBillingService(db)
	staff := seedStaff(t, db, models.RoleAccounting)
	client := seedClient(t, db, staff.Id, "Studio North")
	delivered := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
	invoice := seedDeliveredInvoice(t, db, client.Id, staff.Id, "INV-106", 1000, 0, delivered)

	if _, err := svc.Consolidate(db, ConsolidateInput{
		ClientID: client.Id, InvoiceIDs: []uint{invoice.ID}, Subject: "first",
	}, staff.Id); err != nil {
		t.Fatalf("first consolidation: %v", err)
	}

	_, err := svc.Consolidate(db, ConsolidateInput{
		ClientID: client.Id, InvoiceIDs: []uint{invoice.ID}, Subject: "second",
	}, staff.Id)
	var ie *IneligibleError
	if !errors.As(err, &ie) {
		t.Fatalf("got %v, want IneligibleError for double billing", err)
	}
}

func TestConsolidateAtomicity(t *testing.T) {
	db := testDB(t)
	svc := newBillingService(db)
	staff := seedStaff(t, db, models.RoleAccounting)
	client := seedClient(t, db, staff.Id, "Studio North")
	delivered := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
	invoice := seedDeliveredInvoice(t, db, client.Id, staff.Id, "INV-107", 1000, 0, delivered)

	// fail between bill creation and the source cascade
	svc.afterBillCreate = func(tx *gorm.DB) error {
		return errors.New("storage exploded")
	}

	if _, err := svc.Consolidate(db, ConsolidateInput{
		ClientID: client.Id, InvoiceIDs: []uint{invoice.ID}, Subject: "June",
	}, staff.Id); err == nil {
		t.Fatal("expected failure")
	}

	// neither the bill nor the status change is visible
	var bills int64
	db.Model(&models.Bill{}).Count(&bills)
	if bills != 0 {
		t.Errorf("bills = %d, want 0 after rollback", bills)
	}
	var reloaded models.Invoice
	db.First(&reloaded, invoice.ID)
	if reloaded.Status != models.StatusDelivered || reloaded.BillID != nil {
		t.Errorf("invoice must be untouched, got status=%s bill_id=%v", reloaded.Status, reloaded.BillID)
	}

	// retry without the fault succeeds
	svc.afterBillCreate = nil
	if _, err := svc.Consolidate(db, ConsolidateInput{
		ClientID: client.Id, InvoiceIDs: []uint{invoice.ID}, Subject: "June",
	}, staff.Id); err != nil {
		t.Fatalf("retry: %v", err)
	}
}

func TestCandidatesAndAutoSelectMonth(t *testing.T) {
	db := testDB(t)
	svc := newBillingService(db)
	staff := seedStaff(t, db, models.RoleAccounting)
	client := seedClient(t, db, staff.Id, "Studio North")

	june := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
	may := time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC)
	inJune := seedDeliveredInvoice(t, db, client.Id, staff.Id, "INV-108", 1000, 0, june)
	inMay := seedDeliveredInvoice(t, db, client.Id, staff.Id, "INV-109", 1000, 0, may)

	// delivery recorded only at the task level, still June
	taskOnly := models.Invoice{
		InvoiceNumber: "INV-110",
		ClientID:      client.Id,
		Status:        models.StatusInProgress,
		IssueDate:     may,
		TotalAmount:   500,
		Items: []models.InvoiceItem{{
			Name: "work",
			Tasks: []models.OutsourceTask{{
				Status:       models.StatusDelivered,
				DeliveryDate: &june,
			}},
		}},
	}
	if err := db.Create(&taskOnly).Error; err != nil {
		t.Fatal(err)
	}

	candidates, err := svc.Candidates(db, client.Id)
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}
	if len(candidates) != 3 {
		t.Fatalf("candidates = %d, want 3", len(candidates))
	}

	selected, err := svc.AutoSelectMonth(db, client.Id, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("auto select: %v", err)
	}
	ids := map[uint]bool{}
	for _, inv := range selected {
		ids[inv.ID] = true
	}
	if len(selected) != 2 || !ids[inJune.ID] || !ids[taskOnly.ID] {
		t.Errorf("selected %v, want invoice-level June delivery and task-level June delivery", ids)
	}
	if ids[inMay.ID] {
		t.Error("May delivery must not be selected for June")
	}
}

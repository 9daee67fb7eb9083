package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"mediaops-backend/models"
)

// BillingService consolidates delivered invoices of one client into
// bills. Consolidation is atomic: bill creation and the billed-state
// cascade over every source invoice commit together or not at all.
type BillingService struct {
	Audit *AuditSink
	Now   func() time.Time

	// fault-injection point between bill creation and the source
	// cascade; only tests set this.
	afterBillCreate func(tx *gorm.DB) error
}

func (s *BillingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

type ConsolidateInput struct {
	ClientID   uint       `json:"client_id"`
	InvoiceIDs []uint     `json:"invoice_ids"`
	Subject    string     `json:"subject"`
	IssueDate  time.Time  `json:"issue_date"`
	DueDate    *time.Time `json:"due_date"`
	Notes      string     `json:"notes"`
}

// deliverable: delivery recorded at the invoice level, or on at
// least one task.
func deliverable(inv *models.Invoice) bool {
	if inv.ActualDeliveryDate != nil {
		return true
	}
	for _, item := range inv.Items {
		for _, task := range item.Tasks {
			if task.Status.DeliveredEquivalent() {
				return true
			}
		}
	}
	return false
}

func billable(inv *models.Invoice) error {
	if inv.BillID != nil || inv.Status == models.StatusBilled || inv.Status == models.StatusPaid {
		return &IneligibleError{InvoiceID: inv.ID, Reason: "already billed"}
	}
	if inv.Status == models.StatusLost {
		return &IneligibleError{InvoiceID: inv.ID, Reason: "lost"}
	}
	if !deliverable(inv) {
		return &IneligibleError{InvoiceID: inv.ID, Reason: "not delivered"}
	}
	return nil
}

// Consolidate builds one Bill from the given invoices. Every invoice
// must belong to the declared client and be delivered-but-unbilled;
// any violation rejects the whole operation before a bill exists.
func (s *BillingService) Consolidate(db *gorm.DB, in ConsolidateInput, actorID string) (*models.Bill, error) {
	fields := map[string]string{}
	if in.ClientID == 0 {
		fields["client_id"] = "required"
	}
	if len(in.InvoiceIDs) == 0 {
		fields["invoice_ids"] = "required"
	}
	if strings.TrimSpace(in.Subject) == "" {
		fields["subject"] = "required"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	if err := db.First(&models.Client{}, in.ClientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("client %d: %w", in.ClientID, ErrNotFound)
		}
		return nil, err
	}

	var invoices []models.Invoice
	if err := db.Preload("Items.Tasks").Where("id IN ?", in.InvoiceIDs).Find(&invoices).Error; err != nil {
		return nil, err
	}
	found := map[uint]*models.Invoice{}
	for i := range invoices {
		found[invoices[i].ID] = &invoices[i]
	}
	var totalAmount, totalCost int64
	for _, id := range in.InvoiceIDs {
		inv := found[id]
		if inv == nil {
			return nil, fmt.Errorf("invoice %d: %w", id, ErrNotFound)
		}
		if inv.ClientID != in.ClientID {
			return nil, &IneligibleError{InvoiceID: id, Reason: "belongs to a different client"}
		}
		if err := billable(inv); err != nil {
			return nil, err
		}
		totalAmount += inv.TotalAmount
		totalCost += inv.TotalCost
	}

	issue := in.IssueDate
	if issue.IsZero() {
		issue = s.now()
	}
	bill := models.Bill{
		ClientID:    in.ClientID,
		Subject:     strings.TrimSpace(in.Subject),
		IssueDate:   issue,
		DueDate:     in.DueDate,
		Notes:       in.Notes,
		TotalAmount: totalAmount,
		TotalCost:   totalCost,
		CreatedByID: actorID,
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&bill).Error; err != nil {
			return err
		}
		if s.afterBillCreate != nil {
			if err := s.afterBillCreate(tx); err != nil {
				return err
			}
		}
		if err := tx.Model(&models.Invoice{}).Where("id IN ?", in.InvoiceIDs).
			Updates(map[string]any{"status": models.StatusBilled, "bill_id": bill.ID}).Error; err != nil {
			return err
		}
		itemIDs := tx.Model(&models.InvoiceItem{}).Select("id").Where("invoice_id IN ?", in.InvoiceIDs)
		if err := tx.Model(&models.OutsourceTask{}).Where("invoice_item_id IN (?)", itemIDs).
			Update("status", models.StatusBilled).Error; err != nil {
			return err
		}
		return tx.Model(&models.InvoiceItem{}).Where("invoice_id IN ?", in.InvoiceIDs).
			Update("production_status", models.StatusBilled).Error
	})
	if err != nil {
		return nil, fmt.Errorf("consolidate: %w", err)
	}

	s.Audit.Append(models.AuditConsolidate, "bill", strconv.FormatUint(uint64(bill.ID), 10), actorID, map[string]any{
		"client_id":    in.ClientID,
		"invoice_ids":  in.InvoiceIDs,
		"total_amount": totalAmount,
	})
	return &bill, nil
}

// Candidates lists the client's delivered-but-unbilled invoices.
func (s *BillingService) Candidates(db *gorm.DB, clientID uint) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := db.Preload("Items.Tasks").
		Where("client_id = ? AND bill_id IS NULL AND status NOT IN ?", clientID,
			[]models.Status{models.StatusBilled, models.StatusPaid, models.StatusLost}).
		Order("issue_date").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	out := invoices[:0]
	for i := range invoices {
		if deliverable(&invoices[i]) {
			out = append(out, invoices[i])
		}
	}
	return out, nil
}

// AutoSelectMonth picks the candidates delivered in the reference
// month, checking the invoice-level delivery date and, failing that,
// each task's delivery date. Delivery is recorded at either
// granularity, so both are consulted.
func (s *BillingService) AutoSelectMonth(db *gorm.DB, clientID uint, ref time.Time) ([]models.Invoice, error) {
	candidates, err := s.Candidates(db, clientID)
	if err != nil {
		return nil, err
	}
	start := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	end := start.AddDate(0, 1, 0)
	inMonth := func(t *time.Time) bool {
		return t != nil && !t.Before(start) && t.Before(end)
	}
	taskInMonth := func(inv *models.Invoice) bool {
		for _, item := range inv.Items {
			for _, task := range item.Tasks {
				if task.Status.DeliveredEquivalent() && inMonth(task.DeliveryDate) {
					return true
				}
			}
		}
		return false
	}
	var out []models.Invoice
	for i := range candidates {
		if inMonth(candidates[i].ActualDeliveryDate) || taskInMonth(&candidates[i]) {
			out = append(out, candidates[i])
		}
	}
	return out, nil
}

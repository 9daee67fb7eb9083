package services

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"mediaops-backend/models"
	"mediaops-backend/pricing"
	"mediaops-backend/utils"
)

// DefaultTaxRate applies when TAX_RATE is not configured.
const DefaultTaxRate = 0.10

// discrepancyTolerance absorbs rounding drift between a stored
// amount and its recomputation before flagging a manual override.
const discrepancyTolerance = 1

// InvoiceService owns invoice validation, tariff recomputation, the
// discrepancy check and the transactional save flow. The zero value
// is usable; TaxRate/Env fall back to the environment and Now to
// time.Now.
type InvoiceService struct {
	Audit   *AuditSink
	TaxRate float64 // <= 0 reads TAX_RATE
	Env     string  // "" reads APP_ENV; ownership enforced only in production
	Now     func() time.Time
}

func (s *InvoiceService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *InvoiceService) taxRate() float64 {
	if s.TaxRate > 0 {
		return s.TaxRate
	}
	if v := os.Getenv("TAX_RATE"); v != "" {
		if r, err := strconv.ParseFloat(v, 64); err == nil && r >= 0 {
			return r
		}
	}
	return DefaultTaxRate
}

// Ownership is enforced only in production so test and staging
// environments can edit freely.
func (s *InvoiceService) enforceOwnership() bool {
	env := s.Env
	if env == "" {
		env = os.Getenv("APP_ENV")
	}
	return env == "production"
}

// TaskInput is one outsourced task as submitted by the caller.
// AmountOverridden marks the amounts as manually edited; they are
// then preserved and checked for discrepancies instead of being
// overwritten by the tariff resolver.
type TaskInput struct {
	PricingRuleID          *string       `json:"pricing_rule_id"`
	PartnerID              *uint         `json:"partner_id"`
	Duration               string        `json:"duration"`
	PerformanceTargetValue int64         `json:"performance_target_value"`
	RevenueAmount          int64         `json:"revenue_amount"`
	CostAmount             int64         `json:"cost_amount"`
	AmountOverridden       bool          `json:"amount_overridden"`
	Status                 models.Status `json:"status"`
	DeliveryDate           *time.Time    `json:"delivery_date"`
	DeliveryUrl            string        `json:"delivery_url"`
	DeliveryNote           string        `json:"delivery_note"`
}

type ItemInput struct {
	Name     string      `json:"name"`
	Quantity int         `json:"quantity"`
	Tasks    []TaskInput `json:"tasks"`
}

type SaveInvoiceInput struct {
	ID                   uint          `json:"id"`
	InvoiceNumber        string        `json:"invoice_number"`
	ClientID             uint          `json:"client_id"`
	AssigneeID           string        `json:"assignee_id"`
	Status               models.Status `json:"status"`
	IssueDate            time.Time     `json:"issue_date"`
	DueDate              *time.Time    `json:"due_date"`
	ActualDeliveryDate   *time.Time    `json:"actual_delivery_date"`
	Items                []ItemInput   `json:"items"`
	ConfirmDiscrepancies bool          `json:"confirm_discrepancies"`
}

// Totals are the derived financial fields of an invoice.
type Totals struct {
	Subtotal     int64
	Tax          int64
	TotalAmount  int64
	TotalCost    int64
	Profit       int64
	ProfitMargin float64
}

// ComputeTotals derives invoice totals from its items' tasks.
// Tax is floored; the margin is 0 (never NaN) on a zero total.
func ComputeTotals(items []models.InvoiceItem, taxRate float64) Totals {
	var t Totals
	for _, item := range items {
		for _, task := range item.Tasks {
			t.Subtotal += task.RevenueAmount
			t.TotalCost += task.CostAmount
		}
	}
	t.Tax = int64(math.Floor(float64(t.Subtotal) * taxRate))
	t.TotalAmount = t.Subtotal + t.Tax
	t.Profit = t.TotalAmount - t.TotalCost
	t.ProfitMargin = marginPct(t.Profit, t.TotalAmount)
	return t
}

func marginPct(profit, total int64) float64 {
	if total == 0 {
		return 0
	}
	return utils.Round2(float64(profit) / float64(total) * 100)
}

var statusRank = map[models.Status]int{
	models.StatusPreOrder:   0,
	models.StatusInProgress: 1,
	models.StatusCorrection: 2,
	models.StatusReview:     3,
	models.StatusDelivered:  4,
	models.StatusBilled:     5,
	models.StatusPaid:       6,
}

// rollupStatus is the least advanced task status of an item. Lost
// tasks are ignored unless every task is lost.
func rollupStatus(tasks []models.OutsourceTask) models.Status {
	lowest := models.Status("")
	allLost := len(tasks) > 0
	for _, task := range tasks {
		if task.Status == models.StatusLost {
			continue
		}
		allLost = false
		if lowest == "" || statusRank[task.Status] < statusRank[lowest] {
			lowest = task.Status
		}
	}
	if allLost {
		return models.StatusLost
	}
	if lowest == "" {
		return models.StatusPreOrder
	}
	return lowest
}

func (s *InvoiceService) validate(db *gorm.DB, in *SaveInvoiceInput) error {
	fields := map[string]string{}
	if in.Status == "" {
		in.Status = models.StatusPreOrder
	}
	if !in.Status.Valid() {
		fields["status"] = "unknown status"
	}
	if in.ClientID == 0 {
		fields["client_id"] = "required"
	} else if err := db.First(&models.Client{}, in.ClientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fields["client_id"] = "unknown client"
		} else {
			return err
		}
	}
	if in.AssigneeID == "" {
		fields["assignee_id"] = "required"
	} else if err := db.First(&models.Staff{}, "id = ?", in.AssigneeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fields["assignee_id"] = "unknown staff member"
		} else {
			return err
		}
	}

	// Draft invoices may still be negotiating prices; everything else
	// needs a tariff on every task.
	draft := in.Status == models.StatusPreOrder
	for i, item := range in.Items {
		if strings.TrimSpace(item.Name) == "" {
			fields[fmt.Sprintf("items[%d].name", i)] = "required"
		}
		for j, task := range item.Tasks {
			if task.Status != "" && !task.Status.Valid() {
				fields[fmt.Sprintf("items[%d].tasks[%d].status", i, j)] = "unknown status"
			}
			if !draft && (task.PricingRuleID == nil || *task.PricingRuleID == "") {
				fields[fmt.Sprintf("items[%d].tasks[%d].pricing_rule_id", i, j)] = "pricing rule required unless the invoice is a draft"
			}
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func (s *InvoiceService) loadRules(db *gorm.DB, in *SaveInvoiceInput) (map[string]*models.PricingRule, error) {
	ids := make([]string, 0)
	seen := map[string]bool{}
	for _, item := range in.Items {
		for _, task := range item.Tasks {
			if task.PricingRuleID != nil && *task.PricingRuleID != "" && !seen[*task.PricingRuleID] {
				seen[*task.PricingRuleID] = true
				ids = append(ids, *task.PricingRuleID)
			}
		}
	}
	rules := map[string]*models.PricingRule{}
	if len(ids) == 0 {
		return rules, nil
	}
	var found []models.PricingRule
	if err := db.Preload("Clients").Preload("Partners").Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}
	for i := range found {
		rules[found[i].Id] = &found[i]
	}
	fields := map[string]string{}
	for i, item := range in.Items {
		for j, task := range item.Tasks {
			if task.PricingRuleID != nil && *task.PricingRuleID != "" && rules[*task.PricingRuleID] == nil {
				fields[fmt.Sprintf("items[%d].tasks[%d].pricing_rule_id", i, j)] = "unknown pricing rule"
			}
		}
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	return rules, nil
}

func (s *InvoiceService) loadPartners(db *gorm.DB, in *SaveInvoiceInput) (map[uint]*models.Partner, error) {
	ids := make([]uint, 0)
	seen := map[uint]bool{}
	for _, item := range in.Items {
		for _, task := range item.Tasks {
			if task.PartnerID != nil && *task.PartnerID != 0 && !seen[*task.PartnerID] {
				seen[*task.PartnerID] = true
				ids = append(ids, *task.PartnerID)
			}
		}
	}
	partners := map[uint]*models.Partner{}
	if len(ids) == 0 {
		return partners, nil
	}
	var found []models.Partner
	if err := db.Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}
	for i := range found {
		partners[found[i].Id] = &found[i]
	}
	return partners, nil
}

func partnerOf(partners map[uint]*models.Partner, id *uint) *models.Partner {
	if id == nil {
		return nil
	}
	return partners[*id]
}

// checkRuleScope verifies the rule may price this task: a scoped
// rule must be linked to the invoice's client and to the assigned
// partner, and a target role must match the partner's trade.
func checkRuleScope(rule *models.PricingRule, clientID uint, partner *models.Partner) string {
	if !rule.Generic() {
		if len(rule.Clients) > 0 && !ruleHasClient(rule, clientID) {
			return "pricing rule is not available for this client"
		}
		if len(rule.Partners) > 0 {
			if partner == nil || !ruleHasPartner(rule, partner.Id) {
				return "pricing rule is not available for this partner"
			}
		}
	}
	if rule.TargetRole != "" && partner != nil && !strings.EqualFold(partner.Role, rule.TargetRole) {
		return fmt.Sprintf("pricing rule targets the %s role", rule.TargetRole)
	}
	return ""
}

func ruleHasClient(rule *models.PricingRule, id uint) bool {
	for _, c := range rule.Clients {
		if c.Id == id {
			return true
		}
	}
	return false
}

func ruleHasPartner(rule *models.PricingRule, id uint) bool {
	for _, p := range rule.Partners {
		if p.Id == id {
			return true
		}
	}
	return false
}

// Save validates, reprices and persists an invoice with its full
// item/task graph as one transaction, then appends an audit entry.
//
// Amounts of non-overridden tasks are overwritten with their tariff
// recomputation. Overridden amounts are preserved but compared
// against the recomputation; any divergence beyond the rounding
// tolerance is returned as a DiscrepancyError until the caller
// confirms it.
func (s *InvoiceService) Save(db *gorm.DB, in SaveInvoiceInput, actorID string) (*models.Invoice, error) {
	if err := s.validate(db, &in); err != nil {
		return nil, err
	}
	rules, err := s.loadRules(db, &in)
	if err != nil {
		return nil, err
	}
	partners, err := s.loadPartners(db, &in)
	if err != nil {
		return nil, err
	}

	// Prior state decides the audit action and the ownership check.
	var prev models.Invoice
	creating := in.ID == 0
	if !creating {
		if err := db.First(&prev, in.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("invoice %d: %w", in.ID, ErrNotFound)
			}
			return nil, err
		}
		if s.enforceOwnership() && prev.CreatedByID != actorID {
			return nil, fmt.Errorf("invoice %d may only be edited by its creator: %w", in.ID, ErrForbidden)
		}
	}

	var discrepancies []Discrepancy
	fields := map[string]string{}
	items := make([]models.InvoiceItem, 0, len(in.Items))
	for i, itemIn := range in.Items {
		tasks := make([]models.OutsourceTask, 0, len(itemIn.Tasks))
		for j, taskIn := range itemIn.Tasks {
			dur := pricing.ParseDuration(taskIn.Duration)
			task := models.OutsourceTask{
				PricingRuleID:          taskIn.PricingRuleID,
				PartnerID:              taskIn.PartnerID,
				Duration:               taskIn.Duration,
				PerformanceTargetValue: taskIn.PerformanceTargetValue,
				RevenueAmount:          taskIn.RevenueAmount,
				CostAmount:             taskIn.CostAmount,
				AmountOverridden:       taskIn.AmountOverridden,
				Status:                 taskIn.Status,
				DeliveryDate:           taskIn.DeliveryDate,
				DeliveryUrl:            taskIn.DeliveryUrl,
				DeliveryNote:           taskIn.DeliveryNote,
			}
			if task.Status == "" {
				task.Status = models.StatusPreOrder
			}
			// Durations are stored in the canonical "MM:SS" shape no
			// matter how they were typed.
			if taskIn.Duration != "" {
				task.Duration = pricing.FormatDuration(dur)
			}

			var rule *models.PricingRule
			if taskIn.PricingRuleID != nil {
				rule = rules[*taskIn.PricingRuleID]
			}

			// DELIVERED requires the full delivery guard even on save;
			// BILLED and PAID are owned by billing and must not arrive
			// in a payload.
			switch task.Status {
			case models.StatusBilled, models.StatusPaid:
				fields[fmt.Sprintf("items[%d].tasks[%d].status", i, j)] = "status is set by billing and cannot be submitted"
			case models.StatusDelivered:
				probe := task
				probe.Status = models.StatusInProgress
				var ruleType pricing.TariffType
				if rule != nil {
					ruleType = rule.Type
				}
				if err := probe.DeliveryGuard(ruleType); err != nil {
					fields[fmt.Sprintf("items[%d].tasks[%d].status", i, j)] = err.Error()
				}
			}
			if rule != nil {
				if msg := checkRuleScope(rule, in.ClientID, partnerOf(partners, taskIn.PartnerID)); msg != "" {
					fields[fmt.Sprintf("items[%d].tasks[%d].pricing_rule_id", i, j)] = msg
				}

				revenue := pricing.Resolve(rule.RevenueTerms(), dur, taskIn.PerformanceTargetValue)
				cost := pricing.Resolve(rule.CostTerms(), dur, taskIn.PerformanceTargetValue)
				if task.AmountOverridden {
					if diff(task.RevenueAmount, revenue) > discrepancyTolerance {
						discrepancies = append(discrepancies, Discrepancy{
							ItemIndex: i, TaskIndex: j, Side: "revenue",
							Stored: task.RevenueAmount, Computed: revenue,
						})
					}
					if diff(task.CostAmount, cost) > discrepancyTolerance {
						discrepancies = append(discrepancies, Discrepancy{
							ItemIndex: i, TaskIndex: j, Side: "cost",
							Stored: task.CostAmount, Computed: cost,
						})
					}
				} else {
					task.RevenueAmount = revenue
					task.CostAmount = cost
				}
			}
			tasks = append(tasks, task)
		}

		var itemAmount int64
		for _, task := range tasks {
			itemAmount += task.RevenueAmount
		}
		quantity := itemIn.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		items = append(items, models.InvoiceItem{
			Name:             strings.TrimSpace(itemIn.Name),
			Quantity:         quantity,
			UnitPrice:        itemAmount,
			Amount:           itemAmount,
			ProductionStatus: rollupStatus(tasks),
			Tasks:            tasks,
		})
	}

	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	if len(discrepancies) > 0 && !in.ConfirmDiscrepancies {
		return nil, &DiscrepancyError{Discrepancies: discrepancies}
	}

	totals := ComputeTotals(items, s.taxRate())
	issue := in.IssueDate
	if issue.IsZero() {
		issue = s.now()
	}
	invoice := models.Invoice{
		ID:                 in.ID,
		InvoiceNumber:      in.InvoiceNumber,
		ClientID:           in.ClientID,
		AssigneeID:         in.AssigneeID,
		CreatedByID:        actorID,
		Status:             in.Status,
		IssueDate:          issue,
		DueDate:            in.DueDate,
		ActualDeliveryDate: in.ActualDeliveryDate,
		Items:              items,
		Subtotal:           totals.Subtotal,
		Tax:                totals.Tax,
		TotalAmount:        totals.TotalAmount,
		TotalCost:          totals.TotalCost,
		Profit:             totals.Profit,
		ProfitMargin:       totals.ProfitMargin,
	}
	action := models.AuditCreate
	if !creating {
		invoice.CreatedByID = prev.CreatedByID
		invoice.BillID = prev.BillID
		invoice.CreatedAt = prev.CreatedAt
		action = models.AuditUpdate
		if prev.Status != invoice.Status {
			action = models.AuditStatusChange
		}
	}

	// Header, full item/task replacement and nothing else: one unit.
	err = db.Transaction(func(tx *gorm.DB) error {
		if !creating {
			itemIDs := tx.Model(&models.InvoiceItem{}).Select("id").Where("invoice_id = ?", invoice.ID)
			if err := tx.Where("invoice_item_id IN (?)", itemIDs).Delete(&models.OutsourceTask{}).Error; err != nil {
				return err
			}
			if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
				return err
			}
			return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(&invoice).Error
		}
		return tx.Create(&invoice).Error
	})
	if err != nil {
		return nil, fmt.Errorf("save invoice: %w", err)
	}

	s.Audit.Append(action, "invoice", strconv.FormatUint(uint64(invoice.ID), 10), actorID, map[string]any{
		"status":       invoice.Status,
		"total_amount": invoice.TotalAmount,
	})
	return &invoice, nil
}

// refreshAggregates recomputes the item amounts, the item status
// rollups and the invoice totals after a task-level edit, inside the
// caller's transaction so readers never see a half-updated invoice.
func (s *InvoiceService) refreshAggregates(tx *gorm.DB, invoiceItemID uint) error {
	var item models.InvoiceItem
	if err := tx.First(&item, invoiceItemID).Error; err != nil {
		return err
	}
	var invoice models.Invoice
	if err := tx.Preload("Items.Tasks").First(&invoice, item.InvoiceID).Error; err != nil {
		return err
	}
	for i := range invoice.Items {
		var amount int64
		for _, task := range invoice.Items[i].Tasks {
			amount += task.RevenueAmount
		}
		invoice.Items[i].Amount = amount
		invoice.Items[i].UnitPrice = amount
		invoice.Items[i].ProductionStatus = rollupStatus(invoice.Items[i].Tasks)
		if err := tx.Model(&models.InvoiceItem{}).Where("id = ?", invoice.Items[i].ID).
			Updates(map[string]any{
				"amount":            amount,
				"unit_price":        amount,
				"production_status": invoice.Items[i].ProductionStatus,
			}).Error; err != nil {
			return err
		}
	}
	totals := ComputeTotals(invoice.Items, s.taxRate())
	return tx.Model(&models.Invoice{}).Where("id = ?", invoice.ID).Updates(map[string]any{
		"subtotal":      totals.Subtotal,
		"tax":           totals.Tax,
		"total_amount":  totals.TotalAmount,
		"total_cost":    totals.TotalCost,
		"profit":        totals.Profit,
		"profit_margin": totals.ProfitMargin,
	}).Error
}

func diff(a, b int64) int64 {
	if a > b {
		return a - b
	}
	return b - a
}

// DeliverInput carries the guarded delivery transition's payload.
type DeliverInput struct {
	DeliveryUrl            string     `json:"delivery_url"`
	DeliveryDate           *time.Time `json:"delivery_date"`
	DeliveryNote           string     `json:"delivery_note"`
	Duration               string     `json:"duration"`
	PerformanceTargetValue int64      `json:"performance_target_value"`
}

// DeliverTask performs the guarded transition to DELIVERED. The task
// must carry a delivery url and date, plus whatever completeness its
// tariff type demands; otherwise the transition is rejected.
func (s *InvoiceService) DeliverTask(db *gorm.DB, taskID uint, in DeliverInput, actorID string) (*models.OutsourceTask, error) {
	var task models.OutsourceTask
	if err := db.Preload("PricingRule").First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("task %d: %w", taskID, ErrNotFound)
		}
		return nil, err
	}
	if in.DeliveryUrl != "" {
		task.DeliveryUrl = in.DeliveryUrl
	}
	if in.DeliveryDate != nil {
		task.DeliveryDate = in.DeliveryDate
	}
	if in.DeliveryNote != "" {
		task.DeliveryNote = in.DeliveryNote
	}
	if in.Duration != "" {
		task.Duration = pricing.FormatDuration(pricing.ParseDuration(in.Duration))
	}
	if in.PerformanceTargetValue > 0 {
		task.PerformanceTargetValue = in.PerformanceTargetValue
	}

	var ruleType pricing.TariffType
	if task.PricingRule != nil {
		ruleType = task.PricingRule.Type
	}
	if err := task.DeliveryGuard(ruleType); err != nil {
		return nil, &ValidationError{Fields: map[string]string{"delivery": err.Error()}}
	}

	// Inputs may have changed with the delivery; keep cached amounts
	// in sync unless they were manually overridden.
	if task.PricingRule != nil && !task.AmountOverridden {
		dur := task.DurationMinutes()
		task.RevenueAmount = pricing.Resolve(task.PricingRule.RevenueTerms(), dur, task.PerformanceTargetValue)
		task.CostAmount = pricing.Resolve(task.PricingRule.CostTerms(), dur, task.PerformanceTargetValue)
	}
	from := task.Status
	task.Status = models.StatusDelivered
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("PricingRule", "Partner").Save(&task).Error; err != nil {
			return err
		}
		return s.refreshAggregates(tx, task.InvoiceItemID)
	})
	if err != nil {
		return nil, fmt.Errorf("deliver task: %w", err)
	}
	s.Audit.Append(models.AuditStatusChange, "task", strconv.FormatUint(uint64(task.ID), 10), actorID, map[string]any{
		"from": from, "to": task.Status,
	})
	return &task, nil
}

// TransitionTask moves a task between the freely selectable states.
// DELIVERED and BILLED are never reachable this way.
func (s *InvoiceService) TransitionTask(db *gorm.DB, taskID uint, to models.Status, actorID string) (*models.OutsourceTask, error) {
	if !to.Valid() {
		return nil, &ValidationError{Fields: map[string]string{"status": "unknown status"}}
	}
	var task models.OutsourceTask
	if err := db.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("task %d: %w", taskID, ErrNotFound)
		}
		return nil, err
	}
	from := task.Status
	if !models.CanSelect(from, to) {
		return nil, fmt.Errorf("%s to %s: %w", from, to, ErrInvalidTransition)
	}
	task.Status = to
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&task).Error; err != nil {
			return err
		}
		return s.refreshAggregates(tx, task.InvoiceItemID)
	})
	if err != nil {
		return nil, fmt.Errorf("transition task: %w", err)
	}
	s.Audit.Append(models.AuditStatusChange, "task", strconv.FormatUint(uint64(task.ID), 10), actorID, map[string]any{
		"from": from, "to": to,
	})
	return &task, nil
}

// ForceCloseInvoice sets the invoice and every child task/item to a
// billing/paid-equivalent status, bypassing per-task delivery guards.
// It is the explicit escape hatch for closing out a job and is always
// audited.
func (s *InvoiceService) ForceCloseInvoice(db *gorm.DB, invoiceID uint, to models.Status, actorID string) (*models.Invoice, error) {
	if to != models.StatusBilled && to != models.StatusPaid {
		return nil, &ValidationError{Fields: map[string]string{"status": "force close targets BILLED or PAID"}}
	}
	var invoice models.Invoice
	if err := db.First(&invoice, invoiceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("invoice %d: %w", invoiceID, ErrNotFound)
		}
		return nil, err
	}
	if s.enforceOwnership() && invoice.CreatedByID != actorID {
		return nil, fmt.Errorf("invoice %d may only be closed by its creator: %w", invoiceID, ErrForbidden)
	}
	from := invoice.Status
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&invoice).Update("status", to).Error; err != nil {
			return err
		}
		itemIDs := tx.Model(&models.InvoiceItem{}).Select("id").Where("invoice_id = ?", invoiceID)
		if err := tx.Model(&models.OutsourceTask{}).Where("invoice_item_id IN (?)", itemIDs).
			Update("status", to).Error; err != nil {
			return err
		}
		return tx.Model(&models.InvoiceItem{}).Where("invoice_id = ?", invoiceID).
			Update("production_status", to).Error
	})
	if err != nil {
		return nil, fmt.Errorf("force close invoice: %w", err)
	}
	invoice.Status = to
	s.Audit.Append(models.AuditForceClose, "invoice", strconv.FormatUint(uint64(invoiceID), 10), actorID, map[string]any{
		"from": from, "to": to,
	})
	return &invoice, nil
}

package models

import (
	"errors"
	"time"

	"mediaops-backend/pricing"
)

// Invoice is one commissioned job for a client. Money fields are
// whole currency units; totals are derived from the tasks and
// rewritten on every save.
type Invoice struct {
	ID            uint   `json:"id" gorm:"primaryKey"`
	InvoiceNumber string `json:"invoice_number" gorm:"unique"`
	ClientID      uint   `json:"client_id" gorm:"index;not null"`
	Client        Client `json:"client" gorm:"foreignKey:ClientID;references:Id"`

	// AssigneeID is the operations lead responsible for the job.
	AssigneeID  string `json:"assignee_id" gorm:"index"`
	CreatedByID string `json:"created_by_id" gorm:"index"`

	Status             Status     `json:"status" gorm:"type:VARCHAR(20);index"`
	IssueDate          time.Time  `json:"issue_date" gorm:"index"`
	DueDate            *time.Time `json:"due_date"`
	ActualDeliveryDate *time.Time `json:"actual_delivery_date"`

	Items []InvoiceItem `json:"items" gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`

	Subtotal     int64   `json:"subtotal"`
	Tax          int64   `json:"tax"`
	TotalAmount  int64   `json:"total_amount"`
	TotalCost    int64   `json:"total_cost"`
	Profit       int64   `json:"profit"`
	ProfitMargin float64 `json:"profit_margin"`

	// Set when the invoice is consolidated into a bill.
	BillID *uint `json:"bill_id" gorm:"index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InvoiceItem is one deliverable line (e.g. one video) inside an
// invoice. Amount and UnitPrice mirror the revenue of its tasks and
// are never stored independently of them.
type InvoiceItem struct {
	ID               uint            `json:"id" gorm:"primaryKey"`
	InvoiceID        uint            `json:"-" gorm:"index"`
	Name             string          `json:"name" gorm:"not null"`
	Quantity         int             `json:"quantity"`
	UnitPrice        int64           `json:"unit_price"`
	Amount           int64           `json:"amount"`
	ProductionStatus Status          `json:"production_status" gorm:"type:VARCHAR(20)"`
	Tasks            []OutsourceTask `json:"tasks" gorm:"foreignKey:InvoiceItemID;constraint:OnDelete:CASCADE"`
}

// OutsourceTask is the assignable unit of work: one partner, one
// pricing rule. RevenueAmount/CostAmount are cached tariff results,
// re-derived when the rule or its inputs change unless the operator
// overrode them by hand (AmountOverridden).
type OutsourceTask struct {
	ID            uint `json:"id" gorm:"primaryKey"`
	InvoiceItemID uint `json:"-" gorm:"index"`

	PricingRuleID *string      `json:"pricing_rule_id" gorm:"index"`
	PricingRule   *PricingRule `json:"pricing_rule,omitempty" gorm:"foreignKey:PricingRuleID;references:Id"`
	PartnerID     *uint        `json:"partner_id" gorm:"index"`
	Partner       *Partner     `json:"partner,omitempty" gorm:"foreignKey:PartnerID;references:Id"`

	// Duration persists in "MM:SS" form, not as a minute float.
	Duration               string `json:"duration"`
	PerformanceTargetValue int64  `json:"performance_target_value"`

	RevenueAmount    int64 `json:"revenue_amount"`
	CostAmount       int64 `json:"cost_amount"`
	AmountOverridden bool  `json:"amount_overridden"`

	Status       Status     `json:"status" gorm:"type:VARCHAR(20);index"`
	DeliveryDate *time.Time `json:"delivery_date"`
	DeliveryUrl  string     `json:"delivery_url"`
	DeliveryNote string     `json:"delivery_note"`
}

var (
	ErrDeliveryUrlMissing  = errors.New("delivery url is required")
	ErrDeliveryDateMissing = errors.New("delivery date is required")
	ErrDurationMissing     = errors.New("duration is required for this tariff type")
	ErrTargetMissing       = errors.New("performance target is required for this tariff type")
	ErrNotDeliverable      = errors.New("task status does not allow delivery")
)

// DeliveryGuard checks the preconditions for marking the task
// delivered: a delivery url, a delivery date, and tariff-type
// completeness (LINEAR/STEPPED need a duration, PERFORMANCE a
// positive target, FIXED neither).
func (t *OutsourceTask) DeliveryGuard(ruleType pricing.TariffType) error {
	if !t.Status.working() {
		return ErrNotDeliverable
	}
	if t.DeliveryUrl == "" {
		return ErrDeliveryUrlMissing
	}
	if t.DeliveryDate == nil {
		return ErrDeliveryDateMissing
	}
	switch ruleType {
	case pricing.Linear, pricing.Stepped:
		if t.Duration == "" {
			return ErrDurationMissing
		}
	case pricing.Performance:
		if t.PerformanceTargetValue <= 0 {
			return ErrTargetMissing
		}
	}
	return nil
}

// DurationMinutes parses the persisted "MM:SS" duration.
func (t *OutsourceTask) DurationMinutes() float64 {
	return pricing.ParseDuration(t.Duration)
}

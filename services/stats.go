package services

import (
	"sort"
	"time"

	"gorm.io/gorm"

	"mediaops-backend/models"
)

// activeWindowMonths is the recency threshold for the active/inactive
// client classification.
const activeWindowMonths = 3

// StatsService computes read-side rollups. No method here mutates
// anything.
type StatsService struct {
	Now func() time.Time
}

func (s StatsService) reference(ref time.Time) time.Time {
	if !ref.IsZero() {
		return ref
	}
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// ClientActivity is a client plus its latest invoice issue date.
type ClientActivity struct {
	Client          models.Client `json:"client"`
	LastInvoiceDate *time.Time    `json:"last_invoice_date"`
}

// ClassifyClients splits clients into active (at least one invoice
// issued within the trailing 3 months of the reference date) and
// inactive, the re-engagement follow-up list.
func (s StatsService) ClassifyClients(db *gorm.DB, ref time.Time) (active, inactive []ClientActivity, err error) {
	ref = s.reference(ref)
	cutoff := ref.AddDate(0, -activeWindowMonths, 0)

	var clients []models.Client
	if err = db.Order("company_name").Find(&clients).Error; err != nil {
		return nil, nil, err
	}
	var invoices []models.Invoice
	if err = db.Select("client_id", "issue_date").Find(&invoices).Error; err != nil {
		return nil, nil, err
	}
	latest := map[uint]time.Time{}
	for _, inv := range invoices {
		if inv.IssueDate.After(latest[inv.ClientID]) {
			latest[inv.ClientID] = inv.IssueDate
		}
	}
	for _, client := range clients {
		a := ClientActivity{Client: client}
		if last, ok := latest[client.Id]; ok {
			t := last
			a.LastInvoiceDate = &t
		}
		if a.LastInvoiceDate != nil && !a.LastInvoiceDate.Before(cutoff) {
			active = append(active, a)
		} else {
			inactive = append(inactive, a)
		}
	}
	return active, inactive, nil
}

// MonthlyRollup is one calendar month's revenue/cost/profit.
type MonthlyRollup struct {
	Month   string  `json:"month"` // "2006-01"
	Revenue int64   `json:"revenue"`
	Cost    int64   `json:"cost"`
	Profit  int64   `json:"profit"`
	Margin  float64 `json:"margin"`
}

// MonthlyRollups groups invoice totals by issue month. A non-empty
// staffID scopes the rollup to invoices of that staff member's
// assigned clients (their operations lead).
func (s StatsService) MonthlyRollups(db *gorm.DB, staffID string) ([]MonthlyRollup, error) {
	q := db.Model(&models.Invoice{})
	if staffID != "" {
		q = q.Joins("JOIN clients ON clients.id = invoices.client_id").
			Where("clients.operations_lead_id = ?", staffID)
	}
	var invoices []models.Invoice
	if err := q.Find(&invoices).Error; err != nil {
		return nil, err
	}
	byMonth := map[string]*MonthlyRollup{}
	for _, inv := range invoices {
		month := inv.IssueDate.Format("2006-01")
		r := byMonth[month]
		if r == nil {
			r = &MonthlyRollup{Month: month}
			byMonth[month] = r
		}
		r.Revenue += inv.TotalAmount
		r.Cost += inv.TotalCost
	}
	out := make([]MonthlyRollup, 0, len(byMonth))
	for _, r := range byMonth {
		r.Profit = r.Revenue - r.Cost
		r.Margin = marginPct(r.Profit, r.Revenue)
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

// ClientRollup accumulates one client's totals across all invoices.
type ClientRollup struct {
	ClientID    uint    `json:"client_id"`
	CompanyName string  `json:"company_name"`
	Revenue     int64   `json:"revenue"`
	Cost        int64   `json:"cost"`
	Profit      int64   `json:"profit"`
	Margin      float64 `json:"margin"`
}

// ClientRollups aggregates revenue and cost per client. Clients with
// no invoices appear with zero totals and a zero margin.
func (s StatsService) ClientRollups(db *gorm.DB) ([]ClientRollup, error) {
	var clients []models.Client
	if err := db.Order("company_name").Find(&clients).Error; err != nil {
		return nil, err
	}
	var invoices []models.Invoice
	if err := db.Find(&invoices).Error; err != nil {
		return nil, err
	}
	byClient := map[uint]*ClientRollup{}
	out := make([]ClientRollup, len(clients))
	for i, client := range clients {
		out[i] = ClientRollup{ClientID: client.Id, CompanyName: client.CompanyName}
		byClient[client.Id] = &out[i]
	}
	for _, inv := range invoices {
		r := byClient[inv.ClientID]
		if r == nil {
			continue
		}
		r.Revenue += inv.TotalAmount
		r.Cost += inv.TotalCost
	}
	for i := range out {
		out[i].Profit = out[i].Revenue - out[i].Cost
		out[i].Margin = marginPct(out[i].Profit, out[i].Revenue)
	}
	return out, nil
}

// TopClients ranks clients by revenue, highest first.
func (s StatsService) TopClients(db *gorm.DB, n int) ([]ClientRollup, error) {
	rollups, err := s.ClientRollups(db)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rollups, func(i, j int) bool { return rollups[i].Revenue > rollups[j].Revenue })
	if n > 0 && n < len(rollups) {
		rollups = rollups[:n]
	}
	return rollups, nil
}

package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"mediaops-backend/pricing"
)

// Steps stores a stepped tariff's tiers as an ordered JSON array.
type Steps []pricing.Step

// Value serializes the tiers for the database column.
func (s Steps) Value() (driver.Value, error) {
	if s == nil {
		return json.Marshal(Steps{})
	}
	return json.Marshal(s)
}

// Scan reads the JSON column back into the tier list.
func (s *Steps) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	}
	return errors.New("unsupported column type for steps")
}

// PricingRule is a named tariff with independent revenue and cost
// sides. A rule applies generically (no linked clients or partners)
// or only to the clients/partners it is linked to.
type PricingRule struct {
	Id   string             `json:"id" gorm:"primaryKey"`
	Name string             `json:"name" gorm:"not null"`
	Type pricing.TariffType `json:"type" gorm:"type:VARCHAR(20);not null"`

	// Revenue side
	FixedPrice           int64   `json:"fixed_price"`
	Steps                Steps   `json:"steps" gorm:"type:jsonb"`
	IncrementalUnitPrice int64   `json:"incremental_unit_price"`
	IncrementalUnit      float64 `json:"incremental_unit"`
	Percentage           float64 `json:"percentage"`

	// Cost side
	FixedCost            int64   `json:"fixed_cost"`
	CostSteps            Steps   `json:"cost_steps" gorm:"type:jsonb"`
	IncrementalCostPrice int64   `json:"incremental_cost_price"`
	IncrementalCostUnit  float64 `json:"incremental_cost_unit"`
	CostPercentage       float64 `json:"cost_percentage"`

	// TargetRole restricts which partner roles a generic rule may be
	// assigned under. Empty means any role.
	TargetRole string `json:"target_role"`

	Clients  []Client  `json:"clients,omitempty" gorm:"many2many:pricing_rule_clients"`
	Partners []Partner `json:"partners,omitempty" gorm:"many2many:pricing_rule_partners"`

	Active bool `json:"-"`
}

func (rule *PricingRule) BeforeCreate(tx *gorm.DB) (err error) {
	if rule.Id == "" {
		rule.Id = uuid.NewString()
	}
	return
}

// Generic reports whether the rule applies to any client/partner.
func (rule *PricingRule) Generic() bool {
	return len(rule.Clients) == 0 && len(rule.Partners) == 0
}

// RevenueTerms builds the revenue side for the tariff resolver.
func (rule *PricingRule) RevenueTerms() pricing.Terms {
	return pricing.Terms{
		Type:       rule.Type,
		FixedPrice: rule.FixedPrice,
		Steps:      rule.Steps,
		UnitPrice:  rule.IncrementalUnitPrice,
		Unit:       rule.IncrementalUnit,
		Percentage: rule.Percentage,
	}
}

// CostTerms builds the cost side for the tariff resolver.
func (rule *PricingRule) CostTerms() pricing.Terms {
	return pricing.Terms{
		Type:       rule.Type,
		FixedPrice: rule.FixedCost,
		Steps:      rule.CostSteps,
		UnitPrice:  rule.IncrementalCostPrice,
		Unit:       rule.IncrementalCostUnit,
		Percentage: rule.CostPercentage,
	}
}

package controllers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"mediaops-backend/database"
	"mediaops-backend/middlewares"
	"mediaops-backend/models"
	"mediaops-backend/pricing"
	"mediaops-backend/utils"
)

// PricingRuleInput is the tagged-union create payload: which fields
// matter depends on Type, everything else stays zero.
type PricingRuleInput struct {
	Name string             `json:"name" validate:"required,min=1"`
	Type pricing.TariffType `json:"type" validate:"required,oneof=FIXED STEPPED LINEAR PERFORMANCE"`

	FixedPrice           int64          `json:"fixed_price" validate:"gte=0"`
	Steps                []pricing.Step `json:"steps" validate:"omitempty,dive"`
	IncrementalUnitPrice int64          `json:"incremental_unit_price" validate:"gte=0"`
	IncrementalUnit      float64        `json:"incremental_unit" validate:"gte=0"`
	Percentage           float64        `json:"percentage" validate:"gte=0,lte=100"`

	FixedCost            int64          `json:"fixed_cost" validate:"gte=0"`
	CostSteps            []pricing.Step `json:"cost_steps" validate:"omitempty,dive"`
	IncrementalCostPrice int64          `json:"incremental_cost_price" validate:"gte=0"`
	IncrementalCostUnit  float64        `json:"incremental_cost_unit" validate:"gte=0"`
	CostPercentage       float64        `json:"cost_percentage" validate:"gte=0,lte=100"`

	TargetRole string `json:"target_role"`
	ClientIDs  []uint `json:"client_ids"`
	PartnerIDs []uint `json:"partner_ids"`
}

func (in *PricingRuleInput) toModel() models.PricingRule {
	return models.PricingRule{
		Name:                 strings.TrimSpace(in.Name),
		Type:                 in.Type,
		FixedPrice:           in.FixedPrice,
		Steps:                models.Steps(in.Steps),
		IncrementalUnitPrice: in.IncrementalUnitPrice,
		IncrementalUnit:      in.IncrementalUnit,
		Percentage:           in.Percentage,
		FixedCost:            in.FixedCost,
		CostSteps:            models.Steps(in.CostSteps),
		IncrementalCostPrice: in.IncrementalCostPrice,
		IncrementalCostUnit:  in.IncrementalCostUnit,
		CostPercentage:       in.CostPercentage,
		TargetRole:           strings.TrimSpace(in.TargetRole),
		Active:               true,
	}
}

// POST /api/pricing-rules (batch create)
func CreatePricingRules(c *fiber.Ctx) error {
	var inputs []PricingRuleInput
	if err := c.BodyParser(&inputs); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	db := database.FromCtx(c)
	var created []models.PricingRule

	for i := range inputs {
		utils.NormalizeDTO(&inputs[i])
		if err := middlewares.ValidateStruct(&inputs[i]); err != nil {
			return err
		}
		rule := inputs[i].toModel()

		if len(inputs[i].ClientIDs) > 0 {
			if err := db.Find(&rule.Clients, inputs[i].ClientIDs).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid client ids at index %d", i))
			}
		}
		if len(inputs[i].PartnerIDs) > 0 {
			if err := db.Find(&rule.Partners, inputs[i].PartnerIDs).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid partner ids at index %d", i))
			}
		}

		if err := db.Create(&rule).Error; err != nil {
			return c.Status(500).JSON(fiber.Map{
				"message": fmt.Sprintf("Could not create pricing rule at index %d", i),
				"error":   err.Error(),
			})
		}
		created = append(created, rule)
	}

	return c.Status(201).JSON(created)
}

// GET /api/pricing-rules
func GetPricingRules(c *fiber.Ctx) error {
	limit := utils.ParseIntDefault(c.Query("limit"), 100)
	offset := utils.ParseIntDefault(c.Query("offset"), 0)

	var rules []models.PricingRule
	q := database.FromCtx(c).Preload("Clients").Preload("Partners").
		Order("name").Limit(limit).Offset(offset)
	if t := c.Query("type"); t != "" {
		q = q.Where("type = ?", t)
	}
	if err := q.Find(&rules).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return c.JSON(rules)
}

// GET /api/pricing-rule/:id
func GetPricingRule(c *fiber.Ctx) error {
	var rule models.PricingRule
	err := database.FromCtx(c).Preload("Clients").Preload("Partners").
		First(&rule, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "pricing rule not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return c.JSON(rule)
}

// PUT /api/pricing-rules/:id replaces the whole tariff definition.
func UpdatePricingRule(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	if id == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing pricing rule id in path")
	}

	var in PricingRuleInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	db := database.FromCtx(c)
	var existing models.PricingRule
	if err := db.First(&existing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "pricing rule not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}

	rule := in.toModel()
	rule.Id = existing.Id
	if err := db.Session(&gorm.Session{FullSaveAssociations: true}).Save(&rule).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not update pricing rule")
	}
	return c.JSON(rule)
}

// PricePreviewDTO resolves both sides of a rule definition against
// sample inputs without persisting anything.
type PricePreviewDTO struct {
	PricingRuleInput
	Duration          string `json:"duration"`
	PerformanceTarget int64  `json:"performance_target" validate:"gte=0"`
}

// POST /api/pricing-rules/preview
func PreviewPrice(c *fiber.Ctx) error {
	var in PricePreviewDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	rule := in.toModel()
	minutes := pricing.ParseDuration(in.Duration)
	return c.JSON(fiber.Map{
		"duration_minutes": minutes,
		"revenue":          pricing.Resolve(rule.RevenueTerms(), minutes, in.PerformanceTarget),
		"cost":             pricing.Resolve(rule.CostTerms(), minutes, in.PerformanceTarget),
	})
}

package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"mediaops-backend/database"
	"mediaops-backend/middlewares"
	"mediaops-backend/models"
	"mediaops-backend/utils"
)

type PartnerCreateDTO struct {
	Name        string `json:"name" validate:"required,min=1"`
	Role        string `json:"role" validate:"omitempty"`
	Email       string `json:"email" validate:"omitempty,email"`
	PhoneNumber string `json:"phone_number" validate:"omitempty"`
	Notes       string `json:"notes"`
}

type PartnerUpdateDTO struct {
	Name        *string `json:"name" validate:"omitempty,min=1"`
	Role        *string `json:"role"`
	Email       *string `json:"email" validate:"omitempty,email"`
	PhoneNumber *string `json:"phone_number"`
	Notes       *string `json:"notes"`
	Active      *bool   `json:"active"`
}

// POST /api/partner
func CreatePartner(c *fiber.Ctx) error {
	var in PartnerCreateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	partner := models.Partner{
		Name:        strings.TrimSpace(in.Name),
		Role:        strings.TrimSpace(in.Role),
		Email:       strings.TrimSpace(in.Email),
		PhoneNumber: strings.TrimSpace(in.PhoneNumber),
		Notes:       in.Notes,
		Active:      true,
	}
	if err := database.FromCtx(c).Create(&partner).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not create partner")
	}
	return c.JSON(partner)
}

// GET /api/partners
func GetPartners(c *fiber.Ctx) error {
	limit := utils.ParseIntDefault(c.Query("limit"), 100)
	offset := utils.ParseIntDefault(c.Query("offset"), 0)

	var partners []models.Partner
	q := database.FromCtx(c).Order("name").Limit(limit).Offset(offset)
	if role := c.Query("role"); role != "" {
		q = q.Where("role = ?", role)
	}
	if err := q.Find(&partners).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return c.JSON(partners)
}

// PUT /api/partner/:id
func UpdatePartner(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	if id == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing partner id in path")
	}

	var in PartnerUpdateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&in)

	db := database.FromCtx(c)
	var existing models.Partner
	if err := db.First(&existing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "partner not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}

	updates := utils.UpdatesFromPtrDTO(&in, nil)
	if len(updates) > 0 {
		if err := db.Model(&models.Partner{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "could not update partner")
		}
	}

	var out models.Partner
	if err := db.First(&out, "id = ?", id).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to reload partner")
	}
	return c.JSON(out)
}

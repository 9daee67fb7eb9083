package controllers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"mediaops-backend/database"
	"mediaops-backend/middlewares"
	"mediaops-backend/models"
	"mediaops-backend/utils"
)

type ClientCreateDTO struct {
	CompanyName      string     `json:"company_name" validate:"required,min=1"`
	Address          string     `json:"address" validate:"omitempty"`
	Email            string     `json:"email" validate:"omitempty,email"`
	PhoneNumber      string     `json:"phone_number" validate:"omitempty"`
	ContactName      string     `json:"contact_name" validate:"omitempty"`
	OperationsLeadID string     `json:"operations_lead_id" validate:"required"`
	AccountantID     string     `json:"accountant_id" validate:"omitempty"`
	LastContactDate  *time.Time `json:"last_contact_date"`
	Notes            string     `json:"notes"`
}

type ClientUpdateDTO struct {
	CompanyName      *string    `json:"company_name" validate:"omitempty,min=1"`
	Address          *string    `json:"address"`
	Email            *string    `json:"email" validate:"omitempty,email"`
	PhoneNumber      *string    `json:"phone_number"`
	ContactName      *string    `json:"contact_name"`
	OperationsLeadID *string    `json:"operations_lead_id"`
	AccountantID     *string    `json:"accountant_id"`
	LastContactDate  *time.Time `json:"last_contact_date"`
	Notes            *string    `json:"notes"`
}

// POST /api/client
func CreateClient(c *fiber.Ctx) error {
	var in ClientCreateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	db := database.FromCtx(c)
	if err := db.First(&models.Staff{}, "id = ?", in.OperationsLeadID).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "unknown operations lead")
	}

	client := models.Client{
		CompanyName:      strings.TrimSpace(in.CompanyName),
		Address:          strings.TrimSpace(in.Address),
		Email:            strings.TrimSpace(in.Email),
		PhoneNumber:      strings.TrimSpace(in.PhoneNumber),
		ContactName:      strings.TrimSpace(in.ContactName),
		OperationsLeadID: in.OperationsLeadID,
		AccountantID:     in.AccountantID,
		LastContactDate:  in.LastContactDate,
		Notes:            in.Notes,
		Active:           true,
	}
	if err := db.Create(&client).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not create client")
	}
	return c.JSON(client)
}

// GET /api/clients
func GetClients(c *fiber.Ctx) error {
	limit := utils.ParseIntDefault(c.Query("limit"), 100)
	offset := utils.ParseIntDefault(c.Query("offset"), 0)

	var clients []models.Client
	q := database.FromCtx(c).Preload("OperationsLead").Preload("Accountant").
		Order("company_name").Limit(limit).Offset(offset)
	if staffID := c.Query("operations_lead_id"); staffID != "" {
		q = q.Where("operations_lead_id = ?", staffID)
	}
	if err := q.Find(&clients).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return c.JSON(clients)
}

// GET /api/client/:id
func GetClient(c *fiber.Ctx) error {
	var client models.Client
	err := database.FromCtx(c).Preload("OperationsLead").Preload("Accountant").
		First(&client, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "client not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return c.JSON(client)
}

// PUT /api/client/:id
func UpdateClient(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	if id == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing client id in path")
	}

	var in ClientUpdateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&in)

	db := database.FromCtx(c)
	var existing models.Client
	if err := db.First(&existing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "client not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}

	updates := utils.UpdatesFromPtrDTO(&in, nil)
	if len(updates) > 0 {
		if err := db.Model(&models.Client{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "could not update client")
		}
	}

	var out models.Client
	if err := db.Preload("OperationsLead").Preload("Accountant").First(&out, "id = ?", id).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to reload client")
	}
	return c.JSON(out)
}

package controllers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"mediaops-backend/database"
	"mediaops-backend/models"
	"mediaops-backend/services"
	"mediaops-backend/utils"
)

func billingService() *services.BillingService {
	return &services.BillingService{Audit: auditSink()}
}

// GET /api/billing/candidates?client_id=&month=2006-01
// Without month: every delivered-but-unbilled invoice of the client.
// With month: the auto-select-last-month policy.
func GetBillingCandidates(c *fiber.Ctx) error {
	clientID, err := strconv.Atoi(c.Query("client_id"))
	if err != nil || clientID <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "client_id is required")
	}

	db := database.FromCtx(c)
	svc := billingService()

	if month := c.Query("month"); month != "" {
		ref, err := time.Parse("2006-01", month)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "month must be formatted 2006-01")
		}
		invoices, err := svc.AutoSelectMonth(db, uint(clientID), ref)
		if err != nil {
			return err
		}
		return c.JSON(invoices)
	}

	invoices, err := svc.Candidates(db, uint(clientID))
	if err != nil {
		return err
	}
	return c.JSON(invoices)
}

// POST /api/bills runs the consolidation.
func CreateBill(c *fiber.Ctx) error {
	var in services.ConsolidateInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	bill, err := billingService().Consolidate(database.FromCtx(c), in, actorID(c))
	if err != nil {
		return err
	}
	return c.Status(201).JSON(bill)
}

// GET /api/bills
func GetBills(c *fiber.Ctx) error {
	limit := utils.ParseIntDefault(c.Query("limit"), 50)
	offset := utils.ParseIntDefault(c.Query("offset"), 0)

	q := database.FromCtx(c).Preload("Client").Order("issue_date DESC").Limit(limit).Offset(offset)
	if clientID := c.Query("client_id"); clientID != "" {
		q = q.Where("client_id = ?", clientID)
	}

	var bills []models.Bill
	if err := q.Find(&bills).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return c.JSON(bills)
}

// GET /api/bill/:id
func GetBill(c *fiber.Ctx) error {
	var bill models.Bill
	err := database.FromCtx(c).
		Preload("Client").
		Preload("Invoices").
		First(&bill, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "bill not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return c.JSON(bill)
}

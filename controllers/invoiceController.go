package controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"mediaops-backend/database"
	"mediaops-backend/middlewares"
	"mediaops-backend/models"
	"mediaops-backend/services"
	"mediaops-backend/utils"
)

func auditSink() *services.AuditSink {
	return &services.AuditSink{DB: database.DB}
}

func invoiceService() *services.InvoiceService {
	return &services.InvoiceService{Audit: auditSink()}
}

func actorID(c *fiber.Ctx) string {
	id, _ := c.Locals("staffID").(string)
	return id
}

// POST /api/invoice
func CreateInvoice(c *fiber.Ctx) error {
	var in services.SaveInvoiceInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	in.ID = 0

	invoice, err := invoiceService().Save(database.FromCtx(c), in, actorID(c))
	if err != nil {
		return err
	}
	return c.Status(201).JSON(invoice)
}

// PUT /api/invoices/:id
func UpdateInvoice(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid invoice id")
	}

	var in services.SaveInvoiceInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	in.ID = uint(id)

	invoice, err := invoiceService().Save(database.FromCtx(c), in, actorID(c))
	if err != nil {
		return err
	}
	return c.JSON(invoice)
}

// GET /api/invoices
func GetInvoices(c *fiber.Ctx) error {
	limit := utils.ParseIntDefault(c.Query("limit"), 50)
	offset := utils.ParseIntDefault(c.Query("offset"), 0)

	q := database.FromCtx(c).Preload("Client").Order("issue_date DESC").Limit(limit).Offset(offset)
	if clientID := c.Query("client_id"); clientID != "" {
		q = q.Where("client_id = ?", clientID)
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var invoices []models.Invoice
	if err := q.Find(&invoices).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return c.JSON(invoices)
}

// GET /api/invoice/:id
func GetInvoice(c *fiber.Ctx) error {
	var invoice models.Invoice
	err := database.FromCtx(c).
		Preload("Client").
		Preload("Items.Tasks.PricingRule").
		Preload("Items.Tasks.Partner").
		First(&invoice, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "invoice not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return c.JSON(invoice)
}

// PUT /api/tasks/:id/deliver performs the guarded DELIVERED transition.
func DeliverTask(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid task id")
	}

	var in services.DeliverInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	task, err := invoiceService().DeliverTask(database.FromCtx(c), uint(id), in, actorID(c))
	if err != nil {
		return err
	}
	return c.JSON(task)
}

type TaskStatusDTO struct {
	Status models.Status `json:"status" validate:"required,status"`
}

// PUT /api/tasks/:id/status moves a task between working states.
func TransitionTask(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid task id")
	}

	var in TaskStatusDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	task, err := invoiceService().TransitionTask(database.FromCtx(c), uint(id), in.Status, actorID(c))
	if err != nil {
		return err
	}
	return c.JSON(task)
}

// PUT /api/invoices/:id/force-close is the cascade override, always audited.
func ForceCloseInvoice(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid invoice id")
	}

	var in TaskStatusDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	invoice, err := invoiceService().ForceCloseInvoice(database.FromCtx(c), uint(id), in.Status, actorID(c))
	if err != nil {
		return err
	}
	return c.JSON(invoice)
}

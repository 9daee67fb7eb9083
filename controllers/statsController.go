package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"mediaops-backend/database"
	"mediaops-backend/models"
	"mediaops-backend/services"
	"mediaops-backend/utils"
)

var statsService services.StatsService

// GET /api/stats/monthly?staff_id=
func GetMonthlyStats(c *fiber.Ctx) error {
	rollups, err := statsService.MonthlyRollups(database.FromCtx(c), c.Query("staff_id"))
	if err != nil {
		return err
	}
	return c.JSON(rollups)
}

// GET /api/stats/clients
func GetClientStats(c *fiber.Ctx) error {
	rollups, err := statsService.ClientRollups(database.FromCtx(c))
	if err != nil {
		return err
	}
	return c.JSON(rollups)
}

// GET /api/stats/clients/top?limit=5
func GetTopClients(c *fiber.Ctx) error {
	limit := utils.ParseIntDefault(c.Query("limit"), 5)
	rollups, err := statsService.TopClients(database.FromCtx(c), limit)
	if err != nil {
		return err
	}
	return c.JSON(rollups)
}

// GET /api/clients/activity?at=2006-01-02 is the re-engagement view.
func GetClientActivity(c *fiber.Ctx) error {
	var ref time.Time
	if at := c.Query("at"); at != "" {
		parsed, err := time.Parse("2006-01-02", at)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "at must be formatted 2006-01-02")
		}
		ref = parsed
	}
	active, inactive, err := statsService.ClassifyClients(database.FromCtx(c), ref)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"active":   active,
		"inactive": inactive,
	})
}

// GET /api/audit, owner only (enforced in routes).
func GetAuditLog(c *fiber.Ctx) error {
	limit := utils.ParseIntDefault(c.Query("limit"), 100)
	offset := utils.ParseIntDefault(c.Query("offset"), 0)

	q := database.FromCtx(c).Order("created_at DESC").Limit(limit).Offset(offset)
	if target := c.Query("target_type"); target != "" {
		q = q.Where("target_type = ?", target)
	}

	var entries []models.AuditLogEntry
	if err := q.Find(&entries).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return c.JSON(entries)
}

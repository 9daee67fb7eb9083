package controllers

import (
	"errors"
	"net/mail"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"mediaops-backend/database"
	"mediaops-backend/middlewares"
	"mediaops-backend/models"
)

func Register(c *fiber.Ctx) error {
	var data map[string]string
	if err := c.BodyParser(&data); err != nil {
		return err
	}

	if _, err := mail.ParseAddress(data["email"]); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "invalid email format",
		})
	}

	var mailExist models.Staff
	database.DB.Where("email = ?", data["email"]).First(&mailExist)
	if mailExist.Email != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "email already exists",
		})
	}

	if data["password"] != data["password_confirm"] {
		return c.Status(400).JSON(fiber.Map{
			"message": "passwords do not match",
		})
	}

	// The first registered staff member becomes the owner; everyone
	// after that starts as operations and is promoted by an owner.
	role := models.RoleOperations
	var count int64
	database.DB.Model(&models.Staff{}).Count(&count)
	if count == 0 {
		role = models.RoleOwner
	}

	staff := models.Staff{
		FirstName: strings.TrimSpace(data["first_name"]),
		LastName:  strings.TrimSpace(data["last_name"]),
		Email:     strings.TrimSpace(data["email"]),
		Role:      role,
	}
	staff.SetPassword(data["password"])

	if err := database.DB.Create(&staff).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "could not create staff member",
			"error":   err.Error(),
		})
	}

	return c.JSON(staff)
}

func Login(c *fiber.Ctx) error {
	var data map[string]string
	if err := c.BodyParser(&data); err != nil {
		return err
	}

	if _, err := mail.ParseAddress(data["email"]); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "invalid email format",
		})
	}

	var staff models.Staff
	if err := database.DB.Where("email = ?", data["email"]).First(&staff).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "invalid credentials",
		})
	}
	if err := staff.ComparePassword(data["password"]); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "invalid credentials",
		})
	}

	token, err := middlewares.GenerateJWT(staff.Id, staff.Role)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "could not issue token",
		})
	}

	return c.JSON(fiber.Map{
		"token": token,
		"role":  staff.Role,
	})
}

func Logout(c *fiber.Ctx) error {
	// Bearer tokens are stateless; the client drops the token.
	return c.JSON(fiber.Map{"message": "logged out"})
}

func GetStaffMembers(c *fiber.Ctx) error {
	var staff []models.Staff
	if err := database.FromCtx(c).Order("last_name").Find(&staff).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return c.JSON(staff)
}

type StaffRoleDTO struct {
	Role models.Role `json:"role" validate:"required,oneof=OWNER OPERATIONS ACCOUNTING"`
}

// PUT /api/staff/:id/role, owner only (enforced in routes).
func UpdateStaffRole(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	var in StaffRoleDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	db := database.FromCtx(c)
	var staff models.Staff
	if err := db.First(&staff, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "staff member not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	actorID, _ := c.Locals("staffID").(string)
	if staff.Id == actorID {
		return fiber.NewError(fiber.StatusBadRequest, "cannot change your own role")
	}

	if err := db.Model(&staff).Update("role", in.Role).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not update role")
	}
	return c.JSON(staff)
}

// DELETE /api/staff/:id, owner only (enforced in routes).
func DeleteStaff(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	actorID, _ := c.Locals("staffID").(string)
	if id == actorID {
		return fiber.NewError(fiber.StatusBadRequest, "cannot delete yourself")
	}

	db := database.FromCtx(c)
	res := db.Delete(&models.Staff{}, "id = ?", id)
	if res.Error != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not delete staff member")
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "staff member not found")
	}
	return c.JSON(fiber.Map{"message": "deleted"})
}

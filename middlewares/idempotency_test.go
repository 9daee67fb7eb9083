package middlewares

import (
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"mediaops-backend/database"
	"mediaops-backend/models"
)

func TestIdempotencyReplaysWithoutRerunningHandler(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.IdempotencyKey{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	prev := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = prev })

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("staffID", "staff-1")
		return c.Next()
	})
	app.Use(Idempotency())

	calls := 0
	app.Post("/bills", func(c *fiber.Ctx) error {
		calls++
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"bill": calls})
	})

	send := func() (int, string) {
		req := httptest.NewRequest(fiber.MethodPost, "/bills", strings.NewReader(`{"client_id":1}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Idempotency-Key", "key-1")
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, string(body)
	}

	status1, body1 := send()
	if status1 != fiber.StatusCreated {
		t.Fatalf("first status = %d, want 201", status1)
	}
	if calls != 1 {
		t.Fatalf("handler calls = %d, want 1", calls)
	}

	// the replay serves the stored response and never reaches the handler
	status2, body2 := send()
	if calls != 1 {
		t.Errorf("handler calls = %d after replay, want 1", calls)
	}
	if status2 != status1 || body2 != body1 {
		t.Errorf("replay = %d %q, want %d %q", status2, body2, status1, body1)
	}

	// a different body under the same key is a conflict
	req := httptest.NewRequest(fiber.MethodPost, "/bills", strings.NewReader(`{"client_id":2}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", "key-1")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != fiber.StatusConflict {
		t.Errorf("mismatched reuse status = %d, want 409", resp.StatusCode)
	}
}

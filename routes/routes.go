package routes

import (
	"github.com/gofiber/fiber/v2"

	"mediaops-backend/controllers"
	"mediaops-backend/middlewares"
	"mediaops-backend/models"
)

// Register wires all HTTP routes.
func Register(app *fiber.App) {
	api := app.Group("/api")

	// Public auth endpoints
	api.Post("/registration", controllers.Register)
	api.Post("/login", controllers.Login)
	api.Post("/logout", controllers.Logout)

	// Protected endpoints (JWT auth)
	protected := api.Group("")
	protected.Use(middlewares.IsAuthenticatedHeader())

	// Idempotency guard FIRST (not tied to request TX)
	protected.Use(middlewares.Idempotency())

	// Then the per-request transaction (commits/rolls back around the handler)
	protected.Use(middlewares.Tx())

	// Staff
	protected.Get("/staff", controllers.GetStaffMembers)
	protected.Put("/staff/:id/role", middlewares.RequireRole(models.RoleOwner), controllers.UpdateStaffRole)
	protected.Delete("/staff/:id", middlewares.RequireRole(models.RoleOwner), controllers.DeleteStaff)

	// Clients
	protected.Post("/client", controllers.CreateClient)
	protected.Get("/clients", controllers.GetClients)
	protected.Get("/clients/activity", controllers.GetClientActivity)
	protected.Get("/client/:id", controllers.GetClient)
	protected.Put("/client/:id", controllers.UpdateClient)

	// Partners
	protected.Post("/partner", controllers.CreatePartner)
	protected.Get("/partners", controllers.GetPartners)
	protected.Put("/partner/:id", controllers.UpdatePartner)

	// Pricing rules
	protected.Post("/pricing-rules", controllers.CreatePricingRules) // batch create
	protected.Post("/pricing-rules/preview", controllers.PreviewPrice)
	protected.Get("/pricing-rules", controllers.GetPricingRules)
	protected.Get("/pricing-rule/:id", controllers.GetPricingRule)
	protected.Put("/pricing-rules/:id", controllers.UpdatePricingRule)

	// Invoices and tasks
	protected.Post("/invoice", controllers.CreateInvoice)
	protected.Get("/invoices", controllers.GetInvoices)
	protected.Get("/invoice/:id", controllers.GetInvoice)
	protected.Put("/invoices/:id", controllers.UpdateInvoice)
	protected.Put("/invoices/:id/force-close", controllers.ForceCloseInvoice)
	protected.Put("/tasks/:id/deliver", controllers.DeliverTask)
	protected.Put("/tasks/:id/status", controllers.TransitionTask)

	// Billing consolidation
	protected.Get("/billing/candidates", controllers.GetBillingCandidates)
	protected.Post("/bills", controllers.CreateBill)
	protected.Get("/bills", controllers.GetBills)
	protected.Get("/bill/:id", controllers.GetBill)

	// Stats & audit
	protected.Get("/stats/monthly", controllers.GetMonthlyStats)
	protected.Get("/stats/clients", controllers.GetClientStats)
	protected.Get("/stats/clients/top", controllers.GetTopClients)
	protected.Get("/audit", middlewares.RequireRole(models.RoleOwner), controllers.GetAuditLog)
}

package database

import (
	"fmt"

	"gorm.io/gorm"

	"mediaops-backend/models"
)

// Migrate applies (idempotent) schema migrations:
// - AutoMigrate (tables/columns)
// - Indexes used by the billing and stats read paths
// - Basic CHECK constraints on money columns
func Migrate() error {
	return DB.Transaction(func(tx *gorm.DB) error {
		// --- AutoMigrate tables/columns/index tags (non-destructive) ---
		if err := tx.AutoMigrate(
			&models.Staff{},
			&models.Client{},
			&models.Partner{},
			&models.PricingRule{},
			&models.Invoice{},
			&models.InvoiceItem{},
			&models.OutsourceTask{},
			&models.Bill{},
			&models.AuditLogEntry{},
			&models.IdempotencyKey{},
		); err != nil {
			return fmt.Errorf("automigrate failed: %w", err)
		}

		// --- Composite / helpful indexes (idempotent) ---
		indexes := []string{
			`CREATE INDEX IF NOT EXISTS idx_invoices_client_issue ON invoices (client_id, issue_date)`,
			`CREATE INDEX IF NOT EXISTS idx_invoices_bill ON invoices (bill_id)`,
			`CREATE INDEX IF NOT EXISTS idx_invoice_items_invoice ON invoice_items (invoice_id)`,
			`CREATE INDEX IF NOT EXISTS idx_outsource_tasks_item ON outsource_tasks (invoice_item_id)`,
			`CREATE INDEX IF NOT EXISTS idx_outsource_tasks_partner_status ON outsource_tasks (partner_id, status)`,
			`CREATE INDEX IF NOT EXISTS idx_audit_log_entries_target ON audit_log_entries (target_type, target_id)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_idempotency_keys_key ON idempotency_keys (key)`,
		}
		for _, stmt := range indexes {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("index migration failed on: %s - %w", stmt, err)
			}
		}

		// --- Basic CHECK constraints (idempotent) ---
		checks := []string{
			// Non-negative cached task amounts
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'outsource_tasks'::regclass
					  AND conname  = 'chk_outsource_tasks_amounts_nonneg'
				) THEN
					ALTER TABLE outsource_tasks
					ADD CONSTRAINT chk_outsource_tasks_amounts_nonneg
					CHECK (revenue_amount >= 0 AND cost_amount >= 0);
				END IF;
			END $$;`,
			// Non-negative invoice totals
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'invoices'::regclass
					  AND conname  = 'chk_invoices_totals_nonneg'
				) THEN
					ALTER TABLE invoices
					ADD CONSTRAINT chk_invoices_totals_nonneg
					CHECK (subtotal >= 0 AND tax >= 0 AND total_amount >= 0 AND total_cost >= 0);
				END IF;
			END $$;`,
			// Non-negative bill totals
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'bills'::regclass
					  AND conname  = 'chk_bills_totals_nonneg'
				) THEN
					ALTER TABLE bills
					ADD CONSTRAINT chk_bills_totals_nonneg
					CHECK (total_amount >= 0 AND total_cost >= 0);
				END IF;
			END $$;`,
		}
		for _, stmt := range checks {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("check constraint migration failed: %w", err)
			}
		}

		return nil
	})
}

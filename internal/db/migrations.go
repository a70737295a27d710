package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'contract_status') THEN
			CREATE TYPE contract_status AS ENUM ('DRAFT', 'ACTIVE', 'EXPIRED', 'CANCELLED', 'RENEWED');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'contract_type') THEN
			CREATE TYPE contract_type AS ENUM ('FULL_TIME', 'PART_TIME', 'TEMPORARY', 'SEASONAL');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'worker_status') THEN
			CREATE TYPE worker_status AS ENUM ('AVAILABLE', 'OFFERED', 'SPONSORED', 'EXITED');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'client_status') THEN
			CREATE TYPE client_status AS ENUM ('ACTIVE', 'SUSPENDED', 'CLOSED');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'invoice_status') THEN
			CREATE TYPE invoice_status AS ENUM ('PENDING', 'OVERDUE', 'PAID', 'CANCELLED');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS clients (
		id BIGSERIAL PRIMARY KEY,
		full_name VARCHAR(255) NOT NULL,
		emirates_id VARCHAR(32),
		phone VARCHAR(32),
		email VARCHAR(255),
		status client_status NOT NULL DEFAULT 'ACTIVE',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS workers (
		id BIGSERIAL PRIMARY KEY,
		full_name VARCHAR(255) NOT NULL,
		nationality VARCHAR(64),
		profession VARCHAR(128),
		status worker_status NOT NULL DEFAULT 'AVAILABLE',
		status_note TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS contracts (
		id BIGSERIAL PRIMARY KEY,
		contract_number VARCHAR(64) NOT NULL,
		client_id BIGINT NOT NULL REFERENCES clients(id),
		worker_id BIGINT NOT NULL REFERENCES workers(id),
		contract_type contract_type NOT NULL,
		status contract_status NOT NULL DEFAULT 'DRAFT',
		start_date DATE NOT NULL,
		end_date DATE NOT NULL,
		duration_months INT NOT NULL,
		probation_days INT NOT NULL DEFAULT 0,
		notice_days INT NOT NULL DEFAULT 0,
		basic_salary NUMERIC(18,2) NOT NULL,
		currency VARCHAR(8) NOT NULL DEFAULT 'AED',
		accommodation_allowance NUMERIC(18,2) NOT NULL DEFAULT 0,
		food_allowance NUMERIC(18,2) NOT NULL DEFAULT 0,
		transportation_allowance NUMERIC(18,2) NOT NULL DEFAULT 0,
		communication_allowance NUMERIC(18,2) NOT NULL DEFAULT 0,
		medical_insurance BOOLEAN NOT NULL DEFAULT FALSE,
		annual_ticket BOOLEAN NOT NULL DEFAULT FALSE,
		end_of_service_benefit BOOLEAN NOT NULL DEFAULT FALSE,
		monthly_client_fee NUMERIC(18,2) NOT NULL DEFAULT 0,
		annual_contract_fee NUMERIC(18,2) NOT NULL DEFAULT 0,
		insurance_deposit NUMERIC(18,2) NOT NULL DEFAULT 0,
		government_fees NUMERIC(18,2) NOT NULL DEFAULT 0,
		agency_fees NUMERIC(18,2) NOT NULL DEFAULT 0,
		vat_amount NUMERIC(18,2) NOT NULL DEFAULT 0,
		total_contract_value NUMERIC(18,2) NOT NULL DEFAULT 0,
		job_description TEXT,
		special_conditions TEXT,
		contract_terms TEXT,
		approved_by BIGINT,
		approved_at TIMESTAMPTZ,
		cancelled_by BIGINT,
		cancelled_at TIMESTAMPTZ,
		cancellation_reason TEXT,
		renewal_contract_id BIGINT REFERENCES contracts(id),
		created_by BIGINT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_contract_number ON contracts (contract_number);`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_client_id ON contracts (client_id);`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_worker_id ON contracts (worker_id);`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_status ON contracts (status);`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_end_date ON contracts (end_date);`,
	`CREATE TABLE IF NOT EXISTS invoices (
		id BIGSERIAL PRIMARY KEY,
		invoice_number VARCHAR(64) NOT NULL,
		contract_id BIGINT NOT NULL REFERENCES contracts(id),
		client_id BIGINT NOT NULL REFERENCES clients(id),
		total_amount NUMERIC(18,2) NOT NULL,
		currency VARCHAR(8) NOT NULL DEFAULT 'AED',
		due_date DATE NOT NULL,
		status invoice_status NOT NULL DEFAULT 'PENDING',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_invoice_number ON invoices (invoice_number);`,
	`CREATE INDEX IF NOT EXISTS idx_invoices_contract_id ON invoices (contract_id);`,
	`CREATE INDEX IF NOT EXISTS idx_invoices_status ON invoices (status);`,
	`CREATE TABLE IF NOT EXISTS audit_log (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		action VARCHAR(64) NOT NULL,
		description TEXT,
		actor_id BIGINT NOT NULL,
		related_id BIGINT,
		related_type VARCHAR(64),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_audit_log_action ON audit_log (action);`,
	`CREATE INDEX IF NOT EXISTS idx_audit_log_actor_id ON audit_log (actor_id);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}

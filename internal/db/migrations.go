package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'vehicle_category') THEN
			CREATE TYPE vehicle_category AS ENUM ('EAST_SIDE', 'WEST_SIDE', 'SMALL_1', 'SMALL_2', 'EXTRA');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'district_side') THEN
			CREATE TYPE district_side AS ENUM ('EAST', 'WEST', 'UNDETERMINED');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'special_status') THEN
			CREATE TYPE special_status AS ENUM ('NORMAL', 'BUSY', 'CLOSED', 'SPECIAL');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'weekday_code') THEN
			CREATE TYPE weekday_code AS ENUM ('MONDAY', 'TUESDAY', 'WEDNESDAY', 'THURSDAY', 'FRIDAY', 'SATURDAY', 'SUNDAY');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'delivery_status') THEN
			CREATE TYPE delivery_status AS ENUM ('DRAFT', 'READY', 'IN_TRANSIT', 'DELIVERED', 'CANCELLED');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'closure_reason') THEN
			CREATE TYPE closure_reason AS ENUM ('MAINTENANCE', 'BREAKDOWN', 'ACCIDENT', 'FUEL_ISSUE', 'NO_DRIVER', 'OTHER');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'approval_status') THEN
			CREATE TYPE approval_status AS ENUM ('PENDING', 'APPROVED', 'REJECTED', 'CANCELLED');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS districts (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(128) NOT NULL,
		side district_side NOT NULL DEFAULT 'UNDETERMINED',
		active BOOLEAN NOT NULL DEFAULT TRUE,
		delivery_enabled BOOLEAN NOT NULL DEFAULT TRUE,
		delivery_days INTEGER NOT NULL DEFAULT 1,
		special_status special_status NOT NULL DEFAULT 'NORMAL',
		latitude DOUBLE PRECISION NOT NULL DEFAULT 0,
		longitude DOUBLE PRECISION NOT NULL DEFAULT 0,
		postal_code VARCHAR(16),
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_districts_name ON districts (name);`,
	`CREATE INDEX IF NOT EXISTS idx_districts_side ON districts (side);`,
	`CREATE TABLE IF NOT EXISTS vehicles (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(128) NOT NULL,
		category vehicle_category NOT NULL,
		daily_limit INTEGER NOT NULL DEFAULT 7 CHECK (daily_limit >= 1),
		active BOOLEAN NOT NULL DEFAULT TRUE,
		temporary_closed BOOLEAN NOT NULL DEFAULT FALSE,
		closure_reason TEXT,
		closure_start DATE,
		closure_end DATE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_vehicles_category ON vehicles (category);`,
	`CREATE TABLE IF NOT EXISTS vehicle_districts (
		vehicle_id UUID NOT NULL REFERENCES vehicles(id) ON DELETE CASCADE,
		district_id UUID NOT NULL REFERENCES districts(id) ON DELETE CASCADE,
		PRIMARY KEY (vehicle_id, district_id)
	);`,
	`CREATE TABLE IF NOT EXISTS week_days (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		code weekday_code NOT NULL,
		name VARCHAR(32) NOT NULL,
		sequence INTEGER NOT NULL DEFAULT 10,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		temporary_closed BOOLEAN NOT NULL DEFAULT FALSE,
		closure_reason TEXT,
		closure_start DATE,
		closure_end DATE,
		daily_max INTEGER NOT NULL DEFAULT 7,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_week_days_code ON week_days (code);`,
	`CREATE TABLE IF NOT EXISTS day_district_assignments (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		week_day_id UUID NOT NULL REFERENCES week_days(id) ON DELETE CASCADE,
		district_id UUID NOT NULL REFERENCES districts(id) ON DELETE CASCADE,
		effective_date DATE,
		max_deliveries INTEGER NOT NULL DEFAULT 10 CHECK (max_deliveries >= 1),
		delivery_count INTEGER NOT NULL DEFAULT 0,
		special_status special_status NOT NULL DEFAULT 'NORMAL',
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_day_district_general
		ON day_district_assignments (week_day_id, district_id)
		WHERE effective_date IS NULL;`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_day_district_dated
		ON day_district_assignments (week_day_id, district_id, effective_date)
		WHERE effective_date IS NOT NULL;`,
	`CREATE TABLE IF NOT EXISTS vehicle_closures (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		vehicle_id UUID NOT NULL REFERENCES vehicles(id) ON DELETE CASCADE,
		start_date DATE NOT NULL,
		end_date DATE NOT NULL CHECK (end_date >= start_date),
		reason closure_reason NOT NULL DEFAULT 'MAINTENANCE',
		description TEXT,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		closed_by UUID,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_vehicle_closures_vehicle_id ON vehicle_closures (vehicle_id);`,
	`CREATE INDEX IF NOT EXISTS idx_vehicle_closures_range ON vehicle_closures (vehicle_id, start_date, end_date) WHERE active;`,
	`CREATE TABLE IF NOT EXISTS delivery_documents (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		number VARCHAR(32) NOT NULL,
		delivery_date DATE NOT NULL,
		vehicle_id UUID NOT NULL REFERENCES vehicles(id),
		district_id UUID NOT NULL REFERENCES districts(id),
		status delivery_status NOT NULL DEFAULT 'READY',
		customer_name VARCHAR(255) NOT NULL,
		customer_phone VARCHAR(32),
		manual_phone VARCHAR(32),
		customer_address TEXT,
		driver_name VARCHAR(255),
		transfer_ref VARCHAR(64),
		stop_number INTEGER NOT NULL DEFAULT 1,
		priority INTEGER NOT NULL DEFAULT 0,
		received_by VARCHAR(255),
		delivered_at TIMESTAMPTZ,
		notes TEXT,
		scheduled_sms_sent BOOLEAN NOT NULL DEFAULT FALSE,
		dispatched_sms_sent BOOLEAN NOT NULL DEFAULT FALSE,
		delivered_sms_sent BOOLEAN NOT NULL DEFAULT FALSE,
		created_by UUID NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_delivery_documents_number ON delivery_documents (number);`,
	`CREATE INDEX IF NOT EXISTS idx_delivery_documents_date ON delivery_documents (delivery_date);`,
	`CREATE INDEX IF NOT EXISTS idx_delivery_documents_vehicle_date ON delivery_documents (vehicle_id, delivery_date);`,
	`CREATE INDEX IF NOT EXISTS idx_delivery_documents_district_date ON delivery_documents (district_id, delivery_date);`,
	`CREATE INDEX IF NOT EXISTS idx_delivery_documents_status ON delivery_documents (status);`,
	`CREATE TABLE IF NOT EXISTS delivery_lines (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		delivery_id UUID NOT NULL REFERENCES delivery_documents(id) ON DELETE CASCADE,
		sequence INTEGER NOT NULL DEFAULT 1,
		product VARCHAR(255) NOT NULL,
		quantity NUMERIC NOT NULL DEFAULT 1,
		unit VARCHAR(32),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_delivery_lines_delivery_id ON delivery_lines (delivery_id);`,
	`CREATE TABLE IF NOT EXISTS delivery_status_log (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		delivery_id UUID NOT NULL REFERENCES delivery_documents(id) ON DELETE CASCADE,
		old_status delivery_status,
		new_status delivery_status NOT NULL,
		note TEXT,
		changed_by UUID,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_delivery_status_log_delivery_id ON delivery_status_log (delivery_id);`,
	`CREATE TABLE IF NOT EXISTS capacity_approval_requests (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		number VARCHAR(32) NOT NULL,
		delivery_id UUID NOT NULL REFERENCES delivery_documents(id) ON DELETE CASCADE,
		status approval_status NOT NULL DEFAULT 'PENDING',
		existing_count INTEGER NOT NULL DEFAULT 0,
		daily_limit INTEGER NOT NULL DEFAULT 0,
		approved_by UUID,
		approved_at TIMESTAMPTZ,
		approval_note TEXT,
		rejected_by UUID,
		rejected_at TIMESTAMPTZ,
		rejection_note TEXT,
		created_by UUID NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_capacity_approval_number ON capacity_approval_requests (number);`,
	`CREATE INDEX IF NOT EXISTS idx_capacity_approval_status ON capacity_approval_requests (status);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_capacity_approval_pending
		ON capacity_approval_requests (delivery_id)
		WHERE status = 'PENDING';`,
	`CREATE TABLE IF NOT EXISTS approval_status_log (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		approval_id UUID NOT NULL REFERENCES capacity_approval_requests(id) ON DELETE CASCADE,
		old_status approval_status,
		new_status approval_status NOT NULL,
		note TEXT,
		changed_by UUID,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_approval_status_log_approval_id ON approval_status_log (approval_id);`,
	`CREATE TABLE IF NOT EXISTS number_sequences (
		code VARCHAR(32) PRIMARY KEY,
		value BIGINT NOT NULL DEFAULT 0
	);`,
	`INSERT INTO number_sequences (code, value) VALUES ('delivery', 0), ('approval', 0)
		ON CONFLICT (code) DO NOTHING;`,
	`INSERT INTO week_days (code, name, sequence, active) VALUES
		('MONDAY', 'Pazartesi', 10, TRUE),
		('TUESDAY', 'Salı', 20, TRUE),
		('WEDNESDAY', 'Çarşamba', 30, TRUE),
		('THURSDAY', 'Perşembe', 40, TRUE),
		('FRIDAY', 'Cuma', 50, TRUE),
		('SATURDAY', 'Cumartesi', 60, TRUE),
		('SUNDAY', 'Pazar', 70, FALSE)
		ON CONFLICT (code) DO NOTHING;`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration statement %d failed: %w", i, err)
		}
	}
	return nil
}

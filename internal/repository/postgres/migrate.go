package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// tenantSchema is applied to every freshly provisioned tenant
// database. The partial unique index on reservations backs the
// "single live reservation per waterfall slot" rule at the storage
// level; the service-level scan is only the fast path.
const tenantSchema = `
CREATE TABLE IF NOT EXISTS branches (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	address TEXT NOT NULL DEFAULT '',
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	deleted_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS doctors (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	specialty TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	fees NUMERIC(10,2) NOT NULL DEFAULT 0,
	patients_count INTEGER NOT NULL DEFAULT 0,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	deleted_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS services (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	fees NUMERIC(10,2) NOT NULL DEFAULT 0,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	deleted_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS working_hours (
	id UUID PRIMARY KEY,
	day TEXT NOT NULL,
	start_time TEXT NOT NULL,
	end_time TEXT NOT NULL,
	range_order INTEGER NOT NULL DEFAULT 0,
	branch_id UUID REFERENCES branches(id),
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	deleted_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS break_hours (
	id UUID PRIMARY KEY,
	day TEXT NOT NULL,
	start_time TEXT NOT NULL,
	end_time TEXT NOT NULL,
	range_order INTEGER NOT NULL DEFAULT 0,
	branch_id UUID REFERENCES branches(id),
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	deleted_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS doctor_working_hours (
	id UUID PRIMARY KEY,
	doctor_id UUID NOT NULL REFERENCES doctors(id),
	day TEXT NOT NULL,
	start_time TEXT NOT NULL,
	end_time TEXT NOT NULL,
	branch_id UUID REFERENCES branches(id),
	waterfall BOOLEAN NOT NULL DEFAULT FALSE,
	session_duration TEXT,
	patients_limit INTEGER NOT NULL DEFAULT 0,
	is_busy BOOLEAN NOT NULL DEFAULT FALSE,
	fees NUMERIC(10,2) NOT NULL DEFAULT 0,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	deleted_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS doctor_working_hour_services (
	doctor_working_hour_id UUID NOT NULL REFERENCES doctor_working_hours(id) ON DELETE CASCADE,
	service_id UUID NOT NULL REFERENCES services(id),
	PRIMARY KEY (doctor_working_hour_id, service_id)
);

CREATE TABLE IF NOT EXISTS reservations (
	id UUID PRIMARY KEY,
	doctor_id UUID NOT NULL REFERENCES doctors(id),
	doctor_working_hour_id UUID NOT NULL REFERENCES doctor_working_hours(id),
	patient_name TEXT NOT NULL,
	patient_phone TEXT NOT NULL DEFAULT '',
	date DATE NOT NULL,
	reserved_at TIMESTAMPTZ NOT NULL,
	status TEXT NOT NULL,
	fees NUMERIC(10,2) NOT NULL DEFAULT 0,
	paid BOOLEAN NOT NULL DEFAULT FALSE,
	medical_status TEXT,
	exclusive BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	deleted_at TIMESTAMPTZ
);

CREATE UNIQUE INDEX IF NOT EXISTS reservations_waterfall_live_uniq
	ON reservations (doctor_working_hour_id)
	WHERE status IN ('scheduled', 'taken') AND exclusive;

CREATE INDEX IF NOT EXISTS reservations_doctor_date_idx
	ON reservations (doctor_id, date);
`

// centralSchema holds the directory tables: the clinic registry,
// main users, clinic-wide default hours and the cross-tenant doctor
// mirror.
const centralSchema = `
CREATE TABLE IF NOT EXISTS clinics (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	phone TEXT NOT NULL DEFAULT '',
	database_name TEXT UNIQUE,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	deleted_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY,
	clinic_id UUID REFERENCES clinics(id),
	email TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	deleted_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS working_hours (
	id UUID PRIMARY KEY,
	day TEXT NOT NULL,
	start_time TEXT NOT NULL,
	end_time TEXT NOT NULL,
	range_order INTEGER NOT NULL DEFAULT 0,
	branch_id UUID,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	deleted_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS break_hours (
	id UUID PRIMARY KEY,
	day TEXT NOT NULL,
	start_time TEXT NOT NULL,
	end_time TEXT NOT NULL,
	range_order INTEGER NOT NULL DEFAULT 0,
	branch_id UUID,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	deleted_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS doctor_mirrors (
	doctor_id UUID PRIMARY KEY,
	clinic_id UUID NOT NULL REFERENCES clinics(id),
	name TEXT NOT NULL,
	specialty TEXT NOT NULL DEFAULT '',
	patients_count INTEGER NOT NULL DEFAULT 0,
	synced_at TIMESTAMPTZ NOT NULL
);
`

// MigrateTenant applies the tenant schema. Used as the Registry's
// Migrator during provisioning.
func MigrateTenant(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, tenantSchema); err != nil {
		return fmt.Errorf("failed to apply tenant schema: %w", err)
	}
	return nil
}

// MigrateCentral applies the directory schema at startup.
func MigrateCentral(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, centralSchema); err != nil {
		return fmt.Errorf("failed to apply central schema: %w", err)
	}
	return nil
}

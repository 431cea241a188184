package database

import (
	"context"
	"fmt"
)

// schema 同时兼容 PostgreSQL 与 SQLite，列表/映射字段以 JSON 文本存储
var schema = []string{
	`CREATE TABLE IF NOT EXISTS staff (
		id                       TEXT PRIMARY KEY,
		name                     TEXT NOT NULL,
		qualifications           TEXT NOT NULL DEFAULT '[]',
		can_physical_care        BOOLEAN NOT NULL DEFAULT FALSE,
		gender                   TEXT NOT NULL DEFAULT '',
		transportation           TEXT NOT NULL DEFAULT '',
		employment_type          TEXT NOT NULL DEFAULT '',
		weekly_availability      TEXT NOT NULL DEFAULT '{}',
		preferred_hours          TEXT,
		available_hours          TEXT,
		customer_training_status TEXT NOT NULL DEFAULT '{}',
		split_shift_allowed      BOOLEAN NOT NULL DEFAULT FALSE,
		created_at               TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at               TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS customers (
		id                  TEXT PRIMARY KEY,
		name                TEXT NOT NULL,
		address             TEXT NOT NULL DEFAULT '',
		ng_staff_ids        TEXT NOT NULL DEFAULT '[]',
		preferred_staff_ids TEXT NOT NULL DEFAULT '[]',
		gender_requirement  TEXT NOT NULL DEFAULT '',
		weekly_services     TEXT NOT NULL DEFAULT '{}',
		household_id        TEXT NOT NULL DEFAULT '',
		service_manager     TEXT NOT NULL DEFAULT '',
		created_at          TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at          TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id                 TEXT PRIMARY KEY,
		customer_id        TEXT NOT NULL,
		week_start_date    TEXT NOT NULL,
		date               TEXT NOT NULL,
		start_time         TEXT NOT NULL,
		end_time           TEXT NOT NULL,
		service_type       TEXT NOT NULL,
		assigned_staff_ids TEXT NOT NULL DEFAULT '[]',
		staff_count        INTEGER,
		status             TEXT NOT NULL DEFAULT 'pending',
		linked_order_id    TEXT NOT NULL DEFAULT '',
		manually_edited    BOOLEAN NOT NULL DEFAULT FALSE,
		created_at         TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at         TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_date ON orders (date)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_week ON orders (week_start_date)`,
	`CREATE TABLE IF NOT EXISTS staff_unavailability (
		id                TEXT PRIMARY KEY,
		staff_id          TEXT NOT NULL,
		week_start_date   TEXT NOT NULL,
		unavailable_slots TEXT NOT NULL DEFAULT '[]',
		notes             TEXT NOT NULL DEFAULT '',
		created_at        TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at        TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS service_types (
		code                        TEXT PRIMARY KEY,
		label                       TEXT NOT NULL,
		short_label                 TEXT NOT NULL DEFAULT '',
		requires_physical_care_cert BOOLEAN NOT NULL DEFAULT FALSE,
		sort_order                  INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS travel_times (
		from_id             TEXT NOT NULL,
		to_id               TEXT NOT NULL,
		travel_time_minutes INTEGER NOT NULL,
		PRIMARY KEY (from_id, to_id)
	)`,
	`CREATE TABLE IF NOT EXISTS optimization_runs (
		id                 TEXT PRIMARY KEY,
		week_start_date    TEXT NOT NULL,
		status             TEXT NOT NULL,
		objective_value    DOUBLE PRECISION NOT NULL DEFAULT 0,
		solve_time_seconds DOUBLE PRECISION NOT NULL DEFAULT 0,
		total_orders       INTEGER NOT NULL DEFAULT 0,
		assigned_count     INTEGER NOT NULL DEFAULT 0,
		dry_run            BOOLEAN NOT NULL DEFAULT FALSE,
		assignments        TEXT NOT NULL DEFAULT '[]',
		created_at         TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at         TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

// Migrate 执行建表
func (db *DB) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := db.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("迁移 %d 失败: %w", i, err)
		}
	}
	return nil
}

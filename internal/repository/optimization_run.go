package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/paiban/visitcare/pkg/model"
)

// OptimizationRunRepository 优化执行记录仓储
type OptimizationRunRepository struct {
	db DB
}

// NewOptimizationRunRepository 创建优化执行记录仓储
func NewOptimizationRunRepository(db DB) *OptimizationRunRepository {
	return &OptimizationRunRepository{db: db}
}

// Create 写入一次优化记录
func (r *OptimizationRunRepository) Create(ctx context.Context, run *model.OptimizationRun) error {
	if run.ID == "" {
		run.ID = model.NewID()
	}
	now := time.Now()
	run.CreatedAt = now
	run.UpdatedAt = now

	assignments, err := toJSON(run.Assignments, "[]")
	if err != nil {
		return fmt.Errorf("序列化分配结果失败: %w", err)
	}

	query := `
		INSERT INTO optimization_runs (
			id, week_start_date, status, objective_value, solve_time_seconds,
			total_orders, assigned_count, dry_run, assignments, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = r.db.ExecContext(ctx, query,
		run.ID, run.WeekStartDate, string(run.Status), run.ObjectiveValue, run.SolveTimeSeconds,
		run.TotalOrders, run.AssignedCount, run.DryRun, assignments, run.CreatedAt, run.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("创建优化记录失败: %w", err)
	}
	return nil
}

// LatestForWeek 获取某周最近一次优化记录，没有记录时返回 ErrNotFound
func (r *OptimizationRunRepository) LatestForWeek(ctx context.Context, weekStart string) (*model.OptimizationRun, error) {
	query := `
		SELECT id, week_start_date, status, objective_value, solve_time_seconds,
			total_orders, assigned_count, dry_run, assignments, created_at, updated_at
		FROM optimization_runs
		WHERE week_start_date = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	var (
		run         model.OptimizationRun
		status      string
		assignments string
	)
	err := r.db.QueryRowContext(ctx, query, weekStart).Scan(
		&run.ID, &run.WeekStartDate, &status, &run.ObjectiveValue, &run.SolveTimeSeconds,
		&run.TotalOrders, &run.AssignedCount, &run.DryRun, &assignments, &run.CreatedAt, &run.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("查询优化记录失败: %w", err)
	}
	run.Status = model.OptimizationStatus(status)
	if err := fromJSON(assignments, &run.Assignments); err != nil {
		return nil, fmt.Errorf("解析分配结果失败: %w", err)
	}
	return &run, nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/paiban/visitcare/pkg/model"
)

const orderColumns = `id, customer_id, week_start_date, date, start_time, end_time, service_type,
	assigned_staff_ids, staff_count, status, linked_order_id, manually_edited, created_at, updated_at`

// OrderRepository 订单仓储
type OrderRepository struct {
	db  DB
	now func() time.Time
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db DB) *OrderRepository {
	return &OrderRepository{db: db, now: time.Now}
}

// Create 创建订单
func (r *OrderRepository) Create(ctx context.Context, o *model.Order) error {
	if o.ID == "" {
		o.ID = model.NewID()
	}
	now := r.now()
	o.CreatedAt = now
	o.UpdatedAt = now
	if o.Status == "" {
		o.Status = model.OrderPending
	}

	rosterJSON, err := toJSON(o.AssignedStaffIDs, "[]")
	if err != nil {
		return fmt.Errorf("序列化服务名单失败: %w", err)
	}
	var staffCount sql.NullInt64
	if o.StaffCount != nil {
		staffCount = sql.NullInt64{Int64: int64(*o.StaffCount), Valid: true}
	}

	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err = r.db.ExecContext(ctx, query,
		o.ID, o.CustomerID, o.WeekStartDate, o.Date, o.StartTime, o.EndTime, o.ServiceType,
		rosterJSON, staffCount, string(o.Status), o.LinkedOrderID, o.ManuallyEdited, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("创建订单失败: %w", err)
	}
	return nil
}

// GetByID 根据ID获取订单
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	o, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return o, err
}

// ListByDate 获取某天的全部订单
func (r *OrderRepository) ListByDate(ctx context.Context, date string) ([]*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE date = $1 ORDER BY start_time, id`
	return r.list(ctx, query, date)
}

// ListByWeek 获取某周的全部订单
func (r *OrderRepository) ListByWeek(ctx context.Context, weekStart string) ([]*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE week_start_date = $1 ORDER BY date, start_time, id`
	return r.list(ctx, query, weekStart)
}

func (r *OrderRepository) list(ctx context.Context, query string, args ...interface{}) ([]*model.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("查询订单失败: %w", err)
	}
	defer rows.Close()

	var orders []*model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// SetRoster 写入服务名单并标记为手动编辑
func (r *OrderRepository) SetRoster(ctx context.Context, id string, staffIDs []string) error {
	rosterJSON, err := toJSON(staffIDs, "[]")
	if err != nil {
		return fmt.Errorf("序列化服务名单失败: %w", err)
	}
	query := `UPDATE orders SET assigned_staff_ids = $2, manually_edited = $3, updated_at = $4 WHERE id = $1`
	return r.exec(ctx, "更新服务名单", query, id, rosterJSON, true, r.now())
}

// SetRosterAndTime 同时写入服务名单与时间段
func (r *OrderRepository) SetRosterAndTime(ctx context.Context, id string, staffIDs []string, startTime, endTime string) error {
	rosterJSON, err := toJSON(staffIDs, "[]")
	if err != nil {
		return fmt.Errorf("序列化服务名单失败: %w", err)
	}
	query := `
		UPDATE orders SET assigned_staff_ids = $2, start_time = $3, end_time = $4,
			manually_edited = $5, updated_at = $6
		WHERE id = $1
	`
	return r.exec(ctx, "更新服务名单与时间", query, id, rosterJSON, startTime, endTime, true, r.now())
}

// Unassign 清空服务名单，已分配订单回到待分配
func (r *OrderRepository) Unassign(ctx context.Context, id string) error {
	query := `
		UPDATE orders SET assigned_staff_ids = '[]', manually_edited = $2, updated_at = $3,
			status = CASE WHEN status = 'assigned' THEN 'pending' ELSE status END
		WHERE id = $1
	`
	return r.exec(ctx, "取消分配", query, id, true, r.now())
}

// SetStatus 更新订单状态
func (r *OrderRepository) SetStatus(ctx context.Context, id string, status model.OrderStatus) error {
	query := `UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`
	return r.exec(ctx, "更新订单状态", query, id, string(status), r.now())
}

// BulkSetStatus 批量更新订单状态，返回受影响行数
func (r *OrderRepository) BulkSetStatus(ctx context.Context, ids []string, status model.OrderStatus) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := make([]interface{}, 0, len(ids)+2)
	args = append(args, string(status), r.now())
	for _, id := range ids {
		args = append(args, id)
	}
	query := fmt.Sprintf(`UPDATE orders SET status = $1, updated_at = $2 WHERE id IN (%s)`, placeholders(3, len(ids)))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("批量更新订单状态失败: %w", err)
	}
	return result.RowsAffected()
}

// ApplyAssignments 在一个事务内写入优化结果，返回更新的订单数
// 待分配订单拿到非空名单后转为已分配，手动编辑标记清除
func (r *OrderRepository) ApplyAssignments(ctx context.Context, records []model.AssignmentRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	query := `
		UPDATE orders SET assigned_staff_ids = $2, manually_edited = $3, updated_at = $4,
			status = CASE WHEN status = 'pending' AND $5 THEN 'assigned' ELSE status END
		WHERE id = $1
	`
	updated := 0
	now := r.now()
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, rec := range records {
			rosterJSON, err := toJSON(rec.StaffIDs, "[]")
			if err != nil {
				return fmt.Errorf("序列化服务名单失败: %w", err)
			}
			result, err := tx.ExecContext(ctx, query, rec.OrderID, rosterJSON, false, now, len(rec.StaffIDs) > 0)
			if err != nil {
				return fmt.Errorf("写入优化结果失败 (%s): %w", rec.OrderID, err)
			}
			if n, _ := result.RowsAffected(); n > 0 {
				updated++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

func (r *OrderRepository) exec(ctx context.Context, op, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s失败: %w", op, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func scanOrder(s Scanner) (*model.Order, error) {
	var (
		o          model.Order
		rosterJSON string
		staffCount sql.NullInt64
		status     string
	)
	err := s.Scan(
		&o.ID, &o.CustomerID, &o.WeekStartDate, &o.Date, &o.StartTime, &o.EndTime, &o.ServiceType,
		&rosterJSON, &staffCount, &status, &o.LinkedOrderID, &o.ManuallyEdited, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("扫描订单失败: %w", err)
	}
	if err := fromJSON(rosterJSON, &o.AssignedStaffIDs); err != nil {
		return nil, fmt.Errorf("解析服务名单失败: %w", err)
	}
	if staffCount.Valid {
		n := int(staffCount.Int64)
		o.StaffCount = &n
	}
	o.Status = model.OrderStatus(status)
	return &o, nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/paiban/visitcare/pkg/model"
)

// ReferenceRepository 主数据仓储（服务人员、客户、请假、服务类型、移动时间）
type ReferenceRepository struct {
	db DB
}

// NewReferenceRepository 创建主数据仓储
func NewReferenceRepository(db DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

// ListStaff 获取全部服务人员
func (r *ReferenceRepository) ListStaff(ctx context.Context) ([]*model.Staff, error) {
	query := `
		SELECT id, name, qualifications, can_physical_care, gender, transportation, employment_type,
			weekly_availability, preferred_hours, available_hours, customer_training_status,
			split_shift_allowed, created_at, updated_at
		FROM staff
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询服务人员失败: %w", err)
	}
	defer rows.Close()

	var out []*model.Staff
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// CreateStaff 写入服务人员
func (r *ReferenceRepository) CreateStaff(ctx context.Context, s *model.Staff) error {
	if s.ID == "" {
		s.ID = model.NewID()
	}
	name, err := toJSON(s.Name, "{}")
	if err != nil {
		return err
	}
	quals, _ := toJSON(s.Qualifications, "[]")
	avail, _ := toJSON(s.WeeklyAvailability, "{}")
	training, _ := toJSON(s.CustomerTrainingStatus, "{}")
	preferred := nullableJSON(s.PreferredHours != nil, s.PreferredHours)
	available := nullableJSON(s.AvailableHours != nil, s.AvailableHours)

	query := `
		INSERT INTO staff (
			id, name, qualifications, can_physical_care, gender, transportation, employment_type,
			weekly_availability, preferred_hours, available_hours, customer_training_status, split_shift_allowed
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = r.db.ExecContext(ctx, query,
		s.ID, name, quals, s.CanPhysicalCare, string(s.Gender), string(s.Transportation), string(s.EmploymentType),
		avail, preferred, available, training, s.SplitShiftAllowed,
	)
	if err != nil {
		return fmt.Errorf("创建服务人员失败: %w", err)
	}
	return nil
}

// ListCustomers 获取全部客户
func (r *ReferenceRepository) ListCustomers(ctx context.Context) ([]*model.Customer, error) {
	query := `
		SELECT id, name, address, ng_staff_ids, preferred_staff_ids, gender_requirement,
			weekly_services, household_id, service_manager, created_at, updated_at
		FROM customers
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询客户失败: %w", err)
	}
	defer rows.Close()

	var out []*model.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CreateCustomer 写入客户
func (r *ReferenceRepository) CreateCustomer(ctx context.Context, c *model.Customer) error {
	if c.ID == "" {
		c.ID = model.NewID()
	}
	name, err := toJSON(c.Name, "{}")
	if err != nil {
		return err
	}
	ng, _ := toJSON(c.NGStaffIDs, "[]")
	pref, _ := toJSON(c.PreferredStaffIDs, "[]")
	services, _ := toJSON(c.WeeklyServices, "{}")

	query := `
		INSERT INTO customers (
			id, name, address, ng_staff_ids, preferred_staff_ids, gender_requirement,
			weekly_services, household_id, service_manager
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = r.db.ExecContext(ctx, query,
		c.ID, name, c.Address, ng, pref, string(c.GenderRequirement), services, c.HouseholdID, c.ServiceManager,
	)
	if err != nil {
		return fmt.Errorf("创建客户失败: %w", err)
	}
	return nil
}

// ListUnavailability 获取某周的请假申报
func (r *ReferenceRepository) ListUnavailability(ctx context.Context, weekStart string) ([]*model.StaffUnavailability, error) {
	query := `
		SELECT id, staff_id, week_start_date, unavailable_slots, notes, created_at, updated_at
		FROM staff_unavailability
		WHERE week_start_date = $1
		ORDER BY staff_id, id
	`
	rows, err := r.db.QueryContext(ctx, query, weekStart)
	if err != nil {
		return nil, fmt.Errorf("查询请假申报失败: %w", err)
	}
	defer rows.Close()

	var out []*model.StaffUnavailability
	for rows.Next() {
		var (
			u         model.StaffUnavailability
			slotsJSON string
		)
		if err := rows.Scan(&u.ID, &u.StaffID, &u.WeekStartDate, &slotsJSON, &u.Notes, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("扫描请假申报失败: %w", err)
		}
		if err := fromJSON(slotsJSON, &u.Slots); err != nil {
			return nil, fmt.Errorf("解析请假时段失败: %w", err)
		}
		out = append(out, &u)
	}
	return out, rows.Err()
}

// CreateUnavailability 写入请假申报
func (r *ReferenceRepository) CreateUnavailability(ctx context.Context, u *model.StaffUnavailability) error {
	if u.ID == "" {
		u.ID = model.NewID()
	}
	slots, err := toJSON(u.Slots, "[]")
	if err != nil {
		return err
	}
	query := `
		INSERT INTO staff_unavailability (id, staff_id, week_start_date, unavailable_slots, notes)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.db.ExecContext(ctx, query, u.ID, u.StaffID, u.WeekStartDate, slots, u.Notes); err != nil {
		return fmt.Errorf("创建请假申报失败: %w", err)
	}
	return nil
}

// ListServiceTypes 获取服务类型登记
func (r *ReferenceRepository) ListServiceTypes(ctx context.Context) ([]model.ServiceTypeDoc, error) {
	query := `
		SELECT code, label, short_label, requires_physical_care_cert, sort_order
		FROM service_types
		ORDER BY sort_order, code
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询服务类型失败: %w", err)
	}
	defer rows.Close()

	var out []model.ServiceTypeDoc
	for rows.Next() {
		var d model.ServiceTypeDoc
		if err := rows.Scan(&d.Code, &d.Label, &d.ShortLabel, &d.RequiresPhysicalCareCert, &d.SortOrder); err != nil {
			return nil, fmt.Errorf("扫描服务类型失败: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// UpsertServiceType 写入或覆盖服务类型
func (r *ReferenceRepository) UpsertServiceType(ctx context.Context, d model.ServiceTypeDoc) error {
	query := `
		INSERT INTO service_types (code, label, short_label, requires_physical_care_cert, sort_order)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (code) DO UPDATE SET
			label = excluded.label, short_label = excluded.short_label,
			requires_physical_care_cert = excluded.requires_physical_care_cert, sort_order = excluded.sort_order
	`
	if _, err := r.db.ExecContext(ctx, query, d.Code, d.Label, d.ShortLabel, d.RequiresPhysicalCareCert, d.SortOrder); err != nil {
		return fmt.Errorf("写入服务类型失败: %w", err)
	}
	return nil
}

// ListTravelTimes 获取全部移动时间
func (r *ReferenceRepository) ListTravelTimes(ctx context.Context) ([]model.TravelTimeEntry, error) {
	query := `SELECT from_id, to_id, travel_time_minutes FROM travel_times`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询移动时间失败: %w", err)
	}
	defer rows.Close()

	var out []model.TravelTimeEntry
	for rows.Next() {
		var e model.TravelTimeEntry
		if err := rows.Scan(&e.FromID, &e.ToID, &e.Minutes); err != nil {
			return nil, fmt.Errorf("扫描移动时间失败: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// SaveTravelTimes 批量写入移动时间
func (r *ReferenceRepository) SaveTravelTimes(ctx context.Context, entries []model.TravelTimeEntry) error {
	query := `
		INSERT INTO travel_times (from_id, to_id, travel_time_minutes) VALUES ($1, $2, $3)
		ON CONFLICT (from_id, to_id) DO UPDATE SET travel_time_minutes = excluded.travel_time_minutes
	`
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, e := range entries {
			if _, err := tx.ExecContext(ctx, query, e.FromID, e.ToID, e.Minutes); err != nil {
				return fmt.Errorf("写入移动时间失败: %w", err)
			}
		}
		return nil
	})
}

func nullableJSON(valid bool, v interface{}) sql.NullString {
	if !valid {
		return sql.NullString{}
	}
	s, err := toJSON(v, "")
	if err != nil || s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func scanStaff(s Scanner) (*model.Staff, error) {
	var (
		st                                 model.Staff
		name, quals, avail, training       string
		gender, transportation, employment string
		preferredHours, availableHours     sql.NullString
	)
	err := s.Scan(
		&st.ID, &name, &quals, &st.CanPhysicalCare, &gender, &transportation, &employment,
		&avail, &preferredHours, &availableHours, &training,
		&st.SplitShiftAllowed, &st.CreatedAt, &st.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("扫描服务人员失败: %w", err)
	}
	st.Gender = model.Gender(gender)
	st.Transportation = model.TransportationType(transportation)
	st.EmploymentType = model.EmploymentType(employment)

	if err := fromJSON(name, &st.Name); err != nil {
		return nil, fmt.Errorf("解析姓名失败: %w", err)
	}
	if err := fromJSON(quals, &st.Qualifications); err != nil {
		return nil, fmt.Errorf("解析资格失败: %w", err)
	}
	if err := fromJSON(avail, &st.WeeklyAvailability); err != nil {
		return nil, fmt.Errorf("解析可工作时间失败: %w", err)
	}
	if err := fromJSON(training, &st.CustomerTrainingStatus); err != nil {
		return nil, fmt.Errorf("解析熟悉程度失败: %w", err)
	}
	if preferredHours.Valid {
		st.PreferredHours = &model.HourRange{}
		if err := fromJSON(preferredHours.String, st.PreferredHours); err != nil {
			return nil, fmt.Errorf("解析期望工时失败: %w", err)
		}
	}
	if availableHours.Valid {
		st.AvailableHours = &model.HourRange{}
		if err := fromJSON(availableHours.String, st.AvailableHours); err != nil {
			return nil, fmt.Errorf("解析可用工时失败: %w", err)
		}
	}
	return &st, nil
}

func scanCustomer(s Scanner) (*model.Customer, error) {
	var (
		c                        model.Customer
		name, ng, pref, services string
		genderReq                string
	)
	err := s.Scan(
		&c.ID, &name, &c.Address, &ng, &pref, &genderReq,
		&services, &c.HouseholdID, &c.ServiceManager, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("扫描客户失败: %w", err)
	}
	c.GenderRequirement = model.GenderRequirement(genderReq)

	if err := fromJSON(name, &c.Name); err != nil {
		return nil, fmt.Errorf("解析姓名失败: %w", err)
	}
	if err := fromJSON(ng, &c.NGStaffIDs); err != nil {
		return nil, fmt.Errorf("解析NG名单失败: %w", err)
	}
	if err := fromJSON(pref, &c.PreferredStaffIDs); err != nil {
		return nil, fmt.Errorf("解析偏好人员失败: %w", err)
	}
	if err := fromJSON(services, &c.WeeklyServices); err != nil {
		return nil, fmt.Errorf("解析固定服务时段失败: %w", err)
	}
	return &c, nil
}

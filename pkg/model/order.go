package model

// OrderStatus 订单状态
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"   // 待分配
	OrderAssigned  OrderStatus = "assigned"  // 已分配
	OrderCompleted OrderStatus = "completed" // 已完成
	OrderCancelled OrderStatus = "cancelled" // 已取消
)

// AllOrderStatuses 全部订单状态
var AllOrderStatuses = []OrderStatus{OrderPending, OrderAssigned, OrderCompleted, OrderCancelled}

// IsTerminal 是否为终态
func (s OrderStatus) IsTerminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

// Order 一次上门服务（某客户某天的一个时间段）
type Order struct {
	BaseModel
	CustomerID       string      `json:"customer_id" db:"customer_id"`
	WeekStartDate    string      `json:"week_start_date" db:"week_start_date"` // YYYY-MM-DD（周一）
	Date             string      `json:"date" db:"date"`                       // YYYY-MM-DD
	StartTime        string      `json:"start_time" db:"start_time"`           // HH:MM
	EndTime          string      `json:"end_time" db:"end_time"`               // HH:MM
	ServiceType      string      `json:"service_type" db:"service_type"`
	AssignedStaffIDs []string    `json:"assigned_staff_ids" db:"assigned_staff_ids"`
	StaffCount       *int        `json:"staff_count,omitempty" db:"staff_count"`
	Status           OrderStatus `json:"status" db:"status"`
	LinkedOrderID    string      `json:"linked_order_id,omitempty" db:"linked_order_id"`
	ManuallyEdited   bool        `json:"manually_edited" db:"manually_edited"`
}

// IsAssigned 是否已有服务人员
func (o *Order) IsAssigned() bool {
	return len(o.AssignedStaffIDs) > 0
}

// HasStaff 指定人员是否在服务名单中
func (o *Order) HasStaff(staffID string) bool {
	for _, id := range o.AssignedStaffIDs {
		if id == staffID {
			return true
		}
	}
	return false
}

// Clone 返回深拷贝
func (o *Order) Clone() *Order {
	c := *o
	c.AssignedStaffIDs = append([]string(nil), o.AssignedStaffIDs...)
	if o.StaffCount != nil {
		n := *o.StaffCount
		c.StaffCount = &n
	}
	return &c
}

// AssignmentRecord 优化器输出的一条分配
type AssignmentRecord struct {
	OrderID  string   `json:"order_id"`
	StaffIDs []string `json:"staff_ids"`
}

// OptimizationStatus 优化结果状态
type OptimizationStatus string

const (
	OptimizationOptimal    OptimizationStatus = "Optimal"
	OptimizationFeasible   OptimizationStatus = "Feasible"
	OptimizationInfeasible OptimizationStatus = "Infeasible"
	OptimizationNotSolved  OptimizationStatus = "Not Solved"
)

// OptimizationRun 一次优化执行记录
type OptimizationRun struct {
	BaseModel
	WeekStartDate    string             `json:"week_start_date" db:"week_start_date"`
	Status           OptimizationStatus `json:"status" db:"status"`
	ObjectiveValue   float64            `json:"objective_value" db:"objective_value"`
	SolveTimeSeconds float64            `json:"solve_time_seconds" db:"solve_time_seconds"`
	TotalOrders      int                `json:"total_orders" db:"total_orders"`
	AssignedCount    int                `json:"assigned_count" db:"assigned_count"`
	DryRun           bool               `json:"dry_run" db:"dry_run"`
	Assignments      []AssignmentRecord `json:"assignments" db:"assignments"`
}

// RosterOf 返回某订单在该次优化中的服务名单
func (r *OptimizationRun) RosterOf(orderID string) ([]string, bool) {
	for _, a := range r.Assignments {
		if a.OrderID == orderID {
			return a.StaffIDs, true
		}
	}
	return nil, false
}

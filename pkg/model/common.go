// Package model 定义上门护理派单引擎的核心数据模型
package model

import (
	"time"

	"github.com/google/uuid"
)

// BaseModel 基础模型（包含通用字段）
type BaseModel struct {
	ID        string    `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at,omitempty" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at,omitempty" db:"updated_at"`
}

// NewBaseModel 创建新的基础模型
func NewBaseModel() BaseModel {
	now := time.Now()
	return BaseModel{
		ID:        NewID(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewID 生成新的文档ID
func NewID() string {
	return uuid.New().String()
}

// DayOfWeek 星期
type DayOfWeek string

const (
	Monday    DayOfWeek = "monday"
	Tuesday   DayOfWeek = "tuesday"
	Wednesday DayOfWeek = "wednesday"
	Thursday  DayOfWeek = "thursday"
	Friday    DayOfWeek = "friday"
	Saturday  DayOfWeek = "saturday"
	Sunday    DayOfWeek = "sunday"
)

// AllDays 一周七天（周一开始）
var AllDays = []DayOfWeek{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var weekdayToDay = map[time.Weekday]DayOfWeek{
	time.Monday:    Monday,
	time.Tuesday:   Tuesday,
	time.Wednesday: Wednesday,
	time.Thursday:  Thursday,
	time.Friday:    Friday,
	time.Saturday:  Saturday,
	time.Sunday:    Sunday,
}

// DayOfWeekOf 返回 YYYY-MM-DD 日期对应的星期
func DayOfWeekOf(date string) (DayOfWeek, bool) {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return "", false
	}
	return weekdayToDay[t.Weekday()], true
}

const dateLayout = "2006-01-02"

// WeekStartOf 返回日期所在周的周一
func WeekStartOf(date string) (string, bool) {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return "", false
	}
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset).Format(dateLayout), true
}

// WeekDates 返回从周一开始的七个日期
func WeekDates(weekStart string) ([]string, bool) {
	t, err := time.Parse(dateLayout, weekStart)
	if err != nil || t.Weekday() != time.Monday {
		return nil, false
	}
	out := make([]string, 7)
	for i := range out {
		out[i] = t.AddDate(0, 0, i).Format(dateLayout)
	}
	return out, true
}

// IsValid 检查星期是否合法
func (d DayOfWeek) IsValid() bool {
	for _, day := range AllDays {
		if d == day {
			return true
		}
	}
	return false
}

// Gender 性别
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// GenderRequirement 客户对服务人员的性别要求
type GenderRequirement string

const (
	GenderAny           GenderRequirement = "any"
	GenderRequireFemale GenderRequirement = "female"
	GenderRequireMale   GenderRequirement = "male"
)

// Satisfies 检查性别是否满足要求，空值视为不限
func (r GenderRequirement) Satisfies(g Gender) bool {
	switch r {
	case "", GenderAny:
		return true
	default:
		return string(r) == string(g)
	}
}

// TrainingStatus 服务人员对某客户的熟悉程度
type TrainingStatus string

const (
	TrainingNotVisited  TrainingStatus = "not_visited" // 未访问
	TrainingInProgress  TrainingStatus = "training"    // 同行培训中
	TrainingIndependent TrainingStatus = "independent" // 可独立服务
)

// EmploymentType 雇佣形式
type EmploymentType string

const (
	EmploymentFullTime EmploymentType = "full_time"
	EmploymentPartTime EmploymentType = "part_time"
)

// TransportationType 交通方式
type TransportationType string

const (
	TransportCar     TransportationType = "car"
	TransportBicycle TransportationType = "bicycle"
	TransportWalk    TransportationType = "walk"
	TransportOther   TransportationType = "other"
)

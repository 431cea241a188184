package model

// UnavailableSlot 请假时段
type UnavailableSlot struct {
	Date      string `json:"date"` // YYYY-MM-DD，空表示整周适用
	AllDay    bool   `json:"all_day"`
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
}

// AppliesTo 该时段是否作用于某日期
func (s UnavailableSlot) AppliesTo(date string) bool {
	return s.Date == "" || s.Date == date
}

// StaffUnavailability 服务人员某周的请假申报
type StaffUnavailability struct {
	BaseModel
	StaffID       string            `json:"staff_id" db:"staff_id"`
	WeekStartDate string            `json:"week_start_date" db:"week_start_date"`
	Slots         []UnavailableSlot `json:"unavailable_slots" db:"unavailable_slots"`
	Notes         string            `json:"notes,omitempty" db:"notes"`
}

// SlotsOn 返回某人员在某日期的请假时段
func SlotsOn(entries []*StaffUnavailability, staffID, date string) []UnavailableSlot {
	var out []UnavailableSlot
	for _, u := range entries {
		if u == nil || u.StaffID != staffID {
			continue
		}
		for _, s := range u.Slots {
			if s.AppliesTo(date) {
				out = append(out, s)
			}
		}
	}
	return out
}

// TravelTimeEntry 两个客户之间的预计算移动时间
type TravelTimeEntry struct {
	FromID  string `json:"from_id" db:"from_id"`
	ToID    string `json:"to_id" db:"to_id"`
	Minutes int    `json:"travel_time_minutes" db:"travel_time_minutes"`
}

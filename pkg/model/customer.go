package model

// ServiceSlot 客户每周固定服务时段
type ServiceSlot struct {
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	ServiceType string `json:"service_type"`
	StaffCount  int    `json:"staff_count"`
}

// Customer 服务对象
type Customer struct {
	BaseModel
	Name              PersonName                  `json:"name" db:"name"`
	Address           string                      `json:"address,omitempty" db:"address"`
	NGStaffIDs        []string                    `json:"ng_staff_ids" db:"ng_staff_ids"`
	PreferredStaffIDs []string                    `json:"preferred_staff_ids" db:"preferred_staff_ids"`
	GenderRequirement GenderRequirement           `json:"gender_requirement,omitempty" db:"gender_requirement"`
	WeeklyServices    map[DayOfWeek][]ServiceSlot `json:"weekly_services,omitempty" db:"weekly_services"`
	HouseholdID       string                      `json:"household_id,omitempty" db:"household_id"`
	ServiceManager    string                      `json:"service_manager,omitempty" db:"service_manager"`
}

// IsNG 该人员是否被客户列入禁止名单
func (c *Customer) IsNG(staffID string) bool {
	return contains(c.NGStaffIDs, staffID)
}

// IsPreferred 该人员是否为客户偏好人员
func (c *Customer) IsPreferred(staffID string) bool {
	return contains(c.PreferredStaffIDs, staffID)
}

// HasPreferences 客户是否设置了偏好人员
func (c *Customer) HasPreferences() bool {
	return len(c.PreferredStaffIDs) > 0
}

// ServicesOn 返回某天的固定服务时段
func (c *Customer) ServicesOn(day DayOfWeek) []ServiceSlot {
	if c.WeeklyServices == nil {
		return nil
	}
	return c.WeeklyServices[day]
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

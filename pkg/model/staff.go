package model

import "strings"

// PersonName 姓名
type PersonName struct {
	Family string `json:"family"`
	Given  string `json:"given"`
	Short  string `json:"short,omitempty"`
}

// String 返回完整姓名
func (n PersonName) String() string {
	return strings.TrimSpace(n.Family + " " + n.Given)
}

// AvailabilitySlot 可工作时间窗
type AvailabilitySlot struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// HourRange 周工时范围
type HourRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Staff 服务人员
type Staff struct {
	BaseModel
	Name            PersonName         `json:"name" db:"name"`
	Qualifications  []string           `json:"qualifications" db:"qualifications"`
	CanPhysicalCare bool               `json:"can_physical_care" db:"can_physical_care"`
	Gender          Gender             `json:"gender" db:"gender"`
	Transportation  TransportationType `json:"transportation,omitempty" db:"transportation"`
	EmploymentType  EmploymentType     `json:"employment_type,omitempty" db:"employment_type"`

	// key 存在但列表为空表示当天已定义但无可工作时间
	WeeklyAvailability map[DayOfWeek][]AvailabilitySlot `json:"weekly_availability,omitempty" db:"weekly_availability"`
	PreferredHours     *HourRange                       `json:"preferred_hours,omitempty" db:"preferred_hours"`
	AvailableHours     *HourRange                       `json:"available_hours,omitempty" db:"available_hours"`

	CustomerTrainingStatus map[string]TrainingStatus `json:"customer_training_status,omitempty" db:"customer_training_status"`
	SplitShiftAllowed      bool                      `json:"split_shift_allowed,omitempty" db:"split_shift_allowed"`
}

// DisplayName 用于提示信息的名称
func (s *Staff) DisplayName() string {
	if s.Name.Short != "" {
		return s.Name.Short
	}
	if n := s.Name.String(); n != "" {
		return n
	}
	return s.ID
}

// AvailabilityOn 返回某天的可工作时间窗，第二个返回值表示当天是否有定义
func (s *Staff) AvailabilityOn(day DayOfWeek) ([]AvailabilitySlot, bool) {
	if s.WeeklyAvailability == nil {
		return nil, false
	}
	slots, ok := s.WeeklyAvailability[day]
	return slots, ok
}

// TrainingStatusFor 返回对某客户的熟悉程度，未记录时返回空
func (s *Staff) TrainingStatusFor(customerID string) TrainingStatus {
	if s.CustomerTrainingStatus == nil {
		return ""
	}
	return s.CustomerTrainingStatus[customerID]
}

// HasQualification 是否持有某资格
func (s *Staff) HasQualification(q string) bool {
	for _, have := range s.Qualifications {
		if have == q {
			return true
		}
	}
	return false
}

package model

import (
	"testing"
)

func TestDayOfWeekOf(t *testing.T) {
	tests := []struct {
		date     string
		expected DayOfWeek
		ok       bool
	}{
		{"2026-02-09", Monday, true},
		{"2026-02-15", Sunday, true},
		{"2026-02-11", Wednesday, true},
		{"2026/02/11", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			day, ok := DayOfWeekOf(tt.date)
			if ok != tt.ok || day != tt.expected {
				t.Errorf("DayOfWeekOf(%s) = %s, %v; want %s, %v", tt.date, day, ok, tt.expected, tt.ok)
			}
		})
	}
}

func TestWeekStartOf(t *testing.T) {
	tests := map[string]string{
		"2026-02-09": "2026-02-09",
		"2026-02-11": "2026-02-09",
		"2026-02-15": "2026-02-09",
		"2026-03-01": "2026-02-23",
	}
	for date, want := range tests {
		got, ok := WeekStartOf(date)
		if !ok || got != want {
			t.Errorf("WeekStartOf(%s) = %s, %v; want %s", date, got, ok, want)
		}
	}
	if _, ok := WeekStartOf("bad"); ok {
		t.Error("非法日期应返回 false")
	}
}

func TestWeekDates(t *testing.T) {
	dates, ok := WeekDates("2026-02-23")
	if !ok || len(dates) != 7 {
		t.Fatalf("WeekDates = %v, %v", dates, ok)
	}
	if dates[0] != "2026-02-23" || dates[6] != "2026-03-01" {
		t.Errorf("WeekDates = %v", dates)
	}
	if _, ok := WeekDates("2026-02-24"); ok {
		t.Error("非周一应返回 false")
	}
}

func TestServiceTypeRegistry_RequiresPhysicalCare(t *testing.T) {
	reg := NewServiceTypeRegistry([]ServiceTypeDoc{
		{Code: ServiceDailyLiving, RequiresPhysicalCareCert: false},
		{Code: ServiceSevereVisiting, RequiresPhysicalCareCert: true},
		{Code: ServiceMixed, RequiresPhysicalCareCert: false},
	})

	tests := []struct {
		name     string
		reg      ServiceTypeRegistry
		code     string
		expected bool
	}{
		{"登记表优先", reg, ServiceSevereVisiting, true},
		{"登记表可覆盖内置规则", reg, ServiceMixed, false},
		{"未登记回退内置规则", reg, ServicePhysicalCare, true},
		{"无登记表-身体护理", nil, ServicePhysicalCare, true},
		{"无登记表-混合", nil, ServiceMixed, true},
		{"无登记表-生活援助", nil, ServiceDailyLiving, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.reg.RequiresPhysicalCare(tt.code); got != tt.expected {
				t.Errorf("RequiresPhysicalCare(%s) = %v, want %v", tt.code, got, tt.expected)
			}
		})
	}
}

func TestGenderRequirement_Satisfies(t *testing.T) {
	if !GenderRequirement("").Satisfies(GenderMale) {
		t.Error("空要求应视为不限")
	}
	if !GenderAny.Satisfies(GenderFemale) {
		t.Error("any 应不限性别")
	}
	if GenderRequireFemale.Satisfies(GenderMale) {
		t.Error("女性要求不应接受男性")
	}
	if !GenderRequireFemale.Satisfies(GenderFemale) {
		t.Error("女性要求应接受女性")
	}
}

func TestSlotsOn(t *testing.T) {
	entries := []*StaffUnavailability{
		{StaffID: "H1", Slots: []UnavailableSlot{
			{Date: "2026-02-10", AllDay: true},
			{Date: "2026-02-11", StartTime: "09:00", EndTime: "12:00"},
		}},
		{StaffID: "H2", Slots: []UnavailableSlot{{Date: "2026-02-10", AllDay: true}}},
		nil,
	}

	slots := SlotsOn(entries, "H1", "2026-02-10")
	if len(slots) != 1 || !slots[0].AllDay {
		t.Errorf("Expected 1 all-day slot, got %+v", slots)
	}
	if got := SlotsOn(entries, "H1", "2026-02-12"); len(got) != 0 {
		t.Errorf("Expected no slots, got %+v", got)
	}
}

func TestOrder_Clone(t *testing.T) {
	n := 2
	o := &Order{AssignedStaffIDs: []string{"H1"}, StaffCount: &n}
	c := o.Clone()
	c.AssignedStaffIDs[0] = "H9"
	*c.StaffCount = 3

	if o.AssignedStaffIDs[0] != "H1" || *o.StaffCount != 2 {
		t.Error("Clone 应为深拷贝")
	}
}

func TestSnapshot_OrdersOfStaff(t *testing.T) {
	s := &Snapshot{Orders: []*Order{
		{BaseModel: BaseModel{ID: "O2"}, Date: "2026-02-10", StartTime: "13:00", AssignedStaffIDs: []string{"H1"}},
		{BaseModel: BaseModel{ID: "O1"}, Date: "2026-02-10", StartTime: "09:00", AssignedStaffIDs: []string{"H1", "H2"}},
		{BaseModel: BaseModel{ID: "O3"}, Date: "2026-02-11", StartTime: "09:00", AssignedStaffIDs: []string{"H1"}},
	}}

	got := s.OrdersOfStaff("H1", "2026-02-10")
	if len(got) != 2 || got[0].ID != "O1" || got[1].ID != "O2" {
		t.Errorf("unexpected orders: %+v", got)
	}
}

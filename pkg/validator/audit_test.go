package validator

import (
	"strings"
	"testing"

	"github.com/paiban/visitcare/pkg/constraint"
	"github.com/paiban/visitcare/pkg/model"
)

func auditFixture() *AuditInput {
	return &AuditInput{
		Staff: map[string]*model.Staff{
			"H1": {BaseModel: model.BaseModel{ID: "H1"}, Name: model.PersonName{Short: "佐藤"}, WeeklyAvailability: fullDay()},
			"H2": {BaseModel: model.BaseModel{ID: "H2"}, Name: model.PersonName{Short: "鈴木"}},
		},
		Customers: map[string]*model.Customer{
			"C1": {BaseModel: model.BaseModel{ID: "C1"}},
			"C2": {BaseModel: model.BaseModel{ID: "C2"}},
		},
		Day: model.Tuesday,
	}
}

func order(id, customer, start, end string, staff ...string) *model.Order {
	return &model.Order{
		BaseModel:        model.BaseModel{ID: id},
		CustomerID:       customer,
		Date:             testDate,
		StartTime:        start,
		EndTime:          end,
		ServiceType:      model.ServiceDailyLiving,
		AssignedStaffIDs: staff,
	}
}

func TestAuditor_Clean(t *testing.T) {
	in := auditFixture()
	in.Orders = []*model.Order{
		order("O1", "C1", "09:00", "10:00", "H1"),
		order("O2", "C2", "10:00", "11:00", "H1"),
		order("O3", "C2", "12:00", "13:00"),
	}

	findings := NewAuditor(nil).Audit(in)
	if len(findings) != 0 {
		t.Errorf("Expected no findings, got %+v", findings.Flatten())
	}
}

func TestAuditor_OverlapOnBothOrders(t *testing.T) {
	in := auditFixture()
	in.Orders = []*model.Order{
		order("O1", "C1", "09:00", "10:00", "H1"),
		order("O2", "C2", "09:30", "10:30", "H1"),
	}

	findings := NewAuditor(nil).Audit(in)

	o1 := findings["O1"]
	o2 := findings["O2"]
	if len(o1) != 1 || len(o2) != 1 {
		t.Fatalf("Expected one finding per order, got %+v", findings.Flatten())
	}
	if o1[0].Type != constraint.RuleOverlap || o1[0].Severity != constraint.SeverityError {
		t.Errorf("unexpected finding: %+v", o1[0])
	}
	if !strings.Contains(o1[0].Message, "09:30-10:30") {
		t.Errorf("O1 应引用 O2 的时段: %s", o1[0].Message)
	}
	if !strings.Contains(o2[0].Message, "09:00-10:00") {
		t.Errorf("O2 应引用 O1 的时段: %s", o2[0].Message)
	}
}

func TestAuditor_OverlapScanContinuesPastAdjacent(t *testing.T) {
	// O1 覆盖 O2 和 O3，相邻比较会漏掉 O1-O3
	in := auditFixture()
	in.Orders = []*model.Order{
		order("O1", "C1", "09:00", "12:00", "H1"),
		order("O2", "C2", "09:30", "10:00", "H1"),
		order("O3", "C2", "10:30", "11:00", "H1"),
		order("O4", "C2", "12:00", "13:00", "H1"),
	}

	findings := NewAuditor(nil).Audit(in)
	if got := len(findings["O1"]); got != 2 {
		t.Errorf("O1 findings = %d, want 2", got)
	}
	if got := len(findings["O3"]); got != 1 {
		t.Errorf("O3 findings = %d, want 1", got)
	}
	if _, ok := findings["O4"]; ok {
		t.Error("O4 首尾相接不应有问题")
	}
}

func TestAuditor_OverlapOnlySameDay(t *testing.T) {
	in := auditFixture()
	other := order("O2", "C2", "09:00", "10:00", "H1")
	other.Date = "2026-02-11"
	in.Day = ""
	in.Orders = []*model.Order{order("O1", "C1", "09:00", "10:00", "H1"), other}

	if findings := NewAuditor(nil).Audit(in); len(findings) != 0 {
		t.Errorf("不同日期不应判重叠: %+v", findings.Flatten())
	}
}

func TestAuditor_RuleFindings(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(in *AuditInput)
		expected constraint.RuleType
		severity constraint.Severity
	}{
		{
			name:     "NG人员",
			setup:    func(in *AuditInput) { in.Customers["C1"].NGStaffIDs = []string{"H1"} },
			expected: constraint.RuleNGStaff,
			severity: constraint.SeverityError,
		},
		{
			name:     "资格不足",
			setup:    func(in *AuditInput) { in.Orders[0].ServiceType = model.ServiceMixed },
			expected: constraint.RuleQualification,
			severity: constraint.SeverityError,
		},
		{
			name: "可工作时间外",
			setup: func(in *AuditInput) {
				in.Staff["H1"].WeeklyAvailability = map[model.DayOfWeek][]model.AvailabilitySlot{
					model.Tuesday: {{StartTime: "13:00", EndTime: "18:00"}},
				}
			},
			expected: constraint.RuleOutsideHours,
			severity: constraint.SeverityWarning,
		},
		{
			name: "全天请假",
			setup: func(in *AuditInput) {
				in.Unavailability = []*model.StaffUnavailability{
					{StaffID: "H1", Slots: []model.UnavailableSlot{{Date: testDate, AllDay: true}}},
				}
			},
			expected: constraint.RuleUnavailableAllDay,
			severity: constraint.SeverityError,
		},
		{
			name: "时段请假",
			setup: func(in *AuditInput) {
				in.Unavailability = []*model.StaffUnavailability{
					{StaffID: "H1", Slots: []model.UnavailableSlot{{Date: testDate, StartTime: "09:30", EndTime: "10:30"}}},
				}
			},
			expected: constraint.RuleUnavailable,
			severity: constraint.SeverityError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := auditFixture()
			in.Orders = []*model.Order{order("O1", "C1", "09:00", "10:00", "H1")}
			tt.setup(in)

			findings := NewAuditor(nil).Audit(in)
			list := findings["O1"]
			if len(list) != 1 {
				t.Fatalf("Expected 1 finding, got %+v", list)
			}
			if list[0].Type != tt.expected || list[0].Severity != tt.severity {
				t.Errorf("got %s/%s, want %s/%s", list[0].Type, list[0].Severity, tt.expected, tt.severity)
			}
			if list[0].StaffID != "H1" {
				t.Errorf("StaffID = %s", list[0].StaffID)
			}
		})
	}
}

func TestAuditor_UnknownStaffSkipped(t *testing.T) {
	in := auditFixture()
	in.Customers["C1"].NGStaffIDs = []string{"H9"}
	in.Orders = []*model.Order{order("O1", "C1", "09:00", "10:00", "H9")}

	if findings := NewAuditor(nil).Audit(in); len(findings) != 0 {
		t.Errorf("未知人员应跳过规则检查: %+v", findings.Flatten())
	}
}

func TestFindings_Helpers(t *testing.T) {
	f := Findings{
		"O2": {{OrderID: "O2", Severity: constraint.SeverityWarning}},
		"O1": {{OrderID: "O1", Severity: constraint.SeverityError}, {OrderID: "O1", Severity: constraint.SeverityWarning}},
	}

	errs, warns := f.Count()
	if errs != 1 || warns != 2 {
		t.Errorf("Count = %d,%d", errs, warns)
	}
	if !f.HasErrors("O1") || f.HasErrors("O2") {
		t.Error("HasErrors 结果不正确")
	}
	flat := f.Flatten()
	if len(flat) != 3 || flat[0].OrderID != "O1" || flat[2].OrderID != "O2" {
		t.Errorf("Flatten = %+v", flat)
	}
}

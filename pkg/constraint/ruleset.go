package constraint

// RuleSet 有序规则集合
// 阻断规则按顺序评估，遇到第一个违反即停止；提示规则全部评估并累积
type RuleSet struct {
	Blocking []Rule
	Advisory []Rule
}

// Result 评估结果
type Result struct {
	Blocked  *Violation
	Warnings []Violation
}

// Allowed 是否允许
func (r Result) Allowed() bool {
	return r.Blocked == nil
}

// DefaultRuleSet 返回默认规则集合
func DefaultRuleSet() *RuleSet {
	return &RuleSet{
		Blocking: []Rule{
			NewAlreadyAssignedRule(),
			NewNGStaffRule(),
			NewGenderRule(),
			NewQualificationRule(),
			NewUnvisitedSoloRule(),
			NewOverlapRule(),
			NewUnavailableAllDayRule(),
			NewUnavailableRule(),
		},
		Advisory: []Rule{
			NewUnvisitedTeamRule(),
			NewQuotaSaturatedRule(),
			NewOutsideHoursRule(),
			NewTrainingRule(),
			NewNotPreferredRule(),
			NewTravelTimeRule(),
		},
	}
}

// AuditRules 批量检查使用的规则（不含名单与移动相关规则）
func AuditRules() []Rule {
	return []Rule{
		NewNGStaffRule(),
		NewQualificationRule(),
		NewOutsideHoursRule(),
		NewUnavailableAllDayRule(),
		NewUnavailableRule(),
	}
}

// Evaluate 评估全部规则
func (rs *RuleSet) Evaluate(ctx *Context) Result {
	for _, r := range rs.Blocking {
		if v, violated := Check(r, ctx); violated {
			return Result{Blocked: &v}
		}
	}

	var res Result
	for _, r := range rs.Advisory {
		if v, violated := Check(r, ctx); violated {
			res.Warnings = append(res.Warnings, v)
		}
	}
	return res
}

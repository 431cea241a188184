// Package timeslot 提供 HH:MM 时刻与时间区间的计算
package timeslot

import (
	"fmt"
	"strconv"
	"strings"
)

// ToMinutes 将 HH:MM 转为当天分钟数，无法解析的部分按 0 处理
func ToMinutes(t string) int {
	h, m, _ := strings.Cut(t, ":")
	hours, _ := strconv.Atoi(strings.TrimSpace(h))
	mins, _ := strconv.Atoi(strings.TrimSpace(m))
	return hours*60 + mins
}

// Parse 严格解析 HH:MM
func Parse(t string) (int, error) {
	h, m, ok := strings.Cut(t, ":")
	if !ok || len(m) != 2 || len(h) == 0 || len(h) > 2 {
		return 0, fmt.Errorf("时间格式无效: %q", t)
	}
	hours, err := strconv.Atoi(h)
	if err != nil || hours < 0 || hours > 24 {
		return 0, fmt.Errorf("小时无效: %q", t)
	}
	mins, err := strconv.Atoi(m)
	if err != nil || mins < 0 || mins > 59 {
		return 0, fmt.Errorf("分钟无效: %q", t)
	}
	if hours == 24 && mins != 0 {
		return 0, fmt.Errorf("时间超出范围: %q", t)
	}
	return hours*60 + mins, nil
}

// ValidRange 检查 start < end 且两端格式合法
func ValidRange(start, end string) error {
	s, err := Parse(start)
	if err != nil {
		return err
	}
	e, err := Parse(end)
	if err != nil {
		return err
	}
	if s >= e {
		return fmt.Errorf("开始时间 %s 不早于结束时间 %s", start, end)
	}
	return nil
}

// FromMinutes 将分钟数格式化为 HH:MM
func FromMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// Overlaps 两个半开区间 [startA, endA) 与 [startB, endB) 是否重叠
// 首尾相接不算重叠
func Overlaps(startA, endA, startB, endB string) bool {
	return ToMinutes(startA) < ToMinutes(endB) && ToMinutes(startB) < ToMinutes(endA)
}

// Contains 时间窗 [outerStart, outerEnd) 是否完整覆盖 [start, end)
func Contains(outerStart, outerEnd, start, end string) bool {
	return ToMinutes(outerStart) <= ToMinutes(start) && ToMinutes(end) <= ToMinutes(outerEnd)
}

// Gap 前一段结束到后一段开始之间的分钟数，重叠时为负
func Gap(earlierEnd, laterStart string) int {
	return ToMinutes(laterStart) - ToMinutes(earlierEnd)
}

// Range 格式化为 start-end
func Range(start, end string) string {
	return start + "-" + end
}

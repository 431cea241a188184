// Package traveltime 提供客户之间预计算移动时间的查询
package traveltime

import (
	"fmt"
	"strings"

	"github.com/paiban/visitcare/pkg/model"
)

const (
	docPrefix = "from_"
	docInfix  = "_to_"
)

// Lookup 移动时间查询表，键为 from_to
type Lookup struct {
	minutes map[string]int
}

// New 从已有映射创建查询表
func New(m map[string]int) *Lookup {
	l := &Lookup{minutes: make(map[string]int, len(m))}
	for k, v := range m {
		l.minutes[k] = v
	}
	return l
}

// FromEntries 从移动时间记录创建查询表
func FromEntries(entries []model.TravelTimeEntry) *Lookup {
	l := &Lookup{minutes: make(map[string]int, len(entries))}
	for _, e := range entries {
		l.Set(e.FromID, e.ToID, e.Minutes)
	}
	return l
}

// Key 返回查询键
func Key(from, to string) string {
	return from + "_" + to
}

// Set 写入一条记录
func (l *Lookup) Set(from, to string, minutes int) {
	l.minutes[Key(from, to)] = minutes
}

// Minutes 查询两个客户之间的移动时间
// 同一客户返回 0；先查正向，再查反向；都没有时第二个返回值为 false
func (l *Lookup) Minutes(from, to string) (int, bool) {
	if from == to {
		return 0, true
	}
	if l == nil {
		return 0, false
	}
	if m, ok := l.minutes[Key(from, to)]; ok {
		return m, true
	}
	if m, ok := l.minutes[Key(to, from)]; ok {
		return m, true
	}
	return 0, false
}

// Len 记录数
func (l *Lookup) Len() int {
	if l == nil {
		return 0
	}
	return len(l.minutes)
}

// Entries 以记录形式导出，供缓存写回
func (l *Lookup) Entries() map[string]int {
	out := make(map[string]int, l.Len())
	if l == nil {
		return out
	}
	for k, v := range l.minutes {
		out[k] = v
	}
	return out
}

// DocID 返回文档ID from_{A}_to_{B}
func DocID(from, to string) string {
	return docPrefix + from + docInfix + to
}

// ParseDocID 解析 from_{A}_to_{B} 格式的文档ID，以第一个 _to_ 分隔
func ParseDocID(id string) (from, to string, err error) {
	if !strings.HasPrefix(id, docPrefix) {
		return "", "", fmt.Errorf("移动时间文档ID格式无效: %s", id)
	}
	rest := strings.TrimPrefix(id, docPrefix)
	idx := strings.Index(rest, docInfix)
	if idx <= 0 || idx+len(docInfix) >= len(rest) {
		return "", "", fmt.Errorf("移动时间文档ID格式无效: %s", id)
	}
	return rest[:idx], rest[idx+len(docInfix):], nil
}

// Doc 文档形式的移动时间记录
type Doc struct {
	ID      string `json:"id"`
	Minutes int    `json:"travel_time_minutes"`
}

// FromDocs 从文档集合创建查询表，跳过ID无法解析的文档
func FromDocs(docs []Doc) (*Lookup, int) {
	l := &Lookup{minutes: make(map[string]int, len(docs))}
	skipped := 0
	for _, d := range docs {
		from, to, err := ParseDocID(d.ID)
		if err != nil {
			skipped++
			continue
		}
		l.Set(from, to, d.Minutes)
	}
	return l, skipped
}

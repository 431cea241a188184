package model

// 内置服务类型编码
const (
	ServicePhysicalCare     = "physical_care"     // 身体护理
	ServiceDailyLiving      = "daily_living"      // 生活援助
	ServiceMixed            = "mixed"             // 身体+生活
	ServicePrevention       = "prevention"        // 预防
	ServicePrivate          = "private"           // 自费
	ServiceDisability       = "disability"        // 残障
	ServiceTransportSupport = "transport_support" // 出行辅助
	ServiceSevereVisiting   = "severe_visiting"   // 重度访问
)

// physicalCareFallback 没有服务类型登记时需要身体护理资格的类型
var physicalCareFallback = map[string]bool{
	ServicePhysicalCare: true,
	ServiceMixed:        true,
}

// ServiceTypeDoc 服务类型登记
type ServiceTypeDoc struct {
	Code                     string `json:"code" db:"code"`
	Label                    string `json:"label" db:"label"`
	ShortLabel               string `json:"short_label" db:"short_label"`
	RequiresPhysicalCareCert bool   `json:"requires_physical_care_cert" db:"requires_physical_care_cert"`
	SortOrder                int    `json:"sort_order" db:"sort_order"`
}

// ServiceTypeRegistry 服务类型登记表（按编码索引）
type ServiceTypeRegistry map[string]ServiceTypeDoc

// NewServiceTypeRegistry 从登记列表构建登记表
func NewServiceTypeRegistry(docs []ServiceTypeDoc) ServiceTypeRegistry {
	reg := make(ServiceTypeRegistry, len(docs))
	for _, d := range docs {
		reg[d.Code] = d
	}
	return reg
}

// RequiresPhysicalCare 该服务类型是否要求身体护理资格
// 登记表中有记录时以登记为准，否则回退到内置规则
func (r ServiceTypeRegistry) RequiresPhysicalCare(code string) bool {
	if doc, ok := r[code]; ok {
		return doc.RequiresPhysicalCareCert
	}
	return physicalCareFallback[code]
}

// Label 返回服务类型显示名称
func (r ServiceTypeRegistry) Label(code string) string {
	if doc, ok := r[code]; ok && doc.Label != "" {
		return doc.Label
	}
	return code
}

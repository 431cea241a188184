package model

import "sort"

// Snapshot 引擎判断所需的只读数据快照
type Snapshot struct {
	Orders         []*Order               `json:"orders"`
	Staff          []*Staff               `json:"staff"`
	Customers      []*Customer            `json:"customers"`
	Unavailability []*StaffUnavailability `json:"unavailability"`
	ServiceTypes   []ServiceTypeDoc       `json:"service_types"`
	TravelTimes    []TravelTimeEntry      `json:"travel_times"`
}

// Index 按ID索引后的快照
type Index struct {
	Orders       map[string]*Order
	Staff        map[string]*Staff
	Customers    map[string]*Customer
	ServiceTypes ServiceTypeRegistry
}

// Index 构建索引
func (s *Snapshot) Index() *Index {
	idx := &Index{
		Orders:       make(map[string]*Order, len(s.Orders)),
		Staff:        make(map[string]*Staff, len(s.Staff)),
		Customers:    make(map[string]*Customer, len(s.Customers)),
		ServiceTypes: NewServiceTypeRegistry(s.ServiceTypes),
	}
	for _, o := range s.Orders {
		idx.Orders[o.ID] = o
	}
	for _, st := range s.Staff {
		idx.Staff[st.ID] = st
	}
	for _, c := range s.Customers {
		idx.Customers[c.ID] = c
	}
	return idx
}

// OrdersOn 返回某日期的订单
func (s *Snapshot) OrdersOn(date string) []*Order {
	var out []*Order
	for _, o := range s.Orders {
		if o.Date == date {
			out = append(out, o)
		}
	}
	return out
}

// OrdersOfStaff 返回某人员在某日期已分配的订单，按开始时间排序
func (s *Snapshot) OrdersOfStaff(staffID, date string) []*Order {
	var out []*Order
	for _, o := range s.Orders {
		if o.Date == date && o.HasStaff(staffID) {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartTime < out[j].StartTime
	})
	return out
}

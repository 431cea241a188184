package service

import (
	"context"
	"sort"
	"sync"

	"github.com/paiban/visitcare/internal/cache"
	"github.com/paiban/visitcare/internal/optimizer"
	"github.com/paiban/visitcare/internal/repository"
	"github.com/paiban/visitcare/pkg/model"
	"github.com/paiban/visitcare/pkg/traveltime"
	"github.com/paiban/visitcare/pkg/validator"
)

type fakeOrders struct {
	mu     sync.Mutex
	orders map[string]*model.Order
	calls  []string
}

func newFakeOrders(orders ...*model.Order) *fakeOrders {
	f := &fakeOrders{orders: make(map[string]*model.Order)}
	for _, o := range orders {
		f.orders[o.ID] = o
	}
	return f
}

func (f *fakeOrders) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeOrders) GetByID(_ context.Context, id string) (*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return o.Clone(), nil
}

func (f *fakeOrders) list(match func(*model.Order) bool) []*model.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Order
	for _, o := range f.orders {
		if match(o) {
			out = append(out, o.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeOrders) ListByDate(_ context.Context, date string) ([]*model.Order, error) {
	return f.list(func(o *model.Order) bool { return o.Date == date }), nil
}

func (f *fakeOrders) ListByWeek(_ context.Context, week string) ([]*model.Order, error) {
	return f.list(func(o *model.Order) bool { return o.WeekStartDate == week }), nil
}

func (f *fakeOrders) SetRoster(_ context.Context, id string, staffIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SetRoster")
	o, ok := f.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	o.AssignedStaffIDs = append([]string(nil), staffIDs...)
	o.ManuallyEdited = true
	return nil
}

func (f *fakeOrders) SetRosterAndTime(_ context.Context, id string, staffIDs []string, start, end string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SetRosterAndTime")
	o, ok := f.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	o.AssignedStaffIDs = append([]string(nil), staffIDs...)
	o.StartTime, o.EndTime = start, end
	o.ManuallyEdited = true
	return nil
}

func (f *fakeOrders) Unassign(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Unassign")
	o, ok := f.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	o.AssignedStaffIDs = nil
	if o.Status == model.OrderAssigned {
		o.Status = model.OrderPending
	}
	return nil
}

func (f *fakeOrders) SetStatus(_ context.Context, id string, status model.OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SetStatus")
	o, ok := f.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	o.Status = status
	return nil
}

func (f *fakeOrders) BulkSetStatus(_ context.Context, ids []string, status model.OrderStatus) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("BulkSetStatus")
	var n int64
	for _, id := range ids {
		if o, ok := f.orders[id]; ok {
			o.Status = status
			n++
		}
	}
	return n, nil
}

func (f *fakeOrders) ApplyAssignments(_ context.Context, records []model.AssignmentRecord) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ApplyAssignments")
	n := 0
	for _, r := range records {
		if o, ok := f.orders[r.OrderID]; ok {
			o.AssignedStaffIDs = append([]string(nil), r.StaffIDs...)
			if o.Status == model.OrderPending && len(r.StaffIDs) > 0 {
				o.Status = model.OrderAssigned
			}
			n++
		}
	}
	return n, nil
}

type fakeRefs struct {
	staff          []*model.Staff
	customers      []*model.Customer
	unavailability []*model.StaffUnavailability
	serviceTypes   []model.ServiceTypeDoc
	travelTimes    []model.TravelTimeEntry
	travelLoads    int
	staffErr       error
}

func (f *fakeRefs) ListStaff(context.Context) ([]*model.Staff, error) { return f.staff, f.staffErr }
func (f *fakeRefs) ListCustomers(context.Context) ([]*model.Customer, error) {
	return f.customers, nil
}
func (f *fakeRefs) ListUnavailability(_ context.Context, week string) ([]*model.StaffUnavailability, error) {
	var out []*model.StaffUnavailability
	for _, u := range f.unavailability {
		if u.WeekStartDate == week {
			out = append(out, u)
		}
	}
	return out, nil
}
func (f *fakeRefs) ListServiceTypes(context.Context) ([]model.ServiceTypeDoc, error) {
	return f.serviceTypes, nil
}
func (f *fakeRefs) ListTravelTimes(context.Context) ([]model.TravelTimeEntry, error) {
	f.travelLoads++
	return f.travelTimes, nil
}

type fakeRuns struct {
	runs      []*model.OptimizationRun
	createErr error
}

func (f *fakeRuns) Create(_ context.Context, run *model.OptimizationRun) error {
	if f.createErr != nil {
		return f.createErr
	}
	if run.ID == "" {
		run.ID = model.NewID()
	}
	f.runs = append(f.runs, run)
	return nil
}

func (f *fakeRuns) LatestForWeek(_ context.Context, week string) (*model.OptimizationRun, error) {
	for i := len(f.runs) - 1; i >= 0; i-- {
		if f.runs[i].WeekStartDate == week {
			return f.runs[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

type fakeOptimizer struct {
	resp *optimizer.Response
	err  error
	got  optimizer.Request
}

func (f *fakeOptimizer) Optimize(_ context.Context, req optimizer.Request) (*optimizer.Response, error) {
	f.got = req
	return f.resp, f.err
}

type fakeFindings struct {
	data        map[string]validator.Findings
	invalidated []string
}

func newFakeFindings() *fakeFindings {
	return &fakeFindings{data: make(map[string]validator.Findings)}
}

func (f *fakeFindings) Get(_ context.Context, date string) (validator.Findings, bool, error) {
	v, ok := f.data[date]
	return v, ok, nil
}

func (f *fakeFindings) Set(_ context.Context, date string, v validator.Findings) error {
	f.data[date] = v
	return nil
}

func (f *fakeFindings) Invalidate(_ context.Context, dates ...string) error {
	for _, d := range dates {
		delete(f.data, d)
		f.invalidated = append(f.invalidated, d)
	}
	return nil
}

type fakeTravel struct {
	lookup *traveltime.Lookup
	saved  []model.TravelTimeEntry
}

func (f *fakeTravel) Load(context.Context) (*traveltime.Lookup, bool, error) {
	return f.lookup, f.lookup != nil, nil
}

func (f *fakeTravel) Save(_ context.Context, entries []model.TravelTimeEntry) error {
	f.saved = entries
	f.lookup = traveltime.FromEntries(entries)
	return nil
}

type fakeEvents struct {
	events []cache.OrderEvent
}

func (f *fakeEvents) Publish(_ context.Context, ev cache.OrderEvent) (string, error) {
	f.events = append(f.events, ev)
	return "1-0", nil
}

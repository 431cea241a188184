package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paiban/visitcare/internal/database"
	"github.com/paiban/visitcare/pkg/model"
)

func openSQLite(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLite_OrderLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(openSQLite(t))

	two := 2
	o := &model.Order{
		CustomerID:    "c1",
		WeekStartDate: "2026-02-09",
		Date:          "2026-02-10",
		StartTime:     "09:00",
		EndTime:       "10:00",
		ServiceType:   model.ServicePhysicalCare,
		StaffCount:    &two,
	}
	require.NoError(t, repo.Create(ctx, o))
	assert.NotEmpty(t, o.ID)

	got, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderPending, got.Status)
	require.NotNil(t, got.StaffCount)
	assert.Equal(t, 2, *got.StaffCount)

	n, err := repo.ApplyAssignments(ctx, []model.AssignmentRecord{{OrderID: o.ID, StaffIDs: []string{"s1", "s2"}}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err = repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderAssigned, got.Status)
	assert.Equal(t, []string{"s1", "s2"}, got.AssignedStaffIDs)
	assert.False(t, got.ManuallyEdited)

	require.NoError(t, repo.SetRosterAndTime(ctx, o.ID, []string{"s3"}, "13:00", "14:00"))
	got, err = repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "13:00", got.StartTime)
	assert.True(t, got.ManuallyEdited)

	require.NoError(t, repo.Unassign(ctx, o.ID))
	got, err = repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Empty(t, got.AssignedStaffIDs)
	assert.Equal(t, model.OrderPending, got.Status)

	week, err := repo.ListByWeek(ctx, "2026-02-09")
	require.NoError(t, err)
	assert.Len(t, week, 1)

	affected, err := repo.BulkSetStatus(ctx, []string{o.ID, "ghost"}, model.OrderCancelled)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
}

func TestSQLite_ReferenceData(t *testing.T) {
	ctx := context.Background()
	repo := NewReferenceRepository(openSQLite(t))

	staff := &model.Staff{
		Name:            model.PersonName{Family: "田中", Given: "花子"},
		Qualifications:  []string{"初任者研修"},
		CanPhysicalCare: true,
		Gender:          model.GenderFemale,
		WeeklyAvailability: map[model.DayOfWeek][]model.AvailabilitySlot{
			model.Tuesday: {{StartTime: "08:00", EndTime: "17:00"}},
			model.Sunday:  {},
		},
		PreferredHours:         &model.HourRange{Min: 20, Max: 30},
		CustomerTrainingStatus: map[string]model.TrainingStatus{"c1": model.TrainingInProgress},
	}
	require.NoError(t, repo.CreateStaff(ctx, staff))

	list, err := repo.ListStaff(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	got := list[0]
	assert.Equal(t, "田中 花子", got.Name.String())
	assert.True(t, got.CanPhysicalCare)
	assert.Nil(t, got.AvailableHours)
	require.NotNil(t, got.PreferredHours)
	assert.Equal(t, 30, got.PreferredHours.Max)
	sunday, ok := got.AvailabilityOn(model.Sunday)
	assert.True(t, ok, "空列表的星期键需要保留")
	assert.Empty(t, sunday)
	assert.Equal(t, model.TrainingInProgress, got.TrainingStatusFor("c1"))

	cust := &model.Customer{
		Name:              model.PersonName{Family: "佐藤"},
		NGStaffIDs:        []string{"s9"},
		GenderRequirement: model.GenderRequireFemale,
	}
	require.NoError(t, repo.CreateCustomer(ctx, cust))
	customers, err := repo.ListCustomers(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.True(t, customers[0].IsNG("s9"))
	assert.Equal(t, model.GenderRequireFemale, customers[0].GenderRequirement)

	require.NoError(t, repo.CreateUnavailability(ctx, &model.StaffUnavailability{
		StaffID:       staff.ID,
		WeekStartDate: "2026-02-09",
		Slots:         []model.UnavailableSlot{{Date: "2026-02-10", AllDay: true}},
	}))
	unav, err := repo.ListUnavailability(ctx, "2026-02-09")
	require.NoError(t, err)
	require.Len(t, unav, 1)
	assert.True(t, unav[0].Slots[0].AllDay)

	require.NoError(t, repo.UpsertServiceType(ctx, model.ServiceTypeDoc{Code: "mixed", Label: "混合", RequiresPhysicalCareCert: true}))
	require.NoError(t, repo.UpsertServiceType(ctx, model.ServiceTypeDoc{Code: "mixed", Label: "身体+生活", RequiresPhysicalCareCert: false}))
	types, err := repo.ListServiceTypes(ctx)
	require.NoError(t, err)
	require.Len(t, types, 1)
	assert.Equal(t, "身体+生活", types[0].Label)
	assert.False(t, types[0].RequiresPhysicalCareCert)

	require.NoError(t, repo.SaveTravelTimes(ctx, []model.TravelTimeEntry{
		{FromID: "c1", ToID: "c2", Minutes: 12},
		{FromID: "c1", ToID: "c2", Minutes: 15},
	}))
	tt, err := repo.ListTravelTimes(ctx)
	require.NoError(t, err)
	require.Len(t, tt, 1)
	assert.Equal(t, 15, tt[0].Minutes)
}

func TestSQLite_OptimizationRuns(t *testing.T) {
	ctx := context.Background()
	repo := NewOptimizationRunRepository(openSQLite(t))

	_, err := repo.LatestForWeek(ctx, "2026-02-09")
	assert.ErrorIs(t, err, ErrNotFound)

	run := &model.OptimizationRun{
		WeekStartDate: "2026-02-09",
		Status:        model.OptimizationOptimal,
		TotalOrders:   2,
		AssignedCount: 1,
		Assignments:   []model.AssignmentRecord{{OrderID: "o1", StaffIDs: []string{"s1"}}},
	}
	require.NoError(t, repo.Create(ctx, run))

	latest, err := repo.LatestForWeek(ctx, "2026-02-09")
	require.NoError(t, err)
	assert.Equal(t, run.ID, latest.ID)
	assert.Equal(t, model.OptimizationOptimal, latest.Status)
	roster, ok := latest.RosterOf("o1")
	assert.True(t, ok)
	assert.Equal(t, []string{"s1"}, roster)
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fleetms/vms-backend/internal/authz"
	"github.com/fleetms/vms-backend/internal/dto"
	"github.com/fleetms/vms-backend/internal/model"
	"github.com/fleetms/vms-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	statsCacheKey = "dashboard:stats"
	statsCacheTTL = time.Minute

	recentLimit = 10
	trendMonths = 12
)

type DashboardService interface {
	Stats(ctx context.Context, actor authz.Actor) (*dto.DashboardStats, error)
	Activity(ctx context.Context, actor authz.Actor, filter dto.ActivityFilter) (*dto.ActivityPage, error)
	Trends(ctx context.Context, actor authz.Actor) ([]dto.TrendPoint, error)
}

type dashboardService struct {
	dash         repository.DashboardRepository
	maintenances repository.MaintenanceRepository
	expenses     repository.ExpenseRepository
	cache        *redis.Client
}

// NewDashboardService builds the rollup service. cache may be nil, in
// which case stats are computed on every call.
func NewDashboardService(dash repository.DashboardRepository, maintenances repository.MaintenanceRepository, expenses repository.ExpenseRepository, cache *redis.Client) DashboardService {
	return &dashboardService{dash: dash, maintenances: maintenances, expenses: expenses, cache: cache}
}

func (s *dashboardService) Stats(ctx context.Context, actor authz.Actor) (*dto.DashboardStats, error) {
	if err := authz.Authorize(actor, authz.ResourceDashboard, authz.ActionView); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, statsCacheKey).Bytes(); err == nil {
			var cached dto.DashboardStats
			if json.Unmarshal(raw, &cached) == nil {
				return &cached, nil
			}
		}
	}

	stats := &dto.DashboardStats{}
	var err error
	if stats.Vehicles, err = s.dash.Count(ctx, &model.Vehicle{}); err != nil {
		return nil, err
	}
	if stats.Drivers, err = s.dash.Count(ctx, &model.Driver{}); err != nil {
		return nil, err
	}
	if stats.Trips, err = s.dash.Count(ctx, &model.Trip{}); err != nil {
		return nil, err
	}
	if stats.Expenses, err = s.expenses.Sum(ctx); err != nil {
		return nil, err
	}
	if stats.Maintenances.Pending, err = s.maintenances.CountByStatus(ctx, model.MaintenancePending); err != nil {
		return nil, err
	}
	if stats.Maintenances.InProgress, err = s.maintenances.CountByStatus(ctx, model.MaintenanceInProgress); err != nil {
		return nil, err
	}
	if stats.Maintenances.Completed, err = s.maintenances.CountByStatus(ctx, model.MaintenanceCompleted); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(stats); err == nil {
			if err := s.cache.Set(ctx, statsCacheKey, raw, statsCacheTTL).Err(); err != nil {
				logrus.WithError(err).Warn("failed to cache dashboard stats")
			}
		}
	}
	return stats, nil
}

func (s *dashboardService) Activity(ctx context.Context, actor authz.Actor, filter dto.ActivityFilter) (*dto.ActivityPage, error) {
	if err := authz.Authorize(actor, authz.ResourceDashboard, authz.ActionView); err != nil {
		return nil, err
	}

	var items []dto.ActivityItem

	vehicles, err := s.dash.RecentVehicles(ctx, recentLimit)
	if err != nil {
		return nil, err
	}
	for _, v := range vehicles {
		items = append(items, dto.ActivityItem{
			Type:    "vehicle",
			Message: fmt.Sprintf("Vehicle %s %s (%s) was registered", v.Manufacturer, v.Model, v.PlateNumber),
			Time:    v.CreatedAt,
		})
	}

	drivers, err := s.dash.RecentDrivers(ctx, recentLimit)
	if err != nil {
		return nil, err
	}
	for _, d := range drivers {
		name := d.LicenseNumber
		if d.User != nil {
			name = d.User.Name
		}
		items = append(items, dto.ActivityItem{
			Type:    "driver",
			Message: fmt.Sprintf("Driver %s was registered", name),
			Time:    d.CreatedAt,
		})
	}

	checkins, err := s.dash.RecentCheckIns(ctx, recentLimit)
	if err != nil {
		return nil, err
	}
	for _, c := range checkins {
		plate := c.VehicleID.String()
		if c.Vehicle != nil {
			plate = c.Vehicle.PlateNumber
		}
		if c.CheckedOutAt != nil {
			items = append(items, dto.ActivityItem{
				Type:    "checkinout",
				Message: fmt.Sprintf("Vehicle %s checked out", plate),
				Time:    *c.CheckedOutAt,
			})
		}
		items = append(items, dto.ActivityItem{
			Type:    "checkinout",
			Message: fmt.Sprintf("Vehicle %s checked in", plate),
			Time:    c.CheckedInAt,
		})
	}

	maintenances, err := s.dash.RecentMaintenances(ctx, recentLimit)
	if err != nil {
		return nil, err
	}
	for _, m := range maintenances {
		plate := m.VehicleID.String()
		if m.Vehicle != nil {
			plate = m.Vehicle.PlateNumber
		}
		items = append(items, dto.ActivityItem{
			Type:    "maintenance",
			Message: fmt.Sprintf("Maintenance for vehicle %s: %s", plate, m.Description),
			Time:    m.CreatedAt,
		})
	}

	expenses, err := s.dash.RecentExpenses(ctx, recentLimit)
	if err != nil {
		return nil, err
	}
	for _, e := range expenses {
		items = append(items, dto.ActivityItem{
			Type:    "expense",
			Message: fmt.Sprintf("Expense of %.2f recorded: %s", e.Amount, e.Description),
			Time:    e.CreatedAt,
		})
	}

	trips, err := s.dash.RecentTrips(ctx, recentLimit)
	if err != nil {
		return nil, err
	}
	for _, t := range trips {
		items = append(items, dto.ActivityItem{
			Type:    "trip",
			Message: fmt.Sprintf("Trip from %s to %s", t.StartLocation, t.EndLocation),
			Time:    t.CreatedAt,
		})
	}

	page := mergeActivity(items, filter)
	return &page, nil
}

func (s *dashboardService) Trends(ctx context.Context, actor authz.Actor) ([]dto.TrendPoint, error) {
	if err := authz.Authorize(actor, authz.ResourceDashboard, authz.ActionView); err != nil {
		return nil, err
	}

	months := monthLabels(time.Now(), trendMonths)
	from := months[0]

	vehicleCounts, err := s.dash.MonthlyCounts(ctx, &model.Vehicle{}, from)
	if err != nil {
		return nil, err
	}
	driverCounts, err := s.dash.MonthlyCounts(ctx, &model.Driver{}, from)
	if err != nil {
		return nil, err
	}
	tripCounts, err := s.dash.MonthlyCounts(ctx, &model.Trip{}, from)
	if err != nil {
		return nil, err
	}
	expenseSums, err := s.dash.MonthlySums(ctx, &model.Expense{}, "amount", from)
	if err != nil {
		return nil, err
	}
	maintenanceSums, err := s.dash.MonthlySums(ctx, &model.Maintenance{}, "cost", from)
	if err != nil {
		return nil, err
	}

	counts := func(buckets []repository.MonthBucket) map[string]int64 {
		out := make(map[string]int64, len(buckets))
		for _, b := range buckets {
			out[b.Month.Format("2006-01")] = b.Count
		}
		return out
	}
	sums := func(buckets []repository.MonthBucket) map[string]float64 {
		out := make(map[string]float64, len(buckets))
		for _, b := range buckets {
			out[b.Month.Format("2006-01")] = b.Sum
		}
		return out
	}

	vc, dc, tc := counts(vehicleCounts), counts(driverCounts), counts(tripCounts)
	es, ms := sums(expenseSums), sums(maintenanceSums)

	points := make([]dto.TrendPoint, 0, len(months))
	for _, m := range months {
		key := m.Format("2006-01")
		points = append(points, dto.TrendPoint{
			Month:        m.Format("Jan 2006"),
			Vehicles:     vc[key],
			Drivers:      dc[key],
			Trips:        tc[key],
			Expenses:     es[key],
			Maintenances: ms[key],
		})
	}
	return points, nil
}

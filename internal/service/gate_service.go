package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fleetms/vms-backend/internal/authz"
	"github.com/fleetms/vms-backend/internal/dto"
	"github.com/fleetms/vms-backend/internal/model"
	"github.com/fleetms/vms-backend/internal/repository"
)

// overstayThreshold is how long a vehicle may stay on premises before
// the gate dashboard raises an alert.
const overstayThreshold = 8 * time.Hour

type GateService interface {
	Stats(ctx context.Context, actor authz.Actor) (*dto.GateStats, error)
	RecentLogs(ctx context.Context, actor authz.Actor) ([]*model.CheckInOut, error)
	WithinPremises(ctx context.Context, actor authz.Actor) ([]*model.CheckInOut, error)
	Alerts(ctx context.Context, actor authz.Actor) ([]dto.GateAlert, error)
}

type gateService struct {
	checkins repository.CheckInOutRepository
	trips    repository.TripRepository
}

func NewGateService(checkins repository.CheckInOutRepository, trips repository.TripRepository) GateService {
	return &gateService{checkins: checkins, trips: trips}
}

func (s *gateService) Stats(ctx context.Context, actor authz.Actor) (*dto.GateStats, error) {
	if err := authz.Authorize(actor, authz.ResourceCheckIns, authz.ActionView); err != nil {
		return nil, err
	}

	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	stats := &dto.GateStats{}
	var err error
	if stats.VehiclesCheckedInToday, err = s.checkins.CountCheckedInSince(ctx, midnight); err != nil {
		return nil, err
	}
	if stats.VehiclesCheckedOutToday, err = s.checkins.CountCheckedOutSince(ctx, midnight); err != nil {
		return nil, err
	}
	if stats.VehiclesInside, err = s.checkins.CountOpen(ctx); err != nil {
		return nil, err
	}
	if stats.ActiveTrips, err = s.trips.CountActive(ctx); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *gateService) RecentLogs(ctx context.Context, actor authz.Actor) ([]*model.CheckInOut, error) {
	if err := authz.Authorize(actor, authz.ResourceCheckIns, authz.ActionView); err != nil {
		return nil, err
	}
	return s.checkins.FindRecent(ctx, 20)
}

func (s *gateService) WithinPremises(ctx context.Context, actor authz.Actor) ([]*model.CheckInOut, error) {
	if err := authz.Authorize(actor, authz.ResourceCheckIns, authz.ActionView); err != nil {
		return nil, err
	}
	return s.checkins.FindOpen(ctx, nil)
}

// Alerts lists vehicles that have been inside longer than the overstay
// threshold.
func (s *gateService) Alerts(ctx context.Context, actor authz.Actor) ([]dto.GateAlert, error) {
	if err := authz.Authorize(actor, authz.ResourceCheckIns, authz.ActionView); err != nil {
		return nil, err
	}
	cutoff := time.Now().Add(-overstayThreshold)
	open, err := s.checkins.FindOpen(ctx, &cutoff)
	if err != nil {
		return nil, err
	}

	alerts := make([]dto.GateAlert, 0, len(open))
	for _, rec := range open {
		plate := rec.VehicleID.String()
		if rec.Vehicle != nil {
			plate = rec.Vehicle.PlateNumber
		}
		alerts = append(alerts, dto.GateAlert{
			CheckInID:   rec.ID.String(),
			PlateNumber: plate,
			CheckedInAt: rec.CheckedInAt,
			Duration:    time.Since(rec.CheckedInAt).Round(time.Minute).String(),
			Message:     fmt.Sprintf("Vehicle %s has been on premises for over %d hours", plate, int(overstayThreshold.Hours())),
		})
	}
	return alerts, nil
}

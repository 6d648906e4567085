package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const recentPatientsLimit = 5

type Service struct {
	stats StatsRepository
	now   func() time.Time
}

func NewService(stats StatsRepository) *Service {
	return &Service{stats: stats, now: time.Now}
}

// Stats gathers the headline figures: registry size and growth, the coming
// week's bookings, this month's revenue against last month's, and treatments
// still in progress.
func (s *Service) Stats(ctx context.Context, tenantID uuid.UUID) (*Stats, error) {
	now := s.now()

	active, err := s.stats.CountActivePatients(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	prevMonthStart := monthStart.AddDate(0, -1, 0)

	newThisMonth, err := s.stats.CountPatientsCreatedBetween(ctx, tenantID, monthStart, now)
	if err != nil {
		return nil, err
	}
	newPrevMonth, err := s.stats.CountPatientsCreatedBetween(ctx, tenantID, prevMonthStart, monthStart)
	if err != nil {
		return nil, err
	}

	today := now.Format("2006-01-02")
	weekEnd := now.AddDate(0, 0, 7).Format("2006-01-02")
	upcoming, err := s.stats.CountUpcomingAppointments(ctx, tenantID, today, weekEnd)
	if err != nil {
		return nil, err
	}

	revenue, err := s.stats.MonthlyRevenue(ctx, tenantID, now.Format("2006-01"))
	if err != nil {
		return nil, err
	}
	prevRevenue, err := s.stats.MonthlyRevenue(ctx, tenantID, prevMonthStart.Format("2006-01"))
	if err != nil {
		return nil, err
	}

	treatments, err := s.stats.CountActiveTreatments(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	return &Stats{
		ActivePatients:       active,
		NewPatientsThisMonth: newThisMonth,
		PatientGrowth:        changePercent(float64(newThisMonth), float64(newPrevMonth)),
		UpcomingAppointments: upcoming,
		MonthlyRevenue:       revenue,
		RevenueChange:        changePercent(revenue, prevRevenue),
		ActiveTreatments:     treatments,
	}, nil
}

// TodaysAppointments lists today's non-cancelled bookings in time order.
func (s *Service) TodaysAppointments(ctx context.Context, tenantID uuid.UUID) ([]*DayAppointment, error) {
	return s.stats.AppointmentsOn(ctx, tenantID, s.now().Format("2006-01-02"))
}

// RecentPatients lists the newest active patients with their last completed
// and next upcoming visit.
func (s *Service) RecentPatients(ctx context.Context, tenantID uuid.UUID) ([]*RecentPatient, error) {
	return s.stats.RecentPatients(ctx, tenantID, s.now().Format("2006-01-02"), recentPatientsLimit)
}

// changePercent reports current against previous as a percentage change.
// A rise from zero reads as 100% rather than dividing by zero.
func changePercent(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return (current - previous) / previous * 100
}

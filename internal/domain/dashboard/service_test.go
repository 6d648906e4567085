package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockStats struct {
	activePatients   int64
	newByMonth       map[string]int64 // keyed by YYYY-MM of the range start
	upcoming         int64
	revenueByMonth   map[string]float64
	activeTreatments int64
	appointments     map[string][]*DayAppointment
	recent           []*RecentPatient
}

func (m *mockStats) CountActivePatients(_ context.Context, _ uuid.UUID) (int64, error) {
	return m.activePatients, nil
}

func (m *mockStats) CountPatientsCreatedBetween(_ context.Context, _ uuid.UUID, from, _ time.Time) (int64, error) {
	return m.newByMonth[from.Format("2006-01")], nil
}

func (m *mockStats) CountUpcomingAppointments(_ context.Context, _ uuid.UUID, _, _ string) (int64, error) {
	return m.upcoming, nil
}

func (m *mockStats) MonthlyRevenue(_ context.Context, _ uuid.UUID, month string) (float64, error) {
	return m.revenueByMonth[month], nil
}

func (m *mockStats) CountActiveTreatments(_ context.Context, _ uuid.UUID) (int64, error) {
	return m.activeTreatments, nil
}

func (m *mockStats) AppointmentsOn(_ context.Context, _ uuid.UUID, date string) ([]*DayAppointment, error) {
	return m.appointments[date], nil
}

func (m *mockStats) RecentPatients(_ context.Context, _ uuid.UUID, _ string, limit int) ([]*RecentPatient, error) {
	if len(m.recent) > limit {
		return m.recent[:limit], nil
	}
	return m.recent, nil
}

func fixedNow() time.Time {
	return time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC)
}

func TestStats(t *testing.T) {
	svc := NewService(&mockStats{
		activePatients:   120,
		newByMonth:       map[string]int64{"2026-09": 12, "2026-08": 8},
		upcoming:         9,
		revenueByMonth:   map[string]float64{"2026-09": 3000, "2026-08": 2400},
		activeTreatments: 4,
	})
	svc.now = fixedNow

	stats, err := svc.Stats(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.ActivePatients != 120 || stats.NewPatientsThisMonth != 12 {
		t.Errorf("patients = %d new %d", stats.ActivePatients, stats.NewPatientsThisMonth)
	}
	if stats.PatientGrowth != 50 {
		t.Errorf("patient growth = %v, want 50", stats.PatientGrowth)
	}
	if stats.UpcomingAppointments != 9 {
		t.Errorf("upcoming = %d, want 9", stats.UpcomingAppointments)
	}
	if stats.MonthlyRevenue != 3000 || stats.RevenueChange != 25 {
		t.Errorf("revenue = %v change %v, want 3000 and 25", stats.MonthlyRevenue, stats.RevenueChange)
	}
	if stats.ActiveTreatments != 4 {
		t.Errorf("treatments = %d, want 4", stats.ActiveTreatments)
	}
}

func TestStatsGrowthFromZero(t *testing.T) {
	svc := NewService(&mockStats{
		newByMonth:     map[string]int64{"2026-09": 3},
		revenueByMonth: map[string]float64{},
	})
	svc.now = fixedNow

	stats, err := svc.Stats(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.PatientGrowth != 100 {
		t.Errorf("growth from zero = %v, want 100", stats.PatientGrowth)
	}
	if stats.RevenueChange != 0 {
		t.Errorf("revenue change with no revenue = %v, want 0", stats.RevenueChange)
	}
}

func TestTodaysAppointments(t *testing.T) {
	today := fixedNow().Format("2006-01-02")
	svc := NewService(&mockStats{
		appointments: map[string][]*DayAppointment{
			today: {
				{PatientName: "Ana Silva", Time: "09:00"},
				{PatientName: "Ben Ortiz", Time: "10:30"},
			},
		},
	})
	svc.now = fixedNow

	items, err := svc.TodaysAppointments(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("TodaysAppointments: %v", err)
	}
	if len(items) != 2 || items[0].PatientName != "Ana Silva" {
		t.Errorf("unexpected schedule: %+v", items)
	}
}

func TestRecentPatientsLimit(t *testing.T) {
	var all []*RecentPatient
	for i := 0; i < 8; i++ {
		all = append(all, &RecentPatient{ID: uuid.New()})
	}
	svc := NewService(&mockStats{recent: all})

	items, err := svc.RecentPatients(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("RecentPatients: %v", err)
	}
	if len(items) != recentPatientsLimit {
		t.Errorf("len = %d, want %d", len(items), recentPatientsLimit)
	}
}

package billing

import (
	"testing"

	"github.com/dentora/dentora/internal/domain/tenancy"
)

func TestCanAddResource(t *testing.T) {
	cases := []struct {
		name  string
		plan  tenancy.Plan
		count int64
		res   Resource
		want  bool
	}{
		{"free under patient cap", tenancy.PlanFree, 49, ResourcePatients, true},
		{"free at patient cap", tenancy.PlanFree, 50, ResourcePatients, false},
		{"free over patient cap", tenancy.PlanFree, 51, ResourcePatients, false},
		{"free at staff cap", tenancy.PlanFree, 3, ResourceStaff, false},
		{"pro unlimited patients", tenancy.PlanPro, 1_000_000, ResourcePatients, true},
		{"pro storage capped", tenancy.PlanPro, 50, ResourceStorage, false},
		{"enterprise unlimited storage", tenancy.PlanEnterprise, 10_000, ResourceStorage, true},
		{"unknown plan falls back to free", tenancy.Plan("gold"), 50, ResourcePatients, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanAddResource(tc.plan, tc.count, tc.res); got != tc.want {
				t.Errorf("CanAddResource(%s, %d, %s) = %v, want %v",
					tc.plan, tc.count, tc.res, got, tc.want)
			}
		})
	}
}

func TestUsagePercentage(t *testing.T) {
	cases := []struct {
		name  string
		used  int64
		limit int64
		want  float64
	}{
		{"zero usage", 0, 50, 0},
		{"half", 25, 50, 50},
		{"full", 50, 50, 100},
		{"over cap clamps to 100", 75, 50, 100},
		{"unlimited reports zero", 40, Unlimited, 0},
		{"zero limit reports zero", 40, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := UsagePercentage(tc.used, tc.limit); got != tc.want {
				t.Errorf("UsagePercentage(%d, %d) = %v, want %v", tc.used, tc.limit, got, tc.want)
			}
		})
	}
}

func TestLimitsForUnknownPlan(t *testing.T) {
	if got := LimitsFor(tenancy.Plan("platinum")); got != planLimits[tenancy.PlanFree] {
		t.Errorf("unknown plan limits = %+v, want free tier", got)
	}
}

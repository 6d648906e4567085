// Package billing holds the subscription tiers, the plan-limit calculator,
// and the Stripe integration (checkout, portal, webhook mirror).
package billing

import (
	"github.com/dentora/dentora/internal/domain/tenancy"
)

// Unlimited marks a resource with no cap on the plan.
const Unlimited int64 = -1

// Resource names a countable, plan-limited resource.
type Resource string

const (
	ResourcePatients Resource = "patients"
	ResourceStorage  Resource = "storage"
	ResourceStaff    Resource = "staff"
)

// PlanLimits caps each resource for one tier. StorageGB counts whole
// gigabytes of document storage.
type PlanLimits struct {
	Patients  int64 `json:"patients"`
	StorageGB int64 `json:"storage_gb"`
	Staff     int64 `json:"staff"`
}

var planLimits = map[tenancy.Plan]PlanLimits{
	tenancy.PlanFree:       {Patients: 50, StorageGB: 1, Staff: 3},
	tenancy.PlanPro:        {Patients: Unlimited, StorageGB: 50, Staff: Unlimited},
	tenancy.PlanEnterprise: {Patients: Unlimited, StorageGB: Unlimited, Staff: Unlimited},
}

// LimitsFor returns the limit table for a plan. Unknown plans get the free
// tier, the most restrictive.
func LimitsFor(plan tenancy.Plan) PlanLimits {
	if l, ok := planLimits[plan]; ok {
		return l
	}
	return planLimits[tenancy.PlanFree]
}

func (l PlanLimits) limit(r Resource) int64 {
	switch r {
	case ResourcePatients:
		return l.Patients
	case ResourceStorage:
		return l.StorageGB
	case ResourceStaff:
		return l.Staff
	}
	return 0
}

// CanAddResource reports whether a plan admits one more unit of the resource
// given the current count. Unlimited resources always admit.
func CanAddResource(plan tenancy.Plan, currentCount int64, r Resource) bool {
	limit := LimitsFor(plan).limit(r)
	if limit == Unlimited {
		return true
	}
	return currentCount < limit
}

// UsagePercentage is used/limit as a percentage, capped at 100. Unlimited
// resources report 0.
func UsagePercentage(used, limit int64) float64 {
	if limit == Unlimited || limit <= 0 {
		return 0
	}
	pct := float64(used) / float64(limit) * 100
	if pct > 100 {
		return 100
	}
	return pct
}

// PlanFeature is a marketing bullet shown on the plans page.
type PlanFeature struct {
	Plan     tenancy.Plan `json:"plan"`
	Name     string       `json:"name"`
	Price    string       `json:"price"`
	Features []string     `json:"features"`
}

// PlanFeatures lists the public plan catalogue.
func PlanFeatures() []PlanFeature {
	return []PlanFeature{
		{
			Plan:  tenancy.PlanFree,
			Name:  "Free",
			Price: "$0/month",
			Features: []string{
				"Up to 50 patients",
				"1 GB document storage",
				"Up to 3 staff members",
				"Appointments and medical records",
			},
		},
		{
			Plan:  tenancy.PlanPro,
			Name:  "Pro",
			Price: "$49/month",
			Features: []string{
				"Unlimited patients",
				"50 GB document storage",
				"Unlimited staff members",
				"Financial reports",
				"Priority support",
			},
		},
		{
			Plan:  tenancy.PlanEnterprise,
			Name:  "Enterprise",
			Price: "Contact us",
			Features: []string{
				"Unlimited everything",
				"Dedicated support",
				"Custom integrations",
			},
		},
	}
}

package service

import (
	"fmt"
	"time"

	"baluarte/apperr"
	"baluarte/models"
)

// BaseTransactionLimit monthly transaction cap of the base plan
const BaseTransactionLimit = 50

// PlanFeatures capabilities of a plan. MonthlyTransactionLimit 0 means unlimited.
type PlanFeatures struct {
	MonthlyTransactionLimit int      `json:"monthlyTransactionLimit"`
	Currencies              []string `json:"currencies"`
	MaxUsers                int      `json:"maxUsers"`
	AdvancedReports         bool     `json:"advancedReports"`
	PrioritySupport         bool     `json:"prioritySupport"`
}

// FeaturesFor feature set of a role; unknown roles get the base plan
func FeaturesFor(role string) PlanFeatures {
	if role == models.RolePro {
		return PlanFeatures{
			MonthlyTransactionLimit: 0,
			Currencies:              []string{models.CurrencyARS, models.CurrencyUSD},
			MaxUsers:                5,
			AdvancedReports:         true,
			PrioritySupport:         true,
		}
	}
	return PlanFeatures{
		MonthlyTransactionLimit: BaseTransactionLimit,
		Currencies:              []string{models.CurrencyARS},
		MaxUsers:                1,
	}
}

// AllowsCurrency reports whether the plan may use currency c
func (f PlanFeatures) AllowsCurrency(c string) bool {
	for _, allowed := range f.Currencies {
		if allowed == c {
			return true
		}
	}
	return false
}

// CheckTransactionQuota rejects a new transaction when a base user already
// has monthCount transactions this month
func CheckTransactionQuota(role string, monthCount int64) error {
	if role == models.RolePro {
		return nil
	}
	if monthCount >= BaseTransactionLimit {
		return apperr.QuotaExceeded(fmt.Sprintf(
			"Límite de %d transacciones por mes alcanzado. Actualizá al Plan PRO para transacciones ilimitadas.",
			BaseTransactionLimit,
		))
	}
	return nil
}

// MonthBounds first instant of now's month and of the following one, in now's location
func MonthBounds(now time.Time) (start, end time.Time) {
	start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end = start.AddDate(0, 1, 0)
	return start, end
}

// PlanUsage month usage reported to clients
type PlanUsage struct {
	Role         string       `json:"role"`
	IsBasePlan   bool         `json:"isBasePlan"`
	CurrentCount int64        `json:"currentCount"`
	Limit        int          `json:"limit"`
	Remaining    int64        `json:"remaining"`
	Features     PlanFeatures `json:"features"`
}

// NewPlanUsage builds the usage report; pro users get CurrentCount and Remaining -1
func NewPlanUsage(role string, monthCount int64) PlanUsage {
	usage := PlanUsage{
		Role:         role,
		IsBasePlan:   role != models.RolePro,
		CurrentCount: -1,
		Limit:        BaseTransactionLimit,
		Remaining:    -1,
		Features:     FeaturesFor(role),
	}
	if usage.IsBasePlan {
		usage.CurrentCount = monthCount
		usage.Remaining = max(0, int64(BaseTransactionLimit)-monthCount)
	}
	return usage
}

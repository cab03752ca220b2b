package service

import (
	"baluarte/models"

	"github.com/shopspring/decimal"
)

// RecentTransactionsLimit size of the dashboard's recent list
const RecentTransactionsLimit = 5

// TypeTotal sum of a month's amounts for one transaction type
type TypeTotal struct {
	Type  string
	Total float64
}

// CategorySpend sum of a month's expenses for one category
type CategorySpend struct {
	CategoryID uint
	Spent      float64
}

// Balance monthly cash flow
type Balance struct {
	CurrentBalance float64 `json:"currentBalance"`
	TotalIngresos  float64 `json:"totalIngresos"`
	TotalEgresos   float64 `json:"totalEgresos"`
}

// BudgetLine budget against actual spending for an expense category
type BudgetLine struct {
	CategoryID    uint    `json:"categoryId"`
	CategoryName  string  `json:"categoryName"`
	MonthlyBudget float64 `json:"monthlyBudget"`
	Spent         float64 `json:"spent"`
	Remaining     float64 `json:"remaining"`
}

// Dashboard response of GET /api/dashboard
type Dashboard struct {
	Balance            Balance              `json:"balance"`
	RecentTransactions []models.Transaction `json:"recentTransactions"`
	BudgetVsExpense    []BudgetLine         `json:"budgetVsExpense"`
	PlanInfo           PlanUsage            `json:"planInfo"`
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// BuildBalance folds per-type totals into the balance.
// Types other than INGRESO and EGRESO are ignored.
func BuildBalance(totals []TypeTotal) Balance {
	ingresos := decimal.Zero
	egresos := decimal.Zero
	for _, t := range totals {
		switch t.Type {
		case models.TypeIngreso:
			ingresos = ingresos.Add(decimal.NewFromFloat(t.Total))
		case models.TypeEgreso:
			egresos = egresos.Add(decimal.NewFromFloat(t.Total))
		}
	}
	return Balance{
		CurrentBalance: money(ingresos.Sub(egresos)),
		TotalIngresos:  money(ingresos),
		TotalEgresos:   money(egresos),
	}
}

// BuildBudgetVsExpense pairs budgeted active expense categories with their spending.
// Categories without a positive budget, inactive ones and income categories are skipped.
func BuildBudgetVsExpense(categories []models.Category, spending []CategorySpend) []BudgetLine {
	spentByCategory := make(map[uint]decimal.Decimal, len(spending))
	for _, s := range spending {
		spentByCategory[s.CategoryID] = spentByCategory[s.CategoryID].Add(decimal.NewFromFloat(s.Spent))
	}

	lines := make([]BudgetLine, 0, len(categories))
	for _, cat := range categories {
		if cat.Type != models.TypeEgreso || !cat.IsActive || cat.MonthlyBudget <= 0 {
			continue
		}
		budget := decimal.NewFromFloat(cat.MonthlyBudget)
		spent := spentByCategory[cat.ID]
		lines = append(lines, BudgetLine{
			CategoryID:    cat.ID,
			CategoryName:  cat.Name,
			MonthlyBudget: money(budget),
			Spent:         money(spent),
			Remaining:     money(budget.Sub(spent)),
		})
	}
	return lines
}

// BuildDashboard assembles the dashboard from the month's query results
func BuildDashboard(role string, totals []TypeTotal, recent []models.Transaction, categories []models.Category, spending []CategorySpend, monthCount int64) Dashboard {
	if recent == nil {
		recent = []models.Transaction{}
	}
	return Dashboard{
		Balance:            BuildBalance(totals),
		RecentTransactions: recent,
		BudgetVsExpense:    BuildBudgetVsExpense(categories, spending),
		PlanInfo:           NewPlanUsage(role, monthCount),
	}
}

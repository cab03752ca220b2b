package api

import (
	"time"

	"baluarte/apperr"
	"baluarte/database"
	"baluarte/models"
	"baluarte/service"

	"github.com/gin-gonic/gin"
)

// DashboardHandler monthly summary
type DashboardHandler struct{}

func NewDashboardHandler() *DashboardHandler {
	return &DashboardHandler{}
}

// buildDashboard runs the month queries for user and composes the summary.
// Totals cover the first day of the month up to now.
func buildDashboard(user *models.User, now time.Time) (*service.Dashboard, error) {
	start, _ := service.MonthBounds(now)

	var totals []service.TypeTotal
	if err := database.DB.Model(&models.Transaction{}).
		Select("type, SUM(amount) AS total").
		Where("user_id = ? AND date >= ? AND date <= ?", user.ID, start, now).
		Group("type").
		Scan(&totals).Error; err != nil {
		return nil, err
	}

	var recent []models.Transaction
	if err := database.DB.Where("user_id = ?", user.ID).
		Preload("Category").
		Order("date DESC, id DESC").
		Limit(service.RecentTransactionsLimit).
		Find(&recent).Error; err != nil {
		return nil, err
	}

	var categories []models.Category
	if err := database.DB.Where("user_id = ? AND type = ? AND is_active = ? AND monthly_budget > ?",
		user.ID, models.TypeEgreso, true, 0).
		Order("name ASC").
		Find(&categories).Error; err != nil {
		return nil, err
	}

	var spending []service.CategorySpend
	if len(categories) > 0 {
		ids := make([]uint, len(categories))
		for i, cat := range categories {
			ids[i] = cat.ID
		}
		if err := database.DB.Model(&models.Transaction{}).
			Select("category_id, SUM(amount) AS spent").
			Where("user_id = ? AND type = ? AND category_id IN ? AND date >= ? AND date <= ?",
				user.ID, models.TypeEgreso, ids, start, now).
			Group("category_id").
			Scan(&spending).Error; err != nil {
			return nil, err
		}
	}

	var count int64
	if !user.IsPro() {
		var err error
		count, err = monthTransactionCount(database.DB, user.ID, now)
		if err != nil {
			return nil, err
		}
	}

	d := service.BuildDashboard(user.Role, totals, recent, categories, spending, count)
	return &d, nil
}

// Get dashboard for the current month
// @Summary Dashboard
// @Description Balance del mes, últimas transacciones, presupuesto vs. gasto y uso del plan
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.Dashboard
// @Failure 401 {object} Response
// @Router /api/dashboard [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		Fail(c, err)
		return
	}

	d, err := buildDashboard(user, time.Now())
	if err != nil {
		Fail(c, apperr.Internal("error al calcular el dashboard", err))
		return
	}
	Success(c, d)
}

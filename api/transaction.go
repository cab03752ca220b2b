package api

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"baluarte/apperr"
	"baluarte/database"
	"baluarte/middleware"
	"baluarte/models"
	"baluarte/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TransactionHandler ledger of the current user
type TransactionHandler struct{}

func NewTransactionHandler() *TransactionHandler {
	return &TransactionHandler{}
}

type TransactionCreateRequest struct {
	Amount      float64 `json:"amount" binding:"required,gt=0" example:"1500.50"`
	CategoryID  uint    `json:"categoryId" binding:"required" example:"3"`
	Description string  `json:"description" binding:"required,max=255" example:"Venta mostrador"`
	Type        string  `json:"type" binding:"required" example:"INGRESO"`
	Date        string  `json:"date" example:"2025-03-15"`
}

// TransactionFilter optional list filters; End is inclusive
type TransactionFilter struct {
	Type       string
	CategoryID uint
	Start      *time.Time
	End        *time.Time
}

var dateLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

// parseDate accepts RFC3339, "YYYY-MM-DD HH:MM:SS" or "YYYY-MM-DD" in local time
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperr.Validation("Formato de fecha inválido, usá YYYY-MM-DD.")
}

// parseTransactionFilter reads type, categoryId, start and end from the query string
func parseTransactionFilter(c *gin.Context) (TransactionFilter, error) {
	var f TransactionFilter
	if t := c.Query("type"); t != "" {
		if !models.ValidType(t) {
			return f, apperr.Validation("El tipo debe ser INGRESO o EGRESO.")
		}
		f.Type = t
	}
	if raw := c.Query("categoryId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return f, apperr.Validation("categoryId inválido")
		}
		f.CategoryID = uint(id)
	}
	if raw := c.Query("start"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			return f, err
		}
		f.Start = &t
	}
	if raw := c.Query("end"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			return f, err
		}
		if len(strings.TrimSpace(raw)) == len("2006-01-02") {
			t = t.AddDate(0, 0, 1)
		} else {
			t = t.Add(time.Second)
		}
		f.End = &t
	}
	if f.Start != nil && f.End != nil && !f.Start.Before(*f.End) {
		return f, apperr.Validation("La fecha de inicio debe ser anterior a la de fin.")
	}
	return f, nil
}

// apply scopes a query to the filter; End is already exclusive
func (f TransactionFilter) apply(q *gorm.DB) *gorm.DB {
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.CategoryID != 0 {
		q = q.Where("category_id = ?", f.CategoryID)
	}
	if f.Start != nil {
		q = q.Where("date >= ?", *f.Start)
	}
	if f.End != nil {
		q = q.Where("date < ?", *f.End)
	}
	return q
}

// monthTransactionCount transactions of userID dated in now's calendar month
func monthTransactionCount(db *gorm.DB, userID uint, now time.Time) (int64, error) {
	start, end := service.MonthBounds(now)
	var count int64
	err := db.Model(&models.Transaction{}).
		Where("user_id = ? AND date >= ? AND date < ?", userID, start, end).
		Count(&count).Error
	return count, err
}

// listTransactions newest first with the category joined, inactive ones included
func listTransactions(userID uint, f TransactionFilter) ([]models.Transaction, error) {
	list := make([]models.Transaction, 0)
	q := f.apply(database.DB.Where("user_id = ?", userID))
	err := q.Preload("Category").
		Order("date DESC, id DESC").
		Find(&list).Error
	return list, err
}

// List transactions of the current user
// @Summary Listar transacciones
// @Description Transacciones del usuario, las más recientes primero
// @Tags Transacciones
// @Produce json
// @Security BearerAuth
// @Param type query string false "INGRESO o EGRESO"
// @Param categoryId query int false "ID de categoría"
// @Param start query string false "Desde (YYYY-MM-DD)"
// @Param end query string false "Hasta inclusive (YYYY-MM-DD)"
// @Success 200 {array} models.Transaction
// @Router /api/transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	filter, err := parseTransactionFilter(c)
	if err != nil {
		Fail(c, err)
		return
	}

	list, err := listTransactions(userID, filter)
	if err != nil {
		Fail(c, apperr.Internal("error al listar transacciones", err))
		return
	}
	Success(c, list)
}

// Create records a transaction. The user row is locked while the month is
// counted so concurrent requests cannot exceed the base plan limit.
// @Summary Crear transacción
// @Tags Transacciones
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body TransactionCreateRequest true "Transacción"
// @Success 201 {object} models.Transaction
// @Failure 400 {object} Response "Datos inválidos"
// @Failure 403 {object} Response "Límite del plan alcanzado"
// @Failure 404 {object} Response "Categoría no encontrada"
// @Router /api/transactions [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req TransactionCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, bindError("Todos los campos son obligatorios: monto, categoría, descripción y tipo.", err))
		return
	}
	req.Description = strings.TrimSpace(req.Description)
	if req.Description == "" {
		Fail(c, apperr.Validation("La descripción es requerida."))
		return
	}
	if !models.ValidType(req.Type) {
		Fail(c, apperr.Validation("El tipo debe ser INGRESO o EGRESO."))
		return
	}

	now := time.Now()
	date := now
	if req.Date != "" {
		d, err := parseDate(req.Date)
		if err != nil {
			Fail(c, err)
			return
		}
		date = d
	}

	t := models.Transaction{
		UserID:      userID,
		CategoryID:  req.CategoryID,
		Type:        req.Type,
		Amount:      req.Amount,
		Date:        date,
		Description: req.Description,
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Usuario no encontrado")
			}
			return apperr.Internal("error al bloquear el usuario", err)
		}

		if !user.IsPro() {
			count, err := monthTransactionCount(tx, userID, now)
			if err != nil {
				return apperr.Internal("error al contar transacciones", err)
			}
			if err := service.CheckTransactionQuota(user.Role, count); err != nil {
				return err
			}
		}

		var cat models.Category
		if err := tx.Where("id = ? AND user_id = ? AND is_active = ?", req.CategoryID, userID, true).
			First(&cat).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Categoría no encontrada o no pertenece al usuario.")
			}
			return apperr.Internal("error al buscar la categoría", err)
		}

		if err := tx.Create(&t).Error; err != nil {
			return apperr.Internal("error al crear la transacción", err)
		}
		t.Category = &cat
		return nil
	})
	if err != nil {
		Fail(c, err)
		return
	}

	Created(c, t)
}

// Delete removes an owned transaction
// @Summary Eliminar transacción
// @Tags Transacciones
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID de transacción"
// @Success 200 {object} MessageResponse
// @Failure 403 {object} Response "No es el dueño"
// @Failure 404 {object} Response "No encontrada"
// @Router /api/transactions/{id} [delete]
func (h *TransactionHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := parseID(c, "id")
	if err != nil {
		Fail(c, err)
		return
	}

	var t models.Transaction
	if err := database.DB.First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			Fail(c, apperr.NotFound("Transacción no encontrada"))
			return
		}
		Fail(c, apperr.Internal("error al buscar la transacción", err))
		return
	}
	if t.UserID != userID {
		Fail(c, apperr.Forbidden("No autorizado para eliminar esta transacción"))
		return
	}

	if err := database.DB.Delete(&t).Error; err != nil {
		Fail(c, apperr.Internal("error al eliminar la transacción", err))
		return
	}
	SuccessWithMessage(c, "Transacción eliminada exitosamente.")
}

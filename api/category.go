package api

import (
	"errors"
	"strings"

	"baluarte/apperr"
	"baluarte/database"
	"baluarte/middleware"
	"baluarte/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CategoryHandler income and expense categories of the current user
type CategoryHandler struct{}

func NewCategoryHandler() *CategoryHandler {
	return &CategoryHandler{}
}

type CategoryCreateRequest struct {
	Name          string   `json:"name" binding:"required,max=50" example:"Alquiler"`
	Type          string   `json:"type" binding:"required" example:"EGRESO"`
	MonthlyBudget *float64 `json:"monthlyBudget" example:"150000"`
}

type CategoryUpdateRequest struct {
	Name          *string  `json:"name" binding:"omitempty,max=50"`
	Type          *string  `json:"type"`
	MonthlyBudget *float64 `json:"monthlyBudget"`
}

// findOwnedCategory loads a category and checks it belongs to userID
func findOwnedCategory(id, userID uint) (*models.Category, error) {
	var cat models.Category
	if err := database.DB.First(&cat, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Categoría no encontrada")
		}
		return nil, apperr.Internal("error al buscar la categoría", err)
	}
	if cat.UserID != userID {
		return nil, apperr.Forbidden("No autorizado para modificar esta categoría")
	}
	return &cat, nil
}

// nameTaken reports whether userID already has a category called name, active or not
func nameTaken(userID uint, name string, exceptID uint) (bool, error) {
	var count int64
	q := database.DB.Model(&models.Category{}).Where("user_id = ? AND name = ?", userID, name)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List active categories ordered by type and name
// @Summary Listar categorías
// @Description Categorías activas del usuario, ordenadas por tipo y nombre
// @Tags Categorías
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Category
// @Router /api/categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	list := make([]models.Category, 0)
	if err := database.DB.Where("user_id = ? AND is_active = ?", userID, true).
		Order("type ASC, name ASC").
		Find(&list).Error; err != nil {
		Fail(c, apperr.Internal("error al listar categorías", err))
		return
	}
	Success(c, list)
}

// Create adds a category; names are unique per user
// @Summary Crear categoría
// @Tags Categorías
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CategoryCreateRequest true "Categoría"
// @Success 201 {object} models.Category
// @Failure 400 {object} Response "Datos inválidos"
// @Failure 409 {object} Response "Nombre repetido"
// @Router /api/categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CategoryCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, bindError("Por favor, ingresá el nombre y el tipo (INGRESO/EGRESO) para la categoría.", err))
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		Fail(c, apperr.Validation("El nombre de la categoría es requerido."))
		return
	}
	if !models.ValidType(req.Type) {
		Fail(c, apperr.Validation("El tipo debe ser INGRESO o EGRESO."))
		return
	}
	budget := 0.0
	if req.MonthlyBudget != nil {
		budget = *req.MonthlyBudget
	}
	if budget < 0 {
		Fail(c, apperr.Validation("El presupuesto mensual no puede ser negativo."))
		return
	}

	taken, err := nameTaken(userID, req.Name, 0)
	if err != nil {
		Fail(c, apperr.Internal("error al verificar la categoría", err))
		return
	}
	if taken {
		Fail(c, apperr.Conflict("Ya existe una categoría con ese nombre."))
		return
	}

	cat := models.Category{
		UserID:        userID,
		Name:          req.Name,
		Type:          req.Type,
		MonthlyBudget: budget,
		IsActive:      true,
	}
	if err := database.DB.Create(&cat).Error; err != nil {
		if isDuplicateKey(err) {
			Fail(c, apperr.Conflict("Ya existe una categoría con ese nombre."))
			return
		}
		Fail(c, apperr.Internal("error al crear la categoría", err))
		return
	}
	Created(c, cat)
}

// Update changes name, type or budget of an owned category
// @Summary Actualizar categoría
// @Tags Categorías
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID de categoría"
// @Param request body CategoryUpdateRequest true "Campos a cambiar"
// @Success 200 {object} models.Category
// @Failure 403 {object} Response "No es el dueño"
// @Failure 404 {object} Response "No encontrada"
// @Failure 409 {object} Response "Nombre repetido"
// @Router /api/categories/{id} [put]
func (h *CategoryHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := parseID(c, "id")
	if err != nil {
		Fail(c, err)
		return
	}

	cat, err := findOwnedCategory(id, userID)
	if err != nil {
		Fail(c, err)
		return
	}

	var req CategoryUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, bindError("Datos de categoría inválidos.", err))
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			Fail(c, apperr.Validation("El nombre de la categoría es requerido."))
			return
		}
		if name != cat.Name {
			taken, err := nameTaken(userID, name, cat.ID)
			if err != nil {
				Fail(c, apperr.Internal("error al verificar la categoría", err))
				return
			}
			if taken {
				Fail(c, apperr.Conflict("Ya existe una categoría con ese nombre."))
				return
			}
			updates["name"] = name
		}
	}
	if req.Type != nil {
		if !models.ValidType(*req.Type) {
			Fail(c, apperr.Validation("El tipo debe ser INGRESO o EGRESO."))
			return
		}
		updates["type"] = *req.Type
	}
	if req.MonthlyBudget != nil {
		if *req.MonthlyBudget < 0 {
			Fail(c, apperr.Validation("El presupuesto mensual no puede ser negativo."))
			return
		}
		updates["monthly_budget"] = *req.MonthlyBudget
	}
	if len(updates) == 0 {
		Success(c, cat)
		return
	}

	if err := database.DB.Model(cat).Updates(updates).Error; err != nil {
		if isDuplicateKey(err) {
			Fail(c, apperr.Conflict("Ya existe una categoría con ese nombre."))
			return
		}
		Fail(c, apperr.Internal("error al actualizar la categoría", err))
		return
	}
	Success(c, cat)
}

// Delete deactivates an owned category; its transactions are kept
// @Summary Eliminar categoría
// @Description Eliminación suave: la categoría queda inactiva
// @Tags Categorías
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID de categoría"
// @Success 200 {object} MessageResponse
// @Failure 403 {object} Response "No es el dueño"
// @Failure 404 {object} Response "No encontrada"
// @Router /api/categories/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := parseID(c, "id")
	if err != nil {
		Fail(c, err)
		return
	}

	cat, err := findOwnedCategory(id, userID)
	if err != nil {
		Fail(c, err)
		return
	}

	if err := database.DB.Model(cat).Update("is_active", false).Error; err != nil {
		Fail(c, apperr.Internal("error al eliminar la categoría", err))
		return
	}
	SuccessWithMessage(c, "Categoría marcada como inactiva (eliminación suave).")
}

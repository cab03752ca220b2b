package api

import (
	"strings"
	"time"

	"baluarte/apperr"
	"baluarte/database"
	"baluarte/middleware"
	"baluarte/models"
	"baluarte/service"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// UserHandler profile and plan of the current user
type UserHandler struct{}

// NewUserHandler creates the user handler
func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// ProfileResponse public profile
type ProfileResponse struct {
	ID                uint   `json:"id"`
	Username          string `json:"username"`
	Email             string `json:"email"`
	BusinessName      string `json:"businessName"`
	MainCurrency      string `json:"mainCurrency"`
	Role              string `json:"role"`
	ProfileConfigured bool   `json:"profileConfigured"`
}

// ProfileConfigRequest business profile setup
type ProfileConfigRequest struct {
	BusinessName string `json:"businessName" binding:"max=120" example:"Kiosco Lola"`
	MainCurrency string `json:"mainCurrency" example:"ARS"`
}

// ProfileConfigResponse result of the profile setup
type ProfileConfigResponse struct {
	ID                uint   `json:"id"`
	BusinessName      string `json:"businessName"`
	MainCurrency      string `json:"mainCurrency"`
	ProfileConfigured bool   `json:"profileConfigured"`
	Message           string `json:"message"`
}

// ChangePasswordRequest password change
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required" example:"secreto123"`
	NewPassword string `json:"newPassword" binding:"required,min=6,max=72" example:"otroSecreto456"`
}

// currentUser user attached by the auth gate
func currentUser(c *gin.Context) (*models.User, error) {
	if u := middleware.GetCurrentUser(c); u != nil {
		return u, nil
	}
	userID := middleware.GetCurrentUserID(c)
	if userID == 0 {
		return nil, apperr.Unauthorized("No autorizado")
	}
	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		return nil, apperr.NotFound("Usuario no encontrado")
	}
	middleware.SetCurrentUser(c, &user)
	return &user, nil
}

// GetProfile current user's profile
// @Summary Perfil
// @Tags Usuarios
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ProfileResponse
// @Failure 401 {object} Response
// @Router /api/users/profile [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		Fail(c, err)
		return
	}

	Success(c, ProfileResponse{
		ID:                user.ID,
		Username:          user.Username,
		Email:             user.Email,
		BusinessName:      user.BusinessName,
		MainCurrency:      user.MainCurrency,
		Role:              user.Role,
		ProfileConfigured: user.ProfileConfigured,
	})
}

// ConfigureProfile sets the business name and main currency.
// The base plan is always ARS; PRO may choose any currency of its plan.
// @Summary Configurar perfil de negocio
// @Tags Usuarios
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ProfileConfigRequest true "Perfil"
// @Success 200 {object} ProfileConfigResponse
// @Failure 400 {object} Response "Moneda no permitida"
// @Router /api/users/profile/config [put]
func (h *UserHandler) ConfigureProfile(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		Fail(c, err)
		return
	}

	var req ProfileConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, bindError("Datos de perfil inválidos.", err))
		return
	}

	businessName := user.BusinessName
	if name := strings.TrimSpace(req.BusinessName); name != "" {
		businessName = name
	}

	currency := models.CurrencyARS
	if user.IsPro() {
		currency = user.MainCurrency
		if req.MainCurrency != "" {
			requested := strings.ToUpper(strings.TrimSpace(req.MainCurrency))
			if !models.ValidCurrency(requested) || !service.FeaturesFor(user.Role).AllowsCurrency(requested) {
				Fail(c, apperr.Validation("Moneda no permitida, usá ARS o USD."))
				return
			}
			currency = requested
		}
	}

	updates := map[string]interface{}{
		"business_name":      businessName,
		"main_currency":      currency,
		"profile_configured": true,
	}
	if err := database.DB.Model(user).Updates(updates).Error; err != nil {
		Fail(c, apperr.Internal("error al guardar el perfil", err))
		return
	}

	Success(c, ProfileConfigResponse{
		ID:                user.ID,
		BusinessName:      businessName,
		MainCurrency:      currency,
		ProfileConfigured: true,
		Message:           "Perfil de negocio configurado exitosamente.",
	})
}

// ChangePassword replaces the password after checking the current one
// @Summary Cambiar contraseña
// @Tags Usuarios
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ChangePasswordRequest true "Contraseñas"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} Response "Contraseña actual incorrecta"
// @Router /api/users/profile/password [put]
func (h *UserHandler) ChangePassword(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		Fail(c, err)
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, bindError("La nueva contraseña debe tener al menos 6 caracteres.", err))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		Fail(c, apperr.Validation("La contraseña actual es incorrecta."))
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		Fail(c, apperr.Internal("error al cifrar la contraseña", err))
		return
	}

	if err := database.DB.Model(user).Update("password", string(hashedPassword)).Error; err != nil {
		Fail(c, apperr.Internal("error al actualizar la contraseña", err))
		return
	}

	SuccessWithMessage(c, "Contraseña actualizada exitosamente.")
}

// GetPlan role, features and this month's usage
// @Summary Plan actual
// @Tags Usuarios
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.PlanUsage
// @Router /api/users/plan [get]
func (h *UserHandler) GetPlan(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		Fail(c, err)
		return
	}

	var count int64
	if !user.IsPro() {
		count, err = monthTransactionCount(database.DB, user.ID, time.Now())
		if err != nil {
			Fail(c, apperr.Internal("error al contar transacciones", err))
			return
		}
	}

	Success(c, service.NewPlanUsage(user.Role, count))
}

package api

import (
	"errors"
	"strings"

	"baluarte/apperr"
	"baluarte/config"
	"baluarte/database"
	"baluarte/middleware"
	"baluarte/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthHandler registration and login
type AuthHandler struct {
	cfg *config.Config
}

// NewAuthHandler creates the auth handler
func NewAuthHandler(cfg *config.Config) *AuthHandler {
	return &AuthHandler{cfg: cfg}
}

// RegisterRequest registration body
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50" example:"kiosco_lola"`
	Email    string `json:"email" binding:"required,email,max=100" example:"lola@example.com"`
	Password string `json:"password" binding:"required,min=6,max=72" example:"secreto123"`
}

// LoginRequest login body. Email also accepts the username.
type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"lola@example.com"`
	Password string `json:"password" binding:"required" example:"secreto123"`
}

// AuthResponse account summary plus a fresh token
type AuthResponse struct {
	ID                uint   `json:"id"`
	Username          string `json:"username"`
	Email             string `json:"email"`
	Role              string `json:"role"`
	ProfileConfigured bool   `json:"profileConfigured"`
	Token             string `json:"token"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (h *AuthHandler) authResponse(user *models.User) (*AuthResponse, error) {
	token, err := middleware.GenerateToken(user.ID, user.Username, h.cfg.JWT.ExpireTime)
	if err != nil {
		return nil, apperr.Internal("error al generar el token", err)
	}
	return &AuthResponse{
		ID:                user.ID,
		Username:          user.Username,
		Email:             user.Email,
		Role:              user.Role,
		ProfileConfigured: user.ProfileConfigured,
		Token:             token,
	}, nil
}

// Register creates an account on the base plan
// @Summary Registrar usuario
// @Description Crea una cuenta en el Plan Base y devuelve un token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Datos de registro"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} Response "Datos inválidos o usuario existente"
// @Failure 429 {object} Response "Demasiados intentos"
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, bindError("Por favor, completá usuario, email y contraseña.", err))
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = normalizeEmail(req.Email)

	var existing models.User
	err := database.DB.Where("email = ? OR username = ?", req.Email, req.Username).First(&existing).Error
	if err == nil {
		if existing.Email == req.Email {
			Fail(c, apperr.Validation("El usuario ya existe con ese correo electrónico."))
			return
		}
		Fail(c, apperr.Validation("El nombre de usuario ya está en uso."))
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		Fail(c, apperr.Internal("error al verificar el usuario", err))
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		Fail(c, apperr.Internal("error al cifrar la contraseña", err))
		return
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		Password:     string(hashedPassword),
		MainCurrency: models.CurrencyARS,
		Role:         models.RoleBase,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		// lost a race with another registration for the same email or username
		if isDuplicateKey(err) {
			Fail(c, apperr.Validation("El usuario ya existe con ese correo electrónico o nombre de usuario."))
			return
		}
		Fail(c, apperr.Internal("error al crear el usuario", err))
		return
	}

	resp, err := h.authResponse(&user)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, resp)
}

// Login exchanges credentials for a token
// @Summary Iniciar sesión
// @Description Autentica con email (o usuario) y contraseña
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credenciales"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} Response "Datos inválidos"
// @Failure 401 {object} Response "Credenciales inválidas"
// @Failure 429 {object} Response "Demasiados intentos"
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, bindError("Por favor, ingresá email y contraseña.", err))
		return
	}

	ident := strings.TrimSpace(req.Email)
	var user models.User
	if err := database.DB.Where("email = ? OR username = ?", normalizeEmail(ident), ident).First(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			Fail(c, apperr.Internal("error al buscar el usuario", err))
			return
		}
		Fail(c, apperr.Unauthorized("Email o contraseña inválidos"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		Fail(c, apperr.Unauthorized("Email o contraseña inválidos"))
		return
	}

	resp, err := h.authResponse(&user)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, resp)
}

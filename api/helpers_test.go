package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"baluarte/config"
	"baluarte/database"
	"baluarte/middleware"
	"baluarte/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var (
	userColumns        = []string{"id", "username", "email", "password", "business_name", "main_currency", "role", "profile_configured", "created_at", "updated_at"}
	categoryColumns    = []string{"id", "user_id", "name", "type", "monthly_budget", "is_active", "created_at", "updated_at"}
	transactionColumns = []string{"id", "user_id", "category_id", "type", "amount", "date", "description", "created_at", "updated_at"}
)

func setupMockDB(t *testing.T) (sqlmock.Sqlmock, func()) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	oldDB := database.DB
	database.DB = gormDB
	return mock, func() {
		database.DB = oldDB
		sqlDB.Close()
	}
}

func setupTestConfig() *config.Config {
	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "debug"},
		JWT:    config.JWTConfig{Secret: "test-secret", ExpireTime: time.Hour},
	}
	config.GlobalConfig = cfg
	middleware.InitJWT(cfg)
	return cfg
}

func setUserIDMiddleware(userID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	}
}

// setUserMiddleware stands in for JWTAuth + LoadCurrentUser
func setUserMiddleware(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.SetCurrentUser(c, user)
		c.Next()
	}
}

func baseUser(id uint) *models.User {
	return &models.User{ID: id, Username: "kiosco", Email: "kiosco@x.com", MainCurrency: models.CurrencyARS, Role: models.RoleBase}
}

func proUser(id uint) *models.User {
	u := baseUser(id)
	u.Role = models.RolePro
	return u
}

func newTestRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(mw...)
	return router
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req = httptest.NewRequest(method, path, nil)
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeMap(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) []map[string]interface{} {
	var resp []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

package middleware

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"baluarte/config"
	"baluarte/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
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

var userColumns = []string{"id", "username", "email", "password", "business_name", "main_currency", "role", "profile_configured", "created_at", "updated_at"}

func protectedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(JWTAuth(), LoadCurrentUser())
	router.GET("/me", func(c *gin.Context) {
		u := GetCurrentUser(c)
		c.JSON(200, gin.H{"email": u.Email, "role": u.Role})
	})
	return router
}

func TestLoadCurrentUser(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	initJWTTestConfig()
	defer func() { config.GlobalConfig = nil }()
	InitJWT(config.GlobalConfig)

	mock.ExpectQuery("SELECT .* FROM `users`").
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(5, "ana", "ana@x.com", "hash", "", "ARS", "base", false, time.Now(), time.Now()))

	token, _ := GenerateToken(5, "ana", time.Hour)
	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	protectedRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"email":"ana@x.com","role":"base"}`, w.Body.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadCurrentUser_UserGone(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	initJWTTestConfig()
	defer func() { config.GlobalConfig = nil }()
	InitJWT(config.GlobalConfig)

	mock.ExpectQuery("SELECT .* FROM `users`").
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows(userColumns))

	token, _ := GenerateToken(9, "ghost", time.Hour)
	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	protectedRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "usuario no encontrado")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadCurrentUser_DBError(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	initJWTTestConfig()
	defer func() { config.GlobalConfig = nil }()
	InitJWT(config.GlobalConfig)

	mock.ExpectQuery("SELECT .* FROM `users`").
		WithArgs(5).
		WillReturnError(errors.New("connection refused"))

	token, _ := GenerateToken(5, "ana", time.Hour)
	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	protectedRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"code":500,"message":"error interno del servidor"}`, w.Body.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCurrentUser_Absent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, GetCurrentUser(c))
}

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	router := gin.New()
	router.Use(RequestLogger(logger))
	router.GET("/ping", func(c *gin.Context) {
		c.String(200, GetRequestID(c))
	})
	router.GET("/missing", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})

	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))

	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, httptest.NewRequest("GET", "/missing", nil))
	assert.Len(t, w2.Header().Get(RequestIDHeader), 36)
	assert.Contains(t, buf.String(), `"path":"/missing"`)
	assert.Contains(t, buf.String(), `"status":404`)
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Recovery(zerolog.Nop()))
	router.GET("/boom", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"code":500,"message":"error interno del servidor"}`, w.Body.String())
}

package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidType(t *testing.T) {
	assert.True(t, ValidType(TypeIngreso))
	assert.True(t, ValidType(TypeEgreso))
	assert.False(t, ValidType("ingreso"))
	assert.False(t, ValidType(""))
}

func TestValidCurrency(t *testing.T) {
	assert.True(t, ValidCurrency("ARS"))
	assert.True(t, ValidCurrency("USD"))
	assert.False(t, ValidCurrency("EUR"))
}

func TestUser_IsPro(t *testing.T) {
	var nilUser *User
	assert.False(t, nilUser.IsPro())
	assert.False(t, (&User{Role: RoleBase}).IsPro())
	assert.True(t, (&User{Role: RolePro}).IsPro())
}

func TestUser_PasswordNeverSerialized(t *testing.T) {
	b, err := json.Marshal(User{ID: 1, Email: "a@b.com", Password: "$2a$10$hash", Role: RoleBase})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "hash")
	assert.Contains(t, string(b), `"profileConfigured":false`)
}

func TestTransaction_CategoryName(t *testing.T) {
	tx := Transaction{}
	assert.Equal(t, "", tx.CategoryName())
	tx.Category = &Category{Name: "Alquiler", IsActive: false}
	assert.Equal(t, "Alquiler", tx.CategoryName())
}

package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/smartbiz/smartbiz-backend/internal/auth"
	"github.com/smartbiz/smartbiz-backend/pkg/database"
	"github.com/smartbiz/smartbiz-backend/pkg/middleware"
)

func setupTest(t *testing.T) (*gorm.DB, *gin.Engine) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	gin.SetMode(gin.TestMode)
	r := gin.New()
	protected := r.Group("", middleware.AuthRequired(db))
	protected.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"role": c.GetString("role"), "user_name": c.GetString("user_name")})
	})
	protected.GET("/manager-only", middleware.ManagerRequired(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return db, r
}

func seedUser(t *testing.T, db *gorm.DB, role string, active bool) database.User {
	t.Helper()
	user := database.User{
		IDNumber:     uuid.NewString()[:8],
		FullName:     "Some User",
		Role:         role,
		PhoneNumber:  "+254712345678",
		PasswordHash: "x",
		IsActive:     active,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func getWithToken(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequired(t *testing.T) {
	db, r := setupTest(t)
	user := seedUser(t, db, "operator", true)
	token, err := auth.IssueToken(user.ID, user.Role)
	require.NoError(t, err)

	w := getWithToken(r, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = getWithToken(r, "/me", "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = getWithToken(r, "/me", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"operator"`)
}

func TestAuthRequiredViaCookie(t *testing.T) {
	db, r := setupTest(t)
	user := seedUser(t, db, "operator", true)
	token, err := auth.IssueToken(user.ID, user.Role)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthRequiredRejectsStaleToken(t *testing.T) {
	db, r := setupTest(t)

	// Token for a user that no longer exists
	token, err := auth.IssueToken(uuid.New(), "manager")
	require.NoError(t, err)
	w := getWithToken(r, "/me", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Token for a deactivated account
	inactive := seedUser(t, db, "operator", false)
	token, err = auth.IssueToken(inactive.ID, inactive.Role)
	require.NoError(t, err)
	w = getWithToken(r, "/me", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestManagerRequired(t *testing.T) {
	db, r := setupTest(t)

	operator := seedUser(t, db, "operator", true)
	operatorToken, err := auth.IssueToken(operator.ID, operator.Role)
	require.NoError(t, err)
	w := getWithToken(r, "/manager-only", operatorToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	manager := seedUser(t, db, "manager", true)
	managerToken, err := auth.IssueToken(manager.ID, manager.Role)
	require.NoError(t, err)
	w = getWithToken(r, "/manager-only", managerToken)
	assert.Equal(t, http.StatusOK, w.Code)
}

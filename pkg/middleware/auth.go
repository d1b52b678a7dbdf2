package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smartbiz/smartbiz-backend/internal/auth"
	"github.com/smartbiz/smartbiz-backend/pkg/database"
)

// AuthRequired verifies the session token and loads the user behind it.
// The user row must still exist and be active; a stale token for a removed
// account is rejected the same way as a bad one.
func AuthRequired(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := auth.TokenFromRequest(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No authentication token found"})
			return
		}

		claims, err := auth.VerifyToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		var user database.User
		if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}
		if !user.IsActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Account is deactivated"})
			return
		}

		c.Set("user_id", user.ID.String())
		c.Set("role", user.Role)
		c.Set("user_name", user.FullName)

		c.Next()
	}
}

// ManagerRequired gates a route to users with the manager role
func ManagerRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("role") != "manager" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Manager access required"})
			return
		}
		c.Next()
	}
}

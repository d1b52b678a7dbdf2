package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/smartbiz/smartbiz-backend/pkg/database"
	"github.com/smartbiz/smartbiz-backend/pkg/validators"
)

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

type RegisterRequest struct {
	IDNumber        string `json:"id_number" binding:"required,min=6,max=20"`
	FullName        string `json:"full_name" binding:"required,min=2,max=100"`
	Role            string `json:"role" binding:"required,oneof=manager operator"`
	PhoneNumber     string `json:"phone_number" binding:"required"`
	InitialPassword string `json:"initial_password" binding:"required"`
}

type LoginRequest struct {
	IDNumber string `json:"id_number" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// currentUser resolves the optional session on a public route. Register is
// public so the very first manager can be bootstrapped, but an existing
// session still determines what the caller may do.
func (h *Handler) currentUser(c *gin.Context) *database.User {
	tokenString := TokenFromRequest(c)
	if tokenString == "" {
		return nil
	}
	claims, err := VerifyToken(tokenString)
	if err != nil {
		return nil
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil
	}
	var user database.User
	if err := h.db.Where("id = ?", userID).First(&user).Error; err != nil {
		return nil
	}
	return &user
}

// TokenFromRequest pulls the session token from the Authorization header or,
// for browser pages, the httponly cookie. Both carry the same signed token.
func TokenFromRequest(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token != authHeader {
			return token
		}
		return ""
	}
	token, err := c.Cookie("token")
	if err != nil {
		return ""
	}
	return token
}

// Register creates a new user. Only managers may register users, with one
// exception: while no active manager exists, an unauthenticated request may
// create the first manager account.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	currentUser := h.currentUser(c)
	if req.Role == "manager" && currentUser == nil {
		var managerCount int64
		h.db.Model(&database.User{}).Where("role = ? AND is_active = ?", "manager", true).Count(&managerCount)
		if managerCount > 0 {
			c.JSON(http.StatusForbidden, gin.H{"error": "Manager registration requires authentication"})
			return
		}
	} else if currentUser == nil || currentUser.Role != "manager" {
		c.JSON(http.StatusForbidden, gin.H{"error": "Manager access required for registration"})
		return
	}

	if !validators.ValidIDNumber(req.IDNumber) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID number format"})
		return
	}
	if !validators.ValidPhoneNumber(req.PhoneNumber) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid phone number format"})
		return
	}
	if !validators.ValidPassword(req.InitialPassword) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 8 characters with an uppercase letter, a lowercase letter and a digit"})
		return
	}

	var existing database.User
	if err := h.db.Where("id_number = ?", req.IDNumber).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "User with this ID number already exists"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.InitialPassword), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := database.User{
		IDNumber:     req.IDNumber,
		FullName:     req.FullName,
		Role:         req.Role,
		PhoneNumber:  req.PhoneNumber,
		PasswordHash: string(hashedPassword),
		FirstLogin:   true,
		IsActive:     true,
	}
	if currentUser != nil {
		user.CreatedBy = &currentUser.ID
	}

	if err := h.db.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully",
		"user_id": user.ID.String(),
	})
}

// Login authenticates a user with ID number and password. The issued token is
// returned in the body for API clients and set as an httponly cookie for
// browser pages.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user database.User
	if err := h.db.Where("id_number = ?", req.IDNumber).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect ID number or password"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect ID number or password"})
		return
	}

	if !user.IsActive {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Account is deactivated"})
		return
	}

	now := time.Now().UTC()
	h.db.Model(&user).UpdateColumn("last_login", now)

	token, err := IssueToken(user.ID, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	expiresIn := int64(AccessTokenExpiry.Seconds())
	c.SetCookie("token", token, int(expiresIn), "/", "", true, true)

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"expires_in":   expiresIn,
		"role":         user.Role,
		"user_name":    user.FullName,
		"first_login":  user.FirstLogin,
	})
}

// ChangePassword verifies the current password and replaces it. A successful
// change clears the first-login flag.
func (h *Handler) ChangePassword(c *gin.Context) {
	var req PasswordChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString("user_id")
	var user database.User
	if err := h.db.Where("id = ?", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Current password is incorrect"})
		return
	}

	if !validators.ValidPassword(req.NewPassword) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 8 characters with an uppercase letter, a lowercase letter and a digit"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	if err := h.db.Model(&user).Updates(map[string]interface{}{
		"password_hash": string(hashedPassword),
		"first_login":   false,
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update password"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}

// Profile returns the current user's profile
func (h *Handler) Profile(c *gin.Context) {
	userID := c.GetString("user_id")

	var user database.User
	if err := h.db.Where("id = ?", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id_number":    user.IDNumber,
		"full_name":    user.FullName,
		"role":         user.Role,
		"phone_number": user.PhoneNumber,
		"last_login":   user.LastLogin,
		"first_login":  user.FirstLogin,
	})
}

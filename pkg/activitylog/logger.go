package activitylog

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smartbiz/smartbiz-backend/pkg/database"
)

// Logger handles activity logging for audit trail
type Logger struct {
	db *gorm.DB
}

// NewLogger creates a new activity logger
func NewLogger(db *gorm.DB) *Logger {
	return &Logger{db: db}
}

// Log creates an activity log entry for the acting user on the request
func (l *Logger) Log(c *gin.Context, action, entityType string, entityID *uuid.UUID, details interface{}) error {
	userID, _ := uuid.Parse(c.GetString("user_id"))

	detailsJSON := ""
	if details != nil {
		if jsonBytes, err := json.Marshal(details); err == nil {
			detailsJSON = string(jsonBytes)
		}
	}

	entry := database.ActivityLog{
		UserID:     userID,
		UserName:   c.GetString("user_name"),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    detailsJSON,
	}

	return l.db.Create(&entry).Error
}

// LogCreate logs a create action
func (l *Logger) LogCreate(c *gin.Context, entityType string, entityID uuid.UUID, newData interface{}) error {
	return l.Log(c, "create_"+entityType, entityType, &entityID, map[string]interface{}{
		"new": newData,
	})
}

// LogUpdate logs an update action with the applied changes
func (l *Logger) LogUpdate(c *gin.Context, entityType string, entityID uuid.UUID, changes interface{}) error {
	return l.Log(c, "update_"+entityType, entityType, &entityID, map[string]interface{}{
		"changes": changes,
	})
}

// LogDelete logs a delete action
func (l *Logger) LogDelete(c *gin.Context, entityType string, entityID uuid.UUID, oldData interface{}) error {
	return l.Log(c, "delete_"+entityType, entityType, &entityID, map[string]interface{}{
		"deleted": oldData,
	})
}

// internal/models/notification.go
package models

import (
	"github.com/google/uuid"
)

type Notification struct {
	BaseModel
	UserID    uuid.UUID        `json:"user_id" gorm:"type:uuid;not null;index"`
	Title     string           `json:"title" gorm:"not null"`
	Message   string           `json:"message" gorm:"type:text;not null"`
	Type      NotificationType `json:"type" gorm:"type:varchar(50);not null"`
	RelatedID *uuid.UUID       `json:"related_id,omitempty" gorm:"type:uuid"`
	Read      bool             `json:"read" gorm:"not null;default:false"`
}

// internal/models/user_contact.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// UserContact is the account service's projection of how to reach a user.
// Users without a row still get in-app notifications.
type UserContact struct {
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;primary_key"`
	Email     string    `json:"email" gorm:"not null"`
	Locale    string    `json:"locale" gorm:"type:varchar(10)"`
	UpdatedAt time.Time `json:"updated_at"`
}

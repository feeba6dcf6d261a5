// internal/models/listing.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Offer and Property belong to the listing side of the marketplace. The
// contract engine only reads offers and flips property availability.

type Offer struct {
	BaseModel
	PropertyID  uuid.UUID   `json:"property_id" gorm:"type:uuid;not null;index"`
	TenantID    uuid.UUID   `json:"tenant_id" gorm:"type:uuid;not null;index"`
	OwnerID     uuid.UUID   `json:"owner_id" gorm:"type:uuid;not null;index"`
	StartDate   *time.Time  `json:"start_date,omitempty"`
	EndDate     *time.Time  `json:"end_date,omitempty"`
	MonthlyRent float64     `json:"monthly_rent"`
	Deposit     float64     `json:"deposit"`
	Conditions  string      `json:"conditions,omitempty" gorm:"type:text"`
	Status      OfferStatus `json:"status" gorm:"type:varchar(40);not null;default:'pending'"`
}

type Property struct {
	BaseModel
	OwnerID uuid.UUID      `json:"owner_id" gorm:"type:uuid;not null;index"`
	Title   string         `json:"title" gorm:"not null"`
	Address string         `json:"address"`
	Status  PropertyStatus `json:"status" gorm:"type:varchar(20);not null;default:'available'"`
}

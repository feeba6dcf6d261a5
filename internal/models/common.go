// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported JSONB source type %T", value)
	}

	return json.Unmarshal(bytes, j)
}

// Clone returns a shallow copy so snapshots do not alias the live map.
func (j JSONB) Clone() JSONB {
	if j == nil {
		return nil
	}
	out := make(JSONB, len(j))
	for k, v := range j {
		out[k] = v
	}
	return out
}

// Enums
type ContractStatus string

const (
	ContractStatusDraft                  ContractStatus = "draft"
	ContractStatusOwnerSigned            ContractStatus = "owner_signed"
	ContractStatusFullySigned            ContractStatus = "fully_signed"
	ContractStatusActive                 ContractStatus = "active"
	ContractStatusWaitingForModification ContractStatus = "waiting_for_modification"
	ContractStatusModificationInProgress ContractStatus = "modification_in_progress"
	ContractStatusModified               ContractStatus = "modified"
	ContractStatusExpired                ContractStatus = "expired"
	ContractStatusTerminated             ContractStatus = "terminated"
	ContractStatusCancelled              ContractStatus = "cancelled"
)

type ContractRole string

const (
	ContractRoleOwner  ContractRole = "owner"
	ContractRoleTenant ContractRole = "tenant"
)

// VersionStatusSuperseded tags archived snapshots.
const VersionStatusSuperseded = "superseded"

type ChangeRequestKind string

const (
	ChangeRequestKindModification ChangeRequestKind = "modification"
	ChangeRequestKindTermination  ChangeRequestKind = "termination"
)

type ChangeRequestStatus string

const (
	ChangeRequestStatusPending                ChangeRequestStatus = "pending"
	ChangeRequestStatusAccepted               ChangeRequestStatus = "accepted"
	ChangeRequestStatusRejected               ChangeRequestStatus = "rejected"
	ChangeRequestStatusModificationInProgress ChangeRequestStatus = "modification_in_progress"
	ChangeRequestStatusCompleted              ChangeRequestStatus = "completed"
	ChangeRequestStatusLapsed                 ChangeRequestStatus = "lapsed"
)

type OfferStatus string

const (
	OfferStatusPending           OfferStatus = "pending"
	OfferStatusAccepted          OfferStatus = "accepted"
	OfferStatusRejected          OfferStatus = "rejected"
	OfferStatusContractRequested OfferStatus = "contract_requested"
)

type PropertyStatus string

const (
	PropertyStatusAvailable PropertyStatus = "available"
	PropertyStatusRented    PropertyStatus = "rented"
)

type NotificationType string

const (
	NotificationTypeContract             NotificationType = "contract"
	NotificationTypeSignatureRequired    NotificationType = "contract_signature_required"
	NotificationTypeContractActive       NotificationType = "contract_active"
	NotificationTypeContractModified     NotificationType = "contract_modified"
	NotificationTypeContractExpired      NotificationType = "contract_expired"
	NotificationTypeModificationRequest  NotificationType = "contract_modification_request"
	NotificationTypeModificationAccepted NotificationType = "contract_modification_accepted"
	NotificationTypeModificationRejected NotificationType = "contract_modification_rejected"
	NotificationTypeModificationLapsed   NotificationType = "contract_modification_lapsed"
	NotificationTypeTerminationRequest   NotificationType = "contract_termination_request"
	NotificationTypeTerminationAccepted  NotificationType = "contract_termination_accepted"
	NotificationTypeTerminationRejected  NotificationType = "contract_termination_rejected"
	NotificationTypeModificationReady    NotificationType = "contract_modification_ready"
)

// internal/models/change_request.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ChangeRequest is an owner proposal on an active contract that the tenant
// accepts or rejects. Modification and termination share the table; the
// payload columns of the other kind stay empty.
type ChangeRequest struct {
	BaseModel
	Kind           ChangeRequestKind   `json:"kind" gorm:"type:varchar(20);not null;index"`
	ContractID     uuid.UUID           `json:"contract_id" gorm:"type:uuid;not null;index"`
	RequestedBy    uuid.UUID           `json:"requested_by" gorm:"type:uuid;not null;index"`
	Status         ChangeRequestStatus `json:"status" gorm:"type:varchar(40);not null;default:'pending';index"`
	TenantResponse string              `json:"tenant_response,omitempty" gorm:"type:text"`
	RespondedAt    *time.Time          `json:"responded_at,omitempty"`

	// modification payload
	FieldsToModify       pq.StringArray `json:"fields_to_modify,omitempty" gorm:"type:text"`
	ModificationReason   string         `json:"modification_reason,omitempty" gorm:"type:text"`
	RequestedChanges     JSONB          `json:"requested_changes,omitempty" gorm:"type:jsonb"`
	ModificationDeadline *time.Time     `json:"modification_deadline,omitempty"`

	// termination payload
	Reason         string `json:"reason,omitempty" gorm:"type:text"`
	DetailedReason string `json:"detailed_reason,omitempty" gorm:"type:text"`
}

func (ChangeRequest) TableName() string {
	return "contract_change_requests"
}

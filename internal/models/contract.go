// internal/models/contract.go
package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Contract struct {
	BaseModel
	OfferID             uuid.UUID      `json:"offer_id" gorm:"type:uuid;not null;index"`
	PropertyID          uuid.UUID      `json:"property_id" gorm:"type:uuid;not null;index"`
	TenantID            uuid.UUID      `json:"tenant_id" gorm:"type:uuid;not null;index"`
	OwnerID             uuid.UUID      `json:"owner_id" gorm:"type:uuid;not null;index"`
	ContractData        JSONB          `json:"contract_data" gorm:"type:jsonb"`
	OwnerSignature      *string        `json:"owner_signature,omitempty" gorm:"type:text"`
	TenantSignature     *string        `json:"tenant_signature,omitempty" gorm:"type:text"`
	OwnerSignedAt       *time.Time     `json:"owner_signed_at,omitempty"`
	TenantSignedAt      *time.Time     `json:"tenant_signed_at,omitempty"`
	Status              ContractStatus `json:"status" gorm:"type:varchar(40);not null;default:'draft';index"`
	TenantSignDeadline  *time.Time     `json:"tenant_sign_deadline,omitempty" gorm:"index"`
	ModificationSummary string         `json:"modification_summary,omitempty" gorm:"type:text"`
	TerminationReason   *string        `json:"termination_reason,omitempty" gorm:"type:text"`
	TerminatedBy        *uuid.UUID     `json:"terminated_by,omitempty" gorm:"type:uuid"`
	TerminatedAt        *time.Time     `json:"terminated_at,omitempty"`
	PdfURL              string         `json:"pdf_url,omitempty"`
	ContractStartDate   *time.Time     `json:"contract_start_date,omitempty"`
	ContractEndDate     *time.Time     `json:"contract_end_date,omitempty"`
}

// IsParty reports whether the user is the owner or the tenant of the contract.
func (c *Contract) IsParty(userID uuid.UUID) bool {
	return c.OwnerID == userID || c.TenantID == userID
}

// PartyFor returns the user bound to the given role.
func (c *Contract) PartyFor(role ContractRole) uuid.UUID {
	if role == ContractRoleOwner {
		return c.OwnerID
	}
	return c.TenantID
}

// ErrVersionImmutable is returned when code attempts to change an archived version.
var ErrVersionImmutable = errors.New("contract versions are immutable")

// ContractVersion is an archived snapshot of a contract taken before a modification.
type ContractVersion struct {
	ID                 uuid.UUID  `json:"id" gorm:"type:uuid;primary_key"`
	ContractID         uuid.UUID  `json:"contract_id" gorm:"type:uuid;not null;uniqueIndex:idx_contract_versions_number"`
	Version            int        `json:"version" gorm:"not null;uniqueIndex:idx_contract_versions_number"`
	ContractData       JSONB      `json:"contract_data" gorm:"type:jsonb"`
	OwnerSignature     *string    `json:"owner_signature,omitempty" gorm:"type:text"`
	TenantSignature    *string    `json:"tenant_signature,omitempty" gorm:"type:text"`
	OwnerSignedAt      *time.Time `json:"owner_signed_at,omitempty"`
	TenantSignedAt     *time.Time `json:"tenant_signed_at,omitempty"`
	Status             string     `json:"status" gorm:"type:varchar(40);not null"`
	ModificationReason string     `json:"modification_reason" gorm:"type:text"`
	DataHash           string     `json:"data_hash" gorm:"type:varchar(64)"`
	CreatedBy          uuid.UUID  `json:"created_by" gorm:"type:uuid"`
	CreatedAt          time.Time  `json:"created_at"`
}

func (v *ContractVersion) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

func (v *ContractVersion) BeforeUpdate(tx *gorm.DB) error {
	return ErrVersionImmutable
}

func (v *ContractVersion) BeforeDelete(tx *gorm.DB) error {
	return ErrVersionImmutable
}

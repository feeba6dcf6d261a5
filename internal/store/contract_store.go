// internal/store/contract_store.go
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/rental-backend/internal/models"
	"github.com/javajoker/rental-backend/internal/utils"
)

type ContractStore struct {
	db *gorm.DB
}

func NewContractStore(db *gorm.DB) *ContractStore {
	return &ContractStore{db: db}
}

// WithTx returns a store bound to the given transaction.
func (s *ContractStore) WithTx(tx *gorm.DB) *ContractStore {
	return &ContractStore{db: tx}
}

func (s *ContractStore) Create(ctx context.Context, contract *models.Contract) error {
	if err := s.db.WithContext(ctx).Create(contract).Error; err != nil {
		return fmt.Errorf("create contract: %w", translate(err))
	}
	return nil
}

func (s *ContractStore) Get(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	var contract models.Contract
	if err := s.db.WithContext(ctx).First(&contract, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &contract, nil
}

// GetForUpdate reads the contract under a row lock when the dialect allows it.
func (s *ContractStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	var contract models.Contract
	if err := forUpdate(s.db.WithContext(ctx)).First(&contract, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &contract, nil
}

type ContractFilter struct {
	utils.PaginationParams
	UserID    uuid.UUID
	OwnerOnly bool
	Status    *models.ContractStatus
}

func (s *ContractStore) List(ctx context.Context, filter ContractFilter) ([]models.Contract, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Contract{})
	if filter.OwnerOnly {
		query = query.Where("owner_id = ?", filter.UserID)
	} else {
		query = query.Where("owner_id = ? OR tenant_id = ?", filter.UserID, filter.UserID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count contracts: %w", err)
	}

	var contracts []models.Contract
	query = utils.ApplySort(query, filter.PaginationParams, []string{"created_at", "updated_at", "status"})
	if err := utils.ApplyPagination(query, filter.PaginationParams).Find(&contracts).Error; err != nil {
		return nil, 0, fmt.Errorf("list contracts: %w", err)
	}
	return contracts, total, nil
}

// HasActiveForProperty reports whether another contract on the property is active.
func (s *ContractStore) HasActiveForProperty(ctx context.Context, propertyID, excludeID uuid.UUID) (bool, error) {
	var count int64
	query := s.db.WithContext(ctx).Model(&models.Contract{}).
		Where("property_id = ? AND status = ?", propertyID, models.ContractStatusActive)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("check active contract: %w", err)
	}
	return count > 0, nil
}

// UpdateIfStatus applies updates only while the contract still has the
// expected status. It returns ErrStaleWrite when no row matched.
func (s *ContractStore) UpdateIfStatus(ctx context.Context, id uuid.UUID, expected models.ContractStatus, updates map[string]interface{}) error {
	result := s.db.WithContext(ctx).Model(&models.Contract{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("update contract: %w", translate(result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrStaleWrite
	}
	return nil
}

// ExpireIfOverdue expires the contract only while it is still owner-signed
// with a deadline before now. A contract re-signed since it was listed has a
// fresh deadline and is left alone with ErrStaleWrite.
func (s *ContractStore) ExpireIfOverdue(ctx context.Context, id uuid.UUID, now time.Time) error {
	result := s.db.WithContext(ctx).Model(&models.Contract{}).
		Where("id = ? AND status = ? AND tenant_sign_deadline IS NOT NULL AND tenant_sign_deadline < ?",
			id, models.ContractStatusOwnerSigned, now).
		Update("status", models.ContractStatusExpired)
	if result.Error != nil {
		return fmt.Errorf("expire contract: %w", translate(result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrStaleWrite
	}
	return nil
}

// ListOverdue returns owner-signed contracts whose tenant deadline passed.
func (s *ContractStore) ListOverdue(ctx context.Context, now time.Time) ([]models.Contract, error) {
	var contracts []models.Contract
	err := s.db.WithContext(ctx).
		Where("status = ? AND tenant_sign_deadline IS NOT NULL AND tenant_sign_deadline < ?", models.ContractStatusOwnerSigned, now).
		Order("tenant_sign_deadline ASC").
		Find(&contracts).Error
	if err != nil {
		return nil, fmt.Errorf("list overdue contracts: %w", err)
	}
	return contracts, nil
}

func (s *ContractStore) CreateVersion(ctx context.Context, version *models.ContractVersion) error {
	if err := s.db.WithContext(ctx).Create(version).Error; err != nil {
		return fmt.Errorf("create contract version: %w", translate(err))
	}
	return nil
}

// LatestVersion returns the highest archived version number, 0 when none.
func (s *ContractStore) LatestVersion(ctx context.Context, contractID uuid.UUID) (int, error) {
	var latest int
	err := s.db.WithContext(ctx).Model(&models.ContractVersion{}).
		Where("contract_id = ?", contractID).
		Select("COALESCE(MAX(version), 0)").
		Scan(&latest).Error
	if err != nil {
		return 0, fmt.Errorf("latest contract version: %w", err)
	}
	return latest, nil
}

// ListVersions returns archived versions, newest first.
func (s *ContractStore) ListVersions(ctx context.Context, contractID uuid.UUID) ([]models.ContractVersion, error) {
	var versions []models.ContractVersion
	err := s.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("version DESC").
		Find(&versions).Error
	if err != nil {
		return nil, fmt.Errorf("list contract versions: %w", err)
	}
	return versions, nil
}

// internal/store/request_store.go
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/rental-backend/internal/models"
)

type RequestStore struct {
	db *gorm.DB
}

func NewRequestStore(db *gorm.DB) *RequestStore {
	return &RequestStore{db: db}
}

func (s *RequestStore) WithTx(tx *gorm.DB) *RequestStore {
	return &RequestStore{db: tx}
}

func (s *RequestStore) Create(ctx context.Context, request *models.ChangeRequest) error {
	if err := s.db.WithContext(ctx).Create(request).Error; err != nil {
		return fmt.Errorf("create change request: %w", translate(err))
	}
	return nil
}

func (s *RequestStore) Get(ctx context.Context, id uuid.UUID) (*models.ChangeRequest, error) {
	var request models.ChangeRequest
	if err := s.db.WithContext(ctx).First(&request, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &request, nil
}

func (s *RequestStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.ChangeRequest, error) {
	var request models.ChangeRequest
	if err := forUpdate(s.db.WithContext(ctx)).First(&request, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &request, nil
}

// HasPending reports whether the contract has an unanswered request of any kind.
func (s *RequestStore) HasPending(ctx context.Context, contractID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.ChangeRequest{}).
		Where("contract_id = ? AND status = ?", contractID, models.ChangeRequestStatusPending).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check pending requests: %w", err)
	}
	return count > 0, nil
}

// UpdateIfStatus applies updates only while the request still has the
// expected status.
func (s *RequestStore) UpdateIfStatus(ctx context.Context, id uuid.UUID, expected models.ChangeRequestStatus, updates map[string]interface{}) error {
	result := s.db.WithContext(ctx).Model(&models.ChangeRequest{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("update change request: %w", translate(result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrStaleWrite
	}
	return nil
}

// ListLapsedModifications returns accepted modification requests whose edit
// window closed before now.
func (s *RequestStore) ListLapsedModifications(ctx context.Context, now time.Time) ([]models.ChangeRequest, error) {
	var requests []models.ChangeRequest
	err := s.db.WithContext(ctx).
		Where("kind = ? AND status = ? AND modification_deadline IS NOT NULL AND modification_deadline < ?",
			models.ChangeRequestKindModification, models.ChangeRequestStatusAccepted, now).
		Order("modification_deadline ASC").
		Find(&requests).Error
	if err != nil {
		return nil, fmt.Errorf("list lapsed modifications: %w", err)
	}
	return requests, nil
}

// LapseIfOverdue closes an accepted modification whose window is still
// past due at write time.
func (s *RequestStore) LapseIfOverdue(ctx context.Context, id uuid.UUID, now time.Time) error {
	result := s.db.WithContext(ctx).Model(&models.ChangeRequest{}).
		Where("id = ? AND status = ? AND modification_deadline IS NOT NULL AND modification_deadline < ?",
			id, models.ChangeRequestStatusAccepted, now).
		Update("status", models.ChangeRequestStatusLapsed)
	if result.Error != nil {
		return fmt.Errorf("lapse change request: %w", translate(result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrStaleWrite
	}
	return nil
}

// ListPending returns the contract's pending requests, newest first.
func (s *RequestStore) ListPending(ctx context.Context, contractID uuid.UUID) ([]models.ChangeRequest, error) {
	var requests []models.ChangeRequest
	err := s.db.WithContext(ctx).
		Where("contract_id = ? AND status = ?", contractID, models.ChangeRequestStatusPending).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}
	return requests, nil
}

// FindInProgressModification returns the modification request waiting for
// the tenant's re-signature, if any.
func (s *RequestStore) FindInProgressModification(ctx context.Context, contractID uuid.UUID) (*models.ChangeRequest, error) {
	var request models.ChangeRequest
	err := s.db.WithContext(ctx).
		Where("contract_id = ? AND kind = ? AND status = ?", contractID,
			models.ChangeRequestKindModification, models.ChangeRequestStatusModificationInProgress).
		Order("created_at DESC").
		First(&request).Error
	if err != nil {
		return nil, translate(err)
	}
	return &request, nil
}

type RequestFilter struct {
	UserID uuid.UUID
	// AsTenant selects requests on contracts where the user is the tenant;
	// otherwise requests the user sent.
	AsTenant bool
	Kind     *models.ChangeRequestKind
	Status   *models.ChangeRequestStatus
}

func (s *RequestStore) List(ctx context.Context, filter RequestFilter) ([]models.ChangeRequest, error) {
	query := s.db.WithContext(ctx).Model(&models.ChangeRequest{})
	if filter.AsTenant {
		query = query.Where("contract_id IN (?)",
			s.db.Model(&models.Contract{}).Select("id").Where("tenant_id = ?", filter.UserID))
	} else {
		query = query.Where("requested_by = ?", filter.UserID)
	}
	if filter.Kind != nil {
		query = query.Where("kind = ?", *filter.Kind)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var requests []models.ChangeRequest
	if err := query.Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("list change requests: %w", err)
	}
	return requests, nil
}

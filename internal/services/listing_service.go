// internal/services/listing_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/rental-backend/internal/models"
)

// OfferProvider gives the engine read access to offers.
type OfferProvider interface {
	GetOffer(ctx context.Context, offerID uuid.UUID) (*models.Offer, error)
}

// PropertyUpdater reads properties and flips their availability.
type PropertyUpdater interface {
	GetProperty(ctx context.Context, propertyID uuid.UUID) (*models.Property, error)
	SetAvailability(ctx context.Context, propertyID uuid.UUID, status models.PropertyStatus) error
}

// ListingService implements both collaborators on the listing tables.
type ListingService struct {
	db *gorm.DB
}

func NewListingService(db *gorm.DB) *ListingService {
	return &ListingService{db: db}
}

func (s *ListingService) GetOffer(ctx context.Context, offerID uuid.UUID) (*models.Offer, error) {
	var offer models.Offer
	if err := s.db.WithContext(ctx).First(&offer, "id = ?", offerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("offer not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &offer, nil
}

func (s *ListingService) GetProperty(ctx context.Context, propertyID uuid.UUID) (*models.Property, error) {
	var property models.Property
	if err := s.db.WithContext(ctx).First(&property, "id = ?", propertyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("property not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &property, nil
}

func (s *ListingService) SetAvailability(ctx context.Context, propertyID uuid.UUID, status models.PropertyStatus) error {
	result := s.db.WithContext(ctx).Model(&models.Property{}).
		Where("id = ?", propertyID).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update property status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return notFoundError("property not found")
	}
	return nil
}

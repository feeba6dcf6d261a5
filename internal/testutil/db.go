// Package testutil builds throwaway databases and fixtures for tests.
package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/javajoker/rental-backend/internal/database"
	"github.com/javajoker/rental-backend/internal/i18n"
	"github.com/javajoker/rental-backend/internal/models"
)

// NewDB returns a migrated in-memory SQLite database. A single connection
// keeps every statement on the same memory database and serializes writers.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	require.NoError(t, i18n.Initialize("fr"))

	db, err := database.Open(sqlite.Open("file::memory:"), "silent")
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.RunMigrations(db))
	return db
}

// Listing is a property with an offer ready for contract creation.
type Listing struct {
	Property *models.Property
	Offer    *models.Offer
	OwnerID  uuid.UUID
	TenantID uuid.UUID
}

func NewListing(t testing.TB, db *gorm.DB) *Listing {
	t.Helper()
	ownerID, tenantID := uuid.New(), uuid.New()

	property := &models.Property{
		OwnerID: ownerID,
		Title:   "Appartement T2 Gueliz",
		Address: "12 rue de la Liberté, Marrakech",
		Status:  models.PropertyStatusAvailable,
	}
	require.NoError(t, db.Create(property).Error)

	return &Listing{
		Property: property,
		Offer:    NewOffer(t, db, property, tenantID),
		OwnerID:  ownerID,
		TenantID: tenantID,
	}
}

// NewOffer adds another contract-requested offer on the property.
func NewOffer(t testing.TB, db *gorm.DB, property *models.Property, tenantID uuid.UUID) *models.Offer {
	t.Helper()
	start := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	offer := &models.Offer{
		PropertyID:  property.ID,
		TenantID:    tenantID,
		OwnerID:     property.OwnerID,
		StartDate:   &start,
		EndDate:     &end,
		MonthlyRent: 4500,
		Deposit:     9000,
		Conditions:  "Non fumeur",
		Status:      models.OfferStatusContractRequested,
	}
	require.NoError(t, db.Create(offer).Error)
	return offer
}

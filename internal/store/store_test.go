// internal/store/store_test.go
package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/javajoker/rental-backend/internal/models"
	"github.com/javajoker/rental-backend/internal/testutil"
)

func newContract(t *testing.T, db *gorm.DB, listing *testutil.Listing, status models.ContractStatus) *models.Contract {
	t.Helper()
	contract := &models.Contract{
		OfferID:      listing.Offer.ID,
		PropertyID:   listing.Property.ID,
		OwnerID:      listing.OwnerID,
		TenantID:     listing.TenantID,
		ContractData: models.JSONB{"monthlyRent": 4500},
		Status:       status,
	}
	require.NoError(t, NewContractStore(db).Create(context.Background(), contract))
	return contract
}

func TestUpdateIfStatusDetectsStaleWrites(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	contracts := NewContractStore(db)
	contract := newContract(t, db, testutil.NewListing(t, db), models.ContractStatusDraft)

	err := contracts.UpdateIfStatus(ctx, contract.ID, models.ContractStatusOwnerSigned, map[string]interface{}{
		"status": models.ContractStatusActive,
	})
	assert.True(t, errors.Is(err, ErrStaleWrite))

	require.NoError(t, contracts.UpdateIfStatus(ctx, contract.ID, models.ContractStatusDraft, map[string]interface{}{
		"status": models.ContractStatusOwnerSigned,
	}))

	reloaded, err := contracts.Get(ctx, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ContractStatusOwnerSigned, reloaded.Status)

	_, err = contracts.Get(ctx, uuid.New())
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestOneActiveContractPerProperty(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	contracts := NewContractStore(db)
	listing := testutil.NewListing(t, db)

	first := newContract(t, db, listing, models.ContractStatusActive)
	second := newContract(t, db, listing, models.ContractStatusOwnerSigned)

	active, err := contracts.HasActiveForProperty(ctx, listing.Property.ID, uuid.Nil)
	require.NoError(t, err)
	assert.True(t, active)

	active, err = contracts.HasActiveForProperty(ctx, listing.Property.ID, first.ID)
	require.NoError(t, err)
	assert.False(t, active, "the contract itself is excluded")

	err = contracts.UpdateIfStatus(ctx, second.ID, models.ContractStatusOwnerSigned, map[string]interface{}{
		"status": models.ContractStatusActive,
	})
	assert.True(t, errors.Is(err, ErrDuplicate), "got %v", err)
}

func TestVersionsAreNumberedAndImmutable(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	contracts := NewContractStore(db)
	contract := newContract(t, db, testutil.NewListing(t, db), models.ContractStatusActive)

	latest, err := contracts.LatestVersion(ctx, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, latest)

	for i := 1; i <= 2; i++ {
		require.NoError(t, contracts.CreateVersion(ctx, &models.ContractVersion{
			ContractID:   contract.ID,
			Version:      i,
			ContractData: contract.ContractData.Clone(),
			Status:       string(contract.Status),
			CreatedBy:    contract.OwnerID,
		}))
	}

	err = contracts.CreateVersion(ctx, &models.ContractVersion{ContractID: contract.ID, Version: 2, Status: "active"})
	assert.True(t, errors.Is(err, ErrDuplicate), "version numbers are unique per contract")

	latest, err = contracts.LatestVersion(ctx, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, latest)

	versions, err := contracts.ListVersions(ctx, contract.ID)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, 2, versions[0].Version)

	err = db.Model(&versions[1]).Update("status", "tampered").Error
	assert.True(t, errors.Is(err, models.ErrVersionImmutable))
}

func TestListOverdue(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	contracts := NewContractStore(db)
	listing := testutil.NewListing(t, db)
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

	overdue := newContract(t, db, listing, models.ContractStatusOwnerSigned)
	pending := newContract(t, db, listing, models.ContractStatusOwnerSigned)
	require.NoError(t, db.Model(overdue).Update("tenant_sign_deadline", now.Add(-time.Minute)).Error)
	require.NoError(t, db.Model(pending).Update("tenant_sign_deadline", now.Add(time.Hour)).Error)

	due, err := contracts.ListOverdue(ctx, now)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, overdue.ID, due[0].ID)
}

func TestRequestStorePendingAndInProgress(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	requests := NewRequestStore(db)
	listing := testutil.NewListing(t, db)
	contract := newContract(t, db, listing, models.ContractStatusActive)

	newRequest := func() *models.ChangeRequest {
		return &models.ChangeRequest{
			Kind:           models.ChangeRequestKindModification,
			ContractID:     contract.ID,
			RequestedBy:    listing.OwnerID,
			Status:         models.ChangeRequestStatusPending,
			FieldsToModify: []string{models.FieldDeposit},
		}
	}

	first := newRequest()
	require.NoError(t, requests.Create(ctx, first))
	assert.True(t, errors.Is(requests.Create(ctx, newRequest()), ErrDuplicate), "one pending request per contract")

	pending, err := requests.HasPending(ctx, contract.ID)
	require.NoError(t, err)
	assert.True(t, pending)

	_, err = requests.FindInProgressModification(ctx, contract.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, requests.UpdateIfStatus(ctx, first.ID, models.ChangeRequestStatusPending, map[string]interface{}{
		"status": models.ChangeRequestStatusModificationInProgress,
	}))
	inProgress, err := requests.FindInProgressModification(ctx, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, inProgress.ID)
	assert.Equal(t, []string{models.FieldDeposit}, []string(inProgress.FieldsToModify))

	asTenant, err := requests.List(ctx, RequestFilter{UserID: listing.TenantID, AsTenant: true})
	require.NoError(t, err)
	assert.Len(t, asTenant, 1)

	asOwner, err := requests.List(ctx, RequestFilter{UserID: listing.TenantID})
	require.NoError(t, err)
	assert.Empty(t, asOwner)
}

func TestExpireIfOverdueChecksTheDeadline(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	contracts := NewContractStore(db)
	contract := newContract(t, db, testutil.NewListing(t, db), models.ContractStatusOwnerSigned)
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

	require.NoError(t, db.Model(contract).Update("tenant_sign_deadline", now.Add(time.Hour)).Error)
	assert.True(t, errors.Is(contracts.ExpireIfOverdue(ctx, contract.ID, now), ErrStaleWrite), "deadline not reached")

	require.NoError(t, db.Model(contract).Update("tenant_sign_deadline", now.Add(-time.Hour)).Error)
	require.NoError(t, contracts.ExpireIfOverdue(ctx, contract.ID, now))

	reloaded, err := contracts.Get(ctx, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ContractStatusExpired, reloaded.Status)
	assert.True(t, errors.Is(contracts.ExpireIfOverdue(ctx, contract.ID, now), ErrStaleWrite), "already expired")
}

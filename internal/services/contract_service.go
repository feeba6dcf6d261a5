// internal/services/contract_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/rental-backend/internal/config"
	"github.com/javajoker/rental-backend/internal/database"
	"github.com/javajoker/rental-backend/internal/i18n"
	"github.com/javajoker/rental-backend/internal/logger"
	"github.com/javajoker/rental-backend/internal/metrics"
	"github.com/javajoker/rental-backend/internal/models"
	"github.com/javajoker/rental-backend/internal/store"
	"github.com/javajoker/rental-backend/internal/utils"
)

// ContractService owns every contract status transition. Each mutation runs
// in a transaction that re-reads the contract, checks its preconditions and
// writes conditionally on the status it read. Collaborator calls and
// notifications happen after commit and never undo a transition.
type ContractService struct {
	db         *gorm.DB
	contracts  *store.ContractStore
	requests   *store.RequestStore
	offers     OfferProvider
	properties PropertyUpdater
	documents  DocumentProvider
	notifier   Notifier
	config     config.ContractConfig
	now        func() time.Time
	log        *logrus.Entry
}

type CreateContractRequest struct {
	OfferID      uuid.UUID              `json:"offer_id" validate:"required"`
	ContractData map[string]interface{} `json:"contract_data,omitempty"`
	PdfURL       string                 `json:"pdf_url,omitempty"`
}

type SignContractRequest struct {
	Role      models.ContractRole `json:"role" validate:"required,oneof=owner tenant"`
	Signature string              `json:"signature" validate:"required,signature"`
}

type ModifyContractRequest struct {
	ContractData map[string]interface{} `json:"contract_data" validate:"required"`
}

type ApplyModificationRequest struct {
	RequestID      uuid.UUID              `json:"request_id" validate:"required"`
	Modifications  map[string]interface{} `json:"modifications" validate:"required"`
	Reason         string                 `json:"reason,omitempty" validate:"max=2000"`
	OwnerSignature *string                `json:"owner_signature,omitempty"`
}

type ContractListParams struct {
	utils.PaginationParams
	OwnerOnly bool
	Status    *models.ContractStatus
}

// ContractHistory lists archived versions newest first, plus a pseudo-entry
// mirroring the live contract.
type ContractHistory struct {
	Current  models.ContractVersion   `json:"current"`
	Versions []models.ContractVersion `json:"versions"`
}

func NewContractService(db *gorm.DB, offers OfferProvider, properties PropertyUpdater, documents DocumentProvider, notifier Notifier, cfg config.ContractConfig) *ContractService {
	return &ContractService{
		db:         db,
		contracts:  store.NewContractStore(db),
		requests:   store.NewRequestStore(db),
		offers:     offers,
		properties: properties,
		documents:  documents,
		notifier:   notifier,
		config:     cfg,
		now:        func() time.Time { return time.Now().UTC() },
		log:        logger.NewSublogger("contract"),
	}
}

// WithClock replaces the time source.
func (s *ContractService) WithClock(now func() time.Time) *ContractService {
	s.now = now
	return s
}

func (s *ContractService) CreateContract(ctx context.Context, actorID uuid.UUID, req *CreateContractRequest) (*models.Contract, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, s.rejected("create", validationError("validation failed: %v", err))
	}

	offer, err := s.offers.GetOffer(ctx, req.OfferID)
	if err != nil {
		return nil, s.rejected("create", err)
	}

	if offer.OwnerID != actorID {
		return nil, s.rejected("create", authorizationError("only the property owner can create a contract"))
	}

	if offer.Status != models.OfferStatusContractRequested {
		return nil, s.rejected("create", validationError("contract can only be created for offers in status %s", models.OfferStatusContractRequested))
	}

	property, err := s.properties.GetProperty(ctx, offer.PropertyID)
	if err != nil {
		return nil, s.rejected("create", err)
	}

	contract := &models.Contract{
		OfferID:           offer.ID,
		PropertyID:        offer.PropertyID,
		TenantID:          offer.TenantID,
		OwnerID:           offer.OwnerID,
		ContractData:      defaultContractData(offer, property, req.ContractData),
		Status:            models.ContractStatusDraft,
		PdfURL:            req.PdfURL,
		ContractStartDate: offer.StartDate,
		ContractEndDate:   offer.EndDate,
	}

	err = database.WithTransaction(s.db, func(tx *gorm.DB) error {
		contracts := s.contracts.WithTx(tx)

		active, err := contracts.HasActiveForProperty(ctx, offer.PropertyID, uuid.Nil)
		if err != nil {
			return err
		}
		if active {
			return conflictError("property has active contract")
		}

		return contracts.Create(ctx, contract)
	})
	if err != nil {
		return nil, s.rejected("create", err)
	}

	metrics.ContractTransition("", string(models.ContractStatusDraft))
	s.log.WithFields(logrus.Fields{
		"contract_id": contract.ID,
		"offer_id":    offer.ID,
		"property_id": offer.PropertyID,
	}).Info("Contract created")

	s.notifier.Notify(ctx, newNotification(contract.TenantID, models.NotificationTypeContract, contract.ID,
		i18n.KeyNotifyContractCreatedTitle, i18n.KeyNotifyContractCreatedMessage))

	return contract, nil
}

// defaultContractData seeds the document from the offer and property. Caller
// supplied keys win.
func defaultContractData(offer *models.Offer, property *models.Property, overrides map[string]interface{}) models.JSONB {
	data := models.JSONB{
		"propertyTitle":     property.Title,
		"propertyAddress":   property.Address,
		"monthlyRent":       offer.MonthlyRent,
		"deposit":           offer.Deposit,
		"specialConditions": offer.Conditions,
	}
	if offer.StartDate != nil {
		data["startDate"] = offer.StartDate.Format("2006-01-02")
	}
	if offer.EndDate != nil {
		data["endDate"] = offer.EndDate.Format("2006-01-02")
	}
	for k, v := range overrides {
		data[k] = v
	}
	return data
}

func (s *ContractService) SignContract(ctx context.Context, actorID, contractID uuid.UUID, req *SignContractRequest) (*models.Contract, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, s.rejected("sign", validationError("validation failed: %v", err))
	}

	var (
		contract *models.Contract
		from     models.ContractStatus
	)
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		contracts := s.contracts.WithTx(tx)

		c, err := contracts.GetForUpdate(ctx, contractID)
		if err != nil {
			return contractLookupError(err)
		}
		if c.PartyFor(req.Role) != actorID {
			return authorizationError("only the contract %s can sign this side", req.Role)
		}

		from = c.Status
		if req.Role == models.ContractRoleOwner {
			err = s.applyOwnerSignature(ctx, contracts, c, req.Signature)
		} else {
			err = s.applyTenantSignature(ctx, contracts, s.requests.WithTx(tx), c, req.Signature)
		}
		if err != nil {
			return err
		}

		contract = c
		return nil
	})
	if err != nil {
		return nil, s.rejected("sign", err)
	}

	metrics.ContractTransition(string(from), string(contract.Status))
	s.log.WithFields(logrus.Fields{
		"contract_id": contract.ID,
		"role":        req.Role,
		"status":      contract.Status,
	}).Info("Contract signed")

	if req.Role == models.ContractRoleOwner {
		s.notifier.Notify(ctx, newNotification(contract.TenantID, models.NotificationTypeSignatureRequired, contract.ID,
			i18n.KeyNotifySignatureRequiredTitle, i18n.KeyNotifySignatureRequiredMessage, *contract.TenantSignDeadline))
		return contract, nil
	}

	if err := s.properties.SetAvailability(ctx, contract.PropertyID, models.PropertyStatusRented); err != nil {
		s.log.WithError(err).WithField("property_id", contract.PropertyID).Error("Failed to mark property rented")
	}
	s.notifier.Notify(ctx, newNotification(contract.OwnerID, models.NotificationTypeContractActive, contract.ID,
		i18n.KeyNotifyContractActiveTitle, i18n.KeyNotifyContractActiveMessage))

	return contract, nil
}

func (s *ContractService) applyOwnerSignature(ctx context.Context, contracts *store.ContractStore, c *models.Contract, signature string) error {
	if c.OwnerSignature != nil {
		return conflictError("owner signature already present")
	}
	if c.Status != models.ContractStatusDraft {
		return conflictError("owner can only sign a draft contract, current status is %s", c.Status)
	}

	now := s.now()
	deadline := now.Add(s.config.TenantSignWindow)
	err := contracts.UpdateIfStatus(ctx, c.ID, c.Status, map[string]interface{}{
		"owner_signature":      signature,
		"owner_signed_at":      now,
		"tenant_sign_deadline": deadline,
		"status":               models.ContractStatusOwnerSigned,
	})
	if err != nil {
		return writeError(err)
	}

	c.OwnerSignature = &signature
	c.OwnerSignedAt = &now
	c.TenantSignDeadline = &deadline
	c.Status = models.ContractStatusOwnerSigned
	return nil
}

func (s *ContractService) applyTenantSignature(ctx context.Context, contracts *store.ContractStore, requests *store.RequestStore, c *models.Contract, signature string) error {
	if c.TenantSignature != nil {
		return conflictError("tenant signature already present")
	}
	if c.Status == models.ContractStatusExpired {
		return expiredError("contract expired before the tenant signed")
	}
	if c.Status != models.ContractStatusOwnerSigned && c.Status != models.ContractStatusModificationInProgress {
		return conflictError("contract is not awaiting the tenant signature, current status is %s", c.Status)
	}
	if c.OwnerSignature == nil {
		return conflictError("owner must sign before the tenant")
	}

	now := s.now()
	if c.TenantSignDeadline != nil && now.After(*c.TenantSignDeadline) {
		return expiredError("tenant signing deadline passed at %s", c.TenantSignDeadline.Format(time.RFC3339))
	}

	active, err := contracts.HasActiveForProperty(ctx, c.PropertyID, c.ID)
	if err != nil {
		return err
	}
	if active {
		return conflictError("property has active contract")
	}

	err = contracts.UpdateIfStatus(ctx, c.ID, c.Status, map[string]interface{}{
		"tenant_signature":     signature,
		"tenant_signed_at":     now,
		"tenant_sign_deadline": nil,
		"status":               models.ContractStatusActive,
	})
	if err != nil {
		return writeError(err)
	}

	// A tenant signature closes any modification that was waiting for it.
	if pending, err := requests.FindInProgressModification(ctx, c.ID); err == nil {
		err = requests.UpdateIfStatus(ctx, pending.ID, models.ChangeRequestStatusModificationInProgress, map[string]interface{}{
			"status": models.ChangeRequestStatusCompleted,
		})
		if err != nil && !errors.Is(err, store.ErrStaleWrite) {
			return err
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	c.TenantSignature = &signature
	c.TenantSignedAt = &now
	c.TenantSignDeadline = nil
	c.Status = models.ContractStatusActive
	return nil
}

// ModifyContractDraft rewrites a contract the tenant has not signed yet.
// Signatures are dropped and both parties sign again; drafts are not archived.
func (s *ContractService) ModifyContractDraft(ctx context.Context, actorID, contractID uuid.UUID, req *ModifyContractRequest) (*models.Contract, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, s.rejected("modify_draft", validationError("validation failed: %v", err))
	}

	var (
		contract *models.Contract
		from     models.ContractStatus
	)
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		contracts := s.contracts.WithTx(tx)

		c, err := contracts.GetForUpdate(ctx, contractID)
		if err != nil {
			return contractLookupError(err)
		}
		if c.OwnerID != actorID {
			return authorizationError("only the contract owner can modify it")
		}
		if c.TenantSignature != nil {
			return conflictError("contract cannot be modified after the tenant signed")
		}
		switch c.Status {
		case models.ContractStatusDraft, models.ContractStatusOwnerSigned,
			models.ContractStatusExpired, models.ContractStatusModificationInProgress:
		default:
			return conflictError("contract cannot be modified in status %s", c.Status)
		}

		data := models.JSONB(req.ContractData)
		err = contracts.UpdateIfStatus(ctx, c.ID, c.Status, map[string]interface{}{
			"contract_data":        data,
			"owner_signature":      nil,
			"owner_signed_at":      nil,
			"tenant_signature":     nil,
			"tenant_signed_at":     nil,
			"tenant_sign_deadline": nil,
			"status":               models.ContractStatusDraft,
		})
		if err != nil {
			return writeError(err)
		}

		from = c.Status
		c.ContractData = data
		c.OwnerSignature, c.OwnerSignedAt = nil, nil
		c.TenantSignature, c.TenantSignedAt = nil, nil
		c.TenantSignDeadline = nil
		c.Status = models.ContractStatusDraft
		contract = c
		return nil
	})
	if err != nil {
		return nil, s.rejected("modify_draft", err)
	}

	metrics.ContractTransition(string(from), string(contract.Status))
	s.log.WithField("contract_id", contract.ID).Info("Contract draft modified")

	for _, userID := range []uuid.UUID{contract.TenantID, contract.OwnerID} {
		s.notifier.Notify(ctx, newNotification(userID, models.NotificationTypeContractModified, contract.ID,
			i18n.KeyNotifyDraftModifiedTitle, i18n.KeyNotifyDraftModifiedMessage))
	}

	return contract, nil
}

// ApplyModification edits an active contract inside the window opened by an
// accepted modification request. The previous state is archived as a new
// version in the same transaction. Without an owner signature the contract
// goes back to draft; with one it waits for the tenant only.
func (s *ContractService) ApplyModification(ctx context.Context, actorID, contractID uuid.UUID, req *ApplyModificationRequest) (*models.Contract, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, s.rejected("apply_modification", validationError("validation failed: %v", err))
	}

	ownerSignature := ""
	if req.OwnerSignature != nil {
		ownerSignature = strings.TrimSpace(*req.OwnerSignature)
	}

	var (
		contract *models.Contract
		version  *models.ContractVersion
	)
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		contracts := s.contracts.WithTx(tx)
		requests := s.requests.WithTx(tx)

		c, err := contracts.GetForUpdate(ctx, contractID)
		if err != nil {
			return contractLookupError(err)
		}
		if c.OwnerID != actorID {
			return authorizationError("only the contract owner can apply modifications")
		}
		if c.Status != models.ContractStatusWaitingForModification {
			return conflictError("contract is not waiting for modification, current status is %s", c.Status)
		}

		r, err := requests.GetForUpdate(ctx, req.RequestID)
		if err != nil {
			return requestLookupError(err)
		}
		if r.ContractID != c.ID || r.Kind != models.ChangeRequestKindModification {
			return validationError("request is not a modification request of this contract")
		}
		if r.Status != models.ChangeRequestStatusAccepted {
			return conflictError("modification request is %s, not accepted", r.Status)
		}

		now := s.now()
		if r.ModificationDeadline == nil || now.After(*r.ModificationDeadline) {
			return expiredError("modification window closed")
		}

		data := c.ContractData.Clone()
		if data == nil {
			data = models.JSONB{}
		}
		if applied := models.ApplyFieldModifications(data, r.FieldsToModify, req.Modifications); len(applied) == 0 {
			return validationError("no modification matches the accepted fields %v", []string(r.FieldsToModify))
		}

		latest, err := contracts.LatestVersion(ctx, c.ID)
		if err != nil {
			return err
		}

		reason := req.Reason
		if reason == "" {
			reason = r.ModificationReason
		}

		hash, err := utils.FingerprintDocument(c.ContractData)
		if err != nil {
			return fmt.Errorf("failed to fingerprint contract data: %w", err)
		}

		version = &models.ContractVersion{
			ContractID:         c.ID,
			Version:            latest + 1,
			ContractData:       c.ContractData.Clone(),
			OwnerSignature:     c.OwnerSignature,
			TenantSignature:    c.TenantSignature,
			OwnerSignedAt:      c.OwnerSignedAt,
			TenantSignedAt:     c.TenantSignedAt,
			Status:             models.VersionStatusSuperseded,
			ModificationReason: reason,
			DataHash:           hash,
			CreatedBy:          actorID,
		}
		if err := contracts.CreateVersion(ctx, version); err != nil {
			return writeError(err)
		}

		summary := i18n.T(i18n.DefaultLang(), i18n.KeyContractSummaryVersion, version.Version, reason)
		updates := map[string]interface{}{
			"contract_data":        data,
			"owner_signature":      nil,
			"owner_signed_at":      nil,
			"tenant_signature":     nil,
			"tenant_signed_at":     nil,
			"tenant_sign_deadline": nil,
			"modification_summary": summary,
			"status":               models.ContractStatusDraft,
		}
		requestStatus := models.ChangeRequestStatusCompleted

		c.OwnerSignature, c.OwnerSignedAt = nil, nil
		c.TenantSignature, c.TenantSignedAt = nil, nil
		c.TenantSignDeadline = nil
		c.Status = models.ContractStatusDraft

		if ownerSignature != "" {
			deadline := now.Add(s.config.TenantSignWindow)
			updates["owner_signature"] = ownerSignature
			updates["owner_signed_at"] = now
			updates["tenant_sign_deadline"] = deadline
			updates["status"] = models.ContractStatusModificationInProgress
			requestStatus = models.ChangeRequestStatusModificationInProgress

			c.OwnerSignature = &ownerSignature
			c.OwnerSignedAt = &now
			c.TenantSignDeadline = &deadline
			c.Status = models.ContractStatusModificationInProgress
		}

		if err := contracts.UpdateIfStatus(ctx, c.ID, models.ContractStatusWaitingForModification, updates); err != nil {
			return writeError(err)
		}
		err = requests.UpdateIfStatus(ctx, r.ID, models.ChangeRequestStatusAccepted, map[string]interface{}{
			"status": requestStatus,
		})
		if err != nil {
			return writeError(err)
		}

		c.ContractData = data
		c.ModificationSummary = summary
		contract = c
		return nil
	})
	if err != nil {
		return nil, s.rejected("apply_modification", err)
	}

	metrics.ContractTransition(string(models.ContractStatusWaitingForModification), string(contract.Status))
	s.log.WithFields(logrus.Fields{
		"contract_id": contract.ID,
		"version":     version.Version,
		"status":      contract.Status,
	}).Info("Contract modification applied")

	if contract.Status == models.ContractStatusModificationInProgress {
		s.notifier.Notify(ctx, newNotification(contract.TenantID, models.NotificationTypeModificationReady, contract.ID,
			i18n.KeyNotifyModificationReadyTitle, i18n.KeyNotifyModificationReadyMessage, *contract.TenantSignDeadline))
	} else {
		s.notifier.Notify(ctx, newNotification(contract.TenantID, models.NotificationTypeContractModified, contract.ID,
			i18n.KeyNotifyModificationAppliedTitle, i18n.KeyNotifyModificationAppliedMessage))
	}

	return contract, nil
}

func (s *ContractService) GetContract(ctx context.Context, actorID, contractID uuid.UUID) (*models.Contract, error) {
	contract, err := s.contracts.Get(ctx, contractID)
	if err != nil {
		return nil, contractLookupError(err)
	}
	if !contract.IsParty(actorID) {
		return nil, authorizationError("only the contract parties can view it")
	}
	return contract, nil
}

func (s *ContractService) ListContracts(ctx context.Context, actorID uuid.UUID, params ContractListParams) ([]models.Contract, int64, error) {
	return s.contracts.List(ctx, store.ContractFilter{
		PaginationParams: params.PaginationParams,
		UserID:           actorID,
		OwnerOnly:        params.OwnerOnly,
		Status:           params.Status,
	})
}

func (s *ContractService) ListContractVersions(ctx context.Context, actorID, contractID uuid.UUID) (*ContractHistory, error) {
	contract, err := s.GetContract(ctx, actorID, contractID)
	if err != nil {
		return nil, err
	}

	versions, err := s.contracts.ListVersions(ctx, contract.ID)
	if err != nil {
		return nil, err
	}

	for _, v := range versions {
		if v.DataHash != "" && !utils.VerifyFingerprint(v.ContractData, v.DataHash) {
			s.log.WithFields(logrus.Fields{
				"contract_id": contract.ID,
				"version":     v.Version,
			}).Warn("Archived contract version does not match its fingerprint")
		}
	}

	latest := 0
	if len(versions) > 0 {
		latest = versions[0].Version
	}

	return &ContractHistory{
		Current: models.ContractVersion{
			ID:                 contract.ID,
			ContractID:         contract.ID,
			Version:            latest + 1,
			ContractData:       contract.ContractData,
			OwnerSignature:     contract.OwnerSignature,
			TenantSignature:    contract.TenantSignature,
			OwnerSignedAt:      contract.OwnerSignedAt,
			TenantSignedAt:     contract.TenantSignedAt,
			Status:             string(contract.Status),
			ModificationReason: contract.ModificationSummary,
			CreatedAt:          contract.UpdatedAt,
		},
		Versions: versions,
	}, nil
}

func (s *ContractService) DownloadContract(ctx context.Context, actorID, contractID uuid.UUID) (*ContractDownload, error) {
	contract, err := s.GetContract(ctx, actorID, contractID)
	if err != nil {
		return nil, s.rejected("download", err)
	}
	if contract.Status != models.ContractStatusActive && contract.Status != models.ContractStatusFullySigned {
		return nil, s.rejected("download", conflictError("contract must be fully signed to be downloaded"))
	}
	return s.documents.DownloadLink(ctx, contract)
}

// ExpireOverdueContracts moves owner-signed contracts past their tenant
// deadline to expired, then reopens contracts whose modification window
// lapsed. A contract that changed since the scan is skipped.
func (s *ContractService) ExpireOverdueContracts(ctx context.Context) (int, error) {
	now := s.now()
	overdue, err := s.contracts.ListOverdue(ctx, now)
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range overdue {
		if err := ctx.Err(); err != nil {
			return expired, err
		}

		c := &overdue[i]
		err := s.contracts.ExpireIfOverdue(ctx, c.ID, now)
		if errors.Is(err, store.ErrStaleWrite) {
			continue
		}
		if err != nil {
			s.log.WithError(err).WithField("contract_id", c.ID).Error("Failed to expire contract")
			continue
		}

		expired++
		metrics.ContractTransition(string(models.ContractStatusOwnerSigned), string(models.ContractStatusExpired))
		s.log.WithFields(logrus.Fields{
			"contract_id": c.ID,
			"deadline":    c.TenantSignDeadline,
		}).Info("Contract expired")

		releaseProperty(ctx, s.contracts, s.properties, s.log, c.PropertyID)

		s.notifier.Notify(ctx, newNotification(c.OwnerID, models.NotificationTypeContractExpired, c.ID,
			i18n.KeyNotifyExpiredTitle, i18n.KeyNotifyExpiredOwnerMessage))
		s.notifier.Notify(ctx, newNotification(c.TenantID, models.NotificationTypeContractExpired, c.ID,
			i18n.KeyNotifyExpiredTitle, i18n.KeyNotifyExpiredTenantMessage))
	}

	if _, err := s.reopenLapsedModifications(ctx, now); err != nil {
		return expired, err
	}
	return expired, nil
}

// reopenLapsedModifications returns contracts left in waiting_for_modification
// after the owner's edit window closed to active, unchanged, and marks the
// request lapsed.
func (s *ContractService) reopenLapsedModifications(ctx context.Context, now time.Time) (int, error) {
	lapsed, err := s.requests.ListLapsedModifications(ctx, now)
	if err != nil {
		return 0, err
	}

	reopened := 0
	for i := range lapsed {
		if err := ctx.Err(); err != nil {
			return reopened, err
		}

		r := &lapsed[i]
		var contract *models.Contract
		err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
			contracts := s.contracts.WithTx(tx)

			if err := s.requests.WithTx(tx).LapseIfOverdue(ctx, r.ID, now); err != nil {
				return err
			}
			c, err := contracts.GetForUpdate(ctx, r.ContractID)
			if err != nil {
				return err
			}
			if err := contracts.UpdateIfStatus(ctx, c.ID, models.ContractStatusWaitingForModification, map[string]interface{}{
				"status":               models.ContractStatusActive,
				"modification_summary": "",
			}); err != nil {
				return err
			}
			contract = c
			return nil
		})
		if errors.Is(err, store.ErrStaleWrite) {
			continue
		}
		if err != nil {
			s.log.WithError(err).WithField("request_id", r.ID).Error("Failed to reopen contract after lapsed modification")
			continue
		}

		reopened++
		metrics.ContractTransition(string(models.ContractStatusWaitingForModification), string(models.ContractStatusActive))
		s.log.WithFields(logrus.Fields{
			"contract_id": contract.ID,
			"request_id":  r.ID,
		}).Info("Modification window lapsed, contract active again")

		s.notifier.Notify(ctx, newNotification(contract.OwnerID, models.NotificationTypeModificationLapsed, contract.ID,
			i18n.KeyNotifyModificationLapsedTitle, i18n.KeyNotifyModificationLapsedMessage))
		s.notifier.Notify(ctx, newNotification(contract.TenantID, models.NotificationTypeModificationLapsed, contract.ID,
			i18n.KeyNotifyModificationLapsedTitle, i18n.KeyNotifyModificationLapsedMessage))
	}

	return reopened, nil
}

func (s *ContractService) rejected(operation string, err error) error {
	if kind := KindOf(err); kind != "" {
		metrics.TransitionRejected(operation, string(kind))
	} else {
		s.log.WithError(err).WithField("operation", operation).Error("Contract operation failed")
	}
	return err
}

// releaseProperty marks the property available unless another contract on
// it is active.
func releaseProperty(ctx context.Context, contracts *store.ContractStore, properties PropertyUpdater, log *logrus.Entry, propertyID uuid.UUID) {
	active, err := contracts.HasActiveForProperty(ctx, propertyID, uuid.Nil)
	if err != nil {
		log.WithError(err).WithField("property_id", propertyID).Error("Failed to check property before release")
		return
	}
	if active {
		return
	}
	if err := properties.SetAvailability(ctx, propertyID, models.PropertyStatusAvailable); err != nil {
		log.WithError(err).WithField("property_id", propertyID).Error("Failed to mark property available")
	}
}

func contractLookupError(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return notFoundError("contract not found")
	}
	return fmt.Errorf("failed to load contract: %w", err)
}

func requestLookupError(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return notFoundError("change request not found")
	}
	return fmt.Errorf("failed to load change request: %w", err)
}

// writeError maps conditional-write failures to conflicts.
func writeError(err error) error {
	switch {
	case errors.Is(err, store.ErrStaleWrite):
		return conflictError("contract changed concurrently, refresh and retry")
	case errors.Is(err, store.ErrDuplicate):
		return conflictError("property has active contract")
	default:
		return err
	}
}

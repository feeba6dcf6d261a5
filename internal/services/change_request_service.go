// internal/services/change_request_service.go
package services

import (
	"context"
	"errors"
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

// ChangeRequestService runs the propose and dispose protocol for changes to
// an active contract. The owner proposes, the tenant decides once.
type ChangeRequestService struct {
	db         *gorm.DB
	contracts  *store.ContractStore
	requests   *store.RequestStore
	properties PropertyUpdater
	notifier   Notifier
	config     config.ContractConfig
	now        func() time.Time
	log        *logrus.Entry
}

type RequestModificationRequest struct {
	Reason           string                 `json:"modification_reason" validate:"required,max=2000"`
	Fields           []string               `json:"fields_to_modify" validate:"required,min=1,dive,contract_field"`
	RequestedChanges map[string]interface{} `json:"requested_changes,omitempty"`
}

type RequestTerminationRequest struct {
	Reason         string `json:"reason" validate:"required,max=500"`
	DetailedReason string `json:"detailed_reason,omitempty" validate:"max=4000"`
}

type RespondRequest struct {
	Response       models.ChangeRequestStatus `json:"response" validate:"required,oneof=accepted rejected"`
	TenantResponse string                     `json:"tenant_response,omitempty" validate:"max=2000"`
}

func NewChangeRequestService(db *gorm.DB, properties PropertyUpdater, notifier Notifier, cfg config.ContractConfig) *ChangeRequestService {
	return &ChangeRequestService{
		db:         db,
		contracts:  store.NewContractStore(db),
		requests:   store.NewRequestStore(db),
		properties: properties,
		notifier:   notifier,
		config:     cfg,
		now:        func() time.Time { return time.Now().UTC() },
		log:        logger.NewSublogger("change_request"),
	}
}

func (s *ChangeRequestService) WithClock(now func() time.Time) *ChangeRequestService {
	s.now = now
	return s
}

func (s *ChangeRequestService) RequestModification(ctx context.Context, actorID, contractID uuid.UUID, req *RequestModificationRequest) (*models.ChangeRequest, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, s.rejected("request_modification", validationError("validation failed: %v", err))
	}

	request := &models.ChangeRequest{
		Kind:               models.ChangeRequestKindModification,
		ContractID:         contractID,
		RequestedBy:        actorID,
		Status:             models.ChangeRequestStatusPending,
		FieldsToModify:     dedupe(req.Fields),
		ModificationReason: strings.TrimSpace(req.Reason),
		RequestedChanges:   models.JSONB(req.RequestedChanges),
	}

	contract, err := s.propose(ctx, actorID, request)
	if err != nil {
		return nil, s.rejected("request_modification", err)
	}

	s.notifier.Notify(ctx, newNotification(contract.TenantID, models.NotificationTypeModificationRequest, request.ID,
		i18n.KeyNotifyModificationRequestTitle, i18n.KeyNotifyModificationRequestMessage,
		request.ModificationReason, strings.Join(request.FieldsToModify, ", ")))

	return request, nil
}

func (s *ChangeRequestService) RequestTermination(ctx context.Context, actorID, contractID uuid.UUID, req *RequestTerminationRequest) (*models.ChangeRequest, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, s.rejected("request_termination", validationError("validation failed: %v", err))
	}

	request := &models.ChangeRequest{
		Kind:           models.ChangeRequestKindTermination,
		ContractID:     contractID,
		RequestedBy:    actorID,
		Status:         models.ChangeRequestStatusPending,
		Reason:         strings.TrimSpace(req.Reason),
		DetailedReason: strings.TrimSpace(req.DetailedReason),
	}

	contract, err := s.propose(ctx, actorID, request)
	if err != nil {
		return nil, s.rejected("request_termination", err)
	}

	var details interface{} = ""
	if request.DetailedReason != "" {
		details = localizedText{Key: i18n.KeyNotifyTerminationDetails, Args: []interface{}{request.DetailedReason}}
	}
	s.notifier.Notify(ctx, newNotification(contract.TenantID, models.NotificationTypeTerminationRequest, request.ID,
		i18n.KeyNotifyTerminationRequestTitle, i18n.KeyNotifyTerminationRequestMessage,
		request.Reason, details))

	return request, nil
}

// propose stores a pending request on an active contract the actor owns.
func (s *ChangeRequestService) propose(ctx context.Context, actorID uuid.UUID, request *models.ChangeRequest) (*models.Contract, error) {
	var contract *models.Contract
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		requests := s.requests.WithTx(tx)

		c, err := s.contracts.WithTx(tx).GetForUpdate(ctx, request.ContractID)
		if err != nil {
			return contractLookupError(err)
		}
		if c.OwnerID != actorID {
			return authorizationError("only the contract owner can request a %s", request.Kind)
		}
		if c.Status != models.ContractStatusActive {
			return conflictError("only active contracts accept change requests, current status is %s", c.Status)
		}

		pending, err := requests.HasPending(ctx, c.ID)
		if err != nil {
			return err
		}
		if pending {
			return conflictError("contract already has a pending request")
		}

		if err := requests.Create(ctx, request); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return conflictError("contract already has a pending request")
			}
			return err
		}

		contract = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id":  request.ID,
		"contract_id": request.ContractID,
		"kind":        request.Kind,
	}).Info("Change request created")

	return contract, nil
}

// RespondToRequest records the tenant's single decision. An accepted
// modification opens the edit window; an accepted termination ends the
// contract immediately.
func (s *ChangeRequestService) RespondToRequest(ctx context.Context, actorID, requestID uuid.UUID, req *RespondRequest) (*models.ChangeRequest, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, s.rejected("respond", validationError("validation failed: %v", err))
	}

	var (
		request  *models.ChangeRequest
		contract *models.Contract
	)
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		contracts := s.contracts.WithTx(tx)
		requests := s.requests.WithTx(tx)

		r, err := requests.GetForUpdate(ctx, requestID)
		if err != nil {
			return requestLookupError(err)
		}
		c, err := contracts.GetForUpdate(ctx, r.ContractID)
		if err != nil {
			return contractLookupError(err)
		}
		if c.TenantID != actorID {
			return authorizationError("only the tenant can respond to this request")
		}
		if r.Status != models.ChangeRequestStatusPending {
			return conflictError("request was already answered with %s", r.Status)
		}

		now := s.now()
		updates := map[string]interface{}{
			"status":          req.Response,
			"tenant_response": strings.TrimSpace(req.TenantResponse),
			"responded_at":    now,
		}

		if req.Response == models.ChangeRequestStatusAccepted {
			if c.Status != models.ContractStatusActive {
				return conflictError("contract is no longer active, current status is %s", c.Status)
			}

			var contractUpdates map[string]interface{}
			switch r.Kind {
			case models.ChangeRequestKindModification:
				deadline := now.Add(s.config.ModificationWindow)
				updates["modification_deadline"] = deadline
				r.ModificationDeadline = &deadline

				summary := i18n.T(i18n.DefaultLang(), i18n.KeyContractSummaryWaiting,
					i18n.FormatTime(i18n.DefaultLang(), deadline))
				contractUpdates = map[string]interface{}{
					"status":               models.ContractStatusWaitingForModification,
					"modification_summary": summary,
				}
				c.Status = models.ContractStatusWaitingForModification
				c.ModificationSummary = summary
			case models.ChangeRequestKindTermination:
				reason := r.Reason
				contractUpdates = map[string]interface{}{
					"status":             models.ContractStatusTerminated,
					"terminated_by":      c.OwnerID,
					"terminated_at":      now,
					"termination_reason": reason,
				}
				ownerID := c.OwnerID
				c.Status = models.ContractStatusTerminated
				c.TerminatedBy = &ownerID
				c.TerminatedAt = &now
				c.TerminationReason = &reason
			default:
				return validationError("unknown request kind %s", r.Kind)
			}

			if err := contracts.UpdateIfStatus(ctx, c.ID, models.ContractStatusActive, contractUpdates); err != nil {
				return writeError(err)
			}
		}

		if err := requests.UpdateIfStatus(ctx, r.ID, models.ChangeRequestStatusPending, updates); err != nil {
			if errors.Is(err, store.ErrStaleWrite) {
				return conflictError("request was already answered")
			}
			return err
		}

		r.Status = req.Response
		r.TenantResponse = strings.TrimSpace(req.TenantResponse)
		r.RespondedAt = &now
		request = r
		contract = c
		return nil
	})
	if err != nil {
		return nil, s.rejected("respond", err)
	}

	s.log.WithFields(logrus.Fields{
		"request_id":  request.ID,
		"contract_id": contract.ID,
		"kind":        request.Kind,
		"response":    request.Status,
	}).Info("Change request answered")

	s.afterResponse(ctx, request, contract)
	return request, nil
}

func (s *ChangeRequestService) afterResponse(ctx context.Context, request *models.ChangeRequest, contract *models.Contract) {
	accepted := request.Status == models.ChangeRequestStatusAccepted

	switch {
	case request.Kind == models.ChangeRequestKindModification && accepted:
		metrics.ContractTransition(string(models.ContractStatusActive), string(contract.Status))
		s.notifier.Notify(ctx, newNotification(contract.OwnerID, models.NotificationTypeModificationAccepted, contract.ID,
			i18n.KeyNotifyModificationAcceptedTitle, i18n.KeyNotifyModificationAcceptedMessage, *request.ModificationDeadline))
	case request.Kind == models.ChangeRequestKindModification:
		s.notifier.Notify(ctx, newNotification(contract.OwnerID, models.NotificationTypeModificationRejected, contract.ID,
			i18n.KeyNotifyModificationRejectedTitle, i18n.KeyNotifyModificationRejectedMessage))
	case accepted:
		metrics.ContractTransition(string(models.ContractStatusActive), string(contract.Status))
		releaseProperty(ctx, s.contracts, s.properties, s.log, contract.PropertyID)
		s.notifier.Notify(ctx, newNotification(contract.OwnerID, models.NotificationTypeTerminationAccepted, contract.ID,
			i18n.KeyNotifyTerminationAcceptedTitle, i18n.KeyNotifyTerminationAcceptedMessage))
	default:
		s.notifier.Notify(ctx, newNotification(contract.OwnerID, models.NotificationTypeTerminationRejected, contract.ID,
			i18n.KeyNotifyTerminationRejectedTitle, i18n.KeyNotifyTerminationRejectedMessage))
	}
}

func (s *ChangeRequestService) GetRequest(ctx context.Context, actorID, requestID uuid.UUID) (*models.ChangeRequest, error) {
	request, err := s.requests.Get(ctx, requestID)
	if err != nil {
		return nil, requestLookupError(err)
	}
	contract, err := s.contracts.Get(ctx, request.ContractID)
	if err != nil {
		return nil, contractLookupError(err)
	}
	if !contract.IsParty(actorID) {
		return nil, authorizationError("only the contract parties can view this request")
	}
	return request, nil
}

func (s *ChangeRequestService) ListPendingRequests(ctx context.Context, actorID, contractID uuid.UUID) ([]models.ChangeRequest, error) {
	contract, err := s.contracts.Get(ctx, contractID)
	if err != nil {
		return nil, contractLookupError(err)
	}
	if !contract.IsParty(actorID) {
		return nil, authorizationError("only the contract parties can view its requests")
	}
	return s.requests.ListPending(ctx, contract.ID)
}

// ListUserRequests returns the requests the user sent as owner, or the
// requests addressed to them as tenant.
func (s *ChangeRequestService) ListUserRequests(ctx context.Context, userID uuid.UUID, role models.ContractRole, kind *models.ChangeRequestKind) ([]models.ChangeRequest, error) {
	return s.requests.List(ctx, store.RequestFilter{
		UserID:   userID,
		AsTenant: role == models.ContractRoleTenant,
		Kind:     kind,
	})
}

func (s *ChangeRequestService) rejected(operation string, err error) error {
	if kind := KindOf(err); kind != "" {
		metrics.TransitionRejected(operation, string(kind))
	} else {
		s.log.WithError(err).WithField("operation", operation).Error("Change request operation failed")
	}
	return err
}

func dedupe(fields []string) []string {
	seen := make(map[string]bool, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

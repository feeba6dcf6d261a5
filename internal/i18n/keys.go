// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	KeyTimeLayout = "time.layout"

	// Authentication
	KeyAuthRequired     = "auth.required"
	KeyAuthInvalidToken = "auth.invalid_token"
	KeyAuthTokenExpired = "auth.token_expired"

	// Generic errors
	KeyForbidden         = "error.forbidden"
	KeyConflict          = "error.conflict"
	KeyExpired           = "error.expired"
	KeyInternal          = "error.internal"
	KeyRateLimitExceeded = "error.rate_limited"

	// Validation
	KeyValidationInvalid = "validation.invalid"
	KeyInvalidID         = "validation.invalid_id"

	// Contracts
	KeyContractCreated             = "contract.created"
	KeyContractSigned              = "contract.signed"
	KeyContractUpdated             = "contract.updated"
	KeyContractNotFound            = "contract.not_found"
	KeyContractModificationApplied = "contract.modification_applied"
	KeyContractsExpired            = "contract.expired_count"
	KeyContractSummaryWaiting      = "contract.summary.waiting_for_modification"
	KeyContractSummaryVersion      = "contract.summary.version"

	KeyOfferNotFound = "offer.not_found"

	// Change requests
	KeyChangeRequestNotFound  = "change_request.not_found"
	KeyChangeRequestCreated   = "change_request.created"
	KeyChangeRequestResponded = "change_request.responded"

	// Notifications
	KeyNotificationNotFound   = "notification.not_found"
	KeyNotificationMarkedRead = "notification.marked_read"

	// Notification texts sent to contract parties
	KeyNotifyContractCreatedTitle        = "notify.contract_created.title"
	KeyNotifyContractCreatedMessage      = "notify.contract_created.message"
	KeyNotifySignatureRequiredTitle      = "notify.signature_required.title"
	KeyNotifySignatureRequiredMessage    = "notify.signature_required.message"
	KeyNotifyContractActiveTitle         = "notify.contract_active.title"
	KeyNotifyContractActiveMessage       = "notify.contract_active.message"
	KeyNotifyDraftModifiedTitle          = "notify.draft_modified.title"
	KeyNotifyDraftModifiedMessage        = "notify.draft_modified.message"
	KeyNotifyModificationRequestTitle    = "notify.modification_request.title"
	KeyNotifyModificationRequestMessage  = "notify.modification_request.message"
	KeyNotifyModificationAcceptedTitle   = "notify.modification_accepted.title"
	KeyNotifyModificationAcceptedMessage = "notify.modification_accepted.message"
	KeyNotifyModificationRejectedTitle   = "notify.modification_rejected.title"
	KeyNotifyModificationRejectedMessage = "notify.modification_rejected.message"
	KeyNotifyModificationLapsedTitle     = "notify.modification_lapsed.title"
	KeyNotifyModificationLapsedMessage   = "notify.modification_lapsed.message"
	KeyNotifyModificationAppliedTitle    = "notify.modification_applied.title"
	KeyNotifyModificationAppliedMessage  = "notify.modification_applied.message"
	KeyNotifyModificationReadyTitle      = "notify.modification_ready.title"
	KeyNotifyModificationReadyMessage    = "notify.modification_ready.message"
	KeyNotifyTerminationRequestTitle     = "notify.termination_request.title"
	KeyNotifyTerminationRequestMessage   = "notify.termination_request.message"
	KeyNotifyTerminationDetails          = "notify.termination_request.details"
	KeyNotifyTerminationAcceptedTitle    = "notify.termination_accepted.title"
	KeyNotifyTerminationAcceptedMessage  = "notify.termination_accepted.message"
	KeyNotifyTerminationRejectedTitle    = "notify.termination_rejected.title"
	KeyNotifyTerminationRejectedMessage  = "notify.termination_rejected.message"
	KeyNotifyExpiredTitle                = "notify.contract_expired.title"
	KeyNotifyExpiredOwnerMessage         = "notify.contract_expired.owner_message"
	KeyNotifyExpiredTenantMessage        = "notify.contract_expired.tenant_message"
)

// internal/handlers/contract.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/rental-backend/internal/i18n"
	"github.com/javajoker/rental-backend/internal/models"
	"github.com/javajoker/rental-backend/internal/scheduler"
	"github.com/javajoker/rental-backend/internal/services"
	"github.com/javajoker/rental-backend/internal/utils"
)

type ContractHandler struct {
	contractService *services.ContractService
	sweeper         *scheduler.Sweeper
}

func NewContractHandler(contractService *services.ContractService, sweeper *scheduler.Sweeper) *ContractHandler {
	return &ContractHandler{
		contractService: contractService,
		sweeper:         sweeper,
	}
}

// POST /contracts
func (h *ContractHandler) CreateContract(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req services.CreateContractRequest
	if !bindJSON(c, &req) {
		return
	}

	contract, err := h.contractService.CreateContract(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err, "offer")
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyContractCreated),
		"contract": contract,
	})
}

// GET /contracts
func (h *ContractHandler) ListContracts(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	params := services.ContractListParams{
		PaginationParams: utils.GetPaginationParams(c),
		OwnerOnly:        c.Query("role") == string(models.ContractRoleOwner),
	}
	if status := c.Query("status"); status != "" {
		s := models.ContractStatus(status)
		params.Status = &s
	}

	contracts, total, err := h.contractService.ListContracts(c.Request.Context(), userID, params)
	if err != nil {
		respondError(c, err, "contract")
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(contracts, total, params.PaginationParams))
}

// GET /contracts/:id
func (h *ContractHandler) GetContract(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	contract, err := h.contractService.GetContract(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err, "contract")
		return
	}

	utils.SuccessResponse(c, contract)
}

// PUT /contracts/:id
func (h *ContractHandler) ModifyContract(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.ModifyContractRequest
	if !bindJSON(c, &req) {
		return
	}

	contract, err := h.contractService.ModifyContractDraft(c.Request.Context(), userID, id, &req)
	if err != nil {
		respondError(c, err, "contract")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyContractUpdated),
		"contract": contract,
	})
}

// PUT /contracts/:id/sign
func (h *ContractHandler) SignContract(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.SignContractRequest
	if !bindJSON(c, &req) {
		return
	}

	contract, err := h.contractService.SignContract(c.Request.Context(), userID, id, &req)
	if err != nil {
		respondError(c, err, "contract")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyContractSigned),
		"contract": contract,
	})
}

// PUT /contracts/:id/apply-modification
func (h *ContractHandler) ApplyModification(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.ApplyModificationRequest
	if !bindJSON(c, &req) {
		return
	}

	contract, err := h.contractService.ApplyModification(c.Request.Context(), userID, id, &req)
	if err != nil {
		respondError(c, err, "contract")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyContractModificationApplied),
		"contract": contract,
	})
}

// GET /contracts/:id/versions
func (h *ContractHandler) ListVersions(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	history, err := h.contractService.ListContractVersions(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err, "contract")
		return
	}

	utils.SuccessResponse(c, history)
}

// GET /contracts/:id/download
func (h *ContractHandler) DownloadContract(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	download, err := h.contractService.DownloadContract(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err, "contract")
		return
	}

	utils.SuccessResponse(c, download)
}

// POST /contracts/expire-check
func (h *ContractHandler) ExpireCheck(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	expired, err := h.sweeper.RunOnce(c.Request.Context())
	if err != nil {
		respondError(c, err, "contract")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyContractsExpired, expired),
		"expired": expired,
	})
}

// internal/handlers/change_request.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/rental-backend/internal/i18n"
	"github.com/javajoker/rental-backend/internal/models"
	"github.com/javajoker/rental-backend/internal/services"
	"github.com/javajoker/rental-backend/internal/utils"
)

type ChangeRequestHandler struct {
	requestService *services.ChangeRequestService
}

func NewChangeRequestHandler(requestService *services.ChangeRequestService) *ChangeRequestHandler {
	return &ChangeRequestHandler{
		requestService: requestService,
	}
}

// POST /contracts/:id/request-modification
func (h *ChangeRequestHandler) RequestModification(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	contractID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.RequestModificationRequest
	if !bindJSON(c, &req) {
		return
	}

	request, err := h.requestService.RequestModification(c.Request.Context(), userID, contractID, &req)
	if err != nil {
		respondError(c, err, "contract")
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyChangeRequestCreated),
		"request": request,
	})
}

// POST /contracts/:id/request-termination
func (h *ChangeRequestHandler) RequestTermination(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	contractID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.RequestTerminationRequest
	if !bindJSON(c, &req) {
		return
	}

	request, err := h.requestService.RequestTermination(c.Request.Context(), userID, contractID, &req)
	if err != nil {
		respondError(c, err, "contract")
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyChangeRequestCreated),
		"request": request,
	})
}

// GET /contracts/:id/pending-requests
func (h *ChangeRequestHandler) ListPending(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	contractID, ok := pathID(c, "id")
	if !ok {
		return
	}

	requests, err := h.requestService.ListPendingRequests(c.Request.Context(), userID, contractID)
	if err != nil {
		respondError(c, err, "contract")
		return
	}

	utils.SuccessResponse(c, requests)
}

// GET /change-requests/:id
func (h *ChangeRequestHandler) GetRequest(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	request, err := h.requestService.GetRequest(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err, "change_request")
		return
	}

	utils.SuccessResponse(c, request)
}

// PUT /change-requests/:id/respond
func (h *ChangeRequestHandler) Respond(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.RespondRequest
	if !bindJSON(c, &req) {
		return
	}

	request, err := h.requestService.RespondToRequest(c.Request.Context(), userID, id, &req)
	if err != nil {
		respondError(c, err, "change_request")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyChangeRequestResponded),
		"request": request,
	})
}

// GET /users/me/requests?role=owner|tenant&kind=modification|termination
func (h *ChangeRequestHandler) ListMine(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	role := models.ContractRole(c.DefaultQuery("role", string(models.ContractRoleOwner)))
	if role != models.ContractRoleOwner && role != models.ContractRoleTenant {
		utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyValidationInvalid, "role"), nil)
		return
	}

	var kind *models.ChangeRequestKind
	if k := c.Query("kind"); k != "" {
		parsed := models.ChangeRequestKind(k)
		kind = &parsed
	}

	requests, err := h.requestService.ListUserRequests(c.Request.Context(), userID, role, kind)
	if err != nil {
		respondError(c, err, "change_request")
		return
	}

	utils.SuccessResponse(c, requests)
}

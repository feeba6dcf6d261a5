// internal/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/rental-backend/internal/i18n"
	"github.com/javajoker/rental-backend/internal/services"
	"github.com/javajoker/rental-backend/internal/utils"
)

// respondError maps a service failure onto the response envelope.
func respondError(c *gin.Context, err error, resource string) {
	var se *services.ServiceError
	if !errors.As(err, &se) {
		_ = c.Error(err)
		logrus.WithError(err).WithField("path", c.FullPath()).Error("Unexpected service failure")
		utils.InternalErrorResponse(c, "")
		return
	}

	switch se.Kind {
	case services.KindValidation:
		utils.ErrorResponse(c, http.StatusBadRequest, "VALIDATION_ERROR", se.Message, nil)
	case services.KindNotFound:
		utils.NotFoundResponse(c, resource)
	case services.KindAuthorization:
		utils.ForbiddenResponse(c, "")
	case services.KindConflict:
		utils.ConflictResponse(c, se.Message)
	case services.KindExpired:
		utils.ExpiredResponse(c, se.Message)
	default:
		utils.InternalErrorResponse(c, "")
	}
}

// bindJSON decodes and validates the body, writing the 400 itself.
func bindJSON(c *gin.Context, req interface{}) bool {
	lang := utils.GetLangFromContext(c)
	if err := c.ShouldBindJSON(req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return false
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return false
	}
	return true
}

func currentUser(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
	}
	return userID, ok
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyInvalidID), nil)
		return uuid.Nil, false
	}
	return id, true
}

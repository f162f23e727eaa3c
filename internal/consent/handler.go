package consent

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/novora/compliance-api/internal/system/constants"
	"github.com/novora/compliance-api/internal/system/error/serviceerror"
	"github.com/novora/compliance-api/internal/system/utils"
)

type consentHandler struct {
	service ConsentService
}

// NewHandler creates the HTTP handler for consent operations.
func NewHandler(service ConsentService) *consentHandler {
	return &consentHandler{service: service}
}

// RecordConsent handles POST /consents. The caller's IP and user agent are
// attached to the record as metadata.
func (h *consentHandler) RecordConsent(c *gin.Context) {
	userID := c.GetString(constants.ContextKeyUserID)
	if userID == "" {
		utils.SendError(c, serviceerror.CustomServiceError(serviceerror.UnauthorizedError, "Authentication is required to record consent"))
		return
	}

	var req RecordConsentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, serviceerror.CustomServiceError(serviceerror.InvalidRequestError, "policyVersion, consentType and consentSource are required"))
		return
	}

	status := req.ConsentStatus
	if status == "" {
		status = StatusGranted
	}

	record := ConsentRecord{
		UserID:        userID,
		PolicyVersion: req.PolicyVersion,
		ConsentType:   req.ConsentType,
		ConsentSource: req.ConsentSource,
		ConsentStatus: status,
		Metadata: map[string]string{
			"ipAddress": c.ClientIP(),
			"userAgent": c.Request.UserAgent(),
		},
	}

	if _, serviceErr := h.service.RecordConsent(c.Request.Context(), record); serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Consent recorded successfully"})
}

// GetConsentHistory handles GET /consents
func (h *consentHandler) GetConsentHistory(c *gin.Context) {
	userID := c.GetString(constants.ContextKeyUserID)
	if userID == "" {
		utils.SendError(c, serviceerror.CustomServiceError(serviceerror.UnauthorizedError, "Authentication is required"))
		return
	}

	history, serviceErr := h.service.GetConsentHistory(c.Request.Context(), userID)
	if serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": history, "count": len(history)})
}

package retention

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/novora/compliance-api/internal/system/error/serviceerror"
	"github.com/novora/compliance-api/internal/system/utils"
)

type retentionHandler struct {
	service RetentionService
}

// NewHandler creates the HTTP handler for retention policy operations.
func NewHandler(service RetentionService) *retentionHandler {
	return &retentionHandler{service: service}
}

// SetPolicy handles PUT /admin/retention-policies
func (h *retentionHandler) SetPolicy(c *gin.Context) {
	var req SetRetentionPolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, serviceerror.CustomServiceError(serviceerror.InvalidRequestError, "dataType, retentionPeriod, retentionReason and legalBasis are required"))
		return
	}

	policy, serviceErr := h.service.SetRetentionPolicy(c.Request.Context(), req)
	if serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, policy)
}

// ListPolicies handles GET /admin/retention-policies
func (h *retentionHandler) ListPolicies(c *gin.Context) {
	policies, serviceErr := h.service.ListRetentionPolicies(c.Request.Context())
	if serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": policies, "count": len(policies)})
}

// Enforce handles POST /admin/retention-policies/enforce
func (h *retentionHandler) Enforce(c *gin.Context) {
	enforced, serviceErr := h.service.EnforceRetentionPolicies(c.Request.Context())
	if serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Retention policies enforced", "enforced": enforced})
}

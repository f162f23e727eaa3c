package policy

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/novora/compliance-api/internal/system/error/serviceerror"
	"github.com/novora/compliance-api/internal/system/utils"
)

type policyHandler struct {
	service PolicyService
}

// NewHandler creates the HTTP handler for privacy policy operations.
func NewHandler(service PolicyService) *policyHandler {
	return &policyHandler{service: service}
}

// CreatePolicy handles POST /admin/policies
func (h *policyHandler) CreatePolicy(c *gin.Context) {
	var req CreatePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, serviceerror.CustomServiceError(serviceerror.InvalidRequestError, "Invalid request body"))
		return
	}

	policy, serviceErr := h.service.CreatePolicy(c.Request.Context(), req)
	if serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}

	c.JSON(http.StatusCreated, policy)
}

// GetPolicy handles GET /policies/:version
func (h *policyHandler) GetPolicy(c *gin.Context) {
	policy, serviceErr := h.service.GetPolicy(c.Request.Context(), c.Param("version"))
	if serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}
	c.JSON(http.StatusOK, policy)
}

// GetLatestPolicy handles GET /policies/latest
func (h *policyHandler) GetLatestPolicy(c *gin.Context) {
	policy, serviceErr := h.service.GetLatestPolicy(c.Request.Context())
	if serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}
	c.JSON(http.StatusOK, policy)
}

// ListPolicies handles GET /admin/policies
func (h *policyHandler) ListPolicies(c *gin.Context) {
	policies, serviceErr := h.service.ListPolicies(c.Request.Context())
	if serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": policies, "count": len(policies)})
}

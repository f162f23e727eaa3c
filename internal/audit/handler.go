package audit

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/novora/compliance-api/internal/system/utils"
)

type auditHandler struct {
	service AuditService
}

// NewHandler creates the HTTP handler for audit log queries.
func NewHandler(service AuditService) *auditHandler {
	return &auditHandler{service: service}
}

// GetLogs handles GET /admin/audit-logs
func (h *auditHandler) GetLogs(c *gin.Context) {
	filters := make(map[string]string)
	for _, field := range []string{"action", "resource", "resourceId", "userId", "ipAddress"} {
		if value := c.Query(field); value != "" {
			filters[field] = value
		}
	}

	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil {
			limit = parsed
		}
	}

	logs, serviceErr := h.service.GetLogs(c.Request.Context(), filters, limit)
	if serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  logs,
		"count": len(logs),
	})
}

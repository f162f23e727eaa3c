package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/novora/compliance-api/internal/audit"
	"github.com/novora/compliance-api/internal/system/constants"
	"github.com/novora/compliance-api/internal/system/error/serviceerror"
	"github.com/novora/compliance-api/internal/system/log"
	"github.com/novora/compliance-api/internal/system/utils"
)

// maxAuditBodyBytes bounds how much of a request body an audited route will
// buffer for its change set.
const maxAuditBodyBytes = 1 << 20

// AuditAction wraps a route so every successful authenticated request writes
// an audit entry. The route's first path parameter becomes the resource ID
// and the request body the change set; the wrapper is transparent to the
// response.
func AuditAction(auditService audit.AuditService, action, resource string) gin.HandlerFunc {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "AuditMiddleware"))

	return func(c *gin.Context) {
		var changes map[string]interface{}
		if c.Request.Body != nil {
			// The body must stay readable for the handler behind us, and is
			// never buffered beyond the audit size limit.
			raw, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxAuditBodyBytes))
			if err != nil {
				utils.SendError(c, serviceerror.CustomServiceError(serviceerror.InvalidRequestError,
					"Request body exceeds the audited size limit"))
				return
			}
			c.Request.Body = io.NopCloser(bytes.NewReader(raw))
			if len(raw) > 0 {
				_ = json.Unmarshal(raw, &changes)
			}
		}

		c.Next()

		userID := c.GetString(constants.ContextKeyUserID)
		if userID == "" || c.Writer.Status() >= 300 {
			return
		}

		resourceID := ""
		if len(c.Params) > 0 {
			resourceID = c.Params[0].Value
		}

		if err := auditService.Log(c.Request.Context(), audit.Entry{
			UserID:     userID,
			Action:     action,
			Resource:   resource,
			ResourceID: resourceID,
			Changes:    changes,
			IPAddress:  c.ClientIP(),
			UserAgent:  c.Request.UserAgent(),
		}); err != nil {
			logger.Warn("Failed to write audit entry",
				log.String("action", action),
				log.String("resource", resource),
				log.String("description", err.ErrorDescription))
		}
	}
}

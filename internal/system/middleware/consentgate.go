package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/novora/compliance-api/internal/consent"
	"github.com/novora/compliance-api/internal/policy"
	"github.com/novora/compliance-api/internal/system/constants"
	"github.com/novora/compliance-api/internal/system/error/serviceerror"
	"github.com/novora/compliance-api/internal/system/utils"
)

// ConsentGate blocks authenticated requests until the caller has granted
// consent to the latest privacy policy that requires it. The rejection
// carries the policy payload so the client can present it for acceptance.
func ConsentGate(policyService policy.PolicyService, consentService consent.ConsentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(constants.ContextKeyUserID)
		if userID == "" {
			// Anonymous requests have nothing to consent with; the handler
			// decides whether identity is required.
			c.Next()
			return
		}

		latest, serviceErr := policyService.GetLatestPolicy(c.Request.Context())
		if serviceErr != nil {
			if serviceErr.Code == serviceerror.ResourceNotFoundError.Code {
				// No policy published yet.
				c.Next()
				return
			}
			utils.SendError(c, serviceErr)
			return
		}

		if !latest.RequiredConsent {
			c.Next()
			return
		}

		granted, serviceErr := consentService.HasGrantedConsent(c.Request.Context(), userID, latest.Version)
		if serviceErr != nil {
			utils.SendError(c, serviceErr)
			return
		}
		if !granted {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   serviceerror.ConsentRequiredError.Error,
				"message": "Consent to privacy policy version '" + latest.Version + "' is required",
				"policy":  latest,
			})
			return
		}

		c.Next()
	}
}

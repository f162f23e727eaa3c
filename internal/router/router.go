package router

import (
	"github.com/gin-gonic/gin"

	"github.com/novora/compliance-api/internal/audit"
	"github.com/novora/compliance-api/internal/consent"
	"github.com/novora/compliance-api/internal/dsr"
	"github.com/novora/compliance-api/internal/policy"
	"github.com/novora/compliance-api/internal/retention"
	"github.com/novora/compliance-api/internal/system/config"
	"github.com/novora/compliance-api/internal/system/middleware"
)

// Services bundles the dependency-injected service instances the router
// wires into handlers. Everything is constructed once in main and passed by
// reference; nothing is reached through package-level state.
type Services struct {
	Policy    policy.PolicyService
	Consent   consent.ConsentService
	DSR       dsr.DSRService
	Retention retention.RetentionService
	Audit     audit.AuditService
}

// SetupRouter configures all API routes
func SetupRouter(cfg *config.Config, services Services, authenticator *middleware.Authenticator) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CorrelationIDMiddleware())
	if cfg.CORS.Enabled {
		router.Use(middleware.CORSMiddleware(cfg.CORS))
	}
	router.Use(authenticator.Identify())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})

	// Create handlers
	policyHandler := policy.NewHandler(services.Policy)
	consentHandler := consent.NewHandler(services.Consent)
	dsrHandler := dsr.NewHandler(services.DSR)
	retentionHandler := retention.NewHandler(services.Retention)
	auditHandler := audit.NewHandler(services.Audit)

	consentGate := middleware.ConsentGate(services.Policy, services.Consent)

	v1 := router.Group("/api/v1")
	{
		// Policy discovery is open so clients can render the acceptance UI.
		v1.GET("/policies/latest", policyHandler.GetLatestPolicy)
		v1.GET("/policies/:version", policyHandler.GetPolicy)

		// Consent endpoints sit outside the gate: a caller must be able to
		// grant consent while still ungated.
		v1.POST("/consents", consentHandler.RecordConsent)
		v1.GET("/consents", consentHandler.GetConsentHistory)

		// Data subject request intake responds 202 and never processes
		// synchronously.
		dsrRoutes := v1.Group("/data-subject-requests", consentGate)
		{
			dsrRoutes.POST("", dsrHandler.CreateRequest)
			dsrRoutes.GET("/:requestType", dsrHandler.GetRequest)
		}

		// Administrative surface.
		admin := v1.Group("/admin", authenticator.RequireAuth())
		{
			admin.POST("/policies", policyHandler.CreatePolicy)
			admin.GET("/policies", policyHandler.ListPolicies)

			admin.POST("/data-subject-requests/:userId/:requestType/process", dsrHandler.ProcessRequest)

			admin.PUT("/retention-policies", retentionHandler.SetPolicy)
			admin.GET("/retention-policies", retentionHandler.ListPolicies)
			admin.POST("/retention-policies/enforce", retentionHandler.Enforce)

			// Reading the audit trail is itself an audited action; the
			// services audit their own writes, so the wrapper is only
			// applied where nothing else would record the access.
			admin.GET("/audit-logs",
				middleware.AuditAction(services.Audit, "read", "audit_log"),
				auditHandler.GetLogs)
		}
	}

	return router
}

package constants

// HTTP headers and content types shared across handlers and middleware.
const (
	AuthorizationHeaderName = "Authorization"
	ContentTypeHeaderName   = "Content-Type"
	CorrelationIDHeaderName = "X-Correlation-ID"
	ContentTypeJSON         = "application/json"
	TokenTypeBearer         = "Bearer"

	// Aliases for convenience
	HeaderContentType = ContentTypeHeaderName
)

// Context keys set by the middleware stack.
const (
	ContextKeyUserID        = "userID"
	ContextKeyCorrelationID = "correlation_id"
)

// Record store key namespace. Every persisted entity lives under one of
// these prefixes; the audit trail is a single list key.
const (
	KeyPrefixPrivacyPolicy   = "privacy_policy:"
	KeyPrefixConsent         = "consent:"
	KeyPrefixDataSubjectReq  = "dsr:"
	KeyPrefixRetentionPolicy = "retention:"
	KeyAuditLogs             = "audit_logs"
)

// Audit query defaults.
const (
	DefaultAuditLogLimit = 100
	MaxAuditLogLimit     = 1000
)

package audit

// AuditLog is an immutable record of a compliance-relevant action. Entries
// are appended to a single list, newest first, and never mutated.
type AuditLog struct {
	AuditID    string                 `json:"auditId" validate:"required"`
	Timestamp  int64                  `json:"timestamp" validate:"required"`
	UserID     string                 `json:"userId,omitempty"`
	Action     string                 `json:"action" validate:"required"`
	Resource   string                 `json:"resource" validate:"required"`
	ResourceID string                 `json:"resourceId,omitempty"`
	Changes    map[string]interface{} `json:"changes,omitempty"`
	Metadata   map[string]string      `json:"metadata,omitempty"`
	IPAddress  string                 `json:"ipAddress,omitempty"`
	UserAgent  string                 `json:"userAgent,omitempty"`
}

// Entry is the caller-supplied part of an audit log; the service fills in
// identity and timing.
type Entry struct {
	UserID     string
	Action     string
	Resource   string
	ResourceID string
	Changes    map[string]interface{}
	Metadata   map[string]string
	IPAddress  string
	UserAgent  string
}

package retention

// RetentionPolicy is a rule for how long a class of data is kept. DataType is
// the key namespace the rule governs ("consent", "dsr", "audit_logs").
type RetentionPolicy struct {
	DataType        string `json:"dataType" validate:"required"`
	RetentionPeriod int    `json:"retentionPeriod" validate:"required,min=1"` // days
	RetentionReason string `json:"retentionReason" validate:"required"`
	AutoDelete      bool   `json:"autoDelete"`
	LegalBasis      string `json:"legalBasis" validate:"required"`
}

// SetRetentionPolicyRequest is the wire shape for creating or updating a
// retention policy.
type SetRetentionPolicyRequest struct {
	DataType        string `json:"dataType" binding:"required"`
	RetentionPeriod int    `json:"retentionPeriod" binding:"required,min=1"`
	RetentionReason string `json:"retentionReason" binding:"required"`
	AutoDelete      bool   `json:"autoDelete"`
	LegalBasis      string `json:"legalBasis" binding:"required"`
}

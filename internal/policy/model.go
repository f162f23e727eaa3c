package policy

// PolicyChange is one entry in a policy's ordered change history.
type PolicyChange struct {
	Date        int64  `json:"date" validate:"required"`
	Description string `json:"description" validate:"required"`
}

// PrivacyPolicy is a versioned legal policy document. Policies are immutable
// once created; new versions supersede old ones and nothing is deleted in
// normal operation.
type PrivacyPolicy struct {
	Version         string         `json:"version" validate:"required"`
	EffectiveDate   int64          `json:"effectiveDate" validate:"required"`
	Content         string         `json:"content" validate:"required"`
	Changes         []PolicyChange `json:"changes,omitempty" validate:"omitempty,dive"`
	RequiredConsent bool           `json:"requiredConsent"`
}

// CreatePolicyRequest is the wire shape for creating a policy version.
type CreatePolicyRequest struct {
	Version         string         `json:"version" binding:"required"`
	EffectiveDate   int64          `json:"effectiveDate" binding:"required"`
	Content         string         `json:"content" binding:"required"`
	Changes         []PolicyChange `json:"changes"`
	RequiredConsent bool           `json:"requiredConsent"`
}

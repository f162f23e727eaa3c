package consent

// Consent types and statuses.
const (
	TypeExplicit = "explicit"
	TypeImplicit = "implicit"

	StatusGranted   = "granted"
	StatusWithdrawn = "withdrawn"
)

// ConsentRecord is a user's acceptance or withdrawal of a specific policy
// version. A user holds at most one record per policy version; the latest
// status for that version wins. History across versions is append-only.
type ConsentRecord struct {
	UserID        string            `json:"userId" validate:"required"`
	PolicyVersion string            `json:"policyVersion" validate:"required"`
	ConsentDate   int64             `json:"consentDate" validate:"required"`
	ConsentType   string            `json:"consentType" validate:"required,oneof=explicit implicit"`
	ConsentSource string            `json:"consentSource" validate:"required"`
	ConsentStatus string            `json:"consentStatus" validate:"required,oneof=granted withdrawn"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// RecordConsentRequest is the wire shape for recording consent. Status
// defaults to granted; withdrawals send status "withdrawn" explicitly.
type RecordConsentRequest struct {
	PolicyVersion string `json:"policyVersion" binding:"required"`
	ConsentType   string `json:"consentType" binding:"required,oneof=explicit implicit"`
	ConsentSource string `json:"consentSource" binding:"required"`
	ConsentStatus string `json:"consentStatus" binding:"omitempty,oneof=granted withdrawn"`
}

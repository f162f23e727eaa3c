package dsr

// RequestType identifies the kind of data-subject request.
type RequestType string

const (
	TypeAccess        RequestType = "access"
	TypeDeletion      RequestType = "deletion"
	TypeRectification RequestType = "rectification"
	TypePortability   RequestType = "portability"
)

// RequestTypes lists every supported request type.
var RequestTypes = []RequestType{TypeAccess, TypeDeletion, TypeRectification, TypePortability}

// IsValidRequestType reports whether t names a supported request type.
func IsValidRequestType(t RequestType) bool {
	switch t {
	case TypeAccess, TypeDeletion, TypeRectification, TypePortability:
		return true
	}
	return false
}

// Request statuses.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusRejected   = "rejected"
)

// DataSubjectRequest is a GDPR-style request filed by a user. One live
// request exists per (user, type) pair; filing again overwrites the stored
// record. CompletionDate is set only when the request completes.
type DataSubjectRequest struct {
	UserID         string            `json:"userId" validate:"required"`
	RequestType    RequestType       `json:"requestType" validate:"required,oneof=access deletion rectification portability"`
	Status         string            `json:"status" validate:"required,oneof=pending processing completed rejected"`
	RequestDate    int64             `json:"requestDate" validate:"required"`
	CompletionDate *int64            `json:"completionDate,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// CreateRequestBody is the wire shape for filing a request.
type CreateRequestBody struct {
	RequestType RequestType       `json:"requestType" binding:"required"`
	Metadata    map[string]string `json:"metadata"`
}

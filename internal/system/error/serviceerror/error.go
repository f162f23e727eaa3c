package serviceerror

type ServiceErrorType string

const (
	ClientErrorType ServiceErrorType = "client_error"
	ServerErrorType ServiceErrorType = "server_error"
)

// Severity classifies how serious a failure is for after-the-fact review.
type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityMajor    Severity = "major"
	SeverityCritical Severity = "critical"
)

type ServiceError struct {
	Code             string           `json:"code"`
	Type             ServiceErrorType `json:"type"`
	Severity         Severity         `json:"severity"`
	Error            string           `json:"error"`
	ErrorDescription string           `json:"error_description,omitempty"`
	Details          interface{}      `json:"details,omitempty"`
}

var (
	InternalServerError = ServiceError{
		Type:             ServerErrorType,
		Severity:         SeverityCritical,
		Code:             "CMP-5000",
		Error:            "internal_server_error",
		ErrorDescription: "An unexpected error occurred",
	}

	StoreError = ServiceError{
		Type:             ServerErrorType,
		Severity:         SeverityCritical,
		Code:             "CMP-5001",
		Error:            "store_error",
		ErrorDescription: "A record store error occurred",
	}

	InvalidRequestError = ServiceError{
		Type:             ClientErrorType,
		Severity:         SeverityMinor,
		Code:             "CMP-4000",
		Error:            "invalid_request",
		ErrorDescription: "The request is invalid",
	}

	ValidationError = ServiceError{
		Type:             ClientErrorType,
		Severity:         SeverityMinor,
		Code:             "CMP-4001",
		Error:            "validation_error",
		ErrorDescription: "Validation failed",
	}

	UnauthorizedError = ServiceError{
		Type:             ClientErrorType,
		Severity:         SeverityMajor,
		Code:             "CMP-4010",
		Error:            "unauthorized",
		ErrorDescription: "Authentication is required",
	}

	ConsentRequiredError = ServiceError{
		Type:             ClientErrorType,
		Severity:         SeverityMajor,
		Code:             "CMP-4030",
		Error:            "PRIVACY_POLICY_CONSENT_REQUIRED",
		ErrorDescription: "Consent to the current privacy policy is required",
	}

	ResourceNotFoundError = ServiceError{
		Type:             ClientErrorType,
		Severity:         SeverityMinor,
		Code:             "CMP-4004",
		Error:            "resource_not_found",
		ErrorDescription: "Resource not found",
	}

	ConflictError = ServiceError{
		Type:             ClientErrorType,
		Severity:         SeverityMajor,
		Code:             "CMP-4009",
		Error:            "conflict",
		ErrorDescription: "Request conflicts with current state",
	}
)

func CustomServiceError(baseError ServiceError, description string) *ServiceError {
	return &ServiceError{
		Type:             baseError.Type,
		Severity:         baseError.Severity,
		Code:             baseError.Code,
		Error:            baseError.Error,
		ErrorDescription: description,
	}
}

// CustomServiceErrorWithDetails attaches a structured detail payload, used for
// validation failures where the offending input matters to the caller.
func CustomServiceErrorWithDetails(baseError ServiceError, description string, details interface{}) *ServiceError {
	serviceError := CustomServiceError(baseError, description)
	serviceError.Details = details
	return serviceError
}

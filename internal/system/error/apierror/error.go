package apierror

type ErrorResponse struct {
	Code        string      `json:"error"`
	Description string      `json:"error_description"`
	Details     interface{} `json:"details,omitempty"`
}

func NewErrorResponse(code, description string) *ErrorResponse {
	return &ErrorResponse{
		Code:        code,
		Description: description,
	}
}

package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/novora/compliance-api/internal/system/error/apierror"
	"github.com/novora/compliance-api/internal/system/error/serviceerror"
)

// HTTPStatusFor maps a ServiceError to an HTTP status code.
func HTTPStatusFor(err *serviceerror.ServiceError) int {
	if err.Type != serviceerror.ClientErrorType {
		return http.StatusInternalServerError
	}
	switch err.Code {
	case serviceerror.ResourceNotFoundError.Code:
		return http.StatusNotFound
	case serviceerror.ConflictError.Code:
		return http.StatusConflict
	case serviceerror.UnauthorizedError.Code:
		return http.StatusUnauthorized
	case serviceerror.ConsentRequiredError.Code:
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}

// SendError writes a ServiceError as an HTTP response with the appropriate
// status code and aborts the rest of the handler chain.
func SendError(c *gin.Context, err *serviceerror.ServiceError) {
	errorResponse := apierror.ErrorResponse{
		Code:        err.Error,
		Description: err.ErrorDescription,
		Details:     err.Details,
	}
	c.AbortWithStatusJSON(HTTPStatusFor(err), errorResponse)
}

package dsr

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/novora/compliance-api/internal/system/constants"
	"github.com/novora/compliance-api/internal/system/error/serviceerror"
	"github.com/novora/compliance-api/internal/system/utils"
)

type dsrHandler struct {
	service DSRService
}

// NewHandler creates the HTTP handler for data-subject-request operations.
func NewHandler(service DSRService) *dsrHandler {
	return &dsrHandler{service: service}
}

// CreateRequest handles POST /data-subject-requests. The request is accepted
// for asynchronous processing, never processed inline.
func (h *dsrHandler) CreateRequest(c *gin.Context) {
	userID := c.GetString(constants.ContextKeyUserID)
	if userID == "" {
		utils.SendError(c, serviceerror.CustomServiceError(serviceerror.UnauthorizedError, "Authentication is required to file a data subject request"))
		return
	}

	var body CreateRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.SendError(c, serviceerror.CustomServiceError(serviceerror.InvalidRequestError, "requestType is required"))
		return
	}

	if _, serviceErr := h.service.CreateRequest(c.Request.Context(), userID, body.RequestType, body.Metadata); serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": "Data subject request received",
		"status":  StatusPending,
	})
}

// GetRequest handles GET /data-subject-requests/:requestType
func (h *dsrHandler) GetRequest(c *gin.Context) {
	userID := c.GetString(constants.ContextKeyUserID)
	if userID == "" {
		utils.SendError(c, serviceerror.CustomServiceError(serviceerror.UnauthorizedError, "Authentication is required"))
		return
	}

	request, serviceErr := h.service.GetRequest(c.Request.Context(), userID, RequestType(c.Param("requestType")))
	if serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, request)
}

// ProcessRequest handles POST /admin/data-subject-requests/:userId/:requestType/process
func (h *dsrHandler) ProcessRequest(c *gin.Context) {
	request, serviceErr := h.service.ProcessRequest(c.Request.Context(), c.Param("userId"), RequestType(c.Param("requestType")))
	if serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, request)
}

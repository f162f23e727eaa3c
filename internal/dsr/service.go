package dsr

import (
	"context"
	"errors"
	"fmt"

	"github.com/novora/compliance-api/internal/audit"
	"github.com/novora/compliance-api/internal/system/constants"
	"github.com/novora/compliance-api/internal/system/error/serviceerror"
	"github.com/novora/compliance-api/internal/system/kv"
	"github.com/novora/compliance-api/internal/system/log"
	"github.com/novora/compliance-api/internal/system/records"
	"github.com/novora/compliance-api/internal/system/utils"
)

// DSRService defines the exported service interface
type DSRService interface {
	CreateRequest(ctx context.Context, userID string, requestType RequestType, metadata map[string]string) (*DataSubjectRequest, *serviceerror.ServiceError)
	GetRequest(ctx context.Context, userID string, requestType RequestType) (*DataSubjectRequest, *serviceerror.ServiceError)
	ProcessRequest(ctx context.Context, userID string, requestType RequestType) (*DataSubjectRequest, *serviceerror.ServiceError)
}

// dsrService implements the DSRService interface
type dsrService struct {
	repo     *records.Repository[DataSubjectRequest]
	registry *ProcessorRegistry
	audit    audit.AuditService
	logger   *log.Logger
}

// NewService creates a new data-subject-request service
func NewService(store kv.Store, registry *ProcessorRegistry, auditService audit.AuditService) DSRService {
	return &dsrService{
		repo: records.NewRepository(store, "data_subject_request", func(r *DataSubjectRequest) string {
			return requestKey(r.UserID, r.RequestType)
		}),
		registry: registry,
		audit:    auditService,
		logger:   log.GetLogger().With(log.String(log.LoggerKeyComponentName, "DSRService")),
	}
}

func requestKey(userID string, requestType RequestType) string {
	return constants.KeyPrefixDataSubjectReq + userID + ":" + string(requestType)
}

// CreateRequest files a pending request for the user. Filing a second request
// of the same type overwrites the stored record for that (user, type) pair.
func (dsrService *dsrService) CreateRequest(ctx context.Context, userID string, requestType RequestType, metadata map[string]string) (*DataSubjectRequest, *serviceerror.ServiceError) {
	if userID == "" {
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError, "userId is required")
	}
	if !IsValidRequestType(requestType) {
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError, fmt.Sprintf("requestType must be one of access, deletion, rectification, portability; got '%s'", requestType))
	}

	request := &DataSubjectRequest{
		UserID:      userID,
		RequestType: requestType,
		Status:      StatusPending,
		RequestDate: utils.GetCurrentTimeMillis(),
		Metadata:    metadata,
	}

	if err := dsrService.repo.Save(ctx, request); err != nil {
		var validationErr *records.ValidationError
		if errors.As(err, &validationErr) {
			return nil, serviceerror.CustomServiceErrorWithDetails(serviceerror.ValidationError, err.Error(), validationErr.Fields)
		}
		return nil, serviceerror.CustomServiceError(serviceerror.StoreError, err.Error())
	}

	dsrService.logAudit(ctx, audit.Entry{
		UserID:     userID,
		Action:     "create",
		Resource:   "data_subject_request",
		ResourceID: string(requestType),
	})

	return request, nil
}

// GetRequest loads the stored request for the (user, type) pair.
func (dsrService *dsrService) GetRequest(ctx context.Context, userID string, requestType RequestType) (*DataSubjectRequest, *serviceerror.ServiceError) {
	request, err := dsrService.repo.Get(ctx, requestKey(userID, requestType))
	if errors.Is(err, kv.ErrNotFound) {
		return nil, serviceerror.CustomServiceError(serviceerror.ResourceNotFoundError, fmt.Sprintf("No %s request found for user '%s'", requestType, userID))
	}
	if err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.StoreError, err.Error())
	}
	return request, nil
}

// ProcessRequest dispatches the stored request to its registered processor.
// Success completes the request and stamps CompletionDate; processor failure
// marks it rejected (best effort) and surfaces the original error.
func (dsrService *dsrService) ProcessRequest(ctx context.Context, userID string, requestType RequestType) (*DataSubjectRequest, *serviceerror.ServiceError) {
	request, serviceErr := dsrService.GetRequest(ctx, userID, requestType)
	if serviceErr != nil {
		return nil, serviceErr
	}

	processor := dsrService.registry.Get(requestType)
	if processor == nil {
		return nil, serviceerror.CustomServiceError(serviceerror.InternalServerError, fmt.Sprintf("no processor registered for request type '%s'", requestType))
	}

	request.Status = StatusProcessing
	// A completion date only belongs on a completed request; reprocessing a
	// previously completed request must not carry the old one forward.
	request.CompletionDate = nil
	if err := dsrService.repo.Save(ctx, request); err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.StoreError, err.Error())
	}

	if err := processor.Process(ctx, request); err != nil {
		request.Status = StatusRejected
		// Best effort: the rejection marking is not guaranteed if this
		// re-store fails, the original error still wins.
		if saveErr := dsrService.repo.Save(ctx, request); saveErr != nil {
			dsrService.logger.Warn("Failed to persist rejected request",
				log.Error(saveErr),
				log.String("user_id", userID),
				log.String("request_type", string(requestType)))
		}

		dsrService.logAudit(ctx, audit.Entry{
			UserID:     userID,
			Action:     "reject",
			Resource:   "data_subject_request",
			ResourceID: string(requestType),
			Metadata:   map[string]string{"error": err.Error()},
		})

		return nil, serviceerror.CustomServiceErrorWithDetails(serviceerror.InternalServerError,
			fmt.Sprintf("processing %s request failed: %v", requestType, err),
			map[string]string{"cause": err.Error()})
	}

	completedAt := utils.GetCurrentTimeMillis()
	request.Status = StatusCompleted
	request.CompletionDate = &completedAt
	if err := dsrService.repo.Save(ctx, request); err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.StoreError, err.Error())
	}

	dsrService.logAudit(ctx, audit.Entry{
		UserID:     userID,
		Action:     "complete",
		Resource:   "data_subject_request",
		ResourceID: string(requestType),
	})

	return request, nil
}

// logAudit writes a best-effort audit entry; failures are logged, never
// surfaced to the caller.
func (dsrService *dsrService) logAudit(ctx context.Context, entry audit.Entry) {
	if auditErr := dsrService.audit.Log(ctx, entry); auditErr != nil {
		dsrService.logger.Warn("Failed to write audit entry",
			log.String("action", entry.Action),
			log.String("user_id", entry.UserID),
			log.String("description", auditErr.ErrorDescription))
	}
}

package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/novora/compliance-api/internal/system/constants"
	"github.com/novora/compliance-api/internal/system/error/serviceerror"
	"github.com/novora/compliance-api/internal/system/kv"
	"github.com/novora/compliance-api/internal/system/log"
	"github.com/novora/compliance-api/internal/system/records"
	"github.com/novora/compliance-api/internal/system/utils"
)

// AuditService defines the exported service interface
type AuditService interface {
	Log(ctx context.Context, entry Entry) *serviceerror.ServiceError
	GetLogs(ctx context.Context, filters map[string]string, limit int) ([]AuditLog, *serviceerror.ServiceError)
}

// auditService implements the AuditService interface
type auditService struct {
	store     kv.Store
	publisher Publisher
	logger    *log.Logger
}

// NewService creates a new audit service. publisher may be nil when no event
// stream is configured.
func NewService(store kv.Store, publisher Publisher) AuditService {
	return &auditService{
		store:     store,
		publisher: publisher,
		logger:    log.GetLogger().With(log.String(log.LoggerKeyComponentName, "AuditService")),
	}
}

// Log validates and appends an audit entry, mirrors it to the logging sink,
// and publishes it to the event stream when one is configured. The append is
// the source of truth; publish failures are logged and do not fail the call.
func (auditService *auditService) Log(ctx context.Context, entry Entry) *serviceerror.ServiceError {
	auditLog := &AuditLog{
		AuditID:    utils.GenerateUUID(),
		Timestamp:  utils.GetCurrentTimeMillis(),
		UserID:     entry.UserID,
		Action:     entry.Action,
		Resource:   entry.Resource,
		ResourceID: entry.ResourceID,
		Changes:    entry.Changes,
		Metadata:   entry.Metadata,
		IPAddress:  entry.IPAddress,
		UserAgent:  entry.UserAgent,
	}

	if err := records.Validate("audit_log", auditLog); err != nil {
		var validationErr *records.ValidationError
		if errors.As(err, &validationErr) {
			return serviceerror.CustomServiceErrorWithDetails(serviceerror.ValidationError, err.Error(), validationErr.Fields)
		}
		return serviceerror.CustomServiceError(serviceerror.ValidationError, err.Error())
	}

	value, err := json.Marshal(auditLog)
	if err != nil {
		return serviceerror.CustomServiceError(serviceerror.InternalServerError, fmt.Sprintf("failed to serialize audit log: %v", err))
	}

	if err := auditService.store.Push(ctx, constants.KeyAuditLogs, value); err != nil {
		return serviceerror.CustomServiceError(serviceerror.StoreError, err.Error())
	}

	auditService.logger.Info("audit",
		log.String("audit_id", auditLog.AuditID),
		log.String("user_id", auditLog.UserID),
		log.String("action", auditLog.Action),
		log.String("resource", auditLog.Resource),
		log.String("resource_id", auditLog.ResourceID),
	)

	if auditService.publisher != nil {
		if err := auditService.publisher.Publish(ctx, value, auditLog.UserID); err != nil {
			auditService.logger.Warn("Failed to publish audit event", log.Error(err), log.String("audit_id", auditLog.AuditID))
		}
	}

	return nil
}

// GetLogs reads the most recent limit entries and keeps only those matching
// every provided filter exactly.
func (auditService *auditService) GetLogs(ctx context.Context, filters map[string]string, limit int) ([]AuditLog, *serviceerror.ServiceError) {
	if limit <= 0 {
		limit = constants.DefaultAuditLogLimit
	}
	if limit > constants.MaxAuditLogLimit {
		limit = constants.MaxAuditLogLimit
	}

	values, err := auditService.store.Range(ctx, constants.KeyAuditLogs, 0, int64(limit)-1)
	if err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.StoreError, err.Error())
	}

	logs := make([]AuditLog, 0, len(values))
	for _, value := range values {
		var auditLog AuditLog
		if err := json.Unmarshal(value, &auditLog); err != nil {
			return nil, serviceerror.CustomServiceError(serviceerror.InternalServerError, fmt.Sprintf("failed to deserialize audit log: %v", err))
		}
		if matchesFilters(&auditLog, filters) {
			logs = append(logs, auditLog)
		}
	}

	return logs, nil
}

// matchesFilters applies exact-match AND semantics across all provided
// filter fields. Unknown filter fields never match.
func matchesFilters(auditLog *AuditLog, filters map[string]string) bool {
	for field, expected := range filters {
		var actual string
		switch field {
		case "action":
			actual = auditLog.Action
		case "resource":
			actual = auditLog.Resource
		case "resourceId":
			actual = auditLog.ResourceID
		case "userId":
			actual = auditLog.UserID
		case "ipAddress":
			actual = auditLog.IPAddress
		default:
			return false
		}
		if actual != expected {
			return false
		}
	}
	return true
}

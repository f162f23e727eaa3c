package consent

import (
	"context"
	"errors"

	"github.com/novora/compliance-api/internal/audit"
	"github.com/novora/compliance-api/internal/system/constants"
	"github.com/novora/compliance-api/internal/system/error/serviceerror"
	"github.com/novora/compliance-api/internal/system/kv"
	"github.com/novora/compliance-api/internal/system/log"
	"github.com/novora/compliance-api/internal/system/records"
	"github.com/novora/compliance-api/internal/system/utils"
)

// ConsentService defines the exported service interface
type ConsentService interface {
	RecordConsent(ctx context.Context, record ConsentRecord) (*ConsentRecord, *serviceerror.ServiceError)
	GetConsentHistory(ctx context.Context, userID string) ([]ConsentRecord, *serviceerror.ServiceError)
	HasGrantedConsent(ctx context.Context, userID, policyVersion string) (bool, *serviceerror.ServiceError)
}

// consentService implements the ConsentService interface
type consentService struct {
	repo   *records.Repository[ConsentRecord]
	audit  audit.AuditService
	logger *log.Logger
}

// NewService creates a new consent service
func NewService(store kv.Store, auditService audit.AuditService) ConsentService {
	return &consentService{
		repo: records.NewRepository(store, "consent_record", func(r *ConsentRecord) string {
			return consentKey(r.UserID, r.PolicyVersion)
		}),
		audit:  auditService,
		logger: log.GetLogger().With(log.String(log.LoggerKeyComponentName, "ConsentService")),
	}
}

func consentKey(userID, policyVersion string) string {
	return constants.KeyPrefixConsent + userID + ":" + policyVersion
}

// RecordConsent validates and stores a consent record at the (user, policy
// version) key, overwriting any prior record for that exact pair, and writes
// an audit entry.
func (consentService *consentService) RecordConsent(ctx context.Context, record ConsentRecord) (*ConsentRecord, *serviceerror.ServiceError) {
	if record.ConsentDate == 0 {
		record.ConsentDate = utils.GetCurrentTimeMillis()
	}

	if err := consentService.repo.Save(ctx, &record); err != nil {
		var validationErr *records.ValidationError
		if errors.As(err, &validationErr) {
			return nil, serviceerror.CustomServiceErrorWithDetails(serviceerror.ValidationError, err.Error(), validationErr.Fields)
		}
		return nil, serviceerror.CustomServiceError(serviceerror.StoreError, err.Error())
	}

	if auditErr := consentService.audit.Log(ctx, audit.Entry{
		UserID:     record.UserID,
		Action:     record.ConsentStatus,
		Resource:   "consent",
		ResourceID: record.PolicyVersion,
		Metadata:   record.Metadata,
	}); auditErr != nil {
		consentService.logger.Warn("Failed to write audit entry for consent record",
			log.String("user_id", record.UserID),
			log.String("policy_version", record.PolicyVersion),
			log.String("description", auditErr.ErrorDescription))
	}

	return &record, nil
}

// GetConsentHistory returns every consent record stored for the user, one per
// policy version consented to or withdrawn from.
func (consentService *consentService) GetConsentHistory(ctx context.Context, userID string) ([]ConsentRecord, *serviceerror.ServiceError) {
	if userID == "" {
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError, "userId is required")
	}

	history, err := consentService.repo.List(ctx, constants.KeyPrefixConsent+userID+":")
	if err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.StoreError, err.Error())
	}
	return history, nil
}

// HasGrantedConsent reports whether the user's record for the exact policy
// version exists with status granted.
func (consentService *consentService) HasGrantedConsent(ctx context.Context, userID, policyVersion string) (bool, *serviceerror.ServiceError) {
	record, err := consentService.repo.Get(ctx, consentKey(userID, policyVersion))
	if errors.Is(err, kv.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, serviceerror.CustomServiceError(serviceerror.StoreError, err.Error())
	}
	return record.ConsentStatus == StatusGranted, nil
}

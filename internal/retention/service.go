package retention

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
)

// Deleter removes data that has outlived its retention policy. It is the
// extension point the enforcement loop drives; the shipped implementation
// works against the record store, deployments may substitute their own.
type Deleter interface {
	DeleteExpired(ctx context.Context, policy RetentionPolicy) error
}

// RetentionService defines the exported service interface
type RetentionService interface {
	SetRetentionPolicy(ctx context.Context, req SetRetentionPolicyRequest) (*RetentionPolicy, *serviceerror.ServiceError)
	ListRetentionPolicies(ctx context.Context) ([]RetentionPolicy, *serviceerror.ServiceError)
	EnforceRetentionPolicies(ctx context.Context) (int, *serviceerror.ServiceError)
}

// retentionService implements the RetentionService interface
type retentionService struct {
	repo    *records.Repository[RetentionPolicy]
	deleter Deleter
	audit   audit.AuditService
	logger  *log.Logger
}

// NewService creates a new retention service
func NewService(store kv.Store, deleter Deleter, auditService audit.AuditService) RetentionService {
	return &retentionService{
		repo: records.NewRepository(store, "retention_policy", func(p *RetentionPolicy) string {
			return constants.KeyPrefixRetentionPolicy + p.DataType
		}),
		deleter: deleter,
		audit:   auditService,
		logger:  log.GetLogger().With(log.String(log.LoggerKeyComponentName, "RetentionService")),
	}
}

// SetRetentionPolicy validates and upserts the rule for a data type.
func (retentionService *retentionService) SetRetentionPolicy(ctx context.Context, req SetRetentionPolicyRequest) (*RetentionPolicy, *serviceerror.ServiceError) {
	policy := &RetentionPolicy{
		DataType:        req.DataType,
		RetentionPeriod: req.RetentionPeriod,
		RetentionReason: req.RetentionReason,
		AutoDelete:      req.AutoDelete,
		LegalBasis:      req.LegalBasis,
	}

	if err := retentionService.repo.Save(ctx, policy); err != nil {
		var validationErr *records.ValidationError
		if errors.As(err, &validationErr) {
			return nil, serviceerror.CustomServiceErrorWithDetails(serviceerror.ValidationError, err.Error(), validationErr.Fields)
		}
		return nil, serviceerror.CustomServiceError(serviceerror.StoreError, err.Error())
	}

	if auditErr := retentionService.audit.Log(ctx, audit.Entry{
		Action:     "set",
		Resource:   "retention_policy",
		ResourceID: policy.DataType,
		Changes: map[string]interface{}{
			"retentionPeriod": policy.RetentionPeriod,
			"autoDelete":      policy.AutoDelete,
		},
	}); auditErr != nil {
		retentionService.logger.Warn("Failed to write audit entry for retention policy",
			log.String("data_type", policy.DataType),
			log.String("description", auditErr.ErrorDescription))
	}

	return policy, nil
}

// ListRetentionPolicies returns every stored retention policy.
func (retentionService *retentionService) ListRetentionPolicies(ctx context.Context) ([]RetentionPolicy, *serviceerror.ServiceError) {
	policies, err := retentionService.repo.List(ctx, constants.KeyPrefixRetentionPolicy)
	if err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.StoreError, err.Error())
	}
	return policies, nil
}

// EnforceRetentionPolicies runs the deleter for every policy with AutoDelete
// enabled and reports how many policies were enforced. Policies without
// AutoDelete are never acted on. Individual failures are collected so one bad
// policy does not block the rest of the sweep.
func (retentionService *retentionService) EnforceRetentionPolicies(ctx context.Context) (int, *serviceerror.ServiceError) {
	policies, serviceErr := retentionService.ListRetentionPolicies(ctx)
	if serviceErr != nil {
		return 0, serviceErr
	}

	enforced := 0
	var failures []string
	for _, policy := range policies {
		if !policy.AutoDelete {
			continue
		}
		if err := retentionService.deleter.DeleteExpired(ctx, policy); err != nil {
			retentionService.logger.Warn("Retention enforcement failed for data type",
				log.Error(err),
				log.String("data_type", policy.DataType))
			failures = append(failures, fmt.Sprintf("%s: %v", policy.DataType, err))
			continue
		}
		enforced++

		if auditErr := retentionService.audit.Log(ctx, audit.Entry{
			Action:     "enforce",
			Resource:   "retention_policy",
			ResourceID: policy.DataType,
		}); auditErr != nil {
			retentionService.logger.Warn("Failed to write audit entry for retention enforcement",
				log.String("data_type", policy.DataType),
				log.String("description", auditErr.ErrorDescription))
		}
	}

	if len(failures) > 0 {
		return enforced, serviceerror.CustomServiceErrorWithDetails(serviceerror.InternalServerError,
			"retention enforcement completed with failures", failures)
	}
	return enforced, nil
}

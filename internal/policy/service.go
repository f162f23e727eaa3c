package policy

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

// PolicyService defines the exported service interface
type PolicyService interface {
	CreatePolicy(ctx context.Context, req CreatePolicyRequest) (*PrivacyPolicy, *serviceerror.ServiceError)
	GetPolicy(ctx context.Context, version string) (*PrivacyPolicy, *serviceerror.ServiceError)
	ListPolicies(ctx context.Context) ([]PrivacyPolicy, *serviceerror.ServiceError)
	GetLatestPolicy(ctx context.Context) (*PrivacyPolicy, *serviceerror.ServiceError)
}

// policyService implements the PolicyService interface
type policyService struct {
	repo   *records.Repository[PrivacyPolicy]
	audit  audit.AuditService
	logger *log.Logger
}

// NewService creates a new privacy policy service
func NewService(store kv.Store, auditService audit.AuditService) PolicyService {
	return &policyService{
		repo: records.NewRepository(store, "privacy_policy", func(p *PrivacyPolicy) string {
			return constants.KeyPrefixPrivacyPolicy + p.Version
		}),
		audit:  auditService,
		logger: log.GetLogger().With(log.String(log.LoggerKeyComponentName, "PolicyService")),
	}
}

// CreatePolicy validates and stores a new policy version. Versions are
// immutable: re-creating an existing version is a conflict, never an
// overwrite.
func (policyService *policyService) CreatePolicy(ctx context.Context, req CreatePolicyRequest) (*PrivacyPolicy, *serviceerror.ServiceError) {
	policy := &PrivacyPolicy{
		Version:         req.Version,
		EffectiveDate:   req.EffectiveDate,
		Content:         req.Content,
		Changes:         req.Changes,
		RequiredConsent: req.RequiredConsent,
	}

	if _, err := policyService.repo.Get(ctx, constants.KeyPrefixPrivacyPolicy+req.Version); err == nil {
		return nil, serviceerror.CustomServiceError(serviceerror.ConflictError, fmt.Sprintf("Privacy policy version '%s' already exists", req.Version))
	} else if !errors.Is(err, kv.ErrNotFound) {
		return nil, serviceerror.CustomServiceError(serviceerror.StoreError, err.Error())
	}

	if err := policyService.repo.Save(ctx, policy); err != nil {
		return nil, wrapSaveError(err)
	}

	if auditErr := policyService.audit.Log(ctx, audit.Entry{
		Action:     "create",
		Resource:   "privacy_policy",
		ResourceID: policy.Version,
		Changes:    map[string]interface{}{"effectiveDate": policy.EffectiveDate, "requiredConsent": policy.RequiredConsent},
	}); auditErr != nil {
		policyService.logger.Warn("Failed to write audit entry for policy creation",
			log.String("version", policy.Version),
			log.String("description", auditErr.ErrorDescription))
	}

	return policy, nil
}

// GetPolicy retrieves a policy by version
func (policyService *policyService) GetPolicy(ctx context.Context, version string) (*PrivacyPolicy, *serviceerror.ServiceError) {
	if version == "" {
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError, "version is required")
	}

	policy, err := policyService.repo.Get(ctx, constants.KeyPrefixPrivacyPolicy+version)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, serviceerror.CustomServiceError(serviceerror.ResourceNotFoundError, fmt.Sprintf("Privacy policy version '%s' not found", version))
	}
	if err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.StoreError, err.Error())
	}
	return policy, nil
}

// ListPolicies returns every stored policy version
func (policyService *policyService) ListPolicies(ctx context.Context) ([]PrivacyPolicy, *serviceerror.ServiceError) {
	policies, err := policyService.repo.List(ctx, constants.KeyPrefixPrivacyPolicy)
	if err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.StoreError, err.Error())
	}
	return policies, nil
}

// GetLatestPolicy returns the policy with the most recent effective date,
// tie-broken by version string. Not-found when no policy exists yet.
func (policyService *policyService) GetLatestPolicy(ctx context.Context) (*PrivacyPolicy, *serviceerror.ServiceError) {
	policies, err := policyService.repo.List(ctx, constants.KeyPrefixPrivacyPolicy)
	if err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.StoreError, err.Error())
	}
	if len(policies) == 0 {
		return nil, serviceerror.CustomServiceError(serviceerror.ResourceNotFoundError, "No privacy policy has been published")
	}

	latest := policies[0]
	for _, candidate := range policies[1:] {
		if candidate.EffectiveDate > latest.EffectiveDate ||
			(candidate.EffectiveDate == latest.EffectiveDate && candidate.Version > latest.Version) {
			latest = candidate
		}
	}
	return &latest, nil
}

func wrapSaveError(err error) *serviceerror.ServiceError {
	var validationErr *records.ValidationError
	if errors.As(err, &validationErr) {
		return serviceerror.CustomServiceErrorWithDetails(serviceerror.ValidationError, err.Error(), validationErr.Fields)
	}
	return serviceerror.CustomServiceError(serviceerror.StoreError, err.Error())
}

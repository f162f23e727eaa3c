package policy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novora/compliance-api/internal/audit"
	"github.com/novora/compliance-api/internal/system/error/serviceerror"
	"github.com/novora/compliance-api/internal/system/kv"
)

var _ audit.AuditService = failingAuditService{}

type failingAuditService struct{}

func (failingAuditService) Log(context.Context, audit.Entry) *serviceerror.ServiceError {
	return serviceerror.CustomServiceError(serviceerror.StoreError, "audit trail unavailable")
}

func (failingAuditService) GetLogs(context.Context, map[string]string, int) ([]audit.AuditLog, *serviceerror.ServiceError) {
	return nil, serviceerror.CustomServiceError(serviceerror.StoreError, "audit trail unavailable")
}

func newTestService(t *testing.T) (PolicyService, audit.AuditService) {
	t.Helper()
	store := kv.NewMemoryStore()
	auditService := audit.NewService(store, nil)
	return NewService(store, auditService), auditService
}

func TestCreatePolicy(t *testing.T) {
	ctx := context.Background()
	service, auditService := newTestService(t)

	created, svcErr := service.CreatePolicy(ctx, CreatePolicyRequest{
		Version:         "1.0",
		EffectiveDate:   1700000000000,
		Content:         "We collect engagement survey responses.",
		Changes:         []PolicyChange{{Date: 1700000000000, Description: "Initial version"}},
		RequiredConsent: true,
	})
	require.Nil(t, svcErr)
	assert.Equal(t, "1.0", created.Version)
	assert.True(t, created.RequiredConsent)

	loaded, svcErr := service.GetPolicy(ctx, "1.0")
	require.Nil(t, svcErr)
	assert.Equal(t, created, loaded)

	// Creation left an audit trail entry.
	logs, svcErr := auditService.GetLogs(ctx, map[string]string{"resource": "privacy_policy"}, 0)
	require.Nil(t, svcErr)
	require.Len(t, logs, 1)
	assert.Equal(t, "create", logs[0].Action)
	assert.Equal(t, "1.0", logs[0].ResourceID)
}

func TestCreatePolicyVersionConflict(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)

	req := CreatePolicyRequest{Version: "1.0", EffectiveDate: 1700000000000, Content: "original"}
	_, svcErr := service.CreatePolicy(ctx, req)
	require.Nil(t, svcErr)

	req.Content = "rewritten"
	_, svcErr = service.CreatePolicy(ctx, req)
	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.ConflictError.Code, svcErr.Code)

	// The stored version is untouched.
	loaded, getErr := service.GetPolicy(ctx, "1.0")
	require.Nil(t, getErr)
	assert.Equal(t, "original", loaded.Content)
}

func TestCreatePolicySucceedsWhenAuditFails(t *testing.T) {
	ctx := context.Background()
	service := NewService(kv.NewMemoryStore(), failingAuditService{})

	created, svcErr := service.CreatePolicy(ctx, CreatePolicyRequest{
		Version:       "1.0",
		EffectiveDate: 1700000000000,
		Content:       "Policy text.",
	})
	require.Nil(t, svcErr)

	// The policy write is the source of truth; a failed audit append does
	// not fail the operation.
	loaded, svcErr := service.GetPolicy(ctx, "1.0")
	require.Nil(t, svcErr)
	assert.Equal(t, created, loaded)
}

func TestCreatePolicyValidation(t *testing.T) {
	service, _ := newTestService(t)

	_, svcErr := service.CreatePolicy(context.Background(), CreatePolicyRequest{Version: "1.0"})
	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.ValidationError.Code, svcErr.Code)
}

func TestGetPolicyNotFound(t *testing.T) {
	service, _ := newTestService(t)

	_, svcErr := service.GetPolicy(context.Background(), "9.9")
	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.ResourceNotFoundError.Code, svcErr.Code)
}

func TestGetLatestPolicy(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)

	_, svcErr := service.GetLatestPolicy(ctx)
	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.ResourceNotFoundError.Code, svcErr.Code)

	for _, req := range []CreatePolicyRequest{
		{Version: "1.0", EffectiveDate: 1700000000000, Content: "v1"},
		{Version: "2.0", EffectiveDate: 1720000000000, Content: "v2", RequiredConsent: true},
		{Version: "1.5", EffectiveDate: 1710000000000, Content: "v1.5"},
	} {
		_, svcErr := service.CreatePolicy(ctx, req)
		require.Nil(t, svcErr)
	}

	latest, svcErr := service.GetLatestPolicy(ctx)
	require.Nil(t, svcErr)
	assert.Equal(t, "2.0", latest.Version)

	policies, svcErr := service.ListPolicies(ctx)
	require.Nil(t, svcErr)
	assert.Len(t, policies, 3)
}

package retention

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/novora/compliance-api/internal/audit"
	"github.com/novora/compliance-api/internal/system/error/serviceerror"
	"github.com/novora/compliance-api/internal/system/kv"
)

type mockDeleter struct {
	mock.Mock
}

func (m *mockDeleter) DeleteExpired(ctx context.Context, policy RetentionPolicy) error {
	args := m.Called(ctx, policy)
	return args.Error(0)
}

func newTestService(t *testing.T, deleter Deleter) RetentionService {
	t.Helper()
	store := kv.NewMemoryStore()
	return NewService(store, deleter, audit.NewService(store, nil))
}

func consentPolicy(autoDelete bool) SetRetentionPolicyRequest {
	return SetRetentionPolicyRequest{
		DataType:        "consent",
		RetentionPeriod: 365,
		RetentionReason: "Consent records are kept for the statutory limitation period",
		AutoDelete:      autoDelete,
		LegalBasis:      "GDPR Art. 7(1)",
	}
}

func TestSetRetentionPolicyUpsert(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t, &mockDeleter{})

	created, svcErr := service.SetRetentionPolicy(ctx, consentPolicy(false))
	require.Nil(t, svcErr)
	assert.Equal(t, 365, created.RetentionPeriod)

	update := consentPolicy(true)
	update.RetentionPeriod = 180
	updated, svcErr := service.SetRetentionPolicy(ctx, update)
	require.Nil(t, svcErr)
	assert.Equal(t, 180, updated.RetentionPeriod)

	policies, svcErr := service.ListRetentionPolicies(ctx)
	require.Nil(t, svcErr)
	require.Len(t, policies, 1)
	assert.Equal(t, 180, policies[0].RetentionPeriod)
	assert.True(t, policies[0].AutoDelete)
}

func TestSetRetentionPolicyValidation(t *testing.T) {
	service := newTestService(t, &mockDeleter{})

	req := consentPolicy(true)
	req.RetentionPeriod = 0
	_, svcErr := service.SetRetentionPolicy(context.Background(), req)
	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.ValidationError.Code, svcErr.Code)
}

func TestEnforceOnlyAutoDeletePolicies(t *testing.T) {
	ctx := context.Background()
	deleter := &mockDeleter{}
	service := newTestService(t, deleter)

	_, svcErr := service.SetRetentionPolicy(ctx, consentPolicy(true))
	require.Nil(t, svcErr)

	manual := consentPolicy(false)
	manual.DataType = "dsr"
	_, svcErr = service.SetRetentionPolicy(ctx, manual)
	require.Nil(t, svcErr)

	deleter.On("DeleteExpired", mock.Anything, mock.MatchedBy(func(p RetentionPolicy) bool {
		return p.DataType == "consent"
	})).Return(nil).Once()

	enforced, svcErr := service.EnforceRetentionPolicies(ctx)
	require.Nil(t, svcErr)
	assert.Equal(t, 1, enforced)

	// The autoDelete=false policy never reached the deleter.
	deleter.AssertExpectations(t)
	deleter.AssertNumberOfCalls(t, "DeleteExpired", 1)
}

func TestEnforceCollectsFailures(t *testing.T) {
	ctx := context.Background()
	deleter := &mockDeleter{}
	service := newTestService(t, deleter)

	_, svcErr := service.SetRetentionPolicy(ctx, consentPolicy(true))
	require.Nil(t, svcErr)

	second := consentPolicy(true)
	second.DataType = "dsr"
	_, svcErr = service.SetRetentionPolicy(ctx, second)
	require.Nil(t, svcErr)

	deleter.On("DeleteExpired", mock.Anything, mock.MatchedBy(func(p RetentionPolicy) bool {
		return p.DataType == "consent"
	})).Return(nil)
	deleter.On("DeleteExpired", mock.Anything, mock.MatchedBy(func(p RetentionPolicy) bool {
		return p.DataType == "dsr"
	})).Return(errors.New("store offline"))

	enforced, svcErr := service.EnforceRetentionPolicies(ctx)
	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.InternalServerError.Code, svcErr.Code)
	// One bad policy does not block the rest of the sweep.
	assert.Equal(t, 1, enforced)
}

package consent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novora/compliance-api/internal/audit"
	"github.com/novora/compliance-api/internal/system/error/serviceerror"
	"github.com/novora/compliance-api/internal/system/kv"
)

func newTestService(t *testing.T) (ConsentService, audit.AuditService) {
	t.Helper()
	store := kv.NewMemoryStore()
	auditService := audit.NewService(store, nil)
	return NewService(store, auditService), auditService
}

func grantedRecord(userID, policyVersion string) ConsentRecord {
	return ConsentRecord{
		UserID:        userID,
		PolicyVersion: policyVersion,
		ConsentType:   TypeExplicit,
		ConsentSource: "web",
		ConsentStatus: StatusGranted,
	}
}

func TestRecordConsent(t *testing.T) {
	ctx := context.Background()
	service, auditService := newTestService(t)

	stored, svcErr := service.RecordConsent(ctx, grantedRecord("u1", "1.0"))
	require.Nil(t, svcErr)
	assert.NotZero(t, stored.ConsentDate)

	granted, svcErr := service.HasGrantedConsent(ctx, "u1", "1.0")
	require.Nil(t, svcErr)
	assert.True(t, granted)

	logs, svcErr := auditService.GetLogs(ctx, map[string]string{"resource": "consent", "userId": "u1"}, 0)
	require.Nil(t, svcErr)
	require.Len(t, logs, 1)
	assert.Equal(t, StatusGranted, logs[0].Action)
	assert.Equal(t, "1.0", logs[0].ResourceID)
}

func TestRecordConsentValidation(t *testing.T) {
	service, _ := newTestService(t)

	_, svcErr := service.RecordConsent(context.Background(), ConsentRecord{
		UserID:        "u1",
		PolicyVersion: "1.0",
		ConsentType:   "verbal",
		ConsentSource: "web",
		ConsentStatus: StatusGranted,
	})
	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.ValidationError.Code, svcErr.Code)
}

func TestRecordConsentLatestStatusWins(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)

	_, svcErr := service.RecordConsent(ctx, grantedRecord("u1", "1.0"))
	require.Nil(t, svcErr)

	withdrawal := grantedRecord("u1", "1.0")
	withdrawal.ConsentStatus = StatusWithdrawn
	_, svcErr = service.RecordConsent(ctx, withdrawal)
	require.Nil(t, svcErr)

	granted, svcErr := service.HasGrantedConsent(ctx, "u1", "1.0")
	require.Nil(t, svcErr)
	assert.False(t, granted)

	// One record per policy version, not one per status change.
	history, svcErr := service.GetConsentHistory(ctx, "u1")
	require.Nil(t, svcErr)
	require.Len(t, history, 1)
	assert.Equal(t, StatusWithdrawn, history[0].ConsentStatus)
}

func TestGetConsentHistoryAcrossVersions(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)

	_, svcErr := service.RecordConsent(ctx, grantedRecord("u1", "1.0"))
	require.Nil(t, svcErr)
	_, svcErr = service.RecordConsent(ctx, grantedRecord("u1", "2.0"))
	require.Nil(t, svcErr)
	_, svcErr = service.RecordConsent(ctx, grantedRecord("u2", "1.0"))
	require.Nil(t, svcErr)

	history, svcErr := service.GetConsentHistory(ctx, "u1")
	require.Nil(t, svcErr)
	assert.Len(t, history, 2)

	history, svcErr = service.GetConsentHistory(ctx, "u3")
	require.Nil(t, svcErr)
	assert.Empty(t, history)
}

func TestHasGrantedConsentUnknownVersion(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)

	_, svcErr := service.RecordConsent(ctx, grantedRecord("u1", "1.0"))
	require.Nil(t, svcErr)

	// Consent to one version does not cover another.
	granted, svcErr := service.HasGrantedConsent(ctx, "u1", "2.0")
	require.Nil(t, svcErr)
	assert.False(t, granted)
}

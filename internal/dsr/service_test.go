package dsr

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novora/compliance-api/internal/audit"
	"github.com/novora/compliance-api/internal/system/constants"
	"github.com/novora/compliance-api/internal/system/error/serviceerror"
	"github.com/novora/compliance-api/internal/system/kv"
)

type failingProcessor struct {
	requestType RequestType
	err         error
}

func (p *failingProcessor) Type() RequestType {
	return p.requestType
}

func (p *failingProcessor) Process(context.Context, *DataSubjectRequest) error {
	return p.err
}

func newTestService(t *testing.T) (DSRService, kv.Store, *ProcessorRegistry) {
	t.Helper()
	store := kv.NewMemoryStore()
	registry := NewProcessorRegistry()
	registry.Register(NewAccessExporter(store))
	registry.Register(NewPortabilityExporter(store))
	registry.Register(NewEraser(store))
	registry.Register(NewRectifier())
	return NewService(store, registry, audit.NewService(store, nil)), store, registry
}

func TestCreateRequest(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(t)

	for _, requestType := range []RequestType{TypeAccess, TypeDeletion, TypeRectification, TypePortability} {
		request, svcErr := service.CreateRequest(ctx, "u1", requestType, nil)
		require.Nil(t, svcErr)
		assert.Equal(t, StatusPending, request.Status)
		assert.Nil(t, request.CompletionDate)
		assert.NotZero(t, request.RequestDate)

		loaded, svcErr := service.GetRequest(ctx, "u1", requestType)
		require.Nil(t, svcErr)
		assert.Equal(t, StatusPending, loaded.Status)
		assert.Nil(t, loaded.CompletionDate)
	}
}

func TestCreateRequestInvalidType(t *testing.T) {
	service, _, _ := newTestService(t)

	_, svcErr := service.CreateRequest(context.Background(), "u1", RequestType("archival"), nil)
	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.ValidationError.Code, svcErr.Code)
}

func TestGetRequestNotFound(t *testing.T) {
	service, _, _ := newTestService(t)

	_, svcErr := service.GetRequest(context.Background(), "u1", TypeAccess)
	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.ResourceNotFoundError.Code, svcErr.Code)
}

func TestProcessRequestCompletes(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(t)

	_, svcErr := service.CreateRequest(ctx, "u1", TypeAccess, nil)
	require.Nil(t, svcErr)

	processed, svcErr := service.ProcessRequest(ctx, "u1", TypeAccess)
	require.Nil(t, svcErr)
	assert.Equal(t, StatusCompleted, processed.Status)
	require.NotNil(t, processed.CompletionDate)
	assert.NotZero(t, *processed.CompletionDate)
	assert.Contains(t, processed.Metadata, "exportPayload")

	loaded, svcErr := service.GetRequest(ctx, "u1", TypeAccess)
	require.Nil(t, svcErr)
	assert.Equal(t, StatusCompleted, loaded.Status)
}

func TestProcessRequestFailureRejects(t *testing.T) {
	ctx := context.Background()
	service, _, registry := newTestService(t)

	cause := errors.New("downstream unavailable")
	registry.Register(&failingProcessor{requestType: TypeDeletion, err: cause})

	_, svcErr := service.CreateRequest(ctx, "u1", TypeDeletion, nil)
	require.Nil(t, svcErr)

	_, svcErr = service.ProcessRequest(ctx, "u1", TypeDeletion)
	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.InternalServerError.Code, svcErr.Code)
	// The original error stays observable by the caller.
	assert.Contains(t, svcErr.ErrorDescription, "downstream unavailable")

	loaded, getErr := service.GetRequest(ctx, "u1", TypeDeletion)
	require.Nil(t, getErr)
	assert.Equal(t, StatusRejected, loaded.Status)
	assert.Nil(t, loaded.CompletionDate)
}

func TestReprocessingFailureClearsCompletionDate(t *testing.T) {
	ctx := context.Background()
	service, _, registry := newTestService(t)

	_, svcErr := service.CreateRequest(ctx, "u1", TypeAccess, nil)
	require.Nil(t, svcErr)

	processed, svcErr := service.ProcessRequest(ctx, "u1", TypeAccess)
	require.Nil(t, svcErr)
	require.NotNil(t, processed.CompletionDate)

	registry.Register(&failingProcessor{requestType: TypeAccess, err: errors.New("export sink unavailable")})

	_, svcErr = service.ProcessRequest(ctx, "u1", TypeAccess)
	require.NotNil(t, svcErr)

	loaded, getErr := service.GetRequest(ctx, "u1", TypeAccess)
	require.Nil(t, getErr)
	assert.Equal(t, StatusRejected, loaded.Status)
	// The earlier completion date must not survive onto the rejected record.
	assert.Nil(t, loaded.CompletionDate)
}

func TestProcessRequestNoProcessor(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	service := NewService(store, NewProcessorRegistry(), audit.NewService(store, nil))

	_, svcErr := service.CreateRequest(ctx, "u1", TypeAccess, nil)
	require.Nil(t, svcErr)

	_, svcErr = service.ProcessRequest(ctx, "u1", TypeAccess)
	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.InternalServerError.Code, svcErr.Code)
}

func TestEraserRemovesConsentRecords(t *testing.T) {
	ctx := context.Background()
	service, store, _ := newTestService(t)

	require.NoError(t, store.Set(ctx, constants.KeyPrefixConsent+"u1:1.0", []byte(`{}`)))
	require.NoError(t, store.Set(ctx, constants.KeyPrefixConsent+"u1:2.0", []byte(`{}`)))
	require.NoError(t, store.Set(ctx, constants.KeyPrefixConsent+"u2:1.0", []byte(`{}`)))

	_, svcErr := service.CreateRequest(ctx, "u1", TypeDeletion, nil)
	require.Nil(t, svcErr)

	processed, svcErr := service.ProcessRequest(ctx, "u1", TypeDeletion)
	require.Nil(t, svcErr)
	assert.Equal(t, "2", processed.Metadata["deletedRecords"])

	keys, err := store.Keys(ctx, constants.KeyPrefixConsent)
	require.NoError(t, err)
	assert.Equal(t, []string{constants.KeyPrefixConsent + "u2:1.0"}, keys)

	// The request record itself survives as proof of fulfilment.
	loaded, getErr := service.GetRequest(ctx, "u1", TypeDeletion)
	require.Nil(t, getErr)
	assert.Equal(t, StatusCompleted, loaded.Status)
}

package dsr

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/novora/compliance-api/internal/system/constants"
	"github.com/novora/compliance-api/internal/system/kv"
	"github.com/novora/compliance-api/internal/system/log"
)

// Exporter fulfils access and portability requests by collecting the
// subject's stored compliance data into a JSON payload attached to the
// request metadata.
type Exporter struct {
	requestType RequestType
	store       kv.Store
}

// NewAccessExporter creates the processor for access requests.
func NewAccessExporter(store kv.Store) *Exporter {
	return &Exporter{requestType: TypeAccess, store: store}
}

// NewPortabilityExporter creates the processor for portability requests.
func NewPortabilityExporter(store kv.Store) *Exporter {
	return &Exporter{requestType: TypePortability, store: store}
}

func (e *Exporter) Type() RequestType {
	return e.requestType
}

func (e *Exporter) Process(ctx context.Context, request *DataSubjectRequest) error {
	consents, err := e.store.List(ctx, constants.KeyPrefixConsent+request.UserID+":")
	if err != nil {
		return fmt.Errorf("failed to collect consent records: %w", err)
	}
	requests, err := e.store.List(ctx, constants.KeyPrefixDataSubjectReq+request.UserID+":")
	if err != nil {
		return fmt.Errorf("failed to collect subject requests: %w", err)
	}

	export := map[string]interface{}{
		"userId":          request.UserID,
		"consentRecords":  rawMessages(consents),
		"subjectRequests": rawMessages(requests),
	}
	payload, err := json.Marshal(export)
	if err != nil {
		return fmt.Errorf("failed to assemble export payload: %w", err)
	}

	if request.Metadata == nil {
		request.Metadata = make(map[string]string)
	}
	request.Metadata["exportPayload"] = string(payload)
	return nil
}

func rawMessages(values [][]byte) []json.RawMessage {
	out := make([]json.RawMessage, 0, len(values))
	for _, value := range values {
		out = append(out, json.RawMessage(value))
	}
	return out
}

// Eraser fulfils deletion requests by removing the subject's consent records
// from the store. The request record itself is kept as proof of fulfilment.
type Eraser struct {
	store kv.Store
}

func NewEraser(store kv.Store) *Eraser {
	return &Eraser{store: store}
}

func (e *Eraser) Type() RequestType {
	return TypeDeletion
}

func (e *Eraser) Process(ctx context.Context, request *DataSubjectRequest) error {
	removed, err := e.store.DeleteByPrefix(ctx, constants.KeyPrefixConsent+request.UserID+":")
	if err != nil {
		return fmt.Errorf("erasure failed: %w", err)
	}

	if request.Metadata == nil {
		request.Metadata = make(map[string]string)
	}
	request.Metadata["deletedRecords"] = strconv.FormatInt(removed, 10)
	return nil
}

// Rectifier fulfils rectification requests. The compliance store holds no
// profile data to rewrite, so the shipped implementation only records that
// the request was reviewed; deployments with mutable subject data are
// expected to register their own processor.
type Rectifier struct{}

func NewRectifier() *Rectifier {
	return &Rectifier{}
}

func (r *Rectifier) Type() RequestType {
	return TypeRectification
}

func (r *Rectifier) Process(_ context.Context, request *DataSubjectRequest) error {
	log.GetLogger().Info("Rectification request acknowledged",
		log.String("user_id", request.UserID))
	if request.Metadata == nil {
		request.Metadata = make(map[string]string)
	}
	request.Metadata["rectification"] = "acknowledged"
	return nil
}

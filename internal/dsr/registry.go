package dsr

import "context"

// Processor fulfils one request type. Implementations own the actual data
// handling (export assembly, erasure, rectification) for their type; the
// service only drives the request lifecycle around them.
type Processor interface {
	// Type returns the request type this processor fulfils.
	Type() RequestType

	// Process fulfils the request. It may annotate the request's metadata;
	// the service persists the request after a successful return. A returned
	// error rejects the request.
	Process(ctx context.Context, request *DataSubjectRequest) error
}

// ProcessorRegistry maps each request type to its processor. Adding a new
// request type is a single Register call.
type ProcessorRegistry struct {
	processors map[RequestType]Processor
}

// NewProcessorRegistry creates an empty registry.
func NewProcessorRegistry() *ProcessorRegistry {
	return &ProcessorRegistry{processors: make(map[RequestType]Processor)}
}

// Register binds a processor to its request type, replacing any prior one.
func (r *ProcessorRegistry) Register(processor Processor) {
	r.processors[processor.Type()] = processor
}

// Get returns the processor for the request type, or nil when none is
// registered.
func (r *ProcessorRegistry) Get(requestType RequestType) Processor {
	return r.processors[requestType]
}

// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"sync"

	"todo/internal/positional"
	"todo/internal/service"
)

// Call records one gateway invocation.
type Call struct {
	Method     string
	OwnerID    string
	DocumentID string
	Fields     map[string]string
	Field      string
}

// FakeGateway is an in-memory implementation of service.Gateway for testing.
type FakeGateway struct {
	mu    sync.Mutex
	docs  map[string]map[string]any // documentID -> fields
	calls []Call

	// Error injection for testing
	GetDocumentErr    error
	SetFieldsErr      error
	DeleteFieldErr    error
	CreateDocumentErr error
	SetFieldErrs      map[string]error // field name -> error for any SetFields touching it
	DeleteFieldErrs   map[string]error // field name -> error
}

// NewFakeGateway creates an empty FakeGateway.
func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		docs:            make(map[string]map[string]any),
		SetFieldErrs:    make(map[string]error),
		DeleteFieldErrs: make(map[string]error),
	}
}

// PutDocument stores a document for ownerID, replacing any existing one.
func (f *FakeGateway) PutDocument(ownerID string, fields map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc := make(map[string]any, len(fields))
	for k, v := range fields {
		doc[k] = v
	}
	f.docs[service.DocumentID(ownerID)] = doc
}

// PutTasks stores a document holding texts as task1..taskN.
func (f *FakeGateway) PutTasks(ownerID string, texts ...string) {
	fields := make(map[string]any, len(texts))
	for i, text := range texts {
		fields[positional.Key(i+1)] = text
	}
	f.PutDocument(ownerID, fields)
}

// Fields returns a copy of the owner's document, or nil if it does not exist.
func (f *FakeGateway) Fields(ownerID string) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[service.DocumentID(ownerID)]
	if !ok {
		return nil
	}
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}

// TaskFields returns only the positional string fields of the owner's document.
func (f *FakeGateway) TaskFields(ownerID string) map[string]string {
	out := make(map[string]string)
	for k, v := range f.Fields(ownerID) {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if _, ok := positional.ParseKey(k); ok {
			out[k] = s
		}
	}
	return out
}

// Calls returns the recorded invocations in order.
func (f *FakeGateway) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// WriteCalls returns the recorded SetFields, DeleteField and CreateDocument calls.
func (f *FakeGateway) WriteCalls() []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.Method != "GetDocument" {
			out = append(out, c)
		}
	}
	return out
}

// ResetCalls clears the call log.
func (f *FakeGateway) ResetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

// GetDocument implements service.Gateway.
func (f *FakeGateway) GetDocument(ctx context.Context, ownerID string) (service.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Method: "GetDocument", OwnerID: ownerID})

	if f.GetDocumentErr != nil {
		return service.Document{}, f.GetDocumentErr
	}
	id := service.DocumentID(ownerID)
	doc, ok := f.docs[id]
	if !ok {
		return service.Document{}, service.ErrNotFound
	}
	fields := make(map[string]any, len(doc))
	for k, v := range doc {
		fields[k] = v
	}
	return service.Document{ID: id, Fields: fields}, nil
}

// SetFields implements service.Gateway.
func (f *FakeGateway) SetFields(ctx context.Context, ownerID, documentID string, fields map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Method: "SetFields", OwnerID: ownerID, DocumentID: documentID, Fields: copyFields(fields)})

	if f.SetFieldsErr != nil {
		return f.SetFieldsErr
	}
	for name := range fields {
		if err := f.SetFieldErrs[name]; err != nil {
			return err
		}
	}
	doc, ok := f.docs[documentID]
	if !ok {
		return service.ErrNotFound
	}
	for k, v := range fields {
		doc[k] = v
	}
	return nil
}

// DeleteField implements service.Gateway.
func (f *FakeGateway) DeleteField(ctx context.Context, ownerID, documentID, field string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Method: "DeleteField", OwnerID: ownerID, DocumentID: documentID, Field: field})

	if f.DeleteFieldErr != nil {
		return f.DeleteFieldErr
	}
	if err := f.DeleteFieldErrs[field]; err != nil {
		return err
	}
	doc, ok := f.docs[documentID]
	if !ok {
		return service.ErrNotFound
	}
	delete(doc, field)
	return nil
}

// CreateDocument implements service.Gateway.
func (f *FakeGateway) CreateDocument(ctx context.Context, ownerID, documentID string, fields map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Method: "CreateDocument", OwnerID: ownerID, DocumentID: documentID, Fields: copyFields(fields)})

	if f.CreateDocumentErr != nil {
		return f.CreateDocumentErr
	}
	if _, ok := f.docs[documentID]; ok {
		return service.ErrAlreadyExists
	}
	doc := make(map[string]any, len(fields))
	for k, v := range fields {
		doc[k] = v
	}
	f.docs[documentID] = doc
	return nil
}

func copyFields(fields map[string]string) map[string]string {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}

// Package storage contains an in-memory document store that mirrors the
// repository's update-sink and fetch semantics. It backs tests that need an
// observable sink without Postgres.
package storage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dharsanguruparan/docmill/internal/model"
)

// MemoryStore guards a map of documents with an RWMutex.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[uuid.UUID]*model.Document
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[uuid.UUID]*model.Document)}
}

// Save inserts or replaces a document, creating its metadata row when absent.
func (m *MemoryStore) Save(doc *model.Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now
	if doc.Metadata == nil {
		doc.Metadata = &model.DocumentMetadata{DocumentID: doc.ID, UpdatedAt: now}
	}
	m.docs[doc.ID] = doc
}

// UpdateExtraction overwrites the metadata text and summary in place,
// last-write-wins. Returns false when the document or its metadata is gone.
func (m *MemoryStore) UpdateExtraction(_ context.Context, id uuid.UUID, ocrText, summary string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok || doc.Metadata == nil {
		return false, nil
	}
	doc.Metadata.OcrText = ocrText
	doc.Metadata.Summary = summary
	doc.Metadata.UpdatedAt = time.Now().UTC()
	return true, nil
}

// GetSearchDocument flattens a stored document the way the repository does.
func (m *MemoryStore) GetSearchDocument(_ context.Context, id uuid.UUID) (*model.SearchDocument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, nil
	}
	out := &model.SearchDocument{
		ID:       doc.ID,
		FileName: doc.FileName,
		Tags:     append([]string{}, doc.Tags...),
		Notes:    append([]string{}, doc.Notes...),
	}
	if doc.Metadata != nil {
		out.OcrText = doc.Metadata.OcrText
		out.Summary = doc.Metadata.Summary
	}
	return out, nil
}

// Get returns the stored document, or nil when absent.
func (m *MemoryStore) Get(id uuid.UUID) *model.Document {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.docs[id]
}

// Delete removes a document and its metadata.
func (m *MemoryStore) Delete(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, id)
}

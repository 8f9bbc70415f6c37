// Package model contains the document structs shared across packages.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Document is the canonical record for an uploaded file. The raw bytes live
// in object storage under StoragePath; an empty StoragePath means only the
// metadata record was created and there is nothing to process.
type Document struct {
	ID          uuid.UUID         `json:"id"`
	FileName    string            `json:"fileName"`
	StoragePath string            `json:"storagePath,omitempty"`
	Tags        []string          `json:"tags"`
	Notes       []string          `json:"notes"`
	Metadata    *DocumentMetadata `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// DocumentMetadata holds the pipeline's output for one document. Exactly one
// metadata row exists per document and reprocessing overwrites it in place.
type DocumentMetadata struct {
	DocumentID uuid.UUID `json:"documentId"`
	OcrText    string    `json:"ocrText"`
	Summary    string    `json:"summary"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// SearchDocument is the flattened representation pushed into the search
// index once a document has been enriched with text and summary.
type SearchDocument struct {
	ID       uuid.UUID `json:"id"`
	FileName string    `json:"fileName"`
	Tags     []string  `json:"tags"`
	Notes    []string  `json:"notes"`
	OcrText  string    `json:"ocrText"`
	Summary  string    `json:"summary"`
}

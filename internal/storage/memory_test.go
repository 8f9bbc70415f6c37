package storage

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharsanguruparan/docmill/internal/model"
)

func TestUpdateExtractionIsIdempotent(t *testing.T) {
	store := NewMemoryStore()
	id := uuid.New()
	store.Save(&model.Document{ID: id, FileName: "a.pdf"})

	ok, err := store.UpdateExtraction(context.Background(), id, "text", "summary")
	require.NoError(t, err)
	require.True(t, ok)
	first := *store.Get(id).Metadata

	ok, err = store.UpdateExtraction(context.Background(), id, "text", "summary")
	require.NoError(t, err)
	require.True(t, ok)
	second := *store.Get(id).Metadata

	assert.Equal(t, first.OcrText, second.OcrText)
	assert.Equal(t, first.Summary, second.Summary)
}

func TestUpdateExtractionOverwritesInPlace(t *testing.T) {
	store := NewMemoryStore()
	id := uuid.New()
	store.Save(&model.Document{ID: id, FileName: "a.pdf"})

	_, err := store.UpdateExtraction(context.Background(), id, "old text", "old summary")
	require.NoError(t, err)
	_, err = store.UpdateExtraction(context.Background(), id, "new text", "new summary")
	require.NoError(t, err)

	meta := store.Get(id).Metadata
	assert.Equal(t, "new text", meta.OcrText)
	assert.Equal(t, "new summary", meta.Summary)
}

func TestUpdateExtractionMissingDocument(t *testing.T) {
	store := NewMemoryStore()
	ok, err := store.UpdateExtraction(context.Background(), uuid.New(), "text", "summary")
	require.NoError(t, err)
	assert.False(t, ok, "missing document is a normal branch, not an error")
}

func TestGetSearchDocumentFlattensMetadata(t *testing.T) {
	store := NewMemoryStore()
	id := uuid.New()
	store.Save(&model.Document{
		ID:       id,
		FileName: "report.pdf",
		Tags:     []string{"finance", "q3"},
		Notes:    []string{"reviewed"},
	})
	_, err := store.UpdateExtraction(context.Background(), id, "body", "short")
	require.NoError(t, err)

	doc, err := store.GetSearchDocument(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "report.pdf", doc.FileName)
	assert.Equal(t, []string{"finance", "q3"}, doc.Tags)
	assert.Equal(t, []string{"reviewed"}, doc.Notes)
	assert.Equal(t, "body", doc.OcrText)
	assert.Equal(t, "short", doc.Summary)

	missing, err := store.GetSearchDocument(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

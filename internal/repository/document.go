package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dharsanguruparan/docmill/internal/model"
)

// DocumentRepository wraps all SQL used by the worker.
type DocumentRepository struct {
	pool *pgxpool.Pool
}

// NewDocumentRepository constructs a repository.
func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{pool: pool}
}

// Create inserts a document together with its empty metadata row. The
// metadata row is created up front so the pipeline only ever updates it.
func (r *DocumentRepository) Create(ctx context.Context, doc *model.Document) error {
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO documents (id, file_name, storage_path, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5)
	`, doc.ID, doc.FileName, doc.StoragePath, doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO document_metadata (document_id, ocr_text, summary, updated_at)
		VALUES ($1,'','',$2)
	`, doc.ID, now)
	if err != nil {
		return fmt.Errorf("insert metadata: %w", err)
	}
	for _, tag := range doc.Tags {
		if _, err := tx.Exec(ctx, `
			INSERT INTO document_tags (document_id, tag) VALUES ($1,$2) ON CONFLICT DO NOTHING
		`, doc.ID, tag); err != nil {
			return fmt.Errorf("insert tag: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// UpdateExtraction writes the extracted text and summary onto the document's
// metadata row in a single statement, so both fields and the timestamp land
// together. It returns false when the document or its metadata row no longer
// exists; that is an expected condition, not an error.
func (r *DocumentRepository) UpdateExtraction(ctx context.Context, id uuid.UUID, ocrText, summary string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE document_metadata
		SET ocr_text=$1, summary=$2, updated_at=$3
		WHERE document_id=$4
	`, ocrText, summary, time.Now().UTC(), id)
	if err != nil {
		return false, fmt.Errorf("update metadata: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// GetSearchDocument materializes the full document representation pushed into
// the search index, including tags and notes. Returns (nil, nil) when the
// document has been deleted in the meantime.
func (r *DocumentRepository) GetSearchDocument(ctx context.Context, id uuid.UUID) (*model.SearchDocument, error) {
	doc := &model.SearchDocument{ID: id, Tags: []string{}, Notes: []string{}}
	row := r.pool.QueryRow(ctx, `
		SELECT d.file_name, COALESCE(m.ocr_text,''), COALESCE(m.summary,'')
		FROM documents d
		LEFT JOIN document_metadata m ON m.document_id = d.id
		WHERE d.id=$1
	`, id)
	if err := row.Scan(&doc.FileName, &doc.OcrText, &doc.Summary); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select document: %w", err)
	}

	rows, err := r.pool.Query(ctx, `SELECT tag FROM document_tags WHERE document_id=$1 ORDER BY tag`, id)
	if err != nil {
		return nil, fmt.Errorf("select tags: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		doc.Tags = append(doc.Tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tags: %w", err)
	}

	noteRows, err := r.pool.Query(ctx, `SELECT note FROM document_notes WHERE document_id=$1 ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("select notes: %w", err)
	}
	defer noteRows.Close()
	for noteRows.Next() {
		var note string
		if err := noteRows.Scan(&note); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		doc.Notes = append(doc.Notes, note)
	}
	if err := noteRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notes: %w", err)
	}
	return doc, nil
}

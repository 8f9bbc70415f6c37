// Package worker consumes upload events and runs the document-processing
// pipeline: download, extract, summarize, persist, index.
package worker

import (
	"context"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dharsanguruparan/docmill/internal/model"
	"github.com/dharsanguruparan/docmill/internal/queue"
)

// BlobStore fetches raw file bytes by storage path.
type BlobStore interface {
	Download(ctx context.Context, objectPath string) ([]byte, error)
}

// Extractor turns file bytes into plain text.
type Extractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

// Summarizer produces a bounded-length summary of extracted text.
type Summarizer interface {
	Summarize(ctx context.Context, text string, maxLength int) (string, error)
}

// UpdateSink persists extraction results. The boolean is false when the
// document or its metadata row no longer exists.
type UpdateSink interface {
	UpdateExtraction(ctx context.Context, id uuid.UUID, ocrText, summary string) (bool, error)
}

// DocumentFetcher materializes the indexable document representation.
// A (nil, nil) result means the document disappeared.
type DocumentFetcher interface {
	GetSearchDocument(ctx context.Context, id uuid.UUID) (*model.SearchDocument, error)
}

// Indexer pushes a document into the search index.
type Indexer interface {
	Index(ctx context.Context, doc *model.SearchDocument) error
}

// SummarySource records which branch produced a summary.
type SummarySource int

const (
	// SourceModel means the summary came from the AI call.
	SourceModel SummarySource = iota
	// SourceFallback means the AI call failed and the summary is a local
	// truncation of the extracted text.
	SourceFallback
)

// Summary is the two-branch summarization result. A summary is always
// assigned once extraction succeeds.
type Summary struct {
	Text   string
	Source SummarySource
}

// Pipeline holds the per-message collaborators explicitly, instead of
// resolving them from an ambient container, and orchestrates the stages for
// one upload event.
type Pipeline struct {
	blobs      BlobStore
	extractor  Extractor
	summarizer Summarizer
	sink       UpdateSink
	docs       DocumentFetcher
	index      Indexer

	maxSummaryLength int
	maxPromptLength  int
	log              zerolog.Logger
}

// PipelineOptions bundles the collaborators and limits for NewPipeline.
type PipelineOptions struct {
	Blobs            BlobStore
	Extractor        Extractor
	Summarizer       Summarizer
	Sink             UpdateSink
	Docs             DocumentFetcher
	Index            Indexer
	MaxSummaryLength int
	MaxPromptLength  int
}

// NewPipeline builds the orchestrator.
func NewPipeline(opts PipelineOptions, log zerolog.Logger) *Pipeline {
	if opts.MaxSummaryLength <= 0 {
		opts.MaxSummaryLength = 200
	}
	if opts.MaxPromptLength <= 0 {
		opts.MaxPromptLength = 10000
	}
	return &Pipeline{
		blobs:            opts.Blobs,
		extractor:        opts.Extractor,
		summarizer:       opts.Summarizer,
		sink:             opts.Sink,
		docs:             opts.Docs,
		index:            opts.Index,
		maxSummaryLength: opts.MaxSummaryLength,
		maxPromptLength:  opts.MaxPromptLength,
		log:              log.With().Str("component", "pipeline").Logger(),
	}
}

// Handle runs the pipeline for one upload event. Every stage failure is
// contained here: the function logs and returns, so the transport layer
// always acknowledges the message. Effects of completed stages stand even
// when a later stage fails.
func (p *Pipeline) Handle(ctx context.Context, event queue.UploadEvent) {
	log := p.log.With().
		Stringer("documentId", event.DocumentID).
		Str("fileName", event.FileName).
		Logger()
	log.Info().Time("uploadedAt", event.UploadedAt).Msg("processing upload event")

	if event.StoragePath == "" {
		log.Warn().Msg("storage path is empty, nothing to process")
		return
	}

	data, err := p.blobs.Download(ctx, event.StoragePath)
	if err != nil {
		log.Error().Err(err).Str("storagePath", event.StoragePath).Msg("download failed")
		return
	}

	text, err := p.extractor.Extract(ctx, data)
	if err != nil {
		log.Error().Err(err).Msg("text extraction failed")
		return
	}
	log.Info().Int("chars", len(text)).Msg("text extracted")

	summary := p.summarize(ctx, log, text)

	ok, err := p.sink.UpdateExtraction(ctx, event.DocumentID, text, summary.Text)
	if err != nil {
		log.Error().Err(err).Msg("metadata update failed")
		return
	}
	if !ok {
		log.Warn().Msg("document or metadata no longer exists, skipping index")
		return
	}
	log.Info().Msg("metadata updated with text and summary")

	doc, err := p.docs.GetSearchDocument(ctx, event.DocumentID)
	if err != nil {
		log.Error().Err(err).Msg("fetching document for indexing failed")
		return
	}
	if doc == nil {
		log.Warn().Msg("document vanished before indexing")
		return
	}
	// Indexing is best effort; the metadata update above stands regardless.
	if err := p.index.Index(ctx, doc); err != nil {
		log.Error().Err(err).Msg("indexing failed")
		return
	}
	log.Info().Msg("document processed and indexed")
}

// summarize never fails: when the AI call errors out after its retries, the
// summary degrades to a local truncation of the extracted text.
func (p *Pipeline) summarize(ctx context.Context, log zerolog.Logger, text string) Summary {
	prompt := cutAtRune(text, p.maxPromptLength)
	s, err := p.summarizer.Summarize(ctx, prompt, p.maxSummaryLength)
	if err != nil {
		log.Error().Err(err).Msg("summarization failed, using truncated text as fallback")
		return Summary{Text: truncate(text, p.maxSummaryLength), Source: SourceFallback}
	}
	return Summary{Text: s, Source: SourceModel}
}

func truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	return cutAtRune(text, max) + "..."
}

// cutAtRune cuts text to at most max bytes without splitting a rune, so the
// result stays valid UTF-8 for Postgres TEXT columns.
func cutAtRune(text string, max int) string {
	if len(text) <= max {
		return text
	}
	for max > 0 && !utf8.RuneStart(text[max]) {
		max--
	}
	return text[:max]
}

// Package extract turns raw PDF bytes into plain text. It tries the embedded
// text layer first and falls back to rasterize-then-OCR for scanned
// documents.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	pdf "github.com/ledongthuc/pdf"
	"github.com/rs/zerolog"
)

var (
	// ErrNoContent is returned for an empty input stream.
	ErrNoContent = errors.New("extract: no content")
	// ErrUnreadable is returned for bytes that are not a parseable PDF.
	// It is distinct from a successful OCR run that found no text.
	ErrUnreadable = errors.New("extract: unreadable document")
)

// PageBreak separates per-page text segments in the extractor output. The
// same marker is used for embedded text and for OCR so downstream consumers
// see one format.
const PageBreak = "\n\n--- Page Break ---\n\n"

var pdfHeader = []byte("%PDF")

// Rasterizer renders each page of a PDF to an image. Implementations are
// expected to be CPU/memory bound.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdfData []byte) ([][]byte, error)
}

// OCR recognizes text in a single page image.
type OCR interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

// Service implements the two-phase extraction strategy.
type Service struct {
	raster      Rasterizer
	ocr         OCR
	minEmbedded int
	log         zerolog.Logger

	// embedded is the phase-A implementation; swapped in tests.
	embedded func(data []byte) (string, error)
}

// NewService builds an extractor. minEmbedded is the smallest embedded-text
// length that short-circuits the OCR fallback.
func NewService(raster Rasterizer, ocr OCR, minEmbedded int, log zerolog.Logger) *Service {
	return &Service{
		raster:      raster,
		ocr:         ocr,
		minEmbedded: minEmbedded,
		log:         log.With().Str("component", "extract").Logger(),
		embedded:    extractEmbedded,
	}
}

// Extract returns the document's text. Text-native PDFs are served from the
// embedded text layer; image-only PDFs go through the OCR fallback.
func (s *Service) Extract(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrNoContent
	}
	if !bytes.HasPrefix(data, pdfHeader) {
		return "", ErrUnreadable
	}

	direct, err := s.embedded(data)
	// Whitespace-only text never counts; otherwise the untrimmed length
	// decides whether the embedded layer is usable.
	if err == nil && strings.TrimSpace(direct) != "" && len(direct) > s.minEmbedded {
		s.log.Info().Int("chars", len(direct)).Msg("extracted embedded text")
		return direct, nil
	}
	if err != nil {
		s.log.Debug().Err(err).Msg("embedded text extraction failed, falling back to OCR")
	} else {
		s.log.Info().Msg("no usable embedded text, falling back to OCR")
	}

	return s.extractWithOCR(ctx, data)
}

func (s *Service) extractWithOCR(ctx context.Context, data []byte) (string, error) {
	images, err := s.raster.Rasterize(ctx, data)
	if err != nil {
		return "", fmt.Errorf("rasterize: %w", err)
	}
	if len(images) == 0 {
		s.log.Warn().Msg("no page images produced")
		return "", nil
	}

	pages := make([]string, 0, len(images))
	for i, img := range images {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := s.ocr.Recognize(ctx, img)
		if err != nil {
			s.log.Warn().Err(err).Int("page", i+1).Msg("ocr failed for page")
			continue
		}
		pages = append(pages, text)
	}
	combined := strings.Join(pages, PageBreak)
	s.log.Info().Int("pages", len(images)).Int("chars", len(combined)).Msg("ocr extraction completed")
	return combined, nil
}

// extractEmbedded pulls the embedded text layer page by page. Whitespace-only
// pages are dropped before joining.
func extractEmbedded(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parse pdf: %w", err)
	}
	var pages []string
	total := reader.NumPage()
	for n := 1; n <= total; n++ {
		page := reader.Page(n)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", n, err)
		}
		if strings.TrimSpace(content) != "" {
			pages = append(pages, content)
		}
	}
	return strings.Join(pages, PageBreak), nil
}

package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRasterizer struct {
	pages [][]byte
	err   error
	calls int
}

func (f *fakeRasterizer) Rasterize(_ context.Context, _ []byte) ([][]byte, error) {
	f.calls++
	return f.pages, f.err
}

type fakeOCR struct {
	texts map[string]string
	err   error
	calls int
}

func (f *fakeOCR) Recognize(_ context.Context, image []byte) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.texts[string(image)], nil
}

// pdfBytes is not a parseable PDF, but it carries the header so the service
// reaches the stubbed phase-A implementation.
var pdfBytes = []byte("%PDF-1.7 stub")

func newTestService(raster *fakeRasterizer, ocr *fakeOCR, embedded func([]byte) (string, error)) *Service {
	s := NewService(raster, ocr, 50, zerolog.Nop())
	if embedded != nil {
		s.embedded = embedded
	}
	return s
}

func TestExtractEmptyInput(t *testing.T) {
	s := newTestService(&fakeRasterizer{}, &fakeOCR{}, nil)
	_, err := s.Extract(context.Background(), nil)
	require.ErrorIs(t, err, ErrNoContent)
}

func TestExtractUnreadableBytesFailFast(t *testing.T) {
	raster := &fakeRasterizer{}
	s := newTestService(raster, &fakeOCR{}, nil)
	_, err := s.Extract(context.Background(), []byte("definitely not a pdf"))
	require.ErrorIs(t, err, ErrUnreadable)
	assert.Zero(t, raster.calls, "OCR fallback must not run for unreadable input")
}

func TestExtractEmbeddedTextShortCircuitsOCR(t *testing.T) {
	raster := &fakeRasterizer{}
	ocr := &fakeOCR{}
	long := strings.Repeat("embedded text ", 10)
	s := newTestService(raster, ocr, func([]byte) (string, error) { return long, nil })

	got, err := s.Extract(context.Background(), pdfBytes)
	require.NoError(t, err)
	assert.Equal(t, long, got)
	assert.Zero(t, raster.calls)
	assert.Zero(t, ocr.calls)
}

func TestExtractShortEmbeddedTextTriggersOCR(t *testing.T) {
	raster := &fakeRasterizer{pages: [][]byte{[]byte("p1"), []byte("p2")}}
	ocr := &fakeOCR{texts: map[string]string{"p1": "first page", "p2": "second page"}}
	s := newTestService(raster, ocr, func([]byte) (string, error) { return "too short", nil })

	got, err := s.Extract(context.Background(), pdfBytes)
	require.NoError(t, err)
	assert.Equal(t, 1, raster.calls)
	assert.Equal(t, 2, ocr.calls)
	assert.Equal(t, "first page"+PageBreak+"second page", got)
}

func TestExtractEmbeddedFailureFallsBackToOCR(t *testing.T) {
	raster := &fakeRasterizer{pages: [][]byte{[]byte("p1")}}
	ocr := &fakeOCR{texts: map[string]string{"p1": "ocr result"}}
	s := newTestService(raster, ocr, func([]byte) (string, error) {
		return "", fmt.Errorf("parse pdf: broken xref")
	})

	got, err := s.Extract(context.Background(), pdfBytes)
	require.NoError(t, err)
	assert.Equal(t, "ocr result", got)
}

func TestExtractThresholdCountsUntrimmedLength(t *testing.T) {
	raster := &fakeRasterizer{}
	ocr := &fakeOCR{}
	// Trimmed this is well under the threshold, but the raw length is over
	// it and the text is not whitespace-only, so OCR must not run.
	padded := strings.Repeat(" ", 30) + "short words" + strings.Repeat(" ", 30)
	s := newTestService(raster, ocr, func([]byte) (string, error) { return padded, nil })

	got, err := s.Extract(context.Background(), pdfBytes)
	require.NoError(t, err)
	assert.Equal(t, padded, got)
	assert.Zero(t, raster.calls)
	assert.Zero(t, ocr.calls)
}

func TestExtractWhitespaceEmbeddedTextTriggersOCR(t *testing.T) {
	raster := &fakeRasterizer{pages: [][]byte{[]byte("p1")}}
	ocr := &fakeOCR{texts: map[string]string{"p1": "scanned"}}
	s := newTestService(raster, ocr, func([]byte) (string, error) {
		return strings.Repeat(" \n", 60), nil
	})

	got, err := s.Extract(context.Background(), pdfBytes)
	require.NoError(t, err)
	assert.Equal(t, "scanned", got)
}

func TestExtractRasterizeErrorSurfaces(t *testing.T) {
	raster := &fakeRasterizer{err: errors.New("mupdf: cannot open")}
	s := newTestService(raster, &fakeOCR{}, func([]byte) (string, error) { return "", nil })

	_, err := s.Extract(context.Background(), pdfBytes)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rasterize")
}

func TestExtractOCRFoundNothingIsNotAnError(t *testing.T) {
	raster := &fakeRasterizer{pages: [][]byte{[]byte("p1")}}
	ocr := &fakeOCR{texts: map[string]string{}}
	s := newTestService(raster, ocr, func([]byte) (string, error) { return "", nil })

	got, err := s.Extract(context.Background(), pdfBytes)
	require.NoError(t, err)
	assert.Empty(t, got)
}

package extract

import (
	"bytes"
	"context"
	"fmt"
	"image/png"

	"github.com/gen2brain/go-fitz"
	"github.com/rs/zerolog"
)

// FitzRasterizer renders PDF pages to PNG images with go-fitz (MuPDF).
type FitzRasterizer struct {
	dpi int
	log zerolog.Logger
}

// NewFitzRasterizer builds a rasterizer rendering at the given DPI.
func NewFitzRasterizer(dpi int, log zerolog.Logger) *FitzRasterizer {
	return &FitzRasterizer{
		dpi: dpi,
		log: log.With().Str("component", "raster").Logger(),
	}
}

// Rasterize renders each page in order. Rendering happens fully in memory;
// nothing is written to disk.
func (r *FitzRasterizer) Rasterize(ctx context.Context, pdfData []byte) ([][]byte, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	total := doc.NumPage()
	r.log.Debug().Int("pages", total).Int("dpi", r.dpi).Msg("rasterizing pdf")

	images := make([][]byte, 0, total)
	for n := 0; n < total; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := doc.ImageDPI(n, float64(r.dpi))
		if err != nil {
			return nil, fmt.Errorf("render page %d: %w", n+1, err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode page %d: %w", n+1, err)
		}
		images = append(images, buf.Bytes())
	}
	return images, nil
}

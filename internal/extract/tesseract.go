package extract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Tesseract runs the tesseract binary on page images. Keeping the engine
// behind the OCR interface means the subprocess is an implementation detail
// the pipeline never sees.
type Tesseract struct {
	language string
	log      zerolog.Logger
}

// NewTesseract builds an OCR runner for the given language code.
func NewTesseract(language string, log zerolog.Logger) *Tesseract {
	return &Tesseract{
		language: language,
		log:      log.With().Str("component", "ocr").Logger(),
	}
}

// Recognize writes the image into a unique temp directory, invokes
// tesseract, and reads the produced text. The directory is removed on every
// path out of the function.
func (t *Tesseract) Recognize(ctx context.Context, image []byte) (string, error) {
	dir, err := os.MkdirTemp("", "docmill-ocr-*")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			t.log.Warn().Err(err).Str("dir", dir).Msg("failed to clean up ocr temp dir")
		}
	}()

	imagePath := filepath.Join(dir, "page.png")
	if err := os.WriteFile(imagePath, image, 0o600); err != nil {
		return "", fmt.Errorf("write page image: %w", err)
	}

	outBase := filepath.Join(dir, "page")
	cmd := exec.CommandContext(ctx, "tesseract", imagePath, outBase, "-l", t.language)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	text, err := os.ReadFile(outBase + ".txt")
	if err != nil {
		return "", fmt.Errorf("read tesseract output: %w", err)
	}
	return string(text), nil
}

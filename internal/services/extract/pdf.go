package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/ternarybob/arbor"

	"github.com/sahemlabs/maktaba/internal/common"
	"github.com/sahemlabs/maktaba/internal/interfaces"
	"github.com/sahemlabs/maktaba/internal/models"
)

// PDFExtractor implements direct text extraction using pdfcpu. Two
// strategies run over the decoded content streams: a structured pass
// that follows text-showing operators, and a tolerant pass that sweeps
// every string operand for documents with mangled operator structure.
type PDFExtractor struct {
	config  *common.ExtractionConfig
	logger  arbor.ILogger
	tempDir string
}

var _ interfaces.TextExtractor = (*PDFExtractor)(nil)

// NewPDFExtractor creates a PDF text extractor.
func NewPDFExtractor(config *common.ExtractionConfig, logger arbor.ILogger) *PDFExtractor {
	tempDir := filepath.Join(os.TempDir(), "maktaba-pdf")
	os.MkdirAll(tempDir, 0755)

	return &PDFExtractor{
		config:  config,
		logger:  logger,
		tempDir: tempDir,
	}
}

// Extract runs both strategies and returns the better result. A valid
// PDF with no text layer yields empty text and no error.
func (e *PDFExtractor) Extract(ctx context.Context, data []byte) (*interfaces.ExtractionOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	streams, err := e.contentStreams(data)
	if err != nil {
		return nil, err
	}

	var structured, swept strings.Builder
	for _, stream := range streams {
		if s := parseTextOperators(stream); s != "" {
			structured.WriteString(s)
			structured.WriteString("\n")
		}
		if s := sweepStringOperands(stream); s != "" {
			swept.WriteString(s)
			swept.WriteString("\n")
		}
	}

	output := &interfaces.ExtractionOutput{
		Text:   strings.TrimSpace(structured.String()),
		Method: models.MethodStructured,
	}

	// The tolerant sweep wins only when the structured pass came back
	// trivial or garbled and the sweep found usable text.
	sweptText := strings.TrimSpace(swept.String())
	if e.isTrivial(output.Text) && len(sweptText) > len(output.Text) && !e.isTrivial(sweptText) {
		output.Text = sweptText
		output.Method = models.MethodFallback
	}

	return output, nil
}

// PageCount reads the page count from the document catalog.
func (e *PDFExtractor) PageCount(ctx context.Context, data []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	tempFile, cleanup, err := e.writeTemp(data, "count")
	if err != nil {
		return 0, err
	}
	defer cleanup()

	pdfCtx, err := api.ReadContextFile(tempFile)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	return pdfCtx.PageCount, nil
}

// PageImages extracts embedded page images for recognition. Scanned
// books carry one full-page image per page; documents without images
// return an empty slice.
func (e *PDFExtractor) PageImages(ctx context.Context, data []byte) ([][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tempFile, cleanup, err := e.writeTemp(data, "images")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	outDir := filepath.Join(e.tempDir, "img_"+uuid.NewString())
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create image output dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	conf := model.NewDefaultConfiguration()
	if err := api.ExtractImagesFile(tempFile, outDir, nil, conf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read image output dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	// pdfcpu names extracted images by page number; lexical order keeps
	// pages in reading order for the common zero-padded case.
	sort.Strings(names)

	images := make([][]byte, 0, len(names))
	for _, name := range names {
		img, err := os.ReadFile(filepath.Join(outDir, name))
		if err != nil {
			e.logger.Warn().Err(err).Str("file", name).Msg("Failed to read extracted page image")
			continue
		}
		images = append(images, img)
	}
	return images, nil
}

// contentStreams extracts the decoded per-page content streams.
func (e *PDFExtractor) contentStreams(data []byte) ([][]byte, error) {
	tempFile, cleanup, err := e.writeTemp(data, "extract")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	outDir := filepath.Join(e.tempDir, "content_"+uuid.NewString())
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create content output dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	conf := model.NewDefaultConfiguration()
	if err := api.ExtractContentFile(tempFile, outDir, nil, conf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read content output dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	streams := make([][]byte, 0, len(names))
	for _, name := range names {
		content, err := os.ReadFile(filepath.Join(outDir, name))
		if err != nil {
			e.logger.Warn().Err(err).Str("file", name).Msg("Failed to read content stream")
			continue
		}
		streams = append(streams, content)
	}
	return streams, nil
}

// isTrivial reports whether text is too short or too letter-poor to be a
// usable extraction result.
func (e *PDFExtractor) isTrivial(text string) bool {
	if len(text) < 32 {
		return true
	}
	return letterRatio(text) < e.config.MinLetterRatio
}

func (e *PDFExtractor) writeTemp(data []byte, prefix string) (string, func(), error) {
	tempFile := filepath.Join(e.tempDir, fmt.Sprintf("%s_%s.pdf", prefix, uuid.NewString()))
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return "", nil, fmt.Errorf("failed to write temp PDF file: %w", err)
	}
	return tempFile, func() { os.Remove(tempFile) }, nil
}

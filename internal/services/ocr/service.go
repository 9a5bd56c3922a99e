package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/sahemlabs/maktaba/internal/common"
	"github.com/sahemlabs/maktaba/internal/interfaces"
)

// Service recognizes text on page images by shelling out to tesseract.
// Each page is preprocessed, then recognized twice with different page
// segmentation modes; the more confident pass wins. Mode 6 assumes a
// uniform block of text and suits book pages, mode 3 lets tesseract
// segment freely and suits mixed layouts.
type Service struct {
	config  *common.OCRConfig
	logger  arbor.ILogger
	tempDir string
}

var _ interfaces.Recognizer = (*Service)(nil)

var segmentationModes = []string{"6", "3"}

// NewService creates the recognizer.
func NewService(config *common.OCRConfig, logger arbor.ILogger) *Service {
	tempDir := filepath.Join(os.TempDir(), "maktaba-ocr")
	os.MkdirAll(tempDir, 0755)

	return &Service{
		config:  config,
		logger:  logger,
		tempDir: tempDir,
	}
}

// Available reports whether the tesseract binary can be resolved.
func (s *Service) Available() bool {
	_, err := exec.LookPath(s.config.TesseractPath)
	return err == nil
}

// RecognizePages recognizes each page and aggregates the results. Pages
// that fail to decode or recognize are skipped and flagged as partial;
// one bad scan does not void the rest of the book.
func (s *Service) RecognizePages(ctx context.Context, pages [][]byte) (*interfaces.RecognitionResult, error) {
	if !s.Available() {
		return nil, fmt.Errorf("tesseract binary %q not found", s.config.TesseractPath)
	}

	var (
		text      bytes.Buffer
		confSum   float64
		wordCount int
		partial   bool
	)

	for i, pageData := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := s.recognizePage(ctx, pageData)
		if err != nil {
			s.logger.Warn().Err(err).Int("page", i+1).Msg("Page recognition failed, skipping")
			partial = true
			continue
		}
		if page.Words == 0 {
			continue
		}

		if text.Len() > 0 {
			text.WriteString("\n\n")
		}
		text.WriteString(page.Text)
		confSum += page.Confidence * float64(page.Words)
		wordCount += page.Words
	}

	result := &interfaces.RecognitionResult{
		Text:    text.String(),
		Partial: partial,
	}
	if wordCount > 0 {
		result.Confidence = confSum / float64(wordCount)
	}
	return result, nil
}

// recognizePage preprocesses one page image and returns the better of
// the two segmentation passes.
func (s *Service) recognizePage(ctx context.Context, pageData []byte) (*pageRecognition, error) {
	img, _, err := image.Decode(bytes.NewReader(pageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode page image: %w", err)
	}

	processed := preprocess(img)

	inputPath := filepath.Join(s.tempDir, "page_"+uuid.NewString()+".png")
	f, err := os.Create(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp image: %w", err)
	}
	defer os.Remove(inputPath)

	if err := png.Encode(f, processed); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to encode processed image: %w", err)
	}
	f.Close()

	var best *pageRecognition
	for _, psm := range segmentationModes {
		page, err := s.runTesseract(ctx, inputPath, psm)
		if err != nil {
			s.logger.Debug().Err(err).Str("psm", psm).Msg("Recognition pass failed")
			continue
		}
		if best == nil || page.Confidence > best.Confidence {
			best = page
		}
	}
	if best == nil {
		return nil, fmt.Errorf("all recognition passes failed")
	}
	return best, nil
}

// runTesseract executes one recognition pass and parses its TSV output.
func (s *Service) runTesseract(ctx context.Context, inputPath, psm string) (*pageRecognition, error) {
	runCtx := ctx
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	outBase := filepath.Join(s.tempDir, "out_"+uuid.NewString())
	defer os.Remove(outBase + ".tsv")

	cmd := exec.CommandContext(runCtx, s.config.TesseractPath,
		inputPath, outBase,
		"-l", s.config.Languages,
		"--psm", psm,
		"tsv",
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("tesseract failed: %w (%s)", err, stderr.String())
	}

	data, err := os.ReadFile(outBase + ".tsv")
	if err != nil {
		return nil, fmt.Errorf("failed to read recognition output: %w", err)
	}

	page := parseTSV(string(data))
	return &page, nil
}

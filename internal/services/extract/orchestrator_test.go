package extract

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahemlabs/maktaba/internal/common"
	"github.com/sahemlabs/maktaba/internal/interfaces"
	"github.com/sahemlabs/maktaba/internal/models"
	"github.com/sahemlabs/maktaba/internal/services/normalize"
)

type fakeSource struct {
	data map[string][]byte
}

func (f *fakeSource) Open(ctx context.Context, ref string) ([]byte, error) {
	data, ok := f.data[ref]
	if !ok {
		return nil, ErrSourceUnavailable
	}
	return data, nil
}

type fakeExtractor struct {
	text      string
	method    string
	pageCount int
	images    [][]byte
	imagesErr error

	mu    sync.Mutex
	calls int
}

func (f *fakeExtractor) Extract(ctx context.Context, data []byte) (*interfaces.ExtractionOutput, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	method := f.method
	if method == "" {
		method = models.MethodStructured
	}
	return &interfaces.ExtractionOutput{Text: f.text, Method: method}, nil
}

func (f *fakeExtractor) PageCount(ctx context.Context, data []byte) (int, error) {
	return f.pageCount, nil
}

func (f *fakeExtractor) PageImages(ctx context.Context, data []byte) ([][]byte, error) {
	return f.images, f.imagesErr
}

type fakeRecognizer struct {
	available bool
	text      string
	conf      float64
	partial   bool
	err       error
}

func (f *fakeRecognizer) Available() bool { return f.available }

func (f *fakeRecognizer) RecognizePages(ctx context.Context, pages [][]byte) (*interfaces.RecognitionResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &interfaces.RecognitionResult{Text: f.text, Confidence: f.conf, Partial: f.partial}, nil
}

func newTestService(t *testing.T, extractor *fakeExtractor, recognizer *fakeRecognizer) *Service {
	t.Helper()

	cfg := common.NewDefaultConfig()
	lex, err := normalize.LoadLexicon("")
	require.NoError(t, err)

	source := &fakeSource{data: map[string][]byte{"books/test.pdf": []byte("%PDF-fake")}}
	svc, err := NewService(source, extractor, recognizer, normalize.New(lex, common.GetLogger()), &cfg.Extraction, 2, common.GetLogger())
	require.NoError(t, err)
	t.Cleanup(svc.Shutdown)
	return svc
}

// longText returns readable text with roughly n characters.
func longText(n int) string {
	var b strings.Builder
	for b.Len() < n {
		b.WriteString("the word of the lord endures forever and ever amen ")
	}
	return b.String()
}

func TestExtractNow_SufficientDirectText(t *testing.T) {
	// One page: threshold is max(500, 1*300) = 500.
	extractor := &fakeExtractor{text: longText(600), pageCount: 1}
	recognizer := &fakeRecognizer{available: true, text: longText(5000), conf: 0.9}
	svc := newTestService(t, extractor, recognizer)

	result, err := svc.ExtractNow(context.Background(), models.ExtractionJob{
		DocumentID: "doc_1", SourceRef: "books/test.pdf", PageCount: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, models.ExtractionCompleted, result.Status)
	assert.Equal(t, models.MethodStructured, result.Method)
	assert.Equal(t, 1.0, result.Confidence)
}

func TestExtractNow_ShortTextRoutesToRecognition(t *testing.T) {
	// Ten pages: threshold is max(500, 10*300) = 3000, direct text of
	// ~200 chars is insufficient even though it exceeds nothing else.
	extractor := &fakeExtractor{text: longText(200), pageCount: 10, images: [][]byte{{1}, {2}}}
	recognizer := &fakeRecognizer{available: true, text: longText(4000), conf: 0.8}
	svc := newTestService(t, extractor, recognizer)

	result, err := svc.ExtractNow(context.Background(), models.ExtractionJob{
		DocumentID: "doc_2", SourceRef: "books/test.pdf", PageCount: 10,
	})
	require.NoError(t, err)

	assert.Equal(t, models.ExtractionCompleted, result.Status)
	assert.Equal(t, models.MethodOCR, result.Method)
	assert.InDelta(t, 0.8, result.Confidence, 0.001)
}

func TestExtractNow_LowConfidenceRecognitionNotAdopted(t *testing.T) {
	extractor := &fakeExtractor{text: longText(200), pageCount: 10, images: [][]byte{{1}}}
	// Longer text but under the 0.5 adoption bar.
	recognizer := &fakeRecognizer{available: true, text: longText(4000), conf: 0.3}
	svc := newTestService(t, extractor, recognizer)

	result, err := svc.ExtractNow(context.Background(), models.ExtractionJob{
		DocumentID: "doc_3", SourceRef: "books/test.pdf", PageCount: 10,
	})
	require.NoError(t, err)

	assert.Equal(t, models.ExtractionLowConfidence, result.Status)
	// The longer text is still kept, just flagged.
	assert.Equal(t, models.MethodOCR, result.Method)
}

func TestExtractNow_PartialRecognitionFlagged(t *testing.T) {
	extractor := &fakeExtractor{text: "", pageCount: 5, images: [][]byte{{1}, {2}}}
	recognizer := &fakeRecognizer{available: true, text: longText(2000), conf: 0.9, partial: true}
	svc := newTestService(t, extractor, recognizer)

	result, err := svc.ExtractNow(context.Background(), models.ExtractionJob{
		DocumentID: "doc_4", SourceRef: "books/test.pdf", PageCount: 5,
	})
	require.NoError(t, err)

	assert.Equal(t, models.ExtractionLowConfidence, result.Status)
	assert.True(t, result.Partial)
}

func TestExtractNow_RecognizerUnavailableDegrades(t *testing.T) {
	extractor := &fakeExtractor{text: longText(200), pageCount: 10}
	recognizer := &fakeRecognizer{available: false}
	svc := newTestService(t, extractor, recognizer)

	result, err := svc.ExtractNow(context.Background(), models.ExtractionJob{
		DocumentID: "doc_5", SourceRef: "books/test.pdf", PageCount: 10,
	})
	require.NoError(t, err)

	// Direct text survives as low confidence rather than being lost.
	assert.Equal(t, models.ExtractionLowConfidence, result.Status)
	assert.Equal(t, models.MethodStructured, result.Method)
	assert.NotEmpty(t, result.Text)
}

func TestExtractNow_NoTextAnywhereFails(t *testing.T) {
	extractor := &fakeExtractor{text: "", pageCount: 3, imagesErr: errors.New("no images")}
	recognizer := &fakeRecognizer{available: true}
	svc := newTestService(t, extractor, recognizer)

	result, err := svc.ExtractNow(context.Background(), models.ExtractionJob{
		DocumentID: "doc_6", SourceRef: "books/test.pdf", PageCount: 3,
	})
	require.NoError(t, err)

	assert.Equal(t, models.ExtractionFailed, result.Status)
	assert.Equal(t, models.MethodNone, result.Method)
}

func TestExtractNow_SourceUnavailable(t *testing.T) {
	extractor := &fakeExtractor{}
	recognizer := &fakeRecognizer{available: true}
	svc := newTestService(t, extractor, recognizer)

	result, err := svc.ExtractNow(context.Background(), models.ExtractionJob{
		DocumentID: "doc_7", SourceRef: "books/missing.pdf",
	})
	require.NoError(t, err)

	assert.Equal(t, models.ExtractionFailed, result.Status)
	assert.Contains(t, result.Error, "unavailable")
}

func TestExtractNow_NormalizesResult(t *testing.T) {
	raw := strings.Repeat("الكَنِيسَة القبطية ", 60)
	extractor := &fakeExtractor{text: raw, pageCount: 1}
	recognizer := &fakeRecognizer{available: true}
	svc := newTestService(t, extractor, recognizer)

	result, err := svc.ExtractNow(context.Background(), models.ExtractionJob{
		DocumentID: "doc_8", SourceRef: "books/test.pdf", PageCount: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, models.ExtractionCompleted, result.Status)
	assert.Contains(t, result.Text, "الكنيسه")
	assert.NotContains(t, result.Text, "كَ")
}

func TestThreshold(t *testing.T) {
	cfg := common.NewDefaultConfig()
	svc := &Service{config: &cfg.Extraction}

	tests := []struct {
		name     string
		pages    int
		expected int
	}{
		{"short document uses floor", 1, 500},
		{"floor still wins at zero pages", 0, 500},
		{"long document scales", 10, 3000},
		{"boundary page count", 2, 600},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, svc.threshold(tt.pages))
		})
	}
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	source := NewFileSource(dir)
	ctx := context.Background()

	_, err := source.Open(ctx, "missing.pdf")
	assert.ErrorIs(t, err, ErrSourceUnavailable)

	_, err = source.Open(ctx, "../escape.pdf")
	assert.ErrorIs(t, err, ErrSourceUnavailable)

	_, err = source.Open(ctx, "")
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

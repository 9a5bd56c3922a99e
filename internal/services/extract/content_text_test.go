package extract

import (
	"bytes"
	"context"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahemlabs/maktaba/internal/common"
)

func TestParseTextOperators(t *testing.T) {
	tests := []struct {
		name     string
		stream   string
		expected string
	}{
		{
			name:     "simple Tj",
			stream:   "BT /F1 12 Tf (Hello World) Tj ET",
			expected: "Hello World",
		},
		{
			name:     "TJ array with kerning",
			stream:   "BT [(He)-20(llo)] TJ ET",
			expected: "Hello",
		},
		{
			name:     "line positioning breaks words",
			stream:   "BT (first) Tj 0 -14 Td (second) Tj ET",
			expected: "first\nsecond",
		},
		{
			name:     "escaped parentheses",
			stream:   `BT (a \(quoted\) word) Tj ET`,
			expected: "a (quoted) word",
		},
		{
			name:     "non-text strings ignored",
			stream:   "(orphan string) /Name 12 0 R",
			expected: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseTextOperators([]byte(tt.stream)))
		})
	}
}

func TestSweepStringOperands(t *testing.T) {
	// Operators mangled, strings intact.
	stream := "XX (recovered) YY (text) ZZ"
	assert.Equal(t, "recovered text", sweepStringOperands([]byte(stream)))

	// Hex strings decode as byte pairs.
	assert.Equal(t, "Hi", sweepStringOperands([]byte("<4869>")))
}

func TestLetterRatio(t *testing.T) {
	assert.InDelta(t, 1.0, letterRatio("pure letters"), 0.001)
	assert.InDelta(t, 0.0, letterRatio("123 456 !!!"), 0.001)
	assert.InDelta(t, 0.5, letterRatio("ab12"), 0.001)
	assert.Equal(t, 0.0, letterRatio(""))
}

func TestCleanRecovered(t *testing.T) {
	assert.Equal(t, "a b", cleanRecovered("a \x00\x01  b"))
	assert.Equal(t, "word", cleanRecovered("  word  "))
}

// buildFixturePDF generates a small PDF with a real text layer.
func buildFixturePDF(t *testing.T, lines []string) []byte {
	t.Helper()

	doc := fpdf.New("P", "mm", "A4", "")
	doc.AddPage()
	doc.SetFont("Helvetica", "", 14)
	for _, line := range lines {
		doc.Cell(40, 10, line)
		doc.Ln(12)
	}

	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	return buf.Bytes()
}

func TestPDFExtractor_GeneratedFixture(t *testing.T) {
	cfg := common.NewDefaultConfig()
	extractor := NewPDFExtractor(&cfg.Extraction, common.GetLogger())
	ctx := context.Background()

	data := buildFixturePDF(t, []string{
		"The Feast of the Nativity",
		"A homily on the incarnation of the Word",
	})

	count, err := extractor.PageCount(ctx, data)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	output, err := extractor.Extract(ctx, data)
	require.NoError(t, err)
	assert.Contains(t, output.Text, "Nativity")
	assert.Contains(t, output.Text, "incarnation")
}

func TestPDFExtractor_RejectsGarbage(t *testing.T) {
	cfg := common.NewDefaultConfig()
	extractor := NewPDFExtractor(&cfg.Extraction, common.GetLogger())
	ctx := context.Background()

	_, err := extractor.PageCount(ctx, []byte("not a pdf at all"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = extractor.Extract(ctx, []byte("not a pdf at all"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

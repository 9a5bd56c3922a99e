package ocr

import (
	"strconv"
	"strings"
)

// pageRecognition is one recognizer pass over one page.
type pageRecognition struct {
	Text       string
	Confidence float64 // 0.0-1.0 averaged over confident words
	Words      int
}

// parseTSV reads tesseract's TSV output. Word rows are level 5; the
// confidence column holds -1 for non-word rows and 0-100 for words.
// Only words with positive confidence contribute to the average.
func parseTSV(data string) pageRecognition {
	var (
		text      strings.Builder
		confSum   float64
		confCount int
		lastLine  string
	)

	for _, line := range strings.Split(data, "\n") {
		cols := strings.Split(line, "\t")
		if len(cols) < 12 || cols[0] == "level" {
			continue
		}
		if cols[0] != "5" {
			continue
		}

		word := strings.TrimSpace(cols[11])
		if word == "" {
			continue
		}

		conf, err := strconv.ParseFloat(cols[10], 64)
		if err != nil || conf <= 0 {
			continue
		}

		// New line/paragraph boundary: cols 1-5 identify the block
		// hierarchy; a change in any of them breaks the line.
		lineKey := strings.Join(cols[1:6], "/")
		if text.Len() > 0 {
			if lineKey != lastLine {
				text.WriteString("\n")
			} else {
				text.WriteString(" ")
			}
		}
		lastLine = lineKey

		text.WriteString(word)
		confSum += conf
		confCount++
	}

	result := pageRecognition{
		Text:  text.String(),
		Words: confCount,
	}
	if confCount > 0 {
		result.Confidence = confSum / float64(confCount) / 100.0
	}
	return result
}

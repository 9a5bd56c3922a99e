package normalize

import (
	"strings"

	"github.com/ternarybob/arbor"
)

// Normalizer applies the language-aware cleaning pipeline. The pipeline
// is idempotent: normalizing already-normalized text returns it
// unchanged, which keeps index-time and query-time processing aligned.
type Normalizer struct {
	corrections map[string]string
	logger      arbor.ILogger
}

// New creates a Normalizer with the given correction lexicon. A nil map
// disables the correction stage.
func New(corrections map[string]string, logger arbor.ILogger) *Normalizer {
	return &Normalizer{
		corrections: corrections,
		logger:      logger,
	}
}

// Normalize runs the full pipeline, in order: noise removal, diacritic
// and tatweel stripping, character folding, lexicon corrections,
// split-prefix repair, whitespace collapse. English text is lowercased.
func (n *Normalizer) Normalize(text string) string {
	if text == "" {
		return ""
	}

	for _, p := range noisePatterns {
		text = p.ReplaceAllString(text, " ")
	}

	text = tashkeelPattern.ReplaceAllString(text, "")
	text = foldString(text)
	text = n.applyCorrections(text)
	text = repairSplitPrefixes(text)

	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.ToLower(strings.TrimSpace(text))
}

// NormalizeQuery is the query-time path. It skips noise removal and the
// correction lexicon (query text is typed, not recognized) but applies
// the same folding so query terms meet index terms in identical form.
func (n *Normalizer) NormalizeQuery(text string) string {
	if text == "" {
		return ""
	}
	text = tashkeelPattern.ReplaceAllString(text, "")
	text = foldString(text)
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.ToLower(strings.TrimSpace(text))
}

// applyCorrections replaces known misreads. Keys are matched against
// whole words or phrases only.
func (n *Normalizer) applyCorrections(text string) string {
	if len(n.corrections) == 0 {
		return text
	}
	padded := " " + text + " "
	for wrong, right := range n.corrections {
		if wrong == right {
			continue
		}
		padded = strings.ReplaceAll(padded, " "+wrong+" ", " "+right+" ")
	}
	return strings.TrimSpace(padded)
}

// repairSplitPrefixes rejoins Arabic proclitics that were recognized as
// standalone tokens with the word that follows them.
func repairSplitPrefixes(text string) string {
	words := strings.Fields(text)
	if len(words) < 2 {
		return text
	}

	out := make([]string, 0, len(words))
	for i := 0; i < len(words); i++ {
		w := words[i]
		if _, ok := attachablePrefixes[w]; ok && i+1 < len(words) && IsArabicWord(words[i+1]) {
			out = append(out, w+words[i+1])
			i++
			continue
		}
		out = append(out, w)
	}
	return strings.Join(out, " ")
}

// foldString applies the per-rune character folds and drops.
func foldString(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if _, drop := droppedRunes[r]; drop {
			continue
		}
		if folded, ok := charFolds[r]; ok {
			b.WriteRune(folded)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

package index

import (
	"strings"
	"unicode"

	"github.com/sahemlabs/maktaba/internal/models"
	"github.com/sahemlabs/maktaba/internal/services/normalize"
)

// Tokenize splits normalized text into index terms. Anything that is not
// a letter or digit is a separator. Input is expected to already be
// normalized; the tokenizer does no folding of its own.
func Tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// BuildVector tokenizes text into a term-frequency vector.
func BuildVector(text string) models.FieldVector {
	tokens := Tokenize(text)
	terms := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		terms[tok]++
	}
	return models.FieldVector{Terms: terms, Length: len(tokens)}
}

// DetectLanguage classifies text by dominant script. Text with more
// Arabic letters than Latin is Arabic, the reverse is English, and text
// with neither is neutral.
func DetectLanguage(text string) string {
	var arabic, latin int
	for _, r := range text {
		switch {
		case normalize.IsArabicRune(r):
			arabic++
		case r < 128 && unicode.IsLetter(r):
			latin++
		}
	}
	switch {
	case arabic == 0 && latin == 0:
		return models.LangNeutral
	case arabic >= latin:
		return models.LangArabic
	default:
		return models.LangEnglish
	}
}

package normalize

import "regexp"

// Character folds applied rune-by-rune. Alif variants collapse to bare
// alif, taa marbuta folds to haa, dotless/hamza yaa variants fold to
// yaa, waw-hamza folds to waw, standalone hamza is dropped.
var charFolds = map[rune]rune{
	'أ': 'ا', // أ -> ا
	'إ': 'ا', // إ -> ا
	'آ': 'ا', // آ -> ا
	'ٱ': 'ا', // ٱ -> ا
	'ة': 'ه', // ة -> ه
	'ى': 'ي', // ى -> ي
	'ئ': 'ي', // ئ -> ي
	'ؤ': 'و', // ؤ -> و
}

// droppedRunes are removed entirely.
var droppedRunes = map[rune]struct{}{
	'ء': {}, // standalone hamza
}

// tashkeelPattern matches diacritics (fatha through sukun), the
// superscript alef, and the tatweel stretch character.
var tashkeelPattern = regexp.MustCompile(`[\x{064B}-\x{0652}\x{0670}\x{0640}]`)

// noisePatterns remove artifacts that scanned-page recognition commonly
// injects. Applied in order before any other stage.
var noisePatterns = []*regexp.Regexp{
	// Control and replacement characters.
	regexp.MustCompile(`[\x{0000}-\x{0008}\x{000B}\x{000C}\x{000E}-\x{001F}\x{FFFD}]`),
	// Runs of box-drawing or geometric shapes from page borders.
	regexp.MustCompile(`[\x{2500}-\x{257F}\x{25A0}-\x{25FF}]+`),
	// Repeated punctuation runs (scanner speckle reads as dots/dashes).
	regexp.MustCompile(`[.\-_=~*]{4,}`),
}

// whitespacePattern collapses any whitespace run to a single space.
var whitespacePattern = regexp.MustCompile(`\s+`)

// attachablePrefixes are the Arabic proclitics that recognition tends to
// split off as standalone tokens. A token that is exactly one of these,
// followed by an Arabic token, is rejoined to it.
var attachablePrefixes = map[string]struct{}{
	"ال": {},
	"و":  {},
	"ف":  {},
	"ب":  {},
	"ل":  {},
	"ك":  {},
}

// arabicRanges covers the Unicode blocks counted as Arabic script:
// Arabic, Arabic Supplement, Arabic Extended-A, and the two
// presentation-forms blocks.
var arabicRanges = [][2]rune{
	{0x0600, 0x06FF},
	{0x0750, 0x077F},
	{0x08A0, 0x08FF},
	{0xFB50, 0xFDFF},
	{0xFE70, 0xFEFF},
}

// IsArabicRune reports whether r falls in an Arabic script block.
func IsArabicRune(r rune) bool {
	for _, rg := range arabicRanges {
		if r >= rg[0] && r <= rg[1] {
			return true
		}
	}
	return false
}

// IsArabicWord reports whether the token contains at least one Arabic rune.
func IsArabicWord(word string) bool {
	for _, r := range word {
		if IsArabicRune(r) {
			return true
		}
	}
	return false
}

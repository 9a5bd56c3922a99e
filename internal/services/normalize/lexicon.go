package normalize

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// builtinCorrections maps recognizer misreads of common liturgical and
// ecclesiastical vocabulary to their correct forms. Keys and values are
// stored in already-folded form so applying a correction never creates
// text that a second pass would change again.
var builtinCorrections = map[string]string{
	// Confusable letter shapes in liturgical vocabulary.
	"الفداس":   "القداس",
	"المرامير": "المزامير",
	"الكتيسه":  "الكنيسه",
	"الانحيل":  "الانجيل",
	"التسيحه":  "التسبحه",
	"الشماص":   "الشماس",
	"الاسفف":   "الاسقف",
	"البطرير":  "البطريرك",
	"العدرا":   "العذرا",
	"ابصلبوديه": "ابصلموديه",
}

// lexiconFile is the on-disk shape of a correction lexicon.
type lexiconFile struct {
	Corrections map[string]string `yaml:"corrections"`
}

// LoadLexicon returns the built-in corrections merged with the optional
// YAML lexicon at path. File entries win over built-ins. An empty path
// returns the built-ins alone.
func LoadLexicon(path string) (map[string]string, error) {
	merged := make(map[string]string, len(builtinCorrections))
	for k, v := range builtinCorrections {
		merged[k] = v
	}

	if path == "" {
		return merged, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon file: %w", err)
	}

	var file lexiconFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon file: %w", err)
	}

	for k, v := range file.Corrections {
		// Fold both sides so file entries compose with the folding
		// stage the same way built-ins do.
		merged[foldString(k)] = foldString(v)
	}
	return merged, nil
}

package common

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string           `toml:"environment"` // "development" or "production"
	Server      ServerConfig     `toml:"server"`
	Storage     StorageConfig    `toml:"storage"`
	Logging     LoggingConfig    `toml:"logging"`
	Extraction  ExtractionConfig `toml:"extraction"`
	OCR         OCRConfig        `toml:"ocr"`
	Normalize   NormalizeConfig  `toml:"normalize"`
	Search      SearchConfig     `toml:"search"`
	Scheduler   SchedulerConfig  `toml:"scheduler"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger    BadgerConfig `toml:"badger"`
	SourceDir string       `toml:"source_dir"` // Root directory for document source files
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// ExtractionConfig tunes the direct-extraction / OCR fallback decision.
// MinChars and CharsPerPage define the sufficiency threshold
// max(min_chars, page_count * chars_per_page); documents whose direct
// extraction falls below it are routed to OCR.
type ExtractionConfig struct {
	MinChars       int     `toml:"min_chars"`        // Floor of the sufficiency threshold (default: 500)
	CharsPerPage   int     `toml:"chars_per_page"`   // Expected characters of real content per page (default: 300)
	MinConfidence  float64 `toml:"min_confidence"`   // Minimum OCR confidence (0-1) to adopt OCR output over direct extraction
	Workers        int     `toml:"workers"`          // Extraction pool size; 0 = number of CPU cores
	MinLetterRatio float64 `toml:"min_letter_ratio"` // Below this letter-to-rune ratio extracted text is considered garbled
}

// OCRConfig configures the external recognizer.
type OCRConfig struct {
	TesseractPath string        `toml:"tesseract_path"` // Tesseract binary (default: "tesseract", resolved via PATH)
	Languages     string        `toml:"languages"`      // Tesseract language packs (default: "ara+eng")
	Timeout       time.Duration `toml:"timeout"`        // Per-page recognition timeout
}

// NormalizeConfig configures the text normalization pipeline.
type NormalizeConfig struct {
	LexiconPath string `toml:"lexicon_path"` // Optional YAML file of vocabulary corrections merged over the built-in set
}

// SearchConfig contains relevance tuning for the query ranker.
// The weights mirror the D/C/B/A tiers of the index.
type SearchConfig struct {
	RelevanceThreshold float64 `toml:"relevance_threshold"` // Candidates scoring below this are discarded (default: 0.1)
	TitleWeight        float64 `toml:"title_weight"`        // default: 1.0
	DescriptionWeight  float64 `toml:"description_weight"`  // default: 0.4 (also applied to tag labels)
	TranscriptWeight   float64 `toml:"transcript_weight"`   // default: 0.2
	BodyWeight         float64 `toml:"body_weight"`         // default: 0.1 (notes + extracted body)
	DefaultPageSize    int     `toml:"default_page_size"`
	MaxPageSize        int     `toml:"max_page_size"`
}

// SchedulerConfig controls background dispatch of pending extractions
// and rate-limited bulk reindexing.
type SchedulerConfig struct {
	Enabled      bool    `toml:"enabled"`
	Schedule     string  `toml:"schedule"`      // Cron schedule for the pending-document scan
	ScanLimit    int     `toml:"scan_limit"`    // Max documents dispatched per scan
	ReindexRate  float64 `toml:"reindex_rate"`  // Bulk reindex dispatch rate, records per second
	ReindexBurst int     `toml:"reindex_burst"` // Burst size for the reindex limiter
}

// NewDefaultConfig creates a configuration with default values.
// The extraction and search thresholds default to values tuned against a
// bilingual Arabic/English corpus; they live here rather than as literals
// so deployments can retune them.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
			SourceDir: "./sources",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout", "file"},
		},
		Extraction: ExtractionConfig{
			MinChars:       500,
			CharsPerPage:   300,
			MinConfidence:  0.5,
			Workers:        0, // sized to runtime.NumCPU() at pool creation
			MinLetterRatio: 0.35,
		},
		OCR: OCRConfig{
			TesseractPath: "tesseract",
			Languages:     "ara+eng",
			Timeout:       2 * time.Minute,
		},
		Normalize: NormalizeConfig{
			LexiconPath: "",
		},
		Search: SearchConfig{
			RelevanceThreshold: 0.1,
			TitleWeight:        1.0,
			DescriptionWeight:  0.4,
			TranscriptWeight:   0.2,
			BodyWeight:         0.1,
			DefaultPageSize:    12,
			MaxPageSize:        100,
		},
		Scheduler: SchedulerConfig{
			Enabled:      true,
			Schedule:     "0 */1 * * * *", // every minute, seconds-precision cron
			ScanLimit:    50,
			ReindexRate:  20,
			ReindexBurst: 5,
		},
	}
}

// LoadFromFile loads configuration from a TOML file, merged over defaults.
// Environment overrides are applied after the file.
func LoadFromFile(path string) (*Config, error) {
	config := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)
	return config, nil
}

// applyEnvOverrides applies environment variable overrides to the config
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("MAKTABA_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Server.Port = port
		}
	}
	if v := os.Getenv("MAKTABA_HOST"); v != "" {
		config.Server.Host = v
	}
	if v := os.Getenv("MAKTABA_DATA_DIR"); v != "" {
		config.Storage.Badger.Path = v
	}
	if v := os.Getenv("MAKTABA_SOURCE_DIR"); v != "" {
		config.Storage.SourceDir = v
	}
	if v := os.Getenv("MAKTABA_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("MAKTABA_TESSERACT"); v != "" {
		config.OCR.TesseractPath = v
	}
}

// ApplyFlagOverrides applies command-line flag overrides (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// ExtractionWorkers resolves the configured pool size, defaulting to the
// CPU core count. OCR is CPU-bound; oversubscription degrades throughput
// without improving latency.
func (c *Config) ExtractionWorkers() int {
	if c.Extraction.Workers > 0 {
		return c.Extraction.Workers
	}
	return runtime.NumCPU()
}

// IsProduction returns true when running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

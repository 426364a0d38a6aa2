package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"invoicenorm/internal/logger"
)

// Analyzer engines.
const (
	EngineDocumentAI = "docai"
	EngineVision     = "vision"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	// Analyzer Configuration
	AnalyzerEngine string

	// Google Cloud Configuration
	GoogleCloudProject         string
	GoogleCloudLocation        string
	DocumentAIProcessorID      string
	DocumentAIProcessorVersion string

	// Google Sheets Configuration
	GoogleSheetURL       string
	GoogleSheetWorksheet string

	// Batch Configuration
	InputDir     string
	OutputDir    string
	BatchWorkers int

	// Normalization Configuration
	ClassificationRules string
	DefaultCurrency     string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		AnalyzerEngine:             strings.ToLower(getEnv("ANALYZER_ENGINE", EngineDocumentAI)),
		GoogleCloudProject:         getEnv("GOOGLE_CLOUD_PROJECT", ""),
		GoogleCloudLocation:        getEnv("GOOGLE_CLOUD_LOCATION", "eu"),
		DocumentAIProcessorID:      getEnv("DOCUMENT_AI_PROCESSOR_ID", ""),
		DocumentAIProcessorVersion: getEnv("DOCUMENT_AI_PROCESSOR_VERSION", ""),
		GoogleSheetURL:             getEnv("GOOGLE_SHEET_URL", ""),
		GoogleSheetWorksheet:       getEnv("GOOGLE_SHEET_WORKSHEET", "Invoices"),
		InputDir:                   getEnv("INPUT_DIR", "data/input"),
		OutputDir:                  getEnv("OUTPUT_DIR", "data/output"),
		BatchWorkers:               getEnvInt("BATCH_WORKERS", 8),
		ClassificationRules:        getEnv("CLASSIFICATION_RULES", ""),
		DefaultCurrency:            strings.ToUpper(getEnv("DEFAULT_CURRENCY", "EUR")),
		LogLevel:                   getEnv("LOG_LEVEL", "info"),
		LogFormat:                  getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:              getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:                  getEnv("LOG_OUTPUT", "stderr"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.AnalyzerEngine {
	case EngineDocumentAI, EngineVision:
	default:
		return fmt.Errorf("%w: ANALYZER_ENGINE must be %q or %q, got %q",
			ErrInvalidConfig, EngineDocumentAI, EngineVision, c.AnalyzerEngine)
	}
	if c.BatchWorkers < 1 {
		return fmt.Errorf("%w: BATCH_WORKERS must be positive", ErrInvalidConfig)
	}
	if len(c.DefaultCurrency) != 3 {
		return fmt.Errorf("%w: DEFAULT_CURRENCY must be an ISO 4217 code", ErrInvalidConfig)
	}
	return nil
}

// ValidateForEngine checks the settings the configured analyzer needs. Offline
// commands that only read analyze-result JSON never call it.
//
// Vision needs credentials only; Document AI also needs the project and the
// processor.
func (c *Config) ValidateForEngine() error {
	if c.AnalyzerEngine != EngineDocumentAI {
		return nil
	}
	if c.GoogleCloudProject == "" {
		return fmt.Errorf("%w: GOOGLE_CLOUD_PROJECT is required", ErrInvalidConfig)
	}
	if c.DocumentAIProcessorID == "" {
		return fmt.Errorf("%w: DOCUMENT_AI_PROCESSOR_ID is required", ErrInvalidConfig)
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return n
}

package config_test

import (
	"errors"
	"testing"

	"invoicenorm/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"ANALYZER_ENGINE", "GOOGLE_CLOUD_LOCATION", "BATCH_WORKERS",
		"DEFAULT_CURRENCY", "LOG_OUTPUT", "GOOGLE_SHEET_WORKSHEET",
	} {
		t.Setenv(key, "")
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.AnalyzerEngine != config.EngineDocumentAI {
		t.Errorf("AnalyzerEngine = %q", cfg.AnalyzerEngine)
	}
	if cfg.GoogleCloudLocation != "eu" || cfg.BatchWorkers != 8 || cfg.DefaultCurrency != "EUR" {
		t.Errorf("defaults = %+v", cfg)
	}
	if lc := cfg.GetLoggerConfig(); lc.Output != "stderr" {
		t.Errorf("log output = %q, want stderr", lc.Output)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ANALYZER_ENGINE", "Vision")
	t.Setenv("BATCH_WORKERS", "3")
	t.Setenv("DEFAULT_CURRENCY", "chf")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.AnalyzerEngine != config.EngineVision || cfg.BatchWorkers != 3 || cfg.DefaultCurrency != "CHF" {
		t.Errorf("config = %+v", cfg)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"unknown engine", "ANALYZER_ENGINE", "tesseract"},
		{"non-numeric workers", "BATCH_WORKERS", "many"},
		{"zero workers", "BATCH_WORKERS", "0"},
		{"bad currency", "DEFAULT_CURRENCY", "EURO"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := config.Load(); !errors.Is(err, config.ErrInvalidConfig) {
				t.Errorf("Load() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestValidateForEngine(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		wantErr bool
	}{
		{"vision needs no project", config.Config{AnalyzerEngine: config.EngineVision}, false},
		{"docai without project", config.Config{AnalyzerEngine: config.EngineDocumentAI, DocumentAIProcessorID: "p"}, true},
		{"docai without processor", config.Config{AnalyzerEngine: config.EngineDocumentAI, GoogleCloudProject: "acme"}, true},
		{"docai complete", config.Config{AnalyzerEngine: config.EngineDocumentAI, GoogleCloudProject: "acme", DocumentAIProcessorID: "p"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.ValidateForEngine()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateForEngine() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, config.ErrInvalidConfig) {
				t.Errorf("error %v does not wrap ErrInvalidConfig", err)
			}
		})
	}
}

package logger_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"invoicenorm/internal/logger"
)

func TestSetupWritesJSONToFile(t *testing.T) {
	previous, previousLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = previous
		zerolog.SetGlobalLevel(previousLevel)
	})

	path := filepath.Join(t.TempDir(), "run.log")
	closer, err := logger.Setup(logger.LogConfig{Level: "debug", Format: "json", Output: path})
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	l := logger.WithRunID("batch", "run-1")
	l.Debug().Str("file", "a.pdf").Msg("Document processed")
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(data))), &entry); err != nil {
		t.Fatalf("log line is not JSON: %q", data)
	}
	for key, want := range map[string]string{
		"component": "batch",
		"run_id":    "run-1",
		"file":      "a.pdf",
		"level":     "debug",
		"message":   "Document processed",
	} {
		if entry[key] != want {
			t.Errorf("%s = %v, want %q", key, entry[key], want)
		}
	}
}

func TestSetupRejectsUnknownLevel(t *testing.T) {
	if _, err := logger.Setup(logger.LogConfig{Level: "verbose"}); err == nil {
		t.Error("Setup(verbose) error = nil")
	}
}

func TestDefaultConfigLogsToStderr(t *testing.T) {
	if got := logger.DefaultConfig().Output; got != "stderr" {
		t.Errorf("Output = %q, want stderr", got)
	}
}

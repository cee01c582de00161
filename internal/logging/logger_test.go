package logging

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// resetState returns the package to a pristine state between tests.
func resetState() {
	CloseAll()
	loggers = make(map[Category]*Logger)
	logsDir = ""
	workspace = ""
	config = loggingConfig{}
	configLoaded = false
	logLevel = LevelDebug
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	configDir := filepath.Join(dir, ".bitebot")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
}

// TestAllCategoriesLog verifies every category creates its log file when
// debug is on.
func TestAllCategoriesLog(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "logging:\n  level: debug\n  debug: true\n")

	resetState()
	t.Setenv("BITEBOT_DEBUG", "")

	if err := Initialize(tempDir); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}
	defer CloseAll()

	if !IsDebugMode() {
		t.Error("Expected debug mode to be enabled")
	}

	categories := []Category{
		CategoryBoot, CategorySession, CategoryAPI,
		CategoryTranscript, CategoryReservations, CategoryConfig,
	}
	for _, cat := range categories {
		Get(cat).Info("test message for %s", cat)
	}

	logsPath := filepath.Join(tempDir, ".bitebot", "logs")
	date := time.Now().Format("2006-01-02")
	for _, cat := range categories {
		logFile := filepath.Join(logsPath, date+"_"+string(cat)+".log")
		data, err := os.ReadFile(logFile)
		if err != nil {
			t.Errorf("Category %s: expected log file, got error: %v", cat, err)
			continue
		}
		if !strings.Contains(string(data), "test message") {
			t.Errorf("Category %s: log file missing message, got: %s", cat, data)
		}
	}
}

// TestNoLoggingWithoutConfig verifies quiet-mode default: no config file, no
// BITEBOT_DEBUG, no log directory.
func TestNoLoggingWithoutConfig(t *testing.T) {
	tempDir := t.TempDir()

	resetState()
	t.Setenv("BITEBOT_DEBUG", "")

	if err := Initialize(tempDir); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}
	defer CloseAll()

	if IsDebugMode() {
		t.Error("Expected debug mode off without config")
	}

	Boot("this should go nowhere")
	API("and so should this")

	logsPath := filepath.Join(tempDir, ".bitebot", "logs")
	if _, err := os.Stat(logsPath); !os.IsNotExist(err) {
		t.Errorf("Expected no logs directory in quiet mode, stat err: %v", err)
	}
}

// TestEnvVarEnablesDebug verifies BITEBOT_DEBUG=1 turns logging on without a
// config file.
func TestEnvVarEnablesDebug(t *testing.T) {
	tempDir := t.TempDir()

	resetState()
	t.Setenv("BITEBOT_DEBUG", "1")

	if err := Initialize(tempDir); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}
	defer CloseAll()

	if !IsDebugMode() {
		t.Error("Expected BITEBOT_DEBUG=1 to enable debug mode")
	}

	Session("session line")

	date := time.Now().Format("2006-01-02")
	logFile := filepath.Join(tempDir, ".bitebot", "logs", date+"_session.log")
	if _, err := os.Stat(logFile); err != nil {
		t.Errorf("Expected session log file, got: %v", err)
	}
}

// TestLogLevelFiltering verifies level gating: at warn, info lines are
// dropped and warn lines kept.
func TestLogLevelFiltering(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "logging:\n  level: warn\n  debug: true\n")

	resetState()
	t.Setenv("BITEBOT_DEBUG", "")

	if err := Initialize(tempDir); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}
	defer CloseAll()

	l := Get(CategoryAPI)
	l.Info("info line should be filtered")
	l.Warn("warn line should appear")

	date := time.Now().Format("2006-01-02")
	logFile := filepath.Join(tempDir, ".bitebot", "logs", date+"_api.log")
	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("Expected api log file, got: %v", err)
	}
	if strings.Contains(string(data), "info line") {
		t.Error("Info line should have been filtered at warn level")
	}
	if !strings.Contains(string(data), "warn line") {
		t.Error("Warn line missing from log")
	}
}

// TestRequestLoggerCorrelation verifies the request ID shows up on every
// line from a RequestLogger.
func TestRequestLoggerCorrelation(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "logging:\n  level: debug\n  debug: true\n")

	resetState()
	t.Setenv("BITEBOT_DEBUG", "")

	if err := Initialize(tempDir); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}
	defer CloseAll()

	rl := WithRequestID(CategoryAPI, "req-abc-123").WithField("endpoint", "/chat")
	rl.Info("sending message")
	rl.Error("backend unreachable")

	date := time.Now().Format("2006-01-02")
	logFile := filepath.Join(tempDir, ".bitebot", "logs", date+"_api.log")
	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("Expected api log file, got: %v", err)
	}
	if got := strings.Count(string(data), "[req:req-abc-123]"); got != 2 {
		t.Errorf("Expected request ID on 2 lines, found %d:\n%s", got, data)
	}
	if !strings.Contains(string(data), "/chat") {
		t.Error("Expected field value in log output")
	}
}

// TestConcurrentGet verifies Get is safe under concurrent first access.
func TestConcurrentGet(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "logging:\n  level: debug\n  debug: true\n")

	resetState()
	t.Setenv("BITEBOT_DEBUG", "")

	if err := Initialize(tempDir); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}
	defer CloseAll()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			Get(CategorySession).Info("goroutine %d", n)
		}(i)
	}
	wg.Wait()

	loggersMu.RLock()
	defer loggersMu.RUnlock()
	if len(loggers) != 1 {
		t.Errorf("Expected a single session logger, got %d", len(loggers))
	}
}

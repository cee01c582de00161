package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func TestVersionCmd(t *testing.T) {
	output := captureOutput(t, func() {
		versionCmd.Run(&cobra.Command{}, []string{})
	})

	if !strings.Contains(output, "bitebot "+version) {
		t.Fatalf("expected version string, got: %s", output)
	}
}

func TestLoadConfig_ServerFlagOverride(t *testing.T) {
	oldURL := serverURL
	serverURL = "http://flagged.example:9"
	defer func() { serverURL = oldURL }()

	cfg := loadConfig()
	if cfg.Server.BaseURL != "http://flagged.example:9" {
		t.Fatalf("expected flag to win, got %s", cfg.Server.BaseURL)
	}
}

func TestShowStatus_Healthy(t *testing.T) {
	logger = zap.NewNop()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok","agent_initialized":true,"timestamp":"2026-01-01T00:00:00Z"}`))
	})
	mux.HandleFunc("/reservations", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"reservations":[{"reservation_id":"RES-1"},{"reservation_id":"RES-2"}]}`))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	oldURL, oldTimeout := serverURL, timeout
	serverURL = ts.URL
	timeout = 5 * time.Second
	defer func() { serverURL, timeout = oldURL, oldTimeout }()

	var err error
	output := captureOutput(t, func() {
		err = showStatus(&cobra.Command{}, []string{})
	})

	if err != nil {
		t.Fatalf("showStatus failed: %v", err)
	}
	if !strings.Contains(output, "✓ Server ready") {
		t.Errorf("expected ready line, got: %s", output)
	}
	if !strings.Contains(output, "Reservations on file: 2") {
		t.Errorf("expected reservation count, got: %s", output)
	}
}

func TestShowStatus_Unreachable(t *testing.T) {
	logger = zap.NewNop()

	ts := httptest.NewServer(http.NewServeMux())
	url := ts.URL
	ts.Close()

	oldURL, oldTimeout := serverURL, timeout
	serverURL = url
	timeout = 2 * time.Second
	defer func() { serverURL, timeout = oldURL, oldTimeout }()

	var err error
	output := captureOutput(t, func() {
		err = showStatus(&cobra.Command{}, []string{})
	})

	if err == nil {
		t.Fatal("expected error for unreachable server")
	}
	if !strings.Contains(output, "✗ Server unreachable") {
		t.Errorf("expected unreachable notice, got: %s", output)
	}
}

func TestRunReset_YesSkipsPrompt(t *testing.T) {
	logger = zap.NewNop()

	var mu sync.Mutex
	resets := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/reset", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		resets++
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	oldURL, oldTimeout, oldYes := serverURL, timeout, resetYes
	serverURL = ts.URL
	timeout = 5 * time.Second
	resetYes = true
	defer func() { serverURL, timeout, resetYes = oldURL, oldTimeout, oldYes }()

	var err error
	output := captureOutput(t, func() {
		err = runReset(&cobra.Command{}, []string{})
	})

	if err != nil {
		t.Fatalf("runReset failed: %v", err)
	}
	if !strings.Contains(output, "Conversation cleared.") {
		t.Errorf("expected cleared notice, got: %s", output)
	}
	mu.Lock()
	defer mu.Unlock()
	if resets != 1 {
		t.Errorf("expected exactly one reset call, got %d", resets)
	}
}

func TestRunReset_UnreachableKeepsConversation(t *testing.T) {
	logger = zap.NewNop()

	ts := httptest.NewServer(http.NewServeMux())
	url := ts.URL
	ts.Close()

	oldURL, oldTimeout, oldYes := serverURL, timeout, resetYes
	serverURL = url
	timeout = 2 * time.Second
	resetYes = true
	defer func() { serverURL, timeout, resetYes = oldURL, oldTimeout, oldYes }()

	err := runReset(&cobra.Command{}, []string{})
	if err == nil {
		t.Fatal("expected error for unreachable server")
	}
	if !strings.Contains(err.Error(), "conversation kept") {
		t.Errorf("error should say the conversation was kept, got: %v", err)
	}
}

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	origOut := os.Stdout
	origErr := os.Stderr
	rOut, wOut, _ := os.Pipe()
	rErr, wErr, _ := os.Pipe()
	os.Stdout = wOut
	os.Stderr = wErr

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, rOut)
		_, _ = io.Copy(&buf, rErr)
		done <- buf.String()
	}()

	fn()

	_ = wOut.Close()
	_ = wErr.Close()
	os.Stdout = origOut
	os.Stderr = origErr
	return <-done
}

// Package logging includes tests for the zap logger helpers.
package logging

import (
	"testing"

	"go.uber.org/zap"
)

// TestNewDevelopmentLogger confirms the development logger builds and logs.
func TestNewDevelopmentLogger(t *testing.T) {
	t.Parallel()

	logger, err := New(true)
	if err != nil {
		t.Fatalf("New(true) error = %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger to be non-nil")
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush
	logger.Info("development logger ready")
}

// TestNewProductionLogger ensures the production logger configuration succeeds.
func TestNewProductionLogger(t *testing.T) {
	t.Parallel()

	logger, err := New(false)
	if err != nil {
		t.Fatalf("New(false) error = %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger to be non-nil")
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush
	logger.Info("production logger ready")
}

// TestInstallReplacesGlobal verifies the global swap and its restore path.
func TestInstallReplacesGlobal(t *testing.T) {
	prev := zap.L()

	logger, restore, err := Install(false)
	if err != nil {
		t.Fatalf("Install(false) error = %v", err)
	}
	if zap.L() != logger {
		t.Fatal("expected the installed logger to be the global")
	}

	restore()
	if zap.L() != prev {
		t.Fatal("expected restore to reinstate the previous global")
	}
}

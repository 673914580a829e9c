package main

import (
	"errors"
	"os"
	"testing"

	"forge/internal/services"
)

func TestCheckCommandPasses(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"check"}, env.configPath)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	requireContains(t, out, env.configPath)
	requireContains(t, out, "[OK]")
}

func TestCheckCommandReportsMissingInput(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := os.RemoveAll(env.cfg.Paths.InputDir); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, []string{"check"}, env.configPath)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	requireContains(t, out, "[ERROR]")
}

package svc_test

import (
	"testing"

	"copytrader/internal/config"
)

// TestIsTestEnv verifies Config.IsTestEnv's environment detection.
func TestIsTestEnv(t *testing.T) {
	tests := []struct {
		env      string
		expected bool
	}{
		{"test", true},
		{"", true}, // Empty defaults to test
		{"dev", false},
		{"prod", false},
	}

	for _, tt := range tests {
		t.Run("env="+tt.env, func(t *testing.T) {
			cfg := config.Config{Env: tt.env}
			if err := cfg.Validate(); err != nil {
				t.Fatalf("Validate failed: %v", err)
			}
			if result := cfg.IsTestEnv(); result != tt.expected {
				t.Errorf("IsTestEnv() for env=%q: expected %v, got %v (normalized to %q)",
					tt.env, tt.expected, result, cfg.Env)
			}
		})
	}
}

func TestValidate_RejectsUnknownEnv(t *testing.T) {
	cfg := config.Config{Env: "staging"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected Validate to reject an unrecognized env")
	}
}

package database

import (
	"strings"
	"testing"

	"github.com/sgkim/tradelens/pkg/config"
)

func TestNewRequiresDatabaseURL(t *testing.T) {
	cfg := &config.Config{}

	_, err := New(cfg)
	if err == nil {
		t.Fatal("New() should fail without a database URL")
	}

	if !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Errorf("Expected error to name DATABASE_URL, got: %v", err)
	}
}

func TestNewRejectsMalformedURL(t *testing.T) {
	cfg := &config.Config{}
	cfg.Database.URL = "postgresql://bad url with spaces"

	_, err := New(cfg)
	if err == nil {
		t.Fatal("New() should reject a malformed database URL")
	}
}

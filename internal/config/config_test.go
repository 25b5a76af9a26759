package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaultsWhenMissing(t *testing.T) {
	dir := t.TempDir()
	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if c.File.Version != 1 {
		t.Fatalf("expected default version == 1, got %d", c.File.Version)
	}
	if c.BaseURL() != "http://localhost:8000" {
		t.Fatalf("wrong default base url: %s", c.BaseURL())
	}
	if c.File.Search.SummaryLength != 25 {
		t.Fatalf("wrong default summary length: %d", c.File.Search.SummaryLength)
	}
	if c.File.Search.SummaryCacheCap != 512 {
		t.Fatalf("wrong default summary cache cap: %d", c.File.Search.SummaryCacheCap)
	}
}

func TestLoadParsesYaml(t *testing.T) {
	dir := t.TempDir()
	configYAML := strings.TrimSpace(`
version: 1
api:
  base_url: https://kaleido.example.com/api/
search:
  rerank: true
  summary_length: 40
`)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(configYAML), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if c.BaseURL() != "https://kaleido.example.com/api" {
		t.Fatalf("expected trailing slash trimmed, got %s", c.BaseURL())
	}
	if !c.File.Search.Rerank {
		t.Fatalf("expected rerank enabled")
	}
	if c.File.Search.SummaryLength != 40 {
		t.Fatalf("wrong summary length: %d", c.File.Search.SummaryLength)
	}
	// Unset values still get defaults.
	if c.File.Search.SummaryCacheCap != 512 {
		t.Fatalf("wrong summary cache cap: %d", c.File.Search.SummaryCacheCap)
	}
}

func TestLoadValidation(t *testing.T) {
	dir := t.TempDir()
	configYAML := strings.TrimSpace(`
version: 1
api:
  base_url: not-a-url
`)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(configYAML), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatalf("expected validation error but got none")
	}
}

func TestInitSeedsConfig(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".kaleido")
	if err := Init(dir); err != nil {
		t.Fatalf("Init returned error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Fatalf("expected seeded config.yaml: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "logs")); err != nil {
		t.Fatalf("expected logs directory: %v", err)
	}
	// The seed parses and matches the defaults.
	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if c.BaseURL() != "http://localhost:8000" {
		t.Fatalf("wrong seeded base url: %s", c.BaseURL())
	}
}

func TestSetRerankPersists(t *testing.T) {
	dir := t.TempDir()
	c, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.SetRerank(true); err != nil {
		t.Fatalf("SetRerank returned error: %v", err)
	}
	reloaded, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !reloaded.File.Search.Rerank {
		t.Fatalf("rerank preference was not persisted")
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog returned error: %v", err)
	}

	if len(c.Intents) != 6 {
		t.Fatalf("expected 6 intent categories, got %d", len(c.Intents))
	}

	// catalog order is prompt order
	want := []string{"add", "edit", "delete", "clarify", "off_topic", "inconclusive"}
	for i, w := range want {
		if c.Intents[i].Type != w {
			t.Fatalf("expected intent %d to be %s, got %s", i, w, c.Intents[i].Type)
		}
	}

	add, ok := c.ByType("add")
	if !ok {
		t.Fatalf("expected add intent to be present")
	}
	if add.Description == "" || len(add.MetadataFields) == 0 {
		t.Fatalf("unexpected add definition: %+v", add)
	}

	if _, ok := c.ByType("banking.get_balance"); ok {
		t.Fatalf("did not expect an unknown intent to resolve")
	}
}

func TestLoadFromDir(t *testing.T) {
	dir := t.TempDir()
	data := []byte(`intents:
  - type: add
    description: Create new schedule entry
    metadata_fields: [extracted_data]
  - type: delete
    description: Remove entry
`)
	if err := os.WriteFile(filepath.Join(dir, "intents.yaml"), data, 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("LoadFromDir returned error: %v", err)
	}
	if len(c.Intents) != 2 {
		t.Fatalf("expected 2 intents, got %d", len(c.Intents))
	}
}

func TestLoadFromDir_Errors(t *testing.T) {
	if _, err := LoadFromDir(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatalf("expected error for missing dir")
	}

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("intents: {not a list"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromDir(dir); err == nil {
		t.Fatalf("expected error for malformed yaml")
	}

	empty := t.TempDir()
	if _, err := LoadFromDir(empty); err == nil {
		t.Fatalf("expected error for empty definitions dir")
	}
}

func TestLoadEnv_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "GEMINI_API_KEY", "GEMINI_MODEL", "GEMINI_BASE_URL", "TIMEZONE", "LLM_TIMEOUT"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	v, err := LoadEnv()
	if err != nil {
		t.Fatalf("LoadEnv returned error: %v", err)
	}

	if v.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", v.Port)
	}
	if v.Timezone != "Asia/Singapore" {
		t.Fatalf("expected default timezone Asia/Singapore, got %s", v.Timezone)
	}
	if v.GeminiModel != "gemini-2.0-flash-exp" {
		t.Fatalf("unexpected default model: %s", v.GeminiModel)
	}
	// missing key must not fail config load
	if v.GeminiAPIKey != "" {
		t.Fatalf("expected empty api key, got %q", v.GeminiAPIKey)
	}
}

func TestLoadEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "9191")
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("LLM_TIMEOUT", "5s")

	v, err := LoadEnv()
	if err != nil {
		t.Fatalf("LoadEnv returned error: %v", err)
	}
	if v.Port != 9191 || v.GeminiAPIKey != "test-key" {
		t.Fatalf("unexpected values: %+v", v)
	}
	if v.LLMTimeout.Seconds() != 5 {
		t.Fatalf("expected 5s timeout, got %v", v.LLMTimeout)
	}
}

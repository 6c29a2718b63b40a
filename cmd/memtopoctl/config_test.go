package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func writeEvaluateConfig(t *testing.T, payload map[string]any) string {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(t.TempDir(), "evaluate.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadEvaluateRequestFromConfig(t *testing.T) {
	path := writeEvaluateConfig(t, map[string]any{
		"truth":          "/data/truth.3line",
		"emissions_dir":  "/data/emissions",
		"log_space":      true,
		"header":         true,
		"helix_len":      7,
		"workers":        4,
		"legacy_regions": true,
		"min_len":        30,
		"max_len":        900,
		"truncate":       400,
		"store":          "sqlite",
		"db_path":        "/tmp/runs.db",
		"save":           true,
	})

	req, err := loadEvaluateRequestFromConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if req.Truth != "/data/truth.3line" {
		t.Fatalf("truth got=%q want=%q", req.Truth, "/data/truth.3line")
	}
	if req.EmissionsDir != "/data/emissions" {
		t.Fatalf("emissions_dir got=%q want=%q", req.EmissionsDir, "/data/emissions")
	}
	if !req.LogSpace || !req.HasHeader {
		t.Fatalf("log_space=%t header=%t want both true", req.LogSpace, req.HasHeader)
	}
	if req.HelixLen != 7 {
		t.Fatalf("helix_len got=%d want=7", req.HelixLen)
	}
	if req.Workers != 4 {
		t.Fatalf("workers got=%d want=4", req.Workers)
	}
	if !req.LegacyRegions {
		t.Fatal("legacy_regions got=false want=true")
	}
	if req.MinLen != 30 || req.MaxLen != 900 || req.Truncate != 400 {
		t.Fatalf("filters got=%d/%d/%d want=30/900/400", req.MinLen, req.MaxLen, req.Truncate)
	}
	if req.StoreKind != "sqlite" || req.DBPath != "/tmp/runs.db" || !req.Save {
		t.Fatalf("store got=%q/%q/%t want=sqlite//tmp/runs.db/true", req.StoreKind, req.DBPath, req.Save)
	}
}

func TestLoadEvaluateRequestFromConfigPartial(t *testing.T) {
	path := writeEvaluateConfig(t, map[string]any{
		"truth":   "/data/truth.3line",
		"workers": 8,
	})

	req, err := loadEvaluateRequestFromConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	defaults := defaultEvaluateRequest()
	if req.Workers != 8 {
		t.Fatalf("workers got=%d want=8", req.Workers)
	}
	if req.HelixLen != defaults.HelixLen {
		t.Fatalf("helix_len got=%d want default %d", req.HelixLen, defaults.HelixLen)
	}
	if req.MinLen != defaults.MinLen || req.StoreKind != defaults.StoreKind {
		t.Fatalf("unset keys did not keep defaults: min_len=%d store=%q", req.MinLen, req.StoreKind)
	}
}

func TestLoadOrDefaultEvaluateRequest(t *testing.T) {
	req, err := loadOrDefaultEvaluateRequest("")
	if err != nil {
		t.Fatalf("empty path: %v", err)
	}
	if req != defaultEvaluateRequest() {
		t.Fatalf("empty path got=%+v want defaults", req)
	}

	if _, err := loadOrDefaultEvaluateRequest(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadEvaluateRequestFromConfigBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := loadEvaluateRequestFromConfig(path); err == nil {
		t.Fatal("expected error for malformed config")
	}
}

func TestOverrideEvaluateFromFlags(t *testing.T) {
	req := defaultEvaluateRequest()
	req.Workers = 4
	req.HelixLen = 7
	req.Truth = "/data/truth.3line"

	overrideEvaluateFromFlags(&req, map[string]bool{"workers": true, "truncate": true}, map[string]any{
		"workers":   2,
		"truncate":  250,
		"helix-len": 99,
	})

	if req.Workers != 2 {
		t.Fatalf("workers got=%d want=2 (flag overrides config)", req.Workers)
	}
	if req.Truncate != 250 {
		t.Fatalf("truncate got=%d want=250", req.Truncate)
	}
	if req.HelixLen != 7 {
		t.Fatalf("helix_len got=%d want=7 (unset flag must not override)", req.HelixLen)
	}
	if req.Truth != "/data/truth.3line" {
		t.Fatalf("truth got=%q want config value preserved", req.Truth)
	}
}

func TestEvaluateCommandWithConfigFile(t *testing.T) {
	dir := t.TempDir()

	truthPath := filepath.Join(dir, "truth.3line")
	truth := ">seq_a\nMKTAYI\nOOMMII\n"
	if err := os.WriteFile(truthPath, []byte(truth), 0o644); err != nil {
		t.Fatalf("write truth: %v", err)
	}

	emissionsDir := filepath.Join(dir, "emissions")
	if err := os.Mkdir(emissionsDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	csv := "0.98,0.01,0.01\n0.98,0.01,0.01\n0.01,0.01,0.98\n0.01,0.01,0.98\n0.98,0.01,0.01\n0.98,0.01,0.01\n"
	if err := os.WriteFile(filepath.Join(emissionsDir, "seq_a.csv"), []byte(csv), 0o644); err != nil {
		t.Fatalf("write emissions: %v", err)
	}

	configPath := writeEvaluateConfig(t, map[string]any{
		"truth":         truthPath,
		"emissions_dir": emissionsDir,
		"helix_len":     21,
	})

	// -helix-len on the command line wins over the config value.
	err := run(context.Background(), []string{
		"evaluate",
		"-config", configPath,
		"-helix-len", "2",
	})
	if err != nil {
		t.Fatalf("evaluate with config: %v", err)
	}
}

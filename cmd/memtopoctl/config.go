package main

import (
	"encoding/json"
	"fmt"
	"os"

	"memtopo/internal/grammar"
	"memtopo/internal/storage"
)

// evaluateRequest carries every parameter of an evaluate run, loadable from
// a JSON config file with explicit flags overriding.
type evaluateRequest struct {
	Truth         string
	EmissionsDir  string
	LogSpace      bool
	HasHeader     bool
	HelixLen      int
	Workers       int
	LegacyRegions bool
	MinLen        int
	MaxLen        int
	Truncate      int
	StoreKind     string
	DBPath        string
	Save          bool
}

func defaultEvaluateRequest() evaluateRequest {
	return evaluateRequest{
		HelixLen:  grammar.DefaultHelixLen,
		Workers:   1,
		MinLen:    -1,
		MaxLen:    -1,
		Truncate:  -1,
		StoreKind: storage.DefaultStoreKind(),
		DBPath:    "memtopo.db",
	}
}

func loadOrDefaultEvaluateRequest(configPath string) (evaluateRequest, error) {
	if configPath == "" {
		return defaultEvaluateRequest(), nil
	}
	req, err := loadEvaluateRequestFromConfig(configPath)
	if err != nil {
		return evaluateRequest{}, fmt.Errorf("load config: %w", err)
	}
	return req, nil
}

func loadEvaluateRequestFromConfig(path string) (evaluateRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return evaluateRequest{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return evaluateRequest{}, err
	}

	req := defaultEvaluateRequest()
	if v, ok := asString(raw["truth"]); ok {
		req.Truth = v
	}
	if v, ok := asString(raw["emissions_dir"]); ok {
		req.EmissionsDir = v
	}
	if v, ok := asBool(raw["log_space"]); ok {
		req.LogSpace = v
	}
	if v, ok := asBool(raw["header"]); ok {
		req.HasHeader = v
	}
	if v, ok := asInt(raw["helix_len"]); ok {
		req.HelixLen = v
	}
	if v, ok := asInt(raw["workers"]); ok {
		req.Workers = v
	}
	if v, ok := asBool(raw["legacy_regions"]); ok {
		req.LegacyRegions = v
	}
	if v, ok := asInt(raw["min_len"]); ok {
		req.MinLen = v
	}
	if v, ok := asInt(raw["max_len"]); ok {
		req.MaxLen = v
	}
	if v, ok := asInt(raw["truncate"]); ok {
		req.Truncate = v
	}
	if v, ok := asString(raw["store"]); ok {
		req.StoreKind = v
	}
	if v, ok := asString(raw["db_path"]); ok {
		req.DBPath = v
	}
	if v, ok := asBool(raw["save"]); ok {
		req.Save = v
	}
	return req, nil
}

func overrideEvaluateFromFlags(req *evaluateRequest, set map[string]bool, flagValue map[string]any) {
	for name := range set {
		v, ok := flagValue[name]
		if !ok {
			continue
		}
		switch name {
		case "truth":
			req.Truth = v.(string)
		case "emissions-dir":
			req.EmissionsDir = v.(string)
		case "log":
			req.LogSpace = v.(bool)
		case "header":
			req.HasHeader = v.(bool)
		case "helix-len":
			req.HelixLen = v.(int)
		case "workers":
			req.Workers = v.(int)
		case "legacy-regions":
			req.LegacyRegions = v.(bool)
		case "min-len":
			req.MinLen = v.(int)
		case "max-len":
			req.MaxLen = v.(int)
		case "truncate":
			req.Truncate = v.(int)
		case "store":
			req.StoreKind = v.(string)
		case "db-path":
			req.DBPath = v.(string)
		case "save":
			req.Save = v.(bool)
		}
	}
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case float64:
		return int(x), true
	default:
		return 0, false
	}
}

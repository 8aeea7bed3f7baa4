package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sls.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
stage: dev
services:
  - name: api
    artifact: build/api.zip
    handler: index.handler
`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Project != DefaultProject {
		t.Fatalf("project = %q, want %q", cfg.Project, DefaultProject)
	}
	if cfg.Output != DefaultOutputDir || cfg.StateDir != DefaultStateDir {
		t.Fatalf("output/state defaults not applied: %q %q", cfg.Output, cfg.StateDir)
	}
	svc := cfg.Services[0]
	if svc.Runtime != DefaultRuntime {
		t.Fatalf("runtime = %q, want %q", svc.Runtime, DefaultRuntime)
	}
	if svc.MemorySize == 0 || svc.Timeout == 0 {
		t.Fatalf("memory/timeout defaults not applied: %d %d", svc.MemorySize, svc.Timeout)
	}
}

func TestLoadRejectsEmptyStage(t *testing.T) {
	_, err := Load(writeConfig(t, `
services:
  - name: api
    artifact: build/api.zip
    handler: index.handler
`))
	if err == nil || !strings.Contains(err.Error(), "stage is required") {
		t.Fatalf("Load() error = %v, want stage is required", err)
	}
}

func TestLoadRejectsBadStageToken(t *testing.T) {
	_, err := Load(writeConfig(t, `
stage: "Dev Stage"
services:
  - name: api
    artifact: build/api.zip
    handler: index.handler
`))
	if err == nil || !strings.Contains(err.Error(), "stage must match") {
		t.Fatalf("Load() error = %v, want stage token error", err)
	}
}

func TestLoadRejectsDuplicateService(t *testing.T) {
	_, err := Load(writeConfig(t, `
stage: dev
services:
  - name: api
    artifact: build/api.zip
    handler: index.handler
  - name: api
    artifact: build/other.zip
    handler: index.handler
`))
	if err == nil || !strings.Contains(err.Error(), "duplicate service name") {
		t.Fatalf("Load() error = %v, want duplicate name error", err)
	}
}

func TestLoadRejectsUnknownUpstream(t *testing.T) {
	_, err := Load(writeConfig(t, `
stage: dev
services:
  - name: edge
    artifact: build/edge.zip
    handler: index.handler
    upstream: api
`))
	if err == nil || !strings.Contains(err.Error(), "not a declared service") {
		t.Fatalf("Load() error = %v, want unknown upstream error", err)
	}
}

func TestLoadRejectsSelfUpstream(t *testing.T) {
	_, err := Load(writeConfig(t, `
stage: dev
services:
  - name: api
    artifact: build/api.zip
    handler: index.handler
    upstream: api
`))
	if err == nil || !strings.Contains(err.Error(), "own upstream") {
		t.Fatalf("Load() error = %v, want self-upstream error", err)
	}
}

func TestLoadRejectsMissingHandler(t *testing.T) {
	_, err := Load(writeConfig(t, `
stage: dev
services:
  - name: api
    artifact: build/api.zip
`))
	if err == nil || !strings.Contains(err.Error(), "handler is required") {
		t.Fatalf("Load() error = %v, want handler required", err)
	}
}

func TestServiceLookup(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
stage: dev
services:
  - name: api
    artifact: build/api.zip
    handler: index.handler
  - name: edge
    artifact: build/edge.zip
    handler: index.handler
    upstream: api
`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	svc, ok := cfg.Service("edge")
	if !ok || svc.Upstream != "api" {
		t.Fatalf("Service(edge) = %+v, %v", svc, ok)
	}
	if _, ok := cfg.Service("missing"); ok {
		t.Fatal("Service(missing) unexpectedly found")
	}
}

// Where: internal/synth/manifest.go
// What: Synthesis manifest read/write/validation.
// Why: Record what was emitted, in apply order, for operators and tooling.
package synth

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	ManifestSchemaVersionV1 = "1"
	ManifestFileName        = "synth.yml"
)

var sha256HexPattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

// Manifest summarizes one synthesis run. Stacks appear in apply order.
type Manifest struct {
	SchemaVersion string          `yaml:"schema_version"`
	Project       string          `yaml:"project"`
	Stage         string          `yaml:"stage"`
	GeneratedAt   string          `yaml:"generated_at,omitempty"`
	Stacks        []ManifestStack `yaml:"stacks"`
}

// ManifestStack records one emitted stack.
type ManifestStack struct {
	Name      string          `yaml:"name"`
	Template  string          `yaml:"template"`
	DependsOn []string        `yaml:"depends_on,omitempty"`
	Assets    []ManifestAsset `yaml:"assets,omitempty"`
}

// ManifestAsset records one staged bundle. SHA256 is the hex digest used for
// the asset path; SourceHash is the base64 form carried by the function
// resource.
type ManifestAsset struct {
	Source     string `yaml:"source"`
	Path       string `yaml:"path"`
	SHA256     string `yaml:"sha256"`
	SourceHash string `yaml:"source_hash"`
}

func (m Manifest) Validate() error {
	schemaVersion := strings.TrimSpace(m.SchemaVersion)
	if schemaVersion == "" {
		return fmt.Errorf("schema_version is required")
	}
	if schemaVersion != ManifestSchemaVersionV1 {
		return fmt.Errorf("unsupported schema_version: %q (supported: %q)", schemaVersion, ManifestSchemaVersionV1)
	}
	if strings.TrimSpace(m.Project) == "" {
		return fmt.Errorf("project is required")
	}
	if strings.TrimSpace(m.Stage) == "" {
		return fmt.Errorf("stage is required")
	}
	if len(m.Stacks) == 0 {
		return fmt.Errorf("stacks must contain at least one entry")
	}
	for i, s := range m.Stacks {
		if err := s.validate(i); err != nil {
			return err
		}
	}
	return nil
}

func (s ManifestStack) validate(index int) error {
	prefix := fmt.Sprintf("stacks[%d]", index)
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if strings.TrimSpace(s.Template) == "" {
		return fmt.Errorf("%s.template is required", prefix)
	}
	for j, asset := range s.Assets {
		assetPrefix := fmt.Sprintf("%s.assets[%d]", prefix, j)
		if strings.TrimSpace(asset.Path) == "" {
			return fmt.Errorf("%s.path is required", assetPrefix)
		}
		if !sha256HexPattern.MatchString(asset.SHA256) {
			return fmt.Errorf("%s.sha256 must be 64 lowercase hex characters", assetPrefix)
		}
		if strings.TrimSpace(asset.SourceHash) == "" {
			return fmt.Errorf("%s.source_hash is required", assetPrefix)
		}
	}
	return nil
}

// WriteManifest stamps and writes the manifest.
func WriteManifest(path string, m Manifest) error {
	if m.GeneratedAt == "" {
		m.GeneratedAt = time.Now().UTC().Format(time.RFC3339)
	}
	if err := m.Validate(); err != nil {
		return err
	}
	payload, err := yaml.Marshal(&m)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}

// ReadManifest loads and validates a previously written manifest.
func ReadManifest(path string) (Manifest, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, err
	}
	var m Manifest
	if err := yaml.Unmarshal(payload, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

package synth

import (
	"path/filepath"
	"strings"
	"testing"
)

func validManifest() Manifest {
	return Manifest{
		SchemaVersion: ManifestSchemaVersionV1,
		Project:       "sls",
		Stage:         "dev",
		Stacks: []ManifestStack{
			{
				Name:     "sls-dev-api",
				Template: "stacks/sls-dev-api/cdk.tf.json",
				Assets: []ManifestAsset{
					{
						Source:     "build/api.zip",
						Path:       "assets/" + strings.Repeat("ab", 32) + "/api.zip",
						SHA256:     strings.Repeat("ab", 32),
						SourceHash: "q6s=",
					},
				},
			},
		},
	}
}

func TestManifestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ManifestFileName)
	if err := WriteManifest(path, validManifest()); err != nil {
		t.Fatalf("WriteManifest() error = %v", err)
	}
	m, err := ReadManifest(path)
	if err != nil {
		t.Fatalf("ReadManifest() error = %v", err)
	}
	if m.GeneratedAt == "" {
		t.Fatal("GeneratedAt not stamped on write")
	}
	if m.Stacks[0].Assets[0].SourceHash != "q6s=" {
		t.Fatalf("source hash = %q", m.Stacks[0].Assets[0].SourceHash)
	}
}

func TestManifestValidateRejectsUnsupportedSchemaVersion(t *testing.T) {
	m := validManifest()
	m.SchemaVersion = "2"
	if err := m.Validate(); err == nil || !strings.Contains(err.Error(), "unsupported schema_version") {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestManifestValidateRejectsMissingFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Manifest)
		want   string
	}{
		{"project", func(m *Manifest) { m.Project = "" }, "project is required"},
		{"stage", func(m *Manifest) { m.Stage = " " }, "stage is required"},
		{"stacks", func(m *Manifest) { m.Stacks = nil }, "at least one entry"},
		{"stack name", func(m *Manifest) { m.Stacks[0].Name = "" }, "name is required"},
		{"template", func(m *Manifest) { m.Stacks[0].Template = "" }, "template is required"},
		{"sha", func(m *Manifest) { m.Stacks[0].Assets[0].SHA256 = "xyz" }, "64 lowercase hex"},
		{"source hash", func(m *Manifest) { m.Stacks[0].Assets[0].SourceHash = "" }, "source_hash is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := validManifest()
			tc.mutate(&m)
			if err := m.Validate(); err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("Validate() error = %v, want %q", err, tc.want)
			}
		})
	}
}

func TestReadManifestRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), ManifestFileName)
	if err := WriteManifest(path, validManifest()); err != nil {
		t.Fatalf("WriteManifest() error = %v", err)
	}
	if _, err := ReadManifest(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Fatal("ReadManifest() expected error for missing file")
	}
}

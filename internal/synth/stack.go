// Where: internal/synth/stack.go
// What: Named stack wrapping one Terraform JSON document.
// Why: Stack builders declare resources and assets; emission stays with App.
package synth

import (
	"fmt"
	"path"
	"path/filepath"

	"github.com/julien-capellari/sls-cdktf-stack/internal/tfjson"
	"github.com/julien-capellari/sls-cdktf-stack/pkg/assethash"
)

// Stack is one named resource graph plus the assets its resources reference.
type Stack struct {
	name      string
	doc       *tfjson.Document
	assets    []Asset
	dependsOn []string
}

// Asset is a packaged bundle staged into the stack's output directory.
// Path is relative to the stack directory so emitted documents stay portable.
type Asset struct {
	Source string
	Path   string
	Digest assethash.Digest
}

// Name returns the stack's name.
func (s *Stack) Name() string {
	return s.name
}

// Document exposes the stack's Terraform document to builders.
func (s *Stack) Document() *tfjson.Document {
	return s.doc
}

// DependOn records that this stack must be applied after other. Duplicate
// registrations collapse.
func (s *Stack) DependOn(other string) {
	for _, dep := range s.dependsOn {
		if dep == other {
			return
		}
	}
	s.dependsOn = append(s.dependsOn, other)
}

// DependsOn returns the stacks this stack must be applied after.
func (s *Stack) DependsOn() []string {
	return append([]string(nil), s.dependsOn...)
}

// StageAsset fingerprints the bundle at source and records it for staging.
// The hash is computed here, before the referencing resource is declared: a
// missing or unreadable bundle aborts synthesis before anything is emitted.
// The returned asset path is keyed by the digest so a changed bundle yields a
// changed filename.
func (s *Stack) StageAsset(source string) (Asset, error) {
	digest, err := assethash.Sum(source)
	if err != nil {
		return Asset{}, fmt.Errorf("stack %s: %w", s.name, err)
	}

	asset := Asset{
		Source: source,
		Path:   path.Join("assets", digest.Hex(), filepath.Base(source)),
		Digest: digest,
	}
	s.assets = append(s.assets, asset)
	return asset, nil
}

// Assets returns the assets staged so far.
func (s *Stack) Assets() []Asset {
	return append([]Asset(nil), s.assets...)
}

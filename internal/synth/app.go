// Where: internal/synth/app.go
// What: Explicit synthesis root: stack registry and emit step.
// Why: Replace an implicit process-global graph root with a context object.
package synth

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dominikbraun/graph"

	"github.com/julien-capellari/sls-cdktf-stack/internal/tfjson"
)

const (
	stacksDirName    = "stacks"
	templateFileName = "cdk.tf.json"
)

// Options configures a synthesis app.
type Options struct {
	OutDir  string
	Project string
	Stage   string
}

// App owns the set of stacks for one synthesis run. Stacks are registered
// while builders run; nothing touches the filesystem until Synth.
type App struct {
	opts   Options
	stacks []*Stack
	byName map[string]*Stack
}

// Result describes one completed synthesis.
type Result struct {
	Dir      string
	Manifest Manifest
}

// NewApp validates options and returns an empty app.
func NewApp(opts Options) (*App, error) {
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, ErrOutDirRequired
	}
	if strings.TrimSpace(opts.Project) == "" {
		return nil, ErrProjectRequired
	}
	if strings.TrimSpace(opts.Stage) == "" {
		return nil, ErrStageRequired
	}
	return &App{
		opts:   opts,
		byName: map[string]*Stack{},
	}, nil
}

// Stack registers a new named stack. Names must be unique within the app.
func (a *App) Stack(name string) (*Stack, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrStackNameRequired
	}
	if _, exists := a.byName[name]; exists {
		return nil, fmt.Errorf("duplicate stack %s", name)
	}
	s := &Stack{
		name: name,
		doc:  tfjson.NewDocument(),
	}
	a.stacks = append(a.stacks, s)
	a.byName[name] = s
	return s, nil
}

// TemplatePath returns where a stack's document lands relative to the output
// directory.
func TemplatePath(stackName string) string {
	return filepath.Join(stacksDirName, stackName, templateFileName)
}

// Synth is the explicit finalize step: it orders stacks over their declared
// dependencies, encodes every document, and only then writes templates,
// staged assets, and the synthesis manifest. An error anywhere leaves the
// output directory untouched.
func (a *App) Synth() (Result, error) {
	order, err := a.applyOrder()
	if err != nil {
		return Result{}, err
	}

	encoded := make(map[string][]byte, len(order))
	for _, name := range order {
		payload, err := a.byName[name].doc.Encode()
		if err != nil {
			return Result{}, fmt.Errorf("stack %s: %w", name, err)
		}
		encoded[name] = payload
	}

	manifest := a.buildManifest(order)
	if err := manifest.Validate(); err != nil {
		return Result{}, err
	}

	for _, name := range order {
		s := a.byName[name]
		stackDir := filepath.Join(a.opts.OutDir, stacksDirName, name)
		if err := os.MkdirAll(stackDir, 0o755); err != nil {
			return Result{}, err
		}
		if err := os.WriteFile(filepath.Join(stackDir, templateFileName), encoded[name], 0o644); err != nil {
			return Result{}, err
		}
		for _, asset := range s.assets {
			if err := copyAsset(asset.Source, filepath.Join(stackDir, filepath.FromSlash(asset.Path))); err != nil {
				return Result{}, fmt.Errorf("stack %s: %w", name, err)
			}
		}
		slog.Debug("stack emitted", "stack", name, "assets", len(s.assets))
	}

	if err := WriteManifest(filepath.Join(a.opts.OutDir, ManifestFileName), manifest); err != nil {
		return Result{}, err
	}
	slog.Info("synthesis complete", "dir", a.opts.OutDir, "stacks", len(order))

	return Result{Dir: a.opts.OutDir, Manifest: manifest}, nil
}

// applyOrder sorts stacks so every stack lands after the stacks it depends
// on. Unknown dependencies and cycles are errors.
func (a *App) applyOrder() ([]string, error) {
	if len(a.stacks) == 0 {
		return nil, fmt.Errorf("no stacks registered")
	}

	dg := graph.New(graph.StringHash, graph.Directed(), graph.PreventCycles())
	for _, s := range a.stacks {
		if err := dg.AddVertex(s.name); err != nil {
			return nil, fmt.Errorf("add stack %s: %w", s.name, err)
		}
	}
	for _, s := range a.stacks {
		for _, dep := range s.dependsOn {
			if _, exists := a.byName[dep]; !exists {
				return nil, fmt.Errorf("stack %s depends on unknown stack %s", s.name, dep)
			}
			if err := dg.AddEdge(dep, s.name); err != nil {
				return nil, fmt.Errorf("stack dependency %s -> %s: %w", dep, s.name, err)
			}
		}
	}

	order, err := graph.StableTopologicalSort(dg, func(x, y string) bool { return x < y })
	if err != nil {
		return nil, fmt.Errorf("order stacks: %w", err)
	}
	return order, nil
}

func (a *App) buildManifest(order []string) Manifest {
	m := Manifest{
		SchemaVersion: ManifestSchemaVersionV1,
		Project:       a.opts.Project,
		Stage:         a.opts.Stage,
	}
	for _, name := range order {
		s := a.byName[name]
		entry := ManifestStack{
			Name:      name,
			Template:  filepath.ToSlash(TemplatePath(name)),
			DependsOn: s.DependsOn(),
		}
		for _, asset := range s.assets {
			entry.Assets = append(entry.Assets, ManifestAsset{
				Source:     asset.Source,
				Path:       asset.Path,
				SHA256:     asset.Digest.Hex(),
				SourceHash: asset.Digest.Base64(),
			})
		}
		m.Stacks = append(m.Stacks, entry)
	}
	return m
}

func copyAsset(source, target string) error {
	in, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("stage asset: %w", err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	out, err := os.Create(target)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("stage asset: %w", err)
	}
	return out.Close()
}

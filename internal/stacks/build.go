// Where: internal/stacks/build.go
// What: Orchestrates one stack per declared service.
// Why: Thread upstream URLs between stacks in a fixed apply order.
package stacks

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/julien-capellari/sls-cdktf-stack/internal/config"
	"github.com/julien-capellari/sls-cdktf-stack/internal/synth"
)

// BuildInput carries the validated configuration and the resolved
// environment into stack construction.
type BuildInput struct {
	Config config.Config
	Region string
}

// Build registers one stack per service on the app. A service with an
// upstream consumes that stack's api_url through remote state and is ordered
// after it; everything else the engine resolves on its own.
func Build(app *synth.App, in BuildInput) error {
	for _, svc := range in.Config.Services {
		naming := Naming{
			Project: in.Config.Project,
			Stage:   in.Config.Stage,
			Service: svc.Name,
		}

		stack, err := app.Stack(naming.StackName())
		if err != nil {
			return err
		}

		backendPath, err := statePath(in.Config, naming.StackName())
		if err != nil {
			return err
		}
		req := BuildRequest{
			Naming:           naming,
			Region:           in.Region,
			Profile:          in.Config.Profile,
			Service:          svc,
			BackendStatePath: backendPath,
		}

		if svc.Upstream != "" {
			upstreamNaming := Naming{
				Project: in.Config.Project,
				Stage:   in.Config.Stage,
				Service: svc.Upstream,
			}
			req.UpstreamStatePath, err = statePath(in.Config, upstreamNaming.StackName())
			if err != nil {
				return err
			}
			stack.DependOn(upstreamNaming.StackName())
		}

		if err := BuildService(stack, req); err != nil {
			return err
		}
		slog.Debug("stack built", "stack", naming.StackName(), "service", svc.Name, "upstream", svc.Upstream)
	}
	return nil
}

// statePath locates a stack's state file relative to its emitted directory,
// so the documents stay valid wherever the output tree is checked out. An
// absolute state directory is passed through as-is.
func statePath(cfg config.Config, stackName string) (string, error) {
	stateFile := filepath.Join(cfg.StateDir, stackName+".tfstate")
	if filepath.IsAbs(cfg.StateDir) {
		return filepath.ToSlash(stateFile), nil
	}
	stackDir := filepath.Join(cfg.Output, "stacks", stackName)
	if filepath.IsAbs(stackDir) {
		abs, err := filepath.Abs(stateFile)
		if err != nil {
			return "", fmt.Errorf("state path for %s: %w", stackName, err)
		}
		stateFile = abs
	}
	rel, err := filepath.Rel(stackDir, stateFile)
	if err != nil {
		return "", fmt.Errorf("state path for %s: %w", stackName, err)
	}
	return filepath.ToSlash(rel), nil
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/julien-capellari/sls-cdktf-stack/internal/awsenv"
	"github.com/julien-capellari/sls-cdktf-stack/internal/config"
	"github.com/julien-capellari/sls-cdktf-stack/internal/logger"
	"github.com/julien-capellari/sls-cdktf-stack/internal/stacks"
	"github.com/julien-capellari/sls-cdktf-stack/internal/synth"
	"github.com/julien-capellari/sls-cdktf-stack/pkg/assethash"
)

type CLI struct {
	Synth    SynthCmd    `cmd:"" help:"Synthesize stack documents for the provisioning engine"`
	Hash     HashCmd     `cmd:"" help:"Print the content fingerprint of a packaged bundle"`
	Validate ValidateCmd `cmd:"" help:"Validate the project file and list resolved stacks"`
}

type SynthCmd struct {
	Config string `name:"config" default:"sls.yml" help:"Path to the project file"`
	Stage  string `name:"stage" help:"Override the configured stage"`
	Out    string `name:"out" help:"Override the configured output directory"`
}

type HashCmd struct {
	Path string `arg:"" help:"Path to the packaged bundle"`
}

type ValidateCmd struct {
	Config string `name:"config" default:"sls.yml" help:"Path to the project file"`
}

type kongExitCode int

type commandDeps struct {
	loadConfig   func(string) (config.Config, error)
	resolveEnv   func(context.Context, string, string) (awsenv.Env, error)
	synthesize   func(config.Config, awsenv.Env) (synth.Result, error)
	hashArtifact func(string) (assethash.Digest, error)
	out          io.Writer
	errOut       io.Writer
}

func main() {
	logger.Init()
	os.Exit(run(os.Args[1:], defaultDeps()))
}

func defaultDeps() commandDeps {
	return commandDeps{
		loadConfig:   config.Load,
		resolveEnv:   awsenv.Resolve,
		synthesize:   synthesize,
		hashArtifact: assethash.Sum,
		out:          os.Stdout,
		errOut:       os.Stderr,
	}
}

func run(args []string, deps commandDeps) (exitCode int) {
	out := deps.out
	if out == nil {
		out = os.Stdout
	}
	errOut := deps.errOut
	if errOut == nil {
		errOut = os.Stderr
	}
	cli := CLI{}
	parser, err := kong.New(
		&cli,
		kong.Name("slsctl"),
		kong.Description("Compose serverless stacks and synthesize them for the provisioning engine."),
		kong.Writers(out, errOut),
		kong.Exit(func(code int) {
			panic(kongExitCode(code))
		}),
	)
	if err != nil {
		_, _ = fmt.Fprintf(errOut, "Error: initialize command parser: %v\n", err)
		return 1
	}
	defer func() {
		recovered := recover()
		if recovered == nil {
			return
		}
		code, ok := recovered.(kongExitCode)
		if !ok {
			panic(recovered)
		}
		exitCode = int(code)
	}()
	ctx, err := parser.Parse(args)
	if err != nil {
		_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
		_, _ = fmt.Fprintln(errOut, "Hint: run `slsctl --help`, `slsctl synth --help`, or `slsctl validate --help`.")
		return 1
	}
	switch ctx.Command() {
	case "synth":
		if err := runSynth(cli.Synth, deps, out); err != nil {
			_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
			return 1
		}
		return 0
	case "hash <path>":
		if err := runHash(cli.Hash, deps, out); err != nil {
			_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
			return 1
		}
		return 0
	case "validate":
		if err := runValidate(cli.Validate, deps, out); err != nil {
			_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
			return 1
		}
		return 0
	default:
		_, _ = fmt.Fprintf(errOut, "Error: unsupported command: %s\n", ctx.Command())
		_, _ = fmt.Fprintln(errOut, "Hint: run `slsctl --help`.")
		return 1
	}
}

func runSynth(cmd SynthCmd, deps commandDeps, out io.Writer) error {
	cfg, err := deps.loadConfig(cmd.Config)
	if err != nil {
		return err
	}
	if cmd.Stage != "" {
		cfg.Stage = cmd.Stage
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	if cmd.Out != "" {
		cfg.Output = cmd.Out
	}

	env, err := deps.resolveEnv(context.Background(), cfg.Region, cfg.Profile)
	if err != nil {
		return err
	}

	result, err := deps.synthesize(cfg, env)
	if err != nil {
		return err
	}
	for _, s := range result.Manifest.Stacks {
		_, _ = fmt.Fprintf(out, "synthesized %s -> %s\n", s.Name, s.Template)
	}
	_, _ = fmt.Fprintf(out, "output written to %s\n", result.Dir)
	return nil
}

func synthesize(cfg config.Config, env awsenv.Env) (synth.Result, error) {
	app, err := synth.NewApp(synth.Options{
		OutDir:  cfg.Output,
		Project: cfg.Project,
		Stage:   cfg.Stage,
	})
	if err != nil {
		return synth.Result{}, err
	}
	if err := stacks.Build(app, stacks.BuildInput{Config: cfg, Region: env.Region}); err != nil {
		return synth.Result{}, err
	}
	return app.Synth()
}

func runHash(cmd HashCmd, deps commandDeps, out io.Writer) error {
	digest, err := deps.hashArtifact(cmd.Path)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out, digest.Base64())
	return nil
}

func runValidate(cmd ValidateCmd, deps commandDeps, out io.Writer) error {
	cfg, err := deps.loadConfig(cmd.Config)
	if err != nil {
		return err
	}
	for _, svc := range cfg.Services {
		naming := stacks.Naming{Project: cfg.Project, Stage: cfg.Stage, Service: svc.Name}
		if svc.Upstream != "" {
			_, _ = fmt.Fprintf(out, "%s (upstream: %s)\n", naming.StackName(), svc.Upstream)
			continue
		}
		_, _ = fmt.Fprintln(out, naming.StackName())
	}
	return nil
}

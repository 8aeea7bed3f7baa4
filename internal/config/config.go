// Where: internal/config/config.go
// What: Project configuration load and validation.
// Why: Reject malformed stacks before any resource is declared.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultProject   = "sls"
	DefaultOutputDir = "cdktf.out"
	DefaultStateDir  = "tfstate"
	DefaultRuntime   = "nodejs20.x"

	defaultMemorySize = 128
	defaultTimeout    = 10
)

// nameToken constrains stage and service names: they are threaded through
// every resource name and must stay safe for AWS naming rules.
var nameToken = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// Config is the parsed sls.yml project file.
type Config struct {
	Project  string        `yaml:"project"`
	Stage    string        `yaml:"stage"`
	Region   string        `yaml:"region,omitempty"`
	Profile  string        `yaml:"profile,omitempty"`
	Output   string        `yaml:"output,omitempty"`
	StateDir string        `yaml:"state_dir,omitempty"`
	Services []ServiceSpec `yaml:"services"`
}

// ServiceSpec declares one serverless service: a packaged bundle exposed
// behind its own HTTP API, with its own table and role.
type ServiceSpec struct {
	Name        string            `yaml:"name"`
	Artifact    string            `yaml:"artifact"`
	Handler     string            `yaml:"handler"`
	Runtime     string            `yaml:"runtime,omitempty"`
	MemorySize  int               `yaml:"memory,omitempty"`
	Timeout     int               `yaml:"timeout,omitempty"`
	Environment map[string]string `yaml:"environment,omitempty"`

	// Upstream names another service in the same project whose API URL is
	// injected into this service's function as UPSTREAM_URL.
	Upstream string `yaml:"upstream,omitempty"`
}

// Load reads and validates a project file. Defaults are applied before
// validation so a validated Config is fully populated.
func Load(path string) (Config, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(payload, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Project) == "" {
		c.Project = DefaultProject
	}
	if strings.TrimSpace(c.Output) == "" {
		c.Output = DefaultOutputDir
	}
	if strings.TrimSpace(c.StateDir) == "" {
		c.StateDir = DefaultStateDir
	}
	for i := range c.Services {
		s := &c.Services[i]
		if strings.TrimSpace(s.Runtime) == "" {
			s.Runtime = DefaultRuntime
		}
		if s.MemorySize == 0 {
			s.MemorySize = defaultMemorySize
		}
		if s.Timeout == 0 {
			s.Timeout = defaultTimeout
		}
	}
}

// Validate fails fast on anything that would produce an invalid resource
// name or an unresolvable upstream reference.
func (c Config) Validate() error {
	if !nameToken.MatchString(c.Project) {
		return fmt.Errorf("project must match %s, got %q", nameToken, c.Project)
	}
	if strings.TrimSpace(c.Stage) == "" {
		return fmt.Errorf("stage is required")
	}
	if !nameToken.MatchString(c.Stage) {
		return fmt.Errorf("stage must match %s, got %q", nameToken, c.Stage)
	}
	if len(c.Services) == 0 {
		return fmt.Errorf("services must contain at least one entry")
	}

	seen := make(map[string]bool, len(c.Services))
	for i, s := range c.Services {
		if err := s.validate(i); err != nil {
			return err
		}
		if seen[s.Name] {
			return fmt.Errorf("services[%d]: duplicate service name %q", i, s.Name)
		}
		seen[s.Name] = true
	}
	for i, s := range c.Services {
		if s.Upstream == "" {
			continue
		}
		if s.Upstream == s.Name {
			return fmt.Errorf("services[%d]: service %q cannot be its own upstream", i, s.Name)
		}
		if !seen[s.Upstream] {
			return fmt.Errorf("services[%d]: upstream %q is not a declared service", i, s.Upstream)
		}
	}
	return nil
}

func (s ServiceSpec) validate(index int) error {
	prefix := fmt.Sprintf("services[%d]", index)
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if !nameToken.MatchString(s.Name) {
		return fmt.Errorf("%s.name must match %s, got %q", prefix, nameToken, s.Name)
	}
	if strings.TrimSpace(s.Artifact) == "" {
		return fmt.Errorf("%s.artifact is required", prefix)
	}
	if strings.TrimSpace(s.Handler) == "" {
		return fmt.Errorf("%s.handler is required", prefix)
	}
	if s.MemorySize < 0 {
		return fmt.Errorf("%s.memory must not be negative", prefix)
	}
	if s.Timeout < 0 {
		return fmt.Errorf("%s.timeout must not be negative", prefix)
	}
	return nil
}

// Service returns the declared service with the given name.
func (c Config) Service(name string) (ServiceSpec, bool) {
	for _, s := range c.Services {
		if s.Name == name {
			return s, true
		}
	}
	return ServiceSpec{}, false
}

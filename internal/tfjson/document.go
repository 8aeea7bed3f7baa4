// Where: internal/tfjson/document.go
// What: Terraform JSON configuration document model.
// Why: Give stack builders a typed surface over the engine's wire format.
package tfjson

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Document is one Terraform JSON configuration file. Blocks are plain maps so
// encoding/json renders them exactly as the engine expects; map keys encode
// in sorted order, which keeps emitted files byte-stable for a given graph.
type Document struct {
	Terraform *Settings                            `json:"terraform,omitempty"`
	Provider  map[string][]map[string]any          `json:"provider,omitempty"`
	Resource  map[string]map[string]map[string]any `json:"resource,omitempty"`
	Data      map[string]map[string]map[string]any `json:"data,omitempty"`
	Output    map[string]Output                    `json:"output,omitempty"`
}

// Settings is the document-level terraform block.
type Settings struct {
	RequiredProviders map[string]RequiredProvider `json:"required_providers,omitempty"`
	Backend           map[string]map[string]any   `json:"backend,omitempty"`
}

// RequiredProvider pins a provider source and version constraint.
type RequiredProvider struct {
	Source  string `json:"source"`
	Version string `json:"version,omitempty"`
}

// Output is a declared stack output.
type Output struct {
	Value       any    `json:"value"`
	Description string `json:"description,omitempty"`
	Sensitive   bool   `json:"sensitive,omitempty"`
}

func NewDocument() *Document {
	return &Document{}
}

// RequireProvider records a provider requirement in the terraform block.
func (d *Document) RequireProvider(name string, req RequiredProvider) {
	if d.Terraform == nil {
		d.Terraform = &Settings{}
	}
	if d.Terraform.RequiredProviders == nil {
		d.Terraform.RequiredProviders = map[string]RequiredProvider{}
	}
	d.Terraform.RequiredProviders[name] = req
}

// SetBackend configures the state backend for this document.
func (d *Document) SetBackend(kind string, args map[string]any) {
	if d.Terraform == nil {
		d.Terraform = &Settings{}
	}
	d.Terraform.Backend = map[string]map[string]any{kind: args}
}

// AddProvider appends a provider configuration block.
func (d *Document) AddProvider(name string, args map[string]any) {
	if d.Provider == nil {
		d.Provider = map[string][]map[string]any{}
	}
	d.Provider[name] = append(d.Provider[name], args)
}

// AddResource declares a resource. The (type, name) address must be unique
// within the document.
func (d *Document) AddResource(rtype, name string, args map[string]any) error {
	if err := validateAddress(rtype, name); err != nil {
		return err
	}
	if d.Resource == nil {
		d.Resource = map[string]map[string]map[string]any{}
	}
	byName := d.Resource[rtype]
	if byName == nil {
		byName = map[string]map[string]any{}
		d.Resource[rtype] = byName
	}
	if _, exists := byName[name]; exists {
		return fmt.Errorf("duplicate resource address %s.%s", rtype, name)
	}
	byName[name] = args
	return nil
}

// AddData declares a data source, with the same uniqueness rule as resources.
func (d *Document) AddData(dtype, name string, args map[string]any) error {
	if err := validateAddress(dtype, name); err != nil {
		return err
	}
	if d.Data == nil {
		d.Data = map[string]map[string]map[string]any{}
	}
	byName := d.Data[dtype]
	if byName == nil {
		byName = map[string]map[string]any{}
		d.Data[dtype] = byName
	}
	if _, exists := byName[name]; exists {
		return fmt.Errorf("duplicate data address %s.%s", dtype, name)
	}
	byName[name] = args
	return nil
}

// AddOutput declares a named output value.
func (d *Document) AddOutput(name string, out Output) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("output name must not be blank")
	}
	if d.Output == nil {
		d.Output = map[string]Output{}
	}
	if _, exists := d.Output[name]; exists {
		return fmt.Errorf("duplicate output %s", name)
	}
	d.Output[name] = out
	return nil
}

// Encode renders the document as indented JSON with a trailing newline.
func (d *Document) Encode() ([]byte, error) {
	payload, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return append(payload, '\n'), nil
}

func validateAddress(btype, name string) error {
	if strings.TrimSpace(btype) == "" {
		return fmt.Errorf("block type must not be blank")
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("block name must not be blank")
	}
	return nil
}

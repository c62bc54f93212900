package config

import (
	"fmt"
	"math"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// evalContext exposes unit variables to configuration expressions. Values
// convert to working units: lengths to metres, angles to radians.
func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"mm":   cty.NumberFloatVal(0.001),
			"cm":   cty.NumberFloatVal(0.01),
			"m":    cty.NumberFloatVal(1),
			"inch": cty.NumberFloatVal(0.0254),
			"ft":   cty.NumberFloatVal(0.3048),
			"deg":  cty.NumberFloatVal(math.Pi / 180),
			"rad":  cty.NumberFloatVal(1),
		},
	}
}

// Load reads an HCL configuration file, applies defaults and validates.
func Load(path string) (*Config, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, diags)
	}
	return decode(f, path)
}

// Parse reads HCL configuration from memory.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("config: failed to parse %s: %w", filename, diags)
	}
	return decode(f, filename)
}

func decode(f *hcl.File, name string) (*Config, error) {
	var cfg Config
	if diags := gohcl.DecodeBody(f.Body, evalContext(), &cfg); diags.HasErrors() {
		return nil, fmt.Errorf("config: failed to decode %s: %w", name, diags)
	}
	cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return &cfg, nil
}

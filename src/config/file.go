package config

import (
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

//hclFile represents the top-level structure of a configuration file for decoding
type hclFile struct {
	Width       *int           `hcl:"width,optional"`
	Height      *int           `hcl:"height,optional"`
	Interval    *string        `hcl:"interval,optional"`
	MaxSteps    *int           `hcl:"max_steps,optional"`
	Interactive *bool          `hcl:"interactive,optional"`
	Seed        *hclSeed       `hcl:"seed,block"`
	Log         *hclLog        `hcl:"log,block"`
	Templates   []*hclTemplate `hcl:"template,block"`
}

type hclSeed struct {
	Strategy    *string  `hcl:"strategy,optional"`
	Probability *float64 `hcl:"probability,optional"`
	RandomSeed  *int64   `hcl:"random_seed,optional"`
	Template    *string  `hcl:"template,optional"`
	X           *int     `hcl:"x,optional"`
	Y           *int     `hcl:"y,optional"`
	Centered    *bool    `hcl:"centered,optional"`
}

type hclLog struct {
	Level  *string `hcl:"level,optional"`
	Format *string `hcl:"format,optional"`
}

type hclTemplate struct {
	Name        string  `hcl:"name,label"`
	Description *string `hcl:"description,optional"`
	Rows        string  `hcl:"rows"`
}

//LoadFile reads the HCL file at path over the defaults
func LoadFile(path string) (*Config, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}
	return decode(f, path)
}

//Parse reads HCL source over the defaults, filename is used in diagnostics only
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	return decode(f, filename)
}

func decode(f *hcl.File, filename string) (*Config, error) {
	var parsed hclFile
	if diags := gohcl.DecodeBody(f.Body, nil, &parsed); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	c := Default()
	setInt(&c.Width, parsed.Width)
	setInt(&c.Height, parsed.Height)
	setInt(&c.MaxSteps, parsed.MaxSteps)
	if parsed.Interval != nil {
		d, err := time.ParseDuration(*parsed.Interval)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: interval: %v", ErrInvalid, filename, err)
		}
		c.Interval = d
	}
	if parsed.Interactive != nil {
		c.Interactive = *parsed.Interactive
	}

	if s := parsed.Seed; s != nil {
		if s.Strategy != nil {
			c.Seed.Strategy = *s.Strategy
		}
		if s.Probability != nil {
			c.Seed.Probability = *s.Probability
		}
		if s.RandomSeed != nil {
			c.Seed.RandomSeed = *s.RandomSeed
		}
		if s.Template != nil {
			c.Seed.Template = *s.Template
			if s.Strategy == nil {
				c.Seed.Strategy = StrategyTemplate
			}
		}
		c.Seed.X = s.X
		c.Seed.Y = s.Y
		if s.Centered != nil {
			c.Seed.Centered = *s.Centered
		}
	}

	if l := parsed.Log; l != nil {
		if l.Level != nil {
			c.LogLevel = *l.Level
		}
		if l.Format != nil {
			c.LogFormat = *l.Format
		}
	}

	for _, t := range parsed.Templates {
		def := TemplateDef{Name: t.Name, Rows: t.Rows}
		if t.Description != nil {
			def.Description = *t.Description
		}
		c.Templates = append(c.Templates, def)
	}
	return c, nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

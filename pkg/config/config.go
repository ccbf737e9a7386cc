// Package config loads sfcmap settings from YAML or HCL.
package config

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/spf13/afero"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/walteh/sfcmap/pkg/interpolation"
	"github.com/walteh/sfcmap/pkg/mask"
)

type Config struct {
	Interpolation *InterpolationBlock `json:"interpolation,omitempty" yaml:"interpolation,omitempty" hcl:"interpolation,block"`
	Markdown      *MarkdownBlock      `json:"markdown,omitempty" yaml:"markdown,omitempty" hcl:"markdown,block"`
}

type InterpolationBlock struct {
	// Style is "dotted" or "bracketed".
	Style          string   `json:"style,omitempty" yaml:"style,omitempty" hcl:"style,optional"`
	Context        string   `json:"context,omitempty" yaml:"context,omitempty" hcl:"context,optional"`
	ReservedPrefix string   `json:"reserved_prefix,omitempty" yaml:"reserved_prefix,omitempty" hcl:"reserved_prefix,optional"`
	Globals        []string `json:"globals,omitempty" yaml:"globals,omitempty" hcl:"globals,optional"`
}

type MarkdownBlock struct {
	BlockTags []string `json:"block_tags,omitempty" yaml:"block_tags,omitempty" hcl:"block_tags,optional"`
}

func Default() *Config {
	opts := interpolation.DefaultOptions()
	return &Config{
		Interpolation: &InterpolationBlock{
			Style:          opts.Style.String(),
			Context:        opts.ContextName,
			ReservedPrefix: opts.ReservedPrefix,
			Globals:        append([]string(nil), opts.Globals...),
		},
		Markdown: &MarkdownBlock{
			BlockTags: append([]string(nil), mask.DefaultBlockTags...),
		},
	}
}

// Load reads path from fsys. Files ending in .yaml or .yml are YAML, anything
// else is HCL. Settings the file leaves out keep their defaults.
func Load(fsys afero.Fs, path string) (*Config, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	var cfg Config

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, errors.Errorf("parsing YAML: %w", err)
		}
	default:
		parser := hclparse.NewParser()
		hclFile, diags := parser.ParseHCL(data, path)
		if diags.HasErrors() {
			return nil, errors.Errorf("parsing HCL: %s", diags.Error())
		}

		ctx := &hcl.EvalContext{
			Variables: map[string]cty.Value{
				"default_globals": stringList(interpolation.DefaultGlobals),
			},
		}

		diags = gohcl.DecodeBody(hclFile.Body, ctx, &cfg)
		if diags.HasErrors() {
			return nil, errors.Errorf("decoding HCL: %s", diags.Error())
		}
	}

	cfg.fill(Default())

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating %s: %w", path, err)
	}

	return &cfg, nil
}

func stringList(values []string) cty.Value {
	list := make([]cty.Value, 0, len(values))
	for _, v := range values {
		list = append(list, cty.StringVal(v))
	}
	return cty.ListVal(list)
}

func (me *Config) fill(def *Config) {
	if me.Interpolation == nil {
		me.Interpolation = def.Interpolation
	} else {
		in := me.Interpolation
		if in.Style == "" {
			in.Style = def.Interpolation.Style
		}
		if in.Context == "" {
			in.Context = def.Interpolation.Context
		}
		if in.ReservedPrefix == "" {
			in.ReservedPrefix = def.Interpolation.ReservedPrefix
		}
		if in.Globals == nil {
			in.Globals = def.Interpolation.Globals
		}
	}

	if me.Markdown == nil {
		me.Markdown = def.Markdown
	} else if me.Markdown.BlockTags == nil {
		me.Markdown.BlockTags = def.Markdown.BlockTags
	}
}

// Validate reports every problem at once.
func (me *Config) Validate() error {
	var errs error

	if me.Interpolation != nil {
		if _, err := interpolation.ParseStyle(me.Interpolation.Style); err != nil {
			errs = multierr.Append(errs, err)
		}
		if me.Interpolation.Context != "" && !isIdentifier(me.Interpolation.Context) {
			errs = multierr.Append(errs, errors.Errorf("context %q is not an identifier", me.Interpolation.Context))
		}
		for _, g := range me.Interpolation.Globals {
			if !isIdentifier(g) {
				errs = multierr.Append(errs, errors.Errorf("global %q is not an identifier", g))
			}
		}
	}

	if me.Markdown != nil {
		seen := map[string]bool{}
		for _, tag := range me.Markdown.BlockTags {
			switch {
			case !isTagName(tag):
				errs = multierr.Append(errs, errors.Errorf("block tag %q is not a tag name", tag))
			case seen[tag]:
				errs = multierr.Append(errs, errors.Errorf("block tag %q listed twice", tag))
			}
			seen[tag] = true
		}
	}

	return errs
}

// InterpolationOptions converts the interpolation block. Call Validate first.
func (me *Config) InterpolationOptions() interpolation.Options {
	opts := interpolation.DefaultOptions()
	if me.Interpolation == nil {
		return opts
	}

	if style, err := interpolation.ParseStyle(me.Interpolation.Style); err == nil {
		opts.Style = style
	}
	if me.Interpolation.Context != "" {
		opts.ContextName = me.Interpolation.Context
	}
	if me.Interpolation.ReservedPrefix != "" {
		opts.ReservedPrefix = me.Interpolation.ReservedPrefix
	}
	if me.Interpolation.Globals != nil {
		opts.Globals = me.Interpolation.Globals
	}
	return opts
}

func (me *Config) MaskOptions() mask.Options {
	opts := mask.DefaultOptions()
	if me.Markdown != nil && me.Markdown.BlockTags != nil {
		opts.BlockTags = me.Markdown.BlockTags
	}
	return opts
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

func isTagName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '-'):
		default:
			return false
		}
	}
	return true
}

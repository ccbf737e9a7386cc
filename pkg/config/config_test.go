package config_test

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/sfcmap/pkg/config"
	"github.com/walteh/sfcmap/pkg/interpolation"
	"github.com/walteh/sfcmap/pkg/mask"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		config      string
		expectError bool
		validate    func(t *testing.T, cfg *config.Config)
	}{
		{
			name: "yaml",
			path: "sfcmap.yaml",
			config: `
interpolation:
  style: bracketed
  context: ctx
markdown:
  block_tags: [script, style, i18n]
`,
			validate: func(t *testing.T, cfg *config.Config) {
				opts := cfg.InterpolationOptions()
				assert.Equal(t, interpolation.Bracketed, opts.Style)
				assert.Equal(t, "ctx", opts.ContextName)
				assert.Equal(t, interpolation.DefaultReservedPrefix, opts.ReservedPrefix)
				assert.Equal(t, interpolation.DefaultGlobals, opts.Globals)
				assert.Equal(t, []string{"script", "style", "i18n"}, cfg.MaskOptions().BlockTags)
			},
		},
		{
			name: "hcl",
			path: "sfcmap.hcl",
			config: `
interpolation {
  reserved_prefix = "__gen_"
  globals         = default_globals
}
`,
			validate: func(t *testing.T, cfg *config.Config) {
				opts := cfg.InterpolationOptions()
				assert.Equal(t, interpolation.Dotted, opts.Style)
				assert.Equal(t, "__gen_", opts.ReservedPrefix)
				assert.Equal(t, interpolation.DefaultGlobals, opts.Globals)
				assert.Equal(t, mask.DefaultBlockTags, cfg.MaskOptions().BlockTags)
			},
		},
		{
			name:        "unknown yaml field",
			path:        "sfcmap.yml",
			config:      "interpolation:\n  flavor: dotted\n",
			expectError: true,
		},
		{
			name:        "invalid style",
			path:        "sfcmap.yaml",
			config:      "interpolation:\n  style: arrow\n",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fsys, tt.path, []byte(tt.config), 0o644))

			cfg, err := config.Load(fsys, tt.path)
			if tt.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.validate(t, cfg)
		})
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := config.Load(afero.NewMemMapFs(), "nope.yaml")
	require.Error(t, err)
}

func TestValidate_Aggregates(t *testing.T) {
	cfg := config.Default()
	cfg.Interpolation.Style = "arrow"
	cfg.Interpolation.Globals = []string{"ok", "not ok"}
	cfg.Markdown.BlockTags = []string{"script", "script", "1bad"}

	err := cfg.Validate()
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, `unknown indirection style "arrow"`)
	assert.Contains(t, msg, `global "not ok"`)
	assert.Contains(t, msg, `block tag "script" listed twice`)
	assert.Contains(t, msg, `block tag "1bad"`)
}

func TestDefault(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, interpolation.DefaultOptions(), cfg.InterpolationOptions())
}

package rewrite_expression_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rewrite_expression "github.com/walteh/sfcmap/cmd/sfcmap/rewrite-expression"
)

func TestRun(t *testing.T) {
	tests := []struct {
		name   string
		expr   string
		config string
		style  string
		bound  []string
		want   []string
	}{
		{
			name:  "dotted with bound props",
			expr:  "props.title + title",
			bound: []string{"props"},
			want:  []string{"props.title + __VLS_ctx.title\n", "free: title\n"},
		},
		{
			name:  "bracketed flag",
			expr:  "count + 1",
			style: "bracketed",
			want:  []string{"__VLS_ctx['count'] + 1\n"},
		},
		{
			name:   "context from config",
			expr:   "a",
			config: "interpolation:\n  context: vm\n",
			want:   []string{"vm.a\n", "free: a\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			configPath := ""
			if tt.config != "" {
				configPath = "sfcmap.yaml"
				require.NoError(t, afero.WriteFile(fs, configPath, []byte(tt.config), 0o644))
			}

			var out bytes.Buffer
			h := rewrite_expression.NewHandler(fs, &out, configPath, tt.style, tt.bound)
			require.NoError(t, h.Run(context.Background(), tt.expr))

			for _, want := range tt.want {
				assert.Contains(t, out.String(), want)
			}
		})
	}
}

func TestRun_Errors(t *testing.T) {
	var out bytes.Buffer

	h := rewrite_expression.NewHandler(afero.NewMemMapFs(), &out, "", "arrow", nil)
	assert.Error(t, h.Run(context.Background(), "a"))

	h = rewrite_expression.NewHandler(afero.NewMemMapFs(), &out, "", "", nil)
	assert.Error(t, h.Run(context.Background(), "}}{{"))

	h = rewrite_expression.NewHandler(afero.NewMemMapFs(), &out, "missing.yaml", "", nil)
	assert.Error(t, h.Run(context.Background(), "a"))
}

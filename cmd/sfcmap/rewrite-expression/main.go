package rewrite_expression

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/sfcmap/pkg/config"
	"github.com/walteh/sfcmap/pkg/interpolation"
	"github.com/walteh/sfcmap/pkg/position"
	"github.com/walteh/sfcmap/pkg/scope"
)

type Handler struct {
	fs         afero.Fs
	out        io.Writer
	configPath string
	style      string
	bound      []string
	showRanges bool
}

func NewRewriteCommand() *cobra.Command {
	me := &Handler{fs: afero.NewOsFs()}

	cmd := &cobra.Command{
		Use:   "rewrite [expression]",
		Short: "route the free identifiers of a template expression through the context object",
	}

	cmd.Flags().StringVar(&me.configPath, "config", "", "path to a yaml or hcl config file")
	cmd.Flags().StringVar(&me.style, "style", "", "indirection style, dotted or bracketed (overrides the config)")
	cmd.Flags().StringSliceVar(&me.bound, "bound", nil, "names already bound around the expression")
	cmd.Flags().BoolVar(&me.showRanges, "ranges", true, "print the mapped ranges")
	cmd.Args = cobra.ExactArgs(1)
	cmd.SilenceUsage = true

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		me.out = cmd.OutOrStdout()
		return me.Run(cmd.Context(), args[0])
	}

	return cmd
}

// NewHandler is used by tests to run against an in-memory filesystem.
func NewHandler(fs afero.Fs, out io.Writer, configPath, style string, bound []string) *Handler {
	return &Handler{fs: fs, out: out, configPath: configPath, style: style, bound: bound, showRanges: true}
}

func (me *Handler) Run(ctx context.Context, expression string) error {
	opts, err := me.options()
	if err != nil {
		return err
	}

	res, err := interpolation.RewriteExpression(ctx, expression, scope.NewTable(me.bound...), opts)
	if err != nil {
		return errors.Errorf("rewriting: %w", err)
	}

	fmt.Fprintf(me.out, "%s\n", res.Generated())
	fmt.Fprintf(me.out, "free: %s\n", strings.Join(res.Names(), ", "))

	if !me.showRanges {
		return nil
	}

	generated := res.Generated()
	mapping := res.Mapping()

	tw := table.NewWriter()
	tw.SetOutputMirror(me.out)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"generated", "source", "text"})
	for _, r := range mapping.Ranges() {
		gen := position.NewBasicPosition(generated[r.GeneratedStart:r.GeneratedEnd], r.GeneratedStart)
		src := "-"
		if pos, ok := position.Translate(mapping, gen, expression); ok {
			src = pos.String()
		}
		tw.AppendRow(table.Row{gen.String(), src, fmt.Sprintf("%q", gen.Text)})
	}
	tw.Render()

	return nil
}

func (me *Handler) options() (interpolation.Options, error) {
	cfg := config.Default()
	if me.configPath != "" {
		loaded, err := config.Load(me.fs, me.configPath)
		if err != nil {
			return interpolation.Options{}, errors.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	opts := cfg.InterpolationOptions()

	if me.style != "" {
		style, err := interpolation.ParseStyle(me.style)
		if err != nil {
			return interpolation.Options{}, err
		}
		opts.Style = style
	}

	return opts, nil
}

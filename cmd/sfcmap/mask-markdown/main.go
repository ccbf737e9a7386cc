package mask_markdown

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strconv"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-multierror"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/sfcmap/pkg/config"
	"github.com/walteh/sfcmap/pkg/diff"
	"github.com/walteh/sfcmap/pkg/mask"
	"github.com/walteh/sfcmap/pkg/position"
	"github.com/walteh/sfcmap/pkg/sfc"
)

type Handler struct {
	fs         afero.Fs
	out        io.Writer
	configPath string
	showDiff   bool
	showText   bool
}

func NewMaskCommand() *cobra.Command {
	me := &Handler{fs: afero.NewOsFs()}

	cmd := &cobra.Command{
		Use:   "mask [glob...]",
		Short: "extract the component blocks of markdown documents",
	}

	cmd.Flags().StringVar(&me.configPath, "config", "", "path to a yaml or hcl config file")
	cmd.Flags().BoolVar(&me.showDiff, "diff", false, "show how the generated text differs from the document")
	cmd.Flags().BoolVar(&me.showText, "print", false, "print the generated text")
	cmd.Args = cobra.MinimumNArgs(1)
	cmd.SilenceUsage = true

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		me.out = cmd.OutOrStdout()
		return me.Run(cmd.Context(), args)
	}

	return cmd
}

// NewHandler is used by tests to run against an in-memory filesystem.
func NewHandler(fs afero.Fs, out io.Writer, configPath string, showDiff bool) *Handler {
	return &Handler{fs: fs, out: out, configPath: configPath, showDiff: showDiff}
}

func (me *Handler) Run(ctx context.Context, patterns []string) error {
	cfg := config.Default()
	if me.configPath != "" {
		loaded, err := config.Load(me.fs, me.configPath)
		if err != nil {
			return errors.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}
	opts := cfg.MaskOptions()

	files, err := me.expand(patterns)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		zerolog.Ctx(ctx).Warn().Strs("patterns", patterns).Msg("no markdown documents matched")
		return nil
	}

	var result *multierror.Error
	for _, file := range files {
		if err := me.maskFile(ctx, file, opts); err != nil {
			result = multierror.Append(result, errors.Errorf("masking %s: %w", file, err))
		}
	}

	return result.ErrorOrNil()
}

func (me *Handler) expand(patterns []string) ([]string, error) {
	seen := map[string]bool{}
	var files []string

	for _, pattern := range patterns {
		base, rest := doublestar.SplitPattern(filepath.ToSlash(pattern))

		fsys := me.fs
		if base != "." {
			fsys = afero.NewBasePathFs(me.fs, base)
		}

		matches, err := doublestar.Glob(afero.NewIOFS(fsys), rest)
		if err != nil {
			return nil, errors.Errorf("expanding %q: %w", pattern, err)
		}

		for _, match := range matches {
			file := path.Join(base, match)
			if seen[file] || !mask.Handles(file) {
				continue
			}
			seen[file] = true
			files = append(files, file)
		}
	}

	return files, nil
}

func (me *Handler) maskFile(ctx context.Context, file string, opts mask.Options) error {
	data, err := afero.ReadFile(me.fs, file)
	if err != nil {
		return errors.Errorf("reading: %w", err)
	}
	content := string(data)

	res, err := mask.ParseMarkdown(ctx, content, opts)
	if err != nil {
		return err
	}

	for _, perr := range res.Descriptor.Errors {
		zerolog.Ctx(ctx).Warn().Str("file", file).Err(perr).Msg("recoverable parse problem")
	}

	fmt.Fprintf(me.out, "%s\n", file)
	me.blockTable(position.NewDocument(content), res.Descriptor).Render()

	if me.showText {
		fmt.Fprintf(me.out, "%s\n", res.Generated)
	}

	if me.showDiff {
		fmt.Fprint(me.out, diff.Lines(content, res.Generated))
	}

	zerolog.Ctx(ctx).Debug().
		Str("file", file).
		Int("blocks", len(res.Descriptor.Blocks())).
		Msg("masked document")

	return nil
}

func (me *Handler) blockTable(doc *position.Document, desc *sfc.Descriptor) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(me.out)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"block", "lang", "start", "end", "content"})

	for _, b := range desc.Blocks() {
		name := b.Type
		if b.Has("setup") {
			name += " setup"
		}
		tw.AppendRow(table.Row{name, b.Lang, place(doc, b.Start), place(doc, b.End), strconv.Quote(clip(b.Content, 40))})
	}

	return tw
}

// place renders a document offset as offset and one-based line:character.
func place(doc *position.Document, offset int) string {
	if offset == sfc.Unmappable {
		return "-"
	}
	line, character := doc.LineAndCharacter(offset)
	return fmt.Sprintf("%d (%d:%d)", offset, line+1, character+1)
}

// clip shortens s to at most n bytes without splitting a rune.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}

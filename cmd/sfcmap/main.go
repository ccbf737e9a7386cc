package main

import (
	"context"
	"os"
	"runtime/debug"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	mask_markdown "github.com/walteh/sfcmap/cmd/sfcmap/mask-markdown"
	rewrite_expression "github.com/walteh/sfcmap/cmd/sfcmap/rewrite-expression"
	sfcdebug "github.com/walteh/sfcmap/pkg/debug"
)

func main() {
	if err := run(); err != nil {
		println(err.Error())
		os.Exit(1)
	}
}

func run() error {
	var (
		verbose bool
		noColor bool
	)

	rootCmd := &cobra.Command{
		Use:   "sfcmap",
		Short: "Mask markdown into component blocks and rewrite template expressions, with offset mappings back to the source",
	}

	rootCmd.PersistentFlags().BoolVar(&verbose, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored log output")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		level := zerolog.InfoLevel
		if verbose {
			level = zerolog.TraceLevel
		}

		logger := sfcdebug.NewLogger(os.Stderr, sfcdebug.LoggerOptions{
			Level:  level,
			Color:  !noColor,
			Caller: verbose,
			RunID:  uuid.NewString(),
		})

		cmd.SetContext(logger.WithContext(cmd.Context()))
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		rootCmd.Version = "unknown"
	} else {
		rootCmd.Version = info.Main.Version
	}

	cmdVersion := &cobra.Command{
		Use: "raw-version",
		Run: func(cmdz *cobra.Command, args []string) {
			cmdz.Println(rootCmd.Version)
		},
		Hidden: true,
	}

	rootCmd.AddCommand(cmdVersion)
	rootCmd.AddCommand(mask_markdown.NewMaskCommand())
	rootCmd.AddCommand(rewrite_expression.NewRewriteCommand())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		return errors.Errorf("failed to execute command: %w", err)
	}

	return nil
}

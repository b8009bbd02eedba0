// Command postmoa converts postal notice PDFs into Postmoa bulk-mail
// workbooks and windowed-envelope prints.
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/a3tai/notice-postmoa/internal/config"
	"github.com/a3tai/notice-postmoa/internal/converter"
	"github.com/a3tai/notice-postmoa/internal/envelope"
	"github.com/a3tai/notice-postmoa/internal/layout"
	"github.com/a3tai/notice-postmoa/internal/logger"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// app carries what every command needs once flags are parsed.
type app struct {
	cfg   *config.Config
	log   *zap.Logger
	level zap.AtomicLevel
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "postmoa",
		Short: "Convert postal notice PDFs into Postmoa workbooks and envelope prints",
		Long: `postmoa reads Korean postal notice PDFs, extracts each recipient and writes
the three Postmoa (우편모아) upload workbooks plus a windowed-envelope PDF.

Settings come from flags or POSTMOA_* environment variables.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	config.DefineFlags(root.PersistentFlags(), config.DefaultConfig())

	root.AddCommand(
		newExtractCmd(a),
		newExportCmd(a),
		newReviewCmd(a),
		newServeCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup loads the configuration and builds the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	if version != "dev" {
		cfg.Version = version
	}

	log, level, err := logger.New(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	a.cfg, a.log, a.level = cfg, log, level
	a.log.Debug("configuration loaded", zap.Stringer("config", cfg))
	return nil
}

// service builds the converter. confine limits paths to the configured
// directories.
func (a *app) service(confine bool) (*converter.Service, error) {
	layouts, err := layout.Load(a.cfg.LayoutsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load layouts: %w", err)
	}

	return converter.NewService(converter.Options{
		MaxFileSize:     a.cfg.MaxFileSize,
		InputDirectory:  a.cfg.InputDirectory,
		OutputDirectory: a.cfg.OutputDirectory,
		Confine:         confine,
		Layouts:         layouts,
		Fonts:           envelope.Fonts{Regular: a.cfg.FontRegular, Bold: a.cfg.FontBold},
		Logger:          a.log,
	})
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// configuration is not needed to print the version
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Notice Postmoa Converter\n")
			fmt.Fprintf(out, "Version: %s\n", version)
			fmt.Fprintf(out, "Build Time: %s\n", buildTime)
			fmt.Fprintf(out, "Git Commit: %s\n", gitCommit)
			fmt.Fprintf(out, "Built with: %s\n", runtime.Version())
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

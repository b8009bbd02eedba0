package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/a3tai/notice-postmoa/internal/config"
	"github.com/a3tai/notice-postmoa/internal/converter"
	"github.com/a3tai/notice-postmoa/internal/mcp"
	"github.com/a3tai/notice-postmoa/internal/records"
	"github.com/a3tai/notice-postmoa/internal/tui"
)

func newExtractCmd(a *app) *cobra.Command {
	var (
		asJSON   bool
		appendTo bool
	)

	cmd := &cobra.Command{
		Use:   "extract [pdf...]",
		Short: "Extract recipients from notice PDFs",
		Long: `Extract the recipient fields of each notice PDF and print them.

Without arguments every PDF in --dir is extracted. Files that fail are
reported and skipped. With --append the records are added to the worksheet.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(false)
			if err != nil {
				return err
			}

			notices, err := extractNotices(cmd, svc, a.cfg.InputDirectory, args)
			if err != nil {
				return err
			}

			if appendTo {
				if err := appendToWorksheet(svc, a.cfg.Worksheet, notices); err != nil {
					return err
				}
				a.log.Info("worksheet updated", zap.String("path", a.cfg.Worksheet), zap.Int("added", len(notices)))
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(notices)
			}
			printRecords(cmd.OutOrStdout(), notices)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print records as JSON")
	cmd.Flags().BoolVar(&appendTo, "append", false, "Append the records to the worksheet")
	return cmd
}

// extractNotices extracts the named files, or the whole directory when none
// are named.
func extractNotices(cmd *cobra.Command, svc *converter.Service, dir string, paths []string) (
	[]converter.ExtractNoticeResult, error,
) {
	if len(paths) == 0 {
		result, err := svc.ExtractDirectory(converter.ExtractDirectoryRequest{Directory: dir})
		if err != nil {
			return nil, err
		}
		for _, f := range result.Failures {
			fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s: %s\n", f.Path, f.Error)
		}
		return result.Notices, nil
	}

	notices := make([]converter.ExtractNoticeResult, 0, len(paths))
	for _, p := range paths {
		n, err := svc.ExtractNotice(converter.ExtractNoticeRequest{Path: p})
		if err != nil {
			return nil, err
		}
		notices = append(notices, *n)
	}
	return notices, nil
}

func appendToWorksheet(svc *converter.Service, path string, notices []converter.ExtractNoticeResult) error {
	t, err := loadWorksheetIfExists(svc, path)
	if err != nil {
		return err
	}
	for _, n := range notices {
		t.Append(n.Record)
	}
	return svc.SaveWorksheet(path, t)
}

func loadWorksheetIfExists(svc *converter.Service, path string) (*records.Table, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return records.NewTable(), nil
	}
	return svc.LoadWorksheet(path)
}

// printRecords renders the records as a table with empty cells marked.
func printRecords(w io.Writer, notices []converter.ExtractNoticeResult) {
	if len(notices) == 0 {
		fmt.Fprintln(w, "No notices extracted")
		return
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(append([]string{"#"}, records.Columns()...)...)
	for i, n := range notices {
		row := []string{fmt.Sprint(i + 1)}
		for _, v := range n.Record.Values() {
			if v == "" {
				v = "-"
			}
			row = append(row, v)
		}
		t.Row(row...)
	}
	fmt.Fprintln(w, t.String())

	for i, n := range notices {
		if len(n.Missing) > 0 {
			fmt.Fprintf(w, "row %d (%s): missing %s\n", i+1, n.Path, strings.Join(n.Missing, ", "))
		}
	}
}

func newExportCmd(a *app) *cobra.Command {
	var fromWorksheet bool

	cmd := &cobra.Command{
		Use:   "export [pdf...]",
		Short: "Write the Postmoa workbooks and the envelope PDF",
		Long: `Export records to the three Postmoa workbooks and the windowed-envelope PDF.

Records come from the named PDFs, from the worksheet when --from-worksheet
or --worksheet is given, or otherwise from every PDF in --dir.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(false)
			if err != nil {
				return err
			}

			var t *records.Table
			switch {
			case len(args) > 0:
				t, err = svc.ExtractFiles(args)
			case fromWorksheet || cmd.Flags().Changed(config.FlagWorksheet):
				t, err = svc.LoadWorksheet(a.cfg.Worksheet)
			default:
				var result *converter.ExtractDirectoryResult
				result, err = svc.ExtractDirectory(converter.ExtractDirectoryRequest{Directory: a.cfg.InputDirectory})
				if err == nil {
					for _, f := range result.Failures {
						fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s: %s\n", f.Path, f.Error)
					}
					t = result.Table()
				}
			}
			if err != nil {
				return err
			}

			result, err := svc.Export(converter.ExportRequest{Table: t})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Exported %d record(s) to %s\n", result.Records, result.OutputDirectory)
			for _, f := range result.Files {
				fmt.Fprintf(out, "  %s\n", f.Path)
			}
			for _, r := range result.Incomplete {
				fmt.Fprintf(out, "row %d has empty fields\n", r+1)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&fromWorksheet, "from-worksheet", "w", false, "Export the saved worksheet")
	return cmd
}

func newReviewCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "review [pdf...]",
		Short: "Review and correct records before export",
		Long: `Open the review screen. Named PDFs are extracted into a new table;
otherwise the worksheet is loaded when it exists.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(false)
			if err != nil {
				return err
			}

			var t *records.Table
			if len(args) > 0 {
				t, err = svc.ExtractFiles(args)
			} else {
				t, err = loadWorksheetIfExists(svc, a.cfg.Worksheet)
			}
			if err != nil {
				return err
			}

			// log lines would tear the full-screen view
			if a.level.Level() < zapcore.ErrorLevel {
				a.level.SetLevel(zapcore.ErrorLevel)
			}

			_, err = tui.Run(cmd.Context(), tui.New(svc, t, tui.Options{
				Worksheet:       a.cfg.Worksheet,
				OutputDirectory: a.cfg.OutputDirectory,
				Logger:          a.log.Named("tui"),
			}))
			return err
		},
	}
}

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP tool server on stdio",
		Long: `Serve the notice tools over the Model Context Protocol on stdin/stdout.
Paths are confined to --dir for input and --out for exports. Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.service(true)
			if err != nil {
				return err
			}

			server, err := mcp.NewServer(a.cfg, svc, a.log.Named("mcp"))
			if err != nil {
				return fmt.Errorf("failed to create MCP server: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
			defer stop()

			if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			a.log.Info("server stopped")
			return nil
		},
	}
}

package mcp

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/a3tai/notice-postmoa/internal/config"
	"github.com/a3tai/notice-postmoa/internal/converter"
	"github.com/a3tai/notice-postmoa/internal/descriptions"
	"github.com/a3tai/notice-postmoa/internal/pdf"
	"github.com/a3tai/notice-postmoa/internal/records"
)

// Tool names
const (
	ToolExtractFile      = "notice_extract_file"
	ToolExtractDirectory = "notice_extract_directory"
	ToolExport           = "notice_export"
	ToolSearchDirectory  = "notice_search_directory"
	ToolServerInfo       = "notice_server_info"
)

// Server represents the MCP server instance
type Server struct {
	config    *config.Config
	converter *converter.Service
	mcpServer *server.MCPServer
	log       *zap.Logger
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, svc *converter.Service, log *zap.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if svc == nil {
		return nil, fmt.Errorf("converter cannot be nil")
	}
	if log == nil {
		log = zap.NewNop()
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	s := &Server{
		config:    cfg,
		converter: svc,
		mcpServer: mcpServer,
		log:       log,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool(ToolExtractFile,
		mcp.WithDescription(descriptions.NoticeExtractFileDescription),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the notice PDF"),
		),
	), s.handleExtractFile)

	s.mcpServer.AddTool(mcp.NewTool(ToolExtractDirectory,
		mcp.WithDescription(descriptions.NoticeExtractDirectoryDescription),
		mcp.WithString("directory",
			mcp.Description("Directory of notice PDFs (uses default if empty)"),
		),
		mcp.WithString("query",
			mcp.Description("Only extract files whose name matches"),
		),
	), s.handleExtractDirectory)

	s.mcpServer.AddTool(mcp.NewTool(ToolExport,
		mcp.WithDescription(descriptions.NoticeExportDescription),
		mcp.WithString("directory",
			mcp.Description("Directory of notice PDFs to export (uses default if empty)"),
		),
		mcp.WithString("query",
			mcp.Description("Only export files whose name matches"),
		),
		mcp.WithString("worksheet",
			mcp.Description("Export a saved worksheet (.xlsx) instead of extracting PDFs"),
		),
		mcp.WithString("output",
			mcp.Description("Output directory (uses default if empty)"),
		),
	), s.handleExport)

	s.mcpServer.AddTool(mcp.NewTool(ToolSearchDirectory,
		mcp.WithDescription(descriptions.NoticeSearchDirectoryDescription),
		mcp.WithString("directory",
			mcp.Description("Directory path to search (uses default if empty)"),
		),
		mcp.WithString("query",
			mcp.Description("Optional file name filter"),
		),
	), s.handleSearchDirectory)

	s.mcpServer.AddTool(mcp.NewTool(ToolServerInfo,
		mcp.WithDescription(descriptions.NoticeServerInfoDescription),
	), s.handleServerInfo)
}

// optionalString returns a string argument or "" when absent
func optionalString(request mcp.CallToolRequest, name string) string {
	if v, ok := request.GetArguments()[name].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// Handler functions
func (s *Server) handleExtractFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.converter.ExtractNotice(converter.ExtractNoticeRequest{Path: path})
	if err != nil {
		s.log.Warn("extract failed", zap.String("path", path), zap.Error(err))
		return mcp.NewToolResultError(err.Error()), nil
	}

	text := fmt.Sprintf("Extracted notice: %s\n", result.Path)
	text += fmt.Sprintf("Pages: %d\n\n", result.Pages)
	text += formatRecord(result.Record)
	if len(result.Missing) > 0 {
		text += fmt.Sprintf("\nMissing fields: %s\n", strings.Join(result.Missing, ", "))
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleExtractDirectory(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	result, err := s.converter.ExtractDirectory(converter.ExtractDirectoryRequest{
		Directory: optionalString(request, "directory"),
		Query:     optionalString(request, "query"),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(result.Notices) == 0 && len(result.Failures) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No notice PDFs found in directory: %s", result.Directory)), nil
	}

	text := fmt.Sprintf("Extracted %d notice(s) from %s\n", len(result.Notices), result.Directory)
	for i, n := range result.Notices {
		text += fmt.Sprintf("\n%d. %s\n", i+1, n.Path)
		text += indent(formatRecord(n.Record))
		if len(n.Missing) > 0 {
			text += fmt.Sprintf("   Missing fields: %s\n", strings.Join(n.Missing, ", "))
		}
	}
	text += formatFailures(result.Failures)

	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleExport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var (
		table    *records.Table
		failures []converter.Failure
	)

	if worksheet := optionalString(request, "worksheet"); worksheet != "" {
		loaded, err := s.converter.LoadWorksheet(worksheet)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		table = loaded
	} else {
		extracted, err := s.converter.ExtractDirectory(converter.ExtractDirectoryRequest{
			Directory: optionalString(request, "directory"),
			Query:     optionalString(request, "query"),
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		table = extracted.Table()
		failures = extracted.Failures
	}

	result, err := s.converter.Export(converter.ExportRequest{
		Table:           table,
		OutputDirectory: optionalString(request, "output"),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text := fmt.Sprintf("Exported %d record(s) to %s\n", result.Records, result.OutputDirectory)
	text += "\nFiles:\n"
	for i, f := range result.Files {
		text += fmt.Sprintf("%d. %s (%s, %d rows", i+1, f.Path, f.Kind, f.Rows)
		if f.Pages > 0 {
			text += fmt.Sprintf(", %d pages", f.Pages)
		}
		text += ")\n"
	}
	if len(result.Incomplete) > 0 {
		rows := make([]string, len(result.Incomplete))
		for i, r := range result.Incomplete {
			rows[i] = fmt.Sprint(r + 1)
		}
		text += fmt.Sprintf("\nRows with empty fields: %s\n", strings.Join(rows, ", "))
	}
	text += formatFailures(failures)

	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleSearchDirectory(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	result, err := s.converter.SearchDirectory(pdf.SearchDirectoryRequest{
		Directory: optionalString(request, "directory"),
		Query:     optionalString(request, "query"),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if result.TotalCount == 0 {
		text := fmt.Sprintf("No notice PDFs found in directory: %s", result.Directory)
		if result.SearchQuery != "" {
			text += fmt.Sprintf(" (searched for: %s)", result.SearchQuery)
		}
		return mcp.NewToolResultText(text), nil
	}

	return mcp.NewToolResultText(formatSearchDirectoryResult(result)), nil
}

func (s *Server) handleServerInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := fmt.Sprintf("%s v%s\n", s.config.ServerName, s.config.Version)
	text += fmt.Sprintf("Notice directory: %s\n", s.converter.InputDirectory())
	text += fmt.Sprintf("Output directory: %s\n", s.converter.OutputDirectory())
	text += fmt.Sprintf("Worksheet: %s\n", s.config.Worksheet)
	text += fmt.Sprintf("Max file size: %d MB\n", s.config.MaxFileSize/(1024*1024))

	found, err := s.converter.SearchDirectory(pdf.SearchDirectoryRequest{})
	if err != nil {
		text += fmt.Sprintf("Notices: unavailable (%v)\n", err)
	} else {
		text += fmt.Sprintf("Notices: %d PDF file(s)\n", found.TotalCount)
	}

	text += "\nOutput layouts:\n"
	for _, l := range s.converter.Layouts().Layouts {
		text += fmt.Sprintf("  • %s (%s): %s\n", l.Name, l.Kind, l.Suffix)
	}

	text += "\nTools:\n"
	for _, name := range []string{ToolSearchDirectory, ToolExtractFile, ToolExtractDirectory, ToolExport, ToolServerInfo} {
		text += fmt.Sprintf("  • %s\n", name)
	}
	text += "\nTypical workflow: " + ToolSearchDirectory + " → " + ToolExtractDirectory + " → " + ToolExport + "\n"

	return mcp.NewToolResultText(text), nil
}

// Formatting helpers
func formatRecord(r records.Record) string {
	var text string
	for i, col := range records.Columns() {
		v := r.Values()[i]
		if v == "" {
			v = "(empty)"
		}
		text += fmt.Sprintf("%s: %s\n", col, v)
	}
	return text
}

func formatFailures(failures []converter.Failure) string {
	if len(failures) == 0 {
		return ""
	}
	text := fmt.Sprintf("\nSkipped %d file(s):\n", len(failures))
	for _, f := range failures {
		text += fmt.Sprintf("  • %s: %s\n", f.Path, f.Error)
	}
	return text
}

func formatSearchDirectoryResult(result *pdf.SearchDirectoryResult) string {
	text := fmt.Sprintf("Found %d notice PDF(s) in directory: %s\n", result.TotalCount, result.Directory)
	if result.SearchQuery != "" {
		text += fmt.Sprintf("Search query: %s\n", result.SearchQuery)
	}
	text += "\nFiles:\n"

	for i, file := range result.Files {
		text += fmt.Sprintf("%d. %s\n", i+1, file.Name)
		text += fmt.Sprintf("   Path: %s\n", file.Path)
		text += fmt.Sprintf("   Size: %d bytes\n", file.Size)
		text += fmt.Sprintf("   Modified: %s\n", file.ModifiedTime)
	}

	return text
}

func indent(text string) string {
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	for i, l := range lines {
		lines[i] = "   " + l
	}
	return strings.Join(lines, "\n") + "\n"
}

// Run serves MCP over stdin and stdout until ctx is done or stdin closes
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve serves MCP over the given streams. Logs never go to out.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	s.log.Info("starting MCP server",
		zap.String("name", s.config.ServerName),
		zap.String("notices", s.converter.InputDirectory()),
		zap.String("output", s.converter.OutputDirectory()))

	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(zap.NewStdLog(s.log.Named("stdio")))

	if err := stdio.Listen(ctx, in, out); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

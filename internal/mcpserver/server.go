// Package mcpserver exposes the linter as Model Context Protocol tools over
// stdio so editors and agents can ask for architecture checks.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/efebarandurmaz/archlint/internal/check"
	"github.com/efebarandurmaz/archlint/internal/lint"
	"github.com/efebarandurmaz/archlint/internal/render"
	"github.com/efebarandurmaz/archlint/internal/rules"
)

// Options configures the server.
type Options struct {
	Version    string
	Workers    int
	Extensions []string
	Exclude    []string
	Logger     *slog.Logger
}

// Server holds the MCP server and the defaults applied to every tool call.
type Server struct {
	opts   Options
	logger *slog.Logger
	mcp    *server.MCPServer
}

// New creates a server with the check_architecture and analyze_file tools
// registered.
func New(opts Options) *Server {
	if opts.Version == "" {
		opts.Version = "dev"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		opts:   opts,
		logger: logger,
		mcp:    server.NewMCPServer("archlint", opts.Version, server.WithToolCapabilities(false)),
	}

	checkTool := mcp.NewTool("check_architecture",
		mcp.WithDescription("Check a TypeScript project against its architecture rules and return a JSON report"),
		mcp.WithString("root",
			mcp.Required(),
			mcp.Description("Project directory or single file to check"),
		),
		mcp.WithString("rules",
			mcp.Description("Path to the rule document (default: architect.json in root)"),
		),
		mcp.WithBoolean("cycles",
			mcp.Description("Also detect import cycles (default: false)"),
		),
	)
	s.mcp.AddTool(checkTool, s.handleCheckArchitecture)

	analyzeTool := mcp.NewTool("analyze_file",
		mcp.WithDescription("Analyze one TypeScript file against inline rules and return its imports and violations"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("File to analyze"),
		),
		mcp.WithString("rules",
			mcp.Required(),
			mcp.Description("Rule document as JSON, for example {\"max_lines_per_function\": 40}"),
		),
	)
	s.mcp.AddTool(analyzeTool, s.handleAnalyzeFile)

	return s
}

// ServeStdio blocks serving MCP requests on stdin and stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) handleCheckArchitecture(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root, err := request.RequireString("root")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := check.Run(ctx, check.Request{
		Root:       root,
		RulesPath:  request.GetString("rules", ""),
		Extensions: s.opts.Extensions,
		Exclude:    s.opts.Exclude,
		Workers:    s.opts.Workers,
		Cycles:     request.GetBool("cycles", false),
		Logger:     s.logger,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("check failed: %v", err)), nil
	}

	s.logger.Info("mcp check", "root", root, "violations", res.Report.Summary.Violations)
	return jsonResult(render.NewDocument(res.Report, res.Cycles))
}

func (s *Server) handleAnalyzeFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := request.RequireString("rules")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	cfg, err := rules.LoadJSON([]byte(doc))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid rules: %v", err)), nil
	}

	res := lint.NewAnalyzer(cfg, s.logger).Analyze(ctx, path)
	return jsonResult(res)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

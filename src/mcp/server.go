package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"ci-reaper/src/contracts"
	"ci-reaper/src/provider"
	"ci-reaper/src/store"
)

// CycleRunner runs a single reaping cycle and records it.
// Implemented by scheduler.Loop.
type CycleRunner interface {
	RunOnce(ctx context.Context) *contracts.CycleReport
}

// Server is the MCP server for the reaper.
type Server struct {
	mcpServer *server.MCPServer
	runner    CycleRunner
	history   store.Store
}

// NewServer creates a new MCP server. history is only read.
func NewServer(runner CycleRunner, history store.Store, version string) *Server {
	s := server.NewMCPServer(
		"ci-reaper",
		version,
		server.WithToolCapabilities(true),
	)

	srv := &Server{
		mcpServer: s,
		runner:    runner,
		history:   history,
	}
	srv.registerTools()

	return srv
}

func (s *Server) registerTools() {
	runTool := mcp.NewTool("run_cycle",
		mcp.WithDescription("Run one reaping cycle now against every configured repository on Travis CI and AppVeyor. Cancels superseded builds and builds whose jobs already failed (unless the server runs in dry-run mode). Returns the cycle summary and every cancellation."),
	)

	listTool := mcp.NewTool("list_cycles",
		mcp.WithDescription("List recent reaping cycles, newest first, as compact summaries. Use get_cycle to see per-check results."),
		mcp.WithNumber("limit",
			mcp.Description("Max cycles to return (default: 10)"),
		),
	)

	getTool := mcp.NewTool("get_cycle",
		mcp.WithDescription("Get the full report of one cycle, including each check's error and cancellations."),
		mcp.WithString("cycle_id",
			mcp.Required(),
			mcp.Description("Cycle ID from list_cycles or run_cycle"),
		),
	)

	parseTool := mcp.NewTool("parse_repository",
		mcp.WithDescription("Validate an owner/name repository identifier the way the reaper does."),
		mcp.WithString("repository",
			mcp.Required(),
			mcp.Description("Repository in owner/name form, e.g. rust-lang/cargo"),
		),
	)

	s.mcpServer.AddTool(runTool, s.handleRunCycle)
	s.mcpServer.AddTool(listTool, s.handleListCycles)
	s.mcpServer.AddTool(getTool, s.handleGetCycle)
	s.mcpServer.AddTool(parseTool, s.handleParseRepository)
}

// Run starts the MCP server on stdio.
func (s *Server) Run() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) handleRunCycle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report := s.runner.RunOnce(ctx)

	return jsonResult(struct {
		Summary       CycleSummary             `json:"summary"`
		Cancellations []contracts.Cancellation `json:"cancellations"`
		Errors        []string                 `json:"errors,omitempty"`
	}{
		Summary:       Summarize(report),
		Cancellations: report.Cancellations(),
		Errors:        checkErrors(report),
	})
}

func (s *Server) handleListCycles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", DefaultListLimit)
	if limit <= 0 {
		return mcp.NewToolResultError("limit must be positive"), nil
	}

	reports, err := s.history.RecentCycles(ctx, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load history: %v", err)), nil
	}

	summaries := make([]CycleSummary, 0, len(reports))
	for i := range reports {
		summaries = append(summaries, Summarize(&reports[i]))
	}
	return jsonResult(summaries)
}

// handleGetCycle scans the retained history; it holds at most a few hundred reports.
func (s *Server) handleGetCycle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cycleID := request.GetString("cycle_id", "")
	if cycleID == "" {
		return mcp.NewToolResultError("cycle_id parameter is required"), nil
	}

	reports, err := s.history.RecentCycles(ctx, store.DefaultHistory)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load history: %v", err)), nil
	}
	for i := range reports {
		if reports[i].CycleID == cycleID {
			return jsonResult(reports[i])
		}
	}
	return mcp.NewToolResultError(fmt.Sprintf("cycle not found: %s", cycleID)), nil
}

func (s *Server) handleParseRepository(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw := request.GetString("repository", "")
	repo, err := provider.ParseRepository(raw)
	if err != nil {
		return mcp.NewToolResultError(provider.WrapError(err).Error()), nil
	}
	return jsonResult(RepositoryInfo{Owner: repo.Owner, Name: repo.Name, Slug: repo.String()})
}

func checkErrors(r *contracts.CycleReport) []string {
	var errs []string
	for _, c := range r.Checks {
		if c.Failed() {
			errs = append(errs, fmt.Sprintf("%s %s: %s", c.Provider, c.Repository, c.Error))
		}
	}
	return errs
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

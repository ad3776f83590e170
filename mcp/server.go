// Package mcp serves the solver as Model Context Protocol tools over stdio, so
// an assistant host can hand STEM problems to EduSolver.
package mcp

import (
	"context"
	"fmt"
	"io"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"edusolver/config"
	"edusolver/model"
	"edusolver/provider"
	"edusolver/storage"
)

const (
	ToolSolve   = "solve_problem"
	ToolHistory = "solve_history"

	defaultHistoryLimit = 10
	maxHistoryLimit     = 100
)

// ToolServer owns the MCP server and the solver it calls into.
type ToolServer struct {
	provider model.Provider
	pipeline *model.Pipeline
	history  *storage.HistoryStore
	models   model.ModelSet
	mode     model.Mode

	srv *mcpserver.MCPServer
}

// NewToolServer registers the tools. p must be ready; history may be nil, in
// which case solves are not recorded and solve_history returns nothing.
func NewToolServer(cfg *config.Config, p model.Provider, history *storage.HistoryStore, version string) *ToolServer {
	mode, err := model.ParseMode(cfg.DefaultMode)
	if err != nil {
		mode = model.ModeDeep
	}

	pipeline := model.NewPipeline(p, model.NoChoreography)
	pipeline.Timeout = cfg.RequestTimeout.Duration

	ts := &ToolServer{
		provider: p,
		pipeline: pipeline,
		history:  history,
		models:   provider.ModelsFor(cfg),
		mode:     mode,
	}

	ts.srv = mcpserver.NewMCPServer("edusolver", version,
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithRecovery(),
	)
	ts.srv.AddTool(solveTool(), ts.handleSolve)
	ts.srv.AddTool(historyTool(), ts.handleHistory)
	return ts
}

func solveTool() mcptypes.Tool {
	return mcptypes.NewTool(ToolSolve,
		mcptypes.WithDescription("Solve a STEM problem step by step. Returns the topic analysis, "+
			"a worked primary method, an alternative method in deep mode, a validation "+
			"verdict and study notes. Math is written in LaTeX."),
		mcptypes.WithString("prompt",
			mcptypes.Description("The problem statement. May be empty when image_path is given."),
		),
		mcptypes.WithString("mode",
			mcptypes.Description("quick for a direct answer, deep for multi-method reasoning with validation."),
			mcptypes.Enum(string(model.ModeQuick), string(model.ModeDeep)),
		),
		mcptypes.WithString("image_path",
			mcptypes.Description("Absolute path to a photo or screenshot of the problem."),
		),
	)
}

func historyTool() mcptypes.Tool {
	return mcptypes.NewTool(ToolHistory,
		mcptypes.WithDescription("List recently solved problems, newest first."),
		mcptypes.WithNumber("limit",
			mcptypes.Description(fmt.Sprintf("Maximum number of records (default %d).", defaultHistoryLimit)),
			mcptypes.Min(1),
			mcptypes.Max(maxHistoryLimit),
		),
	)
}

// MCPServer exposes the underlying server for in-process transports.
func (ts *ToolServer) MCPServer() *mcpserver.MCPServer {
	return ts.srv
}

// Serve speaks MCP on in/out until ctx is cancelled or in is closed.
func (ts *ToolServer) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := mcpserver.NewStdioServer(ts.srv)
	config.DebugLog.Infow("mcp server started", "tools", []string{ToolSolve, ToolHistory})
	return stdio.Listen(ctx, in, out)
}

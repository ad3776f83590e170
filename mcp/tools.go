package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"edusolver/config"
	"edusolver/model"
)

// Tool failures are returned as error results, not protocol errors, so the
// calling model can read them.
func (ts *ToolServer) handleSolve(ctx context.Context, req mcptypes.CallToolRequest) (*mcptypes.CallToolResult, error) {
	in := model.SolveInput{
		Prompt: req.GetString("prompt", ""),
		Mode:   ts.mode,
	}
	if raw := req.GetString("mode", ""); raw != "" {
		mode, err := model.ParseMode(raw)
		if err != nil {
			return mcptypes.NewToolResultError(err.Error()), nil
		}
		in.Mode = mode
	}
	if path := strings.TrimSpace(req.GetString("image_path", "")); path != "" {
		img, err := model.LoadImage(path)
		if err != nil {
			return mcptypes.NewToolResultError(err.Error()), nil
		}
		in.Image = img
	}

	genReq, err := model.BuildRequest(in, ts.models)
	if errors.Is(err, model.ErrEmptyInput) {
		return mcptypes.NewToolResultError("prompt or image_path is required"), nil
	}
	if err != nil {
		return mcptypes.NewToolResultError(err.Error()), nil
	}

	runID := uuid.NewString()
	sol, err := ts.pipeline.Run(ctx, runID, genReq, func(model.Event) {})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		config.DebugLog.Errorw("mcp solve failed", "run", runID, "kind", model.FailureKind(err), "error", err)
		return mcptypes.NewToolResultError(model.SolveFailureText), nil
	}

	if ts.history != nil {
		rec, err := model.NewHistoryRecord(genReq, sol, ts.provider.Name())
		if err == nil {
			err = ts.history.Save(rec)
		}
		if err != nil {
			config.DebugLog.Warnw("failed to save history record", "error", err)
		}
	}

	return mcptypes.NewToolResultStructured(sol, sol.Markdown()), nil
}

func (ts *ToolServer) handleHistory(ctx context.Context, req mcptypes.CallToolRequest) (*mcptypes.CallToolResult, error) {
	limit := req.GetInt("limit", defaultHistoryLimit)
	if limit < 1 {
		limit = defaultHistoryLimit
	}
	limit = min(limit, maxHistoryLimit)

	if ts.history == nil {
		return mcptypes.NewToolResultText("No history recorded."), nil
	}
	records, err := ts.history.List(limit)
	if err != nil {
		return mcptypes.NewToolResultError(fmt.Sprintf("failed to read history: %v", err)), nil
	}
	if len(records) == 0 {
		return mcptypes.NewToolResultText("No problems solved yet."), nil
	}

	var b strings.Builder
	for _, r := range records {
		mark := "✓"
		if !r.Consistent {
			mark = "✗"
		}
		fmt.Fprintf(&b, "- %s [%s, %s] %s %s → %s\n",
			r.CreatedAt.Format("2006-01-02 15:04"),
			r.Topic, r.Mode, mark,
			oneLine(r.Prompt), r.FinalAnswer)
	}
	return mcptypes.NewToolResultText(b.String()), nil
}

func oneLine(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return "(image)"
	}
	if r := []rune(s); len(r) > 80 {
		return string(r[:79]) + "…"
	}
	return s
}

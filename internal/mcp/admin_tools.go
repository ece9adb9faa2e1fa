package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"axiom/internal/usecase"
)

// ReindexTool handles axiom_reindex.
type ReindexTool struct {
	svc *usecase.Service
}

func (t *ReindexTool) Definition() mcp.Tool {
	return mcp.NewTool("axiom_reindex",
		mcp.WithDescription(
			"Re-embed statements whose vectors do not match the active "+
				"embedding model. Run after the model configuration changes.",
		),
		mcp.WithString("scope",
			mcp.Description("Fields to re-embed: all (default), content, or context"),
		),
		mcp.WithBoolean("force",
			mcp.Description("Re-embed even statements that look current"),
		),
		mcp.WithBoolean("dry_run",
			mcp.Description("Count candidates without writing"),
		),
	)
}

func (t *ReindexTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := t.svc.Reindex(ctx, usecase.ReindexOptions{
		Scope:  req.GetString("scope", ""),
		Force:  boolArg(req, "force", false),
		DryRun: boolArg(req, "dry_run", false),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if boolArg(req, "dry_run", false) {
		return mcp.NewToolResultText(fmt.Sprintf(
			"%d statement(s) would be reindexed under %s", result.Candidates, result.Model)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"Reindexed %d of %d statement(s) under %s", result.Reindexed, result.Candidates, result.Model)), nil
}

// StatsTool handles axiom_stats.
type StatsTool struct {
	svc *usecase.Service
}

func (t *StatsTool) Definition() mcp.Tool {
	return mcp.NewTool("axiom_stats",
		mcp.WithDescription("Report store statistics: counts, HEAD version, file size, and staleness."),
	)
}

func (t *StatsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := t.svc.Stats()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{
		"artifacts": st.Artifacts,
		"head":      st.Head,
		"revisions": st.Revisions,
		"manifests": st.Manifests,
		"file_size": st.FileSize,
		"kinds":     st.Kinds,
		"models":    st.Models,
		"stale":     t.svc.StaleCount(),
	})
}

package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"axiom/internal/domain"
	"axiom/internal/usecase"
)

// SearchTool handles axiom_search.
type SearchTool struct {
	svc *usecase.Service
}

func (t *SearchTool) Definition() mcp.Tool {
	return mcp.NewTool("axiom_search",
		mcp.WithDescription(
			"Search statements by meaning. Content and context similarity are "+
				"blended; filters narrow candidates before ranking.",
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Natural-language query"),
		),
		mcp.WithString("kind",
			mcp.Description("Restrict to one registered kind"),
		),
		mcp.WithString("labels",
			mcp.Description("Comma-separated key=value filters, exact match"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Max results (default 10)"),
		),
		mcp.WithNumber("context_weight",
			mcp.Description("Context blend weight for this query, 0 to 1 (default from config)"),
		),
		mcp.WithBoolean("use_context",
			mcp.Description("Set false to rank on content similarity only (default true)"),
		),
	)
}

func (t *SearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")
	if query == "" {
		return mcp.NewToolResultError("'query' is required"), nil
	}
	labels, err := parseLabelList(req.GetString("labels", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	opts := usecase.SearchOptions{NoContext: !boolArg(req, "use_context", true)}
	if w, ok := floatArg(req, "context_weight"); ok {
		opts.ContextWeight = &w
	}
	results, err := t.svc.Search(ctx, query, domain.ListFilter{
		Kind:   req.GetString("kind", ""),
		Labels: labels,
		Limit:  intArg(req, "limit", 0),
	}, opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("No matching statements."), nil
	}

	var b strings.Builder
	if stale := t.svc.StaleCount(); stale > 0 {
		fmt.Fprintf(&b, "Note: %d statement(s) have stale embeddings; results may be degraded until reindex.\n\n", stale)
	}
	fmt.Fprintf(&b, "Found %d statement(s):\n\n", len(results))
	for i, r := range results {
		a := r.Artifact
		fmt.Fprintf(&b, "[%d] %s (%s, score %.4f)", i+1, a.ID, a.Kind, r.Score)
		if a.Name != "" {
			fmt.Fprintf(&b, " - %s", a.Name)
		}
		b.WriteString("\n")
		if a.Context != "" {
			fmt.Fprintf(&b, "    context: %s\n", truncate(a.Context, 200))
		}
		fmt.Fprintf(&b, "    %s\n\n", truncate(a.Content, 400))
	}
	return mcp.NewToolResultText(b.String()), nil
}

// ListTool handles axiom_list.
type ListTool struct {
	svc *usecase.Service
}

func (t *ListTool) Definition() mcp.Tool {
	return mcp.NewTool("axiom_list",
		mcp.WithDescription("List statements in creation order, with optional kind and label filters."),
		mcp.WithString("kind",
			mcp.Description("Restrict to one registered kind"),
		),
		mcp.WithString("labels",
			mcp.Description("Comma-separated key=value filters, exact match"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Max results (default 100)"),
		),
		mcp.WithNumber("at",
			mcp.Description("List as of a historical store version"),
		),
	)
}

func (t *ListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	labels, err := parseLabelList(req.GetString("labels", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	filter := domain.ListFilter{
		Kind:   req.GetString("kind", ""),
		Labels: labels,
		Limit:  intArg(req, "limit", 0),
	}

	var artifacts []*domain.Artifact
	if at := intArg(req, "at", 0); at > 0 {
		artifacts, err = t.svc.ListAt(uint64(at), filter)
	} else {
		artifacts, err = t.svc.List(filter)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(artifacts) == 0 {
		return mcp.NewToolResultText("No statements."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d statement(s):\n\n", len(artifacts))
	for _, a := range artifacts {
		name := a.Name
		if name == "" {
			name = truncate(a.Content, 72)
		}
		fmt.Fprintf(&b, "%s  %-12s %s\n", a.ID, a.Kind, name)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// HistoryTool handles axiom_history.
type HistoryTool struct {
	svc *usecase.Service
}

func (t *HistoryTool) Definition() mcp.Tool {
	return mcp.NewTool("axiom_history",
		mcp.WithDescription("Show the surviving revisions of one statement, newest first."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Artifact id"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Max revisions (default 20)"),
		),
	)
}

func (t *HistoryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}
	infos, err := t.svc.History(id, intArg(req, "limit", 20))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "History of %s (HEAD is %d):\n\n", id, t.svc.Head())
	for _, v := range infos {
		fmt.Fprintf(&b, "%6d  %s  %s\n", v.Version, v.Timestamp.Format("2006-01-02 15:04:05"), v.Op)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// DiffTool handles axiom_diff.
type DiffTool struct {
	svc *usecase.Service
}

func (t *DiffTool) Definition() mcp.Tool {
	return mcp.NewTool("axiom_diff",
		mcp.WithDescription(
			"Compare one statement between two store versions. Defaults to "+
				"the latest revision against the one before it.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Artifact id"),
		),
		mcp.WithNumber("from",
			mcp.Description("Older store version"),
		),
		mcp.WithNumber("to",
			mcp.Description("Newer store version (default HEAD)"),
		),
	)
}

func (t *DiffTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}
	d, err := t.svc.Diff(id, uint64(intArg(req, "from", 0)), uint64(intArg(req, "to", 0)))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s: version %d -> %d\n", d.ID, d.From, d.To)
	switch {
	case d.Created:
		b.WriteString("(created)\n")
	case d.Removed:
		b.WriteString("(removed)\n")
	case !d.Changed():
		b.WriteString("No changes.\n")
		return mcp.NewToolResultText(b.String()), nil
	}
	for _, f := range d.Fields {
		fmt.Fprintf(&b, "%s: %q -> %q\n", f.Field, f.From, f.To)
	}
	writeDiffLines(&b, "content", d.ContentDiff)
	writeDiffLines(&b, "context", d.ContextDiff)
	return mcp.NewToolResultText(b.String()), nil
}

func writeDiffLines(b *strings.Builder, field string, lines []usecase.DiffLine) {
	changed := false
	for _, l := range lines {
		if l.Op != " " {
			changed = true
			break
		}
	}
	if !changed {
		return
	}
	fmt.Fprintf(b, "--- %s\n", field)
	for _, l := range lines {
		fmt.Fprintf(b, "%s%s\n", l.Op, l.Text)
	}
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

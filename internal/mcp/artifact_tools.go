package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"axiom/internal/domain"
	"axiom/internal/usecase"
)

// AddTool handles axiom_add.
type AddTool struct {
	svc *usecase.Service
}

func (t *AddTool) Definition() mcp.Tool {
	return mcp.NewTool("axiom_add",
		mcp.WithDescription(
			"Store a new truth statement. Kind must be a registered kind; "+
				"labels must use registered keys.",
		),
		mcp.WithString("kind",
			mcp.Required(),
			mcp.Description("Registered kind slug, e.g. invariant, contract"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("The statement itself"),
		),
		mcp.WithString("name",
			mcp.Description("Short human-readable name"),
		),
		mcp.WithString("context",
			mcp.Description("When and where the statement applies; embedded separately for retrieval"),
		),
		mcp.WithString("format",
			mcp.Description("Content format: markdown, yaml, json, openapi, text (default text)"),
		),
		mcp.WithString("labels",
			mcp.Description("Comma-separated key=value pairs using registered label keys"),
		),
	)
}

func (t *AddTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	labels, err := parseLabelList(req.GetString("labels", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	a, version, err := t.svc.Add(ctx, usecase.AddParams{
		Kind:    req.GetString("kind", ""),
		Name:    req.GetString("name", ""),
		Content: req.GetString("content", ""),
		Context: req.GetString("context", ""),
		Format:  req.GetString("format", ""),
		Labels:  labels,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Stored %s at version %d", a.ID, version)), nil
}

// GetTool handles axiom_get.
type GetTool struct {
	svc *usecase.Service
}

func (t *GetTool) Definition() mcp.Tool {
	return mcp.NewTool("axiom_get",
		mcp.WithDescription("Fetch one statement by id, optionally as of a historical store version."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Artifact id"),
		),
		mcp.WithNumber("at",
			mcp.Description("Historical store version to read at"),
		),
	)
}

func (t *GetTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}

	var a *domain.Artifact
	var err error
	if at := intArg(req, "at", 0); at > 0 {
		a, err = t.svc.GetAt(id, uint64(at))
	} else {
		a, err = t.svc.Get(id)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(a)
}

// UpdateTool handles axiom_update.
type UpdateTool struct {
	svc *usecase.Service
}

func (t *UpdateTool) Definition() mcp.Tool {
	return mcp.NewTool("axiom_update",
		mcp.WithDescription(
			"Update fields of an existing statement as one new store version. "+
				"Only supplied fields change. An empty context clears it; a "+
				"label pair with an empty value (key=) removes that label.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Artifact id"),
		),
		mcp.WithString("content",
			mcp.Description("New content"),
		),
		mcp.WithString("context",
			mcp.Description("New context; empty string clears"),
		),
		mcp.WithString("kind",
			mcp.Description("New kind (must be registered)"),
		),
		mcp.WithString("name",
			mcp.Description("New name"),
		),
		mcp.WithString("format",
			mcp.Description("New content format"),
		),
		mcp.WithString("labels",
			mcp.Description("Comma-separated key=value pairs; key= removes a label"),
		),
	)
}

func (t *UpdateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}

	var patch usecase.UpdatePatch
	if v, ok := stringArg(req, "content"); ok {
		patch.Content = &v
	}
	if v, ok := stringArg(req, "context"); ok {
		patch.Context = &v
	}
	if v, ok := stringArg(req, "kind"); ok {
		patch.Kind = &v
	}
	if v, ok := stringArg(req, "name"); ok {
		patch.Name = &v
	}
	if v, ok := stringArg(req, "format"); ok {
		patch.Format = &v
	}
	if raw := req.GetString("labels", ""); raw != "" {
		labels, err := parseLabelPatch(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		patch.Labels = labels
	}

	a, version, err := t.svc.Update(ctx, id, patch)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Updated %s at version %d", a.ID, version)), nil
}

// RemoveTool handles axiom_remove.
type RemoveTool struct {
	svc *usecase.Service
}

func (t *RemoveTool) Definition() mcp.Tool {
	return mcp.NewTool("axiom_remove",
		mcp.WithDescription(
			"Remove a statement from the live set. Earlier revisions stay "+
				"readable at historical versions until pruned.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Artifact id"),
		),
	)
}

func (t *RemoveTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}
	version, err := t.svc.Remove(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Removed %s at version %d", id, version)), nil
}

func parseLabelList(raw string) (map[string]string, error) {
	labels, err := parseLabelPatch(raw)
	if err != nil {
		return nil, err
	}
	for k, v := range labels {
		if v == "" {
			return nil, fmt.Errorf("label %q has an empty value", k)
		}
	}
	return labels, nil
}

func parseLabelPatch(raw string) (map[string]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	labels := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid label %q: expected key=value", pair)
		}
		labels[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return labels, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

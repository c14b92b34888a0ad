// ABOUTME: MCP resource handlers for exposing CRM data
// ABOUTME: Provides read-only access to contacts, follow-ups, settings and the pipeline via URI
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/harperreed/dealflow/store"
	"github.com/harperreed/dealflow/viz"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type ResourceHandlers struct {
	store *store.Store
}

func NewResourceHandlers(s *store.Store) *ResourceHandlers {
	return &ResourceHandlers{store: s}
}

// ReadResource handles resource read requests
func (h *ResourceHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, "crm://") {
		return nil, fmt.Errorf("invalid URI scheme: expected crm://")
	}

	path := strings.TrimPrefix(uri, "crm://")
	parts := strings.Split(path, "/")

	switch parts[0] {
	case "contacts":
		if len(parts) == 1 || parts[1] == "" {
			return jsonResource(uri, h.store.AllContacts(ctx))
		}
		contact, err := h.store.Contact(ctx, parts[1])
		if err != nil {
			return nil, fmt.Errorf("resource not found: %s: %w", uri, err)
		}
		return jsonResource(uri, contact)

	case "followups":
		return jsonResource(uri, h.store.FollowUpViews(ctx))

	case "settings":
		return jsonResource(uri, h.store.Settings(ctx))

	case "pipeline":
		stats := viz.GenerateDashboardStats(h.store.Snapshot(ctx), h.store.Now())
		return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: "text/plain",
				Text:     viz.RenderDashboard(stats),
			},
		}}, nil

	default:
		return nil, fmt.Errorf("resource not found: %s", uri)
	}
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}

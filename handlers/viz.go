// ABOUTME: Pipeline visualization MCP handlers
// ABOUTME: Provides dashboard and generate_graph tools for agents
package handlers

import (
	"context"
	"fmt"

	"github.com/harperreed/dealflow/store"
	"github.com/harperreed/dealflow/viz"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type VizHandlers struct {
	store *store.Store
}

func NewVizHandlers(s *store.Store) *VizHandlers {
	return &VizHandlers{store: s}
}

type GenerateGraphInput struct {
	Stage           string `json:"stage,omitempty" jsonschema:"Only draw contacts in this deal stage"`
	IncludeContacts bool   `json:"include_contacts,omitempty" jsonschema:"Draw one node per staged contact"`
}

type GenerateGraphOutput struct {
	DOTSource string `json:"dot_source"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
}

func (h *VizHandlers) GenerateGraph(ctx context.Context, _ *mcp.CallToolRequest, input GenerateGraphInput) (*mcp.CallToolResult, GenerateGraphOutput, error) {
	if input.Stage != "" {
		if _, ok := h.store.Settings(ctx).FindDealStage(input.Stage); !ok {
			return nil, GenerateGraphOutput{}, fmt.Errorf("unknown deal stage %q", input.Stage)
		}
	}

	graph, err := viz.GeneratePipelineGraph(ctx, h.store.Snapshot(ctx), viz.GraphOptions{
		IncludeContacts: input.IncludeContacts || input.Stage != "",
		Stage:           input.Stage,
	})
	if err != nil {
		return nil, GenerateGraphOutput{}, fmt.Errorf("failed to generate graph: %w", err)
	}

	return nil, GenerateGraphOutput{
		DOTSource: graph.DOT,
		NodeCount: graph.Nodes,
		EdgeCount: graph.Edges,
	}, nil
}

type DashboardOutput struct {
	Text          string         `json:"text"`
	TotalContacts int            `json:"total_contacts"`
	Pipeline      map[string]int `json:"pipeline"`
	FollowUps     map[string]int `json:"follow_ups"`
}

func (h *VizHandlers) Dashboard(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, DashboardOutput, error) {
	stats := viz.GenerateDashboardStats(h.store.Snapshot(ctx), h.store.Now())

	pipeline := make(map[string]int, len(stats.Pipeline))
	for _, st := range stats.Pipeline {
		pipeline[st.Name] = st.Count
	}
	followUps := make(map[string]int, len(stats.FollowUps))
	for status, n := range stats.FollowUps {
		followUps[string(status)] = n
	}

	return nil, DashboardOutput{
		Text:          viz.RenderDashboard(stats),
		TotalContacts: stats.TotalContacts,
		Pipeline:      pipeline,
		FollowUps:     followUps,
	}, nil
}

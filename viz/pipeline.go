// ABOUTME: Graphviz rendering of the deal pipeline
// ABOUTME: Stages are chained in configured order with their contacts hanging off each stage
package viz

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"github.com/harperreed/dealflow/models"
)

// themeColors maps settings themes to graphviz fill colors.
var themeColors = map[string]string{
	models.ThemeGray:   "lightgray",
	models.ThemeBlue:   "lightblue",
	models.ThemeYellow: "lightyellow",
	models.ThemeOrange: "orange",
	models.ThemeGreen:  "lightgreen",
	models.ThemeRed:    "salmon",
	models.ThemePurple: "plum",
	models.ThemePink:   "pink",
}

// GraphOptions tune GeneratePipelineGraph.
type GraphOptions struct {
	// IncludeContacts adds one node per staged contact.
	IncludeContacts bool
	// Stage limits contacts to a single stage. Stage nodes are always drawn.
	Stage string
}

// PipelineGraph is rendered DOT source plus what went into it.
type PipelineGraph struct {
	DOT   string
	Nodes int
	Edges int
}

// GeneratePipelineGraph renders the pipeline as Graphviz DOT source.
func GeneratePipelineGraph(ctx context.Context, doc models.ExportDocument, opts GraphOptions) (*PipelineGraph, error) {
	settings := doc.Settings
	if settings == nil {
		settings = models.DefaultSettings()
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create graphviz: %w", err)
	}
	defer func() { _ = gv.Close() }()

	graph, err := gv.Graph()
	if err != nil {
		return nil, fmt.Errorf("failed to create graph: %w", err)
	}
	defer func() { _ = graph.Close() }()

	graph.SetLabel("Deal Pipeline")
	graph.SetRankDir(cgraph.LRRank)

	counts := make(map[string]int)
	for _, c := range doc.Contacts {
		counts[c.DealStage]++
	}

	result := &PipelineGraph{}
	stageNodes := make(map[string]*cgraph.Node, len(settings.DealStages))
	var prev *cgraph.Node
	for i, st := range settings.DealStages {
		node, err := graph.CreateNodeByName(fmt.Sprintf("stage_%d", i))
		if err != nil {
			return nil, fmt.Errorf("failed to create stage node: %w", err)
		}
		node.SetLabel(fmt.Sprintf("%s\n(%d)", st.Name, counts[st.Name]))
		node.SetShape("box")
		node.SetStyle("filled")
		node.SetFillColor(fillColor(st.Theme))
		stageNodes[st.Name] = node
		result.Nodes++

		if prev != nil {
			edge, err := graph.CreateEdgeByName(fmt.Sprintf("next_%d", i), prev, node)
			if err != nil {
				return nil, fmt.Errorf("failed to create edge: %w", err)
			}
			edge.SetStyle("bold")
			result.Edges++
		}
		prev = node
	}

	if opts.IncludeContacts {
		for _, c := range doc.Contacts {
			stageNode, ok := stageNodes[c.DealStage]
			if !ok || (opts.Stage != "" && c.DealStage != opts.Stage) {
				continue
			}
			node, err := graph.CreateNodeByName("contact_" + c.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to create contact node: %w", err)
			}
			label := c.Name
			if c.Company != "" {
				label += "\n" + c.Company
			}
			node.SetLabel(label)
			node.SetShape("ellipse")

			edge, err := graph.CreateEdgeByName("in_"+c.ID, stageNode, node)
			if err != nil {
				return nil, fmt.Errorf("failed to create edge: %w", err)
			}
			edge.SetStyle("dotted")
			edge.SetDir("none")
			result.Nodes++
			result.Edges++
		}
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.XDOT, &buf); err != nil {
		return nil, fmt.Errorf("failed to render graph: %w", err)
	}

	result.DOT = buf.String()
	return result, nil
}

func fillColor(theme string) string {
	if c, ok := themeColors[theme]; ok {
		return c
	}
	return "white"
}

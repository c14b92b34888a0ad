// ABOUTME: Visualization CLI commands
// ABOUTME: Handles viz dashboard and pipeline graph generation commands
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/harperreed/dealflow/store"
	"github.com/harperreed/dealflow/viz"
)

// VizGraphPipelineCommand generates the deal pipeline graph.
func VizGraphPipelineCommand(ctx context.Context, s *store.Store, args []string) error {
	fs := flag.NewFlagSet("viz graph", flag.ExitOnError)
	output := fs.String("output", "", "Output file (default: stdout)")
	contacts := fs.Bool("contacts", false, "Draw each staged contact")
	stage := fs.String("stage", "", "Only draw contacts in this stage")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *stage != "" {
		if _, ok := s.Settings(ctx).FindDealStage(*stage); !ok {
			return fmt.Errorf("unknown deal stage %q", *stage)
		}
	}

	graph, err := viz.GeneratePipelineGraph(ctx, s.Snapshot(ctx), viz.GraphOptions{
		IncludeContacts: *contacts || *stage != "",
		Stage:           *stage,
	})
	if err != nil {
		return err
	}

	if *output != "" {
		return os.WriteFile(*output, []byte(graph.DOT), 0644)
	}

	_, _ = fmt.Fprintln(out, graph.DOT)
	return nil
}

func VizDashboardCommand(ctx context.Context, s *store.Store, _ []string) error {
	stats := viz.GenerateDashboardStats(s.Snapshot(ctx), s.Now())
	_, _ = fmt.Fprint(out, viz.RenderDashboard(stats))
	return nil
}

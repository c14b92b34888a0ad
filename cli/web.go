// ABOUTME: Web UI subcommand
// ABOUTME: Serves the read-mostly browser dashboard on localhost until interrupted
package cli

import (
	"context"
	"flag"

	"github.com/charmbracelet/log"
	"github.com/harperreed/dealflow/store"
	"github.com/harperreed/dealflow/web"
)

// WebCommand starts the web UI.
func WebCommand(ctx context.Context, s *store.Store, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("web", flag.ExitOnError)
	port := fs.Int("port", 8080, "Port to listen on")
	if err := fs.Parse(args); err != nil {
		return err
	}

	server, err := web.NewServer(s, logger)
	if err != nil {
		return err
	}
	return server.Start(ctx, *port)
}

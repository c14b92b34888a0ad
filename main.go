// ABOUTME: Entry point for the dealflow CRM CLI, TUI and MCP server
// ABOUTME: Loads config, opens the store and routes to the requested command
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/harperreed/dealflow/classify"
	"github.com/harperreed/dealflow/cli"
	"github.com/harperreed/dealflow/config"
	"github.com/harperreed/dealflow/db"
	"github.com/harperreed/dealflow/store"
	"github.com/harperreed/dealflow/tui"
)

const version = "0.1.0"

// command is the shape every CLI subcommand shares.
type command func(ctx context.Context, s *store.Store, args []string) error

var crmCommands = map[string]command{
	"add-contact":      cli.AddContactCommand,
	"list-contacts":    cli.ListContactsCommand,
	"show-contact":     cli.ShowContactCommand,
	"update-contact":   cli.UpdateContactCommand,
	"delete-contact":   cli.DeleteContactCommand,
	"delete-all":       cli.DeleteAllCommand,
	"add-note":         cli.AddNoteCommand,
	"log-outcome":      cli.LogOutcomeCommand,
	"set-stage":        cli.SetStageCommand,
	"set-lead-type":    cli.SetLeadTypeCommand,
	"merge-duplicates": cli.MergeDuplicatesCommand,
	"import":           cli.ImportCommand,
	"export":           cli.ExportCommand,
	"seed-demo":        cli.SeedDemoCommand,
}

var followupCommands = map[string]command{
	"schedule": cli.FollowupScheduleCommand,
	"done":     cli.FollowupDoneCommand,
	"list":     cli.FollowupListCommand,
	"stats":    cli.FollowupStatsCommand,
}

var settingsCommands = map[string]command{
	"show": cli.SettingsShowCommand,
	"set":  cli.SettingsSetCommand,
}

var vizCommands = map[string]command{
	"dashboard": cli.VizDashboardCommand,
	"graph":     cli.VizGraphPipelineCommand,
}

func main() {
	os.Exit(run())
}

func run() int {
	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	dbPath := flag.String("db-path", "", "Database path (default: ~/.local/share/dealflow/dealflow.db)")
	backend := flag.String("backend", "", "Storage backend: sqlite, badger, memory")

	// Parse global flags; parsing stops at the first command word
	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("dealflow version %s\n", version)
		return 0
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		return 0
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if *backend != "" {
		cfg.Backend = *backend
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	logger := cfg.NewLogger()
	cli.Version = version
	cli.PageSize = cfg.PageSize

	// Route to top-level command
	name := args[0]
	commandArgs := args[1:]

	var cmd command
	switch name {
	case "crm":
		cmd = subcommand("crm", crmCommands, commandArgs)
		commandArgs = tail(commandArgs)
	case "followup":
		cmd = subcommand("followup", followupCommands, commandArgs)
		commandArgs = tail(commandArgs)
	case "settings":
		cmd = subcommand("settings", settingsCommands, commandArgs)
		commandArgs = tail(commandArgs)
	case "viz":
		cmd = subcommand("viz", vizCommands, commandArgs)
		commandArgs = tail(commandArgs)
	case "mcp":
		cmd = func(ctx context.Context, s *store.Store, _ []string) error {
			return cli.MCPCommand(ctx, s, logger)
		}
	case "web":
		cmd = func(ctx context.Context, s *store.Store, args []string) error {
			return cli.WebCommand(ctx, s, logger, args)
		}
	case "tui":
		cmd = func(ctx context.Context, s *store.Store, _ []string) error {
			return tui.Run(ctx, s, cfg.PageSize)
		}
	default:
		fmt.Printf("Unknown command: %s\n\n", name)
		printUsage()
		return 1
	}
	if cmd == nil {
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := openStore(ctx, cfg, logger)
	defer func() {
		if err := s.Close(); err != nil {
			logger.Warn("failed to close storage", "err", err)
		}
	}()

	if err := cmd(ctx, s, commandArgs); err != nil {
		logger.Error("command failed", "command", name, "err", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// subcommand looks up args[0] in table, printing usage when it's missing or unknown.
func subcommand(group string, table map[string]command, args []string) command {
	if len(args) == 0 {
		fmt.Printf("Error: %s requires a subcommand\n\n", group)
		printUsage()
		return nil
	}
	cmd, ok := table[args[0]]
	if !ok {
		fmt.Printf("Unknown %s command: %s\n\n", group, args[0])
		printUsage()
		return nil
	}
	return cmd
}

func tail(args []string) []string {
	if len(args) == 0 {
		return nil
	}
	return args[1:]
}

// openStore opens the configured backend. An unavailable backend still yields
// a working store that keeps data in memory for this session.
func openStore(ctx context.Context, cfg *config.Config, logger *log.Logger) *store.Store {
	path := cfg.ResolveDBPath()
	repo, err := db.Open(cfg.Backend, path)
	if err != nil {
		logger.Error("storage unavailable; running in memory only", "backend", cfg.Backend, "path", path, "err", err)
		repo = db.NewMemoryRepository()
	} else {
		logger.Debug("CRM database", "backend", repo.Name(), "path", path)
	}

	opts := []store.Option{store.WithLogger(logger)}
	suggester, err := classify.New(ctx, classify.Options{
		Kind:   cfg.Classifier,
		APIKey: cfg.APIKey,
		Model:  cfg.GeminiModel,
	})
	if err != nil {
		logger.Warn("stage suggestions disabled", "classifier", cfg.Classifier, "err", err)
	} else {
		opts = append(opts, store.WithSuggester(suggester))
	}

	return store.New(ctx, repo, opts...)
}

func printUsage() {
	fmt.Printf(`dealflow v%s - Contact and deal pipeline CRM for brokers

USAGE:
  dealflow [global flags] <command> [subcommand] [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --db-path <path>       Database path (default: ~/.local/share/dealflow/dealflow.db)
  --backend <name>       Storage backend: sqlite (default), badger, memory

COMMANDS:
  crm                    Contact management commands
  followup               Follow-up scheduling commands
  settings               Lead type, deal stage and call outcome settings
  viz                    Dashboard and pipeline graph
  tui                    Interactive terminal interface
  web                    Browser dashboard on localhost (--port 8080)
  mcp                    Start MCP server for agent clients

CRM COMMANDS:
  dealflow crm add-contact        Add a new contact
    --name <name>                   Contact name (required)
    --phone <phone>                 Phone number
    --email <email>                 Email address
    --company <company>             Company name
    --lead-type <type>              Lead type (see settings show)
    --stage <stage>                 Deal stage (see settings show)
    --note <text>                   Contact note
    --property <text>               Subject property
    --requirements <text>           Requirements

  dealflow crm list-contacts      List contacts
    --search <text>                 Search name, company, phone
    --lead-type <type>              Filter by lead type
    --stage <stage>                 Filter by deal stage
    --sort <order>                  activity, firstName, lastName
    --page <n>                      Page number (default: 1)
    --page-size <n>                 Page size (0 for all)

  dealflow crm show-contact <id>                Show a contact and its notes
  dealflow crm update-contact <id> [flags]      Update fields (same flags as add-contact)
  dealflow crm delete-contact <id>              Delete a contact
  dealflow crm delete-all --confirm             Delete all contacts and follow-ups
  dealflow crm add-note <id> <text>             Add a note (--type note|system)
  dealflow crm log-outcome <id> <outcome>       Log a call outcome, once per day
  dealflow crm set-stage <id> <stage>           Set deal stage (--clear to unset)
  dealflow crm set-lead-type <id> <type>        Set lead type (--clear to unset)
  dealflow crm merge-duplicates                 Merge contacts sharing a phone number
  dealflow crm import <file>                    Import CSV, vCard or JSON
    --format <csv|vcf|json>         Override detection by extension
    --map Field=Header              CSV column override (repeatable)
    --dry-run                       Show what would be imported
  dealflow crm export                           Export data
    --format <json|csv>             Output format (default: json)
    --output <file>                 Output file (default: stdout)
  dealflow crm seed-demo                        Add demo contacts (--count 50)

FOLLOWUP COMMANDS:
  dealflow followup schedule <id>   Schedule a follow-up
    --days <n>                      Days from today (default: 1)
    --never                         Mark as don't call again
  dealflow followup done <id>       Complete the open follow-up
  dealflow followup list            List open and overdue follow-ups
    --overdue-only                  Only overdue
    --all                           Include completed
    --limit <n>                     Max results
  dealflow followup stats           Counts by status

SETTINGS COMMANDS:
  dealflow settings show            Show taxonomies (--json for raw)
  dealflow settings set --file <f>  Replace taxonomies from a JSON file

VIZ COMMANDS:
  dealflow viz dashboard            Pipeline and follow-up overview
  dealflow viz graph                Generate deal pipeline graph (DOT)
    --output <file>                 Output file (default: stdout)
    --contacts                      Draw each staged contact
    --stage <stage>                 Only draw contacts in this stage

EXAMPLES:
  # Start MCP server for an agent client
  dealflow mcp

  # Add a contact
  dealflow crm add-contact --name "Jane Doe" --phone "555-0100" --lead-type Buyer

  # Import a spreadsheet export with a custom phone column
  dealflow crm import contacts.csv --map Phone="Mobile Number"

  # Browse the pipeline at http://localhost:9000
  dealflow web --port 9000

  # Follow up with someone in three days
  dealflow followup schedule 3f2a --days 3

`, version)
}

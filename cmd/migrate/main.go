// ABOUTME: Migration utility for copying CRM state between storage backends.
// ABOUTME: Provides dry-run and overwrite protection for moving between sqlite and badger.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/harperreed/dealflow/db"
)

// errTargetNotEmpty stops a migration that would overwrite existing contacts.
var errTargetNotEmpty = errors.New("target already has contacts")

func main() {
	fromBackend := flag.String("from", db.BackendSQLite, "Source backend: sqlite, badger")
	fromPath := flag.String("from-path", "", "Source database path (required)")
	toBackend := flag.String("to", db.BackendBadger, "Target backend: sqlite, badger")
	toPath := flag.String("to-path", "", "Target database path (required)")
	dryRun := flag.Bool("dry-run", false, "Show what would happen without making changes")
	force := flag.Bool("force", false, "Overwrite a target that already has contacts")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "migrate"})

	if *fromPath == "" || *toPath == "" {
		logger.Fatal("Error: -from-path and -to-path are required")
	}
	if *fromBackend == *toBackend && *fromPath == *toPath {
		logger.Fatal("Error: source and target are the same")
	}

	if err := run(*fromBackend, *fromPath, *toBackend, *toPath, *dryRun, *force, logger); err != nil {
		logger.Fatal("Migration failed", "err", err)
	}
}

func run(fromBackend, fromPath, toBackend, toPath string, dryRun, force bool, logger *log.Logger) error {
	ctx := context.Background()
	from, err := db.Open(fromBackend, fromPath)
	if err != nil {
		return fmt.Errorf("failed to open source %s: %w", fromBackend, err)
	}
	defer func() { _ = from.Close() }()

	to, err := db.Open(toBackend, toPath)
	if err != nil {
		return fmt.Errorf("failed to open target %s: %w", toBackend, err)
	}
	defer func() { _ = to.Close() }()

	s, err := migrate(ctx, from, to, dryRun, force, logger)
	if err != nil {
		return err
	}

	if dryRun {
		logger.Info("Dry run: nothing written", "contacts", s.Contacts, "followups", s.FollowUps)
		return nil
	}
	logger.Info("Migration completed successfully", "contacts", s.Contacts, "followups", s.FollowUps)
	return nil
}

type summary struct {
	Contacts  int
	FollowUps int
	Stages    int
}

// migrate loads the full state from one repository and writes it to another.
func migrate(ctx context.Context, from, to db.Repository, dryRun, force bool, logger *log.Logger) (summary, error) {
	state, report, err := db.LoadState(ctx, from, logger)
	if err != nil {
		return summary{}, fmt.Errorf("failed to read source: %w", err)
	}
	if len(report.Corrupt) > 0 {
		return summary{}, fmt.Errorf("source has corrupt records %v; refusing to copy defaults over them", report.Corrupt)
	}

	s := summary{
		Contacts:  len(state.Contacts),
		FollowUps: len(state.FollowUps),
		Stages:    len(state.Settings.DealStages),
	}
	logger.Info("Source state", "backend", from.Name(), "contacts", s.Contacts, "followups", s.FollowUps, "stages", s.Stages)

	existing, _, err := db.LoadState(ctx, to, logger)
	if err != nil {
		return s, fmt.Errorf("failed to read target: %w", err)
	}
	if len(existing.Contacts) > 0 && !force {
		return s, fmt.Errorf("%w (%d); use -force to overwrite", errTargetNotEmpty, len(existing.Contacts))
	}

	if dryRun {
		return s, nil
	}

	if err := db.SaveState(ctx, to, state); err != nil {
		return s, fmt.Errorf("failed to write target: %w", err)
	}
	return s, nil
}

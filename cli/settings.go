// ABOUTME: Settings CLI commands
// ABOUTME: Shows the label taxonomies and replaces them from a JSON file
package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/harperreed/dealflow/models"
	"github.com/harperreed/dealflow/store"
)

// SettingsShowCommand prints the lead types, deal stages and call outcomes.
func SettingsShowCommand(ctx context.Context, s *store.Store, args []string) error {
	fs := flag.NewFlagSet("settings show", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "Print the raw settings record")
	_ = fs.Parse(args)

	settings := s.Settings(ctx)
	if *asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(settings)
	}

	_, _ = fmt.Fprintln(out, "LEAD TYPES")
	for _, lt := range settings.LeadTypes {
		_, _ = fmt.Fprintf(out, "  %-14s %s\n", lt.Name, lt.Theme)
	}
	_, _ = fmt.Fprintln(out, "\nDEAL STAGES")
	for i, st := range settings.DealStages {
		_, _ = fmt.Fprintf(out, "  %d. %-11s %s\n", i+1, st.Name, st.Theme)
	}
	_, _ = fmt.Fprintln(out, "\nCALL OUTCOMES")
	for _, co := range settings.CallOutcomes {
		_, _ = fmt.Fprintf(out, "  %s\n", co.Name)
	}
	return nil
}

// SettingsSetCommand replaces the settings record with the contents of a JSON file.
func SettingsSetCommand(ctx context.Context, s *store.Store, args []string) error {
	fs := flag.NewFlagSet("settings set", flag.ExitOnError)
	file := fs.String("file", "", "JSON file with leadTypes, dealStages and callOutcomes (required)")
	_ = fs.Parse(args)

	if *file == "" {
		return fmt.Errorf("--file is required")
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		return fmt.Errorf("failed to read settings file: %w", err)
	}
	var next models.AppSettings
	if err := json.Unmarshal(data, &next); err != nil {
		return fmt.Errorf("%w: invalid settings file: %v", models.ErrValidation, err)
	}

	saved, err := s.UpdateSettings(ctx, &next)
	if err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}

	_, _ = fmt.Fprintf(out, "✓ Settings updated: %d lead types, %d deal stages, %d call outcomes\n",
		len(saved.LeadTypes), len(saved.DealStages), len(saved.CallOutcomes))
	return nil
}

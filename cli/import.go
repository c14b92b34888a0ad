// ABOUTME: Import and export CLI commands
// ABOUTME: Moves contacts in from CSV/vCard/JSON files and out as JSON or CSV
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/harperreed/dealflow/export"
	"github.com/harperreed/dealflow/importer"
	"github.com/harperreed/dealflow/models"
	"github.com/harperreed/dealflow/store"
)

// mappingFlag collects repeated --map Field=Header overrides.
type mappingFlag importer.Mapping

func (m mappingFlag) String() string {
	parts := make([]string, 0, len(m))
	for f, h := range m {
		parts = append(parts, fmt.Sprintf("%s=%s", f, h))
	}
	return strings.Join(parts, ",")
}

func (m mappingFlag) Set(v string) error {
	field, header, ok := strings.Cut(v, "=")
	if !ok {
		return fmt.Errorf("expected Field=Header, got %q", v)
	}
	f, err := importer.ParseField(field)
	if err != nil {
		return err
	}
	m[f] = strings.TrimSpace(header)
	return nil
}

// ImportCommand decodes a contacts file and prepends the valid records.
func ImportCommand(ctx context.Context, s *store.Store, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	format := fs.String("format", "", "File format: csv, vcf, json (default: from extension)")
	dryRun := fs.Bool("dry-run", false, "Show what would be imported without saving")
	mapping := mappingFlag{}
	fs.Var(mapping, "map", "CSV column override Field=Header (repeatable)")
	path, _ := parseWithID(fs, args)

	if path == "" {
		return fmt.Errorf("import file is required")
	}

	f := importer.Format(strings.ToLower(*format))
	if f == "" {
		detected, err := importer.DetectFormat(path)
		if err != nil {
			return err
		}
		f = detected
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open import file: %w", err)
	}
	defer func() { _ = file.Close() }()

	batch, err := importer.Decode(file, f, importer.Options{Mapping: importer.Mapping(mapping)})
	printRejections(batch.Rejected)
	if errors.Is(err, models.ErrNoValidContacts) {
		return fmt.Errorf("%w: every record needs a name and a phone", err)
	}
	if err != nil {
		return fmt.Errorf("failed to import %s: %w", path, err)
	}

	if *dryRun {
		_, _ = fmt.Fprintf(out, "Would import %d contact(s) from %s\n", len(batch.Contacts), path)
		for _, c := range batch.Contacts {
			_, _ = fmt.Fprintf(out, "  %s  %s\n", c.Name, c.Phone)
		}
		return nil
	}

	n, err := s.ImportContacts(ctx, batch.Contacts)
	if err != nil {
		return fmt.Errorf("failed to import contacts: %w", err)
	}
	_, _ = fmt.Fprintf(out, "✓ Imported %d contact(s) from %s\n", n, path)
	if len(batch.Rejected) > 0 {
		_, _ = fmt.Fprintf(out, "  Skipped: %d\n", len(batch.Rejected))
	}
	return nil
}

func printRejections(rejected []importer.Rejection) {
	for _, r := range rejected {
		name := r.Name
		if name == "" {
			name = "(no name)"
		}
		_, _ = fmt.Fprintf(out, "• record %d %s skipped: %s\n", r.Index, name, r.Reason)
	}
}

// ExportCommand writes the full state as JSON, or contacts as CSV.
func ExportCommand(ctx context.Context, s *store.Store, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	formatFlag := fs.String("format", "json", "Export format: json or csv")
	output := fs.String("output", "", "Output file (default: stdout)")
	_ = fs.Parse(args)

	format, err := export.ParseFormat(*formatFlag)
	if err != nil {
		return err
	}

	doc := s.Snapshot(ctx)
	if *output == "" {
		return export.Write(out, format, doc, s.Location())
	}

	file, err := os.Create(*output)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := export.Write(file, format, doc, s.Location()); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to write export: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}

	_, _ = fmt.Fprintf(os.Stderr, "✓ Exported %d contact(s) to %s\n", len(doc.Contacts), *output)
	return nil
}

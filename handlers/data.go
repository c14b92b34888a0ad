// ABOUTME: Import, export and settings MCP tool handlers
// ABOUTME: Moves whole files of contacts in and out and replaces the label taxonomies
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/dealflow/export"
	"github.com/harperreed/dealflow/importer"
	"github.com/harperreed/dealflow/models"
	"github.com/harperreed/dealflow/store"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type DataHandlers struct {
	store *store.Store
}

func NewDataHandlers(s *store.Store) *DataHandlers {
	return &DataHandlers{store: s}
}

type ImportContactsInput struct {
	Format  string            `json:"format" jsonschema:"File format: csv, vcf or json (required)"`
	Content string            `json:"content" jsonschema:"Full file contents (required)"`
	Mapping map[string]string `json:"mapping,omitempty" jsonschema:"CSV column overrides: field name to header, e.g. {\"phone\": \"Mobile\"}"`
}

type ImportContactsOutput struct {
	Imported int      `json:"imported"`
	Skipped  []string `json:"skipped"`
}

func (h *DataHandlers) ImportContacts(ctx context.Context, _ *mcp.CallToolRequest, input ImportContactsInput) (*mcp.CallToolResult, ImportContactsOutput, error) {
	format := importer.Format(strings.ToLower(input.Format))
	switch format {
	case importer.FormatCSV, importer.FormatVCF, importer.FormatJSON:
	default:
		return nil, ImportContactsOutput{}, fmt.Errorf("invalid format: %s (valid: csv, vcf, json)", input.Format)
	}

	mapping := importer.Mapping{}
	for field, header := range input.Mapping {
		f, err := importer.ParseField(field)
		if err != nil {
			return nil, ImportContactsOutput{}, err
		}
		mapping[f] = header
	}

	batch, err := importer.Decode(strings.NewReader(input.Content), format, importer.Options{Mapping: mapping})
	if err != nil {
		return nil, ImportContactsOutput{}, fmt.Errorf("failed to import contacts: %w", err)
	}

	n, err := h.store.ImportContacts(ctx, batch.Contacts)
	if err != nil {
		return nil, ImportContactsOutput{}, fmt.Errorf("failed to import contacts: %w", err)
	}

	skipped := make([]string, 0, len(batch.Rejected))
	for _, r := range batch.Rejected {
		skipped = append(skipped, fmt.Sprintf("record %d %s: %s", r.Index, r.Name, r.Reason))
	}
	return nil, ImportContactsOutput{Imported: n, Skipped: skipped}, nil
}

type ExportDataInput struct {
	Format string `json:"format,omitempty" jsonschema:"Export format: json (default, full state) or csv (contacts only)"`
}

type ExportDataOutput struct {
	Format  string `json:"format"`
	Content string `json:"content"`
}

func (h *DataHandlers) ExportData(ctx context.Context, _ *mcp.CallToolRequest, input ExportDataInput) (*mcp.CallToolResult, ExportDataOutput, error) {
	format, err := export.ParseFormat(input.Format)
	if err != nil {
		return nil, ExportDataOutput{}, err
	}

	var buf strings.Builder
	if err := export.Write(&buf, format, h.store.Snapshot(ctx), h.store.Location()); err != nil {
		return nil, ExportDataOutput{}, fmt.Errorf("failed to export: %w", err)
	}
	return nil, ExportDataOutput{Format: string(format), Content: buf.String()}, nil
}

type SettingsOutput struct {
	Settings models.AppSettings `json:"settings"`
}

func (h *DataHandlers) GetSettings(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, SettingsOutput, error) {
	return nil, SettingsOutput{Settings: *h.store.Settings(ctx)}, nil
}

type UpdateSettingsInput struct {
	Settings models.AppSettings `json:"settings" jsonschema:"Complete settings record; it replaces the current one"`
}

func (h *DataHandlers) UpdateSettings(ctx context.Context, _ *mcp.CallToolRequest, input UpdateSettingsInput) (*mcp.CallToolResult, SettingsOutput, error) {
	saved, err := h.store.UpdateSettings(ctx, &input.Settings)
	if err != nil {
		return nil, SettingsOutput{}, fmt.Errorf("failed to update settings: %w", err)
	}
	return nil, SettingsOutput{Settings: *saved}, nil
}

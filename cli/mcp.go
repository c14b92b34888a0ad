// ABOUTME: MCP server subcommand
// ABOUTME: Starts the MCP server so agent clients can work the CRM over stdio
package cli

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/harperreed/dealflow/handlers"
	"github.com/harperreed/dealflow/store"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is reported to MCP clients; main sets it from the build.
var Version = "dev"

// NewMCPServer registers every tool, resource and prompt against s.
func NewMCPServer(s *store.Store) *mcp.Server {
	contactHandlers := handlers.NewContactHandlers(s)
	followUpHandlers := handlers.NewFollowUpHandlers(s)
	dataHandlers := handlers.NewDataHandlers(s)
	vizHandlers := handlers.NewVizHandlers(s)
	resourceHandlers := handlers.NewResourceHandlers(s)
	promptHandlers := handlers.NewPromptHandlers(s)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "dealflow",
		Version: Version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_contact",
		Description: "Add a new contact to the CRM",
	}, contactHandlers.AddContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_contacts",
		Description: "Search, filter, sort and page through contacts",
	}, contactHandlers.FindContacts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_contact",
		Description: "Get one contact with its full note history",
	}, contactHandlers.GetContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_contact",
		Description: "Update an existing contact's fields without counting as activity",
	}, contactHandlers.UpdateContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_contact",
		Description: "Delete a contact",
	}, contactHandlers.DeleteContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_note",
		Description: "Add a note to a contact's history and update last activity",
	}, contactHandlers.AddNote)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "log_call_outcome",
		Description: "Record a call outcome for a contact (at most once per outcome per day)",
	}, contactHandlers.LogCallOutcome)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "set_deal_stage",
		Description: "Move a contact to a deal stage, or clear it with an empty value",
	}, contactHandlers.SetDealStage)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "set_lead_type",
		Description: "Set a contact's lead type, or clear it with an empty value",
	}, contactHandlers.SetLeadType)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "merge_duplicates",
		Description: "Merge contacts that share a phone number, keeping the most recently active one",
	}, contactHandlers.MergeDuplicates)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "schedule_follow_up",
		Description: "Schedule a follow-up N days out, or mark a contact as don't call again",
	}, followUpHandlers.ScheduleFollowUp)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "complete_follow_up",
		Description: "Mark a contact's open follow-up as done",
	}, followUpHandlers.CompleteFollowUp)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_follow_ups",
		Description: "List follow-ups with their open, overdue or completed status",
	}, followUpHandlers.ListFollowUps)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "import_contacts",
		Description: "Import contacts from CSV, vCard or JSON file contents",
	}, dataHandlers.ImportContacts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "export_data",
		Description: "Export the full CRM state as JSON, or contacts as CSV",
	}, dataHandlers.ExportData)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_settings",
		Description: "Get the lead type, deal stage and call outcome taxonomies",
	}, dataHandlers.GetSettings)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_settings",
		Description: "Replace the lead type, deal stage and call outcome taxonomies",
	}, dataHandlers.UpdateSettings)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "dashboard",
		Description: "Pipeline and follow-up overview",
	}, vizHandlers.Dashboard)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_graph",
		Description: "Generate a Graphviz DOT graph of the deal pipeline",
	}, vizHandlers.GenerateGraph)

	for _, r := range []*mcp.Resource{
		{URI: "crm://contacts", Name: "contacts", Description: "All contacts", MIMEType: "application/json"},
		{URI: "crm://followups", Name: "followups", Description: "Follow-ups with status", MIMEType: "application/json"},
		{URI: "crm://settings", Name: "settings", Description: "Label taxonomies", MIMEType: "application/json"},
		{URI: "crm://pipeline", Name: "pipeline", Description: "Pipeline dashboard", MIMEType: "text/plain"},
	} {
		server.AddResource(r, resourceHandlers.ReadResource)
	}
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "crm://contacts/{id}",
		Name:        "contact",
		Description: "A single contact by ID",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddPrompt(&mcp.Prompt{
		Name:        "contact-summary",
		Description: "Summarise a contact and suggest next steps",
		Arguments: []*mcp.PromptArgument{
			{Name: "contact_id", Description: "Contact ID", Required: true},
		},
	}, promptHandlers.GetPrompt)
	server.AddPrompt(&mcp.Prompt{
		Name:        "pipeline-review",
		Description: "Review the deal pipeline",
	}, promptHandlers.GetPrompt)
	server.AddPrompt(&mcp.Prompt{
		Name:        "follow-up-plan",
		Description: "Plan today's follow-up calls",
	}, promptHandlers.GetPrompt)

	return server
}

// MCPCommand starts the MCP server on stdio
func MCPCommand(ctx context.Context, s *store.Store, logger *log.Logger) error {
	logger.Info("starting MCP server", "backend", s.Backend())
	return NewMCPServer(s).Run(ctx, &mcp.StdioTransport{})
}

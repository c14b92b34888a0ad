// ABOUTME: MCP prompt handlers for reusable CRM workflow templates
// ABOUTME: Provides contact summary, pipeline review and follow-up planning prompts
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/dealflow/models"
	"github.com/harperreed/dealflow/store"
	"github.com/harperreed/dealflow/viz"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// promptNoteLimit caps how much note history goes into a prompt.
const promptNoteLimit = 20

type PromptHandlers struct {
	store *store.Store
}

func NewPromptHandlers(s *store.Store) *PromptHandlers {
	return &PromptHandlers{store: s}
}

// GetPrompt generates the prompt message based on the template
func (h *PromptHandlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	name := request.Params.Name
	arguments := request.Params.Arguments
	switch name {
	case "contact-summary":
		return h.getContactSummaryPrompt(ctx, arguments)
	case "pipeline-review":
		return h.getPipelineReviewPrompt(ctx)
	case "follow-up-plan":
		return h.getFollowUpPlanPrompt(ctx)
	default:
		return nil, fmt.Errorf("unknown prompt: %s", name)
	}
}

func (h *PromptHandlers) getContactSummaryPrompt(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	contactID, ok := args["contact_id"]
	if !ok || contactID == "" {
		return nil, fmt.Errorf("contact_id is required")
	}

	contact, err := h.store.Contact(ctx, contactID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contact: %w", err)
	}
	loc := h.store.Location()

	var promptText strings.Builder
	promptText.WriteString("Please provide a comprehensive summary of this contact:\n\n")
	promptText.WriteString(fmt.Sprintf("Name: %s\n", contact.Name))
	writeField(&promptText, "Company", contact.Company)
	writeField(&promptText, "Phone", contact.Phone)
	writeField(&promptText, "Email", contact.Email)
	writeField(&promptText, "Lead type", contact.LeadType)
	writeField(&promptText, "Deal stage", contact.DealStage)
	writeField(&promptText, "Subject property", contact.SubjectProperty)
	writeField(&promptText, "Requirements", contact.Requirements)
	writeField(&promptText, "Contact note", contact.ContactNote)
	if contact.LastActivity > 0 {
		promptText.WriteString(fmt.Sprintf("Last activity: %s\n", models.FromMillis(contact.LastActivity, loc).Format("2006-01-02")))
	}
	if f, open := h.store.OpenFollowUp(ctx, contact.ID); open {
		promptText.WriteString(fmt.Sprintf("Follow-up due: %s\n", models.FromMillis(f.DueDate, loc).Format("2006-01-02")))
	}

	if len(contact.Notes) > 0 {
		promptText.WriteString("\nNote history (newest first):\n")
		for i, n := range contact.Notes {
			if i == promptNoteLimit {
				promptText.WriteString(fmt.Sprintf("... and %d older notes\n", len(contact.Notes)-promptNoteLimit))
				break
			}
			promptText.WriteString(fmt.Sprintf("- [%s %s] %s\n",
				models.FromMillis(n.Timestamp, loc).Format("2006-01-02"), n.Type, n.Text))
		}
	}

	promptText.WriteString("\nPlease analyze this contact and provide:")
	promptText.WriteString("\n1. A brief summary of where the deal stands")
	promptText.WriteString("\n2. Recommendations for next steps or follow-up actions")
	promptText.WriteString("\n3. Any patterns or insights from their call history")

	return userPrompt(fmt.Sprintf("Summary for contact: %s", contact.Name), promptText.String()), nil
}

func (h *PromptHandlers) getPipelineReviewPrompt(ctx context.Context) (*mcp.GetPromptResult, error) {
	stats := viz.GenerateDashboardStats(h.store.Snapshot(ctx), h.store.Now())

	var promptText strings.Builder
	promptText.WriteString("Here is the current state of my deal pipeline:\n\n")
	promptText.WriteString(viz.RenderDashboard(stats))
	promptText.WriteString("\nPlease:")
	promptText.WriteString("\n1. Point out stages where deals are piling up")
	promptText.WriteString("\n2. Suggest which stalled contacts to revisit first")
	promptText.WriteString("\n3. Recommend how to balance prospecting against closing work")

	return userPrompt("Deal pipeline review", promptText.String()), nil
}

func (h *PromptHandlers) getFollowUpPlanPrompt(ctx context.Context) (*mcp.GetPromptResult, error) {
	loc := h.store.Location()

	var promptText strings.Builder
	promptText.WriteString("These follow-ups are due or overdue:\n\n")

	count := 0
	for _, v := range h.store.FollowUpViews(ctx) {
		if v.Status == models.FollowUpCompleted {
			continue
		}
		promptText.WriteString(fmt.Sprintf("- %s (%s) due %s [%s]\n",
			v.ContactName, v.Phone, models.FromMillis(v.DueDate, loc).Format("2006-01-02"), v.Status))
		count++
	}
	if count == 0 {
		promptText.WriteString("No open follow-ups.\n")
	}

	promptText.WriteString("\nPlease:")
	promptText.WriteString("\n1. Order today's calls by priority")
	promptText.WriteString("\n2. Suggest a short talking point for each")
	promptText.WriteString("\n3. Flag anyone who should be rescheduled or dropped")

	return userPrompt("Follow-up plan", promptText.String()), nil
}

func writeField(b *strings.Builder, label, value string) {
	if value != "" {
		b.WriteString(fmt.Sprintf("%s: %s\n", label, value))
	}
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: text},
			},
		},
	}
}

// ABOUTME: Follow-up MCP tool handlers
// ABOUTME: Schedule, complete and list follow-ups with derived open/overdue/completed status
package handlers

import (
	"context"
	"fmt"

	"github.com/harperreed/dealflow/models"
	"github.com/harperreed/dealflow/store"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type FollowUpHandlers struct {
	store *store.Store
}

func NewFollowUpHandlers(s *store.Store) *FollowUpHandlers {
	return &FollowUpHandlers{store: s}
}

type ScheduleFollowUpInput struct {
	ContactID string `json:"contact_id" jsonschema:"Contact ID (required)"`
	Days      *int   `json:"days,omitempty" jsonschema:"Days from today; the due date is local midnight of that day"`
	Never     bool   `json:"never,omitempty" jsonschema:"Don't call again: removes the open follow-up"`
}

func (h *FollowUpHandlers) ScheduleFollowUp(ctx context.Context, _ *mcp.CallToolRequest, input ScheduleFollowUpInput) (*mcp.CallToolResult, ActionOutput, error) {
	if input.ContactID == "" {
		return nil, ActionOutput{}, fmt.Errorf("contact_id is required")
	}

	actionKey := store.DefaultFollowUpActionKey
	days := input.Days
	switch {
	case input.Never:
		actionKey = "followup-never"
		days = nil
	case days == nil:
		return nil, ActionOutput{}, fmt.Errorf("days is required unless never is set")
	case *days < 0:
		return nil, ActionOutput{}, fmt.Errorf("days must not be negative")
	}

	contact, err := h.store.ScheduleFollowUpAction(ctx, input.ContactID, days, actionKey)
	return actionResult(contact, err, "failed to schedule follow-up")
}

func (h *FollowUpHandlers) CompleteFollowUp(ctx context.Context, _ *mcp.CallToolRequest, input ContactIDInput) (*mcp.CallToolResult, ContactOutput, error) {
	if input.ID == "" {
		return nil, ContactOutput{}, fmt.Errorf("id is required")
	}
	if _, open := h.store.OpenFollowUp(ctx, input.ID); !open {
		return nil, ContactOutput{}, fmt.Errorf("contact %s has no open follow-up", input.ID)
	}

	contact, err := h.store.CompleteFollowUpAction(ctx, input.ID)
	if err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to complete follow-up: %w", err)
	}
	return nil, ContactOutput{Contact: contact}, nil
}

type ListFollowUpsInput struct {
	Status string `json:"status,omitempty" jsonschema:"Filter by status: open, overdue or completed"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum results (default all)"`
}

type FollowUpOutput struct {
	ContactID   string `json:"contact_id"`
	ContactName string `json:"contact_name"`
	Phone       string `json:"phone,omitempty"`
	DueDate     string `json:"due_date"`
	Status      string `json:"status"`
}

type ListFollowUpsOutput struct {
	FollowUps []FollowUpOutput `json:"follow_ups"`
	Count     int              `json:"count"`
}

func (h *FollowUpHandlers) ListFollowUps(ctx context.Context, _ *mcp.CallToolRequest, input ListFollowUpsInput) (*mcp.CallToolResult, ListFollowUpsOutput, error) {
	status := models.FollowUpStatus(input.Status)
	switch status {
	case "", models.FollowUpOpen, models.FollowUpOverdue, models.FollowUpCompleted:
	default:
		return nil, ListFollowUpsOutput{}, fmt.Errorf("invalid status: %s (valid: open, overdue, completed)", input.Status)
	}

	loc := h.store.Location()
	views := []FollowUpOutput{}
	for _, v := range h.store.FollowUpViews(ctx) {
		if status != "" && v.Status != status {
			continue
		}
		views = append(views, FollowUpOutput{
			ContactID:   v.ContactID,
			ContactName: v.ContactName,
			Phone:       v.Phone,
			DueDate:     models.FromMillis(v.DueDate, loc).Format("2006-01-02"),
			Status:      string(v.Status),
		})
		if input.Limit > 0 && len(views) == input.Limit {
			break
		}
	}

	return nil, ListFollowUpsOutput{FollowUps: views, Count: len(views)}, nil
}

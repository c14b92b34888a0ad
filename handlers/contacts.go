// ABOUTME: Contact MCP tool handlers
// ABOUTME: Implements add, find, get, update and delete contact tools plus note and label workflows
package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/harperreed/dealflow/models"
	"github.com/harperreed/dealflow/store"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const defaultFindLimit = 10

type ContactHandlers struct {
	store *store.Store
}

func NewContactHandlers(s *store.Store) *ContactHandlers {
	return &ContactHandlers{store: s}
}

type AddContactInput struct {
	Name            string `json:"name" jsonschema:"Contact name (required)"`
	Company         string `json:"company,omitempty" jsonschema:"Company name"`
	Phone           string `json:"phone,omitempty" jsonschema:"Contact phone number"`
	Email           string `json:"email,omitempty" jsonschema:"Contact email address"`
	LeadType        string `json:"lead_type,omitempty" jsonschema:"Lead type label from settings"`
	DealStage       string `json:"deal_stage,omitempty" jsonschema:"Deal stage label from settings"`
	ContactNote     string `json:"contact_note,omitempty" jsonschema:"Free-form note about the contact"`
	SubjectProperty string `json:"subject_property,omitempty" jsonschema:"Property the contact is interested in"`
	Requirements    string `json:"requirements,omitempty" jsonschema:"What the contact is looking for"`
}

type ContactOutput struct {
	Contact models.Contact `json:"contact"`
}

func (h *ContactHandlers) AddContact(ctx context.Context, _ *mcp.CallToolRequest, input AddContactInput) (*mcp.CallToolResult, ContactOutput, error) {
	if input.Name == "" {
		return nil, ContactOutput{}, fmt.Errorf("name is required")
	}

	contact, err := h.store.CreateContact(ctx, models.ContactInput{
		Name:            input.Name,
		Company:         input.Company,
		Phone:           input.Phone,
		Email:           input.Email,
		LeadType:        input.LeadType,
		DealStage:       input.DealStage,
		ContactNote:     input.ContactNote,
		SubjectProperty: input.SubjectProperty,
		Requirements:    input.Requirements,
	})
	if err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to create contact: %w", err)
	}

	return nil, ContactOutput{Contact: contact}, nil
}

type FindContactsInput struct {
	Query     string `json:"query,omitempty" jsonschema:"Case-insensitive search over name, company and phone"`
	LeadType  string `json:"lead_type,omitempty" jsonschema:"Exact lead type filter"`
	DealStage string `json:"deal_stage,omitempty" jsonschema:"Exact deal stage filter"`
	Sort      string `json:"sort,omitempty" jsonschema:"Sort order: activity (default), firstName or lastName"`
	Page      int    `json:"page,omitempty" jsonschema:"1-based page number (default 1)"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Page size (default 10)"`
}

type FindContactsOutput struct {
	Contacts   []models.Contact `json:"contacts"`
	TotalCount int              `json:"total_count"`
}

func (h *ContactHandlers) FindContacts(ctx context.Context, _ *mcp.CallToolRequest, input FindContactsInput) (*mcp.CallToolResult, FindContactsOutput, error) {
	order, err := models.ParseSortOrder(input.Sort)
	if err != nil {
		return nil, FindContactsOutput{}, err
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultFindLimit
	}

	res := h.store.Query(ctx, models.QuerySpec{
		Page:            input.Page,
		PageSize:        limit,
		SearchTerm:      strings.TrimSpace(input.Query),
		LeadTypeFilter:  input.LeadType,
		DealStageFilter: input.DealStage,
		SortOrder:       order,
	})

	return nil, FindContactsOutput{Contacts: res.Items, TotalCount: res.TotalCount}, nil
}

type ContactIDInput struct {
	ID string `json:"id" jsonschema:"Contact ID (required)"`
}

func (h *ContactHandlers) GetContact(ctx context.Context, _ *mcp.CallToolRequest, input ContactIDInput) (*mcp.CallToolResult, ContactOutput, error) {
	if input.ID == "" {
		return nil, ContactOutput{}, fmt.Errorf("id is required")
	}
	contact, err := h.store.Contact(ctx, input.ID)
	if err != nil {
		return nil, ContactOutput{}, err
	}
	return nil, ContactOutput{Contact: contact}, nil
}

// UpdateContactInput uses pointers so an agent can clear a field with "".
type UpdateContactInput struct {
	ID              string  `json:"id" jsonschema:"Contact ID (required)"`
	Name            *string `json:"name,omitempty" jsonschema:"Updated contact name"`
	Company         *string `json:"company,omitempty" jsonschema:"Updated company"`
	Phone           *string `json:"phone,omitempty" jsonschema:"Updated phone number"`
	Email           *string `json:"email,omitempty" jsonschema:"Updated email address"`
	LeadType        *string `json:"lead_type,omitempty" jsonschema:"Updated lead type"`
	DealStage       *string `json:"deal_stage,omitempty" jsonschema:"Updated deal stage (does not count as activity)"`
	ContactNote     *string `json:"contact_note,omitempty" jsonschema:"Updated contact note"`
	SubjectProperty *string `json:"subject_property,omitempty" jsonschema:"Updated subject property"`
	Requirements    *string `json:"requirements,omitempty" jsonschema:"Updated requirements"`
}

func (h *ContactHandlers) UpdateContact(ctx context.Context, _ *mcp.CallToolRequest, input UpdateContactInput) (*mcp.CallToolResult, ContactOutput, error) {
	if input.ID == "" {
		return nil, ContactOutput{}, fmt.Errorf("id is required")
	}

	patch := models.ContactPatch{
		Name:            input.Name,
		Company:         input.Company,
		Phone:           input.Phone,
		Email:           input.Email,
		LeadType:        input.LeadType,
		DealStage:       input.DealStage,
		ContactNote:     input.ContactNote,
		SubjectProperty: input.SubjectProperty,
		Requirements:    input.Requirements,
	}
	if patch.IsEmpty() {
		return nil, ContactOutput{}, fmt.Errorf("no fields to update")
	}

	contact, err := h.store.UpdateContact(ctx, input.ID, patch)
	if err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to update contact: %w", err)
	}
	return nil, ContactOutput{Contact: contact}, nil
}

type DeleteContactOutput struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (h *ContactHandlers) DeleteContact(ctx context.Context, _ *mcp.CallToolRequest, input ContactIDInput) (*mcp.CallToolResult, DeleteContactOutput, error) {
	if input.ID == "" {
		return nil, DeleteContactOutput{}, fmt.Errorf("id is required")
	}

	removed, err := h.store.DeleteContact(ctx, input.ID)
	if err != nil {
		return nil, DeleteContactOutput{}, fmt.Errorf("failed to delete contact: %w", err)
	}
	if !removed {
		return nil, DeleteContactOutput{Success: false, Message: "contact not found"}, nil
	}
	return nil, DeleteContactOutput{Success: true, Message: "contact deleted"}, nil
}

type AddNoteInput struct {
	ContactID string `json:"contact_id" jsonschema:"Contact ID (required)"`
	Text      string `json:"text" jsonschema:"Note text (required)"`
	Type      string `json:"type,omitempty" jsonschema:"Note type: note (default), outcome, autotag or system"`
}

func (h *ContactHandlers) AddNote(ctx context.Context, _ *mcp.CallToolRequest, input AddNoteInput) (*mcp.CallToolResult, ContactOutput, error) {
	if input.ContactID == "" {
		return nil, ContactOutput{}, fmt.Errorf("contact_id is required")
	}
	typ := models.NoteType(input.Type)
	if typ == "" {
		typ = models.NoteTypeNote
	}

	contact, err := h.store.AddNote(ctx, input.ContactID, input.Text, typ)
	if err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to add note: %w", err)
	}
	return nil, ContactOutput{Contact: contact}, nil
}

type LogOutcomeInput struct {
	ContactID string `json:"contact_id" jsonschema:"Contact ID (required)"`
	Outcome   string `json:"outcome" jsonschema:"Call outcome label from settings (required)"`
}

type ActionOutput struct {
	Contact models.Contact `json:"contact"`
	// Throttled is true when the action was already performed today and nothing changed.
	Throttled bool `json:"throttled"`
}

func (h *ContactHandlers) LogCallOutcome(ctx context.Context, _ *mcp.CallToolRequest, input LogOutcomeInput) (*mcp.CallToolResult, ActionOutput, error) {
	if input.ContactID == "" {
		return nil, ActionOutput{}, fmt.Errorf("contact_id is required")
	}
	contact, err := h.store.LogOutcome(ctx, input.ContactID, input.Outcome)
	return actionResult(contact, err, "failed to log outcome")
}

type SetLabelInput struct {
	ContactID string `json:"contact_id" jsonschema:"Contact ID (required)"`
	Value     string `json:"value" jsonschema:"Label name from settings, empty to clear"`
}

func (h *ContactHandlers) SetDealStage(ctx context.Context, _ *mcp.CallToolRequest, input SetLabelInput) (*mcp.CallToolResult, ContactOutput, error) {
	if input.ContactID == "" {
		return nil, ContactOutput{}, fmt.Errorf("contact_id is required")
	}
	if input.Value != "" {
		if _, ok := h.store.Settings(ctx).FindDealStage(input.Value); !ok {
			return nil, ContactOutput{}, fmt.Errorf("%w: unknown deal stage %q", models.ErrValidation, input.Value)
		}
	}

	contact, err := h.store.SetDealStage(ctx, input.ContactID, input.Value)
	if err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to set deal stage: %w", err)
	}
	return nil, ContactOutput{Contact: contact}, nil
}

func (h *ContactHandlers) SetLeadType(ctx context.Context, _ *mcp.CallToolRequest, input SetLabelInput) (*mcp.CallToolResult, ContactOutput, error) {
	if input.ContactID == "" {
		return nil, ContactOutput{}, fmt.Errorf("contact_id is required")
	}
	if input.Value != "" {
		if _, ok := h.store.Settings(ctx).FindLeadType(input.Value); !ok {
			return nil, ContactOutput{}, fmt.Errorf("%w: unknown lead type %q", models.ErrValidation, input.Value)
		}
	}

	contact, err := h.store.SetLeadType(ctx, input.ContactID, input.Value)
	if err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to set lead type: %w", err)
	}
	return nil, ContactOutput{Contact: contact}, nil
}

type MergeDuplicatesOutput struct {
	Merged int `json:"merged"`
}

func (h *ContactHandlers) MergeDuplicates(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, MergeDuplicatesOutput, error) {
	merged, err := h.store.MergeDuplicates(ctx)
	if err != nil {
		return nil, MergeDuplicatesOutput{}, fmt.Errorf("failed to merge duplicates: %w", err)
	}
	return nil, MergeDuplicatesOutput{Merged: merged}, nil
}

// actionResult turns ErrAlreadyDoneToday into a successful, throttled result.
func actionResult(contact models.Contact, err error, msg string) (*mcp.CallToolResult, ActionOutput, error) {
	if errors.Is(err, models.ErrAlreadyDoneToday) {
		return nil, ActionOutput{Contact: contact, Throttled: true}, nil
	}
	if err != nil {
		return nil, ActionOutput{}, fmt.Errorf("%s: %w", msg, err)
	}
	return nil, ActionOutput{Contact: contact}, nil
}

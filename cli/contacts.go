// ABOUTME: Contact CLI commands
// ABOUTME: Human-friendly commands for managing contacts, notes and pipeline labels
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/harperreed/dealflow/models"
	"github.com/harperreed/dealflow/store"
)

// AddContactCommand adds a new contact.
func AddContactCommand(ctx context.Context, s *store.Store, args []string) error {
	fs := flag.NewFlagSet("add-contact", flag.ExitOnError)
	name := fs.String("name", "", "Contact name (required)")
	company := fs.String("company", "", "Company name")
	phone := fs.String("phone", "", "Phone number")
	email := fs.String("email", "", "Email address")
	leadType := fs.String("lead-type", "", "Lead type label")
	stage := fs.String("stage", "", "Deal stage label")
	note := fs.String("note", "", "Free-form contact note")
	property := fs.String("property", "", "Subject property")
	requirements := fs.String("requirements", "", "Requirements")
	_ = fs.Parse(args)

	if *name == "" {
		return fmt.Errorf("--name is required")
	}

	contact, err := s.CreateContact(ctx, models.ContactInput{
		Name:            *name,
		Company:         *company,
		Phone:           *phone,
		Email:           *email,
		LeadType:        *leadType,
		DealStage:       *stage,
		ContactNote:     *note,
		SubjectProperty: *property,
		Requirements:    *requirements,
	})
	if err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}

	_, _ = fmt.Fprintf(out, "✓ Contact created: %s (ID: %s)\n", contact.Name, contact.ID)
	if contact.Phone != "" {
		_, _ = fmt.Fprintf(out, "  Phone: %s\n", contact.Phone)
	}
	if contact.Email != "" {
		_, _ = fmt.Fprintf(out, "  Email: %s\n", contact.Email)
	}
	if contact.Company != "" {
		_, _ = fmt.Fprintf(out, "  Company: %s\n", contact.Company)
	}
	return nil
}

// ListContactsCommand prints one page of contacts.
func ListContactsCommand(ctx context.Context, s *store.Store, args []string) error {
	fs := flag.NewFlagSet("list-contacts", flag.ExitOnError)
	search := fs.String("search", "", "Search name, company or phone")
	leadType := fs.String("lead-type", "", "Filter by lead type")
	stage := fs.String("stage", "", "Filter by deal stage")
	sortFlag := fs.String("sort", "activity", "Sort order: activity, firstName, lastName")
	page := fs.Int("page", 1, "Page number")
	pageSize := fs.Int("page-size", PageSize, "Contacts per page (0 for all)")
	_ = fs.Parse(args)

	order, err := models.ParseSortOrder(*sortFlag)
	if err != nil {
		return err
	}

	res := s.Query(ctx, models.QuerySpec{
		Page:            *page,
		PageSize:        *pageSize,
		SearchTerm:      strings.TrimSpace(*search),
		LeadTypeFilter:  *leadType,
		DealStageFilter: *stage,
		SortOrder:       order,
	})

	if len(res.Items) == 0 {
		_, _ = fmt.Fprintln(out, "No contacts found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tCOMPANY\tPHONE\tLEAD TYPE\tSTAGE\tLAST ACTIVITY\tID")
	_, _ = fmt.Fprintln(w, "----\t-------\t-----\t---------\t-----\t-------------\t--")
	for _, c := range res.Items {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			c.Name, dash(c.Company), dash(c.Phone), dash(c.LeadType), dash(c.DealStage),
			formatMillis(c.LastActivity), shortID(c.ID))
	}
	_ = w.Flush()

	if *pageSize > 0 {
		pages := (res.TotalCount + *pageSize - 1) / *pageSize
		current := *page
		if current < 1 {
			current = 1
		}
		_, _ = fmt.Fprintf(out, "\nPage %d of %d, total: %d contact(s)\n", current, pages, res.TotalCount)
	} else {
		_, _ = fmt.Fprintf(out, "\nTotal: %d contact(s)\n", res.TotalCount)
	}
	return nil
}

// ShowContactCommand prints a contact with its note history.
func ShowContactCommand(ctx context.Context, s *store.Store, args []string) error {
	fs := flag.NewFlagSet("show-contact", flag.ExitOnError)
	ref, _ := parseWithID(fs, args)

	c, err := resolveContact(ctx, s, ref)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "%s (ID: %s)\n", c.Name, c.ID)
	_, _ = fmt.Fprintln(out, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Company:\t%s\n", dash(c.Company))
	_, _ = fmt.Fprintf(w, "Phone:\t%s\n", dash(c.Phone))
	_, _ = fmt.Fprintf(w, "Email:\t%s\n", dash(c.Email))
	_, _ = fmt.Fprintf(w, "Lead type:\t%s\n", dash(c.LeadType))
	_, _ = fmt.Fprintf(w, "Deal stage:\t%s\n", dash(c.DealStage))
	_, _ = fmt.Fprintf(w, "Property:\t%s\n", dash(c.SubjectProperty))
	_, _ = fmt.Fprintf(w, "Requirements:\t%s\n", dash(c.Requirements))
	_, _ = fmt.Fprintf(w, "Contact note:\t%s\n", dash(c.ContactNote))
	_, _ = fmt.Fprintf(w, "Last activity:\t%s\n", formatMillis(c.LastActivity))
	_ = w.Flush()

	if f, ok := s.OpenFollowUp(ctx, c.ID); ok {
		_, _ = fmt.Fprintf(out, "\nFollow-up due: %s\n", formatDate(f.DueDate))
	}

	if len(c.Notes) == 0 {
		return nil
	}
	_, _ = fmt.Fprintf(out, "\nNOTES (%d)\n", len(c.Notes))
	for _, n := range c.Notes {
		_, _ = fmt.Fprintf(out, "  %s  [%s] %s\n", formatMillis(n.Timestamp), n.Type, n.Text)
	}
	return nil
}

// UpdateContactCommand updates only the fields whose flags were given.
func UpdateContactCommand(ctx context.Context, s *store.Store, args []string) error {
	fs := flag.NewFlagSet("update-contact", flag.ExitOnError)
	fs.String("name", "", "Contact name")
	fs.String("company", "", "Company name")
	fs.String("phone", "", "Phone number")
	fs.String("email", "", "Email address")
	fs.String("lead-type", "", "Lead type label")
	fs.String("stage", "", "Deal stage label")
	fs.String("note", "", "Free-form contact note")
	fs.String("property", "", "Subject property")
	fs.String("requirements", "", "Requirements")
	ref, _ := parseWithID(fs, args)

	c, err := resolveContact(ctx, s, ref)
	if err != nil {
		return err
	}

	var patch models.ContactPatch
	fs.Visit(func(f *flag.Flag) {
		v := models.StringPtr(f.Value.String())
		switch f.Name {
		case "name":
			patch.Name = v
		case "company":
			patch.Company = v
		case "phone":
			patch.Phone = v
		case "email":
			patch.Email = v
		case "lead-type":
			patch.LeadType = v
		case "stage":
			patch.DealStage = v
		case "note":
			patch.ContactNote = v
		case "property":
			patch.SubjectProperty = v
		case "requirements":
			patch.Requirements = v
		}
	})
	if patch.IsEmpty() {
		return fmt.Errorf("nothing to update")
	}

	updated, err := s.UpdateContact(ctx, c.ID, patch)
	if err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}

	_, _ = fmt.Fprintf(out, "✓ Contact updated: %s (ID: %s)\n", updated.Name, updated.ID)
	return nil
}

// DeleteContactCommand deletes a contact.
func DeleteContactCommand(ctx context.Context, s *store.Store, args []string) error {
	fs := flag.NewFlagSet("delete-contact", flag.ExitOnError)
	ref, _ := parseWithID(fs, args)

	c, err := resolveContact(ctx, s, ref)
	if err != nil {
		return err
	}
	if _, err := s.DeleteContact(ctx, c.ID); err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}

	_, _ = fmt.Fprintf(out, "✓ Contact deleted: %s (ID: %s)\n", c.Name, c.ID)
	return nil
}

// DeleteAllCommand wipes contacts and follow-ups. Settings are kept.
func DeleteAllCommand(ctx context.Context, s *store.Store, args []string) error {
	fs := flag.NewFlagSet("delete-all", flag.ExitOnError)
	confirm := fs.Bool("confirm", false, "Confirm deleting every contact and follow-up")
	_ = fs.Parse(args)

	if !*confirm {
		return fmt.Errorf("refusing to delete everything without --confirm")
	}

	count := len(s.AllContacts(ctx))
	if err := s.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to delete data: %w", err)
	}
	_, _ = fmt.Fprintf(out, "✓ Deleted %d contact(s) and all follow-ups\n", count)
	return nil
}

// AddNoteCommand prepends a note to a contact's history.
func AddNoteCommand(ctx context.Context, s *store.Store, args []string) error {
	fs := flag.NewFlagSet("add-note", flag.ExitOnError)
	text := fs.String("text", "", "Note text (or pass it after the contact ID)")
	typ := fs.String("type", string(models.NoteTypeNote), "Note type: note, outcome, autotag, system")
	ref, rest := parseWithID(fs, args)

	body := *text
	if body == "" {
		body = strings.Join(rest, " ")
	}

	c, err := resolveContact(ctx, s, ref)
	if err != nil {
		return err
	}
	if _, err := s.AddNote(ctx, c.ID, body, models.NoteType(*typ)); err != nil {
		return fmt.Errorf("failed to add note: %w", err)
	}

	_, _ = fmt.Fprintf(out, "✓ Note added to %s\n", c.Name)
	return nil
}

// LogOutcomeCommand records a call outcome, once per outcome per day.
func LogOutcomeCommand(ctx context.Context, s *store.Store, args []string) error {
	fs := flag.NewFlagSet("log-outcome", flag.ExitOnError)
	outcome := fs.String("outcome", "", "Call outcome label (required)")
	ref, rest := parseWithID(fs, args)

	label := *outcome
	if label == "" {
		label = strings.Join(rest, " ")
	}
	if label == "" {
		return fmt.Errorf("--outcome is required")
	}
	if !knownOutcome(s.Settings(ctx), label) {
		return fmt.Errorf("%w: unknown call outcome %q", models.ErrValidation, label)
	}

	c, err := resolveContact(ctx, s, ref)
	if err != nil {
		return err
	}
	_, err = s.LogOutcome(ctx, c.ID, label)
	if errors.Is(err, models.ErrAlreadyDoneToday) {
		_, _ = fmt.Fprintf(out, "• %q was already logged for %s today\n", label, c.Name)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to log outcome: %w", err)
	}

	_, _ = fmt.Fprintf(out, "✓ Logged %q for %s\n", label, c.Name)
	return nil
}

func knownOutcome(settings *models.AppSettings, name string) bool {
	for _, co := range settings.CallOutcomes {
		if co.Name == name {
			return true
		}
	}
	return false
}

// SetStageCommand moves a contact through the pipeline.
func SetStageCommand(ctx context.Context, s *store.Store, args []string) error {
	fs := flag.NewFlagSet("set-stage", flag.ExitOnError)
	clearFlag := fs.Bool("clear", false, "Clear the deal stage")
	ref, rest := parseWithID(fs, args)

	stage := strings.Join(rest, " ")
	if *clearFlag {
		stage = ""
	} else if stage == "" {
		return fmt.Errorf("stage is required (or --clear)")
	} else if _, ok := s.Settings(ctx).FindDealStage(stage); !ok {
		return fmt.Errorf("%w: unknown deal stage %q (have: %s)",
			models.ErrValidation, stage, strings.Join(s.Settings(ctx).StageNames(), ", "))
	}

	c, err := resolveContact(ctx, s, ref)
	if err != nil {
		return err
	}
	if _, err := s.SetDealStage(ctx, c.ID, stage); err != nil {
		return fmt.Errorf("failed to set stage: %w", err)
	}

	if stage == "" {
		_, _ = fmt.Fprintf(out, "✓ Deal stage cleared for %s\n", c.Name)
	} else {
		_, _ = fmt.Fprintf(out, "✓ %s moved to %s\n", c.Name, stage)
	}
	return nil
}

// SetLeadTypeCommand labels a contact with a lead type.
func SetLeadTypeCommand(ctx context.Context, s *store.Store, args []string) error {
	fs := flag.NewFlagSet("set-lead-type", flag.ExitOnError)
	clearFlag := fs.Bool("clear", false, "Clear the lead type")
	ref, rest := parseWithID(fs, args)

	leadType := strings.Join(rest, " ")
	if *clearFlag {
		leadType = ""
	} else if leadType == "" {
		return fmt.Errorf("lead type is required (or --clear)")
	} else if _, ok := s.Settings(ctx).FindLeadType(leadType); !ok {
		return fmt.Errorf("%w: unknown lead type %q", models.ErrValidation, leadType)
	}

	c, err := resolveContact(ctx, s, ref)
	if err != nil {
		return err
	}
	if _, err := s.SetLeadType(ctx, c.ID, leadType); err != nil {
		return fmt.Errorf("failed to set lead type: %w", err)
	}

	_, _ = fmt.Fprintf(out, "✓ Lead type for %s set to %s\n", c.Name, dash(leadType))
	return nil
}

// MergeDuplicatesCommand folds contacts sharing a phone number into one.
func MergeDuplicatesCommand(ctx context.Context, s *store.Store, _ []string) error {
	merged, err := s.MergeDuplicates(ctx)
	if err != nil {
		return fmt.Errorf("failed to merge duplicates: %w", err)
	}
	if merged == 0 {
		_, _ = fmt.Fprintln(out, "No duplicates found")
		return nil
	}
	_, _ = fmt.Fprintf(out, "✓ Merged %d duplicate contact(s)\n", merged)
	return nil
}

// SeedDemoCommand fills the store with demo contacts and follow-ups.
func SeedDemoCommand(ctx context.Context, s *store.Store, args []string) error {
	fs := flag.NewFlagSet("seed-demo", flag.ExitOnError)
	count := fs.Int("count", 50, "Number of demo contacts")
	_ = fs.Parse(args)

	n, err := s.SeedDemo(ctx, *count)
	if err != nil {
		return fmt.Errorf("failed to seed demo data: %w", err)
	}
	_, _ = fmt.Fprintf(out, "✓ Seeded %d demo contact(s)\n", n)
	return nil
}

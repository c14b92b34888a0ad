// ABOUTME: Follow-up tracking CLI commands
// ABOUTME: Commands for scheduling, completing and listing follow-ups
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/harperreed/dealflow/models"
	"github.com/harperreed/dealflow/store"
)

// FollowupScheduleCommand schedules a follow-up N days out, or clears it with --never.
func FollowupScheduleCommand(ctx context.Context, s *store.Store, args []string) error {
	fs := flag.NewFlagSet("schedule", flag.ExitOnError)
	days := fs.Int("days", 1, "Days from today")
	never := fs.Bool("never", false, "Don't call again (removes the open follow-up)")
	ref, _ := parseWithID(fs, args)

	if !*never && *days < 0 {
		return fmt.Errorf("--days must not be negative")
	}

	c, err := resolveContact(ctx, s, ref)
	if err != nil {
		return err
	}

	var offset *int
	actionKey := store.DefaultFollowUpActionKey
	if *never {
		actionKey = "followup-never"
	} else {
		offset = days
	}

	_, err = s.ScheduleFollowUpAction(ctx, c.ID, offset, actionKey)
	if errors.Is(err, models.ErrAlreadyDoneToday) {
		_, _ = fmt.Fprintf(out, "• Follow-up for %s was already changed today\n", c.Name)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to schedule follow-up: %w", err)
	}

	if *never {
		_, _ = fmt.Fprintf(out, "✓ %s marked as don't call again\n", c.Name)
		return nil
	}
	f, _ := s.OpenFollowUp(ctx, c.ID)
	_, _ = fmt.Fprintf(out, "✓ Follow-up for %s scheduled for %s\n", c.Name, formatDate(f.DueDate))
	return nil
}

// FollowupDoneCommand completes a contact's open follow-up.
func FollowupDoneCommand(ctx context.Context, s *store.Store, args []string) error {
	fs := flag.NewFlagSet("done", flag.ExitOnError)
	ref, _ := parseWithID(fs, args)

	c, err := resolveContact(ctx, s, ref)
	if err != nil {
		return err
	}
	if _, open := s.OpenFollowUp(ctx, c.ID); !open {
		_, _ = fmt.Fprintf(out, "• %s has no open follow-up\n", c.Name)
		return nil
	}
	if _, err := s.CompleteFollowUpAction(ctx, c.ID); err != nil {
		return fmt.Errorf("failed to complete follow-up: %w", err)
	}

	_, _ = fmt.Fprintf(out, "✓ Follow-up for %s marked as done\n", c.Name)
	return nil
}

// FollowupListCommand lists follow-ups with their status.
func FollowupListCommand(ctx context.Context, s *store.Store, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	overdueOnly := fs.Bool("overdue-only", false, "Show only overdue follow-ups")
	all := fs.Bool("all", false, "Include completed follow-ups")
	limit := fs.Int("limit", 0, "Maximum number of follow-ups to show (0 for all)")
	_ = fs.Parse(args)

	var filtered []models.FollowUpView
	for _, v := range s.FollowUpViews(ctx) {
		if *overdueOnly && v.Status != models.FollowUpOverdue {
			continue
		}
		if !*all && v.Status == models.FollowUpCompleted {
			continue
		}
		filtered = append(filtered, v)
		if *limit > 0 && len(filtered) == *limit {
			break
		}
	}

	if len(filtered) == 0 {
		_, _ = fmt.Fprintln(out, "No follow-ups found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tPHONE\tDUE\tSTATUS\tID")
	_, _ = fmt.Fprintln(w, "----\t-----\t---\t------\t--")
	for _, v := range filtered {
		_, _ = fmt.Fprintf(w, "%s %s\t%s\t%s\t%s\t%s\n",
			statusIcon(v.Status), v.ContactName, dash(v.Phone), formatDate(v.DueDate),
			v.Status, shortID(v.ContactID))
	}
	_ = w.Flush()
	return nil
}

// FollowupStatsCommand summarises follow-ups by status.
func FollowupStatsCommand(ctx context.Context, s *store.Store, _ []string) error {
	counts := map[models.FollowUpStatus]int{}
	for _, v := range s.FollowUpViews(ctx) {
		counts[v.Status]++
	}

	_, _ = fmt.Fprintln(out, "FOLLOW-UPS")
	_, _ = fmt.Fprintln(out, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	for _, st := range []models.FollowUpStatus{models.FollowUpOverdue, models.FollowUpOpen, models.FollowUpCompleted} {
		_, _ = fmt.Fprintf(out, "  %s %s: %d\n", statusIcon(st), st, counts[st])
	}
	return nil
}

func statusIcon(st models.FollowUpStatus) string {
	switch st {
	case models.FollowUpOverdue:
		return "🔴"
	case models.FollowUpOpen:
		return "🟡"
	}
	return "🟢"
}

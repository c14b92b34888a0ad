// ABOUTME: Compound user workflows: outcomes, follow-up actions, stage and lead type changes
// ABOUTME: Each workflow runs its steps under one lock and flushes once
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/dealflow/models"
)

// DefaultFollowUpActionKey throttles custom follow-up scheduling.
const DefaultFollowUpActionKey = "followup-custom"

// OutcomeActionKey is the throttle key for logging a call outcome.
func OutcomeActionKey(outcome string) string {
	return "outcome-" + outcome
}

// LogOutcome records a call outcome note, at most once per outcome per day.
func (s *Store) LogOutcome(ctx context.Context, contactID, outcome string) (models.Contact, error) {
	if strings.TrimSpace(outcome) == "" {
		return models.Contact{}, fmt.Errorf("%w: outcome is required", models.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(contactID)
	if i < 0 {
		return models.Contact{}, fmt.Errorf("%w: %s", models.ErrNotFound, contactID)
	}
	key := OutcomeActionKey(outcome)
	if !s.canPerformLocked(i, key) {
		return s.contacts[i].Clone(), models.ErrAlreadyDoneToday
	}

	s.recordLocked(i, key)
	s.addNoteLocked(i, outcome, models.NoteTypeOutcome)
	s.flushLocked(ctx)
	return s.contacts[i].Clone(), nil
}

// ScheduleFollowUpAction schedules (or clears, with nil days) a follow-up and
// leaves a system note. An empty actionKey means DefaultFollowUpActionKey.
func (s *Store) ScheduleFollowUpAction(ctx context.Context, contactID string, days *int, actionKey string) (models.Contact, error) {
	if actionKey == "" {
		actionKey = DefaultFollowUpActionKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(contactID)
	if i < 0 {
		return models.Contact{}, fmt.Errorf("%w: %s", models.ErrNotFound, contactID)
	}
	if !s.canPerformLocked(i, actionKey) {
		return s.contacts[i].Clone(), models.ErrAlreadyDoneToday
	}

	s.recordLocked(i, actionKey)
	due := s.scheduleLocked(contactID, days)
	if days == nil {
		s.addNoteLocked(i, "Marked as 'Don't call again'.", models.NoteTypeSystem)
	} else {
		date := models.FromMillis(due, s.loc).Format("Jan 2, 2006")
		s.addNoteLocked(i, fmt.Sprintf("Follow-up scheduled for %s.", date), models.NoteTypeSystem)
	}
	s.flushLocked(ctx)
	return s.contacts[i].Clone(), nil
}

// CompleteFollowUpAction marks the open follow-up done and notes it.
func (s *Store) CompleteFollowUpAction(ctx context.Context, contactID string) (models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(contactID)
	if i < 0 {
		return models.Contact{}, fmt.Errorf("%w: %s", models.ErrNotFound, contactID)
	}
	s.completeLocked(contactID)
	s.addNoteLocked(i, "Follow-up marked as done.", models.NoteTypeSystem)
	s.flushLocked(ctx)
	return s.contacts[i].Clone(), nil
}

// SetDealStage moves the contact to stage, counts as activity and leaves an autotag note.
func (s *Store) SetDealStage(ctx context.Context, contactID, stage string) (models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(contactID)
	if i < 0 {
		return models.Contact{}, fmt.Errorf("%w: %s", models.ErrNotFound, contactID)
	}
	s.setDealStageLocked(i, stage)
	s.flushLocked(ctx)
	return s.contacts[i].Clone(), nil
}

func (s *Store) setDealStageLocked(i int, stage string) {
	s.contacts[i].DealStage = stage
	if stage == "" {
		s.addNoteLocked(i, "Deal stage cleared.", models.NoteTypeAutotag)
		return
	}
	s.addNoteLocked(i, "Deal stage updated to: "+stage, models.NoteTypeAutotag)
}

// SetLeadType changes the lead type and counts as activity.
func (s *Store) SetLeadType(ctx context.Context, contactID, leadType string) (models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(contactID)
	if i < 0 {
		return models.Contact{}, fmt.Errorf("%w: %s", models.ErrNotFound, contactID)
	}
	s.contacts[i].LeadType = leadType
	s.contacts[i].LastActivity = s.clock().UnixMilli()
	s.flushLocked(ctx)
	return s.contacts[i].Clone(), nil
}

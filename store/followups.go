// ABOUTME: Follow-up engine keeping at most one open reminder per contact
// ABOUTME: Due dates are normalized to local midnight; views join against live contacts
package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/harperreed/dealflow/models"
)

// ScheduleFollowUp sets the open follow-up for a contact to today plus days.
// A nil days removes the open follow-up instead.
func (s *Store) ScheduleFollowUp(ctx context.Context, contactID string, days *int) ([]models.FollowUp, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(contactID) < 0 {
		return nil, fmt.Errorf("%w: %s", models.ErrNotFound, contactID)
	}
	s.scheduleLocked(contactID, days)
	s.flushLocked(ctx)
	return cloneFollowUps(s.followUps), nil
}

// scheduleLocked returns the new due date, or zero when the follow-up was cleared.
func (s *Store) scheduleLocked(contactID string, days *int) int64 {
	open := s.openFollowUpLocked(contactID)

	if days == nil {
		if open >= 0 {
			s.followUps = append(s.followUps[:open:open], s.followUps[open+1:]...)
		}
		return 0
	}

	due := models.LocalMidnight(s.clock()).AddDate(0, 0, *days).UnixMilli()
	if open >= 0 {
		s.followUps[open].DueDate = due
		return due
	}
	s.followUps = append(s.followUps, models.FollowUp{ContactID: contactID, DueDate: due})
	return due
}

// CompleteFollowUp marks the contact's open follow-up done. No-op if none is open.
func (s *Store) CompleteFollowUp(ctx context.Context, contactID string) ([]models.FollowUp, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.completeLocked(contactID) {
		s.flushLocked(ctx)
	}
	return cloneFollowUps(s.followUps), nil
}

func (s *Store) completeLocked(contactID string) bool {
	open := s.openFollowUpLocked(contactID)
	if open < 0 {
		return false
	}
	s.followUps[open].Completed = true
	return true
}

func (s *Store) openFollowUpLocked(contactID string) int {
	for i, f := range s.followUps {
		if f.ContactID == contactID && !f.Completed {
			return i
		}
	}
	return -1
}

// FollowUps returns the raw collection, open and completed, orphans included.
func (s *Store) FollowUps(_ context.Context) []models.FollowUp {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneFollowUps(s.followUps)
}

// OpenFollowUp returns the contact's open follow-up, if any.
func (s *Store) OpenFollowUp(_ context.Context, contactID string) (models.FollowUp, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.openFollowUpLocked(contactID)
	if i < 0 {
		return models.FollowUp{}, false
	}
	return s.followUps[i], true
}

// FollowUpViews joins follow-ups with live contacts, drops orphans and
// categorizes each entry. Sorted by due date, earliest first.
func (s *Store) FollowUpViews(_ context.Context) []models.FollowUpView {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID := make(map[string]*models.Contact, len(s.contacts))
	for i := range s.contacts {
		byID[s.contacts[i].ID] = &s.contacts[i]
	}

	now := s.clock()
	views := make([]models.FollowUpView, 0, len(s.followUps))
	for _, f := range s.followUps {
		c, ok := byID[f.ContactID]
		if !ok {
			continue
		}
		views = append(views, models.FollowUpView{
			FollowUp:    f,
			ContactName: c.Name,
			Phone:       c.Phone,
			Status:      models.CategorizeFollowUp(f, now),
		})
	}

	sort.SliceStable(views, func(i, j int) bool {
		return views[i].DueDate < views[j].DueDate
	})
	return views
}

func cloneFollowUps(in []models.FollowUp) []models.FollowUp {
	out := make([]models.FollowUp, len(in))
	copy(out, in)
	return out
}

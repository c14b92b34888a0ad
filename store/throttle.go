// ABOUTME: Action-throttle ledger allowing each keyed action once per local calendar day
// ABOUTME: Timestamps live on the contact under arbitrary caller-defined keys
package store

import (
	"context"
	"fmt"

	"github.com/harperreed/dealflow/models"
)

// CanPerform reports whether actionKey hasn't been recorded today for the contact.
// Unknown contacts can't perform anything.
func (s *Store) CanPerform(_ context.Context, contactID, actionKey string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(contactID)
	if i < 0 {
		return false
	}
	return s.canPerformLocked(i, actionKey)
}

func (s *Store) canPerformLocked(i int, actionKey string) bool {
	last, ok := s.contacts[i].LastActionTimestamps[actionKey]
	if !ok {
		return true
	}
	return !models.SameLocalDay(models.FromMillis(last, s.loc), s.clock(), s.loc)
}

// Record stamps actionKey with the current time. It is not user activity,
// so lastActivity stays put.
func (s *Store) Record(ctx context.Context, contactID, actionKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(contactID)
	if i < 0 {
		return fmt.Errorf("%w: %s", models.ErrNotFound, contactID)
	}
	s.recordLocked(i, actionKey)
	s.flushLocked(ctx)
	return nil
}

func (s *Store) recordLocked(i int, actionKey string) {
	c := &s.contacts[i]
	if c.LastActionTimestamps == nil {
		c.LastActionTimestamps = make(map[string]int64)
	}
	c.LastActionTimestamps[actionKey] = s.clock().UnixMilli()
}

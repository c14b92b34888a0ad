// ABOUTME: Settings access and the full-state export snapshot
// ABOUTME: Settings are replaced wholesale, never patched
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/dealflow/models"
)

func (s *Store) Settings(_ context.Context) *models.AppSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings.Clone()
}

// UpdateSettings replaces the settings record. Missing taxonomies get defaults;
// names within a taxonomy must be non-empty and unique.
func (s *Store) UpdateSettings(ctx context.Context, settings *models.AppSettings) (*models.AppSettings, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: settings are required", models.ErrValidation)
	}
	next := settings.Clone()
	next.Backfill()

	if err := checkNames("lead type", leadTypeNames(next.LeadTypes)); err != nil {
		return nil, err
	}
	if err := checkNames("deal stage", next.StageNames()); err != nil {
		return nil, err
	}
	if err := checkNames("call outcome", outcomeNames(next.CallOutcomes)); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings = next
	s.flushLocked(ctx)
	return s.settings.Clone(), nil
}

func checkNames(kind string, names []string) error {
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			return fmt.Errorf("%w: %s name is empty", models.ErrValidation, kind)
		}
		if _, dup := seen[n]; dup {
			return fmt.Errorf("%w: duplicate %s %q", models.ErrValidation, kind, n)
		}
		seen[n] = struct{}{}
	}
	return nil
}

func leadTypeNames(lts []models.LeadType) []string {
	out := make([]string, 0, len(lts))
	for _, lt := range lts {
		out = append(out, lt.Name)
	}
	return out
}

func outcomeNames(cos []models.CallOutcome) []string {
	out := make([]string, 0, len(cos))
	for _, co := range cos {
		out = append(out, co.Name)
	}
	return out
}

// Snapshot returns a deep copy of the full state for export.
func (s *Store) Snapshot(_ context.Context) models.ExportDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.ExportDocument{
		Contacts:  models.CloneContacts(s.contacts),
		FollowUps: cloneFollowUps(s.followUps),
		Settings:  s.settings.Clone(),
	}
}

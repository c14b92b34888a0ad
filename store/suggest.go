// ABOUTME: Advisory deal-stage suggestion dispatched after note saves
// ABOUTME: Runs detached with its own timeout; failures are logged and never reach the caller
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/harperreed/dealflow/classify"
	"github.com/harperreed/dealflow/models"
)

// Suggester proposes a deal stage for note text. An empty result means no suggestion.
type Suggester interface {
	SuggestStage(ctx context.Context, text string, stages []models.DealStage) (string, error)
}

// SuggestionHandler receives a stage that differs from the contact's current one.
type SuggestionHandler func(ctx context.Context, contactID, stage string)

// dispatchSuggestion must be called with mu held so the stage snapshot is consistent.
func (s *Store) dispatchSuggestion(contactID, text, currentStage string, stages []models.DealStage) {
	if s.suggester == nil || s.closing || len(stages) == 0 {
		return
	}
	snapshot := append([]models.DealStage(nil), stages...)

	s.suggestWG.Add(1)
	go func() {
		defer s.suggestWG.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.suggestTimeout)
		defer cancel()

		stage, err := s.suggester.SuggestStage(ctx, text, snapshot)
		if err != nil {
			s.logSuggestFailure(err)
			return
		}
		if stage == "" || stage == currentStage {
			return
		}

		s.logger.Debug("stage suggested", "contact", contactID, "stage", stage)
		applyCtx := context.WithoutCancel(ctx)
		if s.onSuggest != nil {
			s.onSuggest(applyCtx, contactID, stage)
			return
		}
		if _, err := s.ApplySuggestedStage(applyCtx, contactID, stage); err != nil {
			s.logger.Debug("suggested stage not applied", "contact", contactID, "err", err)
		}
	}()
}

func (s *Store) logSuggestFailure(err error) {
	if s.suggestWarned.CompareAndSwap(false, true) {
		if errors.Is(err, classify.ErrDisabled) {
			s.logger.Warn("stage suggestions disabled", "reason", err)
			return
		}
		s.logger.Warn("stage suggestion failed", "err", err)
		return
	}
	s.logger.Debug("stage suggestion failed", "err", err)
}

// ApplySuggestedStage sets stage on the contact unless it's already there.
// Stages missing from the current taxonomy are rejected.
func (s *Store) ApplySuggestedStage(ctx context.Context, contactID, stage string) (models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(contactID)
	if i < 0 {
		return models.Contact{}, fmt.Errorf("%w: %s", models.ErrNotFound, contactID)
	}
	if _, ok := s.settings.FindDealStage(stage); !ok {
		return s.contacts[i].Clone(), fmt.Errorf("%w: unknown deal stage %q", models.ErrValidation, stage)
	}
	if s.contacts[i].DealStage == stage {
		return s.contacts[i].Clone(), nil
	}

	s.setDealStageLocked(i, stage)
	s.flushLocked(ctx)
	s.logger.Info("applied suggested deal stage", "contact", contactID, "stage", stage)
	return s.contacts[i].Clone(), nil
}

// ABOUTME: Mutation engine for contacts: create, patch, delete, notes, import
// ABOUTME: Every successful mutation flushes the full state before returning
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/dealflow/models"
)

// Contact returns a copy of the contact with id.
func (s *Store) Contact(_ context.Context, id string) (models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Contact{}, fmt.Errorf("%w: %s", models.ErrNotFound, id)
	}
	return s.contacts[i].Clone(), nil
}

// AllContacts returns every contact in stored order.
func (s *Store) AllContacts(_ context.Context) []models.Contact {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.CloneContacts(s.contacts)
}

// CreateContact mints an id, stamps lastActivity and puts the contact at the head.
func (s *Store) CreateContact(ctx context.Context, in models.ContactInput) (models.Contact, error) {
	if strings.TrimSpace(in.Name) == "" {
		return models.Contact{}, fmt.Errorf("%w: name is required", models.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.buildContact(in)
	s.contacts = append([]models.Contact{c}, s.contacts...)
	s.flushLocked(ctx)

	s.logger.Debug("created contact", "id", c.ID, "name", c.Name)
	return c.Clone(), nil
}

func (s *Store) buildContact(in models.ContactInput) models.Contact {
	notes := []models.Note{}
	if in.Notes != nil {
		notes = append(notes, in.Notes...)
	}
	return models.Contact{
		ID:              s.newContactID(),
		Name:            in.Name,
		Company:         in.Company,
		Phone:           in.Phone,
		Email:           in.Email,
		LeadType:        in.LeadType,
		DealStage:       in.DealStage,
		ContactNote:     in.ContactNote,
		SubjectProperty: in.SubjectProperty,
		Requirements:    in.Requirements,
		Notes:           notes,
		LastActivity:    s.clock().UnixMilli(),
	}
}

// UpdateContact applies a shallow patch. It does not touch lastActivity
// unless the patch sets it.
func (s *Store) UpdateContact(ctx context.Context, id string, patch models.ContactPatch) (models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Contact{}, fmt.Errorf("%w: %s", models.ErrNotFound, id)
	}
	patch.Apply(&s.contacts[i])
	s.flushLocked(ctx)
	return s.contacts[i].Clone(), nil
}

// DeleteContact removes the contact and reports whether anything was removed.
// Follow-ups pointing at it are left alone and filtered out on read.
func (s *Store) DeleteContact(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false, nil
	}
	s.contacts = append(s.contacts[:i:i], s.contacts[i+1:]...)
	s.flushLocked(ctx)
	return true, nil
}

// AddNote prepends a note and bumps lastActivity. A note of type "note"
// also kicks off an advisory stage suggestion that this call never waits for.
func (s *Store) AddNote(ctx context.Context, id, text string, typ models.NoteType) (models.Contact, error) {
	if !typ.Valid() {
		return models.Contact{}, fmt.Errorf("%w: unknown note type %q", models.ErrValidation, typ)
	}
	if strings.TrimSpace(text) == "" {
		return models.Contact{}, fmt.Errorf("%w: note text is empty", models.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Contact{}, fmt.Errorf("%w: %s", models.ErrNotFound, id)
	}
	s.addNoteLocked(i, text, typ)
	s.flushLocked(ctx)

	c := s.contacts[i].Clone()
	if typ == models.NoteTypeNote {
		s.dispatchSuggestion(c.ID, text, c.DealStage, s.settings.DealStages)
	}
	return c, nil
}

func (s *Store) addNoteLocked(i int, text string, typ models.NoteType) {
	now := s.clock()
	note := models.Note{
		ID:        s.newNoteID(now),
		Text:      text,
		Timestamp: now.UnixMilli(),
		Type:      typ,
	}
	c := &s.contacts[i]
	c.Notes = append([]models.Note{note}, c.Notes...)
	c.LastActivity = now.UnixMilli()
}

// BulkReplace swaps in the whole collection, keeping the given order.
func (s *Store) BulkReplace(ctx context.Context, contacts []models.Contact) error {
	seen := make(map[string]struct{}, len(contacts))
	for _, c := range contacts {
		if c.ID == "" {
			return fmt.Errorf("%w: contact %q has no id", models.ErrValidation, c.Name)
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("%w: duplicate id %s", models.ErrValidation, c.ID)
		}
		seen[c.ID] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.contacts = models.CloneContacts(contacts)
	if s.contacts == nil {
		s.contacts = []models.Contact{}
	}
	for i := range s.contacts {
		if s.contacts[i].Notes == nil {
			s.contacts[i].Notes = []models.Note{}
		}
	}
	s.flushLocked(ctx)
	return nil
}

// ImportContacts creates a contact for every record carrying both a name and
// a phone, prepending the batch in input order. No deduplication happens here.
func (s *Store) ImportContacts(ctx context.Context, inputs []models.ContactInput) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch := make([]models.Contact, 0, len(inputs))
	for _, in := range inputs {
		if !in.Importable() {
			continue
		}
		batch = append(batch, s.buildContact(in))
	}
	if len(batch) == 0 {
		return 0, models.ErrNoValidContacts
	}

	s.contacts = append(batch, s.contacts...)
	s.flushLocked(ctx)

	s.logger.Info("imported contacts", "count", len(batch), "skipped", len(inputs)-len(batch))
	return len(batch), nil
}

// DeleteAll clears contacts and follow-ups. Settings survive.
func (s *Store) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.contacts = []models.Contact{}
	s.followUps = []models.FollowUp{}
	s.flushLocked(ctx)
	return nil
}

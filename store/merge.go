// ABOUTME: Dedup/merge engine collapsing contacts that share a phone number
// ABOUTME: The most recently active contact in each group survives and absorbs the rest
package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/harperreed/dealflow/models"
)

// MergeDuplicates collapses phone-number groups and returns how many records were absorbed.
func (s *Store) MergeDuplicates(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	merged, count := mergeContacts(s.contacts, now, func() string { return s.newNoteID(now) })
	if count == 0 {
		return 0, nil
	}
	s.contacts = merged
	s.flushLocked(ctx)

	s.logger.Info("merged duplicate contacts", "absorbed", count, "remaining", len(merged))
	return count, nil
}

// NormalizePhone keeps only the ASCII digits of a phone number.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// mergeContacts returns masters and singletons in first-seen group order,
// followed by contacts without a usable phone.
func mergeContacts(contacts []models.Contact, now time.Time, noteID func() string) ([]models.Contact, int) {
	var (
		order   []string
		groups  = make(map[string][]models.Contact)
		noPhone []models.Contact
	)
	for _, c := range contacts {
		key := NormalizePhone(c.Phone)
		if key == "" {
			noPhone = append(noPhone, c.Clone())
			continue
		}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], c.Clone())
	}

	out := make([]models.Contact, 0, len(contacts))
	absorbed := 0
	for _, key := range order {
		group := groups[key]
		if len(group) == 1 {
			out = append(out, group[0])
			continue
		}

		masterIdx := 0
		for i := 1; i < len(group); i++ {
			if group[i].LastActivity > group[masterIdx].LastActivity {
				masterIdx = i
			}
		}
		master := group[masterIdx]

		notes := append([]models.Note{}, master.Notes...)
		var mergeNotes []models.Note
		for i, dup := range group {
			if i == masterIdx {
				continue
			}
			notes = append(notes, dup.Notes...)
			mergeNotes = append(mergeNotes, models.Note{
				ID:        noteID(),
				Text:      fmt.Sprintf("Merged with duplicate contact: %s (%s)", dup.Name, dup.Phone),
				Timestamp: now.UnixMilli(),
				Type:      models.NoteTypeSystem,
			})
			absorbed++
		}
		notes = append(notes, mergeNotes...)
		sort.SliceStable(notes, func(i, j int) bool {
			return notes[i].Timestamp > notes[j].Timestamp
		})

		master.Notes = notes
		out = append(out, master)
	}

	out = append(out, noPhone...)
	return out, absorbed
}

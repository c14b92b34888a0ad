// ABOUTME: Deterministic demo data for first-run exploration
// ABOUTME: Generates contacts spread across taxonomies plus overdue and upcoming follow-ups
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/dealflow/models"
)

var (
	demoFirstNames = []string{"John", "Jane", "Sam", "Alice", "Bob", "Chris", "Patty", "Mike"}
	demoLastNames  = []string{"Doe", "Smith", "Wilson", "Johnson", "Williams", "Brown", "Davis", "Miller"}
	demoCompanies  = []string{"FSBO Corp", "Property Management Inc.", "SRE Solutions", "Closing Funnel LLC", "Research Partners", "Global Real Estate", "Tenant Finders", "Investor Group"}
)

const dayMillis = int64(24 * 60 * 60 * 1000)

// SeedDemo prepends n demo contacts and schedules follow-ups for a slice of them.
func (s *Store) SeedDemo(ctx context.Context, n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("%w: count must be positive", models.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	nowMs := now.UnixMilli()
	stages := s.settings.DealStages
	leadTypes := s.settings.LeadTypes
	inPipeline := n * 4 / 25

	batch := make([]models.Contact, 0, n)
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("%s %s #%d", demoFirstNames[i%len(demoFirstNames)], demoLastNames[i%len(demoLastNames)], i+1)
		c := models.Contact{
			ID:           s.newContactID(),
			Name:         name,
			Company:      demoCompanies[i%len(demoCompanies)],
			Phone:        fmt.Sprintf("%03d-555-%04d", 100+(i*37)%900, i+1),
			Email:        strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
			Notes:        []models.Note{},
			LastActivity: nowMs - dayMillis*int64(i),
		}
		if len(leadTypes) > 0 {
			c.LeadType = leadTypes[i%len(leadTypes)].Name
		}
		if i < inPipeline && len(stages) > 0 {
			c.DealStage = stages[(i/8)%len(stages)].Name
			c.SubjectProperty = fmt.Sprintf("123 Main St, Anytown #%d", i+1)
			c.Requirements = "Looking for 5,000 sqft warehouse space."
		}
		if i%4 == 0 {
			c.ContactNote = fmt.Sprintf("This is the primary, persistent contact note for %s. It contains key at-a-glance info.", name)
		}

		switch {
		case i == 0:
			for j := 0; j < 12; j++ {
				ts := now.AddDate(0, 0, -(j + 1))
				typ := models.NoteTypeNote
				if j%5 == 0 {
					typ = models.NoteTypeOutcome
				}
				c.Notes = append(c.Notes, models.Note{
					ID:        s.newNoteID(ts),
					Text:      fmt.Sprintf("Historical note number %d for %s.", j+1, name),
					Timestamp: ts.UnixMilli(),
					Type:      typ,
				})
			}
		case i%3 == 0:
			ts := now.AddDate(0, 0, -i)
			c.Notes = append(c.Notes, models.Note{
				ID:        s.newNoteID(ts),
				Text:      fmt.Sprintf("Initial contact note for user #%d.", i+1),
				Timestamp: ts.UnixMilli(),
				Type:      models.NoteTypeNote,
			})
		}
		batch = append(batch, c)
	}

	// A band of contacts after the pipeline ones gets follow-ups:
	// the first third overdue, the rest upcoming.
	start := n / 5
	end := start + n*6/25
	if end > n {
		end = n
	}
	overdue := (end - start) / 3
	today := models.LocalMidnight(now)
	for idx, c := range batch[start:end] {
		var due int64
		if idx < overdue {
			due = today.AddDate(0, 0, -(idx + 2)).UnixMilli()
		} else {
			due = today.AddDate(0, 0, idx-overdue).UnixMilli()
		}
		if s.openFollowUpLocked(c.ID) < 0 {
			s.followUps = append(s.followUps, models.FollowUp{ContactID: c.ID, DueDate: due})
		}
	}

	s.contacts = append(batch, s.contacts...)
	s.flushLocked(ctx)

	s.logger.Info("seeded demo data", "contacts", n, "followups", end-start)
	return n, nil
}

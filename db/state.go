// ABOUTME: JSON codec between the three persisted records and in-memory CRM state
// ABOUTME: Seeds defaults for missing records and falls back loudly on corrupt ones
package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/harperreed/dealflow/models"
)

// State is the full persisted CRM state.
type State struct {
	Contacts  []models.Contact
	FollowUps []models.FollowUp
	Settings  *models.AppSettings
}

// LoadReport says what LoadState had to fix up.
type LoadReport struct {
	Seeded     []string // keys that were absent and got defaults
	Corrupt    []string // keys that failed to decode and got defaults
	Backfilled bool     // settings were missing one or more taxonomies
}

// NeedsFlush reports whether the repaired state should be written back.
// Corrupt records are left on disk until the next real mutation.
func (r LoadReport) NeedsFlush() bool {
	return len(r.Seeded) > 0 || r.Backfilled
}

// LoadState reads all three records. A missing record yields its default.
// A record that fails to decode yields its default and is logged at error level.
// Any other repository error is returned wrapped in ErrStorageUnavailable.
func LoadState(ctx context.Context, repo Repository, logger *log.Logger) (*State, LoadReport, error) {
	if logger == nil {
		logger = log.Default()
	}

	state := &State{}
	var report LoadReport

	for _, key := range AllKeys {
		raw, err := repo.Get(ctx, key)
		if errors.Is(err, ErrRecordNotFound) {
			report.Seeded = append(report.Seeded, key)
			seedDefault(state, key)
			continue
		}
		if err != nil {
			return nil, report, fmt.Errorf("%w: reading %s: %v", ErrStorageUnavailable, key, err)
		}

		if err := decodeRecord(state, key, raw); err != nil {
			logger.Error("stored record is corrupt; using defaults", "key", key, "backend", repo.Name(), "err", err)
			report.Corrupt = append(report.Corrupt, key)
			seedDefault(state, key)
		}
	}

	if state.Settings.Backfill() {
		report.Backfilled = true
	}
	for i := range state.Contacts {
		if state.Contacts[i].Notes == nil {
			state.Contacts[i].Notes = []models.Note{}
		}
	}

	return state, report, nil
}

func seedDefault(state *State, key string) {
	switch key {
	case KeyContacts:
		state.Contacts = []models.Contact{}
	case KeyFollowUps:
		state.FollowUps = []models.FollowUp{}
	case KeySettings:
		state.Settings = models.DefaultSettings()
	}
}

func decodeRecord(state *State, key string, raw []byte) error {
	switch key {
	case KeyContacts:
		var contacts []models.Contact
		if err := json.Unmarshal(raw, &contacts); err != nil {
			return err
		}
		if contacts == nil {
			contacts = []models.Contact{}
		}
		state.Contacts = contacts
	case KeyFollowUps:
		var followUps []models.FollowUp
		if err := json.Unmarshal(raw, &followUps); err != nil {
			return err
		}
		if followUps == nil {
			followUps = []models.FollowUp{}
		}
		state.FollowUps = followUps
	case KeySettings:
		var settings *models.AppSettings
		if err := json.Unmarshal(raw, &settings); err != nil {
			return err
		}
		if settings == nil {
			settings = models.DefaultSettings()
		}
		state.Settings = settings
	}
	return nil
}

// SaveState writes all three records in one repository call.
func SaveState(ctx context.Context, repo Repository, state *State) error {
	contacts := state.Contacts
	if contacts == nil {
		contacts = []models.Contact{}
	}
	followUps := state.FollowUps
	if followUps == nil {
		followUps = []models.FollowUp{}
	}
	settings := state.Settings
	if settings == nil {
		settings = models.DefaultSettings()
	}

	records := make(map[string][]byte, 3)
	var err error
	if records[KeyContacts], err = json.Marshal(contacts); err != nil {
		return fmt.Errorf("failed to encode contacts: %w", err)
	}
	if records[KeyFollowUps], err = json.Marshal(followUps); err != nil {
		return fmt.Errorf("failed to encode follow-ups: %w", err)
	}
	if records[KeySettings], err = json.Marshal(settings); err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	return repo.PutAll(ctx, records)
}

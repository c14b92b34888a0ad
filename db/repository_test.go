// ABOUTME: Contract tests run against every repository backend
// ABOUTME: Also covers LoadState defaults, corruption fallback and round trips
package db

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/harperreed/dealflow/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Repository {
	t.Helper()
	dir := t.TempDir()

	sqliteRepo, err := Open(BackendSQLite, filepath.Join(dir, "crm.db"))
	require.NoError(t, err)
	badgerRepo, err := Open(BackendBadger, filepath.Join(dir, "badger"))
	require.NoError(t, err)

	repos := map[string]Repository{
		BackendSQLite: sqliteRepo,
		BackendBadger: badgerRepo,
		BackendMemory: NewMemoryRepository(),
	}
	t.Cleanup(func() {
		for _, r := range repos {
			_ = r.Close()
		}
	})
	return repos
}

func TestRepositoryContract(t *testing.T) {
	ctx := context.Background()
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, name, repo.Name())

			_, err := repo.Get(ctx, KeyContacts)
			assert.ErrorIs(t, err, ErrRecordNotFound)

			require.NoError(t, repo.PutAll(ctx, map[string][]byte{
				KeyContacts:  []byte(`[]`),
				KeyFollowUps: []byte(`[{"contactId":"a","dueDate":1,"completed":false}]`),
			}))

			got, err := repo.Get(ctx, KeyFollowUps)
			require.NoError(t, err)
			assert.JSONEq(t, `[{"contactId":"a","dueDate":1,"completed":false}]`, string(got))

			// Overwrite keeps a single value per key
			require.NoError(t, repo.PutAll(ctx, map[string][]byte{KeyFollowUps: []byte(`[]`)}))
			got, err = repo.Get(ctx, KeyFollowUps)
			require.NoError(t, err)
			assert.Equal(t, `[]`, string(got))
		})
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open("cassette", "/tmp/x")
	assert.Error(t, err)
}

func TestLoadStateSeedsDefaults(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	state, report, err := LoadState(ctx, repo, log.New(io.Discard))
	require.NoError(t, err)

	assert.Empty(t, state.Contacts)
	assert.NotNil(t, state.Contacts)
	assert.Empty(t, state.FollowUps)
	assert.Equal(t, models.DefaultSettings(), state.Settings)
	assert.ElementsMatch(t, AllKeys, report.Seeded)
	assert.True(t, report.NeedsFlush())
}

func TestLoadStateCorruptRecordFallsBack(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	require.NoError(t, repo.PutAll(ctx, map[string][]byte{
		KeyContacts:  []byte(`{not json`),
		KeyFollowUps: []byte(`[]`),
		KeySettings:  []byte(`{"leadTypes":[],"dealStages":[],"callOutcomes":[]}`),
	}))

	state, report, err := LoadState(ctx, repo, log.New(io.Discard))
	require.NoError(t, err)

	assert.Equal(t, []string{KeyContacts}, report.Corrupt)
	assert.Empty(t, state.Contacts)
	assert.False(t, report.NeedsFlush(), "corrupt data is not overwritten on load")

	// Corrupt bytes are still on disk
	raw, err := repo.Get(ctx, KeyContacts)
	require.NoError(t, err)
	assert.Equal(t, `{not json`, string(raw))
}

func TestLoadStateBackfillsSettings(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	require.NoError(t, repo.PutAll(ctx, map[string][]byte{
		KeyContacts:  []byte(`[{"id":"1","name":"A","phone":"1","lastActivity":5}]`),
		KeyFollowUps: []byte(`[]`),
		KeySettings:  []byte(`{"leadTypes":[{"id":"x","name":"Custom","theme":"blue"}],"dealStages":[{"id":"s","name":"Only","theme":"gray"}]}`),
	}))

	state, report, err := LoadState(ctx, repo, log.New(io.Discard))
	require.NoError(t, err)

	assert.True(t, report.Backfilled)
	assert.Equal(t, "Custom", state.Settings.LeadTypes[0].Name)
	assert.Equal(t, models.DefaultSettings().CallOutcomes, state.Settings.CallOutcomes)
	require.Len(t, state.Contacts, 1)
	assert.NotNil(t, state.Contacts[0].Notes, "missing notes decode as an empty history")
}

type failingRepo struct{ MemoryRepository }

func (f *failingRepo) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("disk on fire")
}

func TestLoadStateStorageError(t *testing.T) {
	_, _, err := LoadState(context.Background(), &failingRepo{}, log.New(io.Discard))
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestSaveStateRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			in := &State{
				Contacts: []models.Contact{{
					ID:    "c1",
					Name:  "Jane Doe",
					Phone: "555-0001",
					Notes: []models.Note{{ID: "n1", Text: "hi", Timestamp: 10, Type: models.NoteTypeNote}},
					LastActionTimestamps: map[string]int64{
						"outcome-No Answer": 42,
					},
					LastActivity: 10,
				}},
				FollowUps: []models.FollowUp{{ContactID: "c1", DueDate: 99}},
				Settings:  models.DefaultSettings(),
			}
			require.NoError(t, SaveState(ctx, repo, in))

			out, report, err := LoadState(ctx, repo, log.New(io.Discard))
			require.NoError(t, err)
			assert.False(t, report.NeedsFlush())
			assert.Equal(t, in.Contacts, out.Contacts)
			assert.Equal(t, in.FollowUps, out.FollowUps)
			assert.Equal(t, in.Settings, out.Settings)
		})
	}
}

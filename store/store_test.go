// ABOUTME: Tests for the store's mutation, query, merge and persistence behaviour
// ABOUTME: Uses the in-memory repository and a controllable clock
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/dealflow/db"
	"github.com/harperreed/dealflow/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

var testLoc = time.FixedZone("test", -5*60*60)

func newTestStore(t *testing.T, opts ...Option) (*Store, *testClock, db.Repository) {
	t.Helper()
	clock := &testClock{t: time.Date(2026, 3, 10, 9, 0, 0, 0, testLoc)}
	repo := db.NewMemoryRepository()
	base := []Option{
		WithClock(clock.Now),
		WithLocation(testLoc),
		WithLogger(log.New(io.Discard)),
	}
	s := New(context.Background(), repo, append(base, opts...)...)
	t.Cleanup(s.Drain)
	return s, clock, repo
}

func mustCreate(t *testing.T, s *Store, name, phone string) models.Contact {
	t.Helper()
	c, err := s.CreateContact(context.Background(), models.ContactInput{Name: name, Phone: phone})
	require.NoError(t, err)
	return c
}

func TestNewSeedsAndPersistsDefaults(t *testing.T) {
	s, _, repo := newTestStore(t)
	ctx := context.Background()

	assert.Equal(t, models.DefaultSettings(), s.Settings(ctx))
	assert.Empty(t, s.AllContacts(ctx))

	raw, err := repo.Get(ctx, db.KeySettings)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Research")
}

func TestCreateContact(t *testing.T) {
	s, clock, _ := newTestStore(t)
	ctx := context.Background()

	first := mustCreate(t, s, "Jane Doe", "555-0001")
	clock.Advance(time.Minute)
	second := mustCreate(t, s, "John Smith", "")

	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, clock.Now().UnixMilli(), second.LastActivity)
	assert.NotNil(t, second.Notes)
	assert.Empty(t, second.Company)

	all := s.AllContacts(ctx)
	require.Len(t, all, 2)
	assert.Equal(t, "John Smith", all[0].Name, "new contacts go to the head")

	_, err := s.CreateContact(ctx, models.ContactInput{Name: "   "})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestIDsStayUniqueAcrossCreateAndImport(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		mustCreate(t, s, fmt.Sprintf("Person %d", i), "555")
	}
	inputs := make([]models.ContactInput, 30)
	for i := range inputs {
		inputs[i] = models.ContactInput{Name: "Same Name", Phone: "555-0000"}
	}
	_, err := s.ImportContacts(ctx, inputs)
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, c := range s.AllContacts(ctx) {
		assert.False(t, seen[c.ID], "duplicate id %s", c.ID)
		seen[c.ID] = true
	}
	assert.Len(t, seen, 50)
}

func TestUpdateContactDoesNotBumpActivity(t *testing.T) {
	s, clock, _ := newTestStore(t)
	ctx := context.Background()
	c := mustCreate(t, s, "Jane Doe", "555-0001")

	clock.Advance(time.Hour)
	updated, err := s.UpdateContact(ctx, c.ID, models.ContactPatch{Company: models.StringPtr("Acme")})
	require.NoError(t, err)
	assert.Equal(t, "Acme", updated.Company)
	assert.Equal(t, c.LastActivity, updated.LastActivity)

	touched := clock.Now().UnixMilli()
	updated, err = s.UpdateContact(ctx, c.ID, models.ContactPatch{LastActivity: &touched})
	require.NoError(t, err)
	assert.Equal(t, touched, updated.LastActivity)

	_, err = s.UpdateContact(ctx, "missing", models.ContactPatch{})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDeleteContact(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()
	a := mustCreate(t, s, "A", "1")
	b := mustCreate(t, s, "B", "2")

	removed, err := s.DeleteContact(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.DeleteContact(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	all := s.AllContacts(ctx)
	require.Len(t, all, 1)
	assert.Equal(t, b.ID, all[0].ID)
}

func TestAddNotePrependsAndBumps(t *testing.T) {
	s, clock, _ := newTestStore(t)
	ctx := context.Background()
	c := mustCreate(t, s, "Jane Doe", "555-0001")

	clock.Advance(time.Minute)
	_, err := s.AddNote(ctx, c.ID, "first", models.NoteTypeNote)
	require.NoError(t, err)
	clock.Advance(time.Minute)
	got, err := s.AddNote(ctx, c.ID, "second", models.NoteTypeSystem)
	require.NoError(t, err)

	require.Len(t, got.Notes, 2)
	assert.Equal(t, "second", got.Notes[0].Text)
	assert.Equal(t, "first", got.Notes[1].Text)
	assert.NotEqual(t, got.Notes[0].ID, got.Notes[1].ID)
	assert.Equal(t, clock.Now().UnixMilli(), got.LastActivity)
	assert.Equal(t, clock.Now().UnixMilli(), got.Notes[0].Timestamp)

	_, err = s.AddNote(ctx, "missing", "x", models.NoteTypeNote)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = s.AddNote(ctx, c.ID, "x", "bogus")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestReadsAreCopies(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()
	c := mustCreate(t, s, "Jane Doe", "555-0001")
	_, err := s.AddNote(ctx, c.ID, "hello", models.NoteTypeSystem)
	require.NoError(t, err)

	got, err := s.Contact(ctx, c.ID)
	require.NoError(t, err)
	got.Name = "Mallory"
	got.Notes[0].Text = "tampered"

	again, err := s.Contact(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", again.Name)
	assert.Equal(t, "hello", again.Notes[0].Text)
}

func TestBulkReplaceKeepsOrder(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()
	a := mustCreate(t, s, "A", "1")
	b := mustCreate(t, s, "B", "2")
	c := mustCreate(t, s, "C", "3")

	require.NoError(t, s.BulkReplace(ctx, []models.Contact{a, c, b}))

	all := s.AllContacts(ctx)
	assert.Equal(t, []string{a.ID, c.ID, b.ID}, []string{all[0].ID, all[1].ID, all[2].ID})

	err := s.BulkReplace(ctx, []models.Contact{a, a})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestImportValidation(t *testing.T) {
	s, clock, _ := newTestStore(t)
	ctx := context.Background()
	existing := mustCreate(t, s, "Old", "000")
	clock.Advance(time.Minute)

	count, err := s.ImportContacts(ctx, []models.ContactInput{
		{Name: "Alpha", Phone: "111"},
		{Name: "Beta"},
		{Name: "Gamma", Phone: "333"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	all := s.AllContacts(ctx)
	require.Len(t, all, 3)
	assert.Equal(t, "Alpha", all[0].Name, "batch keeps input order at the head")
	assert.Equal(t, "Gamma", all[1].Name)
	assert.Equal(t, existing.ID, all[2].ID)
	assert.Equal(t, clock.Now().UnixMilli(), all[0].LastActivity)

	_, err = s.ImportContacts(ctx, []models.ContactInput{{Name: "No phone"}, {Phone: "123"}})
	assert.ErrorIs(t, err, models.ErrNoValidContacts)
	assert.Len(t, s.AllContacts(ctx), 3, "rejected batch writes nothing")
}

func TestImportDoesNotDeduplicate(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()
	in := []models.ContactInput{{Name: "Jane", Phone: "555-0001"}, {Name: "Jane", Phone: "555-0001"}}

	count, err := s.ImportContacts(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestDeleteAllKeepsSettings(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()
	c := mustCreate(t, s, "A", "1")
	days := 2
	_, err := s.ScheduleFollowUp(ctx, c.ID, &days)
	require.NoError(t, err)

	custom := models.DefaultSettings()
	custom.DealStages = custom.DealStages[:2]
	_, err = s.UpdateSettings(ctx, custom)
	require.NoError(t, err)

	require.NoError(t, s.DeleteAll(ctx))
	assert.Empty(t, s.AllContacts(ctx))
	assert.Empty(t, s.FollowUps(ctx))
	assert.Len(t, s.Settings(ctx).DealStages, 2)
}

func TestStatePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "crm.db")

	repo, err := db.Open(db.BackendSQLite, path)
	require.NoError(t, err)
	s := New(ctx, repo, WithLogger(log.New(io.Discard)))
	c, err := s.CreateContact(ctx, models.ContactInput{Name: "Jane Doe", Phone: "555-0001"})
	require.NoError(t, err)
	_, err = s.AddNote(ctx, c.ID, "persist me", models.NoteTypeSystem)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	repo, err = db.Open(db.BackendSQLite, path)
	require.NoError(t, err)
	s = New(ctx, repo, WithLogger(log.New(io.Discard)))
	defer s.Close()

	got, err := s.Contact(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, got.Notes, 1)
	assert.Equal(t, "persist me", got.Notes[0].Text)
	assert.False(t, s.Degraded())
}

// brokenRepo fails every write after the first successful load.
type brokenRepo struct {
	*db.MemoryRepository
	failReads  bool
	failWrites bool
}

func (b *brokenRepo) Get(ctx context.Context, key string) ([]byte, error) {
	if b.failReads {
		return nil, errors.New("medium unreadable")
	}
	return b.MemoryRepository.Get(ctx, key)
}

func (b *brokenRepo) PutAll(ctx context.Context, records map[string][]byte) error {
	if b.failWrites {
		return errors.New("disk full")
	}
	return b.MemoryRepository.PutAll(ctx, records)
}

func TestUnreadableStorageStartsDegraded(t *testing.T) {
	ctx := context.Background()
	s := New(ctx, &brokenRepo{MemoryRepository: db.NewMemoryRepository(), failReads: true}, WithLogger(log.New(io.Discard)))

	assert.True(t, s.Degraded())
	assert.Equal(t, db.BackendMemory, s.Backend())
	assert.Equal(t, models.DefaultSettings(), s.Settings(ctx))

	_, err := s.CreateContact(ctx, models.ContactInput{Name: "Still works"})
	assert.NoError(t, err)
}

func TestWriteFailureDegradesButMutationSucceeds(t *testing.T) {
	ctx := context.Background()
	repo := &brokenRepo{MemoryRepository: db.NewMemoryRepository()}
	s := New(ctx, repo, WithLogger(log.New(io.Discard)))
	require.False(t, s.Degraded())

	repo.failWrites = true
	c, err := s.CreateContact(ctx, models.ContactInput{Name: "Jane"})
	require.NoError(t, err)
	assert.True(t, s.Degraded())

	got, err := s.Contact(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane", got.Name)
}

func TestConcurrentMutationsAllLand(t *testing.T) {
	s, _, repo := newTestStore(t)
	ctx := context.Background()
	c := mustCreate(t, s, "Busy", "555")

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.AddNote(ctx, c.ID, fmt.Sprintf("note %d", i), models.NoteTypeSystem)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := s.Contact(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, got.Notes, 25)

	// The last flush reflects every mutation
	state, _, err := db.LoadState(ctx, repo, log.New(io.Discard))
	require.NoError(t, err)
	require.Len(t, state.Contacts, 1)
	assert.Len(t, state.Contacts[0].Notes, 25)
}

func TestSettingsValidation(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	bad := models.DefaultSettings()
	bad.DealStages = append(bad.DealStages, models.DealStage{ID: "dup", Name: "LOI"})
	_, err := s.UpdateSettings(ctx, bad)
	assert.ErrorIs(t, err, models.ErrValidation)

	partial := &models.AppSettings{LeadTypes: []models.LeadType{{ID: "1", Name: "Only"}}}
	got, err := s.UpdateSettings(ctx, partial)
	require.NoError(t, err)
	assert.Len(t, got.LeadTypes, 1)
	assert.Equal(t, models.DefaultSettings().DealStages, got.DealStages)
}

func TestSnapshotIsFullState(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()
	c := mustCreate(t, s, "Jane", "1")
	days := 1
	_, err := s.ScheduleFollowUp(ctx, c.ID, &days)
	require.NoError(t, err)

	doc := s.Snapshot(ctx)
	assert.Len(t, doc.Contacts, 1)
	assert.Len(t, doc.FollowUps, 1)
	assert.NotNil(t, doc.Settings)
}

func TestSeedDemo(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	n, err := s.SeedDemo(ctx, 250)
	require.NoError(t, err)
	assert.Equal(t, 250, n)

	all := s.AllContacts(ctx)
	require.Len(t, all, 250)
	assert.Equal(t, "John Doe #1", all[0].Name)
	assert.NotEmpty(t, all[0].Notes)

	pipeline := s.Query(ctx, models.QuerySpec{DealStageFilter: "Research"})
	assert.Equal(t, 8, pipeline.TotalCount)

	views := s.FollowUpViews(ctx)
	assert.Len(t, views, 60)
	overdue := 0
	for _, v := range views {
		if v.Status == models.FollowUpOverdue {
			overdue++
		}
	}
	assert.Equal(t, 20, overdue)

	_, err = s.SeedDemo(ctx, 0)
	assert.ErrorIs(t, err, models.ErrValidation)
}

package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/harperreed/dealflow/classify"
	"github.com/harperreed/dealflow/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThrottleWithinLocalDay(t *testing.T) {
	s, clock, _ := newTestStore(t)
	ctx := context.Background()
	c := mustCreate(t, s, "Jane", "1")

	assert.True(t, s.CanPerform(ctx, c.ID, "call"))
	require.NoError(t, s.Record(ctx, c.ID, "call"))
	assert.False(t, s.CanPerform(ctx, c.ID, "call"))
	assert.True(t, s.CanPerform(ctx, c.ID, "email"), "keys are independent")

	// Late the same evening is still the same local day
	clock.Set(time.Date(2026, 3, 10, 23, 59, 0, 0, testLoc))
	assert.False(t, s.CanPerform(ctx, c.ID, "call"))

	clock.Set(time.Date(2026, 3, 11, 0, 0, 1, 0, testLoc))
	assert.True(t, s.CanPerform(ctx, c.ID, "call"))

	assert.False(t, s.CanPerform(ctx, "missing", "call"))
	assert.ErrorIs(t, s.Record(ctx, "missing", "call"), models.ErrNotFound)
}

func TestRecordDoesNotBumpActivity(t *testing.T) {
	s, clock, _ := newTestStore(t)
	ctx := context.Background()
	c := mustCreate(t, s, "Jane", "1")

	clock.Advance(time.Hour)
	require.NoError(t, s.Record(ctx, c.ID, "call"))

	got, err := s.Contact(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.LastActivity, got.LastActivity)
	assert.Equal(t, clock.Now().UnixMilli(), got.LastActionTimestamps["call"])
}

func TestLogOutcomeOncePerDay(t *testing.T) {
	s, clock, _ := newTestStore(t)
	ctx := context.Background()
	c := mustCreate(t, s, "Jane", "1")

	got, err := s.LogOutcome(ctx, c.ID, "No Answer")
	require.NoError(t, err)
	require.Len(t, got.Notes, 1)
	assert.Equal(t, models.NoteTypeOutcome, got.Notes[0].Type)
	assert.Equal(t, "No Answer", got.Notes[0].Text)
	assert.Contains(t, got.LastActionTimestamps, OutcomeActionKey("No Answer"))

	_, err = s.LogOutcome(ctx, c.ID, "No Answer")
	assert.ErrorIs(t, err, models.ErrAlreadyDoneToday)

	_, err = s.LogOutcome(ctx, c.ID, "Texted Instead")
	assert.NoError(t, err)

	clock.Advance(24 * time.Hour)
	got, err = s.LogOutcome(ctx, c.ID, "No Answer")
	require.NoError(t, err)
	assert.Len(t, got.Notes, 3)
}

func TestScheduleFollowUpAction(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()
	c := mustCreate(t, s, "Jane", "1")

	got, err := s.ScheduleFollowUpAction(ctx, c.ID, intPtr(7), "")
	require.NoError(t, err)
	assert.Equal(t, "Follow-up scheduled for Mar 17, 2026.", got.Notes[0].Text)
	assert.Equal(t, models.NoteTypeSystem, got.Notes[0].Type)

	_, err = s.ScheduleFollowUpAction(ctx, c.ID, intPtr(1), "")
	assert.ErrorIs(t, err, models.ErrAlreadyDoneToday)

	got, err = s.ScheduleFollowUpAction(ctx, c.ID, nil, "followup-never")
	require.NoError(t, err)
	assert.Equal(t, "Marked as 'Don't call again'.", got.Notes[0].Text)
	_, open := s.OpenFollowUp(ctx, c.ID)
	assert.False(t, open)
}

func TestCompleteFollowUpAction(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()
	c := mustCreate(t, s, "Jane", "1")
	_, err := s.ScheduleFollowUp(ctx, c.ID, intPtr(0))
	require.NoError(t, err)

	got, err := s.CompleteFollowUpAction(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Follow-up marked as done.", got.Notes[0].Text)
	assert.True(t, s.FollowUps(ctx)[0].Completed)

	_, err = s.CompleteFollowUpAction(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSetDealStageAndLeadType(t *testing.T) {
	s, clock, _ := newTestStore(t)
	ctx := context.Background()
	c := mustCreate(t, s, "Jane", "1")

	clock.Advance(time.Minute)
	got, err := s.SetDealStage(ctx, c.ID, "LOI")
	require.NoError(t, err)
	assert.Equal(t, "LOI", got.DealStage)
	assert.Equal(t, clock.Now().UnixMilli(), got.LastActivity)
	assert.Equal(t, "Deal stage updated to: LOI", got.Notes[0].Text)
	assert.Equal(t, models.NoteTypeAutotag, got.Notes[0].Type)

	clock.Advance(time.Minute)
	got, err = s.SetLeadType(ctx, c.ID, "Buyer")
	require.NoError(t, err)
	assert.Equal(t, "Buyer", got.LeadType)
	assert.Equal(t, clock.Now().UnixMilli(), got.LastActivity)
	assert.Len(t, got.Notes, 1)
}

type stubSuggester struct {
	mu    sync.Mutex
	reply string
	err   error
	calls int
	block chan struct{}
}

func (s *stubSuggester) SuggestStage(ctx context.Context, _ string, _ []models.DealStage) (string, error) {
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.reply, s.err
}

func TestAddNoteAppliesSuggestedStage(t *testing.T) {
	sg := &stubSuggester{reply: "Contract"}
	s, _, _ := newTestStore(t, WithSuggester(sg))
	ctx := context.Background()
	c := mustCreate(t, s, "Jane", "1")

	_, err := s.AddNote(ctx, c.ID, "signed contract today", models.NoteTypeNote)
	require.NoError(t, err)
	s.Drain()

	got, err := s.Contact(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Contract", got.DealStage)
	assert.Equal(t, "Deal stage updated to: Contract", got.Notes[0].Text)

	// Only note-type notes trigger suggestions
	_, err = s.AddNote(ctx, c.ID, "system text", models.NoteTypeSystem)
	require.NoError(t, err)
	s.Drain()
	assert.Equal(t, 1, sg.calls)
}

func TestAddNoteDoesNotWaitForSuggestion(t *testing.T) {
	sg := &stubSuggester{reply: "LOI", block: make(chan struct{})}
	var (
		mu        sync.Mutex
		delivered []string
	)
	handler := func(_ context.Context, id, stage string) {
		mu.Lock()
		defer mu.Unlock()
		delivered = append(delivered, id+"="+stage)
	}
	s, _, _ := newTestStore(t, WithSuggester(sg), WithSuggestionHandler(handler))
	ctx := context.Background()
	c := mustCreate(t, s, "Jane", "1")

	done := make(chan struct{})
	go func() {
		_, err := s.AddNote(ctx, c.ID, "sent LOI", models.NoteTypeNote)
		assert.NoError(t, err)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("AddNote blocked on the suggester")
	}

	close(sg.block)
	s.Drain()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{c.ID + "=LOI"}, delivered)

	got, err := s.Contact(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, got.DealStage, "custom handler replaces auto-apply")
}

func TestSuggestionFailureNeverSurfaces(t *testing.T) {
	for _, err := range []error{classify.ErrDisabled, errors.New("quota exceeded")} {
		sg := &stubSuggester{err: err}
		s, _, _ := newTestStore(t, WithSuggester(sg))
		ctx := context.Background()
		c := mustCreate(t, s, "Jane", "1")

		got, addErr := s.AddNote(ctx, c.ID, "under contract", models.NoteTypeNote)
		require.NoError(t, addErr)
		assert.Equal(t, "under contract", got.Notes[0].Text)

		_, addErr = s.AddNote(ctx, c.ID, "again", models.NoteTypeNote)
		require.NoError(t, addErr)
		s.Drain()
		assert.True(t, s.suggestWarned.Load())
	}
}

func TestSuggestionTimeout(t *testing.T) {
	sg := &stubSuggester{reply: "LOI", block: make(chan struct{})}
	s, _, _ := newTestStore(t, WithSuggester(sg), WithSuggestTimeout(20*time.Millisecond))
	ctx := context.Background()
	c := mustCreate(t, s, "Jane", "1")

	_, err := s.AddNote(ctx, c.ID, "sent LOI", models.NoteTypeNote)
	require.NoError(t, err)
	s.Drain()

	got, err := s.Contact(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, got.DealStage)
}

func TestNoSuggestionsAfterClose(t *testing.T) {
	sg := &stubSuggester{reply: "LOI"}
	s, _, _ := newTestStore(t, WithSuggester(sg))
	ctx := context.Background()
	c := mustCreate(t, s, "Jane", "1")

	require.NoError(t, s.Close())

	_, err := s.AddNote(ctx, c.ID, "sent LOI", models.NoteTypeNote)
	require.NoError(t, err)
	s.Drain()

	assert.Zero(t, sg.calls)
	got, err := s.Contact(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, got.DealStage)
}

func TestCloseWaitsForInFlightSuggestion(t *testing.T) {
	sg := &stubSuggester{reply: "LOI", block: make(chan struct{})}
	s, _, _ := newTestStore(t, WithSuggester(sg))
	ctx := context.Background()
	c := mustCreate(t, s, "Jane", "1")

	_, err := s.AddNote(ctx, c.ID, "sent LOI", models.NoteTypeNote)
	require.NoError(t, err)

	closed := make(chan error, 1)
	go func() { closed <- s.Close() }()
	time.Sleep(20 * time.Millisecond)
	close(sg.block)

	select {
	case err := <-closed:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return after the suggestion finished")
	}
	assert.Equal(t, 1, sg.calls)
}

func TestApplySuggestedStageIsIdempotent(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()
	c := mustCreate(t, s, "Jane", "1")

	first, err := s.ApplySuggestedStage(ctx, c.ID, "LOI")
	require.NoError(t, err)
	second, err := s.ApplySuggestedStage(ctx, c.ID, "LOI")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, second.Notes, 1)

	_, err = s.ApplySuggestedStage(ctx, c.ID, "Not A Stage")
	assert.ErrorIs(t, err, models.ErrValidation)
	_, err = s.ApplySuggestedStage(ctx, "missing", "LOI")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

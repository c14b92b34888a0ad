// ABOUTME: Store is the single owner of contacts, follow-ups and settings
// ABOUTME: Serializes every mutation with a full-state flush and hands out deep copies
package store

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/harperreed/dealflow/db"
	"github.com/harperreed/dealflow/models"
	"github.com/oklog/ulid/v2"
)

const defaultSuggestTimeout = 20 * time.Second

// Store holds the live CRM state. All methods are safe for concurrent use.
// Mutations hold mu across the in-memory change and the flush, so flushes
// land in the order the mutations were issued.
type Store struct {
	mu        sync.Mutex
	repo      db.Repository
	degraded  bool
	contacts  []models.Contact
	followUps []models.FollowUp
	settings  *models.AppSettings

	now     func() time.Time
	loc     *time.Location
	logger  *log.Logger
	entropy io.Reader

	suggester      Suggester
	onSuggest      SuggestionHandler
	suggestTimeout time.Duration
	suggestWG      sync.WaitGroup
	suggestWarned  atomic.Bool
	closing        bool // guarded by mu; no new suggestions once set
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLocation sets the zone used for calendar-day rules. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) { s.loc = loc }
}

func WithLogger(logger *log.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithSuggester enables advisory deal-stage suggestions after note saves.
func WithSuggester(sg Suggester) Option {
	return func(s *Store) { s.suggester = sg }
}

// WithSuggestionHandler overrides what happens with a suggested stage.
// The default applies it with ApplySuggestedStage.
func WithSuggestionHandler(h SuggestionHandler) Option {
	return func(s *Store) { s.onSuggest = h }
}

func WithSuggestTimeout(d time.Duration) Option {
	return func(s *Store) { s.suggestTimeout = d }
}

// New loads state from repo. It never fails: if the repository can't be read
// the store starts empty in degraded, memory-only mode.
func New(ctx context.Context, repo db.Repository, opts ...Option) *Store {
	s := &Store{
		repo:           repo,
		now:            time.Now,
		loc:            time.Local,
		logger:         log.Default(),
		suggestTimeout: defaultSuggestTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.entropy = ulid.Monotonic(rand.Reader, 0)

	if s.repo == nil {
		s.repo = db.NewMemoryRepository()
	}

	state, report, err := db.LoadState(ctx, s.repo, s.logger)
	if err != nil {
		s.logger.Error("storage unavailable; running in memory only", "backend", s.repo.Name(), "err", err)
		s.degrade()
		state, report, _ = db.LoadState(ctx, s.repo, s.logger)
	}

	s.contacts = state.Contacts
	s.followUps = state.FollowUps
	s.settings = state.Settings

	if report.NeedsFlush() {
		s.mu.Lock()
		s.flushLocked(ctx)
		s.mu.Unlock()
	}

	return s
}

// Degraded reports whether the store lost its backing medium and is memory-only.
func (s *Store) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

// Backend names the repository currently receiving flushes.
func (s *Store) Backend() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.Name()
}

// Location is the zone calendar-day rules are evaluated in.
func (s *Store) Location() *time.Location {
	return s.loc
}

// Now returns the store clock's current time in Location.
func (s *Store) Now() time.Time {
	return s.clock()
}

// Drain waits for in-flight advisory suggestions to finish.
func (s *Store) Drain() {
	s.suggestWG.Wait()
}

// Close stops new suggestions, drains in-flight ones and closes the repository.
func (s *Store) Close() error {
	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()

	s.Drain()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.Close()
}

func (s *Store) degrade() {
	if s.degraded {
		return
	}
	old := s.repo
	s.repo = db.NewMemoryRepository()
	s.degraded = true
	if err := old.Close(); err != nil {
		s.logger.Debug("closing failed repository", "err", err)
	}
}

// flushLocked writes the whole state. Callers must hold mu.
func (s *Store) flushLocked(ctx context.Context) {
	state := &db.State{Contacts: s.contacts, FollowUps: s.followUps, Settings: s.settings}
	err := db.SaveState(ctx, s.repo, state)
	if err == nil {
		return
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		s.logger.Warn("flush interrupted", "err", err)
		return
	}
	s.logger.Error("failed to persist state; switching to memory only", "backend", s.repo.Name(), "err", err)
	s.degrade()
	_ = db.SaveState(ctx, s.repo, state)
}

func (s *Store) clock() time.Time {
	return s.now().In(s.loc)
}

func (s *Store) newContactID() string {
	return uuid.New().String()
}

// newNoteID must be called with mu held; monotonic entropy isn't goroutine safe.
func (s *Store) newNoteID(t time.Time) string {
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}

func (s *Store) indexOf(id string) int {
	for i := range s.contacts {
		if s.contacts[i].ID == id {
			return i
		}
	}
	return -1
}

package api

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"cardforge/internal/config"
	"cardforge/internal/domain"
	"cardforge/internal/export"
	"cardforge/internal/ingest"
	"cardforge/internal/store"
	"cardforge/internal/task"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeSourceStore is an in-memory store.SourceStore.
type fakeSourceStore struct {
	sources   map[uuid.UUID]*domain.Source
	createErr error
}

func newFakeSourceStore() *fakeSourceStore {
	return &fakeSourceStore{sources: make(map[uuid.UUID]*domain.Source)}
}

func (f *fakeSourceStore) Create(ctx context.Context, source *domain.Source) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.sources[source.ID] = source
	return nil
}

func (f *fakeSourceStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Source, error) {
	source, ok := f.sources[id]
	if !ok {
		return nil, store.ErrSourceNotFound
	}
	return source, nil
}

func (f *fakeSourceStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.SourceStatus) error {
	source, ok := f.sources[id]
	if !ok {
		return store.ErrSourceNotFound
	}
	return source.UpdateStatus(status)
}

func (f *fakeSourceStore) FindByStatus(
	ctx context.Context,
	status domain.SourceStatus,
	limit, offset int,
) ([]*domain.Source, error) {
	matches := make([]*domain.Source, 0)
	for _, source := range f.sources {
		if source.Status == status {
			matches = append(matches, source)
		}
	}
	return matches, nil
}

func (f *fakeSourceStore) WithTx(tx *sql.Tx) store.SourceStore { return f }

// fakeDeckStore is an in-memory store.DeckStore keyed by source ID.
type fakeDeckStore struct {
	decks map[uuid.UUID]*domain.Deck
}

func newFakeDeckStore() *fakeDeckStore {
	return &fakeDeckStore{decks: make(map[uuid.UUID]*domain.Deck)}
}

func (f *fakeDeckStore) Create(ctx context.Context, deck *domain.Deck) error {
	f.decks[deck.SourceID] = deck
	return nil
}

func (f *fakeDeckStore) GetBySourceID(ctx context.Context, sourceID uuid.UUID) (*domain.Deck, error) {
	deck, ok := f.decks[sourceID]
	if !ok {
		return nil, store.ErrDeckNotFound
	}
	return deck, nil
}

func (f *fakeDeckStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Deck, error) {
	for _, deck := range f.decks {
		if deck.ID == id {
			return deck, nil
		}
	}
	return nil, store.ErrDeckNotFound
}

func (f *fakeDeckStore) DeleteBySourceID(ctx context.Context, sourceID uuid.UUID) error {
	delete(f.decks, sourceID)
	return nil
}

func (f *fakeDeckStore) WithTx(tx *sql.Tx) store.DeckStore { return f }

// fakeTask satisfies task.Task without doing any work.
type fakeTask struct {
	id uuid.UUID
}

func (t *fakeTask) ID() uuid.UUID                     { return t.id }
func (t *fakeTask) Type() string                      { return task.TaskTypeSourceGeneration }
func (t *fakeTask) Payload() []byte                   { return nil }
func (t *fakeTask) Status() task.TaskStatus           { return task.TaskStatusPending }
func (t *fakeTask) Execute(ctx context.Context) error { return nil }

// fakeTaskFactory records the source IDs tasks were created for.
type fakeTaskFactory struct {
	created []uuid.UUID
	err     error
}

func (f *fakeTaskFactory) CreateTask(sourceID uuid.UUID) (task.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, sourceID)
	return &fakeTask{id: uuid.New()}, nil
}

// fakeQueue records enqueued tasks.
type fakeQueue struct {
	enqueued []task.Task
	err      error
}

func (f *fakeQueue) Enqueue(t task.Task) error {
	if f.err != nil {
		return f.err
	}
	f.enqueued = append(f.enqueued, t)
	return nil
}

func (f *fakeQueue) Close() {}

// testServer bundles the router and its fakes for one test.
type testServer struct {
	handler http.Handler
	sources *fakeSourceStore
	decks   *fakeDeckStore
	factory *fakeTaskFactory
	queue   *fakeQueue
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	sources := newFakeSourceStore()
	decks := newFakeDeckStore()
	factory := &fakeTaskFactory{}
	queue := &fakeQueue{}

	loader, err := ingest.NewLoader(ingest.NewCleaner(config.CleanerConfig{}), discardLogger())
	require.NoError(t, err)

	sourceHandler := NewSourceHandler(sources, loader, factory, queue, discardLogger())
	deckHandler := NewDeckHandler(decks, export.NewExporter(config.ExportConfig{}), discardLogger())

	return &testServer{
		handler: NewRouter(sourceHandler, deckHandler),
		sources: sources,
		decks:   decks,
		factory: factory,
		queue:   queue,
	}
}

func storedSource(t *testing.T, srv *testServer) *domain.Source {
	t.Helper()
	source, err := domain.NewSource("Biology Notes", domain.SourceFormatTXT, "eng",
		"The cell is the basic unit of life.")
	require.NoError(t, err)
	srv.sources.sources[source.ID] = source
	return source
}

func storedDeck(t *testing.T, srv *testServer, sourceID uuid.UUID) *domain.Deck {
	t.Helper()

	card, err := domain.NewCard(uuid.New(), domain.CardCandidate{
		Front:   "What is the basic unit of life?",
		Back:    "The cell.",
		ChunkID: uuid.New(),
	})
	require.NoError(t, err)

	deck := &domain.Deck{
		ID:       uuid.New(),
		SourceID: sourceID,
		Cards:    []*domain.Card{card},
		Stats: domain.DeckStats{
			TotalChunks:    1,
			CandidatesSeen: 1,
			CardsAccepted:  1,
		},
		CreatedAt: time.Now().UTC(),
	}
	srv.decks.decks[sourceID] = deck
	return deck
}

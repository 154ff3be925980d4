package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/community_gallery/internal/es"
	"github.com/Skotchmaster/community_gallery/internal/mediahost"
	"github.com/Skotchmaster/community_gallery/internal/ownership"
	"github.com/Skotchmaster/community_gallery/internal/platform"
	"github.com/Skotchmaster/community_gallery/internal/repo"
)

func newTestRepo(t *testing.T) *repo.GormRepo {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, repo.Migrate(db))
	return &repo.GormRepo{DB: db}
}

type fakeVerifier struct {
	result ownership.Result
	err    error
	calls  int
}

func (f *fakeVerifier) Verify(_ context.Context, req ownership.Request) (ownership.Result, error) {
	f.calls++
	if req.CustomerID == "" && req.OrderID == "" {
		return ownership.Result{}, ownership.ErrMissingIdentifier
	}
	return f.result, f.err
}

type fakeUploader struct {
	calls []mediahost.Options
	err   error
}

func (f *fakeUploader) Upload(_ context.Context, data []byte, opts mediahost.Options) (*mediahost.Result, error) {
	f.calls = append(f.calls, opts)
	if f.err != nil {
		return nil, f.err
	}
	return &mediahost.Result{
		URL:          "https://cdn.example.com/community/abc.png",
		PublicID:     "community/abc",
		ResourceType: mediahost.ResourceImage,
	}, nil
}

type fakeProducts struct {
	title string
	err   error
}

func (f *fakeProducts) GetProduct(_ context.Context, productID string) (*platform.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &platform.Product{Title: f.title}, nil
}

type publishedEvent struct {
	topic, key string
	event      Event
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (f *fakePublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	ev, _ := event.(Event)
	f.events = append(f.events, publishedEvent{topic: topic, key: key, event: ev})
	return nil
}

func (f *fakePublisher) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.event.Type)
	}
	return out
}

type fakeIndexer struct {
	indexed []uint
	deleted []uint
	err     error
}

func (f *fakeIndexer) IndexMedia(_ context.Context, doc es.MediaDoc) error {
	f.indexed = append(f.indexed, doc.ID)
	return f.err
}

func (f *fakeIndexer) DeleteMedia(_ context.Context, id uint) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

var errBoom = errors.New("boom")

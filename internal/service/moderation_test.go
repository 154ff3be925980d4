package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/community_gallery/internal/models"
	"github.com/Skotchmaster/community_gallery/internal/repo"
)

func TestParseFilter(t *testing.T) {
	t.Parallel()

	f, err := ParseFilter("", "", "")
	require.NoError(t, err)
	assert.Equal(t, repo.StatusAll, f.Status)
	assert.Nil(t, f.From)
	assert.Nil(t, f.To)

	f, err = ParseFilter("Pending", "2024-03-01", "2024-03-02")
	require.NoError(t, err)
	assert.Equal(t, repo.StatusPending, f.Status)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *f.From)
	assert.Equal(t, time.Date(2024, 3, 2, 23, 59, 59, 999999999, time.UTC), *f.To)

	_, err = ParseFilter("deleted", "", "")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = ParseFilter("", "03/01/2024", "")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = ParseFilter("", "2024-03-05", "2024-03-01")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestModeration_ToggleTwiceRestores(t *testing.T) {
	r := newTestRepo(t)
	ix := &fakeIndexer{}
	events := &fakePublisher{}
	svc := &ModerationService{Repo: r, Index: ix, Events: events, Topic: "gallery_events"}
	ctx := context.Background()

	m := &models.Media{PublicID: "p", URL: "u", Type: models.MediaImage, ShopifyProductID: "9"}
	require.NoError(t, r.CreateMedia(ctx, m))

	on, err := svc.Toggle(ctx, m.ID, "admin@example.com")
	require.NoError(t, err)
	assert.True(t, on.Approved)

	off, err := svc.Toggle(ctx, m.ID, "admin@example.com")
	require.NoError(t, err)
	assert.False(t, off.Approved)

	assert.Equal(t, []uint{m.ID}, ix.indexed)
	assert.Equal(t, []uint{m.ID}, ix.deleted)
	assert.Equal(t, []string{EventMediaModerated, EventMediaModerated}, events.types())
}

func TestModeration_ToggleMissingAndIndexFailure(t *testing.T) {
	r := newTestRepo(t)
	svc := &ModerationService{Repo: r, Index: &fakeIndexer{err: errBoom}}
	ctx := context.Background()

	_, err := svc.Toggle(ctx, 404, "")
	assert.ErrorIs(t, err, ErrNotFound)

	m := &models.Media{PublicID: "p", URL: "u", Type: models.MediaImage, ShopifyProductID: "9"}
	require.NoError(t, r.CreateMedia(ctx, m))
	got, err := svc.Toggle(ctx, m.ID, "")
	require.NoError(t, err)
	assert.True(t, got.Approved)
}

func TestModeration_ListPaginates(t *testing.T) {
	r := newTestRepo(t)
	svc := &ModerationService{Repo: r}
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, r.CreateMedia(ctx, &models.Media{
			PublicID: "p", URL: "u", Type: models.MediaImage, ShopifyProductID: "9",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	page, err := svc.List(ctx, repo.MediaFilter{Status: repo.StatusAll}, 2, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 5, page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 2, page.Size)
	assert.EqualValues(t, 3, page.TotalPages)
	require.Len(t, page.Items, 2)
	assert.True(t, page.Items[0].CreatedAt.After(page.Items[1].CreatedAt))
}

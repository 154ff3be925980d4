package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/community_gallery/internal/models"
)

func newTestRepo(t *testing.T) *GormRepo {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, Migrate(db))
	return &GormRepo{DB: db}
}

func seedMedia(t *testing.T, r *GormRepo, productID string, approved bool, created time.Time) *models.Media {
	t.Helper()
	m := &models.Media{
		PublicID:         "community/" + productID,
		URL:              "https://cdn.example.com/" + productID,
		Type:             models.MediaImage,
		ShopifyProductID: productID,
		CreatedAt:        created,
	}
	require.NoError(t, r.CreateMedia(context.Background(), m))
	if approved {
		_, err := r.ToggleApproval(context.Background(), m.ID)
		require.NoError(t, err)
	}
	return m
}

func TestUpsertCustomer_UpdatesExistingRow(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	first := &models.Customer{ShopifyID: "55", FirstName: "Ann", Email: "ann@example.com"}
	require.NoError(t, r.UpsertCustomer(ctx, first))
	require.NotZero(t, first.ID)

	again := &models.Customer{ShopifyID: "55", FirstName: "Anna", Email: "anna@example.com"}
	require.NoError(t, r.UpsertCustomer(ctx, again))
	assert.Equal(t, first.ID, again.ID)

	var count int64
	require.NoError(t, r.DB.Model(&models.Customer{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	stored, err := r.FindCustomerByShopifyID(ctx, "55")
	require.NoError(t, err)
	assert.Equal(t, "Anna", stored.FirstName)
	assert.Equal(t, "anna@example.com", stored.Email)
}

func TestCreateMedia_DefaultsToNotApproved(t *testing.T) {
	r := newTestRepo(t)

	m := seedMedia(t, r, "9", false, time.Now().UTC())
	got, err := r.GetMedia(context.Background(), m.ID)
	require.NoError(t, err)
	assert.False(t, got.Approved)
}

func TestToggleApproval_TwiceRestores(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	m := seedMedia(t, r, "9", false, time.Now().UTC())

	once, err := r.ToggleApproval(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, once.Approved)

	twice, err := r.ToggleApproval(ctx, m.ID)
	require.NoError(t, err)
	assert.False(t, twice.Approved)

	_, err = r.ToggleApproval(ctx, 9999)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestListMedia_FilterAndOrdering(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	base := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	oldApproved := seedMedia(t, r, "1", true, base.Add(-48*time.Hour))
	newApproved := seedMedia(t, r, "2", true, base)
	oldPending := seedMedia(t, r, "3", false, base.Add(-24*time.Hour))
	newPending := seedMedia(t, r, "4", false, base.Add(time.Hour))

	total, items, err := r.ListMedia(ctx, MediaFilter{Status: StatusAll}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	require.Len(t, items, 4)
	assert.Equal(t, []uint{newPending.ID, oldPending.ID, newApproved.ID, oldApproved.ID},
		[]uint{items[0].ID, items[1].ID, items[2].ID, items[3].ID})

	total, items, err = r.ListMedia(ctx, MediaFilter{Status: StatusPending}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	for _, m := range items {
		assert.False(t, m.Approved)
	}

	from := base.Add(-24 * time.Hour)
	to := base
	total, items, err = r.ListMedia(ctx, MediaFilter{Status: StatusAll, From: &from, To: &to}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, oldPending.ID, items[0].ID)
	assert.Equal(t, newApproved.ID, items[1].ID)
}

func TestApprovedMediaForProduct(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	seedMedia(t, r, "9", false, time.Now().UTC())
	items, err := r.ApprovedMediaForProduct(ctx, "9")
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)

	approved := seedMedia(t, r, "9", true, time.Now().UTC())
	items, err = r.ApprovedMediaForProduct(ctx, "9")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, approved.ID, items[0].ID)
}

func TestToggleLike_LikeThenUnlike(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	c := &models.Customer{ShopifyID: "55"}
	require.NoError(t, r.UpsertCustomer(ctx, c))
	m := seedMedia(t, r, "9", true, time.Now().UTC())

	before, err := r.LikeCounts(ctx, []uint{m.ID})
	require.NoError(t, err)

	liked, count, err := r.ToggleLike(ctx, c.ID, m.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.EqualValues(t, before[m.ID]+1, count)

	byCustomer, err := r.LikedBy(ctx, c.ID, []uint{m.ID})
	require.NoError(t, err)
	assert.True(t, byCustomer[m.ID])

	liked, count, err = r.ToggleLike(ctx, c.ID, m.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.EqualValues(t, before[m.ID], count)
}

func TestCreateProduct_IgnoresDuplicate(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	p1, err := r.CreateProduct(ctx, &models.Product{ShopifyID: "9", Name: "Tee"})
	require.NoError(t, err)
	p2, err := r.CreateProduct(ctx, &models.Product{ShopifyID: "9", Name: "Tee again"})
	require.NoError(t, err)
	assert.Equal(t, p1.ID, p2.ID)
	assert.Equal(t, "Tee", p2.Name)
}

func TestTransaction_RollsBack(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := r.Transaction(ctx, func(tx *GormRepo) error {
		require.NoError(t, tx.UpsertCustomer(ctx, &models.Customer{ShopifyID: "77"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = r.FindCustomerByShopifyID(ctx, "77")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

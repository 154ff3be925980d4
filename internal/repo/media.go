package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/community_gallery/internal/models"
)

const (
	StatusAll      = "all"
	StatusApproved = "approved"
	StatusPending  = "pending"
)

type MediaFilter struct {
	Status string
	// From and To bound created_at; both are inclusive.
	From *time.Time
	To   *time.Time
}

func (r *GormRepo) CreateMedia(ctx context.Context, m *models.Media) error {
	return r.DB.WithContext(ctx).Omit("Product", "Customer").Create(m).Error
}

func (r *GormRepo) GetMedia(ctx context.Context, id uint) (*models.Media, error) {
	var m models.Media
	if err := r.DB.WithContext(ctx).Preload("Product").Preload("Customer").First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *GormRepo) ApprovedMediaForProduct(ctx context.Context, shopifyProductID string) ([]models.Media, error) {
	items := make([]models.Media, 0)
	err := r.DB.WithContext(ctx).
		Where("shopify_product_id = ? AND approved = ?", shopifyProductID, true).
		Order("created_at DESC").
		Order("id DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// ListMedia returns one page of media for moderation. Pending items come
// first, then newest first.
func (r *GormRepo) ListMedia(ctx context.Context, f MediaFilter, offset, limit int) (int64, []models.Media, error) {
	q := r.applyFilter(r.DB.WithContext(ctx).Model(&models.Media{}), f)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Media, 0, limit)
	err := r.applyFilter(r.DB.WithContext(ctx).Model(&models.Media{}), f).
		Preload("Product").
		Preload("Customer").
		Order("approved ASC").
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) applyFilter(q *gorm.DB, f MediaFilter) *gorm.DB {
	switch f.Status {
	case StatusApproved:
		q = q.Where("approved = ?", true)
	case StatusPending:
		q = q.Where("approved = ?", false)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}
	return q
}

// ToggleApproval flips the approved flag in one statement and returns the
// updated row.
func (r *GormRepo) ToggleApproval(ctx context.Context, id uint) (*models.Media, error) {
	res := r.DB.WithContext(ctx).Model(&models.Media{}).
		Where("id = ?", id).
		Update("approved", gorm.Expr("NOT approved"))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetMedia(ctx, id)
}

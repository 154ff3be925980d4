package repo

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/community_gallery/internal/models"
)

func (r *GormRepo) FindProductByShopifyID(ctx context.Context, shopifyID string) (*models.Product, error) {
	var p models.Product
	if err := r.DB.WithContext(ctx).Where("shopify_id = ?", shopifyID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProduct tolerates a concurrent insert of the same platform id and
// returns whichever row ended up stored.
func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) (*models.Product, error) {
	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "shopify_id"}},
		DoNothing: true,
	}).Create(p).Error
	if err != nil {
		return nil, err
	}
	return r.FindProductByShopifyID(ctx, p.ShopifyID)
}

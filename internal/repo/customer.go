package repo

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/community_gallery/internal/models"
)

// UpsertCustomer inserts the customer or refreshes name and email of the row
// with the same platform id. c.ID is populated from the stored row.
func (r *GormRepo) UpsertCustomer(ctx context.Context, c *models.Customer) error {
	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "shopify_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"first_name", "last_name", "email", "updated_at"}),
	}).Create(c).Error
	if err != nil {
		return err
	}
	return r.DB.WithContext(ctx).Where("shopify_id = ?", c.ShopifyID).First(c).Error
}

func (r *GormRepo) FindCustomerByShopifyID(ctx context.Context, shopifyID string) (*models.Customer, error) {
	var c models.Customer
	if err := r.DB.WithContext(ctx).Where("shopify_id = ?", shopifyID).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

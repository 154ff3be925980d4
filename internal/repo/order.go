package repo

import (
	"context"

	"github.com/Skotchmaster/community_gallery/internal/models"
)

func (r *GormRepo) FindOrderByShopifyID(ctx context.Context, shopifyID string) (*models.Order, error) {
	var o models.Order
	if err := r.DB.WithContext(ctx).Preload("Customer").Where("shopify_id = ?", shopifyID).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *GormRepo) CreateOrder(ctx context.Context, o *models.Order) error {
	return r.DB.WithContext(ctx).Omit("Customer", "Items").Create(o).Error
}

func (r *GormRepo) CreatePurchasedItems(ctx context.Context, items []models.PurchasedItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).CreateInBatches(items, 100).Error
}

func (r *GormRepo) OrderItems(ctx context.Context, orderID uint) ([]models.PurchasedItem, error) {
	var items []models.PurchasedItem
	if err := r.DB.WithContext(ctx).Where("order_id = ?", orderID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/community_gallery/internal/models"
)

// ToggleLike removes the (customer, media) like if present, otherwise adds it.
// It reports the resulting state and the media's like count.
func (r *GormRepo) ToggleLike(ctx context.Context, customerID, mediaID uint) (bool, int64, error) {
	var liked bool
	var count int64

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Like
		err := tx.Where("customer_id = ? AND media_id = ?", customerID, mediaID).First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			liked = false
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&models.Like{CustomerID: customerID, MediaID: mediaID}).Error; err != nil {
				return err
			}
			liked = true
		default:
			return err
		}
		return tx.Model(&models.Like{}).Where("media_id = ?", mediaID).Count(&count).Error
	})
	if err != nil {
		return false, 0, err
	}
	return liked, count, nil
}

func (r *GormRepo) LikeCounts(ctx context.Context, mediaIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(mediaIDs))
	if len(mediaIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		MediaID uint
		Count   int64
	}
	err := r.DB.WithContext(ctx).Model(&models.Like{}).
		Select("media_id, COUNT(*) AS count").
		Where("media_id IN ?", mediaIDs).
		Group("media_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.MediaID] = row.Count
	}
	return counts, nil
}

func (r *GormRepo) LikedBy(ctx context.Context, customerID uint, mediaIDs []uint) (map[uint]bool, error) {
	liked := make(map[uint]bool)
	if len(mediaIDs) == 0 {
		return liked, nil
	}
	var ids []uint
	err := r.DB.WithContext(ctx).Model(&models.Like{}).
		Where("customer_id = ? AND media_id IN ?", customerID, mediaIDs).
		Pluck("media_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}

package utils

import (
	"os"
	"time"

	"github.com/hvostov/inkline/config"
	"github.com/hvostov/inkline/models"
)

// StartImageCleaner launches a background goroutine that periodically removes
// uploaded images older than minAge that were never attached to any post.
// Best-effort: failures are logged and retried on the next tick.
func StartImageCleaner(interval, minAge time.Duration) {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	if minAge <= 0 {
		minAge = time.Hour
	}
	go func() {
		for {
			// Sleep first to avoid racing migrations at startup.
			time.Sleep(interval)
			db := config.DB()
			if db == nil {
				continue
			}
			var orphans []models.UploadedImage
			err := db.
				Where("created_at <= ?", time.Now().Add(-minAge)).
				Where("url NOT IN (?)", db.Model(&models.Post{}).Select("image_url").Where("image_url <> ''")).
				Limit(100).
				Find(&orphans).Error
			if err != nil {
				if Sugar != nil {
					Sugar.Warnf("image cleaner query failed: %v", err)
				}
				continue
			}
			for _, img := range orphans {
				if img.FilePath != "" {
					_ = os.Remove(img.FilePath)
				}
				// Remove the row regardless of file deletion outcome.
				if err := db.Delete(&models.UploadedImage{}, img.ID).Error; err != nil && Sugar != nil {
					Sugar.Warnf("image cleaner delete row failed: %v", err)
				}
			}
		}
	}()
}

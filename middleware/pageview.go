package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hvostov/inkline/models"
)

// PageViewRecorder records page views per day and path for read endpoints.
func PageViewRecorder(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Only count successful GETs on content endpoints.
		if c.Request.Method != "GET" {
			return
		}
		status := c.Writer.Status()
		if status < 200 || status >= 400 {
			return
		}

		path := c.Request.URL.Path
		if path == "/health" || strings.Contains(path, "/stats") || strings.HasPrefix(path, "/media/") {
			return
		}

		// Local midnight aligns with the DATE column.
		now := time.Now().In(time.Local)
		localMidnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

		// Atomic upsert avoids duplicate key errors under concurrency.
		_ = db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}, {Name: "path"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"count": gorm.Expr("count + 1"), "updated_at": time.Now()}),
		}).Create(&models.PageView{Date: localMidnight, Path: path, Count: 1}).Error
	}
}

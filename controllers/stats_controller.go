package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hvostov/inkline/models"
	"github.com/hvostov/inkline/utils"
)

// StatsController exposes simple aggregate counters.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// GetStats returns site-wide totals plus today's page views.
func (s *StatsController) GetStats(ctx *gin.Context) {
	var users, posts, comments, groups int64
	if err := s.db.Model(&models.User{}).Count(&users).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to load stats")
		return
	}
	if err := s.db.Model(&models.Post{}).Count(&posts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to load stats")
		return
	}
	if err := s.db.Model(&models.Comment{}).Count(&comments).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to load stats")
		return
	}
	if err := s.db.Model(&models.Group{}).Count(&groups).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to load stats")
		return
	}

	now := time.Now().In(time.Local)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var viewsToday int64
	if err := s.db.Model(&models.PageView{}).
		Where("date = ?", today).
		Select("COALESCE(SUM(count), 0)").
		Scan(&viewsToday).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50071, "failed to load page views")
		return
	}

	utils.Success(ctx, gin.H{
		"users":       users,
		"posts":       posts,
		"comments":    comments,
		"groups":      groups,
		"views_today": viewsToday,
	})
}

// GetPostStats returns per-post counters: lifetime page views of the detail
// endpoint and the comment count.
func (s *StatsController) GetPostStats(ctx *gin.Context) {
	postID := ctx.Param("id")
	var post models.Post
	if err := s.db.First(&post, postID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40401, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50072, "failed to load post")
		return
	}

	path := fmt.Sprintf("/api/v1/posts/%d", post.ID)
	var views int64
	if err := s.db.Model(&models.PageView{}).
		Where("path = ?", path).
		Select("COALESCE(SUM(count), 0)").
		Scan(&views).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50073, "failed to load page views")
		return
	}

	var comments int64
	if err := s.db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&comments).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50074, "failed to count comments")
		return
	}

	utils.Success(ctx, gin.H{
		"post_id":  post.ID,
		"views":    views,
		"comments": comments,
	})
}

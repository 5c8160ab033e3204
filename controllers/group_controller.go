package controllers

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hvostov/inkline/models"
	"github.com/hvostov/inkline/utils"
)

// GroupController manages group administration. Reads live on FeedController.
type GroupController struct {
	db *gorm.DB
}

// NewGroupController creates a new GroupController instance.
func NewGroupController(db *gorm.DB) *GroupController {
	return &GroupController{db: db}
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// CreateGroup adds a new group. Only configured admin usernames may call it.
func (g *GroupController) CreateGroup(ctx *gin.Context) {
	if !isAdmin(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40310, "only admins can create groups")
		return
	}

	var req struct {
		Title       string `json:"title" binding:"required"`
		Slug        string `json:"slug" binding:"required"`
		Description string `json:"description"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "title and slug are required")
		return
	}

	req.Title = utils.Sanitize(strings.TrimSpace(req.Title))
	req.Slug = strings.ToLower(strings.TrimSpace(req.Slug))
	if req.Title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40041, "title cannot be empty")
		return
	}
	if !slugPattern.MatchString(req.Slug) {
		utils.Error(ctx, http.StatusBadRequest, 40042, "slug must be lowercase letters, digits, and hyphens")
		return
	}

	var count int64
	if err := g.db.Model(&models.Group{}).Where("slug = ?", req.Slug).Count(&count).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to check slug")
		return
	}
	if count > 0 {
		utils.Error(ctx, http.StatusConflict, 40920, "slug already in use")
		return
	}

	group := models.Group{
		Title:       req.Title,
		Slug:        req.Slug,
		Description: utils.Sanitize(strings.TrimSpace(req.Description)),
	}
	if err := g.db.Create(&group).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to create group")
		return
	}

	utils.Success(ctx, gin.H{"group": group})
}

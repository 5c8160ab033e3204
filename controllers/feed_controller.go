package controllers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hvostov/inkline/config"
	"github.com/hvostov/inkline/models"
	"github.com/hvostov/inkline/utils"
)

// FeedController resolves the visibility model: which posts appear on which
// pages for a given viewer. Every feed lists posts newest first and goes
// through the shared paginator.
type FeedController struct {
	db *gorm.DB
}

// NewFeedController creates a new FeedController instance.
func NewFeedController(db *gorm.DB) *FeedController {
	return &FeedController{db: db}
}

// ListGlobal returns the global feed: all posts, no viewer filtering.
//
// This is the only cached view. The serialized response bytes are stored for
// a fixed window and served as-is to everyone until expiry; mutations never
// invalidate the cache, so a freshly edited post may take up to the TTL to
// show up here. Group, profile, follow, and detail views are always fresh.
func (f *FeedController) ListGlobal(ctx *gin.Context) {
	cfg := config.Get()
	pageReq := parsePage(ctx.Query("page"))
	key := utils.FeedCacheKey(pageReq, cfg.PageSize)

	if b, ok := utils.CacheGetBytes(key); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var total int64
	if err := f.db.Model(&models.Post{}).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to count posts")
		return
	}
	page := utils.Paginate(total, pageReq, cfg.PageSize)

	var posts []models.Post
	if err := f.db.Preload("User").Preload("Group").
		Order("created_at DESC").
		Offset(page.Offset).Limit(page.Size).
		Find(&posts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to list posts")
		return
	}

	// Marshal once so the cached bytes and the served bytes are identical.
	body, err := json.Marshal(utils.JSONResponse{
		Code:    0,
		Message: "success",
		Data: gin.H{
			"items":      posts,
			"pagination": page.Meta(),
		},
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to encode feed")
		return
	}
	utils.CacheSetBytes(key, body, time.Duration(cfg.FeedCacheTTLSeconds)*time.Second)
	ctx.Data(http.StatusOK, "application/json", body)
}

// ListGroups returns all groups.
func (f *FeedController) ListGroups(ctx *gin.Context) {
	var groups []models.Group
	if err := f.db.Order("title ASC").Find(&groups).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to list groups")
		return
	}
	utils.Success(ctx, gin.H{"items": groups})
}

// GroupFeed returns the posts published into the group addressed by slug.
func (f *FeedController) GroupFeed(ctx *gin.Context) {
	slug := strings.TrimSpace(ctx.Param("slug"))

	var group models.Group
	if err := f.db.Where("slug = ?", slug).First(&group).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40405, "group not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to load group")
		return
	}

	q := f.db.Model(&models.Post{}).Where("group_id = ?", group.ID)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to count group posts")
		return
	}
	page := utils.Paginate(total, parsePage(ctx.Query("page")), config.Get().PageSize)

	var posts []models.Post
	if err := f.db.Where("group_id = ?", group.ID).
		Preload("User").Preload("Group").
		Order("created_at DESC").
		Offset(page.Offset).Limit(page.Size).
		Find(&posts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50033, "failed to list group posts")
		return
	}

	utils.Success(ctx, gin.H{
		"group":      group,
		"items":      posts,
		"pagination": page.Meta(),
	})
}

// Profile returns the author's posts plus a following flag: true iff the
// viewer has a follow edge to the author. Anonymous viewers and authors
// looking at their own profile get false.
func (f *FeedController) Profile(ctx *gin.Context) {
	username := strings.TrimSpace(ctx.Param("username"))

	var author models.User
	if err := f.db.Where("username = ?", username).First(&author).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40411, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50034, "failed to load user")
		return
	}

	var total int64
	if err := f.db.Model(&models.Post{}).Where("user_id = ?", author.ID).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50035, "failed to count user posts")
		return
	}
	page := utils.Paginate(total, parsePage(ctx.Query("page")), config.Get().PageSize)

	var posts []models.Post
	if err := f.db.Where("user_id = ?", author.ID).
		Preload("User").Preload("Group").
		Order("created_at DESC").
		Offset(page.Offset).Limit(page.Size).
		Find(&posts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50036, "failed to list user posts")
		return
	}

	following := false
	if viewerID, ok := getUserID(ctx); ok && viewerID != author.ID {
		if yes, err := models.IsFollowing(f.db, viewerID, author.ID); err == nil {
			following = yes
		}
	}

	utils.Success(ctx, gin.H{
		"author":     sanitizeUserResponse(&author),
		"following":  following,
		"items":      posts,
		"pagination": page.Meta(),
	})
}

// FollowFeed returns the personalized feed: posts whose author is followed
// by the viewer. The route is auth-protected, so an anonymous request is
// rejected upstream instead of silently producing an empty page.
func (f *FeedController) FollowFeed(ctx *gin.Context) {
	viewerID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	join := "JOIN follows ON follows.author_id = posts.user_id AND follows.user_id = ?"

	var total int64
	if err := f.db.Model(&models.Post{}).Joins(join, viewerID).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50037, "failed to count feed posts")
		return
	}
	page := utils.Paginate(total, parsePage(ctx.Query("page")), config.Get().PageSize)

	var posts []models.Post
	if err := f.db.Joins(join, viewerID).
		Preload("User").Preload("Group").
		Order("posts.created_at DESC").
		Offset(page.Offset).Limit(page.Size).
		Find(&posts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50038, "failed to list feed posts")
		return
	}

	utils.Success(ctx, gin.H{
		"items":      posts,
		"pagination": page.Meta(),
	})
}

// PostDetail returns a single post with its comments, newest first.
func (f *FeedController) PostDetail(ctx *gin.Context) {
	postID := ctx.Param("id")

	var post models.Post
	if err := f.db.Preload("User").Preload("Group").First(&post, postID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40401, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50039, "failed to load post")
		return
	}

	var comments []models.Comment
	if err := f.db.Where("post_id = ?", post.ID).
		Preload("User").
		Order("created_at DESC").
		Find(&comments).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to load comments")
		return
	}

	utils.Success(ctx, gin.H{
		"post":     post,
		"comments": comments,
	})
}

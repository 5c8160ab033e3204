package controllers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hvostov/inkline/config"
	"github.com/hvostov/inkline/middleware"
	"github.com/hvostov/inkline/models"
	"github.com/hvostov/inkline/utils"
)

// PostController manages mutations: posts, comments, and image uploads.
type PostController struct {
	db *gorm.DB
}

// NewPostController creates a new PostController instance.
func NewPostController(db *gorm.DB) *PostController {
	return &PostController{db: db}
}

type postRequest struct {
	Text     string `json:"text" binding:"required"`
	GroupID  *uint  `json:"group_id"`
	ImageURL string `json:"image_url"`
}

// validatePost sanitizes and checks a post payload. It returns the cleaned
// text or a (code, message) pair describing the first failure.
func (p *PostController) validatePost(req *postRequest) (string, int, string) {
	text := utils.Sanitize(strings.TrimSpace(req.Text))
	if text == "" {
		return "", 40021, "text cannot be empty"
	}
	if req.GroupID != nil {
		var group models.Group
		if err := p.db.First(&group, *req.GroupID).Error; err != nil {
			return "", 40022, "unknown group"
		}
	}
	return text, 0, ""
}

// CreatePost allows authenticated users to create new posts. The author is
// always the acting user, never taken from the payload.
func (p *PostController) CreatePost(ctx *gin.Context) {
	var req postRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.ErrorDetails(ctx, http.StatusBadRequest, 40020, "invalid request payload",
			gin.H{"errors": gin.H{"text": "text is required"}})
		return
	}

	text, code, msg := p.validatePost(&req)
	if code != 0 {
		utils.ErrorDetails(ctx, http.StatusBadRequest, code, msg,
			gin.H{"errors": gin.H{"text": msg}})
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	post := models.Post{
		UserID:   userID,
		GroupID:  req.GroupID,
		Text:     text,
		ImageURL: strings.TrimSpace(req.ImageURL),
	}

	if err := p.db.Create(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to create post")
		return
	}

	// The global feed cache is deliberately not invalidated here; it refreshes
	// on expiry.

	if err := p.db.Preload("User").Preload("Group").First(&post, post.ID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to load post")
		return
	}
	utils.Success(ctx, gin.H{"post": post})
}

// UpdatePost allows the author to update their post. Any other actor gets a
// typed 403; the forbidden decision lives here, what to render is the
// client's business.
func (p *PostController) UpdatePost(ctx *gin.Context) {
	var req postRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.ErrorDetails(ctx, http.StatusBadRequest, 40024, "invalid request payload",
			gin.H{"errors": gin.H{"text": "text is required"}})
		return
	}

	text, code, msg := p.validatePost(&req)
	if code != 0 {
		utils.ErrorDetails(ctx, http.StatusBadRequest, code, msg,
			gin.H{"errors": gin.H{"text": msg}})
		return
	}

	postID := ctx.Param("id")
	var post models.Post
	if err := p.db.First(&post, postID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40403, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to load post")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "unauthorized")
		return
	}

	if post.UserID != userID {
		utils.Error(ctx, http.StatusForbidden, 40301, "you can only update your own posts")
		return
	}

	post.Text = text
	post.GroupID = req.GroupID
	post.ImageURL = strings.TrimSpace(req.ImageURL)
	if err := p.db.Save(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to update post")
		return
	}

	if err := p.db.Preload("User").Preload("Group").First(&post, post.ID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to load post")
		return
	}
	utils.Success(ctx, gin.H{"post": post})
}

// CreateComment allows authenticated users to comment on posts. Validation
// failures come back with field-level errors so the client can re-render the
// comment form on the detail page.
func (p *PostController) CreateComment(ctx *gin.Context) {
	var req struct {
		Text string `json:"text" binding:"required"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.ErrorDetails(ctx, http.StatusBadRequest, 40022, "invalid request payload",
			gin.H{"errors": gin.H{"text": "text is required"}})
		return
	}

	text := utils.Sanitize(strings.TrimSpace(req.Text))
	if text == "" {
		utils.ErrorDetails(ctx, http.StatusBadRequest, 40023, "text cannot be empty",
			gin.H{"errors": gin.H{"text": "text cannot be empty"}})
		return
	}

	postID := ctx.Param("id")
	var post models.Post
	if err := p.db.First(&post, postID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40402, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50027, "failed to load post")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	comment := models.Comment{
		PostID: post.ID,
		UserID: userID,
		Text:   text,
	}

	if err := p.db.Create(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50028, "failed to create comment")
		return
	}

	if err := p.db.Preload("User").First(&comment, comment.ID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50029, "failed to load comment")
		return
	}

	utils.Success(ctx, gin.H{"comment": comment})
}

// UploadImage stores a post image under the media root and returns its URL.
// Images that never get attached to a post are swept by the background
// cleaner.
func (p *PostController) UploadImage(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40113, "unauthorized")
		return
	}

	file, header, err := ctx.Request.FormFile("file")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "no file uploaded")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
	default:
		utils.Error(ctx, http.StatusBadRequest, 40031, "unsupported image type")
		return
	}

	const maxSize = 10 * 1024 * 1024
	if header.Size > maxSize {
		utils.Error(ctx, http.StatusBadRequest, 40032, "image exceeds 10MB")
		return
	}

	now := time.Now()
	baseDir := filepath.Join(config.Get().MediaRoot, now.Format("2006"), now.Format("01"))
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to create media directory")
		return
	}

	name := uuid.NewString() + ext
	dstPath := filepath.Join(baseDir, name)
	out, err := os.Create(dstPath)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to save image")
		return
	}
	defer out.Close()

	lr := &io.LimitedReader{R: file, N: maxSize + 1}
	written, err := io.Copy(out, lr)
	if err != nil || written > maxSize {
		_ = os.Remove(dstPath)
		utils.Error(ctx, http.StatusBadRequest, 40032, "image exceeds 10MB")
		return
	}

	url := fmt.Sprintf("/media/%s/%s/%s", now.Format("2006"), now.Format("01"), name)
	absPath, _ := filepath.Abs(dstPath)
	if err := p.db.Create(&models.UploadedImage{UserID: userID, FilePath: absPath, URL: url}).Error; err != nil {
		if utils.Sugar != nil {
			utils.Sugar.Warnf("failed to record uploaded image %s: %v", url, err)
		}
	}

	utils.Success(ctx, gin.H{"url": url})
}

func parsePage(pageStr string) int {
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		return p
	}
	return 1
}

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	case int64:
		return uint(v), true
	case float64:
		return uint(v), true
	default:
		return 0, false
	}
}

func isAdmin(ctx *gin.Context) bool {
	unameVal, exists := ctx.Get(middleware.ContextUsernameKey)
	if !exists {
		return false
	}
	uname, _ := unameVal.(string)
	if uname == "" {
		return false
	}
	for _, u := range config.Get().AdminUsernames {
		if strings.EqualFold(strings.TrimSpace(u), uname) {
			return true
		}
	}
	return false
}

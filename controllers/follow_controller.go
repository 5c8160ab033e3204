package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hvostov/inkline/models"
	"github.com/hvostov/inkline/utils"
)

// FollowController manages follow relationships between users.
type FollowController struct {
	db *gorm.DB
}

// NewFollowController creates a new FollowController instance.
func NewFollowController(db *gorm.DB) *FollowController {
	return &FollowController{db: db}
}

// Follow subscribes the acting user to an author's posts. Repeated calls and
// self-follows are no-ops; the unique index and the self-follow check on the
// follows table back this up at the storage level.
func (f *FollowController) Follow(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var author models.User
	if err := f.db.Where("username = ?", ctx.Param("username")).First(&author).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40411, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to load user")
		return
	}

	if author.ID == userID {
		utils.Success(ctx, gin.H{"following": false})
		return
	}

	follow := models.Follow{UserID: userID, AuthorID: author.ID}
	if err := f.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&follow).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to follow user")
		return
	}

	utils.Success(ctx, gin.H{"following": true})
}

// Unfollow removes the subscription. Unfollowing someone you never followed
// is not an error.
func (f *FollowController) Unfollow(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var author models.User
	if err := f.db.Where("username = ?", ctx.Param("username")).First(&author).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40411, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to load user")
		return
	}

	if err := f.db.Where("user_id = ? AND author_id = ?", userID, author.ID).
		Delete(&models.Follow{}).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to unfollow user")
		return
	}

	utils.Success(ctx, gin.H{"following": false})
}

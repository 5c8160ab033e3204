package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"gorm.io/gorm"

	"github.com/hvostov/inkline/config"
	"github.com/hvostov/inkline/models"
	"github.com/hvostov/inkline/utils"
)

// AuthController manages registration, login, sessions, and profile edits.
type AuthController struct {
	db *gorm.DB
}

// NewAuthController creates a new AuthController instance.
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db}
}

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)

func validUsername(username string) (bool, string) {
	if !usernamePattern.MatchString(username) {
		return false, "username must be 3-30 characters of letters, digits, or underscores"
	}
	return true, ""
}

func validPassword(password string) (bool, string) {
	if len(password) < 8 || len(password) > 72 {
		return false, "password must be 8-72 characters"
	}
	return true, ""
}

// Register creates a local account and returns a session token right away.
func (a *AuthController) Register(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40010, "username and password are required")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if ok, msg := validUsername(req.Username); !ok {
		utils.Error(ctx, http.StatusBadRequest, 40011, msg)
		return
	}
	if ok, msg := validPassword(req.Password); !ok {
		utils.Error(ctx, http.StatusBadRequest, 40012, msg)
		return
	}

	var count int64
	if err := a.db.Model(&models.User{}).Where("username = ?", req.Username).Count(&count).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to check username")
		return
	}
	if count > 0 {
		utils.Error(ctx, http.StatusConflict, 40910, "username already taken")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to hash password")
		return
	}

	user := models.User{
		Username:     req.Username,
		PasswordHash: hash,
		DisplayName:  req.Username,
	}
	if err := a.db.Create(&user).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to create user")
		return
	}

	token, err := utils.IssueSessionToken(user.ID, user.Username)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50013, "failed to issue token")
		return
	}

	utils.Success(ctx, gin.H{"token": token, "user": sanitizeUserResponse(&user)})
}

// Login verifies credentials and issues a session token.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40013, "username and password are required")
		return
	}

	var user models.User
	if err := a.db.Where("username = ?", strings.TrimSpace(req.Username)).First(&user).Error; err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40120, "invalid username or password")
		return
	}

	if user.PasswordHash == "" || !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40120, "invalid username or password")
		return
	}

	token, err := utils.IssueSessionToken(user.ID, user.Username)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50014, "failed to issue token")
		return
	}

	utils.Success(ctx, gin.H{"token": token, "user": sanitizeUserResponse(&user)})
}

// Logout blacklists the presented token for the rest of its lifetime.
func (a *AuthController) Logout(ctx *gin.Context) {
	header := ctx.GetHeader("Authorization")
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token != "" {
		expiresAt := time.Now().Add(utils.SessionTTL())
		if claims, err := utils.ParseSessionToken(token); err == nil && claims.ExpiresAt != nil {
			expiresAt = claims.ExpiresAt.Time
		}
		utils.BlacklistToken(token, expiresAt)
	}
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Me returns the acting user's own profile.
func (a *AuthController) Me(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40411, "user not found")
		return
	}

	utils.Success(ctx, gin.H{"user": sanitizeUserResponse(&user)})
}

// UpdateProfile edits the acting user's display name, bio, and avatar.
func (a *AuthController) UpdateProfile(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		DisplayName *string `json:"display_name"`
		Bio         *string `json:"bio"`
		AvatarURL   *string `json:"avatar_url"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40015, "invalid request payload")
		return
	}

	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40411, "user not found")
		return
	}

	if req.DisplayName != nil {
		name := utils.Sanitize(strings.TrimSpace(*req.DisplayName))
		if name == "" {
			utils.Error(ctx, http.StatusBadRequest, 40016, "display name cannot be empty")
			return
		}
		user.DisplayName = name
	}
	if req.Bio != nil {
		user.Bio = utils.Sanitize(strings.TrimSpace(*req.Bio))
	}
	if req.AvatarURL != nil {
		user.AvatarURL = strings.TrimSpace(*req.AvatarURL)
	}

	if err := a.db.Save(&user).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50015, "failed to update profile")
		return
	}

	utils.Success(ctx, gin.H{"user": sanitizeUserResponse(&user)})
}

func githubOAuthConfig() *oauth2.Config {
	cfg := config.Get()
	return &oauth2.Config{
		ClientID:     cfg.GitHubClientID,
		ClientSecret: cfg.GitHubClientSecret,
		RedirectURL:  strings.TrimRight(cfg.OAuthRedirectBase, "/") + "/api/v1/auth/oauth/github/callback",
		Scopes:       []string{"read:user", "user:email"},
		Endpoint:     github.Endpoint,
	}
}

// OAuthRedirect sends the client to GitHub's consent page with a one-time
// state token.
func (a *AuthController) OAuthRedirect(ctx *gin.Context) {
	cfg := config.Get()
	if cfg.GitHubClientID == "" {
		utils.Error(ctx, http.StatusNotImplemented, 50110, "oauth login is not configured")
		return
	}

	state := uuid.NewString()
	utils.SaveState(state, 10*time.Minute)

	ctx.Redirect(http.StatusFound, githubOAuthConfig().AuthCodeURL(state))
}

// OAuthCallback exchanges the code, finds or creates the linked user, and
// issues a session token.
func (a *AuthController) OAuthCallback(ctx *gin.Context) {
	state := ctx.Query("state")
	if state == "" || !utils.ConsumeState(state) {
		utils.Error(ctx, http.StatusBadRequest, 40017, "invalid oauth state")
		return
	}

	code := ctx.Query("code")
	if code == "" {
		utils.Error(ctx, http.StatusBadRequest, 40018, "missing oauth code")
		return
	}

	oc := githubOAuthConfig()
	reqCtx, cancel := context.WithTimeout(ctx.Request.Context(), 10*time.Second)
	defer cancel()

	token, err := oc.Exchange(reqCtx, code)
	if err != nil {
		utils.Error(ctx, http.StatusBadGateway, 50210, "failed to exchange oauth code")
		return
	}

	ghUser, err := fetchGitHubUser(reqCtx, oc, token)
	if err != nil {
		utils.Error(ctx, http.StatusBadGateway, 50211, "failed to fetch github profile")
		return
	}

	user, err := a.findOrCreateOAuthUser(ghUser)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50017, "failed to create user")
		return
	}

	sessionToken, err := utils.IssueSessionToken(user.ID, user.Username)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50018, "failed to issue token")
		return
	}

	utils.Success(ctx, gin.H{"token": sessionToken, "user": sanitizeUserResponse(user)})
}

type githubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

func fetchGitHubUser(ctx context.Context, oc *oauth2.Config, token *oauth2.Token) (*githubUser, error) {
	client := oc.Client(ctx, token)
	resp, err := client.Get("https://api.github.com/user")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github user endpoint returned %d", resp.StatusCode)
	}

	var u githubUser
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, err
	}
	if u.Login == "" {
		return nil, fmt.Errorf("github user response missing login")
	}
	return &u, nil
}

func (a *AuthController) findOrCreateOAuthUser(gh *githubUser) (*models.User, error) {
	providerID := fmt.Sprintf("%d", gh.ID)

	var user models.User
	err := a.db.Where("provider = ? AND provider_id = ?", "github", providerID).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	username, err := a.ensureUniqueUsername(gh.Login)
	if err != nil {
		return nil, err
	}

	display := gh.Name
	if display == "" {
		display = gh.Login
	}

	user = models.User{
		Username:    username,
		DisplayName: display,
		AvatarURL:   gh.AvatarURL,
		Provider:    "github",
		ProviderID:  providerID,
	}
	if err := a.db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ensureUniqueUsername appends a short suffix when the provider login is
// already taken locally.
func (a *AuthController) ensureUniqueUsername(base string) (string, error) {
	base = strings.ToLower(regexp.MustCompile(`[^a-zA-Z0-9_]`).ReplaceAllString(base, "_"))
	if len(base) < 3 {
		base = base + "_gh"
	}
	if len(base) > 24 {
		base = base[:24]
	}

	candidate := base
	for i := 0; i < 5; i++ {
		var count int64
		if err := a.db.Model(&models.User{}).Where("username = ?", candidate).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s_%s", base, uuid.NewString()[:6])
	}
	return "", fmt.Errorf("could not allocate a unique username for %q", base)
}

// sanitizeUserResponse strips private fields from a user for API responses.
func sanitizeUserResponse(user *models.User) gin.H {
	return gin.H{
		"id":           user.ID,
		"username":     user.Username,
		"display_name": user.DisplayName,
		"bio":          user.Bio,
		"avatar_url":   user.AvatarURL,
		"created_at":   user.CreatedAt,
	}
}

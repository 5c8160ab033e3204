package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hvostov/inkline/utils"
)

const (
	// ContextUserIDKey is the key used to store authenticated user ID in Gin context.
	ContextUserIDKey = "user_id"
	// ContextUsernameKey stores the username inside Gin context.
	ContextUsernameKey = "username"
)

// AuthRequired ensures the request is authenticated via JWT. Protected views
// must reject anonymous requests outright rather than degrade to empty
// results.
func AuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString, errCode, errMsg := bearerToken(ctx)
		if tokenString == "" {
			utils.Error(ctx, http.StatusUnauthorized, errCode, errMsg)
			ctx.Abort()
			return
		}

		if utils.IsTokenBlacklisted(tokenString) {
			utils.Error(ctx, http.StatusUnauthorized, 40104, "token revoked")
			ctx.Abort()
			return
		}

		claims, err := utils.ParseSessionToken(tokenString)
		if err != nil {
			code, msg := 40105, "invalid token"
			if err == utils.ErrSessionExpired {
				code, msg = 40106, "session expired"
			}
			utils.Error(ctx, http.StatusUnauthorized, code, msg)
			ctx.Abort()
			return
		}

		ctx.Set(ContextUserIDKey, claims.UserID)
		ctx.Set(ContextUsernameKey, claims.Username)
		ctx.Next()
	}
}

// OptionalAuth resolves the viewer identity when a valid bearer token is
// present and continues anonymously otherwise. Used by public views whose
// payload depends on who is looking, like the profile's following flag.
func OptionalAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString, _, _ := bearerToken(ctx)
		if tokenString == "" || utils.IsTokenBlacklisted(tokenString) {
			ctx.Next()
			return
		}
		if claims, err := utils.ParseSessionToken(tokenString); err == nil {
			ctx.Set(ContextUserIDKey, claims.UserID)
			ctx.Set(ContextUsernameKey, claims.Username)
		}
		ctx.Next()
	}
}

func bearerToken(ctx *gin.Context) (token string, errCode int, errMsg string) {
	authHeader := ctx.GetHeader("Authorization")
	if authHeader == "" {
		return "", 40101, "authorization header missing"
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", 40102, "invalid authorization header format"
	}
	token = strings.TrimSpace(parts[1])
	if token == "" {
		return "", 40103, "empty bearer token"
	}
	return token, 0, ""
}

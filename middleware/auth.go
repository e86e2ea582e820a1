package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	userRepo "velora/database/repository/user"
	"velora/models"
	"velora/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// AuthMiddleware validates the bearer token against the stored token hash.
// A Redis auth cache fronts the DB lookup; a cache outage degrades to DB
// lookups instead of failing requests. On success the user ID and role are
// set on the context.
func AuthMiddleware(repo userRepo.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			}
		}()

		tokenString := bearerToken(c)
		if tokenString == "" {
			abortUnauthorized(c)
			return
		}

		userID, err := utils.ExtractIDFromToken(tokenString)
		if err != nil || userID == "" {
			abortUnauthorized(c)
			return
		}
		computedHash := utils.HashToken(tokenString)

		ctx := context.Background()
		cacheKey := utils.AuthCachePrefix + userID
		authCache := utils.AuthCacheClient

		if authCache != nil {
			cached, err := authCache.HGetAll(ctx, cacheKey).Result()
			if err == nil && cached["hash"] != "" && cached["hash"] == computedHash {
				_ = authCache.Expire(ctx, cacheKey, time.Hour).Err()
				c.Set("userID", userID)
				c.Set("role", models.Role(cached["role"]))
				c.Next()
				return
			}
			if err != nil && err != redis.Nil {
				utils.GetLogger().Warn("auth cache lookup failed, falling back to DB", zap.Error(err))
			}
			// A mismatched hash is not a rejection: the token may belong to
			// another of the user's devices. Revalidate against the DB.
		}

		proj := bson.M{"id": 1, "role": 1, "banned": 1, "tokenHash": 1, "devices": 1}
		usr, err := repo.GetByIDWithProjection(userID, proj)
		if err != nil || usr == nil {
			abortUnauthorized(c)
			return
		}
		if usr.Banned {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Account suspended"})
			return
		}
		if !tokenHashMatches(usr, computedHash) {
			abortUnauthorized(c)
			return
		}

		if authCache != nil {
			_ = authCache.HSet(ctx, cacheKey, "hash", computedHash, "role", string(usr.Role)).Err()
			_ = authCache.Expire(ctx, cacheKey, time.Hour).Err()
		}

		c.Set("userID", userID)
		c.Set("role", usr.Role)
		c.Next()
	}
}

// RequireRole gates a route group to one account role. Must run after
// AuthMiddleware.
func RequireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, exists := c.Get("role")
		if !exists || v.(models.Role) != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			return
		}
		c.Next()
	}
}

func tokenHashMatches(usr *models.User, hash string) bool {
	if usr.TokenHash != "" && usr.TokenHash == hash {
		return true
	}
	for _, d := range usr.Devices {
		if d.TokenHash != "" && d.TokenHash == hash {
			return true
		}
	}
	return false
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		// SSE via EventSource cannot set headers; accept a query token.
		return c.Query("token")
	}
	return strings.TrimPrefix(authHeader, "Bearer ")
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
}

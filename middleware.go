package main

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"photocap/models"
	"photocap/pkg/tokens"
)

const ctxUserIDKey = "userID"

// abortError stops the chain with the same {code, error} body shape the
// handlers emit through respondError.
func abortError(c *gin.Context, ae *AppError) {
	c.AbortWithStatusJSON(ae.Status, gin.H{"code": ae.Code, "error": ae.Message})
}

// authRequired validates the bearer access token and exposes the subject's
// user id to downstream handlers. Fail-closed: any problem with the header
// or token aborts with 401 and the chain never continues.
func authRequired(codec *tokens.Codec) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			abortError(c, &AppError{Code: "UNAUTHORIZED", Status: http.StatusUnauthorized,
				Message: "missing or invalid Authorization header"})
			return
		}
		claims, err := codec.VerifyAccess(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			abortError(c, &AppError{Code: "UNAUTHORIZED", Status: http.StatusUnauthorized,
				Message: "invalid token"})
			return
		}
		c.Set(ctxUserIDKey, claims.UserID)
		c.Next()
	}
}

// adminRequired elevates an authenticated request: the subject's user row
// must exist and carry isAdmin. Runs after authRequired.
func adminRequired(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			abortError(c, errUnauthorized)
			return
		}
		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			abortError(c, errUnauthorized)
			return
		}
		if !user.IsAdmin {
			abortError(c, &AppError{Code: "FORBIDDEN", Status: http.StatusForbidden,
				Message: "admin access required"})
			return
		}
		c.Next()
	}
}

// currentUserID reads the subject id set by authRequired.
func currentUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ctxUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// requestLogger emits one structured line per request.
func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client", c.ClientIP()),
		)
	}
}

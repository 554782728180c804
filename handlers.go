package main

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"photocap/models"
	"photocap/pkg/cache"
	"photocap/pkg/tokens"
)

// imagesCacheKey is the resource-list cache key for the image collection.
const imagesCacheKey = "images"

type server struct {
	db    *gorm.DB
	auth  *AuthService
	codec *tokens.Codec
	cache cache.Cache
	log   *zap.Logger
	cfg   *Config
}

func (s *server) setupRoutes(r *gin.Engine) {
	r.GET("/healthz", s.healthz)
	r.Static("/images", s.cfg.ImageDir)

	r.POST("/register", s.registerHandler)
	r.POST("/login", s.loginHandler)
	r.POST("/refreshToken", s.refreshHandler)
	r.POST("/revokeTokens", authRequired(s.codec), s.revokeTokensHandler)

	api := r.Group("/api")

	users := api.Group("/users")
	users.GET("", authRequired(s.codec), adminRequired(s.db), s.listUsersHandler)
	users.GET("/:id", authRequired(s.codec), s.getUserHandler)
	users.PUT("/:id", authRequired(s.codec), s.updateUserHandler)
	users.DELETE("/:id", authRequired(s.codec), s.deleteUserHandler)

	images := api.Group("/images")
	images.GET("", s.listImagesHandler)
	images.GET("/:id", s.getImageHandler)
	images.POST("", authRequired(s.codec), adminRequired(s.db), s.createImageHandler)
	images.PUT("/:id", authRequired(s.codec), adminRequired(s.db), s.updateImageHandler)
	images.DELETE("/:id", authRequired(s.codec), adminRequired(s.db), s.deleteImageHandler)

	captions := api.Group("/captions")
	captions.GET("", s.listCaptionsHandler)
	captions.GET("/:id", s.getCaptionHandler)
	captions.POST("", authRequired(s.codec), s.createCaptionHandler)
	captions.PUT("/:id", authRequired(s.codec), s.updateCaptionHandler)
	captions.DELETE("/:id", authRequired(s.codec), s.deleteCaptionHandler)
}

func (s *server) respondError(c *gin.Context, err error) {
	ae := asAppError(err)
	if ae.Status == http.StatusInternalServerError {
		s.log.Error("internal error", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	c.JSON(ae.Status, gin.H{"code": ae.Code, "error": ae.Message})
}

func (s *server) healthz(c *gin.Context) {
	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ---- auth endpoints ----

type credentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *server) registerHandler(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, badRequest("email and password are required"))
		return
	}
	pair, err := s.auth.Register(req.Email, req.Password)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pair)
}

func (s *server) loginHandler(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, badRequest("email and password are required"))
		return
	}
	pair, err := s.auth.Login(req.Email, req.Password)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

func (s *server) refreshHandler(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, badRequest("refreshToken is required"))
		return
	}
	pair, err := s.auth.Refresh(req.RefreshToken)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

// revokeTokensHandler is self-service mass logout: every refresh token of
// the authenticated user stops working.
func (s *server) revokeTokensHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		s.respondError(c, errUnauthorized)
		return
	}
	if err := s.auth.RevokeAllForUser(userID); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "tokens revoked"})
}

// ---- user endpoints ----

func (s *server) listUsersHandler(c *gin.Context) {
	var users []models.User
	if err := s.db.Find(&users).Error; err != nil {
		s.respondError(c, err)
		return
	}
	if len(users) < 1 {
		c.JSON(http.StatusNotFound, gin.H{"message": "No users found"})
		return
	}
	c.JSON(http.StatusOK, users)
}

// selfOrAdmin reports whether the authenticated subject may act on the user
// row with targetID.
func (s *server) selfOrAdmin(c *gin.Context, targetID uint) bool {
	userID, ok := currentUserID(c)
	if !ok {
		return false
	}
	if userID == targetID {
		return true
	}
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return false
	}
	return user.IsAdmin
}

func (s *server) getUserHandler(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if !s.selfOrAdmin(c, id) {
		s.respondError(c, errForbidden)
		return
	}
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		s.respondError(c, errNotFound)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *server) updateUserHandler(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if !s.selfOrAdmin(c, id) {
		s.respondError(c, errForbidden)
		return
	}
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		s.respondError(c, errNotFound)
		return
	}
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || (req.Email == "" && req.Password == "") {
		s.respondError(c, badRequest("nothing to update"))
		return
	}
	updated, err := s.auth.UpdateUser(&user, req.Email, req.Password)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *server) deleteUserHandler(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if !s.selfOrAdmin(c, id) {
		s.respondError(c, errForbidden)
		return
	}
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		s.respondError(c, errNotFound)
		return
	}
	// Deletion is blocked while the user still owns captions, so caption
	// rows never point at a missing author.
	var captions int64
	if err := s.db.Model(&models.Caption{}).Where("user_id = ?", user.ID).Count(&captions).Error; err != nil {
		s.respondError(c, err)
		return
	}
	if captions > 0 {
		s.respondError(c, errUserHasCaptions)
		return
	}
	if err := s.auth.RevokeAllForUser(user.ID); err != nil {
		s.respondError(c, err)
		return
	}
	if err := s.db.Delete(&user).Error; err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ---- image endpoints ----

func (s *server) listImagesHandler(c *gin.Context) {
	// Serve from cache when the list is cached, otherwise read through.
	if blob, err := s.cache.Get(c.Request.Context(), imagesCacheKey); err == nil {
		c.Data(http.StatusOK, "application/json; charset=utf-8", blob)
		return
	}
	var images []models.Image
	if err := s.db.Preload("Captions").Find(&images).Error; err != nil {
		s.respondError(c, err)
		return
	}
	if len(images) < 1 {
		c.JSON(http.StatusNotFound, gin.H{"message": "No images found"})
		return
	}
	if blob, err := json.Marshal(images); err == nil {
		if err := s.cache.Set(c.Request.Context(), imagesCacheKey, blob, 0); err != nil {
			s.log.Warn("cache set failed", zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, images)
}

func (s *server) getImageHandler(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	// Check the cached list first; fall back to the database.
	if blob, cacheErr := s.cache.Get(c.Request.Context(), imagesCacheKey); cacheErr == nil {
		var cached []models.Image
		if json.Unmarshal(blob, &cached) == nil {
			for i := range cached {
				if cached[i].ID == id {
					c.JSON(http.StatusOK, cached[i])
					return
				}
			}
		}
	}
	var image models.Image
	if err := s.db.Preload("Captions").First(&image, id).Error; err != nil {
		s.respondError(c, errNotFound)
		return
	}
	c.JSON(http.StatusOK, image)
}

type imageRequest struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

func (s *server) createImageHandler(c *gin.Context) {
	var req imageRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" {
		s.respondError(c, badRequest("image path is missing"))
		return
	}
	var existing models.Image
	if err := s.db.Where("url = ?", req.URL).First(&existing).Error; err == nil {
		s.respondError(c, badRequest("image URL already exists"))
		return
	}
	image := models.Image{Name: req.Name, URL: req.URL}
	if err := s.db.Create(&image).Error; err != nil {
		s.respondError(c, err)
		return
	}
	s.invalidateImages(c)
	c.JSON(http.StatusCreated, image)
}

func (s *server) updateImageHandler(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	var req imageRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" {
		s.respondError(c, badRequest("image path is missing"))
		return
	}
	// Reject only when the URL belongs to a different image.
	var existing models.Image
	if err := s.db.Where("url = ?", req.URL).First(&existing).Error; err == nil && existing.ID != id {
		s.respondError(c, badRequest("image URL already exists"))
		return
	}
	var image models.Image
	if err := s.db.First(&image, id).Error; err != nil {
		s.respondError(c, errNotFound)
		return
	}
	image.Name = req.Name
	image.URL = req.URL
	if err := s.db.Save(&image).Error; err != nil {
		s.respondError(c, err)
		return
	}
	s.invalidateImages(c)
	c.JSON(http.StatusCreated, image)
}

func (s *server) deleteImageHandler(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	var image models.Image
	if err := s.db.First(&image, id).Error; err != nil {
		s.respondError(c, errNotFound)
		return
	}
	if err := s.db.Where("image_id = ?", image.ID).Delete(&models.Caption{}).Error; err != nil {
		s.respondError(c, err)
		return
	}
	if err := s.db.Delete(&image).Error; err != nil {
		s.respondError(c, err)
		return
	}
	s.invalidateImages(c)
	c.Status(http.StatusNoContent)
}

func (s *server) invalidateImages(c *gin.Context) {
	if err := s.cache.Delete(c.Request.Context(), imagesCacheKey); err != nil {
		s.log.Warn("cache invalidation failed", zap.Error(err))
	}
}

// ---- caption endpoints ----

func (s *server) listCaptionsHandler(c *gin.Context) {
	var captions []models.Caption
	if err := s.db.Find(&captions).Error; err != nil {
		s.respondError(c, err)
		return
	}
	if len(captions) < 1 {
		c.JSON(http.StatusNotFound, gin.H{"message": "No captions found"})
		return
	}
	c.JSON(http.StatusOK, captions)
}

func (s *server) getCaptionHandler(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	var caption models.Caption
	if err := s.db.First(&caption, id).Error; err != nil {
		s.respondError(c, errNotFound)
		return
	}
	c.JSON(http.StatusOK, caption)
}

func (s *server) createCaptionHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		s.respondError(c, errUnauthorized)
		return
	}
	var req struct {
		Description string `json:"description"`
		ImageID     uint   `json:"imageId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Description == "" || req.ImageID == 0 {
		s.respondError(c, badRequest("description or image ID missing"))
		return
	}
	var image models.Image
	if err := s.db.First(&image, req.ImageID).Error; err != nil {
		s.respondError(c, errNotFound)
		return
	}
	// The author is the token subject; the body cannot caption as someone else.
	caption := models.Caption{Description: req.Description, ImageID: image.ID, UserID: userID}
	if err := s.db.Create(&caption).Error; err != nil {
		s.respondError(c, err)
		return
	}
	s.invalidateImages(c)
	c.JSON(http.StatusCreated, caption)
}

// captionOwnerOrAdmin loads the caption and enforces the ownership-OR-admin
// rule shared by update and delete.
func (s *server) captionOwnerOrAdmin(c *gin.Context, id uint) (*models.Caption, error) {
	var caption models.Caption
	if err := s.db.First(&caption, id).Error; err != nil {
		return nil, errNotFound
	}
	userID, ok := currentUserID(c)
	if !ok {
		return nil, errUnauthorized
	}
	if caption.UserID == userID {
		return &caption, nil
	}
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil || !user.IsAdmin {
		return nil, errForbidden
	}
	return &caption, nil
}

func (s *server) updateCaptionHandler(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	caption, err := s.captionOwnerOrAdmin(c, id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	var req struct {
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Description == "" {
		s.respondError(c, badRequest("description is missing"))
		return
	}
	caption.Description = req.Description
	if err := s.db.Save(caption).Error; err != nil {
		s.respondError(c, err)
		return
	}
	s.invalidateImages(c)
	c.JSON(http.StatusOK, caption)
}

func (s *server) deleteCaptionHandler(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	caption, err := s.captionOwnerOrAdmin(c, id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if err := s.db.Delete(caption).Error; err != nil {
		s.respondError(c, err)
		return
	}
	s.invalidateImages(c)
	c.Status(http.StatusNoContent)
}

func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, badRequest("invalid id")
	}
	return uint(id), nil
}

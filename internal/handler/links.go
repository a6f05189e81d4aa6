package handler

import (
	"errors"
	"net/http"

	"linkbio-platform/internal/model"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateLinkRequest 创建链接
type CreateLinkRequest struct {
	URL         string         `json:"url" binding:"required,url" example:"https://github.com/gin-gonic/gin"`
	Title       string         `json:"title" binding:"max=255"`
	Description string         `json:"description"`
	ImageURL    string         `json:"image_url" binding:"omitempty,url"`
	Category    string         `json:"category" binding:"max=100"`
	Type        model.LinkType `json:"type" binding:"omitempty,oneof=link social embed support"`
	IsSensitive bool           `json:"is_sensitive"`
	Password    string         `json:"password"`
}

// UpdateLinkRequest 修改链接，字段为空表示不修改
type UpdateLinkRequest struct {
	URL         *string         `json:"url" binding:"omitempty,url"`
	Title       *string         `json:"title" binding:"omitempty,max=255"`
	Description *string         `json:"description"`
	ImageURL    *string         `json:"image_url"`
	Category    *string         `json:"category" binding:"omitempty,max=100"`
	Type        *model.LinkType `json:"type" binding:"omitempty,oneof=link social embed support"`
	IsSensitive *bool           `json:"is_sensitive"`
	Password    *string         `json:"password"`
}

// ReorderItem 单个链接的新位置
type ReorderItem struct {
	ID        string `json:"id" binding:"required"`
	SortOrder int    `json:"sortOrder" binding:"min=0"`
}

// ReorderRequest 批量调整顺序
type ReorderRequest struct {
	Orders []ReorderItem `json:"orders" binding:"required,dive"`
}

// ListLinks godoc
// @Summary 获取当前用户的链接
// @Tags Link
// @Security ApiKeyAuth
// @Produce  json
// @Success 200 {array} model.Link
// @Failure 401 {object} map[string]string "未认证"
// @Router /api/links [get]
func (h *LinkHandler) ListLinks(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	links := []model.Link{}
	if err := h.db.Where("user_id = ?", userID).Order("sort_order ASC").Find(&links).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取链接失败"})
		return
	}
	c.JSON(http.StatusOK, links)
}

// CreateLink godoc
// @Summary 创建链接
// @Description 新链接排在当前用户所有链接之后
// @Tags Link
// @Security ApiKeyAuth
// @Accept  json
// @Produce  json
// @Param   link  body  CreateLinkRequest  true  "链接信息"
// @Success 201 {object} model.Link
// @Failure 400 {object} map[string]string "请求无效"
// @Router /api/links [post]
func (h *LinkHandler) CreateLink(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求数据: " + err.Error()})
		return
	}

	link := model.Link{
		UserID:      userID,
		URL:         req.URL,
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Category:    req.Category,
		Type:        req.Type,
		IsSensitive: req.IsSensitive,
	}
	if err := link.SetPassword(req.Password); err != nil {
		h.logger.Errorf("密码加密失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "密码加密失败"})
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		var maxOrder int
		if err := tx.Model(&model.Link{}).
			Where("user_id = ?", userID).
			Select("COALESCE(MAX(sort_order), -1)").
			Scan(&maxOrder).Error; err != nil {
			return err
		}
		link.SortOrder = maxOrder + 1
		return tx.Create(&link).Error
	})
	if err != nil {
		h.logger.Errorf("创建链接失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "创建链接失败"})
		return
	}

	c.JSON(http.StatusCreated, link)
}

// GetLink godoc
// @Summary 获取单个链接
// @Tags Link
// @Security ApiKeyAuth
// @Produce  json
// @Param   id  path  string  true  "链接 ID"
// @Success 200 {object} model.Link
// @Failure 404 {object} map[string]string "链接不存在"
// @Router /api/link/{id} [get]
func (h *LinkHandler) GetLink(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var link model.Link
	if err := h.db.Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&link).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "链接不存在"})
		return
	}
	c.JSON(http.StatusOK, link)
}

// UpdateLink godoc
// @Summary 修改链接
// @Tags Link
// @Security ApiKeyAuth
// @Accept  json
// @Produce  json
// @Param   id    path  string             true  "链接 ID"
// @Param   link  body  UpdateLinkRequest  true  "要修改的字段"
// @Success 200 {object} model.Link
// @Failure 400 {object} map[string]string "请求无效"
// @Failure 404 {object} map[string]string "链接不存在"
// @Router /api/link/{id} [patch]
func (h *LinkHandler) UpdateLink(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req UpdateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求数据: " + err.Error()})
		return
	}

	var link model.Link
	if err := h.db.Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&link).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "链接不存在"})
		return
	}

	updates := map[string]any{}
	if req.URL != nil {
		updates["url"] = *req.URL
	}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Type != nil {
		updates["type"] = *req.Type
	}
	if req.IsSensitive != nil {
		updates["is_sensitive"] = *req.IsSensitive
	}
	if req.Password != nil {
		if err := link.SetPassword(*req.Password); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "密码加密失败"})
			return
		}
		updates["password_hash"] = link.PasswordHash
	}

	if len(updates) > 0 {
		if err := h.db.Model(&link).Updates(updates).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "修改链接失败"})
			return
		}
	}
	h.invalidateURL(link.ID)

	if err := h.db.First(&link, "id = ?", link.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取链接失败"})
		return
	}
	c.JSON(http.StatusOK, link)
}

// DeleteLink godoc
// @Summary 删除链接
// @Description 同时删除该链接的所有点击记录
// @Tags Link
// @Security ApiKeyAuth
// @Produce  json
// @Param   id  path  string  true  "链接 ID"
// @Success 200 {object} map[string]bool
// @Failure 404 {object} map[string]string "链接不存在"
// @Router /api/link/{id} [delete]
func (h *LinkHandler) DeleteLink(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id := c.Param("id")

	err := h.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&model.Link{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("link_id = ?", id).Delete(&model.ClickEvent{}).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "链接不存在"})
		return
	}
	if err != nil {
		h.logger.Errorf("删除链接失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "删除链接失败"})
		return
	}

	h.invalidateURL(id)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ReorderLinks godoc
// @Summary 调整链接顺序
// @Description 先把涉及的链接移到负数位置，再写入目标位置，保证同一用户内位置唯一
// @Tags Link
// @Security ApiKeyAuth
// @Accept  json
// @Produce  json
// @Param   orders  body  ReorderRequest  true  "新的顺序"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} map[string]string "请求无效"
// @Router /api/link/reorder [patch]
func (h *LinkHandler) ReorderLinks(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求数据"})
		return
	}

	ids := make([]string, 0, len(req.Orders))
	seenIDs := make(map[string]struct{}, len(req.Orders))
	seenOrders := make(map[int]struct{}, len(req.Orders))
	for _, item := range req.Orders {
		if _, dup := seenIDs[item.ID]; dup {
			c.JSON(http.StatusBadRequest, gin.H{"error": "重复的链接 ID"})
			return
		}
		if _, dup := seenOrders[item.SortOrder]; dup {
			c.JSON(http.StatusBadRequest, gin.H{"error": "重复的排序位置"})
			return
		}
		seenIDs[item.ID] = struct{}{}
		seenOrders[item.SortOrder] = struct{}{}
		ids = append(ids, item.ID)
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		var owned int64
		if err := tx.Model(&model.Link{}).Where("id IN ? AND user_id = ?", ids, userID).Count(&owned).Error; err != nil {
			return err
		}
		if int(owned) != len(ids) {
			return gorm.ErrRecordNotFound
		}

		for i, item := range req.Orders {
			if err := tx.Model(&model.Link{}).Where("id = ? AND user_id = ?", item.ID, userID).
				UpdateColumn("sort_order", -(i + 1)).Error; err != nil {
				return err
			}
		}
		for _, item := range req.Orders {
			if err := tx.Model(&model.Link{}).Where("id = ? AND user_id = ?", item.ID, userID).
				UpdateColumn("sort_order", item.SortOrder).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "链接不存在"})
		return
	}
	if err != nil {
		h.logger.Errorf("调整顺序失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "调整顺序失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// PublicLink 公开主页上展示的链接，受密码保护的链接不暴露目标地址
type PublicLink struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	ImageURL    string         `json:"image_url"`
	Category    string         `json:"category"`
	Type        model.LinkType `json:"type"`
	IsSensitive bool           `json:"is_sensitive"`
	Locked      bool           `json:"locked"`
	URL         string         `json:"url,omitempty"`
	ClickURL    string         `json:"click_url,omitempty"`
}

// PublicProfile 公开主页
type PublicProfile struct {
	Username string       `json:"username"`
	Image    string       `json:"image,omitempty"`
	Links    []PublicLink `json:"links"`
}

// GetPublicProfile godoc
// @Summary 获取用户公开主页
// @Tags Public
// @Produce  json
// @Param   username  path  string  true  "用户名"
// @Success 200 {object} PublicProfile
// @Failure 404 {object} map[string]string "用户不存在"
// @Router /api/public/{username} [get]
func (h *LinkHandler) GetPublicProfile(c *gin.Context) {
	var user model.User
	err := h.db.Where("username = ? AND is_active = ?", c.Param("username"), true).
		Preload("Links", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		First(&user).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "用户不存在"})
		return
	}

	profile := PublicProfile{Username: user.Username, Image: user.Image, Links: make([]PublicLink, 0, len(user.Links))}
	for _, link := range user.Links {
		pl := PublicLink{
			ID:          link.ID,
			Title:       link.Title,
			Description: link.Description,
			ImageURL:    link.ImageURL,
			Category:    link.Category,
			Type:        link.Type,
			IsSensitive: link.IsSensitive,
			Locked:      link.HasPassword(),
		}
		if !pl.Locked {
			pl.URL = link.URL
			pl.ClickURL = clickPath(link.ID)
		}
		profile.Links = append(profile.Links, pl)
	}
	c.JSON(http.StatusOK, profile)
}

package api

import (
	"net/http"
	"strconv"

	"EquiSync/internal/repository"
	"EquiSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// VenueHandler 场地查询与家庭邮编设置
type VenueHandler struct {
	venueRepo   repository.VenueRepository
	sourceRepo  repository.SourceRepository
	locationSvc *service.LocationService
	logger      *logrus.Logger
}

func NewVenueHandler(db *gorm.DB, locationSvc *service.LocationService, logger *logrus.Logger) *VenueHandler {
	return &VenueHandler{
		venueRepo:   repository.NewVenueRepository(db),
		sourceRepo:  repository.NewSourceRepository(db),
		locationSvc: locationSvc,
		logger:      logger,
	}
}

// GetVenue 场地详情
// GET /api/venues/:id
func (h *VenueHandler) GetVenue(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的场地ID"})
		return
	}
	venue, err := h.venueRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "场地不存在"})
		return
	}
	c.JSON(http.StatusOK, venue)
}

// ListSources 来源列表（只读）
// GET /api/sources
func (h *VenueHandler) ListSources(c *gin.Context) {
	sources, err := h.sourceRepo.ListAll(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("来源列表查询失败")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sources)
}

type homePostcodeRequest struct {
	Postcode string `json:"postcode" binding:"required"`
}

// UpdateHomePostcode 更新家庭邮编并给全部有坐标的场地重算距离
// POST /api/settings/home-postcode
func (h *VenueHandler) UpdateHomePostcode(c *gin.Context) {
	var req homePostcodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求体缺少postcode"})
		return
	}
	updated, err := h.locationSvc.UpdateHomePostcode(c.Request.Context(), req.Postcode)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"postcode":          req.Postcode,
		"distances_updated": updated,
	})
}

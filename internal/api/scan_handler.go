package api

import (
	"net/http"
	"strconv"

	"EquiSync/internal/model"
	"EquiSync/internal/repository"
	"EquiSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ScanHandler 扫描历史查询与按需触发。
// 写路径的访问控制在外层网关做，这里不做鉴权。
type ScanHandler struct {
	scheduler *service.Scheduler
	scanRepo  repository.ScanRepository
	logger    *logrus.Logger
}

func NewScanHandler(db *gorm.DB, scheduler *service.Scheduler, logger *logrus.Logger) *ScanHandler {
	return &ScanHandler{
		scheduler: scheduler,
		scanRepo:  repository.NewScanRepository(db),
		logger:    logger,
	}
}

type triggerScanRequest struct {
	SourceID *uint64 `json:"source_id"` // 空表示"全部启用的来源"
}

// TriggerScan 按需触发扫描，后台执行，立即返回202
// POST /api/scans
func (h *ScanHandler) TriggerScan(c *gin.Context) {
	var req triggerScanRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求体不是合法JSON"})
		return
	}

	requestID := uuid.NewString()
	log := h.logger.WithField("request", requestID)

	if req.SourceID != nil {
		scan, already, err := h.scheduler.TriggerSource(*req.SourceID, model.TriggerManual)
		if err != nil {
			log.WithError(err).Error("触发扫描失败")
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if already {
			c.JSON(http.StatusConflict, gin.H{
				"request": requestID,
				"message": "该来源已有扫描在运行",
			})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"request": requestID, "scans": []*model.Scan{scan}})
		return
	}

	scans, err := h.scheduler.TriggerAll(model.TriggerManual)
	if err != nil {
		log.WithError(err).Error("触发全量扫描失败")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"request": requestID, "scans": scans})
}

// ListScans 扫描历史
// GET /api/scans?source_id=&limit=
func (h *ScanHandler) ListScans(c *gin.Context) {
	var sourceID uint64
	if v := c.Query("source_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "无效的来源ID"})
			return
		}
		sourceID = id
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	scans, err := h.scanRepo.List(c.Request.Context(), sourceID, limit)
	if err != nil {
		h.logger.WithError(err).Error("扫描历史查询失败")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, scans)
}

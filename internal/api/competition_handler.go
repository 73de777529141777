package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"EquiSync/internal/model"
	"EquiSync/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CompetitionHandler 赛事目录查询接口（只读）
type CompetitionHandler struct {
	repo   repository.CompetitionRepository
	logger *logrus.Logger
}

func NewCompetitionHandler(db *gorm.DB, logger *logrus.Logger) *CompetitionHandler {
	return &CompetitionHandler{
		repo:   repository.NewCompetitionRepository(db),
		logger: logger,
	}
}

// competitionOut 查询响应：场地属性通过场地引用读出，不冗余存储
type competitionOut struct {
	ID             uint64   `json:"id"`
	SourceID       uint64   `json:"source_id"`
	Name           string   `json:"name"`
	DateStart      string   `json:"date_start"`
	DateEnd        *string  `json:"date_end,omitempty"`
	VenueID        uint64   `json:"venue_id"`
	VenueName      string   `json:"venue_name"`
	VenuePostcode  *string  `json:"venue_postcode,omitempty"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	DistanceMiles  *float64 `json:"distance_miles,omitempty"`
	IsCompetition  bool     `json:"is_competition"`
	Discipline     *string  `json:"discipline,omitempty"`
	HasPonyClasses bool     `json:"has_pony_classes"`
	URL            *string  `json:"url,omitempty"`
	Classes        []string `json:"classes,omitempty"`
	FirstSeenAt    string   `json:"first_seen_at"`
	LastSeenAt     string   `json:"last_seen_at"`
}

func toCompetitionOut(c *model.Competition) competitionOut {
	out := competitionOut{
		ID:             c.ID,
		SourceID:       c.SourceID,
		Name:           c.Name,
		DateStart:      c.DateStart.Format("2006-01-02"),
		VenueID:        c.VenueID,
		IsCompetition:  c.IsCompetition,
		Discipline:     c.Discipline,
		HasPonyClasses: c.HasPonyClasses,
		URL:            c.URL,
		FirstSeenAt:    c.FirstSeenAt.UTC().Format(time.RFC3339),
		LastSeenAt:     c.LastSeenAt.UTC().Format(time.RFC3339),
	}
	if c.DateEnd != nil {
		d := c.DateEnd.Format("2006-01-02")
		out.DateEnd = &d
	}
	if c.Venue != nil {
		out.VenueName = c.Venue.CanonicalName
		out.VenuePostcode = c.Venue.Postcode
		out.Latitude = c.Venue.Latitude
		out.Longitude = c.Venue.Longitude
		out.DistanceMiles = c.Venue.DistanceMiles
	}
	if len(c.Classes) > 0 {
		_ = json.Unmarshal(c.Classes, &out.Classes)
	}
	return out
}

// ListCompetitions 赛事列表
// GET /api/competitions?date_from=&date_to=&discipline=&venue=&pony_only=&max_distance=&is_competition=&page=&page_size=
// is_competition 缺省为 true（训练/场地租用默认不出现在目录里）
func (h *CompetitionHandler) ListCompetitions(c *gin.Context) {
	filter := repository.CompetitionFilter{}

	if v := c.Query("date_from"); v != "" {
		if d, err := time.Parse("2006-01-02", v); err == nil {
			filter.DateFrom = &d
		}
	}
	if v := c.Query("date_to"); v != "" {
		if d, err := time.Parse("2006-01-02", v); err == nil {
			filter.DateTo = &d
		}
	}
	filter.Discipline = c.Query("discipline")
	filter.VenueSubstr = c.Query("venue")
	filter.PonyOnly = c.Query("pony_only") == "true"
	if v := c.Query("max_distance"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MaxDistance = &f
		}
	}
	isComp := c.DefaultQuery("is_competition", "true") == "true"
	filter.IsCompetition = &isComp
	if v := c.Query("source_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 64); err == nil {
			filter.SourceID = id
		}
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	list, total, err := h.repo.List(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		h.logger.WithError(err).Error("赛事列表查询失败")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]competitionOut, 0, len(list))
	for _, comp := range list {
		out = append(out, toCompetitionOut(comp))
	}
	c.JSON(http.StatusOK, gin.H{
		"total":     total,
		"page":      page,
		"page_size": pageSize,
		"items":     out,
	})
}

// GetCompetition 赛事详情
// GET /api/competitions/:id
func (h *CompetitionHandler) GetCompetition(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的赛事ID"})
		return
	}
	comp, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "赛事不存在"})
		return
	}
	c.JSON(http.StatusOK, toCompetitionOut(comp))
}

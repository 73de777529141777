package geocoder

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"EquiSync/internal/config"
	"EquiSync/internal/model"
	"EquiSync/internal/repository"
	"EquiSync/internal/utils/httpclient"

	"github.com/sirupsen/logrus"
)

// 地球半径（英里）
const earthRadiusMiles = 3958.7613

// UK 坐标包围盒；盒外坐标一律丢弃不入库
const (
	ukLatMin = 49.0
	ukLatMax = 61.0
	ukLngMin = -11.0
	ukLngMax = 2.0
)

// InUKBox 坐标是否落在UK包围盒内
func InUKBox(lat, lng float64) bool {
	return lat >= ukLatMin && lat <= ukLatMax && lng >= ukLngMin && lng <= ukLngMax
}

// Haversine 两点间大圆距离（英里）
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lng2 - lng1) * math.Pi / 180
	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return earthRadiusMiles * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Geocoder 坐标解析级联：场地缓存 → 解析器坐标 → 现行邮编目录 →
// 停用邮编目录 → 自由文本兜底。任一步成功即短路；失败静默，
// 场地留空坐标，下轮扫描重试。
type Geocoder struct {
	client *httpclient.Client
	repo   repository.VenueRepository
	logger *logrus.Logger
	cfg    config.GeocoderConfig

	mu      sync.Mutex
	homeLat *float64
	homeLng *float64
	// 邮编查询缓存（含失败的负缓存，进程生命周期内有效）
	cache map[string]*coords
}

type coords struct {
	lat, lng float64
}

func New(client *httpclient.Client, repo repository.VenueRepository, cfg config.GeocoderConfig, logger *logrus.Logger) *Geocoder {
	return &Geocoder{
		client: client,
		repo:   repo,
		logger: logger,
		cfg:    cfg,
		cache:  make(map[string]*coords),
	}
}

// InitHome 启动时地理编码家庭邮编
func (g *Geocoder) InitHome(ctx context.Context, postcode string) {
	lat, lng, ok := g.lookupPostcode(ctx, postcode)
	if !ok {
		g.logger.WithField("postcode", postcode).Warn("家庭邮编地理编码失败")
		return
	}
	g.mu.Lock()
	g.homeLat, g.homeLng = &lat, &lng
	g.mu.Unlock()
	g.logger.WithFields(logrus.Fields{
		"postcode": postcode, "lat": lat, "lng": lng,
	}).Info("家庭位置已设置")
}

// SetHome 更新家庭邮编并重新编码，成功返回true
func (g *Geocoder) SetHome(ctx context.Context, postcode string) bool {
	lat, lng, ok := g.lookupPostcode(ctx, postcode)
	if !ok {
		return false
	}
	g.mu.Lock()
	g.homeLat, g.homeLng = &lat, &lng
	g.mu.Unlock()
	g.logger.WithFields(logrus.Fields{
		"postcode": postcode, "lat": lat, "lng": lng,
	}).Info("家庭位置已更新")
	return true
}

// Distance 到家庭位置的大圆距离（英里）；家庭位置未知时返回nil
func (g *Geocoder) Distance(lat, lng float64) *float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.homeLat == nil || g.homeLng == nil {
		return nil
	}
	d := Haversine(*g.homeLat, *g.homeLng, lat, lng)
	return &d
}

// ResolveVenue 为场地解析坐标。返回坐标与是否本次新学到
// （新学到的坐标已条件写入场地行）。
func (g *Geocoder) ResolveVenue(ctx context.Context, venue *model.Venue, parserLat, parserLng *float64) (*float64, *float64, bool) {
	// 1. 场地缓存
	if venue.Latitude != nil && venue.Longitude != nil && InUKBox(*venue.Latitude, *venue.Longitude) {
		return venue.Latitude, venue.Longitude, false
	}

	// 2. 解析器提供的坐标（必须在UK盒内）
	if parserLat != nil && parserLng != nil {
		if InUKBox(*parserLat, *parserLng) {
			g.persist(ctx, venue, *parserLat, *parserLng)
			return parserLat, parserLng, true
		}
		g.logger.WithFields(logrus.Fields{
			"venue": venue.CanonicalName, "lat": *parserLat, "lng": *parserLng,
		}).Warn("解析器坐标在UK盒外，丢弃")
	}

	// 3/4. 邮编目录（现行→停用）
	if venue.Postcode != nil && *venue.Postcode != "" {
		if lat, lng, ok := g.lookupPostcode(ctx, *venue.Postcode); ok {
			g.persist(ctx, venue, lat, lng)
			return &lat, &lng, true
		}
	}

	// 5. 自由文本兜底（皇家属地、歧义地名等）
	if lat, lng, ok := g.lookupFreeform(ctx, venue.CanonicalName); ok {
		g.persist(ctx, venue, lat, lng)
		return &lat, &lng, true
	}

	return nil, nil, false
}

// persist 条件写坐标到场地行（已有坐标的场地先写者胜）
func (g *Geocoder) persist(ctx context.Context, venue *model.Venue, lat, lng float64) {
	if err := g.repo.SetCoordsIfEmpty(ctx, venue.ID, lat, lng); err != nil {
		g.logger.WithError(err).WithField("venue", venue.CanonicalName).Warn("场地坐标写入失败")
		return
	}
	venue.Latitude, venue.Longitude = &lat, &lng
}

// postcodeResult 邮编目录服务响应
type postcodeResult struct {
	Result *struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	} `json:"result"`
}

// lookupPostcode 邮编查询：现行目录→停用目录，带进程内缓存
func (g *Geocoder) lookupPostcode(ctx context.Context, postcode string) (float64, float64, bool) {
	key := strings.ToUpper(strings.TrimSpace(postcode))
	g.mu.Lock()
	if c, ok := g.cache[key]; ok {
		g.mu.Unlock()
		if c == nil {
			return 0, 0, false
		}
		return c.lat, c.lng, true
	}
	g.mu.Unlock()

	for _, base := range []string{g.cfg.PrimaryURL, g.cfg.TerminatedURL} {
		if base == "" {
			continue
		}
		lat, lng, ok := g.fetchPostcode(ctx, base, key)
		if ok && InUKBox(lat, lng) {
			g.mu.Lock()
			g.cache[key] = &coords{lat: lat, lng: lng}
			g.mu.Unlock()
			return lat, lng, true
		}
	}

	g.mu.Lock()
	g.cache[key] = nil // 负缓存：本进程内不再重查
	g.mu.Unlock()
	return 0, 0, false
}

func (g *Geocoder) fetchPostcode(ctx context.Context, base, postcode string) (float64, float64, bool) {
	reqURL := fmt.Sprintf("%s/%s", strings.TrimRight(base, "/"), url.PathEscape(postcode))
	body, err := g.client.GetBody(ctx, reqURL)
	if err != nil {
		// 超时与5xx按未命中处理，不是致命错误
		g.logger.WithError(err).WithField("postcode", postcode).Debug("邮编查询未命中")
		return 0, 0, false
	}
	var parsed postcodeResult
	if err := json.Unmarshal(body, &parsed); err != nil {
		g.logger.WithError(err).WithField("postcode", postcode).Warn("邮编目录响应解析失败")
		return 0, 0, false
	}
	if parsed.Result == nil || parsed.Result.Latitude == nil || parsed.Result.Longitude == nil {
		return 0, 0, false
	}
	return *parsed.Result.Latitude, *parsed.Result.Longitude, true
}

// freeformResult 自由文本地理编码响应（lat/lon为字符串）
type freeformResult []struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// lookupFreeform 自由文本兜底查询
func (g *Geocoder) lookupFreeform(ctx context.Context, name string) (float64, float64, bool) {
	if g.cfg.FallbackURL == "" || name == "" || name == model.VenuePlaceholder {
		return 0, 0, false
	}
	q := url.Values{}
	q.Set("q", name)
	q.Set("format", "json")
	q.Set("countrycodes", "gb,im,je,gg")
	q.Set("limit", "1")
	reqURL := g.cfg.FallbackURL + "?" + q.Encode()

	body, err := g.client.GetBody(ctx, reqURL)
	if err != nil {
		g.logger.WithError(err).WithField("venue", name).Debug("兜底地理编码未命中")
		return 0, 0, false
	}
	var parsed freeformResult
	if err := json.Unmarshal(body, &parsed); err != nil || len(parsed) == 0 {
		return 0, 0, false
	}
	lat, err1 := strconv.ParseFloat(parsed[0].Lat, 64)
	lng, err2 := strconv.ParseFloat(parsed[0].Lon, 64)
	if err1 != nil || err2 != nil || !InUKBox(lat, lng) {
		return 0, 0, false
	}
	return lat, lng, true
}

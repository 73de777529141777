package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"EquiSync/internal/model"
)

func init() {
	Register("horse_events", func(deps Deps) Parser {
		return &horseEventsParser{deps: deps}
	})
}

// horseEventsParser Tribe Events v1 REST 接口，多场地、分页。
type horseEventsParser struct {
	deps Deps
}

const horseEventsMaxPages = 10

type tribeEventsPage struct {
	Events []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		StartDate   string `json:"start_date"` // "2026-02-25 09:00:00"
		EndDate     string `json:"end_date"`
		URL         string `json:"url"`
		Venue       struct {
			Venue string `json:"venue"`
			Zip   string `json:"zip"`
		} `json:"venue"`
		Categories []struct {
			Name string `json:"name"`
		} `json:"categories"`
	} `json:"events"`
	TotalPages int `json:"total_pages"`
}

func (p *horseEventsParser) FetchAndParse(ctx context.Context, sourceURL string) ([]model.ExtractedEvent, error) {
	var events []model.ExtractedEvent

	for page := 1; page <= horseEventsMaxPages; page++ {
		parsed, err := p.fetchPage(ctx, sourceURL, page)
		if err != nil {
			if page == 1 {
				return nil, err
			}
			// 后续页失败不吞掉已取到的事件
			p.deps.Logger.WithError(err).WithField("page", page).Warn("分页抓取中断")
			break
		}

		for _, raw := range parsed.Events {
			if raw.Title == "" || raw.Venue.Venue == "" {
				continue
			}
			dateStart := toISODate(raw.StartDate)
			ev := model.ExtractedEvent{
				Name:          cleanText(raw.Title),
				DateStart:     dateStart,
				DateEnd:       toISODate(raw.EndDate),
				VenueName:     raw.Venue.Venue,
				VenuePostcode: raw.Venue.Zip,
				URL:           raw.URL,
				Description:   cleanText(raw.Description),
			}
			if len(raw.Categories) > 0 {
				ev.Discipline = raw.Categories[0].Name
			}
			events = append(events, ev)
		}

		if parsed.TotalPages <= page {
			break
		}
	}

	p.deps.Logger.WithField("count", len(events)).Info("Horse Events 解析完成")
	return events, nil
}

func (p *horseEventsParser) fetchPage(ctx context.Context, sourceURL string, page int) (*tribeEventsPage, error) {
	u, err := url.Parse(sourceURL)
	if err != nil {
		return nil, fmt.Errorf("解析来源URL失败: %w", err)
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", "50")
	u.RawQuery = q.Encode()

	body, err := p.deps.Client.GetBody(ctx, u.String())
	if err != nil {
		return nil, fmt.Errorf("抓取第%d页失败: %w", page, err)
	}
	var parsed tribeEventsPage
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("第%d页JSON解析失败: %w", page, err)
	}
	return &parsed, nil
}

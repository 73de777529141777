package parser

import (
	"context"
	"encoding/json"
	"fmt"

	"EquiSync/internal/model"

	"github.com/PuerkitoBio/goquery"
)

func init() {
	Register("equo_events", func(deps Deps) Parser {
		return &equoEventsParser{deps: deps}
	})
}

// equoEventsParser 搜索页内嵌 JSON-LD Event 块，多场地。
type equoEventsParser struct {
	deps Deps
}

// ldEvent schema.org Event（含Yoast @graph包装）
type ldEvent struct {
	Type      string `json:"@type"`
	Name      string `json:"name"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	URL       string `json:"url"`
	Location  struct {
		Name    string `json:"name"`
		Address struct {
			PostalCode string `json:"postalCode"`
		} `json:"address"`
	} `json:"location"`
	Description string `json:"description"`
}

type ldGraph struct {
	Graph []json.RawMessage `json:"@graph"`
}

func (p *equoEventsParser) FetchAndParse(ctx context.Context, sourceURL string) ([]model.ExtractedEvent, error) {
	doc, err := fetchDoc(ctx, p.deps.Client, sourceURL)
	if err != nil {
		return nil, fmt.Errorf("抓取搜索页失败: %w", err)
	}

	var events []model.ExtractedEvent
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, script *goquery.Selection) {
		for _, ev := range parseLDEvents([]byte(script.Text())) {
			if ev.Name == "" || ev.Location.Name == "" {
				continue
			}
			events = append(events, model.ExtractedEvent{
				Name:          cleanText(ev.Name),
				DateStart:     toISODate(ev.StartDate),
				DateEnd:       toISODate(ev.EndDate),
				VenueName:     ev.Location.Name,
				VenuePostcode: ev.Location.Address.PostalCode,
				URL:           ev.URL,
				Description:   cleanText(ev.Description),
			})
		}
	})

	p.deps.Logger.WithField("count", len(events)).Info("Equo Events 解析完成")
	return events, nil
}

// parseLDEvents 取出JSON-LD块里全部Event：兼容单对象、数组和@graph包装
func parseLDEvents(raw []byte) []ldEvent {
	var out []ldEvent

	var single ldEvent
	if err := json.Unmarshal(raw, &single); err == nil && single.Type == "Event" {
		return append(out, single)
	}

	var list []ldEvent
	if err := json.Unmarshal(raw, &list); err == nil {
		for _, ev := range list {
			if ev.Type == "Event" {
				out = append(out, ev)
			}
		}
		if len(out) > 0 {
			return out
		}
	}

	var graph ldGraph
	if err := json.Unmarshal(raw, &graph); err == nil {
		for _, item := range graph.Graph {
			var ev ldEvent
			if err := json.Unmarshal(item, &ev); err == nil && ev.Type == "Event" {
				out = append(out, ev)
			}
		}
	}
	return out
}

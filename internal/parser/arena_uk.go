package parser

import (
	"context"
	"fmt"
	"strings"

	"EquiSync/internal/model"

	"github.com/PuerkitoBio/goquery"
)

func init() {
	Register("arena_uk", func(deps Deps) Parser {
		return &arenaUKParser{deps: deps}
	})
}

// arenaUKParser Arena UK 赛程页：HTML表格，一行一个赛事。
// 单场地来源：场地名和邮编直接补齐。
type arenaUKParser struct {
	deps Deps
}

const (
	arenaUKVenue    = "Arena UK"
	arenaUKPostcode = "NG32 2EF"
)

func (p *arenaUKParser) FetchAndParse(ctx context.Context, sourceURL string) ([]model.ExtractedEvent, error) {
	doc, err := fetchDoc(ctx, p.deps.Client, sourceURL)
	if err != nil {
		return nil, fmt.Errorf("抓取赛程页失败: %w", err)
	}

	var events []model.ExtractedEvent
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return // 表头或装饰行
		}
		dateText := cleanText(cells.Eq(0).Text())
		name := cleanText(cells.Eq(1).Text())
		if name == "" {
			return
		}
		dateStart := toISODate(dateText)
		if dateStart == "" {
			// 日期区间写法 "12/04/2026 - 13/04/2026"
			if from, to, ok := strings.Cut(dateText, " - "); ok {
				dateStart = toISODate(from)
				if end := toISODate(to); end != "" && dateStart != "" {
					events = append(events, p.buildEvent(name, dateStart, end, cells, row))
					return
				}
			}
			if dateStart == "" {
				return
			}
		}
		events = append(events, p.buildEvent(name, dateStart, "", cells, row))
	})

	p.deps.Logger.WithField("count", len(events)).Info("Arena UK 解析完成")
	return events, nil
}

func (p *arenaUKParser) buildEvent(name, dateStart, dateEnd string, cells, row *goquery.Selection) model.ExtractedEvent {
	ev := model.ExtractedEvent{
		Name:          name,
		DateStart:     dateStart,
		DateEnd:       dateEnd,
		VenueName:     arenaUKVenue,
		VenuePostcode: arenaUKPostcode,
	}
	if cells.Length() >= 3 {
		ev.Discipline = cleanText(cells.Eq(2).Text())
	}
	if cells.Length() >= 4 {
		for _, class := range strings.Split(cells.Eq(3).Text(), ",") {
			if c := cleanText(class); c != "" {
				ev.Classes = append(ev.Classes, c)
			}
		}
	}
	if href, ok := row.Find("a").First().Attr("href"); ok {
		ev.URL = strings.TrimSpace(href)
	}
	return ev
}

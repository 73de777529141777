package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"EquiSync/internal/model"

	"github.com/PuerkitoBio/goquery"
)

// 提取提示词：喂给Ollama兼容服务的结构化提取指令
const extractionPrompt = `Extract all equestrian events from this webpage text.
The current year is %d. Use this when dates don't include a year.
For each event return a JSON object with these fields:
- name: event/show name (string, required)
- date_start: start date as YYYY-MM-DD (string, required)
- date_end: end date as YYYY-MM-DD or null
- venue_name: venue name (string, required)
- venue_postcode: UK postcode if visible, or null
- discipline: discipline text if visible, or null
- has_pony_classes: true if pony or junior classes exist
- classes: array of class names/descriptions
- url: link to event details or null

Return ONLY a JSON array. No explanation.

Webpage text:
%s`

const maxExtractTextLength = 6000

// GenericParser 兜底解析器：没有专用解析器的来源把页面正文
// 交给外部LLM做结构化提取。编排器对它与专用解析器一视同仁。
type GenericParser struct {
	deps Deps
}

func NewGenericParser(deps Deps) Parser {
	return &GenericParser{deps: deps}
}

func (p *GenericParser) FetchAndParse(ctx context.Context, sourceURL string) ([]model.ExtractedEvent, error) {
	body, err := p.deps.Client.GetBody(ctx, sourceURL)
	if err != nil {
		return nil, fmt.Errorf("抓取页面失败: %w", err)
	}
	text, err := cleanHTML(body)
	if err != nil {
		return nil, fmt.Errorf("清洗页面失败: %w", err)
	}
	if len(text) > maxExtractTextLength {
		text = text[:maxExtractTextLength]
	}
	return p.extract(ctx, text)
}

// cleanHTML 去掉页面脚手架，只留正文。策略依次为：
// 表格内容（赛程页多为表格）→ main/article → 整页去噪
func cleanHTML(html []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return "", err
	}
	doc.Find("script, style, nav, footer, header, noscript, svg, img, link, meta, select, option, form").Remove()

	// 策略1：表格内容
	var parts []string
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		text := cleanText(table.Text())
		if len(text) > 50 { // 跳过空表和装饰表
			parts = append(parts, text)
		}
	})
	if joined := strings.Join(parts, "\n\n"); len(joined) > 200 {
		return joined, nil
	}

	// 策略2：main/article
	main := doc.Find("main, article, [role=main]").First()
	if main.Length() > 0 {
		if text := collapseLines(main.Text()); len(text) > 200 {
			return text, nil
		}
	}

	// 策略3：整页
	return collapseLines(doc.Find("body").Text()), nil
}

func collapseLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := cleanText(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return strings.Join(out, "\n")
}

// generateRequest Ollama /api/generate 请求体
type generateRequest struct {
	Model   string                 `json:"model"`
	Prompt  string                 `json:"prompt"`
	Stream  bool                   `json:"stream"`
	Options map[string]interface{} `json:"options"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// extract 把清洗后的页面文本交给LLM并解析结构化结果
func (p *GenericParser) extract(ctx context.Context, text string) ([]model.ExtractedEvent, error) {
	prompt := fmt.Sprintf(extractionPrompt, time.Now().Year(), text)
	payload, err := json.Marshal(generateRequest{
		Model:  p.deps.Extractor.Model,
		Prompt: prompt,
		Stream: false,
		Options: map[string]interface{}{
			"temperature": 0.1,
			"num_ctx":     4096,
			"num_predict": 2048,
		},
	})
	if err != nil {
		return nil, err
	}

	reqURL := strings.TrimRight(p.deps.Extractor.URL, "/") + "/api/generate"
	resp, err := p.deps.Client.PostJSON(ctx, reqURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("调用提取服务失败: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("提取服务响应解析失败: %w", err)
	}
	return p.parseResponse(parsed.Response), nil
}

// parseResponse 解析LLM输出，丢弃缺必填字段的记录
func (p *GenericParser) parseResponse(text string) []model.ExtractedEvent {
	jsonStr := repairJSONArray(text)
	if jsonStr == "" {
		p.deps.Logger.WithField("head", head(text, 200)).Warn("LLM响应中没有合法JSON数组")
		return nil
	}

	var raw []model.ExtractedEvent
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		p.deps.Logger.WithError(err).Warn("LLM JSON反序列化失败")
		return nil
	}

	events := make([]model.ExtractedEvent, 0, len(raw))
	for _, ev := range raw {
		if ev.Name == "" || ev.DateStart == "" || ev.VenueName == "" {
			p.deps.Logger.WithField("name", ev.Name).Debug("丢弃缺必填字段的提取记录")
			continue
		}
		events = append(events, ev)
	}
	p.deps.Logger.WithField("count", len(events)).Info("LLM提取完成")
	return events
}

// repairJSONArray 从LLM输出里抠出合法JSON数组，输出被截断时
// 逐个右花括号回退补闭合
func repairJSONArray(text string) string {
	start := strings.Index(text, "[")
	if start == -1 {
		return ""
	}

	// 先试完整数组
	if end := strings.LastIndex(text, "]"); end > start {
		candidate := text[start : end+1]
		if json.Valid([]byte(candidate)) {
			return candidate
		}
	}

	// 截断输出：从最后一个 "}" 往前逐个尝试补 "]"
	fragment := text[start:]
	for i := strings.LastIndex(fragment, "}"); i > 0; i = strings.LastIndex(fragment[:i], "}") {
		candidate := fragment[:i+1] + "]"
		if json.Valid([]byte(candidate)) {
			return candidate
		}
	}
	return ""
}

func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

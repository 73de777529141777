package parser

import (
	"bytes"
	"context"
	"strings"
	"time"

	"EquiSync/internal/utils/httpclient"

	"github.com/PuerkitoBio/goquery"
)

// fetchDoc GET页面并解析为goquery文档
func fetchDoc(ctx context.Context, client *httpclient.Client, url string) (*goquery.Document, error) {
	body, err := client.GetBody(ctx, url)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(bytes.NewReader(body))
}

// 解析器常见的日期写法；全部转成ISO YYYY-MM-DD 再交给扫描器
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"02/01/2006",
	"2 January 2006",
	"2 Jan 2006",
	"Monday 2 January 2006",
	"January 2, 2006",
}

// toISODate 把来源日期文本转成 ISO YYYY-MM-DD；认不出返回空串
func toISODate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

// cleanText 折叠空白
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

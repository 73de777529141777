package normalize

import (
	"strings"
	"time"
)

// SanitizeURL 仅保留 http/https 链接，其余返回空串
func SanitizeURL(raw string) string {
	s := strings.TrimSpace(raw)
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return s
	}
	return ""
}

// ParseISODate 解析 ISO 日期（YYYY-MM-DD）
func ParseISODate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(s))
}

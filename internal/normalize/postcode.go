package normalize

import (
	"regexp"
	"strings"
)

// 英国邮编外码形状：1-2个字母 + 1个数字 + 可选的字母或数字
var outwardRe = regexp.MustCompile(`^[A-Z]{1,2}[0-9][A-Z0-9]?$`)

// 文本中嵌入的英国邮编（外码与内码之间必须有空格，避免误匹配）
var embeddedPostcodeRe = regexp.MustCompile(`(?i)\b[A-Z]{1,2}[0-9][A-Z0-9]?\s+[0-9][A-Z]{2}\b`)

// Postcode 将原始邮编规范化为 "OUTWARD INWARD" 形式（大写、单空格）。
// 非英国邮编形状的输入返回空串。
func Postcode(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimRight(s, ".,;:!")
	s = strings.ToUpper(s)
	s = strings.Join(strings.Fields(s), "")
	if len(s) < 5 || len(s) > 7 {
		return ""
	}

	outward, inward := s[:len(s)-3], s[len(s)-3:]
	if !isDigit(inward[0]) || !isLetter(inward[1]) || !isLetter(inward[2]) {
		return ""
	}
	if !outwardRe.MatchString(outward) {
		return ""
	}
	return outward + " " + inward
}

// ExtractPostcode 从自由文本中提取第一个英国邮编，找不到返回空串
func ExtractPostcode(text string) string {
	m := embeddedPostcodeRe.FindString(text)
	if m == "" {
		return ""
	}
	return Postcode(m)
}

func isDigit(b byte) bool  { return b >= '0' && b <= '9' }
func isLetter(b byte) bool { return b >= 'A' && b <= 'Z' }

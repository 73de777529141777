package normalize

import (
	"regexp"
	"strings"

	"EquiSync/internal/model"
)

// 展会编号噪音："(1)"、"(2) - SPONSORED BY ..." 等
var showNumberRe = regexp.MustCompile(`\s*\(\d+\)(\s*-\s*.+)?$`)

// 尾部赛事描述括号："(Festival)"、"(Small Pony Premier)" 等。
// 只匹配含已知赛事词的括号，保留 "(Cumbria)" 这类地名限定
var trailingEventParenRe = regexp.MustCompile(
	`(?i)\s*\([^)]*(?:Premier|Festival|Championship|Finals|Qualifier|Scope|Senior|Junior|Pony|Winter|Summer|League)[^)]*\)\s*$`)

// 尾部缩写代码："- Chspc"、"- Vwh" 等（≤6个字母）
var trailingAbbrevRe = regexp.MustCompile(`\s*-\s+[A-Za-z]{1,6}$`)

// 尾部 "Limited"
var limitedRe = regexp.MustCompile(`(?i)\s+Limited$`)

// Google plus-code："8FVC9G8F+5W" 之类
var plusCodeRe = regexp.MustCompile(`^[23456789CFGHJMPQRVWX]{4,8}\+[23456789CFGHJMPQRVWX]{2,}$`)

var whitespaceRe = regexp.MustCompile(`\s{2,}`)

// 场地类型后缀词表，迭代剥离（两轮足够）
var venueSuffixes = []string{
	"equestrian centre",
	"equestrian",
	"equine centre",
	"equine",
	"riding centre",
	"riding school",
	"riding club",
	"showground",
	"event centre",
	"farm",
	"stables",
	"ltd",
}

// 孤悬介词：后缀剥离后可能残留在尾部
var orphanPrepositions = map[string]bool{
	"of": true, "at": true, "in": true, "on": true, "&": true, "and": true,
}

// 标题格中保持小写的小词（首词除外）
var titleSmallWords = map[string]bool{
	"of": true, "and": true, "the": true, "at": true, "in": true, "on": true,
	"a": true, "an": true, "&": true,
}

var placeholderNames = map[string]bool{
	"tbc": true, "tba": true, "tbd": true, "various": true, "unknown": true,
}

// VenueName 将原始场地名规范化为唯一形式。
// 垃圾输入（URL、裸邮编、plus-code、超长、占位名）返回哨兵值 "Tbc"。
// 对任意输入满足幂等：VenueName(VenueName(s)) == VenueName(s)。
func VenueName(raw string) string {
	s := strings.TrimSpace(raw)

	// 1. 垃圾守卫
	lower := strings.ToLower(s)
	switch {
	case s == "":
		return model.VenuePlaceholder
	case placeholderNames[lower]:
		return model.VenuePlaceholder
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"), strings.HasPrefix(lower, "www."):
		return model.VenuePlaceholder
	case Postcode(s) != "":
		return model.VenuePlaceholder
	case plusCodeRe.MatchString(s):
		return model.VenuePlaceholder
	case len(s) > 100:
		return model.VenuePlaceholder
	}

	// 2. 剥离展会编号与尾部赛事描述括号
	s = showNumberRe.ReplaceAllString(s, "")
	s = trailingEventParenRe.ReplaceAllString(s, "")

	// 3. 标题格
	s = titleCase(strings.TrimSpace(s))

	// 4. 去掉嵌在名称里的邮编
	s = embeddedPostcodeRe.ReplaceAllString(s, "")

	// 5. 尾部 "Limited"
	s = limitedRe.ReplaceAllString(s, "")

	// 6. 尾部缩写代码
	s = trailingAbbrevRe.ReplaceAllString(s, "")

	// 7-9. 后缀剥离、尾部清理、逗号截断，迭代到稳定
	// （截断可能重新暴露后缀，清理可能重新暴露截断条件，故循环整段）
	for {
		before := s

		s = stripVenueSuffix(s)

		// 折叠空白，去掉尾部标点和孤悬介词
		s = whitespaceRe.ReplaceAllString(strings.TrimSpace(s), " ")
		s = stripTrailingJunk(s)

		// 逗号截断：≥2个逗号取首段；1个逗号且总长>50取首段
		commas := strings.Count(s, ",")
		if commas >= 2 || (commas == 1 && len(s) > 50) {
			s = stripTrailingJunk(strings.TrimSpace(strings.SplitN(s, ",", 2)[0]))
		}

		if s == before {
			break
		}
	}

	if s == "" {
		return model.VenuePlaceholder
	}
	return s
}

// stripVenueSuffix 剥离一轮尾部场地类型后缀
func stripVenueSuffix(s string) string {
	for {
		lower := strings.ToLower(s)
		stripped := false
		for _, suffix := range venueSuffixes {
			if strings.HasSuffix(lower, " "+suffix) {
				s = strings.TrimSpace(s[:len(s)-len(suffix)-1])
				stripped = true
				break
			}
		}
		if !stripped {
			return s
		}
	}
}

// stripTrailingJunk 去掉尾部标点与孤悬介词（循环到稳定）
func stripTrailingJunk(s string) string {
	for {
		before := s
		s = strings.TrimSpace(strings.TrimRight(s, "-–—:&,."))
		words := strings.Fields(s)
		if len(words) > 1 && orphanPrepositions[strings.ToLower(words[len(words)-1])] {
			s = strings.Join(words[:len(words)-1], " ")
		}
		if s == before {
			return s
		}
	}
}

// titleCase 标准英文标题格：首字母大写，≤3个字母的全大写缩写保留原样，
// 小词（of/and/the…）非首词时保持小写
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if isUpperAcronym(w) && len(w) <= 3 {
			continue
		}
		lower := strings.ToLower(w)
		if i > 0 && titleSmallWords[lower] {
			words[i] = lower
			continue
		}
		words[i] = capitalize(lower)
	}
	return strings.Join(words, " ")
}

func isUpperAcronym(w string) bool {
	for _, r := range w {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return len(w) > 0
}

func capitalize(w string) string {
	for i, r := range w {
		if r >= 'a' && r <= 'z' {
			return w[:i] + strings.ToUpper(string(r)) + w[i+len(string(r)):]
		}
		if r >= 'A' && r <= 'Z' {
			return w
		}
	}
	return w
}

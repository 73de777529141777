package classifier

import (
	"strings"

	"EquiSync/internal/model"
	"EquiSync/internal/normalize"
)

// 强非比赛关键词：名称或描述命中即判定为非比赛，优先于一切项目提示。
// 表驱动，扩展规则只改这里，不动调用点。
var trainingKeywords = []string{
	"training", "clinic", "lesson", "masterclass", "camp",
}

var venueHireKeywords = []string{
	"venue hire", "arena hire",
}

// Classify 事件分类的唯一入口：纯函数，不做任何I/O。
// 规则按顺序生效，先命中者胜：
//  1. 名称/描述含强非比赛关键词 → (Training, false) 或 (Venue Hire, false)
//  2. 解析器项目提示可规范化 → 按映射结果返回
//  3. 名称、描述依次做关键词推断 → (类别, true)
//  4. 兜底：未知事件按比赛处理 → ("", true)
func Classify(name, disciplineHint, description string) (model.Discipline, bool) {
	combined := strings.ToLower(name + " " + description)

	// 1. 强非比赛关键词
	for _, kw := range venueHireKeywords {
		if strings.Contains(combined, kw) {
			return model.DisciplineVenueHire, false
		}
	}
	for _, kw := range trainingKeywords {
		if strings.Contains(combined, kw) {
			return model.DisciplineTraining, false
		}
	}

	// 2. 解析器提示
	if disciplineHint != "" {
		if canonical, isComp := normalize.Discipline(disciplineHint); canonical != "" {
			return canonical, isComp
		}
	}

	// 3. 关键词推断（先名称后描述）
	if d := normalize.InferDiscipline(name); d != "" {
		return d, true
	}
	if description != "" {
		if d := normalize.InferDiscipline(description); d != "" {
			return d, true
		}
	}

	// 4. 兜底
	return "", true
}

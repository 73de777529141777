package normalize

import (
	"regexp"
	"strings"

	"EquiSync/internal/model"
)

// disciplineCanonical 原始项目拼写（小写）→ 规范化类别
var disciplineCanonical = map[string]model.Discipline{
	// Show Jumping
	"showjumping":               model.DisciplineShowJumping,
	"show jumping":              model.DisciplineShowJumping,
	"showjump":                  model.DisciplineShowJumping,
	"british showjumping":       model.DisciplineShowJumping,
	"unaffiliated showjumping":  model.DisciplineShowJumping,
	"unaffiliated show jumping": model.DisciplineShowJumping,
	"equitation jumping":        model.DisciplineShowJumping,
	"sj":                        model.DisciplineShowJumping,
	// Dressage
	"dressage":              model.DisciplineDressage,
	"british dressage":      model.DisciplineDressage,
	"unaffiliated dressage": model.DisciplineDressage,
	"test riding":           model.DisciplineDressage,
	// Eventing
	"eventing":           model.DisciplineEventing,
	"one day event":      model.DisciplineEventing,
	"eventer trial":      model.DisciplineEventing,
	"express eventing":   model.DisciplineEventing,
	"eventers challenge": model.DisciplineEventing,
	"horse trial":        model.DisciplineEventing,
	"horse trials":       model.DisciplineEventing,
	"ode":                model.DisciplineEventing,
	// Cross Country
	"cross country": model.DisciplineCrossCountry,
	"xc":            model.DisciplineCrossCountry,
	"show cross":    model.DisciplineCrossCountry,
	"showcross":     model.DisciplineCrossCountry,
	// Combined Training
	"combined training": model.DisciplineCombinedTraining,
	"ct":                model.DisciplineCombinedTraining,
	// Showing
	"showing":        model.DisciplineShowing,
	"shows":          model.DisciplineShowing,
	"bsps":           model.DisciplineShowing,
	"bsha":           model.DisciplineShowing,
	"working hunter": model.DisciplineShowing,
	// Hunter Trial
	"hunter trial":  model.DisciplineHunterTrial,
	"hunter trials": model.DisciplineHunterTrial,
	// Pony Club
	"pony club": model.DisciplinePonyClub,
	// NSEA
	"nsea": model.DisciplineNSEA,
	// Agricultural Show
	"agricultural show": model.DisciplineAgricultural,
	"county show":       model.DisciplineAgricultural,
	"country show":      model.DisciplineAgricultural,
	// Endurance
	"endurance":     model.DisciplineEndurance,
	"pleasure ride": model.DisciplineEndurance,
	"fun ride":      model.DisciplineEndurance,
	// Gymkhana
	"gymkhana":      model.DisciplineGymkhana,
	"mounted games": model.DisciplineGymkhana,
	// Other
	"polo":               model.DisciplineOther,
	"polocrosse":         model.DisciplineOther,
	"driving":            model.DisciplineOther,
	"carriage driving":   model.DisciplineOther,
	"working equitation": model.DisciplineOther,
	"horseball":          model.DisciplineOther,
	"hobby horse":        model.DisciplineOther,
	"demonstrations":     model.DisciplineOther,
	"demonstration":      model.DisciplineOther,
	"social":             model.DisciplineOther,
	"vip event":          model.DisciplineOther,
	"riding club":        model.DisciplineOther,
	"mixed events":       model.DisciplineOther,
	"other":              model.DisciplineOther,
	// 非比赛：Venue Hire
	"venue hire":        model.DisciplineVenueHire,
	"arena hire":        model.DisciplineVenueHire,
	"arena/course hire": model.DisciplineVenueHire,
	"arena/coursehire":  model.DisciplineVenueHire,
	"xc course hire":    model.DisciplineVenueHire,
	"arena/school hire": model.DisciplineVenueHire,
	"arena booking":     model.DisciplineVenueHire,
	"course hire":       model.DisciplineVenueHire,
	"school hire":       model.DisciplineVenueHire,
	// 非比赛：Training
	"tuition/lessons":  model.DisciplineTraining,
	"tuition":          model.DisciplineTraining,
	"lessons":          model.DisciplineTraining,
	"training clinics": model.DisciplineTraining,
	"training clinic":  model.DisciplineTraining,
	"schooling":        model.DisciplineTraining,
	"clinic":           model.DisciplineTraining,
	"clinics":          model.DisciplineTraining,
	"camps":            model.DisciplineTraining,
	"camp":             model.DisciplineTraining,
	"training":         model.DisciplineTraining,
}

// Discipline 将原始项目文本映射到规范化类别。
// 未知拼写不解析：返回空类别，is_competition 默认 true。
func Discipline(raw string) (model.Discipline, bool) {
	if raw == "" {
		return "", true
	}
	canonical, ok := disciplineCanonical[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return "", true
	}
	return canonical, model.IsCompetitionDiscipline(canonical)
}

// disciplinePatterns 自由文本关键词推断表（仅作分类器内部提示）
var disciplinePatterns = []struct {
	discipline model.Discipline
	re         *regexp.Regexp
}{
	{model.DisciplineShowJumping, regexp.MustCompile(`(?i)show\s*jump|\bSJ\b|\bBS\s`)},
	{model.DisciplineDressage, regexp.MustCompile(`(?i)dressage|\bBD\b`)},
	{model.DisciplineEventing, regexp.MustCompile(`(?i)eventing|one.day.event|\bODE\b|horse\s*trial|\bBE\b`)},
	{model.DisciplineCrossCountry, regexp.MustCompile(`(?i)cross\s*country|\bXC\b|show.?cross|arena\s*eventing`)},
	{model.DisciplineCombinedTraining, regexp.MustCompile(`(?i)combined\s*training|\bCT\b`)},
	{model.DisciplineHunterTrial, regexp.MustCompile(`(?i)hunter\s*trial`)},
	{model.DisciplineShowing, regexp.MustCompile(`(?i)\bshowing\b|working\s*hunter`)},
	{model.DisciplinePonyClub, regexp.MustCompile(`(?i)pony\s*club`)},
	{model.DisciplineNSEA, regexp.MustCompile(`(?i)\bNSEA\b`)},
	{model.DisciplineAgricultural, regexp.MustCompile(`(?i)agricultural\s*show|county\s*show`)},
	{model.DisciplineEndurance, regexp.MustCompile(`(?i)endurance|pleasure\s*ride`)},
	{model.DisciplineGymkhana, regexp.MustCompile(`(?i)gymkhana|mounted\s*games`)},
}

// InferDiscipline 从赛事名称/描述推断项目类别，无法判断返回空
func InferDiscipline(text string) model.Discipline {
	for _, p := range disciplinePatterns {
		if p.re.MatchString(text) {
			return p.discipline
		}
	}
	return ""
}

// 小马/青少年级别关键词
var ponyKeywords = []string{
	"pony", "ponies", "junior", "u18", "under 18",
	"u16", "under 16", "u14", "under 14",
	"trailblazer", "nsea",
}

// DetectPonyClasses 文本含任一小马/青少年关键词时返回 true
func DetectPonyClasses(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range ponyKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

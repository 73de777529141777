package model

// Discipline 规范化项目类别（15类，仅由分类器产出）
type Discipline string

const (
	DisciplineShowJumping      Discipline = "Show Jumping"
	DisciplineDressage         Discipline = "Dressage"
	DisciplineEventing         Discipline = "Eventing"
	DisciplineCrossCountry     Discipline = "Cross Country"
	DisciplineCombinedTraining Discipline = "Combined Training"
	DisciplineShowing          Discipline = "Showing"
	DisciplineHunterTrial      Discipline = "Hunter Trial"
	DisciplinePonyClub         Discipline = "Pony Club"
	DisciplineNSEA             Discipline = "NSEA"
	DisciplineAgricultural     Discipline = "Agricultural Show"
	DisciplineEndurance        Discipline = "Endurance"
	DisciplineGymkhana         Discipline = "Gymkhana"
	DisciplineOther            Discipline = "Other"
	// 非比赛类别
	DisciplineVenueHire Discipline = "Venue Hire"
	DisciplineTraining  Discipline = "Training"
)

// AllDisciplines 全部规范化类别（项目审计用）
var AllDisciplines = []Discipline{
	DisciplineShowJumping, DisciplineDressage, DisciplineEventing,
	DisciplineCrossCountry, DisciplineCombinedTraining, DisciplineShowing,
	DisciplineHunterTrial, DisciplinePonyClub, DisciplineNSEA,
	DisciplineAgricultural, DisciplineEndurance, DisciplineGymkhana,
	DisciplineOther, DisciplineVenueHire, DisciplineTraining,
}

// IsCompetitionDiscipline 非比赛类别只有 Venue Hire 和 Training
func IsCompetitionDiscipline(d Discipline) bool {
	return d != DisciplineVenueHire && d != DisciplineTraining
}

// Scan 状态机：pending → running → (completed | failed)
const (
	ScanStatusPending   = "pending"
	ScanStatusRunning   = "running"
	ScanStatusCompleted = "completed"
	ScanStatusFailed    = "failed"
)

// 扫描触发方式：调度器触发才会跑项目审计
const (
	TriggerScheduled = "scheduled"
	TriggerManual    = "manual"
)

// 场地占位名：规范化判定为垃圾输入时的兜底
const VenuePlaceholder = "Tbc"

// AppSetting 键
const SettingHomePostcode = "home_postcode"

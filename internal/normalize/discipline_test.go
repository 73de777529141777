package normalize

import (
	"testing"

	"EquiSync/internal/model"
)

func TestDiscipline(t *testing.T) {
	tests := []struct {
		in       string
		want     model.Discipline
		wantComp bool
	}{
		{"showjumping", model.DisciplineShowJumping, true},
		{"Show Jumping", model.DisciplineShowJumping, true},
		{"showjump", model.DisciplineShowJumping, true},
		{"SJ", model.DisciplineShowJumping, true},
		{"british dressage", model.DisciplineDressage, true},
		{"Horse Trials", model.DisciplineEventing, true},
		{"xc", model.DisciplineCrossCountry, true},
		{"ct", model.DisciplineCombinedTraining, true},
		{"working hunter", model.DisciplineShowing, true},
		{"hunter trials", model.DisciplineHunterTrial, true},
		{"pony club", model.DisciplinePonyClub, true},
		{"nsea", model.DisciplineNSEA, true},
		{"county show", model.DisciplineAgricultural, true},
		{"pleasure ride", model.DisciplineEndurance, true},
		{"mounted games", model.DisciplineGymkhana, true},
		{"polo", model.DisciplineOther, true},
		// 非比赛类别
		{"arena hire", model.DisciplineVenueHire, false},
		{"course hire", model.DisciplineVenueHire, false},
		{"clinic", model.DisciplineTraining, false},
		{"camps", model.DisciplineTraining, false},
		{"Training", model.DisciplineTraining, false},
		// 未知拼写不解析
		{"", "", true},
		{"underwater basket weaving", "", true},
	}
	for _, tt := range tests {
		got, comp := Discipline(tt.in)
		if got != tt.want || comp != tt.wantComp {
			t.Errorf("Discipline(%q) = (%q, %v), want (%q, %v)", tt.in, got, comp, tt.want, tt.wantComp)
		}
	}
}

func TestInferDiscipline(t *testing.T) {
	tests := []struct {
		in   string
		want model.Discipline
	}{
		{"Unaffiliated Showjumping 80cm", model.DisciplineShowJumping},
		{"Spring Dressage Series", model.DisciplineDressage},
		{"One Day Event at Osberton", model.DisciplineEventing},
		{"XC Schooling Morning", model.DisciplineCrossCountry},
		{"Hunter Trial Open", model.DisciplineHunterTrial},
		{"Working Hunter Classes", model.DisciplineShowing},
		{"Sponsored Pleasure Ride", model.DisciplineEndurance},
		{"NSEA Qualifier", model.DisciplineNSEA},
		{"Summer Gymkhana", model.DisciplineGymkhana},
		{"Wine Tasting Evening", ""},
	}
	for _, tt := range tests {
		if got := InferDiscipline(tt.in); got != tt.want {
			t.Errorf("InferDiscipline(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDetectPonyClasses(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"Senior and Pony Show Jumping", true},
		{"Junior Dressage", true},
		{"U18 League", true},
		{"Trailblazers First Round", true},
		{"Open Showing", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := DetectPonyClasses(tt.in); got != tt.want {
			t.Errorf("DetectPonyClasses(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

package parser

import "testing"

func TestRepairJSONArray(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"完整数组",
			`[{"name":"A"},{"name":"B"}]`,
			`[{"name":"A"},{"name":"B"}]`,
		},
		{
			"前后有解释文字",
			"Here are the events:\n[{\"name\":\"A\"}]\nDone.",
			`[{"name":"A"}]`,
		},
		{
			"截断输出补闭合",
			`[{"name":"A","venue_name":"X"},{"name":"B","venue_na`,
			`[{"name":"A","venue_name":"X"}]`,
		},
		{
			"没有数组",
			`I could not find any events.`,
			"",
		},
		{
			"只有左括号",
			`[`,
			"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := repairJSONArray(tt.in); got != tt.want {
				t.Errorf("repairJSONArray(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestToISODate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2026-02-25", "2026-02-25"},
		{"2026-02-25 09:00:00", "2026-02-25"},
		{"25/02/2026", "2026-02-25"},
		{"25 February 2026", "2026-02-25"},
		{"not a date", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := toISODate(tt.in); got != tt.want {
			t.Errorf("toISODate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseLDEvents(t *testing.T) {
	single := `{"@type":"Event","name":"Spring Show","startDate":"2026-04-12",
		"location":{"name":"Allens Hill","address":{"postalCode":"WR10 2DH"}}}`
	if got := parseLDEvents([]byte(single)); len(got) != 1 || got[0].Name != "Spring Show" {
		t.Errorf("单对象解析失败: %+v", got)
	}

	graph := `{"@graph":[{"@type":"WebPage"},{"@type":"Event","name":"Summer Show",
		"startDate":"2026-06-01","location":{"name":"Arena UK"}}]}`
	if got := parseLDEvents([]byte(graph)); len(got) != 1 || got[0].Name != "Summer Show" {
		t.Errorf("@graph解析失败: %+v", got)
	}

	list := `[{"@type":"Event","name":"A"},{"@type":"Thing","name":"B"}]`
	if got := parseLDEvents([]byte(list)); len(got) != 1 || got[0].Name != "A" {
		t.Errorf("数组解析失败: %+v", got)
	}

	if got := parseLDEvents([]byte(`not json`)); len(got) != 0 {
		t.Errorf("非JSON输入应返回空: %+v", got)
	}
}

func TestRegistryFallback(t *testing.T) {
	deps := Deps{}
	if p := Get("no_such_key", deps); p == nil {
		t.Fatal("未注册key应回落到通用解析器")
	} else if _, ok := p.(*GenericParser); !ok {
		t.Errorf("未注册key应返回GenericParser，实际 %T", p)
	}
	if !Has("arena_uk") {
		t.Error("arena_uk 应已通过init注册")
	}
	if p := Get("arena_uk", deps); p == nil {
		t.Fatal("已注册key应返回专用解析器")
	} else if _, ok := p.(*arenaUKParser); !ok {
		t.Errorf("arena_uk 应返回arenaUKParser，实际 %T", p)
	}
}

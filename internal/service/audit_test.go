package service

import (
	"context"
	"testing"
	"time"

	"EquiSync/internal/model"
)

// 项目审计：漂移值被改写成规范化值，is_competition 同步修正
func TestAuditDisciplines(t *testing.T) {
	env := newTestEnv(t, "test_source")
	ctx := context.Background()

	venue := &model.Venue{CanonicalName: "Audit Grounds"}
	if err := env.venues.Create(ctx, venue); err != nil {
		t.Fatal(err)
	}

	drifted := "showjumping"
	hire := "arena hire"
	canonical := "Dressage"
	now := time.Now().UTC()
	rows := []*model.Competition{
		{SourceID: env.source.ID, Name: "A", DateStart: now, VenueID: venue.ID,
			Discipline: &drifted, IsCompetition: true, FirstSeenAt: now, LastSeenAt: now},
		{SourceID: env.source.ID, Name: "B", DateStart: now, VenueID: venue.ID,
			Discipline: &hire, IsCompetition: true, FirstSeenAt: now, LastSeenAt: now},
		{SourceID: env.source.ID, Name: "C", DateStart: now, VenueID: venue.ID,
			Discipline: &canonical, IsCompetition: true, FirstSeenAt: now, LastSeenAt: now},
	}
	for _, r := range rows {
		if err := env.db.Create(r).Error; err != nil {
			t.Fatal(err)
		}
	}

	if err := env.svc.AuditDisciplines(ctx); err != nil {
		t.Fatal(err)
	}

	var a, b, c model.Competition
	env.db.Where("name = ?", "A").First(&a)
	env.db.Where("name = ?", "B").First(&b)
	env.db.Where("name = ?", "C").First(&c)

	if a.Discipline == nil || *a.Discipline != "Show Jumping" || !a.IsCompetition {
		t.Errorf("漂移值应改写: %+v", a.Discipline)
	}
	if b.Discipline == nil || *b.Discipline != "Venue Hire" || b.IsCompetition {
		t.Errorf("非比赛类别应同步修正标志: %+v %v", b.Discipline, b.IsCompetition)
	}
	if c.Discipline == nil || *c.Discipline != "Dressage" || !c.IsCompetition {
		t.Errorf("已规范化的值不应变化: %+v", c.Discipline)
	}
}

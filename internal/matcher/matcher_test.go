package matcher

import (
	"context"
	"sync"
	"testing"

	"EquiSync/internal/model"
	"EquiSync/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.Venue{}, &model.VenueAlias{}); err != nil {
		t.Fatalf("迁移失败: %v", err)
	}
	return db
}

func newTestMatcher(t *testing.T) (*Matcher, repository.VenueRepository) {
	t.Helper()
	db := newTestDB(t)
	repo := repository.NewVenueRepository(db)
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	m := New(repo, log)

	ctx := context.Background()
	pc := "WR10 2DH"
	venue := &model.Venue{CanonicalName: "Allens Hill Competition Centre", Postcode: &pc}
	if err := repo.Create(ctx, venue); err != nil {
		t.Fatalf("建种子场地失败: %v", err)
	}
	if err := repo.CreateAlias(ctx, &model.VenueAlias{
		AliasName: "Allens Hill", VenueID: venue.ID, Origin: "seed",
	}); err != nil {
		t.Fatalf("建种子别名失败: %v", err)
	}
	if err := m.Rebuild(ctx); err != nil {
		t.Fatalf("重建索引失败: %v", err)
	}
	return m, repo
}

// 种子别名与规范化名落到同一场地（别名收敛）
func TestResolveAlias(t *testing.T) {
	m, _ := newTestMatcher(t)
	ctx := context.Background()

	id1, err := m.Resolve(ctx, "Allens Hill Competition Centre", "")
	if err != nil {
		t.Fatal(err)
	}
	id2, err := m.Resolve(ctx, "Allens Hill", "")
	if err != nil {
		t.Fatal(err)
	}
	if id1 != id2 {
		t.Errorf("规范化名与别名应解析到同一场地: %d vs %d", id1, id2)
	}
}

// 唯一前缀命中：输入名是某个规范化名的前缀
func TestResolvePrefix(t *testing.T) {
	m, repo := newTestMatcher(t)
	ctx := context.Background()

	if err := repo.Create(ctx, &model.Venue{CanonicalName: "Eland Lodge Equestrian"}); err != nil {
		t.Fatal(err)
	}
	if err := m.Rebuild(ctx); err != nil {
		t.Fatal(err)
	}

	id, err := m.Resolve(ctx, "Eland Lodge", "")
	if err != nil {
		t.Fatal(err)
	}
	v, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if v.CanonicalName != "Eland Lodge Equestrian" {
		t.Errorf("前缀应命中已有场地，实际新建了 %q", v.CanonicalName)
	}
}

// 前缀歧义（≥2个候选）不匹配，走新建
func TestResolvePrefixAmbiguous(t *testing.T) {
	m, repo := newTestMatcher(t)
	ctx := context.Background()

	for _, name := range []string{"Hall Place One", "Hall Place Two"} {
		if err := repo.Create(ctx, &model.Venue{CanonicalName: name}); err != nil {
			t.Fatal(err)
		}
	}
	if err := m.Rebuild(ctx); err != nil {
		t.Fatal(err)
	}

	id, err := m.Resolve(ctx, "Hall Place", "")
	if err != nil {
		t.Fatal(err)
	}
	v, _ := repo.GetByID(ctx, id)
	if v.CanonicalName != "Hall Place" {
		t.Errorf("歧义前缀应新建场地，实际命中 %q", v.CanonicalName)
	}
}

// 唯一邮编命中并学习运行期别名
func TestResolvePostcodeLearnsAlias(t *testing.T) {
	m, repo := newTestMatcher(t)
	ctx := context.Background()

	id, err := m.Resolve(ctx, "Completely Different Name", "WR10 2DH")
	if err != nil {
		t.Fatal(err)
	}
	v, _ := repo.GetByID(ctx, id)
	if v.CanonicalName != "Allens Hill Competition Centre" {
		t.Fatalf("邮编应命中种子场地，实际 %q", v.CanonicalName)
	}

	// 学到的别名此后直接命中（不再依赖邮编）
	id2, err := m.Resolve(ctx, "Completely Different Name", "")
	if err != nil {
		t.Fatal(err)
	}
	if id2 != id {
		t.Errorf("运行期别名应命中同一场地: %d vs %d", id2, id)
	}

	aliases, _ := repo.ListAliases(ctx)
	found := false
	for _, a := range aliases {
		if a.AliasName == "Completely Different Name" && a.Origin == "runtime" {
			found = true
		}
	}
	if !found {
		t.Error("运行期别名未持久化")
	}
}

// 歧义名守卫：歧义表中的短名且无邮编时跳过别名匹配
func TestResolveAmbiguousGuard(t *testing.T) {
	m, repo := newTestMatcher(t)
	ctx := context.Background()

	if err := repo.Create(ctx, &model.Venue{CanonicalName: "Abbey"}); err != nil {
		t.Fatal(err)
	}
	if err := m.Rebuild(ctx); err != nil {
		t.Fatal(err)
	}

	// 无邮编：不得精确命中已有的 "Abbey"（跳过别名匹配后前缀也不会命中）
	id, err := m.Resolve(ctx, "Abbey", "")
	if err != nil {
		t.Fatal(err)
	}
	v, _ := repo.GetByID(ctx, id)
	if v.CanonicalName != "Abbey" {
		t.Fatalf("解析结果异常: %q", v.CanonicalName)
	}
	// 无邮编时跳过别名匹配 → 新建路径撞唯一索引 → 回读取胜者，仍是同一行
	var count int64
	aliases, _ := repo.ListAliases(ctx)
	_ = aliases
	if err := repoCount(repo, ctx, &count); err != nil {
		t.Fatal(err)
	}
	if count != 2 { // 种子场地 + Abbey
		t.Errorf("场地数应为2，实际 %d", count)
	}

	// 有邮编佐证时正常走别名匹配
	if _, err := m.Resolve(ctx, "Abbey", "ZZ99 9ZZ"); err != nil {
		t.Fatal(err)
	}
}

func repoCount(repo repository.VenueRepository, ctx context.Context, out *int64) error {
	list, err := repo.ListAll(ctx)
	if err != nil {
		return err
	}
	*out = int64(len(list))
	return nil
}

// 并发解析同一规范化名只产生一行
func TestResolveConcurrentCreate(t *testing.T) {
	m, repo := newTestMatcher(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	ids := make([]uint64, 8)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := m.Resolve(ctx, "Brand New Venue", "")
			if err != nil {
				t.Errorf("并发解析失败: %v", err)
				return
			}
			ids[i] = id
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		if id != ids[0] {
			t.Fatalf("并发解析产生了不同场地: %v", ids)
		}
	}
	var count int64
	if err := repoCount(repo, ctx, &count); err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("并发新建应只产生一行，场地总数 %d", count)
	}
}

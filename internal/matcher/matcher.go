package matcher

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"EquiSync/internal/model"
	"EquiSync/internal/repository"
	"EquiSync/internal/seed"

	"github.com/sirupsen/logrus"
)

// 匹配方式（计数用，随扫描日志输出）
const (
	MatchAlias    = "alias"
	MatchPrefix   = "prefix"
	MatchPostcode = "postcode"
	MatchNew      = "new"
)

// Matcher 场地身份解析器。内存索引在扫描批次开始时重建，
// 解析成功会继续写索引；索引是唯一的跨扫描共享可变状态，
// resolve→insert 临界区由互斥锁保护，并发扫描对同一规范化名
// 只会产生一个场地行。
type Matcher struct {
	repo   repository.VenueRepository
	logger *logrus.Logger

	mu         sync.Mutex
	byAlias    map[string]uint64   // 规范化别名（小写）→ 场地ID（含每个场地的自指名）
	byPostcode map[string][]uint64 // 规范化邮编 → 场地ID列表
	byPrefix   map[string][]uint64 // 查询前缀 → 场地ID列表（惰性计算）
	names      map[uint64]string   // 场地ID → 规范化名
	counters   map[string]int
}

func New(repo repository.VenueRepository, logger *logrus.Logger) *Matcher {
	return &Matcher{
		repo:   repo,
		logger: logger,
	}
}

// Rebuild 从数据库重建内存索引（每轮扫描批次开始时调用）
func (m *Matcher) Rebuild(ctx context.Context) error {
	venues, err := m.repo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("加载场地失败: %w", err)
	}
	aliases, err := m.repo.ListAliases(ctx)
	if err != nil {
		return fmt.Errorf("加载别名失败: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.byAlias = make(map[string]uint64, len(venues)+len(aliases))
	m.byPostcode = make(map[string][]uint64)
	m.byPrefix = make(map[string][]uint64)
	m.names = make(map[uint64]string, len(venues))
	m.counters = make(map[string]int)

	for _, v := range venues {
		m.indexVenueLocked(v)
	}
	for _, a := range aliases {
		m.byAlias[strings.ToLower(a.AliasName)] = a.VenueID
	}

	m.logger.WithFields(logrus.Fields{
		"venues":  len(venues),
		"aliases": len(aliases),
	}).Info("场地索引重建完成")
	return nil
}

// indexVenueLocked 把场地挂进三个索引（调用方持锁）
func (m *Matcher) indexVenueLocked(v *model.Venue) {
	m.byAlias[strings.ToLower(v.CanonicalName)] = v.ID
	m.names[v.ID] = v.CanonicalName
	if v.Postcode != nil && *v.Postcode != "" {
		key := strings.ToUpper(*v.Postcode)
		m.byPostcode[key] = append(m.byPostcode[key], v.ID)
	}
	// 前缀缓存失效：新场地可能命中已缓存的前缀
	m.byPrefix = make(map[string][]uint64)
}

// Resolve 解析 (规范化名, 规范化邮编) 到场地ID，必要时新建场地。
// 匹配顺序：精确别名 → 唯一前缀 → 唯一邮编（并学习别名）→ 新建。
// 歧义名守卫：名字在歧义表里且没有邮编时跳过别名匹配。
func (m *Matcher) Resolve(ctx context.Context, name, postcode string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// 1. 精确别名
	if !(seed.AmbiguousNames[name] && postcode == "") {
		if id, ok := m.byAlias[strings.ToLower(name)]; ok {
			m.counters[MatchAlias]++
			return id, nil
		}
	}

	// 2. 唯一前缀：恰有一个场地的规范化名以 name+" " 开头
	if ids := m.prefixLookupLocked(name); len(ids) == 1 {
		m.counters[MatchPrefix]++
		m.logger.WithFields(logrus.Fields{
			"name": name, "venue": m.names[ids[0]],
		}).Debug("前缀命中场地")
		return ids[0], nil
	}

	// 3. 唯一邮编：命中后把本名学习为运行期别名
	if postcode != "" {
		if ids := m.byPostcode[strings.ToUpper(postcode)]; len(ids) == 1 {
			id := ids[0]
			m.counters[MatchPostcode]++
			alias := &model.VenueAlias{AliasName: name, VenueID: id, Origin: "runtime"}
			if err := m.repo.CreateAlias(ctx, alias); err != nil {
				m.logger.WithError(err).WithField("alias", name).Warn("运行期别名写入失败")
			} else {
				m.byAlias[strings.ToLower(name)] = id
				m.logger.WithFields(logrus.Fields{
					"alias": name, "venue": m.names[id],
				}).Info("邮编命中场地，学习为别名")
			}
			return id, nil
		}
	}

	// 4. 新建场地。撞唯一索引说明并发扫描先建了同名场地：回读取胜者ID
	venue := &model.Venue{CanonicalName: name}
	if postcode != "" {
		pc := postcode
		venue.Postcode = &pc
	}
	if err := m.repo.Create(ctx, venue); err != nil {
		return 0, fmt.Errorf("新建场地%s失败: %w", name, err)
	}
	if venue.ID == 0 {
		winner, err := m.repo.GetByName(ctx, name)
		if err != nil {
			return 0, fmt.Errorf("回读场地%s失败: %w", name, err)
		}
		venue = winner
	}
	m.indexVenueLocked(venue)
	m.counters[MatchNew]++
	m.logger.WithField("venue", name).Info("新建场地")
	return venue.ID, nil
}

// prefixLookupLocked 惰性前缀索引：首次查询某前缀时扫描全部规范化名
func (m *Matcher) prefixLookupLocked(name string) []uint64 {
	if ids, ok := m.byPrefix[name]; ok {
		return ids
	}
	prefix := name + " "
	var ids []uint64
	for id, canonical := range m.names {
		if strings.HasPrefix(canonical, prefix) {
			ids = append(ids, id)
		}
	}
	m.byPrefix[name] = ids
	return ids
}

// Counters 各匹配方式的计数快照（扫描日志用）
func (m *Matcher) Counters() map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int, len(m.counters))
	for k, v := range m.counters {
		out[k] = v
	}
	return out
}

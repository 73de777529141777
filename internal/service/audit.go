package service

import (
	"context"

	"EquiSync/internal/model"
	"EquiSync/internal/normalize"

	"github.com/sirupsen/logrus"
)

// AuditDisciplines 项目词汇审计：把库里漂移的 discipline 值重新规范化。
// 只跟在调度触发的扫描后面跑；手动扫描跳过以保证快速返回。
func (s *ScanService) AuditDisciplines(ctx context.Context) error {
	values, err := s.compRepo.ListDisciplines(ctx)
	if err != nil {
		return err
	}

	canonicalSet := make(map[string]bool, len(model.AllDisciplines))
	for _, d := range model.AllDisciplines {
		canonicalSet[string(d)] = true
	}

	fixed := int64(0)
	for _, v := range values {
		canonical, isComp := normalize.Discipline(v)
		switch {
		case canonical != "" && string(canonical) != v:
			n, err := s.compRepo.UpdateDiscipline(ctx, v, string(canonical), isComp)
			if err != nil {
				return err
			}
			s.logger.WithFields(logrus.Fields{
				"from": v, "to": string(canonical), "rows": n,
			}).Info("项目审计改写")
			fixed += n
		case canonical == "" && !canonicalSet[v]:
			s.logger.WithField("discipline", v).Warn("发现未映射的项目值")
		}
	}

	if fixed > 0 {
		s.logger.WithField("rows", fixed).Info("项目审计完成，有改写")
	} else {
		s.logger.Info("项目审计完成，全部值已规范化")
	}
	return nil
}

package service

import (
	"context"
	"engdis_bot/internal/model"
)

// ProgressService 汇总进度数据供菜单层渲染
type ProgressService struct {
	Course CourseService
}

func NewProgressService(course CourseService) *ProgressService {
	return &ProgressService{Course: course}
}

func (s *ProgressService) UnitProgress(ctx context.Context) ([]model.UnitProgress, error) {
	units, err := s.Course.GetDefaultCourseProgress(ctx)
	if err != nil {
		return nil, err
	}
	return toProgress(units), nil
}

// LevelProgress 返回选中 unit 下各 level 的进度
func (s *ProgressService) LevelProgress(ctx context.Context, unit model.CourseNode) ([]model.UnitProgress, error) {
	levels, err := s.Course.GetCourseTree(ctx, unit.NodeID, unit.ParentNodeID)
	if err != nil {
		return nil, err
	}
	return toProgress(levels), nil
}

func toProgress(nodes []model.CourseNode) []model.UnitProgress {
	res := make([]model.UnitProgress, len(nodes))
	for i, n := range nodes {
		p := model.UnitProgress{
			Name:      n.Name,
			Completed: n.Completed,
			Total:     n.Total,
		}
		if p.Total > 0 {
			p.Percent = p.Completed * 100 / p.Total
		}
		res[i] = p
	}
	return res
}

package service

import (
	"context"
	"engdis_bot/internal/model"
	"engdis_bot/pkg/logger"
	"engdis_bot/pkg/monitoring"

	"go.uber.org/zap"
)

// AssignmentService 驱动课程树遍历：unit → level → assignment，把普通
// assignment 的任务直接标记完成，把名为 "Test" 的 assignment 交给
// TestService 处理。
type AssignmentService struct {
	Course CourseService
	Tests  *TestService
}

func NewAssignmentService(course CourseService, tests *TestService) *AssignmentService {
	return &AssignmentService{Course: course, Tests: tests}
}

// ResolveAssignment 处理一个 level 下的全部 assignment。子节点顺序保持
// 服务端返回的顺序，不排序不去重。
func (s *AssignmentService) ResolveAssignment(ctx context.Context, unit, level model.CourseNode) error {
	if len(level.Children) == 0 {
		logger.Log.Info("level has no assignments",
			zap.String("unit", unit.Name),
			zap.String("level", level.Name))
		return nil
	}

	for _, assignment := range level.Children {
		if err := ctx.Err(); err != nil {
			return err
		}

		if !assignment.IsAssessment() {
			logger.Log.Info("working on assignment",
				zap.String("level", level.Name),
				zap.String("assignment", assignment.Name))
			if err := s.completeTasks(ctx, unit, assignment); err != nil {
				return err
			}
			continue
		}

		logger.Log.Info("working on test",
			zap.String("level", level.Name),
			zap.String("code", level.Metadata.Code))
		if err := s.Tests.ResolveTest(ctx, level.Metadata.Code, level.NodeID, level.ParentNodeID); err != nil {
			if ctx.Err() != nil {
				return err
			}
			// 远程失败只放弃当前测试，后续 assignment 照常处理
			logger.Log.Error("test abandoned",
				zap.String("level", level.Name),
				zap.String("code", level.Metadata.Code),
				zap.Error(err))
		}
	}
	return nil
}

// completeTasks 把一个普通 assignment 下的任务逐个标记完成。单个任务
// 失败只记日志，不影响其余任务。
func (s *AssignmentService) completeTasks(ctx context.Context, unit, assignment model.CourseNode) error {
	if len(assignment.Children) == 0 {
		logger.Log.Info("assignment has no tasks", zap.String("assignment", assignment.Name))
		return nil
	}

	for _, task := range assignment.Children {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := s.Course.SetSuccessTask(ctx, unit.ParentNodeID, task.NodeID); err != nil {
			logger.Log.Warn("mark task complete failed",
				zap.String("task", task.NodeID.String()),
				zap.Error(err))
			continue
		}
		monitoring.TasksCompleted.Inc()
	}
	return nil
}

// ResolveAllAssignments 遍历所有 unit 的所有 level。一个 unit 的课程树
// 拉取失败不影响其余 unit。
func (s *AssignmentService) ResolveAllAssignments(ctx context.Context) error {
	units, err := s.Course.GetDefaultCourseProgress(ctx)
	if err != nil {
		return err
	}

	for _, unit := range units {
		if err := ctx.Err(); err != nil {
			return err
		}

		logger.Log.Info("processing unit", zap.String("unit", unit.Name))
		levels, err := s.Course.GetCourseTree(ctx, unit.NodeID, unit.ParentNodeID)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			logger.Log.Error("fetch course tree failed", zap.String("unit", unit.Name), zap.Error(err))
			continue
		}
		if len(levels) == 0 {
			logger.Log.Info("unit has no levels", zap.String("unit", unit.Name))
			continue
		}

		for _, level := range levels {
			if err := s.ResolveAssignment(ctx, unit, level); err != nil {
				return err
			}
		}
	}
	return nil
}

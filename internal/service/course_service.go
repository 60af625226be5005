package service

import (
	"context"
	"engdis_bot/internal/model"
)

// CourseService 是引擎消费的课程服务接口，由 internal/engdis 的 HTTP
// 客户端实现。所有调用都是阻塞的单次往返。
type CourseService interface {
	GetDefaultCourseProgress(ctx context.Context) ([]model.CourseNode, error)
	GetCourseTree(ctx context.Context, nodeID, parentNodeID model.ID) ([]model.CourseNode, error)
	SetSuccessTask(ctx context.Context, parentNodeID, taskNodeID model.ID) (bool, error)
	GetTestCodeDigit(ctx context.Context, code string) (*model.TestBank, error)
	PracticeGetItem(ctx context.Context, taskCode string) (*model.PracticeItem, error)
	SaveUserTest(ctx context.Context, nodeID, parentNodeID model.ID, items []model.SubmissionItem) (*model.TestResult, error)
}

package service

import (
	"context"
	"engdis_bot/internal/model"
	"engdis_bot/internal/util"
	"engdis_bot/pkg/logger"
	"engdis_bot/pkg/monitoring"
	"errors"

	"go.uber.org/zap"
)

// TestService 处理计分测试：按 code 拉取题库，为每个任务合成作答，
// 提交后按成绩决定是否把载荷送人工复核。
type TestService struct {
	Course CourseService
	Policy *SelectionPolicy
	Pacer  *Pacer
	Sink   ReviewSink
}

func NewTestService(course CourseService, policy *SelectionPolicy, pacer *Pacer, sink ReviewSink) *TestService {
	return &TestService{Course: course, Policy: policy, Pacer: pacer, Sink: sink}
}

// ResolveTest 完成一个测试。远程调用失败会放弃整个测试且不做部分提交；
// 单个任务的数据问题只跳过该任务。
func (s *TestService) ResolveTest(ctx context.Context, code string, nodeID, parentNodeID model.ID) error {
	bank, err := s.Course.GetTestCodeDigit(ctx, code)
	if err != nil {
		return err
	}

	items := make([]model.SubmissionItem, 0, len(bank.Tasks))
	for _, task := range bank.Tasks {
		// 取消信号只在任务边界检查，避免提交半成品
		if err := ctx.Err(); err != nil {
			return err
		}

		item, err := s.synthesizeTask(ctx, task)
		if err != nil {
			if errors.Is(err, util.ErrMalformedQuestionBank) || errors.Is(err, util.ErrEmptyAnswerSet) {
				logger.Log.Warn("skipping test task",
					zap.String("taskCode", task.Code),
					zap.Error(err))
				continue
			}
			return err
		}
		items = append(items, *item)

		if err := s.Pacer.TypingDelay(ctx); err != nil {
			return err
		}
	}

	if s.Pacer.WithholdSubmission() {
		logger.Log.Info("withholding submission this round", zap.String("code", code))
		return nil
	}

	result, err := s.Course.SaveUserTest(ctx, nodeID, parentNodeID, items)
	if err != nil {
		return err
	}

	if result.Perfect() {
		monitoring.TestsSubmitted.WithLabelValues("accepted").Inc()
		logger.Log.Info("test accepted", zap.String("code", code), zap.String("finalMark", result.FinalMark))
		return nil
	}

	// 非满分：载荷送人工复核，本轮不再自动重试
	monitoring.TestsSubmitted.WithLabelValues("flagged").Inc()
	logger.Log.Warn("test flagged for manual review",
		zap.String("code", code),
		zap.String("finalMark", result.FinalMark))
	if err := s.Sink.Export(items); err != nil {
		logger.Log.Error("review export failed", zap.Error(err))
	}
	return nil
}

// synthesizeTask 为一个任务构建提交载荷单元
func (s *TestService) synthesizeTask(ctx context.Context, task model.TestTask) (*model.SubmissionItem, error) {
	item, err := s.Course.PracticeGetItem(ctx, task.Code)
	if err != nil {
		return nil, err
	}

	questions := item.MergedQuestions()
	if len(questions) == 0 {
		return nil, util.ErrEmptyAnswerSet
	}

	if err := s.Pacer.NavigationDelay(ctx); err != nil {
		return nil, err
	}

	submission := &model.SubmissionItem{
		TaskID:   task.ID,
		TaskCode: task.Code,
		TaskType: task.Type,
	}

	// 第一道题带正确标记时走标准路径，否则所有题目统一兜底
	if len(questions[0].CorrectAnswers()) > 0 {
		pairs := make([][2]model.ID, 0, len(questions))
		for _, q := range questions {
			correct := q.CorrectAnswers()
			if len(correct) == 0 {
				return nil, util.ErrMalformedQuestionBank
			}
			pairs = append(pairs, [2]model.ID{q.ID, s.Policy.SelectAnswer(correct)})
		}
		submission.UA = []model.UserAnswer{{QID: 1, AID: pairs}}
		return submission, nil
	}

	// 兜底：没有任何答案被标记为正确，逐题取第一个候选。这是退化的
	// 盲猜，只保证载荷结构完整，几乎必然被判低分后送人工复核。
	ua := make([]model.UserAnswer, 0, len(questions))
	for _, q := range questions {
		if len(q.Answers) == 0 {
			return nil, util.ErrEmptyAnswerSet
		}
		ua = append(ua, model.UserAnswer{
			QID: "1",
			AID: [][2]model.ID{{q.ID, q.Answers[0].ID}},
		})
	}
	submission.UA = ua
	return submission, nil
}

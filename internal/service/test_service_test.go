package service

import (
	"context"
	"encoding/json"
	"engdis_bot/internal/config"
	"engdis_bot/internal/model"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ans(id model.ID, correct bool) model.Answer {
	return model.Answer{ID: id, Correct: correct}
}

func question(id model.ID, answers ...model.Answer) model.Question {
	return model.Question{ID: id, Answers: answers}
}

func newTestService(course *fakeCourse, sink ReviewSink) *TestService {
	if sink == nil {
		sink = &recordSink{}
	}
	return NewTestService(course, seededPolicy(1), noDelayPacer(), sink)
}

// 单片段、一道题、四个答案、一个正确：必然选中被标记的那个
func TestResolveTestSingleCorrectAnswer(t *testing.T) {
	course := newFakeCourse()
	course.banks["code1"] = &model.TestBank{Tasks: []model.TestTask{{ID: "t1", Code: "T1", Type: "2"}}}
	course.items["T1"] = &model.PracticeItem{Parts: []model.QuestionPart{
		{Questions: []model.Question{
			question("q1", ans("a1", false), ans("a2", false), ans("a3", true), ans("a4", false)),
		}},
	}}

	svc := newTestService(course, nil)
	require.NoError(t, svc.ResolveTest(context.Background(), "code1", "n1", "p1"))

	require.Len(t, course.saveCalls, 1)
	call := course.saveCalls[0]
	assert.Equal(t, model.ID("n1"), call.nodeID)
	assert.Equal(t, model.ID("p1"), call.parentNodeID)
	require.Len(t, call.items, 1)

	item := call.items[0]
	assert.Equal(t, model.ID("t1"), item.TaskID)
	assert.Equal(t, "T1", item.TaskCode)
	require.Len(t, item.UA, 1)
	assert.Equal(t, 1, item.UA[0].QID)
	require.Len(t, item.UA[0].AID, 1)
	assert.Equal(t, [2]model.ID{"q1", "a3"}, item.UA[0].AID[0])
}

// 两个片段（2+3 道题）合并成 5 道，每道题恰好产生一条 (题目, 答案) 选择
func TestResolveTestMergesFragmentsOneSelectionPerQuestion(t *testing.T) {
	course := newFakeCourse()
	course.banks["code1"] = &model.TestBank{Tasks: []model.TestTask{{ID: "t1", Code: "T1", Type: "2"}}}
	course.items["T1"] = &model.PracticeItem{Parts: []model.QuestionPart{
		{Questions: []model.Question{
			question("q1", ans("a1", true), ans("a2", false)),
			question("q2", ans("b1", true), ans("b2", true)), // 两个正确，走 80/20 策略
		}},
		{Questions: []model.Question{
			question("q3", ans("c1", true)),
			question("q4", ans("d1", false), ans("d2", true)),
			question("q5", ans("e1", true)),
		}},
	}}

	svc := newTestService(course, nil)
	require.NoError(t, svc.ResolveTest(context.Background(), "code1", "n1", "p1"))

	require.Len(t, course.saveCalls, 1)
	item := course.saveCalls[0].items[0]
	require.Len(t, item.UA, 1)
	pairs := item.UA[0].AID
	require.Len(t, pairs, 5)

	// 顺序保持片段 1 在前
	assert.Equal(t, model.ID("q1"), pairs[0][0])
	assert.Equal(t, model.ID("q2"), pairs[1][0])
	assert.Equal(t, model.ID("q3"), pairs[2][0])
	assert.Equal(t, model.ID("q4"), pairs[3][0])
	assert.Equal(t, model.ID("q5"), pairs[4][0])

	// 每道题的选择必须落在其正确子集内
	assert.Equal(t, model.ID("a1"), pairs[0][1])
	assert.Contains(t, []model.ID{"b1", "b2"}, pairs[1][1])
	assert.Equal(t, model.ID("c1"), pairs[2][1])
	assert.Equal(t, model.ID("d2"), pairs[3][1])
	assert.Equal(t, model.ID("e1"), pairs[4][1])
}

// 没有任何答案带正确标记：逐题取第一个候选，qId 为字符串 "1"
func TestResolveTestFallbackPicksFirstAnswer(t *testing.T) {
	course := newFakeCourse()
	course.banks["code1"] = &model.TestBank{Tasks: []model.TestTask{{ID: "t1", Code: "T1", Type: "2"}}}
	course.items["T1"] = &model.PracticeItem{Parts: []model.QuestionPart{
		{Questions: []model.Question{
			question("q1", ans("a1", false), ans("a2", false)),
			question("q2", ans("b1", false), ans("b2", false)),
		}},
	}}

	svc := newTestService(course, nil)
	require.NoError(t, svc.ResolveTest(context.Background(), "code1", "n1", "p1"))

	require.Len(t, course.saveCalls, 1)
	item := course.saveCalls[0].items[0]
	require.Len(t, item.UA, 2)
	assert.Equal(t, "1", item.UA[0].QID)
	assert.Equal(t, [][2]model.ID{{"q1", "a1"}}, item.UA[0].AID)
	assert.Equal(t, "1", item.UA[1].QID)
	assert.Equal(t, [][2]model.ID{{"q2", "b1"}}, item.UA[1].AID)
}

// 满分不导出，非满分导出提交过的原始载荷
func TestResolveTestReviewDecision(t *testing.T) {
	build := func(mark string) (*fakeCourse, *recordSink) {
		course := newFakeCourse()
		course.banks["code1"] = &model.TestBank{Tasks: []model.TestTask{{ID: "t1", Code: "T1", Type: "2"}}}
		course.items["T1"] = &model.PracticeItem{Parts: []model.QuestionPart{
			{Questions: []model.Question{question("q1", ans("a1", true))}},
		}}
		course.saveResult = &model.TestResult{FinalMark: mark}
		return course, &recordSink{}
	}

	course, sink := build("100")
	require.NoError(t, newTestService(course, sink).ResolveTest(context.Background(), "code1", "n1", "p1"))
	assert.Empty(t, sink.exports)

	course, sink = build("87")
	require.NoError(t, newTestService(course, sink).ResolveTest(context.Background(), "code1", "n1", "p1"))
	require.Len(t, sink.exports, 1)
	assert.Equal(t, course.saveCalls[0].items, sink.exports[0])
}

// 题库里答案为空的任务被跳过，其余任务照常提交
func TestResolveTestSkipsEmptyAnswerTask(t *testing.T) {
	course := newFakeCourse()
	course.banks["code1"] = &model.TestBank{Tasks: []model.TestTask{
		{ID: "t1", Code: "T1", Type: "2"},
		{ID: "t2", Code: "T2", Type: "2"},
	}}
	course.items["T1"] = &model.PracticeItem{}
	course.items["T2"] = &model.PracticeItem{Parts: []model.QuestionPart{
		{Questions: []model.Question{question("q1", ans("a1", true))}},
	}}

	svc := newTestService(course, nil)
	require.NoError(t, svc.ResolveTest(context.Background(), "code1", "n1", "p1"))

	require.Len(t, course.saveCalls, 1)
	require.Len(t, course.saveCalls[0].items, 1)
	assert.Equal(t, model.ID("t2"), course.saveCalls[0].items[0].TaskID)
}

// 远程失败放弃整个测试，不做部分提交
func TestResolveTestRemoteFailureAbortsWithoutSubmission(t *testing.T) {
	course := newFakeCourse()
	course.banks["code1"] = &model.TestBank{Tasks: []model.TestTask{
		{ID: "t1", Code: "T1", Type: "2"},
		{ID: "t2", Code: "T2", Type: "2"},
	}}
	course.items["T1"] = &model.PracticeItem{Parts: []model.QuestionPart{
		{Questions: []model.Question{question("q1", ans("a1", true))}},
	}}
	course.itemErr["T2"] = errors.New("connection reset")

	svc := newTestService(course, nil)
	err := svc.ResolveTest(context.Background(), "code1", "n1", "p1")
	require.Error(t, err)
	assert.Empty(t, course.saveCalls)
}

// withhold_chance = 1 时本轮不提交
func TestResolveTestWithholdsSubmission(t *testing.T) {
	course := newFakeCourse()
	course.banks["code1"] = &model.TestBank{Tasks: []model.TestTask{{ID: "t1", Code: "T1", Type: "2"}}}
	course.items["T1"] = &model.PracticeItem{Parts: []model.QuestionPart{
		{Questions: []model.Question{question("q1", ans("a1", true))}},
	}}

	pacer := NewPacer(config.PacingConfig{Enabled: true, WithholdChance: 1}, rand.New(rand.NewSource(1)))
	svc := NewTestService(course, seededPolicy(1), pacer, &recordSink{})
	require.NoError(t, svc.ResolveTest(context.Background(), "code1", "n1", "p1"))
	assert.Empty(t, course.saveCalls)
}

// 导出的载荷 JSON 与提交载荷逐字节一致
func TestReviewExportPayloadShape(t *testing.T) {
	course := newFakeCourse()
	course.banks["code1"] = &model.TestBank{Tasks: []model.TestTask{{ID: "t1", Code: "T1", Type: "2"}}}
	course.items["T1"] = &model.PracticeItem{Parts: []model.QuestionPart{
		{Questions: []model.Question{question("q1", ans("a1", true))}},
	}}
	course.saveResult = &model.TestResult{FinalMark: "60"}

	sink := &recordSink{}
	require.NoError(t, newTestService(course, sink).ResolveTest(context.Background(), "code1", "n1", "p1"))

	require.Len(t, sink.exports, 1)
	payload, err := json.Marshal(sink.exports[0])
	require.NoError(t, err)
	assert.JSONEq(t,
		`[{"iId":"t1","iCode":"T1","iType":"2","ua":[{"qId":1,"aId":[["q1","a1"]]}]}]`,
		string(payload))
}

package model

// TestTask 测试题库里的一个可作答任务（getTestCodeDigit 返回的 tasks 元素）
type TestTask struct {
	ID   ID     `json:"id"`
	Code string `json:"code"`
	Type ID     `json:"type"`
}

// TestBank 一个测试 code 对应的任务清单
type TestBank struct {
	Tasks []TestTask `json:"tasks"`
}

// Answer 候选答案，服务端用 c == "1" 标记正确项
type Answer struct {
	ID      ID
	Correct bool
}

// Question 一道题目与其候选答案列表
type Question struct {
	ID      ID
	Answers []Answer
}

// QuestionPart 服务端把一个任务的答案键拆成的片段，每个片段带若干题目
type QuestionPart struct {
	Questions []Question
}

// PracticeItem 一个任务的原始多片段题目数据（practiceGetItem 返回）
type PracticeItem struct {
	Parts []QuestionPart
}

// MergedQuestions 把所有片段的题目按片段顺序拼成一份清单，片段 1 在前，
// 不去重。片段为空时返回 nil。
func (p PracticeItem) MergedQuestions() []Question {
	if len(p.Parts) == 0 {
		return nil
	}
	merged := make([]Question, 0, len(p.Parts[0].Questions))
	for _, part := range p.Parts {
		merged = append(merged, part.Questions...)
	}
	return merged
}

// CorrectAnswers 题目中标记为正确的答案子集，保持原顺序
func (q Question) CorrectAnswers() []Answer {
	var correct []Answer
	for _, a := range q.Answers {
		if a.Correct {
			correct = append(correct, a)
		}
	}
	return correct
}

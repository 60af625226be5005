package service

import (
	"engdis_bot/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectAnswerSingleCorrectIsDeterministic(t *testing.T) {
	policy := seededPolicy(7)
	correct := []model.Answer{{ID: "a9", Correct: true}}

	for i := 0; i < 200; i++ {
		assert.Equal(t, model.ID("a9"), policy.SelectAnswer(correct))
	}
}

func TestSelectAnswerAlwaysFromCorrectSubset(t *testing.T) {
	policy := seededPolicy(11)
	correct := []model.Answer{
		{ID: "a1", Correct: true},
		{ID: "a2", Correct: true},
		{ID: "a3", Correct: true},
	}
	valid := map[model.ID]bool{"a1": true, "a2": true, "a3": true}

	for i := 0; i < 1000; i++ {
		assert.True(t, valid[policy.SelectAnswer(correct)])
	}
}

// 多个正确答案时 80% 走均匀随机、20% 固定取第一个。对 k=4 的子集，
// 第一个成员的期望频率为 0.2 + 0.8/4 = 0.4，其余为 0.8/4 = 0.2。
func TestSelectAnswerPolicyDistribution(t *testing.T) {
	policy := seededPolicy(42)
	correct := []model.Answer{
		{ID: "a1", Correct: true},
		{ID: "a2", Correct: true},
		{ID: "a3", Correct: true},
		{ID: "a4", Correct: true},
	}

	const trials = 10000
	counts := map[model.ID]int{}
	for i := 0; i < trials; i++ {
		counts[policy.SelectAnswer(correct)]++
	}

	assert.InDelta(t, 0.4, float64(counts["a1"])/trials, 0.05)
	assert.InDelta(t, 0.2, float64(counts["a2"])/trials, 0.05)
	assert.InDelta(t, 0.2, float64(counts["a3"])/trials, 0.05)
	assert.InDelta(t, 0.2, float64(counts["a4"])/trials, 0.05)
}

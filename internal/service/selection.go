package service

import (
	"engdis_bot/internal/model"
	"math/rand"
)

// defaultRandomShare 多个正确答案之间 80% 均匀随机、20% 固定取第一个。
// 这是固定策略常量，不按调用配置。
const defaultRandomShare = 0.8

// SelectionPolicy 在一道题的多个正确答案之间做选择。随机源通过构造函数
// 注入，测试里用固定种子可以得到确定的序列。
type SelectionPolicy struct {
	randomShare float64
	rng         *rand.Rand
}

func NewSelectionPolicy(rng *rand.Rand) *SelectionPolicy {
	return &SelectionPolicy{randomShare: defaultRandomShare, rng: rng}
}

// SelectAnswer 从正确答案子集中选出要提交的答案。子集只有一个成员时
// 必然选它；多于一个时按 80/20 策略在随机与取首之间二选一。
// 调用方保证 correct 非空。
func (p *SelectionPolicy) SelectAnswer(correct []model.Answer) model.ID {
	if len(correct) > 1 && p.rng.Float64() < p.randomShare {
		return correct[p.rng.Intn(len(correct))].ID
	}
	return correct[0].ID
}

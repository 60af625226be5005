package service

import (
	"context"
	"engdis_bot/internal/config"
	"math/rand"
	"sync"
	"time"
)

// Pacer 在各处理步骤之间插入随机延迟，模拟人工操作节奏。延迟只影响
// 节奏，不参与答案选择；配置热更新时可整体调整。
type Pacer struct {
	mu  sync.Mutex
	cfg config.PacingConfig
	rng *rand.Rand
}

func NewPacer(cfg config.PacingConfig, rng *rand.Rand) *Pacer {
	return &Pacer{cfg: cfg, rng: rng}
}

// Update 应用新的 pacing 配置（configwatcher 回调）
func (p *Pacer) Update(cfg config.PacingConfig) {
	p.mu.Lock()
	p.cfg = cfg
	p.mu.Unlock()
}

// NavigationDelay 拉取任务数据之后的浏览延迟
func (p *Pacer) NavigationDelay(ctx context.Context) error {
	p.mu.Lock()
	enabled, min, max := p.cfg.Enabled, p.cfg.NavigationMin, p.cfg.NavigationMax
	p.mu.Unlock()
	if !enabled {
		return nil
	}
	return p.sleep(ctx, min, max)
}

// TypingDelay 合成完一个任务的作答之后的输入延迟
func (p *Pacer) TypingDelay(ctx context.Context) error {
	p.mu.Lock()
	enabled, min, max := p.cfg.Enabled, p.cfg.TypingMin, p.cfg.TypingMax
	p.mu.Unlock()
	if !enabled {
		return nil
	}
	return p.sleep(ctx, min, max)
}

// WithholdSubmission 小概率本轮不提交，模拟人工的不一致性
func (p *Pacer) WithholdSubmission() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.cfg.Enabled || p.cfg.WithholdChance <= 0 {
		return false
	}
	return p.rng.Float64() < p.cfg.WithholdChance
}

func (p *Pacer) sleep(ctx context.Context, min, max time.Duration) error {
	d := min
	if max > min {
		p.mu.Lock()
		d += time.Duration(p.rng.Int63n(int64(max - min)))
		p.mu.Unlock()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

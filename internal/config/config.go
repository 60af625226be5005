package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Bot     BotConfig     `mapstructure:"bot"`
	EngDis  EngDisConfig  `mapstructure:"engdis"`
	Pacing  PacingConfig  `mapstructure:"pacing"`
	Review  ReviewConfig  `mapstructure:"review"`
	Metrics MetricsConfig `mapstructure:"metrics"`

	// 运行时标志（非配置文件，通过命令行参数设置）
	RunAll bool `mapstructure:"-"` // 跳过菜单，直接跑完所有 unit 后退出
}

type BotConfig struct {
	Mode string `mapstructure:"mode"` // debug 或 release
}

type EngDisConfig struct {
	BaseURLFe1 string        `mapstructure:"base_url_fe1"`
	BaseURLFe2 string        `mapstructure:"base_url_fe2"`
	Timeout    time.Duration `mapstructure:"timeout_seconds"`
	RateLimit  float64       `mapstructure:"rate_limit_rps"` // 对服务端的最大请求速率
	Username   string        `mapstructure:"username"`
	Password   string        `mapstructure:"password"`
	Subject    string        `mapstructure:"subject"` // fe1 或 fe2，留空则启动时询问
}

type PacingConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	NavigationMin  time.Duration `mapstructure:"navigation_min_ms"`
	NavigationMax  time.Duration `mapstructure:"navigation_max_ms"`
	TypingMin      time.Duration `mapstructure:"typing_min_ms"`
	TypingMax      time.Duration `mapstructure:"typing_max_ms"`
	WithholdChance float64       `mapstructure:"withhold_chance"`
}

type ReviewConfig struct {
	Clipboard bool   `mapstructure:"clipboard"`
	ExportDir string `mapstructure:"export_dir"` // 剪贴板不可用时落盘到该目录
}

type MetricsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	ListenAddr string `mapstructure:"listen_addr"`
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("ENGDIS_BOT")
	viper.AutomaticEnv()

	// EngDis
	viper.BindEnv("engdis.base_url_fe1", "ENGDIS_BASE_URL_FE1")
	viper.BindEnv("engdis.base_url_fe2", "ENGDIS_BASE_URL_FE2")
	viper.BindEnv("engdis.username", "ENGDIS_USERNAME")
	viper.BindEnv("engdis.password", "ENGDIS_PASSWORD")
	viper.BindEnv("engdis.subject", "ENGDIS_SUBJECT")

	// Bot
	viper.BindEnv("bot.mode", "BOT_MODE")

	// Metrics
	viper.BindEnv("metrics.enabled", "METRICS_ENABLED")
	viper.BindEnv("metrics.listen_addr", "METRICS_LISTEN_ADDR")

	viper.SetDefault("bot.mode", "release")
	viper.SetDefault("engdis.base_url_fe1", "https://edservices.engdis.com/api/")
	viper.SetDefault("engdis.base_url_fe2", "https://eduiwebservices20.engdis.com/api/")
	viper.SetDefault("engdis.timeout_seconds", 30)
	viper.SetDefault("engdis.rate_limit_rps", 2)
	viper.SetDefault("pacing.enabled", true)
	viper.SetDefault("pacing.navigation_min_ms", 2000)
	viper.SetDefault("pacing.navigation_max_ms", 6000)
	viper.SetDefault("pacing.typing_min_ms", 1000)
	viper.SetDefault("pacing.typing_max_ms", 4000)
	viper.SetDefault("pacing.withhold_chance", 0.05)
	viper.SetDefault("review.clipboard", true)
	viper.SetDefault("metrics.listen_addr", ":9188")

	if err := viper.ReadInConfig(); err != nil {
		// 没有配置文件时全部走默认值和环境变量
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.EngDis.Timeout = cfg.EngDis.Timeout * time.Second
	cfg.Pacing.NavigationMin = cfg.Pacing.NavigationMin * time.Millisecond
	cfg.Pacing.NavigationMax = cfg.Pacing.NavigationMax * time.Millisecond
	cfg.Pacing.TypingMin = cfg.Pacing.TypingMin * time.Millisecond
	cfg.Pacing.TypingMax = cfg.Pacing.TypingMax * time.Millisecond

	if cfg.Pacing.NavigationMax < cfg.Pacing.NavigationMin {
		return nil, fmt.Errorf("pacing.navigation_max_ms (%v) must not be below navigation_min_ms (%v)",
			cfg.Pacing.NavigationMax, cfg.Pacing.NavigationMin)
	}
	if cfg.Pacing.TypingMax < cfg.Pacing.TypingMin {
		return nil, fmt.Errorf("pacing.typing_max_ms (%v) must not be below typing_min_ms (%v)",
			cfg.Pacing.TypingMax, cfg.Pacing.TypingMin)
	}
	if cfg.Pacing.WithholdChance < 0 || cfg.Pacing.WithholdChance >= 1 {
		return nil, fmt.Errorf("pacing.withhold_chance (%v) must be in [0, 1)", cfg.Pacing.WithholdChance)
	}

	return &cfg, nil
}

package app

import (
	"context"
	"engdis_bot/internal/config"
	"engdis_bot/internal/controller"
	"engdis_bot/internal/engdis"
	"engdis_bot/internal/service"
	"engdis_bot/pkg/configwatcher"
	"engdis_bot/pkg/logger"
	"engdis_bot/pkg/monitoring"
	"math/rand"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type App struct {
	Config *config.Config

	metricsSrv *http.Server
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	// 每次运行带一个 runId，方便从滚动日志里切分单次遍历
	logger.Log = logger.Log.With(zap.String("runId", uuid.NewString()))
	logger.Log.Info("Logger initialized successfully")

	monitoring.Init()

	app := &App{Config: cfg}
	if cfg.Metrics.Enabled {
		app.metricsSrv = monitoring.Serve(cfg.Metrics.ListenAddr)
		logger.Log.Info("metrics listener started", zap.String("addr", cfg.Metrics.ListenAddr))
	}
	return app
}

func (a *App) Run() error {
	controller.PrintWelcome()

	creds := controller.PromptCredentials(a.Config)
	client := engdis.NewClient(creds.BaseURL, a.Config.EngDis.Timeout, a.Config.EngDis.RateLimit)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Log.Info("logging in", zap.String("username", creds.Username))
	if _, err := client.Login(ctx, creds.Username, creds.Password); err != nil {
		logger.Log.Error("login failed", zap.Error(err))
		return err
	}
	logger.Log.Info("login ok")

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	pacer := service.NewPacer(a.Config.Pacing, rng)
	policy := service.NewSelectionPolicy(rng)
	sink := service.NewClipboardSink(a.Config.Review.Clipboard, a.Config.Review.ExportDir)

	tests := service.NewTestService(client, policy, pacer, sink)
	assignments := service.NewAssignmentService(client, tests)
	progress := service.NewProgressService(client)

	// 配置热更新只作用于 pacing 参数
	go configwatcher.WatchConfig("configs/config.yaml", func(cfg *config.Config) {
		pacer.Update(cfg.Pacing)
		logger.Log.Info("pacing config reloaded")
	})

	var runErr error
	if a.Config.RunAll {
		runErr = assignments.ResolveAllAssignments(ctx)
	} else {
		bot := controller.NewBotController(a.Config, assignments, progress)
		runErr = bot.MainMenu(ctx)
	}

	a.shutdown(client)

	if runErr != nil && ctx.Err() == nil {
		return runErr
	}
	return nil
}

// shutdown 注销远端会话并停掉 metrics 监听。用独立的短超时 context，
// 保证 Ctrl+C 之后也能把网页端会话释放掉。
func (a *App) shutdown(client *engdis.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Logout(ctx); err != nil {
		logger.Log.Warn("logout failed", zap.Error(err))
	} else {
		logger.Log.Info("logged out")
	}

	if a.metricsSrv != nil {
		if err := a.metricsSrv.Shutdown(ctx); err != nil {
			logger.Log.Warn("metrics listener shutdown failed", zap.Error(err))
		}
	}
}

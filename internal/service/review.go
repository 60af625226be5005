package service

import (
	"encoding/json"
	"engdis_bot/internal/model"
	"engdis_bot/pkg/logger"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"
)

// ReviewSink 接收需要人工复核的提交载荷（成绩不满分时）
type ReviewSink interface {
	Export(items []model.SubmissionItem) error
}

// ClipboardSink 把载荷 JSON 写入系统剪贴板，剪贴板不可用（无图形
// 环境）时落盘到导出目录。
type ClipboardSink struct {
	UseClipboard bool
	ExportDir    string
}

func NewClipboardSink(useClipboard bool, exportDir string) *ClipboardSink {
	return &ClipboardSink{UseClipboard: useClipboard, ExportDir: exportDir}
}

func (s *ClipboardSink) Export(items []model.SubmissionItem) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return err
	}

	if s.UseClipboard {
		if err := clipboard.WriteAll(string(payload)); err == nil {
			return nil
		} else {
			logger.Log.Warn("clipboard unavailable, falling back to file export", zap.Error(err))
		}
	}

	if s.ExportDir == "" {
		return fmt.Errorf("review export failed: clipboard disabled and no export_dir configured")
	}
	if err := os.MkdirAll(s.ExportDir, 0755); err != nil {
		return err
	}
	name := fmt.Sprintf("review_%s.json", time.Now().Format("20060102_150405"))
	return os.WriteFile(filepath.Join(s.ExportDir, name), payload, 0644)
}

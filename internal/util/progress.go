package util

import "strings"

// ProgressBar 生成文本进度条，percent 取值 0-100
func ProgressBar(percent, barLength int) string {
	if barLength <= 0 {
		barLength = 20
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := (barLength*percent + 50) / 100
	return strings.Repeat("█", filled) + strings.Repeat("-", barLength-filled)
}

package model

// UserAnswer 提交载荷里的一组作答。标准路径下整任务只有一条，qId 固定为
// 数字 1，aId 携带所有 (题目id, 答案id) 对；兜底路径下每题一条，qId 为
// 字符串 "1"。服务端两种写法都接受，这里保持与线上观察到的载荷一致。
type UserAnswer struct {
	QID any     `json:"qId"`
	AID [][2]ID `json:"aId"`
}

// SubmissionItem 每个任务一条的提交载荷单元
type SubmissionItem struct {
	TaskID   ID           `json:"iId"`
	TaskCode string       `json:"iCode"`
	TaskType ID           `json:"iType"`
	UA       []UserAnswer `json:"ua"`
}

// TestResult 提交后服务端返回的成绩
type TestResult struct {
	FinalMark string `json:"finalMark"`
}

// Perfect 满分判定，finalMark 为数字字符串
func (r TestResult) Perfect() bool {
	return r.FinalMark == "100"
}

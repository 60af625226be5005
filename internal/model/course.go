package model

// NodeKind 课程树节点层级
type NodeKind string

const (
	KindUnit       NodeKind = "unit"
	KindLevel      NodeKind = "level"
	KindAssignment NodeKind = "assignment"
	KindTask       NodeKind = "task"
)

// AssessmentName 名字为 "Test" 的 assignment 是计分测试，其余按普通任务直接完成
const AssessmentName = "Test"

// NodeMetadata 级别节点携带的测试元数据
type NodeMetadata struct {
	Code string `json:"Code"`
}

type CourseNode struct {
	NodeID       ID           `json:"NodeId"`
	ParentNodeID ID           `json:"ParentNodeId"`
	Name         string       `json:"Name"`
	Metadata     NodeMetadata `json:"Metadata"`
	Children     []CourseNode `json:"Children"`

	// 进度字段（progress 接口返回，可能缺省）
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// IsAssessment 判定 assignment 节点是否为计分测试
func (n CourseNode) IsAssessment() bool {
	return n.Name == AssessmentName
}

// UnitProgress 进度展示用的聚合结果
type UnitProgress struct {
	Name      string
	Completed int
	Total     int
	Percent   int
}

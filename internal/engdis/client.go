package engdis

import (
	"bytes"
	"context"
	"encoding/json"
	"engdis_bot/internal/model"
	"engdis_bot/internal/util"
	"engdis_bot/pkg/monitoring"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// Client 封装 EngDis（English Discoveries）服务端 API。
// 所有请求串行发出并受限速器约束，避免触发服务端风控。
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	limiter *rate.Limiter
}

func NewClient(baseURL string, timeout time.Duration, rps float64) *Client {
	if rps <= 0 {
		rps = 2
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// SetToken 登录成功后注入会话 token
func (c *Client) SetToken(token string) {
	c.token = token
}

type apiEnvelope struct {
	IsSuccess bool            `json:"isSuccess"`
	Data      json.RawMessage `json:"data"`
}

func (c *Client) do(ctx context.Context, method, endpoint string, query url.Values, body any) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u := c.baseURL + endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		monitoring.ObserveAPIRequest(endpoint, "error", time.Since(start))
		return nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		monitoring.ObserveAPIRequest(endpoint, "error", time.Since(start))
		return nil, fmt.Errorf("engdis API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var env apiEnvelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		monitoring.ObserveAPIRequest(endpoint, "error", time.Since(start))
		return nil, fmt.Errorf("engdis API: decode %s response: %w", endpoint, err)
	}
	if !env.IsSuccess {
		// 服务端对过期会话统一返回 isSuccess=false
		monitoring.ObserveAPIRequest(endpoint, "rejected", time.Since(start))
		return nil, util.ErrTokenExpired
	}

	monitoring.ObserveAPIRequest(endpoint, "ok", time.Since(start))
	return env.Data, nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResult struct {
	UserInfo *struct {
		Token string `json:"Token"`
		Name  string `json:"Name"`
	} `json:"UserInfo"`
}

// Login 执行登录握手。密码错误时服务端不返回 UserInfo；账号在网页端
// 尚未退出时返回 UserInfo 但没有 Token。
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	data, err := c.do(ctx, http.MethodPost, "Login", nil, loginRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return "", err
	}

	var result LoginResult
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("engdis API: decode login payload: %w", err)
	}
	if result.UserInfo == nil {
		return "", util.ErrLoginFailed
	}
	if result.UserInfo.Token == "" {
		return "", util.ErrAlreadyLoggedIn
	}

	c.token = result.UserInfo.Token
	return result.UserInfo.Token, nil
}

func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "Logout", nil, nil)
	return err
}

// GetDefaultCourseProgress 返回 unit 列表及其进度字段
func (c *Client) GetDefaultCourseProgress(ctx context.Context) ([]model.CourseNode, error) {
	data, err := c.do(ctx, http.MethodGet, "GetDefaultCourseProgress", nil, nil)
	if err != nil {
		return nil, err
	}

	var units []model.CourseNode
	if err := json.Unmarshal(data, &units); err != nil {
		return nil, fmt.Errorf("engdis API: decode course progress: %w", err)
	}
	return units, nil
}

// GetCourseTree 返回 unit 下的 level 列表。同一个接口在不同课程上有两种
// 返回形态：直接的节点数组，或嵌套在 levels 字段里的数组。
func (c *Client) GetCourseTree(ctx context.Context, nodeID, parentNodeID model.ID) ([]model.CourseNode, error) {
	query := url.Values{}
	query.Set("nodeId", nodeID.String())
	query.Set("parentNodeId", parentNodeID.String())

	data, err := c.do(ctx, http.MethodGet, "GetCourseTree", query, nil)
	if err != nil {
		return nil, err
	}

	var levels []model.CourseNode
	if err := json.Unmarshal(data, &levels); err == nil {
		return levels, nil
	}

	var nested struct {
		Levels []model.CourseNode `json:"levels"`
	}
	if err := json.Unmarshal(data, &nested); err != nil {
		return nil, fmt.Errorf("engdis API: decode course tree: %w", err)
	}
	return nested.Levels, nil
}

// SetSuccessTask 把一个普通任务直接标记为完成。服务端对重复标记同样
// 返回成功，调用方无需关心任务当前状态。
func (c *Client) SetSuccessTask(ctx context.Context, parentNodeID, taskNodeID model.ID) (bool, error) {
	query := url.Values{}
	query.Set("parentNodeId", parentNodeID.String())
	query.Set("nodeId", taskNodeID.String())

	_, err := c.do(ctx, http.MethodPost, "SetSuccessTask", query, nil)
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetTestCodeDigit 按测试 code 拉取题库任务清单
func (c *Client) GetTestCodeDigit(ctx context.Context, code string) (*model.TestBank, error) {
	query := url.Values{}
	query.Set("code", code)

	data, err := c.do(ctx, http.MethodGet, "GetTestCodeDigit", query, nil)
	if err != nil {
		return nil, err
	}

	var bank model.TestBank
	if err := json.Unmarshal(data, &bank); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrMalformedQuestionBank, err)
	}
	if bank.Tasks == nil {
		return nil, fmt.Errorf("%w: missing tasks list for code %s", util.ErrMalformedQuestionBank, code)
	}
	return &bank, nil
}

// practiceItemData 是 practiceGetItem 的压缩线格式：
// i.q 为片段列表，每个片段的 al 是题目列表，题目的 a 是候选答案，
// c == "1" 表示该答案被标记为正确。
type practiceItemData struct {
	I *struct {
		Q []struct {
			AL []struct {
				ID model.ID `json:"id"`
				A  []struct {
					ID model.ID `json:"id"`
					C  model.ID `json:"c"`
				} `json:"a"`
			} `json:"al"`
		} `json:"q"`
	} `json:"i"`
}

// PracticeGetItem 拉取一个任务的原始题目与答案数据并展开成领域模型
func (c *Client) PracticeGetItem(ctx context.Context, taskCode string) (*model.PracticeItem, error) {
	query := url.Values{}
	query.Set("code", taskCode)

	data, err := c.do(ctx, http.MethodGet, "PracticeGetItem", query, nil)
	if err != nil {
		return nil, err
	}

	var raw practiceItemData
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: task %s: %v", util.ErrMalformedQuestionBank, taskCode, err)
	}
	if raw.I == nil || raw.I.Q == nil {
		return nil, fmt.Errorf("%w: task %s: missing i.q structure", util.ErrMalformedQuestionBank, taskCode)
	}

	item := &model.PracticeItem{Parts: make([]model.QuestionPart, 0, len(raw.I.Q))}
	for _, part := range raw.I.Q {
		p := model.QuestionPart{Questions: make([]model.Question, 0, len(part.AL))}
		for _, q := range part.AL {
			question := model.Question{ID: q.ID, Answers: make([]model.Answer, 0, len(q.A))}
			for _, a := range q.A {
				question.Answers = append(question.Answers, model.Answer{
					ID:      a.ID,
					Correct: a.C == "1",
				})
			}
			p.Questions = append(p.Questions, question)
		}
		item.Parts = append(item.Parts, p)
	}
	return item, nil
}

type saveUserTestRequest struct {
	NodeID       model.ID               `json:"nodeId"`
	ParentNodeID model.ID               `json:"parentNodeId"`
	UserAnswers  []model.SubmissionItem `json:"ua"`
}

type saveUserTestData struct {
	FinalMark model.ID `json:"finalMark"`
}

// SaveUserTest 提交整份测试的作答并返回成绩
func (c *Client) SaveUserTest(ctx context.Context, nodeID, parentNodeID model.ID, items []model.SubmissionItem) (*model.TestResult, error) {
	data, err := c.do(ctx, http.MethodPost, "SaveUserTestV1", nil, saveUserTestRequest{
		NodeID:       nodeID,
		ParentNodeID: parentNodeID,
		UserAnswers:  items,
	})
	if err != nil {
		return nil, err
	}

	var raw saveUserTestData
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("engdis API: decode test result: %w", err)
	}
	return &model.TestResult{FinalMark: raw.FinalMark.String()}, nil
}

package util

import "errors"

var (
	ErrLoginFailed           = errors.New("用户名或密码错误")
	ErrAlreadyLoggedIn       = errors.New("账号仍在网页端登录，请先退出网页端")
	ErrTokenExpired          = errors.New("token expired")
	ErrMalformedQuestionBank = errors.New("question bank payload malformed")
	ErrEmptyAnswerSet        = errors.New("task has no candidate answers")
	ErrInvalidSelectionIndex = errors.New("无效的选项，请重新输入")
)

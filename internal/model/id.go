package model

import (
	"bytes"
	"fmt"
)

// ID 服务端的 id 字段有时是数字有时是字符串，统一按字符串保存
type ID string

func (v *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*v = ""
		return nil
	}
	if b[0] == '"' {
		if len(b) < 2 || b[len(b)-1] != '"' {
			return fmt.Errorf("invalid id literal: %s", b)
		}
		*v = ID(b[1 : len(b)-1])
		return nil
	}
	*v = ID(b)
	return nil
}

func (v ID) String() string {
	return string(v)
}

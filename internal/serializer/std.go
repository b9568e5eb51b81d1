package serializer

import (
	"encoding/json"
)

// StdJSONSerializer 使用标准库 encoding/json，作为其它实现的对照基线。
type StdJSONSerializer struct{}

// 编译期断言：确保 StdJSONSerializer 实现了 Serializer 接口。
var _ Serializer = (*StdJSONSerializer)(nil)

func (StdJSONSerializer) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (StdJSONSerializer) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

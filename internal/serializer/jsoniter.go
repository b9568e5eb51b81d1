package serializer

import (
	jsoniter "github.com/json-iterator/go"
)

// JSONIterSerializer 基于 json-iterator 的 JSON 编解码实现。
//
// 使用 ConfigCompatibleWithStandardLibrary，输出与 encoding/json 一致。
type JSONIterSerializer struct {
	api jsoniter.API
}

// 编译期断言：确保 JSONIterSerializer 实现了 Serializer 接口。
var _ Serializer = (*JSONIterSerializer)(nil)

// NewJSONIterSerializer 创建一个与标准库兼容的 JSONIterSerializer。
func NewJSONIterSerializer() JSONIterSerializer {
	return JSONIterSerializer{api: jsoniter.ConfigCompatibleWithStandardLibrary}
}

func (s JSONIterSerializer) Marshal(v any) ([]byte, error) {
	return s.getAPI().Marshal(v)
}

func (s JSONIterSerializer) Unmarshal(data []byte, v any) error {
	return s.getAPI().Unmarshal(data, v)
}

// getAPI 兼容零值 JSONIterSerializer{}。
func (s JSONIterSerializer) getAPI() jsoniter.API {
	if s.api == nil {
		return jsoniter.ConfigCompatibleWithStandardLibrary
	}
	return s.api
}

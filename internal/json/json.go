// Package json 是项目内统一的 JSON 入口，底层基于 bytedance/sonic。
//
// 使用 sonic.ConfigStd：map 键按字典序输出、转义 HTML 字符，
// 编码结果与 encoding/json 保持一致，便于不同实现之间横向对比。
package json

import (
	"github.com/bytedance/sonic"
)

var api = sonic.ConfigStd

// Marshal 将 v 编码为 JSON 字节序列。
func Marshal(v any) ([]byte, error) {
	return api.Marshal(v)
}

// Unmarshal 将 JSON 字节序列解码到 v，v 必须为指针。
func Unmarshal(data []byte, v any) error {
	return api.Unmarshal(data, v)
}

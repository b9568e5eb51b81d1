package serializer

import (
	"sort"

	"github.com/lk2023060901/callbench/pkg/util/merr"
)

// Serializer 抽象了“对象 <-> 文本记录”的序列化能力。
//
// 设计目标：
//   - 编码结果为结构化文本（JSON 或与之等价的格式），用于测量编解码往返的开销。
//   - 调用方通过接口注入具体实现，便于在同一组基准中横向对比不同实现。
type Serializer interface {
	// Marshal 将任意对象编码为字节序列。
	Marshal(v any) ([]byte, error)

	// Unmarshal 将字节序列解码到目标对象。
	//
	// v 通常为指针类型，用于接收解码结果。
	Unmarshal(data []byte, v any) error
}

// 已注册的序列化实现名称。
const (
	NameSonic     = "sonic"
	NameJSONIter  = "jsoniter"
	NameStdJSON   = "std"
	NameProtoJSON = "protojson"
)

var registry = map[string]func() Serializer{
	NameSonic:     func() Serializer { return JSONSerializer{} },
	NameJSONIter:  func() Serializer { return NewJSONIterSerializer() },
	NameStdJSON:   func() Serializer { return StdJSONSerializer{} },
	NameProtoJSON: func() Serializer { return ProtoJSONSerializer{} },
}

// Default 返回默认的序列化实现（sonic）。
func Default() Serializer {
	return JSONSerializer{}
}

// New 按名称创建序列化实现，名称未知时返回 merr.ErrCodecNotFound。
func New(name string) (Serializer, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, merr.WrapErrCodecNotFound(name)
	}
	return ctor(), nil
}

// Names 按字典序返回全部已注册的实现名称。
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

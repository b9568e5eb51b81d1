package bench

import (
	"github.com/lk2023060901/callbench/internal/serializer"
	"github.com/lk2023060901/callbench/pkg/util/merr"
)

// 参数记录中的字段名。
const (
	KeyFoo = "foo"
	KeyBar = "bar"
	KeyBaz = "baz"
)

// Codec 将序列化实现与其名称绑定，名称用于错误信息与指标标签。
type Codec struct {
	Name string
	serializer.Serializer
}

// NewCodec 按注册名称创建 Codec。
func NewCodec(name string) (Codec, error) {
	s, err := serializer.New(name)
	if err != nil {
		return Codec{}, err
	}
	return Codec{Name: name, Serializer: s}, nil
}

// NewRecord 以固定的三个字段构造参数记录。
func NewRecord(foo, bar, baz any) map[string]any {
	return map[string]any{
		KeyFoo: foo,
		KeyBar: bar,
		KeyBaz: baz,
	}
}

// EncodeRecord 将三个参数编码为文本记录。
func (c Codec) EncodeRecord(foo, bar, baz any) ([]byte, error) {
	data, err := c.Marshal(NewRecord(foo, bar, baz))
	if err != nil {
		return nil, merr.WrapErrCodecEncode(c.Name, err)
	}
	return data, nil
}

// DecodeRecord 将文本记录还原为映射。
func (c Codec) DecodeRecord(data []byte) (map[string]any, error) {
	var rec map[string]any
	if err := c.Unmarshal(data, &rec); err != nil {
		return nil, merr.WrapErrCodecDecode(c.Name, err)
	}
	return rec, nil
}

// EncodeResult 将被测函数的布尔结果编码为文本。
func (c Codec) EncodeResult(result bool) ([]byte, error) {
	data, err := c.Marshal(result)
	if err != nil {
		return nil, merr.WrapErrCodecEncode(c.Name, err)
	}
	return data, nil
}

// DecodeResult 将文本还原为布尔结果。
func (c Codec) DecodeResult(data []byte) (bool, error) {
	var result bool
	if err := c.Unmarshal(data, &result); err != nil {
		return false, merr.WrapErrCodecDecode(c.Name, err)
	}
	return result, nil
}

// RecordArgs 按字段名取出三个参数，任一字段缺失时返回 merr.ErrFieldNotFound。
// 值为 null 的字段视为存在。
func RecordArgs(rec map[string]any) (foo, bar, baz any, err error) {
	var ok bool
	if foo, ok = rec[KeyFoo]; !ok {
		return nil, nil, nil, merr.WrapErrFieldNotFound(KeyFoo)
	}
	if bar, ok = rec[KeyBar]; !ok {
		return nil, nil, nil, merr.WrapErrFieldNotFound(KeyBar)
	}
	if baz, ok = rec[KeyBaz]; !ok {
		return nil, nil, nil, merr.WrapErrFieldNotFound(KeyBaz)
	}
	return foo, bar, baz, nil
}

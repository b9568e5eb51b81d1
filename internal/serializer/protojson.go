package serializer

import (
	"github.com/cockroachdb/errors"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lk2023060901/callbench/pkg/util/merr"
)

// ProtoJSONSerializer 将任意值转换为 google.protobuf.Value / Struct，
// 再以 protojson 输出文本。
//
// 注意：
//   - 实现了 proto.Message 的对象直接按 protojson 编解码；
//   - 其它对象必须能被 structpb.NewValue 接受（nil、bool、数值、string、
//     []any、map[string]any 等），数值统一解码为 float64；
//   - protojson 的输出空白并不稳定，不要按字节比较编码结果。
type ProtoJSONSerializer struct{}

// 编译期断言：确保 ProtoJSONSerializer 实现了 Serializer 接口。
var _ Serializer = (*ProtoJSONSerializer)(nil)

func (ProtoJSONSerializer) Marshal(v any) ([]byte, error) {
	if msg, ok := v.(proto.Message); ok {
		return protojson.Marshal(msg)
	}
	val, err := structpb.NewValue(v)
	if err != nil {
		return nil, merr.WrapErrCodecUnsupportedType(NameProtoJSON, v, err.Error())
	}
	return protojson.Marshal(val)
}

func (ProtoJSONSerializer) Unmarshal(data []byte, v any) error {
	switch dst := v.(type) {
	case proto.Message:
		return protojson.Unmarshal(data, dst)

	case *map[string]any:
		var s structpb.Struct
		if err := protojson.Unmarshal(data, &s); err != nil {
			return err
		}
		*dst = s.AsMap()
		return nil

	case *bool:
		var val structpb.Value
		if err := protojson.Unmarshal(data, &val); err != nil {
			return err
		}
		b, ok := val.GetKind().(*structpb.Value_BoolValue)
		if !ok {
			return merr.WrapErrCodecDecode(NameProtoJSON, errors.Newf("expected bool value, got %T", val.GetKind()))
		}
		*dst = b.BoolValue
		return nil

	case *any:
		var val structpb.Value
		if err := protojson.Unmarshal(data, &val); err != nil {
			return err
		}
		*dst = val.AsInterface()
		return nil

	default:
		return merr.WrapErrCodecUnsupportedType(NameProtoJSON, v)
	}
}

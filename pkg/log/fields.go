package log

import (
	"go.uber.org/zap"
)

const (
	FieldNameModule     = "module"
	FieldNameComponent  = "component"
	FieldNameBenchmark  = "benchmark"
	FieldNameSerializer = "serializer"
)

// FieldModule 返回一个包含模块名的 zap 字段。
func FieldModule(module string) zap.Field {
	return zap.String(FieldNameModule, module)
}

// FieldComponent 返回一个包含组件名的 zap 字段。
func FieldComponent(component string) zap.Field {
	return zap.String(FieldNameComponent, component)
}

// FieldBenchmark 返回一个包含基准名称的 zap 字段。
func FieldBenchmark(name string) zap.Field {
	return zap.String(FieldNameBenchmark, name)
}

// FieldSerializer 返回一个包含序列化实现名称的 zap 字段。
func FieldSerializer(name string) zap.Field {
	return zap.String(FieldNameSerializer, name)
}

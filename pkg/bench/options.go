package bench

import (
	"github.com/lk2023060901/callbench/internal/serializer"
)

type options struct {
	codecName string
	codec     *Codec
	target    Target
	onResult  func(data []byte)
}

// Option 用于配置基准工厂行为的选项函数。
type Option func(opt *options)

func defaultOptions() *options {
	return &options{
		codecName: serializer.NameSonic,
		target:    Function,
	}
}

func applyOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// resolveCodec 返回显式指定的 Codec，否则按名称创建。
func (o *options) resolveCodec() (Codec, error) {
	if o.codec != nil {
		return *o.codec, nil
	}
	return NewCodec(o.codecName)
}

// WithSerializer 按注册名称选择序列化实现，默认为 sonic。
func WithSerializer(name string) Option {
	return func(opt *options) {
		opt.codecName = name
		opt.codec = nil
	}
}

// WithCodec 直接指定 Codec，可用于接入未注册的序列化实现。
func WithCodec(codec Codec) Option {
	return func(opt *options) {
		opt.codec = &codec
	}
}

// WithTarget 替换被测函数，默认为 Function。传入 nil 时保持默认。
func WithTarget(target Target) Option {
	return func(opt *options) {
		if target != nil {
			opt.target = target
		}
	}
}

// WithResultHandler 在每次迭代产生编码结果后回调 fn。
func WithResultHandler(fn func(data []byte)) Option {
	return func(opt *options) {
		opt.onResult = fn
	}
}

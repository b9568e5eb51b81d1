package log

import (
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// Binder 嵌入到组件中，为组件保存一个可替换的 Logger。
// 零值可用，未绑定时退回到全局 Logger。
type Binder struct {
	logger atomic.Pointer[MLogger]
}

// SetLogger 替换组件的 Logger。
func (b *Binder) SetLogger(logger *MLogger) {
	b.logger.Store(logger)
}

// BindComponent 以全局 Logger 加上组件名及 fields 作为组件的 Logger。
func (b *Binder) BindComponent(component string, fields ...zap.Field) {
	b.SetLogger(With(append([]zap.Field{FieldComponent(component)}, fields...)...))
}

// Logger 返回组件当前的 Logger。
func (b *Binder) Logger() *MLogger {
	if l := b.logger.Load(); l != nil {
		return l
	}
	return With()
}

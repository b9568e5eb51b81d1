// Copyright 2019 PingCAP, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"context"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	_globalL, _globalP, _globalS, _globalR atomic.Value

	_namedRateLimiters sync.Map
)

// RateLimiter 决定一条限流日志是否输出。
type RateLimiter interface {
	CheckCredit(cost float64) bool
}

type nopRateLimiter struct{}

func (nopRateLimiter) CheckCredit(float64) bool { return true }

type ctxLogKeyType struct{}

// CtxLogKey 为上下文中保存 *MLogger 的键。
var CtxLogKey = ctxLogKeyType{}

// L 返回全局 Logger，可并发使用。
func L() *zap.Logger {
	return _globalL.Load().(*zap.Logger)
}

// S 返回全局 SugaredLogger。
func S() *zap.SugaredLogger {
	return _globalS.Load().(*zap.SugaredLogger)
}

// R 返回全局限流器，未开启限流时永远放行。
func R() RateLimiter {
	if rl, ok := _globalR.Load().(RateLimiter); ok && rl != nil {
		return rl
	}
	return nopRateLimiter{}
}

// ReplaceGlobals 替换全局 Logger 及其属性。
func ReplaceGlobals(logger *zap.Logger, props *ZapProperties) {
	_globalL.Store(logger)
	_globalS.Store(logger.Sugar())
	_globalP.Store(props)
}

// Sync 刷新全局 Logger 的缓冲。
func Sync() error {
	return L().Sync()
}

// Level 返回全局 Logger 的动态级别。
func Level() zap.AtomicLevel {
	return _globalP.Load().(*ZapProperties).Level
}

// SetLevel 设置全局日志级别。
func SetLevel(l zapcore.Level) {
	Level().SetLevel(l)
}

// GetLevel 获取当前全局日志级别。
func GetLevel() zapcore.Level {
	return Level().Level()
}

func Debug(msg string, fields ...zap.Field) {
	L().Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	L().Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	L().Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	L().Error(msg, fields...)
}

// RatedInfo 经全局限流器放行后以 Info 级别输出，返回是否输出。
func RatedInfo(cost float64, msg string, fields ...zap.Field) bool {
	if !R().CheckCredit(cost) {
		return false
	}
	L().Info(msg, fields...)
	return true
}

// With 返回携带 fields 的子 Logger，不影响全局 Logger。
func With(fields ...zap.Field) *MLogger {
	lg := L().WithOptions(
		zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return newLazyCore(core, fields)
		}),
		zap.AddCallerSkip(-1),
	)
	return &MLogger{Logger: lg}
}

// WithModule 为 ctx 中的 Logger 添加模块名字段。
func WithModule(ctx context.Context, module string) context.Context {
	return WithFields(ctx, FieldModule(module))
}

// WithFields 返回在 ctx 当前 Logger 上追加 fields 的上下文。
func WithFields(ctx context.Context, fields ...zap.Field) context.Context {
	return WithLogger(ctx, &MLogger{Logger: Ctx(ctx).Logger.With(fields...)})
}

// WithLogger 返回绑定了 logger 的上下文，之后的 Ctx(ctx) 基于该 logger 输出。
func WithLogger(ctx context.Context, logger *MLogger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, CtxLogKey, logger)
}

// NewIntentContext 开启名为 intent 的 span，并在返回的上下文 Logger 中记录 role、intent 与 traceID。
func NewIntentContext(parent context.Context, name string, intent string) (context.Context, trace.Span) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, span := otel.Tracer(name).Start(parent, intent)
	ctx = WithFields(ctx,
		zap.String("role", name),
		zap.String("intent", intent),
		zap.String("traceID", span.SpanContext().TraceID().String()))
	return ctx, span
}

// Ctx 返回 ctx 中绑定的 Logger，没有时返回全局 Logger。
func Ctx(ctx context.Context) *MLogger {
	if ctx != nil {
		if lg, ok := ctx.Value(CtxLogKey).(*MLogger); ok {
			return lg
		}
	}
	return &MLogger{Logger: L()}
}

// Licensed to the LF AI & Data foundation under one
// or more contributor license agreements. See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership. The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"sync"
	"sync/atomic"

	"github.com/uber/jaeger-client-go/utils"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// MLogger 在 zap.Logger 之上增加按分组限流的日志输出。
type MLogger struct {
	*zap.Logger
	rl atomic.Pointer[utils.ReconfigurableRateLimiter]
}

// With 返回携带额外字段的子 Logger，字段在第一次输出时才编码。
// 子 Logger 沿用当前绑定的限流分组。
func (l *MLogger) With(fields ...zap.Field) *MLogger {
	nl := &MLogger{
		Logger: l.Logger.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return newLazyCore(core, fields)
		})),
	}
	if rl := l.rl.Load(); rl != nil {
		nl.rl.Store(rl)
	}
	return nl
}

// WithRateGroup 为 Logger 绑定名为 groupName 的限流器。
// 同名分组共享一个限流器，后一次调用的参数会覆盖之前的配置。
func (l *MLogger) WithRateGroup(groupName string, creditPerSecond, maxBalance float64) *MLogger {
	actual, loaded := _namedRateLimiters.LoadOrStore(groupName, utils.NewRateLimiter(creditPerSecond, maxBalance))
	rl := actual.(*utils.ReconfigurableRateLimiter)
	if loaded {
		rl.Update(creditPerSecond, maxBalance)
	}
	l.rl.Store(rl)
	return l
}

func (l *MLogger) limiter() RateLimiter {
	if rl := l.rl.Load(); rl != nil {
		return rl
	}
	return R()
}

// rated 在限流器放行时以 lvl 输出日志，返回是否输出。
func (l *MLogger) rated(lvl zapcore.Level, cost float64, msg string, fields []zap.Field) bool {
	if !l.limiter().CheckCredit(cost) {
		return false
	}
	l.WithOptions(zap.AddCallerSkip(2)).Log(lvl, msg, fields...)
	return true
}

// RatedInfo 限流输出 Info 日志。
func (l *MLogger) RatedInfo(cost float64, msg string, fields ...zap.Field) bool {
	return l.rated(zapcore.InfoLevel, cost, msg, fields)
}

// RatedWarn 限流输出 Warn 日志。
func (l *MLogger) RatedWarn(cost float64, msg string, fields ...zap.Field) bool {
	return l.rated(zapcore.WarnLevel, cost, msg, fields)
}

// lazyCore 推迟 core.With 的字段编码，直到 Logger 真正被使用。
// 参考 https://github.com/uber-go/zap/issues/1426。
type lazyCore struct {
	base zapcore.Core
	core func() zapcore.Core
}

var _ zapcore.Core = (*lazyCore)(nil)

func newLazyCore(base zapcore.Core, fields []zapcore.Field) zapcore.Core {
	return &lazyCore{
		base: base,
		core: sync.OnceValue(func() zapcore.Core {
			return base.With(fields)
		}),
	}
}

func (c *lazyCore) Enabled(lvl zapcore.Level) bool {
	return c.base.Enabled(lvl)
}

func (c *lazyCore) With(fields []zapcore.Field) zapcore.Core {
	return c.core().With(fields)
}

func (c *lazyCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	return c.core().Check(e, ce)
}

func (c *lazyCore) Write(e zapcore.Entry, fields []zapcore.Field) error {
	return c.core().Write(e, fields)
}

func (c *lazyCore) Sync() error {
	return c.core().Sync()
}

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
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/uber/jaeger-client-go/utils"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"gopkg.in/natefinch/lumberjack.v2"
)

func init() {
	lg, props := newStdLogger()
	ReplaceGlobals(lg, props)
	_globalR.Store(rateLimiterFromEnv())
}

// InitLogger 按 cfg 创建 Logger，可同时输出到文件与标准输出，均未开启时丢弃全部日志。
func InitLogger(cfg *Config, opts ...zap.Option) (*zap.Logger, *ZapProperties, error) {
	sinks, err := openSinks(cfg)
	if err != nil {
		return nil, nil, err
	}
	lg, props, err := InitLoggerWithWriteSyncer(cfg, zap.CombineWriteSyncers(sinks...), opts...)
	if err != nil {
		return nil, nil, err
	}
	// 全局的 Debug/Info 等函数多包了一层调用。
	return lg.WithOptions(zap.AddCallerSkip(1)), props, nil
}

// InitTestLogger 创建一个输出到 t.Logf 的 Logger，zap 内部错误会使测试失败。
func InitTestLogger(t zaptest.TestingT, cfg *Config, opts ...zap.Option) (*zap.Logger, *ZapProperties, error) {
	opts = append([]zap.Option{zap.ErrorOutput(testWriter{t: t, failOnWrite: true})}, opts...)
	return InitLoggerWithWriteSyncer(cfg, testWriter{t: t}, opts...)
}

// InitLoggerWithWriteSyncer 创建输出到 output 的 Logger。
func InitLoggerWithWriteSyncer(cfg *Config, output zapcore.WriteSyncer, opts ...zap.Option) (*zap.Logger, *ZapProperties, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}
	core := zapcore.NewCore(newZapEncoder(cfg), output, level)
	lg := zap.New(core, append(cfg.buildOptions(output), opts...)...)
	return lg, &ZapProperties{Core: core, Syncer: output, Level: level}, nil
}

// parseLevel 解析日志级别，"trace" 视同 "debug"，空串为 info。
func parseLevel(text string) (zap.AtomicLevel, error) {
	if strings.EqualFold(text, "trace") {
		text = "debug"
	}
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(text)); err != nil {
		return level, errors.Wrapf(err, "invalid log level %q", text)
	}
	return level, nil
}

func openSinks(cfg *Config) ([]zapcore.WriteSyncer, error) {
	var sinks []zapcore.WriteSyncer
	if cfg.File.Filename != "" {
		fl, err := newFileSink(&cfg.File)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, zapcore.AddSync(fl))
	}
	if cfg.Stdout {
		sinks = append(sinks, zapcore.Lock(os.Stdout))
	}
	return sinks, nil
}

// newFileSink 返回按大小滚动的日志文件，MaxSize 未设置时填入缺省值。
func newFileSink(cfg *FileLogConfig) (*lumberjack.Logger, error) {
	path := filepath.Join(cfg.RootPath, cfg.Filename)
	if st, err := os.Stat(path); err == nil && st.IsDir() {
		return nil, errors.Newf("log file %q is a directory", path)
	}
	if cfg.MaxSize == 0 {
		cfg.MaxSize = defaultLogMaxSize
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxDays,
		LocalTime:  true,
	}, nil
}

func newStdLogger() (*zap.Logger, *ZapProperties) {
	lg, props, _ := InitLogger(&Config{Level: "info", Stdout: true}, zap.OnFatal(zapcore.WriteThenPanic))
	return lg, props
}

// rateLimiterFromEnv 根据 CALLBENCH_LOG_RATE_* 环境变量创建全局限流器：
//
//   - CALLBENCH_LOG_RATE_ENABLE: 开启限流，默认关闭。
//   - CALLBENCH_LOG_RATE_CREDIT_PER_SECOND: 每秒补充的额度，默认 1。
//   - CALLBENCH_LOG_RATE_MAX_BALANCE: 额度上限，默认 60。
func rateLimiterFromEnv() RateLimiter {
	if !getenvBool("CALLBENCH_LOG_RATE_ENABLE", false) {
		return nopRateLimiter{}
	}
	return utils.NewRateLimiter(
		getenvFloat("CALLBENCH_LOG_RATE_CREDIT_PER_SECOND", 1),
		getenvFloat("CALLBENCH_LOG_RATE_MAX_BALANCE", 60),
	)
}

func getenvBool(key string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

func getenvFloat(key string, def float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(key)), 64)
	if err != nil {
		return def
	}
	return f
}

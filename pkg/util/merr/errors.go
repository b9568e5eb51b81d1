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

package merr

import (
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

const (
	CanceledCode int32 = 10000
	TimeoutCode  int32 = 10001
)

type ErrorType int32

const (
	SystemError ErrorType = 0
	InputError  ErrorType = 1
)

var ErrorTypeName = map[ErrorType]string{
	SystemError: "system_error",
	InputError:  "input_error",
}

func (err ErrorType) String() string {
	return ErrorTypeName[err]
}

// 叶子错误统一在此定义。
// WARN: 新增错误前，先确认下面已有的错误是否可以复用。
// 命名：Err + 相关前缀 + 错误名
var (
	// Parameter 相关
	ErrParameterInvalid = newBenchError("invalid parameter", 1100)
	ErrParameterMissing = newBenchError("missing parameter", 1101)

	// Codec 相关
	ErrCodecNotFound        = newBenchError("codec not found", 1500)
	ErrCodecEncodeFailed    = newBenchError("codec encode failed", 1501)
	ErrCodecDecodeFailed    = newBenchError("codec decode failed", 1502)
	ErrCodecUnsupportedType = newBenchError("codec unsupported type", 1503)

	// Field 相关
	ErrFieldNotFound = newBenchError("field not found", 1700)

	// Benchmark 相关
	ErrBenchmarkKindNotFound = newBenchError("benchmark kind not found", 2500)
	ErrBenchmarkFailed       = newBenchError("benchmark failed", 2501)

	// Do NOT export this,
	// never allow programmer using this, keep only for converting unknown error to benchError
	errUnexpected = newBenchError("unexpected error", (1<<16)-1)
)

type errorOption func(*benchError)

func WithErrorType(etype ErrorType) errorOption {
	return func(err *benchError) {
		err.errType = etype
	}
}

type benchError struct {
	msg     string
	errCode int32
	errType ErrorType
}

func newBenchError(msg string, code int32, options ...errorOption) benchError {
	err := benchError{
		msg:     msg,
		errCode: code,
	}

	for _, option := range options {
		option(&err)
	}
	return err
}

func (e benchError) code() int32 {
	return e.errCode
}

func (e benchError) Error() string {
	return e.msg
}

func (e benchError) Is(err error) bool {
	cause := errors.Cause(err)
	if cause, ok := cause.(benchError); ok {
		return e.errCode == cause.errCode
	}
	return false
}

type multiErrors struct {
	errs []error
}

func (e multiErrors) Unwrap() error {
	if len(e.errs) <= 1 {
		return nil
	}
	// 多个错误的 cause 定义为最后一个错误，
	// 这样 Code 等函数可以沿着 Unwrap 链得到最终原因。
	if len(e.errs) == 2 {
		return e.errs[1]
	}

	return multiErrors{
		errs: e.errs[1:],
	}
}

func (e multiErrors) Error() string {
	final := e.errs[0]
	for i := 1; i < len(e.errs); i++ {
		final = errors.Wrap(e.errs[i], final.Error())
	}
	return final.Error()
}

func (e multiErrors) Is(err error) bool {
	for _, item := range e.errs {
		if errors.Is(item, err) {
			return true
		}
	}
	return false
}

func Combine(errs ...error) error {
	errs = lo.Filter(errs, func(err error, _ int) bool { return err != nil })
	if len(errs) == 0 {
		return nil
	}
	return multiErrors{
		errs,
	}
}

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
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/lk2023060901/callbench/pkg/log"
)

const InputErrorFlagKey string = "is_input_error"

// Code 返回给定错误对应的错误码。
func Code(err error) int32 {
	if err == nil {
		return 0
	}

	cause := errors.Cause(err)
	switch specificErr := cause.(type) {
	case benchError:
		return specificErr.code()

	default:
		if errors.Is(specificErr, context.Canceled) {
			return CanceledCode
		} else if errors.Is(specificErr, context.DeadlineExceeded) {
			return TimeoutCode
		} else {
			return errUnexpected.code()
		}
	}
}

// IsCanceledOrTimeout 判断 err 是否由上下文取消或超时引起。
func IsCanceledOrTimeout(err error) bool {
	return errors.IsAny(err, context.Canceled, context.DeadlineExceeded)
}

// WrapErrAsInputError 将 err 标记为调用方输入导致的错误。
func WrapErrAsInputError(err error) error {
	if merr, ok := err.(benchError); ok {
		WithErrorType(InputError)(&merr)
		return merr
	}
	return err
}

// WrapErrAsInputErrorWhen 仅在 err 的错误码属于 targets 时标记为输入错误。
func WrapErrAsInputErrorWhen(err error, targets ...benchError) error {
	if merr, ok := err.(benchError); ok {
		for _, target := range targets {
			if target.errCode == merr.errCode {
				log.Info("mark error as input error", zap.Error(err))
				WithErrorType(InputError)(&merr)
				return merr
			}
		}
	}
	return err
}

// GetErrorType 返回 err 的错误类型，未标记的错误均视为 SystemError。
func GetErrorType(err error) ErrorType {
	if merr, ok := err.(benchError); ok {
		return merr.errType
	}

	return SystemError
}

// 参数相关错误封装。
func WrapErrParameterInvalidMsg(format string, args ...any) error {
	return wrapFieldsWithDesc(ErrParameterInvalid, fmt.Sprintf(format, args...))
}

func WrapErrParameterMissing[T any](param T, msg ...string) error {
	err := wrapFields(ErrParameterMissing,
		value("missing_param", param),
	)
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

// Codec 相关错误封装。
func WrapErrCodecNotFound(codec string, msg ...string) error {
	err := wrapFields(ErrCodecNotFound, value("codec", codec))
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

func WrapErrCodecEncode(codec string, err error) error {
	if err == nil {
		return nil
	}
	return wrapFieldsWithDesc(ErrCodecEncodeFailed, err.Error(), value("codec", codec))
}

func WrapErrCodecDecode(codec string, err error) error {
	if err == nil {
		return nil
	}
	return wrapFieldsWithDesc(ErrCodecDecodeFailed, err.Error(), value("codec", codec))
}

func WrapErrCodecUnsupportedType(codec string, v any, msg ...string) error {
	err := wrapFields(ErrCodecUnsupportedType,
		value("codec", codec),
		value("type", fmt.Sprintf("%T", v)),
	)
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

// Field 相关错误封装。
func WrapErrFieldNotFound[T any](field T, msg ...string) error {
	err := wrapFields(ErrFieldNotFound, value("field", field))
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

// Benchmark 相关错误封装。
func WrapErrBenchmarkKindNotFound(kind string, msg ...string) error {
	err := wrapFields(ErrBenchmarkKindNotFound, value("kind", kind))
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

func WrapErrBenchmarkFailed(name string, err error) error {
	if err == nil {
		return nil
	}
	return wrapFieldsWithDesc(ErrBenchmarkFailed, err.Error(), value("benchmark", name))
}

type errorField interface {
	String() string
}

type valueField struct {
	name  string
	value any
}

func value(name string, value any) valueField {
	return valueField{
		name,
		value,
	}
}

func (f valueField) String() string {
	return fmt.Sprintf("%s=%v", f.name, f.value)
}

func wrapFields(err benchError, fields ...errorField) error {
	for i := range fields {
		err.msg += fmt.Sprintf("[%s]", fields[i].String())
	}
	return err
}

func wrapFieldsWithDesc(err benchError, desc string, fields ...errorField) error {
	for i := range fields {
		err.msg += fmt.Sprintf("[%s]", fields[i].String())
	}
	err.msg += ": " + desc
	return err
}

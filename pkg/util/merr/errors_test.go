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
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/suite"
)

type ErrSuite struct {
	suite.Suite
}

func (s *ErrSuite) TestCode() {
	err := WrapErrCodecNotFound("msgpack")
	errors.Wrap(err, "failed to build serializer")
	s.ErrorIs(err, ErrCodecNotFound)
	s.Equal(Code(ErrCodecNotFound), Code(err))
	s.Equal(TimeoutCode, Code(context.DeadlineExceeded))
	s.Equal(CanceledCode, Code(context.Canceled))
	s.Equal(errUnexpected.errCode, Code(errUnexpected))
	s.Equal(errUnexpected.errCode, Code(errors.New("plain")))
	s.Equal(int32(0), Code(nil))

	sameCodeErr := newBenchError("new error", ErrCodecNotFound.errCode)
	s.True(sameCodeErr.Is(ErrCodecNotFound))
}

func (s *ErrSuite) TestWrap() {
	// 参数相关错误。
	s.ErrorIs(WrapErrParameterInvalidMsg("iterations %d", -1), ErrParameterInvalid)
	s.ErrorIs(WrapErrParameterMissing("serializers", "no serializer configured"), ErrParameterMissing)

	// Codec 相关错误。
	s.ErrorIs(WrapErrCodecNotFound("msgpack", "unknown serializer"), ErrCodecNotFound)
	s.ErrorIs(WrapErrCodecEncode("sonic", errors.New("unsupported type")), ErrCodecEncodeFailed)
	s.ErrorIs(WrapErrCodecDecode("sonic", errors.New("syntax error")), ErrCodecDecodeFailed)
	s.ErrorIs(WrapErrCodecUnsupportedType("protojson", make(chan int)), ErrCodecUnsupportedType)
	s.Nil(WrapErrCodecEncode("sonic", nil))
	s.Nil(WrapErrCodecDecode("sonic", nil))

	// 字段相关错误。
	s.ErrorIs(WrapErrFieldNotFound("foo", "failed to extract argument"), ErrFieldNotFound)

	// Benchmark 相关错误。
	s.ErrorIs(WrapErrBenchmarkKindNotFound("grpc"), ErrBenchmarkKindNotFound)
	s.ErrorIs(WrapErrBenchmarkFailed("json/sonic", errors.New("boom")), ErrBenchmarkFailed)
	s.Nil(WrapErrBenchmarkFailed("json/sonic", nil))
}

func (s *ErrSuite) TestMessage() {
	err := WrapErrCodecNotFound("msgpack")
	s.Equal("codec not found[codec=msgpack]", err.Error())

	err = WrapErrCodecDecode("std", errors.New("unexpected end of JSON input"))
	s.Equal("codec decode failed[codec=std]: unexpected end of JSON input", err.Error())

	err = WrapErrParameterInvalidMsg("rounds must be positive, got %d", 0)
	s.Equal("invalid parameter: rounds must be positive, got 0", err.Error())
	s.ErrorIs(err, ErrParameterInvalid)
}

func (s *ErrSuite) TestErrorType() {
	err := WrapErrCodecNotFound("msgpack")
	s.Equal(SystemError, GetErrorType(err))

	err = WrapErrAsInputError(err)
	s.Equal(InputError, GetErrorType(err))
	s.Equal("input_error", GetErrorType(err).String())

	err = WrapErrAsInputErrorWhen(WrapErrFieldNotFound("foo"), ErrCodecNotFound)
	s.Equal(SystemError, GetErrorType(err))
	err = WrapErrAsInputErrorWhen(WrapErrFieldNotFound("foo"), ErrFieldNotFound)
	s.Equal(InputError, GetErrorType(err))
}

func (s *ErrSuite) TestCanceledOrTimeout() {
	s.True(IsCanceledOrTimeout(context.Canceled))
	s.True(IsCanceledOrTimeout(errors.Wrap(context.DeadlineExceeded, "run")))
	s.False(IsCanceledOrTimeout(ErrBenchmarkFailed))
}

func (s *ErrSuite) TestCombine() {
	var (
		errFirst  = errors.New("first")
		errSecond = errors.New("second")
		errThird  = errors.New("third")
	)

	err := Combine(errFirst, errSecond)
	s.True(errors.Is(err, errFirst))
	s.True(errors.Is(err, errSecond))
	s.False(errors.Is(err, errThird))

	s.Equal("first: second", err.Error())
}

func (s *ErrSuite) TestCombineWithNil() {
	err := errors.New("non-nil")

	err = Combine(nil, err)
	s.NotNil(err)
}

func (s *ErrSuite) TestCombineOnlyNil() {
	err := Combine(nil, nil)
	s.Nil(err)
}

func (s *ErrSuite) TestCombineCode() {
	err := Combine(WrapErrFieldNotFound("foo"), WrapErrCodecNotFound("msgpack"))
	s.Equal(Code(ErrCodecNotFound), Code(err))
}

func TestErrors(t *testing.T) {
	suite.Run(t, new(ErrSuite))
}

package bench

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/callbench/internal/serializer"
	"github.com/lk2023060901/callbench/pkg/util/merr"
)

type call struct {
	foo, bar, baz any
}

// recorder 记录被测函数的每一次调用。
type recorder struct {
	calls []call
}

func (r *recorder) target(foo, bar, baz any) bool {
	r.calls = append(r.calls, call{foo, bar, baz})
	return Function(foo, bar, baz)
}

func TestFunctionAlwaysTrue(t *testing.T) {
	inputs := []call{
		{nil, nil, nil},
		{1, "a", []any{1, 2}},
		{"hello", "world", 1234},
		{false, 0.5, map[string]any{"k": "v"}},
	}
	for _, in := range inputs {
		assert.True(t, Function(in.foo, in.bar, in.baz))
	}
}

func TestDirectFactory(t *testing.T) {
	for _, n := range []int{0, 1, 3, 100} {
		rec := &recorder{}
		bm := DirectFactory(n, 1, "a", []any{1, 2}, WithTarget(rec.target))
		require.NoError(t, bm())
		assert.Len(t, rec.calls, n)
		for _, c := range rec.calls {
			assert.Equal(t, call{1, "a", []any{1, 2}}, c)
		}
	}
}

func TestDirectFactoryRepeatable(t *testing.T) {
	rec := &recorder{}
	bm := DirectFactory(3, 1, "a", []any{1, 2}, WithTarget(rec.target))
	require.NoError(t, bm())
	require.NoError(t, bm())
	assert.Len(t, rec.calls, 6)
}

func TestDirectFactoryNegative(t *testing.T) {
	rec := &recorder{}
	bm := DirectFactory(-5, 1, 2, 3, WithTarget(rec.target))
	require.NoError(t, bm())
	assert.Empty(t, rec.calls)
}

func TestDirectFactoryDefaultTarget(t *testing.T) {
	// 未知序列化名称对直连基准没有影响。
	bm := DirectFactory(10, "hello", "world", 1234, WithSerializer("unknown"), WithTarget(nil))
	assert.NoError(t, bm())
}

func TestJSONFactory(t *testing.T) {
	for _, name := range serializer.Names() {
		t.Run(name, func(t *testing.T) {
			rec := &recorder{}
			var results [][]byte
			bm, err := JSONFactory(2, 1, 2, 3,
				WithSerializer(name),
				WithTarget(rec.target),
				WithResultHandler(func(data []byte) {
					results = append(results, data)
				}))
			require.NoError(t, err)
			require.NoError(t, bm())

			// JSON 数值统一解码为 float64。
			require.Len(t, rec.calls, 2)
			for _, c := range rec.calls {
				assert.Equal(t, call{float64(1), float64(2), float64(3)}, c)
			}

			codec, err := NewCodec(name)
			require.NoError(t, err)
			require.Len(t, results, 2)
			for _, data := range results {
				assert.Equal(t, "true", string(data))
				ok, err := codec.DecodeResult(data)
				require.NoError(t, err)
				assert.True(t, ok)
			}
		})
	}
}

func TestJSONFactoryZeroIterations(t *testing.T) {
	rec := &recorder{}
	bm, err := JSONFactory(0, "hello", "world", 1234, WithTarget(rec.target))
	require.NoError(t, err)
	require.NoError(t, bm())
	assert.Empty(t, rec.calls)
}

func TestJSONFactoryUnknownSerializer(t *testing.T) {
	bm, err := JSONFactory(1, 1, 2, 3, WithSerializer("msgpack"))
	assert.Nil(t, bm)
	assert.ErrorIs(t, err, merr.ErrCodecNotFound)
}

func TestJSONFactoryUnencodable(t *testing.T) {
	_, err := JSONFactory(1, make(chan int), 2, 3, WithSerializer(serializer.NameStdJSON))
	assert.ErrorIs(t, err, merr.ErrCodecEncodeFailed)

	_, err = JSONFactory(1, make(chan int), 2, 3, WithSerializer(serializer.NameJSONIter))
	assert.ErrorIs(t, err, merr.ErrCodecEncodeFailed)

	_, err = JSONFactory(1, make(chan int), 2, 3, WithSerializer(serializer.NameProtoJSON))
	assert.ErrorIs(t, err, merr.ErrCodecEncodeFailed)
}

// brokenSerializer 编码正常，解码时按 mode 制造错误。
type brokenSerializer struct {
	serializer.StdJSONSerializer
	mode string
}

func (s brokenSerializer) Unmarshal(data []byte, v any) error {
	switch s.mode {
	case "error":
		return errors.New("malformed input")
	case "drop":
		if err := s.StdJSONSerializer.Unmarshal(data, v); err != nil {
			return err
		}
		if rec, ok := v.(*map[string]any); ok {
			delete(*rec, KeyBaz)
		}
		return nil
	}
	return s.StdJSONSerializer.Unmarshal(data, v)
}

func TestJSONFactoryDecodeFailure(t *testing.T) {
	rec := &recorder{}
	bm, err := JSONFactory(3, 1, 2, 3,
		WithCodec(Codec{Name: "broken", Serializer: brokenSerializer{mode: "error"}}),
		WithTarget(rec.target))
	require.NoError(t, err)

	err = bm()
	assert.ErrorIs(t, err, merr.ErrCodecDecodeFailed)
	assert.Contains(t, err.Error(), "codec=broken")
	assert.Empty(t, rec.calls)
}

func TestJSONFactoryMissingField(t *testing.T) {
	rec := &recorder{}
	bm, err := JSONFactory(3, 1, 2, 3,
		WithCodec(Codec{Name: "broken", Serializer: brokenSerializer{mode: "drop"}}),
		WithTarget(rec.target))
	require.NoError(t, err)

	err = bm()
	assert.ErrorIs(t, err, merr.ErrFieldNotFound)
	assert.Contains(t, err.Error(), "field=baz")
	assert.Empty(t, rec.calls)
}

func TestCallerJSONFactory(t *testing.T) {
	for _, name := range serializer.Names() {
		t.Run(name, func(t *testing.T) {
			rec := &recorder{}
			var records [][]byte
			bm, err := CallerJSONFactory(3, "hello", "world", 1234,
				WithSerializer(name),
				WithTarget(rec.target),
				WithResultHandler(func(data []byte) {
					records = append(records, data)
				}))
			require.NoError(t, err)
			require.NoError(t, bm())

			// 调用方基准不会调用被测函数。
			assert.Empty(t, rec.calls)

			codec, err := NewCodec(name)
			require.NoError(t, err)
			require.Len(t, records, 3)
			for _, data := range records {
				got, err := codec.DecodeRecord(data)
				require.NoError(t, err)
				assert.Equal(t, NewRecord("hello", "world", float64(1234)), got)
			}
		})
	}
}

func TestCallerJSONFactoryErrors(t *testing.T) {
	_, err := CallerJSONFactory(1, 1, 2, 3, WithSerializer("msgpack"))
	assert.ErrorIs(t, err, merr.ErrCodecNotFound)

	_, err = CallerJSONFactory(1, make(chan int), 2, 3, WithSerializer(serializer.NameStdJSON))
	assert.ErrorIs(t, err, merr.ErrCodecEncodeFailed)

	bm, err := CallerJSONFactory(2, 1, 2, 3,
		WithCodec(Codec{Name: "broken", Serializer: brokenSerializer{mode: "error"}}))
	require.NoError(t, err)
	assert.ErrorIs(t, bm(), merr.ErrCodecDecodeFailed)
}

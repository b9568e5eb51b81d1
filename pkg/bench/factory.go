package bench

// DirectFactory 构造直连调用基准：每次执行循环 n 次，
// 每次以构造时保存的三个值调用被测函数并丢弃结果。n <= 0 时不做任何调用。
func DirectFactory(n int, foo, bar, baz any, opts ...Option) Benchmark {
	o := applyOptions(opts)
	target := o.target
	return func() error {
		for i := 0; i < n; i++ {
			target(foo, bar, baz)
		}
		return nil
	}
}

// JSONFactory 构造编解码往返基准。
//
// 构造时将 {foo, bar, baz} 预先编码为文本记录；之后每次迭代：
// 解码记录、按字段取出参数、调用被测函数、再将布尔结果编码为文本。
// 参数无法编码时构造失败；迭代中的任何编解码错误都会中止循环并返回。
func JSONFactory(n int, foo, bar, baz any, opts ...Option) (Benchmark, error) {
	o := applyOptions(opts)
	codec, err := o.resolveCodec()
	if err != nil {
		return nil, err
	}
	data, err := codec.EncodeRecord(foo, bar, baz)
	if err != nil {
		return nil, err
	}

	target, onResult := o.target, o.onResult
	return func() error {
		for i := 0; i < n; i++ {
			rec, err := codec.DecodeRecord(data)
			if err != nil {
				return err
			}
			a, b, c, err := RecordArgs(rec)
			if err != nil {
				return err
			}
			result, err := codec.EncodeResult(target(a, b, c))
			if err != nil {
				return err
			}
			if onResult != nil {
				onResult(result)
			}
		}
		return nil
	}, nil
}

// CallerJSONFactory 构造调用方一侧的编解码基准：
// 每次迭代编码参数记录，并把预先编码好的结果文本解码为布尔值。
// 被测函数本身不会被调用，测量的是跨边界调用中调用方承担的那一半开销。
func CallerJSONFactory(n int, foo, bar, baz any, opts ...Option) (Benchmark, error) {
	o := applyOptions(opts)
	codec, err := o.resolveCodec()
	if err != nil {
		return nil, err
	}
	if _, err := codec.EncodeRecord(foo, bar, baz); err != nil {
		return nil, err
	}
	resultData, err := codec.EncodeResult(true)
	if err != nil {
		return nil, err
	}

	onResult := o.onResult
	return func() error {
		for i := 0; i < n; i++ {
			data, err := codec.EncodeRecord(foo, bar, baz)
			if err != nil {
				return err
			}
			if _, err := codec.DecodeResult(resultData); err != nil {
				return err
			}
			if onResult != nil {
				onResult(data)
			}
		}
		return nil
	}, nil
}

package bench

import (
	"context"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/lk2023060901/callbench/internal/serializer"
	"github.com/lk2023060901/callbench/pkg/log"
	"github.com/lk2023060901/callbench/pkg/metrics"
	"github.com/lk2023060901/callbench/pkg/util/merr"
)

// Kind 表示基准的类别。
type Kind string

const (
	// KindDirect 直接调用被测函数。
	KindDirect Kind = "direct"
	// KindJSON 解码参数记录、调用被测函数、编码结果。
	KindJSON Kind = "json"
	// KindCallerJSON 编码参数记录、解码结果，不调用被测函数。
	KindCallerJSON Kind = "caller-json"
)

// Kinds 返回全部基准类别，顺序即执行顺序。
func Kinds() []Kind {
	return []Kind{KindDirect, KindJSON, KindCallerJSON}
}

// Args 为被测函数的三个参数。
type Args struct {
	Foo any `mapstructure:"foo" json:"foo"`
	Bar any `mapstructure:"bar" json:"bar"`
	Baz any `mapstructure:"baz" json:"baz"`
}

// Config 描述一次基准运行。
type Config struct {
	// Iterations 为每个基准单次执行的循环次数。
	Iterations int `mapstructure:"iterations" json:"iterations"`
	// Rounds 为整组基准重复执行的轮数。
	Rounds int `mapstructure:"rounds" json:"rounds"`
	// Kinds 为要执行的基准类别。
	Kinds []string `mapstructure:"kinds" json:"kinds"`
	// Serializers 为编解码类基准使用的序列化实现名称。
	Serializers []string `mapstructure:"serializers" json:"serializers"`
	// Args 为传给被测函数的参数。
	Args Args `mapstructure:"args" json:"args"`
}

const (
	defaultIterations = 100000
	defaultRounds     = 1
)

// DefaultConfig 返回缺省配置：全部类别、全部序列化实现、参数 hello/world/1234。
func DefaultConfig() Config {
	return Config{
		Iterations: defaultIterations,
		Rounds:     defaultRounds,
		Kinds: lo.Map(Kinds(), func(k Kind, _ int) string {
			return string(k)
		}),
		Serializers: serializer.Names(),
		Args: Args{
			Foo: "hello",
			Bar: "world",
			Baz: 1234,
		},
	}
}

// Result 为单个基准在某一轮中的测量结果。
type Result struct {
	Name       string        `json:"name"`
	Kind       Kind          `json:"kind"`
	Serializer string        `json:"serializer,omitempty"`
	Round      int           `json:"round"`
	Iterations int           `json:"iterations"`
	Elapsed    time.Duration `json:"elapsed"`
}

// NsPerOp 返回平均每次迭代的耗时（纳秒）。
func (r Result) NsPerOp() float64 {
	if r.Iterations <= 0 {
		return 0
	}
	return float64(r.Elapsed.Nanoseconds()) / float64(r.Iterations)
}

type benchCase struct {
	name  string
	kind  Kind
	codec string
	build func() (Benchmark, error)
}

// Runner 按配置依次执行各个基准并收集结果。
//
// 所有基准在调用方 goroutine 中顺序执行，基准之间检查 ctx 是否已取消。
type Runner struct {
	log.Binder

	cfg   Config
	cases []benchCase
}

// NewRunner 校验配置并构造 Runner。
func NewRunner(cfg Config) (*Runner, error) {
	if cfg.Iterations < 0 {
		return nil, merr.WrapErrAsInputError(merr.WrapErrParameterInvalidMsg("iterations must be non-negative, got %d", cfg.Iterations))
	}
	if cfg.Rounds < 1 {
		return nil, merr.WrapErrAsInputError(merr.WrapErrParameterInvalidMsg("rounds must be positive, got %d", cfg.Rounds))
	}
	kinds := lo.Uniq(cfg.Kinds)
	if len(kinds) == 0 {
		return nil, merr.WrapErrAsInputError(merr.WrapErrParameterMissing("kinds"))
	}
	for _, k := range kinds {
		if !lo.Contains(Kinds(), Kind(k)) {
			return nil, merr.WrapErrAsInputError(merr.WrapErrBenchmarkKindNotFound(k))
		}
	}

	r := &Runner{cfg: cfg}
	r.BindComponent("runner")

	needCodec := lo.ContainsBy(kinds, func(k string) bool { return Kind(k) != KindDirect })
	names := lo.Uniq(cfg.Serializers)
	if needCodec && len(names) == 0 {
		return nil, merr.WrapErrAsInputError(merr.WrapErrParameterMissing("serializers"))
	}

	args := cfg.Args
	codecs := make([]Codec, 0, len(names))
	if needCodec {
		for _, name := range names {
			codec, err := NewCodec(name)
			if err != nil {
				return nil, merr.WrapErrAsInputErrorWhen(err, merr.ErrCodecNotFound)
			}
			// 提前编码一次参数，尽早发现不可编码的参数。
			data, err := codec.EncodeRecord(args.Foo, args.Bar, args.Baz)
			if err != nil {
				return nil, merr.WrapErrAsInputErrorWhen(err, merr.ErrCodecEncodeFailed, merr.ErrCodecUnsupportedType)
			}
			metrics.BenchRecordBytes.WithLabelValues(name).Set(float64(len(data)))
			codecs = append(codecs, codec)
		}
	}

	n := cfg.Iterations
	for _, k := range Kinds() {
		if !lo.Contains(kinds, string(k)) {
			continue
		}
		if k == KindDirect {
			r.cases = append(r.cases, benchCase{
				name: string(k),
				kind: k,
				build: func() (Benchmark, error) {
					return DirectFactory(n, args.Foo, args.Bar, args.Baz), nil
				},
			})
			continue
		}
		factory := JSONFactory
		if k == KindCallerJSON {
			factory = CallerJSONFactory
		}
		for _, codec := range codecs {
			r.cases = append(r.cases, benchCase{
				name:  string(k) + "/" + codec.Name,
				kind:  k,
				codec: codec.Name,
				build: func() (Benchmark, error) {
					return factory(n, args.Foo, args.Bar, args.Baz, WithCodec(codec))
				},
			})
		}
	}

	r.Logger().Info("runner created",
		zap.Int("iterations", cfg.Iterations),
		zap.Int("rounds", cfg.Rounds),
		zap.Strings("cases", r.CaseNames()))
	return r, nil
}

// Config 返回 Runner 使用的配置。
func (r *Runner) Config() Config {
	return r.cfg
}

// CaseNames 按执行顺序返回全部基准名称。
func (r *Runner) CaseNames() []string {
	return lo.Map(r.cases, func(c benchCase, _ int) string { return c.name })
}

// Run 执行全部轮次的基准。
//
// 任一基准失败时立即停止并返回已完成的结果与包装后的错误；
// ctx 被取消时返回 ctx.Err()。
func (r *Runner) Run(ctx context.Context) ([]Result, error) {
	ctx, span := log.NewIntentContext(log.WithLogger(ctx, r.Logger()), "callbench", "run")
	defer span.End()

	logger := log.Ctx(ctx)
	logger.Info("benchmark run started",
		zap.Int("iterations", r.cfg.Iterations),
		zap.Int("rounds", r.cfg.Rounds),
		zap.Int("cases", len(r.cases)))

	results := make([]Result, 0, r.cfg.Rounds*len(r.cases))
	for round := 1; round <= r.cfg.Rounds; round++ {
		for _, c := range r.cases {
			if err := ctx.Err(); merr.IsCanceledOrTimeout(err) {
				logger.Warn("benchmark run canceled", zap.Int("round", round), zap.Error(err))
				return results, err
			}
			res, err := r.runCase(ctx, round, c)
			if err != nil {
				metrics.BenchRuns.WithLabelValues(c.name, metrics.FailLabel).Inc()
				logger.Warn("benchmark failed",
					log.FieldBenchmark(c.name),
					zap.Int("round", round),
					zap.Int32("code", merr.Code(err)),
					zap.Error(err))
				return results, merr.WrapErrBenchmarkFailed(c.name, err)
			}
			results = append(results, res)
		}
	}

	logger.Info("benchmark run finished", zap.Int("results", len(results)))
	return results, nil
}

// runCase 构造并执行一次基准，构造过程不计入耗时。
func (r *Runner) runCase(ctx context.Context, round int, c benchCase) (Result, error) {
	bm, err := c.build()
	if err != nil {
		return Result{}, err
	}

	start := time.Now()
	if err := bm(); err != nil {
		return Result{}, err
	}
	elapsed := time.Since(start)

	res := Result{
		Name:       c.name,
		Kind:       c.kind,
		Serializer: c.codec,
		Round:      round,
		Iterations: r.cfg.Iterations,
		Elapsed:    elapsed,
	}

	metrics.BenchRuns.WithLabelValues(c.name, metrics.SuccessLabel).Inc()
	metrics.BenchIterations.WithLabelValues(c.name).Add(float64(res.Iterations))
	metrics.BenchOpLatency.WithLabelValues(c.name, string(c.kind), c.codec).Observe(res.NsPerOp())

	log.Ctx(ctx).RatedInfo(1, "benchmark finished",
		log.FieldBenchmark(c.name),
		log.FieldSerializer(c.codec),
		zap.Int("round", round),
		zap.Duration("elapsed", elapsed),
		zap.Float64("nsPerOp", res.NsPerOp()))
	return res, nil
}

package bench

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"

	"github.com/lk2023060901/callbench/internal/serializer"
	"github.com/lk2023060901/callbench/pkg/metrics"
	"github.com/lk2023060901/callbench/pkg/util/merr"
)

type RunnerSuite struct {
	suite.Suite
}

func (s *RunnerSuite) smallConfig() Config {
	cfg := DefaultConfig()
	cfg.Iterations = 10
	cfg.Rounds = 2
	cfg.Serializers = []string{serializer.NameSonic, serializer.NameStdJSON}
	return cfg
}

func (s *RunnerSuite) TestDefaultConfig() {
	cfg := DefaultConfig()
	s.Equal(100000, cfg.Iterations)
	s.Equal(1, cfg.Rounds)
	s.Equal([]string{"direct", "json", "caller-json"}, cfg.Kinds)
	s.Equal(serializer.Names(), cfg.Serializers)
	s.Equal(Args{Foo: "hello", Bar: "world", Baz: 1234}, cfg.Args)

	r, err := NewRunner(cfg)
	s.Require().NoError(err)
	s.Len(r.CaseNames(), 1+2*len(serializer.Names()))
}

func (s *RunnerSuite) TestValidation() {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"negative iterations", func(c *Config) { c.Iterations = -1 }, merr.ErrParameterInvalid},
		{"zero rounds", func(c *Config) { c.Rounds = 0 }, merr.ErrParameterInvalid},
		{"no kinds", func(c *Config) { c.Kinds = nil }, merr.ErrParameterMissing},
		{"unknown kind", func(c *Config) { c.Kinds = []string{"direct", "xml"} }, merr.ErrBenchmarkKindNotFound},
		{"no serializers", func(c *Config) { c.Serializers = nil }, merr.ErrParameterMissing},
		{"unknown serializer", func(c *Config) { c.Serializers = []string{"msgpack"} }, merr.ErrCodecNotFound},
		{"unencodable args", func(c *Config) {
			c.Serializers = []string{serializer.NameStdJSON}
			c.Args.Foo = make(chan int)
		}, merr.ErrCodecEncodeFailed},
	}
	for _, c := range cases {
		s.Run(c.name, func() {
			cfg := s.smallConfig()
			c.mutate(&cfg)
			r, err := NewRunner(cfg)
			s.Nil(r)
			s.ErrorIs(err, c.want)
			s.Equal(merr.InputError, merr.GetErrorType(err))
		})
	}
}

func (s *RunnerSuite) TestDirectOnlyNeedsNoSerializer() {
	cfg := s.smallConfig()
	cfg.Kinds = []string{"direct"}
	cfg.Serializers = nil
	cfg.Args.Foo = make(chan int)

	r, err := NewRunner(cfg)
	s.Require().NoError(err)
	s.Equal([]string{"direct"}, r.CaseNames())

	results, err := r.Run(context.Background())
	s.Require().NoError(err)
	s.Len(results, 2)
}

func (s *RunnerSuite) TestCaseOrder() {
	cfg := s.smallConfig()
	// 类别按固定顺序执行，与配置中的顺序无关，重复项被去除。
	cfg.Kinds = []string{"caller-json", "direct", "json", "direct"}
	cfg.Serializers = []string{"std", "sonic", "std"}

	r, err := NewRunner(cfg)
	s.Require().NoError(err)
	s.Equal([]string{
		"direct",
		"json/std",
		"json/sonic",
		"caller-json/std",
		"caller-json/sonic",
	}, r.CaseNames())
	s.Equal(cfg, r.Config())
}

func (s *RunnerSuite) TestRun() {
	cfg := s.smallConfig()
	r, err := NewRunner(cfg)
	s.Require().NoError(err)

	iterBefore := testutil.ToFloat64(metrics.BenchIterations.WithLabelValues("json/sonic"))
	runsBefore := testutil.ToFloat64(metrics.BenchRuns.WithLabelValues("direct", metrics.SuccessLabel))

	results, err := r.Run(context.Background())
	s.Require().NoError(err)
	s.Len(results, cfg.Rounds*len(r.CaseNames()))

	for i, res := range results {
		s.Equal(i/len(r.CaseNames())+1, res.Round)
		s.Equal(r.CaseNames()[i%len(r.CaseNames())], res.Name)
		s.Equal(cfg.Iterations, res.Iterations)
		s.GreaterOrEqual(res.Elapsed.Nanoseconds(), int64(0))
	}

	direct := lo.Filter(results, func(res Result, _ int) bool { return res.Kind == KindDirect })
	s.Len(direct, 2)
	s.Empty(direct[0].Serializer)

	json := lo.Filter(results, func(res Result, _ int) bool { return res.Kind == KindJSON })
	s.Len(json, 4)
	s.ElementsMatch([]string{"sonic", "std", "sonic", "std"}, lo.Map(json, func(res Result, _ int) string { return res.Serializer }))

	s.Equal(iterBefore+20, testutil.ToFloat64(metrics.BenchIterations.WithLabelValues("json/sonic")))
	s.Equal(runsBefore+2, testutil.ToFloat64(metrics.BenchRuns.WithLabelValues("direct", metrics.SuccessLabel)))
	s.Greater(testutil.ToFloat64(metrics.BenchRecordBytes.WithLabelValues("sonic")), 0.0)
}

func (s *RunnerSuite) TestRunZeroIterations() {
	cfg := s.smallConfig()
	cfg.Iterations = 0
	cfg.Rounds = 1

	r, err := NewRunner(cfg)
	s.Require().NoError(err)
	results, err := r.Run(context.Background())
	s.Require().NoError(err)
	for _, res := range results {
		s.Zero(res.Iterations)
		s.Zero(res.NsPerOp())
	}
}

func (s *RunnerSuite) TestRunCanceled() {
	r, err := NewRunner(s.smallConfig())
	s.Require().NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := r.Run(ctx)
	s.Empty(results)
	s.ErrorIs(err, context.Canceled)
}

func (s *RunnerSuite) TestRunDeadlineExceeded() {
	r, err := NewRunner(s.smallConfig())
	s.Require().NoError(err)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	results, err := r.Run(ctx)
	s.Empty(results)
	s.ErrorIs(err, context.DeadlineExceeded)
	s.True(merr.IsCanceledOrTimeout(err))
}

func (s *RunnerSuite) TestRunCaseFailure() {
	r, err := NewRunner(s.smallConfig())
	s.Require().NoError(err)

	// 用会失败的基准替换第二个用例。
	r.cases[1].build = func() (Benchmark, error) {
		return JSONFactory(1, 1, 2, 3,
			WithCodec(Codec{Name: "broken", Serializer: brokenSerializer{mode: "error"}}))
	}
	failBefore := testutil.ToFloat64(metrics.BenchRuns.WithLabelValues(r.cases[1].name, metrics.FailLabel))

	results, err := r.Run(context.Background())
	s.ErrorIs(err, merr.ErrBenchmarkFailed)
	s.Contains(err.Error(), "benchmark="+r.cases[1].name)
	s.Equal(merr.Code(merr.ErrBenchmarkFailed), merr.Code(err))
	s.Equal(merr.SystemError, merr.GetErrorType(err))
	s.Len(results, 1)
	s.Equal(failBefore+1, testutil.ToFloat64(metrics.BenchRuns.WithLabelValues(r.cases[1].name, metrics.FailLabel)))
}

func TestRunner(t *testing.T) {
	suite.Run(t, new(RunnerSuite))
}

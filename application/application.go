package application

import (
	"context"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/lk2023060901/callbench/pkg/bench"
	zlog "github.com/lk2023060901/callbench/pkg/log"
	"github.com/lk2023060901/callbench/pkg/metrics"
	"github.com/lk2023060901/callbench/pkg/util/merr"
	"github.com/lk2023060901/callbench/pkg/util/hardware"
	zviper "github.com/lk2023060901/callbench/pkg/util/viper"
)

const (
	defaultConfigPath = "./config.yaml"

	envConfigPath = "CALLBENCH_CONFIG_FILE_PATH"
	envPrefix     = "CALLBENCH"

	benchKey   = "bench"
	loggingKey = "logging"

	// benchLoggerName 为基准运行使用的模块日志名称。
	benchLoggerName = "bench"
)

// Application 是 callbench 的运行时容器，负责加载配置、初始化日志与指标，
// 并按配置执行一次完整的基准运行。
type Application struct {
	cfg        *zviper.Config
	loggers    map[string]*zlog.MLogger
	benchCfg   bench.Config
	registerer prometheus.Registerer
	host       hardware.Info
	results    []bench.Result
}

// Option 用于配置 Application。
type Option func(a *Application)

// WithRegisterer 指定指标注册到的 Registerer，默认为 prometheus.DefaultRegisterer。
func WithRegisterer(r prometheus.Registerer) Option {
	return func(a *Application) {
		a.registerer = r
	}
}

// New creates a new Application instance.
func New(opts ...Option) *Application {
	a := &Application{
		benchCfg: bench.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run 使用 os.Args 作为命令行参数运行。
func (a *Application) Run() error {
	return a.RunArgs(context.Background(), os.Args[1:])
}

// RunArgs 解析命令行参数并加载配置文件，优先级如下：
//  1. 缺省：./config.yaml，文件不存在时使用内置缺省值
//  2. 环境变量：CALLBENCH_CONFIG_FILE_PATH
//  3. 命令行：--config <path> 或 --config=<path>
//
// 随后初始化日志与指标并执行基准，结果通过 Results 获取。
func (a *Application) RunArgs(ctx context.Context, args []string) error {
	cfg, err := a.loadConfig(args)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if err := a.initLogging(); err != nil {
		return err
	}
	if err := a.initBenchConfig(); err != nil {
		return err
	}

	registerer := a.registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	// 每个 Registerer 都持有完整的基准指标。
	metrics.Register(registerer)

	a.host = hardware.Collect()
	logger := a.Logger(benchLoggerName)
	logger.Info("host collected",
		zap.String("os", a.host.OS),
		zap.String("arch", a.host.Arch),
		zap.String("cpu", a.host.CPUModel),
		zap.Int("cpus", a.host.CPUNum))

	runner, err := bench.NewRunner(a.benchCfg)
	if err != nil {
		return err
	}
	runner.SetLogger(logger.With(zlog.FieldComponent("runner")))

	results, err := runner.Run(ctx)
	a.results = results
	return err
}

// Config returns the loaded configuration, if any.
func (a *Application) Config() *zviper.Config {
	return a.cfg
}

// BenchConfig 返回合并了配置文件与环境变量后的基准配置。
func (a *Application) BenchConfig() bench.Config {
	return a.benchCfg
}

// Host 返回运行基准的主机信息。
func (a *Application) Host() hardware.Info {
	return a.host
}

// Results 返回最近一次运行得到的结果，运行失败时为已完成的部分。
func (a *Application) Results() []bench.Result {
	return a.results
}

// Logger returns a named logger created from configuration.
// If the name is unknown, it falls back to the global logger.
func (a *Application) Logger(name string) *zlog.MLogger {
	if lg, ok := a.loggers[name]; ok && lg != nil {
		return lg
	}
	return zlog.With(zlog.FieldModule(name))
}

// Sync 刷新全部模块 Logger，返回合并后的错误。
func (a *Application) Sync() error {
	errs := make([]error, 0, len(a.loggers))
	for name, lg := range a.loggers {
		if err := lg.Sync(); err != nil {
			errs = append(errs, errors.Wrapf(err, "sync module logger %q", name))
		}
	}
	return merr.Combine(errs...)
}

// loadConfig resolves config file path and loads it via viper wrapper.
func (a *Application) loadConfig(args []string) (*zviper.Config, error) {
	configPath := defaultConfigPath
	explicit := false

	if envPath := strings.TrimSpace(os.Getenv(envConfigPath)); envPath != "" {
		configPath = envPath
		explicit = true
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--config" {
			if i+1 >= len(args) {
				return nil, errors.New("missing value after --config")
			}
			configPath = args[i+1]
			explicit = true
			i++
			continue
		}
		if strings.HasPrefix(arg, "--config=") {
			if val := strings.TrimPrefix(arg, "--config="); val != "" {
				configPath = val
				explicit = true
			}
		}
	}

	cfg := zviper.New()
	if !explicit {
		if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
	}
	if err := cfg.LoadFile(configPath); err != nil {
		return nil, errors.Wrapf(err, "failed to load config file %q", configPath)
	}
	return cfg, nil
}

// initLogging initializes global and module-level loggers.
func (a *Application) initLogging() error {
	if err := a.initGlobalLoggerFromEnv(); err != nil {
		return err
	}
	return a.initModuleLoggersFromConfig()
}

// initGlobalLoggerFromEnv configures the process-wide logger based on CALLBENCH_LOG_* env vars.
//
//   - CALLBENCH_LOG_ENABLE: "1"/"true" to enable outputs; others treated as disabled.
//   - CALLBENCH_LOG_LEVEL: log level (default "info").
//   - CALLBENCH_LOG_STDOUT: whether to log to stdout (default false).
//   - CALLBENCH_LOG_FILE_DIR: log directory.
//   - CALLBENCH_LOG_FILE: log file name (empty means no file).
//   - CALLBENCH_LOG_FORMAT: log format ("console" or "json", default "console").
func (a *Application) initGlobalLoggerFromEnv() error {
	cfg := &zlog.Config{
		Level:  getenvDefault("CALLBENCH_LOG_LEVEL", "info"),
		Format: getenvDefault("CALLBENCH_LOG_FORMAT", "console"),
		Stdout: getenvBool("CALLBENCH_LOG_STDOUT", false),
		File: zlog.FileLogConfig{
			RootPath: getenvDefault("CALLBENCH_LOG_FILE_DIR", ""),
			Filename: getenvDefault("CALLBENCH_LOG_FILE", ""),
		},
	}

	// 未开启时不输出到任何位置。
	if !getenvBool("CALLBENCH_LOG_ENABLE", false) {
		cfg.Stdout = false
		cfg.File.Filename = ""
	}

	logger, props, err := zlog.InitLogger(cfg)
	if err != nil {
		return errors.Wrap(err, "init global logger from env")
	}
	zlog.ReplaceGlobals(logger, props)
	return nil
}

// initModuleLoggersFromConfig creates named loggers from YAML config under "logging" key.
//
// Example:
//
//	logging:
//	  bench:
//	    level: debug
//	    stdout: true
//	    file:
//	      rootpath: ./logs
//	      filename: bench.log
func (a *Application) initModuleLoggersFromConfig() error {
	raw := make(map[string]zlog.Config)
	if err := a.cfg.UnmarshalKey(loggingKey, &raw); err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}

	a.loggers = make(map[string]*zlog.MLogger, len(raw))
	for name, lc := range raw {
		cfgCopy := lc
		logger, _, err := zlog.InitLogger(&cfgCopy)
		if err != nil {
			return errors.Wrapf(err, "init module logger %q", name)
		}
		// 模块 Logger 直接调用，抵消 InitLogger 为全局函数添加的一层 skip。
		logger = logger.WithOptions(zap.AddCallerSkip(-1)).With(zlog.FieldModule(name))
		a.loggers[name] = &zlog.MLogger{Logger: logger}
	}
	return nil
}

// initBenchConfig 以 bench.DefaultConfig 为缺省值，依次叠加配置文件中的 "bench" 段
// 与 CALLBENCH_BENCH_* 环境变量。
func (a *Application) initBenchConfig() error {
	def := bench.DefaultConfig()
	a.cfg.SetDefault(benchKey+".iterations", def.Iterations)
	a.cfg.SetDefault(benchKey+".rounds", def.Rounds)
	a.cfg.SetDefault(benchKey+".kinds", def.Kinds)
	a.cfg.SetDefault(benchKey+".serializers", def.Serializers)
	a.cfg.SetDefault(benchKey+".args.foo", def.Args.Foo)
	a.cfg.SetDefault(benchKey+".args.bar", def.Args.Bar)
	a.cfg.SetDefault(benchKey+".args.baz", def.Args.Baz)
	a.cfg.BindEnv(envPrefix)

	var root struct {
		Bench bench.Config `mapstructure:"bench"`
	}
	if err := a.cfg.Unmarshal(&root); err != nil {
		return errors.Wrap(err, "failed to decode bench config")
	}
	a.benchCfg = root.Bench
	return nil
}

func getenvDefault(key, def string) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	return val
}

func getenvBool(key string, def bool) bool {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	switch strings.ToLower(val) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

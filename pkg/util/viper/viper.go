package viper

import (
	"path/filepath"
	"strings"

	spfviper "github.com/spf13/viper"
)

// Config 封装 spf13/viper 实例，对外提供精简的 YAML/JSON 配置加载接口。
type Config struct {
	v *spfviper.Viper
}

// New 创建一个空的 Config。
// 未加载任何文件时，Unmarshal/UnmarshalKey 只会看到 SetDefault 设置的值。
func New() *Config {
	return &Config{
		v: spfviper.New(),
	}
}

func (c *Config) viper() *spfviper.Viper {
	if c.v == nil {
		c.v = spfviper.New()
	}
	return c.v
}

// LoadFile 将 YAML 或 JSON 配置文件加载到 Config 中。
// 文件类型通过扩展名（.yaml/.yml/.json）推断。
func (c *Config) LoadFile(path string) error {
	v := c.viper()
	v.SetConfigFile(path)

	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		v.SetConfigType("yaml")
	case ".json":
		v.SetConfigType("json")
	default:
		// 让 viper 自行推断类型，或在读取时返回清晰的错误信息。
	}

	return v.ReadInConfig()
}

// BindEnv 开启环境变量覆盖：key "bench.iterations" 对应 <PREFIX>_BENCH_ITERATIONS。
// 只对配置文件或 SetDefault 中出现过的 key 生效，且需通过 Unmarshal 读取。
func (c *Config) BindEnv(prefix string) {
	v := c.viper()
	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

// SetDefault 为 key 设置缺省值。
func (c *Config) SetDefault(key string, value any) {
	c.viper().SetDefault(key, value)
}

// IsSet 判断 key 是否在配置文件、环境变量或缺省值中出现。
func (c *Config) IsSet(key string) bool {
	return c.viper().IsSet(key)
}

// Unmarshal 将完整配置反序列化到 dst。
// dst 应为结构体或 map 的指针。
func (c *Config) Unmarshal(dst interface{}) error {
	return c.viper().Unmarshal(dst)
}

// UnmarshalKey 将指定 key 对应的子配置反序列化到 dst。
// dst 应为结构体或 map 的指针。
func (c *Config) UnmarshalKey(key string, dst interface{}) error {
	return c.viper().UnmarshalKey(key, dst)
}

package hardware

import (
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"

	"github.com/lk2023060901/callbench/pkg/log"
)

// Info 汇总了基准报告头部需要展示的主机信息。
type Info struct {
	OS          string
	Arch        string
	Platform    string
	CPUModel    string
	CPUNum      int
	GOMAXPROCS  int
	MemoryTotal uint64
}

// GetCPUNum 返回逻辑 CPU 数量，获取失败时退回 runtime.NumCPU()。
func GetCPUNum() int {
	n, err := cpu.Counts(true)
	if err != nil || n <= 0 {
		log.Warn("failed to get cpu counts", zap.Error(err))
		return runtime.NumCPU()
	}
	return n
}

// GetCPUModel 返回第一个 CPU 的型号名称，获取失败或为空时返回 "unknown"。
func GetCPUModel() string {
	infos, err := cpu.Info()
	if err != nil || len(infos) == 0 {
		log.Warn("failed to get cpu info", zap.Error(err))
		return "unknown"
	}
	model := strings.TrimSpace(infos[0].ModelName)
	if model == "" {
		return "unknown"
	}
	return model
}

// GetMemoryTotal 返回主机物理内存总量（字节），获取失败时返回 0。
func GetMemoryTotal() uint64 {
	stats, err := mem.VirtualMemory()
	if err != nil {
		log.Warn("failed to get memory stats", zap.Error(err))
		return 0
	}
	return stats.Total
}

// GetPlatform 返回形如 "ubuntu 22.04" 的平台描述，获取失败时返回空串。
func GetPlatform() string {
	platform, _, version, err := host.PlatformInformation()
	if err != nil {
		log.Warn("failed to get platform info", zap.Error(err))
		return ""
	}
	return strings.TrimSpace(platform + " " + version)
}

// Collect 采集当前主机信息。
func Collect() Info {
	return Info{
		OS:          runtime.GOOS,
		Arch:        runtime.GOARCH,
		Platform:    GetPlatform(),
		CPUModel:    GetCPUModel(),
		CPUNum:      GetCPUNum(),
		GOMAXPROCS:  runtime.GOMAXPROCS(0),
		MemoryTotal: GetMemoryTotal(),
	}
}

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

package metrics

import (
	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// benchNamespace 是当前项目所有 Prometheus 指标使用的命名空间。
	benchNamespace = "callbench"

	benchSubsystem = "bench"

	// 以下为当前使用的通用标签名。
	benchmarkLabelName  = "benchmark"
	kindLabelName       = "kind"
	serializerLabelName = "serializer"
	statusLabelName     = "status"

	SuccessLabel = "success"
	FailLabel    = "fail"
)

var (
	// nsBuckets 为单次调用耗时直方图的桶划分，单位为纳秒。
	// 实际桶分布为：
	// [1 2 4 8 ... 524288 1.048576e+06]
	nsBuckets = prometheus.ExponentialBuckets(1, 2, 21)

	BenchOpLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: benchNamespace,
			Subsystem: benchSubsystem,
			Name:      "op_latency_ns",
			Help:      "每次迭代的平均耗时（纳秒）",
			Buckets:   nsBuckets,
		}, []string{benchmarkLabelName, kindLabelName, serializerLabelName})

	BenchIterations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: benchNamespace,
			Subsystem: benchSubsystem,
			Name:      "iterations_total",
			Help:      "已执行的迭代总数",
		}, []string{benchmarkLabelName})

	BenchRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: benchNamespace,
			Subsystem: benchSubsystem,
			Name:      "runs_total",
			Help:      "基准执行次数，按结果状态区分",
		}, []string{benchmarkLabelName, statusLabelName})

	BenchRecordBytes = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: benchNamespace,
			Subsystem: benchSubsystem,
			Name:      "record_bytes",
			Help:      "编码后参数记录的字节数",
		}, []string{serializerLabelName})
)

// Register 注册全部指标到 r。
func Register(r prometheus.Registerer) {
	RegisterBench(r)
}

// RegisterBench 将基准相关的指标注册到 r。
// 同一个 r 重复注册是安全的，不同的 r 各自持有全部指标。
func RegisterBench(r prometheus.Registerer) {
	for _, c := range []prometheus.Collector{
		BenchOpLatency,
		BenchIterations,
		BenchRuns,
		BenchRecordBytes,
	} {
		if err := r.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				panic(err)
			}
		}
	}
}

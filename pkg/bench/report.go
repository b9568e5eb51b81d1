package bench

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/lk2023060901/callbench/pkg/util/hardware"
)

// Overhead 返回 res 相对同一轮直连基准的耗时倍数。
// 同一轮中没有直连结果或直连耗时为 0 时返回 false。
func Overhead(res Result, results []Result) (float64, bool) {
	for _, other := range results {
		if other.Kind != KindDirect || other.Round != res.Round {
			continue
		}
		base := other.NsPerOp()
		if base <= 0 {
			return 0, false
		}
		return res.NsPerOp() / base, true
	}
	return 0, false
}

// WriteReport 以表格形式输出主机信息与全部结果。
func WriteReport(w io.Writer, host hardware.Info, results []Result) error {
	header := fmt.Sprintf("goos: %s\ngoarch: %s\ncpu: %s\ncpus: %d (GOMAXPROCS %d)\nmemory: %s\n",
		host.OS, host.Arch, host.CPUModel, host.CPUNum, host.GOMAXPROCS, humanize.IBytes(host.MemoryTotal))
	if host.Platform != "" {
		header += "platform: " + host.Platform + "\n"
	}
	if _, err := io.WriteString(w, header+"\n"); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "ROUND\tBENCHMARK\tITERATIONS\tELAPSED\tNS/OP\tX DIRECT\t")
	for _, res := range results {
		ratio := "-"
		if v, ok := Overhead(res, results); ok {
			ratio = strconv.FormatFloat(v, 'f', 2, 64)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.2f\t%s\t\n",
			res.Round,
			res.Name,
			humanize.Comma(int64(res.Iterations)),
			res.Elapsed,
			res.NsPerOp(),
			ratio)
	}
	return tw.Flush()
}

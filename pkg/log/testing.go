package log

import (
	"bytes"

	"go.uber.org/zap/zaptest"
)

// testWriter 将日志转发到 t.Logf，failOnWrite 为 true 时同时将测试标记为失败。
type testWriter struct {
	t           zaptest.TestingT
	failOnWrite bool
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Logf("%s", bytes.TrimSuffix(p, []byte("\n")))
	if w.failOnWrite {
		w.t.Fail()
	}
	return len(p), nil
}

func (w testWriter) Sync() error {
	return nil
}

package bench

// Target 是被测函数的签名：接收三个任意值，返回一个布尔结果。
type Target func(foo, bar, baz any) bool

// Function 是被测的平凡函数，无论输入为何都返回 true，没有任何副作用。
func Function(foo, bar, baz any) bool {
	return true
}

// Benchmark 是由工厂函数构造的可重复执行的测量过程。
//
// 每次调用都会完整执行构造时确定的固定次数循环；
// 编解码失败时返回错误，直连调用永远返回 nil。
type Benchmark func() error

// Package simerr 定义仿真链路共用的错误分类。
//
// 各包返回的错误都通过 %w 包装其中一个哨兵错误，调用方用 errors.Is 判断类别。
package simerr

import "errors"

var (
	// ErrData 价格源返回空、格式错误或时间非单调的序列。
	ErrData = errors.New("data error")
	// ErrInvalidAction 动作无法分解为四个数值字段，或包含负数/非有限值。
	ErrInvalidAction = errors.New("invalid action")
	// ErrOutOfBounds 在 episode 结束后（或 reset 之前）调用 step。
	ErrOutOfBounds = errors.New("out of bounds")
	// ErrConfiguration 模型或策略超参数超出有效域，构造时检出。
	ErrConfiguration = errors.New("configuration error")
)

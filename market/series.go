package market

import (
	"fmt"

	"market-maker-sim/simerr"
)

// ErrEmptySeries 序列为空。
var ErrEmptySeries = fmt.Errorf("%w: empty series", simerr.ErrData)

// Series 是按时间升序排列的 bar 序列，下标即 tick。
type Series []Bar

// Validate 检查序列非空、时间严格递增、收盘价有限。
func (s Series) Validate() error {
	if len(s) == 0 {
		return ErrEmptySeries
	}
	for i, b := range s {
		if !finite(b.Close) {
			return fmt.Errorf("%w: row %d close is not finite", simerr.ErrData, i)
		}
		if b.Time.IsZero() {
			return fmt.Errorf("%w: row %d has no timestamp", simerr.ErrData, i)
		}
		if i > 0 && !b.Time.After(s[i-1].Time) {
			return fmt.Errorf("%w: row %d time %s not after %s", simerr.ErrData, i,
				b.Time.Format("2006-01-02T15:04:05.999999999Z07:00"),
				s[i-1].Time.Format("2006-01-02T15:04:05.999999999Z07:00"))
		}
	}
	return nil
}

// HasOHLC 所有 bar 都带有效的 open/high/low。
func (s Series) HasOHLC() bool {
	if len(s) == 0 {
		return false
	}
	for _, b := range s {
		if !b.HasOHLC() {
			return false
		}
	}
	return true
}

// Closes 返回收盘价切片。
func (s Series) Closes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Close
	}
	return out
}

// LastTick 返回最后一个 tick 下标；空序列返回 -1。
func (s Series) LastTick() int {
	return len(s) - 1
}
